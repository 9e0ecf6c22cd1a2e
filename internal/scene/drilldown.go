package scene

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/lox/nycair/internal/aggregate"
	"github.com/lox/nycair/internal/chart"
	"github.com/lox/nycair/internal/models"
)

// DrilldownLayout is the frame of scene 3.
var DrilldownLayout = Layout{
	Width:  800,
	Height: 500,
	Margin: Margins{Top: 60, Right: 40, Bottom: 100, Left: 60},
}

// Selector names, also used as form field names.
const (
	SelectLocation = "location"
	SelectFrom     = "from"
	SelectTo       = "to"

	// SelectFilter labels redraws that change several selectors at once.
	SelectFilter = "filter"
)

// Drill holds the resident data of scene 3 and the choices its selectors offer.
type Drill struct {
	data      []models.Measurement
	locations []string
	years     []int
}

// NewDrill derives the sorted location and year choices from ms.
func NewDrill(ms []models.Measurement) *Drill {
	return &Drill{
		data:      ms,
		locations: aggregate.Locations(ms),
		years:     aggregate.Years(ms),
	}
}

func (d *Drill) Locations() []string { return d.locations }
func (d *Drill) Years() []int        { return d.years }

// DefaultState selects the first location and the full year range.
func (d *Drill) DefaultState() models.FilterState {
	var s models.FilterState
	if len(d.locations) > 0 {
		s.Location = d.locations[0]
	}
	if len(d.years) > 0 {
		s.FromYear, s.ToYear = d.years[0], d.years[len(d.years)-1]
	}
	return s
}

// Validate checks every field of s against the selector options. A range
// with FromYear after ToYear is valid.
func (d *Drill) Validate(s models.FilterState) error {
	if !d.HasLocation(s.Location) {
		return fmt.Errorf("%w: location %q", ErrInvalidOption, s.Location)
	}
	if !d.HasYear(s.FromYear) {
		return fmt.Errorf("%w: from year %d", ErrInvalidOption, s.FromYear)
	}
	if !d.HasYear(s.ToYear) {
		return fmt.Errorf("%w: to year %d", ErrInvalidOption, s.ToYear)
	}
	return nil
}

func (d *Drill) HasLocation(location string) bool {
	i := sort.SearchStrings(d.locations, location)
	return i < len(d.locations) && d.locations[i] == location
}

func (d *Drill) HasYear(year int) bool {
	i := sort.SearchInts(d.years, year)
	return i < len(d.years) && d.years[i] == year
}

// Setup returns the commands for a fresh scene 3 surface showing s.
func (d *Drill) Setup(s models.FilterState) []chart.Command {
	l := DrilldownLayout
	cmds := []chart.Command{
		chart.Append(l.frame()),
		chart.Append(l.title("NO2 Level (ppb) vs Time (Months/Years)")),
		chart.Append(l.xLabel("Time (Months/Years)", l.Margin.Bottom/2)),
		chart.Append(l.yLabel("NO2 (ppb)")),
	}
	return append(cmds, d.Redraw(s)...)
}

// Redraw returns the commands that update an existing scene 3 surface to s:
// the selectors, line and axes are replaced in place and the callout redrawn.
func (d *Drill) Redraw(s models.FilterState) []chart.Command {
	cmds := []chart.Command{
		chart.Upsert(d.selector(SelectLocation, "Select a Borough: ", stringOptions(d.locations), s.Location)),
		chart.Upsert(d.selector(SelectFrom, " Select Years: From ", yearOptions(d.years), strconv.Itoa(s.FromYear))),
		chart.Upsert(d.selector(SelectTo, " To ", yearOptions(d.years), strconv.Itoa(s.ToYear))),
	}
	return append(cmds, ComputeDrill(d.data, s).Commands()...)
}

func (d *Drill) selector(name, label string, opts []chart.Option, selected string) chart.Selector {
	return chart.Selector{
		Meta:     chart.Meta{ID: "select-" + name, Class: "selector"},
		Name:     name,
		Label:    label,
		Options:  opts,
		Selected: selected,
	}
}

func stringOptions(values []string) []chart.Option {
	out := make([]chart.Option, len(values))
	for i, v := range values {
		out[i] = chart.Option{Value: v, Label: v}
	}
	return out
}

func yearOptions(years []int) []chart.Option {
	out := make([]chart.Option, len(years))
	for i, y := range years {
		v := strconv.Itoa(y)
		out[i] = chart.Option{Value: v, Label: v}
	}
	return out
}

// DrillView is the filtered data and domains of one scene 3 state.
type DrillView struct {
	State    models.FilterState
	Points   []models.Measurement
	XMin     time.Time
	XMax     time.Time
	YMax     float64 // after rounding the domain
	Fallback bool    // no points, so the domains are the defaults
}

// ComputeDrill filters ms to the state's location and inclusive year range,
// keeps numeric values sorted by date, and derives the domains. With no
// points the x domain is zero-width at 1 January of FromYear and the y domain
// is [0, 0].
func ComputeDrill(ms []models.Measurement, s models.FilterState) DrillView {
	v := DrillView{State: s}
	for _, m := range ms {
		if m.Location == s.Location && s.Contains(m.Year) && m.HasValue() {
			v.Points = append(v.Points, m)
		}
	}
	sort.SliceStable(v.Points, func(i, j int) bool {
		return v.Points[i].StartDate.Before(v.Points[j].StartDate)
	})

	if len(v.Points) == 0 {
		v.Fallback = true
		v.XMin = time.Date(s.FromYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		v.XMax = v.XMin
		return v
	}

	v.XMin, v.XMax = v.Points[0].StartDate, v.Points[len(v.Points)-1].StartDate
	values := make([]float64, len(v.Points))
	for i, m := range v.Points {
		values[i] = m.Value
	}
	_, max, _ := aggregate.Extent(values)
	y, _ := DrilldownLayout.valueScale(max)
	_, v.YMax = y.Domain()
	return v
}

func (v DrillView) scales() (*chart.Time, *chart.Linear) {
	l := DrilldownLayout
	x := chart.NewTime(v.XMin, v.XMax, l.left(), l.right())
	y := chart.NewLinear(0, v.YMax, l.bottom(), l.top())
	return x, y
}

// Commands draws the view onto a surface already set up for scene 3.
func (v DrillView) Commands() []chart.Command {
	l := DrilldownLayout
	x, y := v.scales()

	points := make([]chart.Point, len(v.Points))
	for i, m := range v.Points {
		points[i] = chart.Point{X: x.Map(m.StartDate), Y: y.Map(m.Value)}
	}

	return []chart.Command{
		chart.Upsert(chart.Path{
			Meta:        chart.Meta{ID: IDLine, Class: "line"},
			Points:      points,
			Stroke:      chart.Blue,
			StrokeWidth: lineWidth,
		}),
		chart.Upsert(l.xAxis(x.AxisTicks(chart.DefaultTicks))),
		chart.Upsert(l.yAxis(y.AxisTicks(chart.DefaultTicks, chart.FormatNumber))),
		chart.RemoveClass(chart.CalloutClass),
		chart.Append(callout(
			chart.Point{X: x.Map(x.Mid()), Y: y.Map(v.YMax * 0.82)}, 150, -30,
			"Monthly NO2 Measures",
			"This chart has the raw monthly measures (not yearly average). Set the years to be in an one year range to see the monthly breakdown.",
		)),
	}
}
