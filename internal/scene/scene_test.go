package scene

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/nycair/internal/chart"
	"github.com/lox/nycair/internal/models"
)

func meas(location string, year int, month time.Month, value float64) models.Measurement {
	return models.Measurement{
		Pollutant: "NO2",
		Location:  location,
		StartDate: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		Year:      year,
		Value:     value,
	}
}

// sampleData has every scene 2 district except Staten Island, with the
// Upper West Side highest, plus one neighbourhood outside the district list.
func sampleData() []models.Measurement {
	var ms []models.Measurement
	base := map[string]float64{
		"Upper West Side (CD7)":         30,
		"Flushing and Whitestone (CD7)": 18,
		"Flatbush and Midwood (CD14)":   20,
		"Riverdale and Fieldston (CD8)": 16,
		"Astoria (CD1)":                 22,
	}
	for loc, v := range base {
		for year := 2009; year <= 2022; year++ {
			ms = append(ms,
				meas(loc, year, time.January, v-float64(year-2009)*0.5+2),
				meas(loc, year, time.July, v-float64(year-2009)*0.5-2),
			)
		}
	}
	ms = append(ms, meas("Astoria (CD1)", 2015, time.March, math.NaN()))
	return ms
}

func apply(t *testing.T, cmds []chart.Command) *chart.Surface {
	t.Helper()
	s := chart.NewSurface()
	require.NoError(t, s.Apply(cmds...))
	return s
}

func findPath(t *testing.T, s *chart.Surface, id string) chart.Path {
	t.Helper()
	e, ok := s.Find(id)
	require.True(t, ok, "no element %q", id)
	p, ok := e.(chart.Path)
	require.True(t, ok, "%q is a %s", id, e.Kind())
	return p
}

func callouts(elems []chart.Element) []chart.Callout {
	var out []chart.Callout
	for _, e := range elems {
		if c, ok := e.(chart.Callout); ok {
			out = append(out, c)
		}
	}
	return out
}

func TestCitywide(t *testing.T) {
	s := apply(t, Citywide(sampleData()))

	assert.Equal(t, CitywideLayout.Width, chart.FrameOf(s.Elements()).Width)
	line := findPath(t, s, IDLine)
	assert.Len(t, line.Points, 14, "one point per year 2009-2022")
	assert.Equal(t, chart.Blue, line.Stroke)
	assert.InDelta(t, CitywideLayout.Margin.Left, line.Points[0].X, 1e-9)
	assert.InDelta(t, float64(CitywideLayout.Width)-CitywideLayout.Margin.Right, line.Points[13].X, 1e-9)
	for i := 1; i < len(line.Points); i++ {
		assert.Less(t, line.Points[i-1].Y, line.Points[i].Y, "averages fall every year, so y grows downwards")
	}

	title, ok := s.Find(IDTitle)
	require.True(t, ok)
	assert.Equal(t, "Overall NYC NO2 (ppb) vs Time (Years) Trend", title.(chart.Text).Content)

	cs := callouts(s.Elements())
	require.Len(t, cs, 2)
	assert.Equal(t, "Pollution Decline Starts", cs[0].Title)
	assert.Equal(t, "Pollution Decline", cs[1].Title)
	assert.InDelta(t, line.Points[13].X, cs[1].Anchor.X, 1e-9, "second callout sits on the final year")
	assert.InDelta(t, line.Points[13].Y, cs[1].Anchor.Y, 1e-9)
	assert.Equal(t, 200.0, cs[0].Wrap)
}

func TestCitywide_Empty(t *testing.T) {
	s := apply(t, Citywide(nil))
	line := findPath(t, s, IDLine)
	assert.Empty(t, line.Points)
	for _, c := range callouts(s.Elements()) {
		assert.False(t, math.IsNaN(c.Anchor.X) || math.IsNaN(c.Anchor.Y))
	}
}

func TestBoroughs(t *testing.T) {
	s := apply(t, Boroughs(sampleData()))
	assert.Equal(t, 1000, chart.FrameOf(s.Elements()).Width)

	for i, d := range Districts {
		p := findPath(t, s, LineID(i))
		assert.Equal(t, d.Color, p.Stroke)
		if d.Location == "St. George and Stapleton (CD1)" {
			assert.Empty(t, p.Points, "district without data draws an empty line")
		} else {
			assert.Len(t, p.Points, 14)
		}
	}

	e, ok := s.Find(IDLegend)
	require.True(t, ok)
	legend := e.(chart.Legend)
	require.Len(t, legend.Entries, len(Districts))
	for i, d := range Districts {
		assert.Equal(t, d.Label, legend.Entries[i].Label)
		assert.Equal(t, d.Color, legend.Entries[i].Color)
	}
	assert.Equal(t, float64(BoroughsLayout.Width)-BoroughsLayout.Margin.Right+10, legend.X)

	cs := callouts(s.Elements())
	require.Len(t, cs, 1)
	assert.Equal(t, "Manhattan's Pollution", cs[0].Title)
	assert.Equal(t, "Manhattan has the highest pollution levels of all the popular boroughs.", cs[0].Label)
	assert.InDelta(t, findPath(t, s, LineID(0)).Points[2016-2009].X, cs[0].Anchor.X, 1e-9)
}

func TestBoroughs_NoData(t *testing.T) {
	s := apply(t, Boroughs(nil))
	e, ok := s.Find(IDLegend)
	require.True(t, ok)
	assert.Len(t, e.(chart.Legend).Entries, 5)
	assert.Empty(t, callouts(s.Elements()))
}

func TestDistrict_Borough(t *testing.T) {
	assert.Equal(t, "Staten Island", Districts[4].Borough())
	assert.Equal(t, "Queens", District{Label: "Queens"}.Borough())
}

func TestDrill_DefaultState(t *testing.T) {
	d := NewDrill(sampleData())
	s := d.DefaultState()
	assert.Equal(t, "Astoria (CD1)", s.Location, "first location alphabetically")
	assert.Equal(t, 2009, s.FromYear)
	assert.Equal(t, 2022, s.ToYear)

	late := NewDrill([]models.Measurement{meas("B", 2017, 1, 1), meas("A", 2019, 1, 2)})
	assert.Equal(t, models.FilterState{Location: "A", FromYear: 2017, ToYear: 2019}, late.DefaultState())
}

func TestDrill_Validate(t *testing.T) {
	d := NewDrill(sampleData())
	assert.NoError(t, d.Validate(models.FilterState{Location: "Astoria (CD1)", FromYear: 2020, ToYear: 2010}))
	assert.ErrorIs(t, d.Validate(models.FilterState{Location: "Nowhere", FromYear: 2010, ToYear: 2011}), ErrInvalidOption)
	assert.ErrorIs(t, d.Validate(models.FilterState{Location: "Astoria (CD1)", FromYear: 1990, ToYear: 2011}), ErrInvalidOption)
}

func TestComputeDrill(t *testing.T) {
	ms := []models.Measurement{
		meas("X", 2016, time.March, 12),
		meas("X", 2015, time.September, 20),
		meas("Y", 2015, time.June, 99),
		meas("X", 2015, time.June, 30),
		meas("X", 2015, time.July, math.NaN()),
		meas("X", 2018, time.June, 50),
	}

	v := ComputeDrill(ms, models.FilterState{Location: "X", FromYear: 2015, ToYear: 2016})
	require.Len(t, v.Points, 3)
	assert.Equal(t, []float64{30, 20, 12}, []float64{v.Points[0].Value, v.Points[1].Value, v.Points[2].Value})
	assert.True(t, v.XMin.Equal(time.Date(2015, time.June, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, v.XMax.Equal(time.Date(2016, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.GreaterOrEqual(t, v.YMax, 30.0)
	assert.False(t, v.Fallback)
}

func TestComputeDrill_InvertedRange(t *testing.T) {
	v := ComputeDrill(sampleData(), models.FilterState{Location: "Astoria (CD1)", FromYear: 2020, ToYear: 2010})
	assert.Empty(t, v.Points)
	assert.True(t, v.Fallback)
	assert.True(t, v.XMin.Equal(time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, v.XMax.Equal(v.XMin))
	assert.Equal(t, 0.0, v.YMax)

	s := apply(t, append([]chart.Command{chart.Append(DrilldownLayout.frame())}, v.Commands()...))
	assert.Empty(t, findPath(t, s, IDLine).Points)
	for _, e := range s.Elements() {
		switch e := e.(type) {
		case chart.Axis:
			for _, tick := range e.Ticks {
				assert.False(t, math.IsNaN(tick.At), "%s tick %q", e.ID, tick.Label)
			}
		case chart.Callout:
			assert.False(t, math.IsNaN(e.Anchor.X) || math.IsNaN(e.Anchor.Y))
		}
	}
}

func TestComputeDrill_DecemberStartHasXTicks(t *testing.T) {
	ms := []models.Measurement{
		meas("X", 2008, time.December, 30),
		meas("X", 2009, time.June, 25),
		meas("X", 2009, time.December, 20),
	}
	v := ComputeDrill(ms, models.FilterState{Location: "X", FromYear: 2008, ToYear: 2009})
	s := apply(t, append([]chart.Command{chart.Append(DrilldownLayout.frame())}, v.Commands()...))

	e, ok := s.Find(IDXAxis)
	require.True(t, ok)
	axis := e.(chart.Axis)
	require.NotEmpty(t, axis.Ticks)
	assert.Equal(t, "Jan 2009", axis.Ticks[0].Label)
}

func TestDrill_RedrawInPlace(t *testing.T) {
	d := NewDrill(sampleData())
	state := d.DefaultState()
	s := apply(t, d.Setup(state))

	before := s.Elements()
	lineIndex := -1
	for i, e := range before {
		if e.ElementID() == IDLine {
			lineIndex = i
		}
	}
	require.GreaterOrEqual(t, lineIndex, 0)

	state.Location = "Upper West Side (CD7)"
	state.FromYear, state.ToYear = 2015, 2015
	require.NoError(t, s.Apply(d.Redraw(state)...))
	require.NoError(t, s.Apply(d.Redraw(state)...))

	after := s.Elements()
	assert.Equal(t, len(before), len(after))
	assert.Equal(t, IDLine, after[lineIndex].ElementID(), "line replaced in place")
	assert.Equal(t, 1, s.CountClass(chart.CalloutClass))
	assert.Len(t, findPath(t, s, IDLine).Points, 2)

	e, ok := s.Find("select-" + SelectFrom)
	require.True(t, ok)
	assert.Equal(t, "2015", e.(chart.Selector).Selected)
}

func TestCommands_UnknownScene(t *testing.T) {
	_, _, err := Commands(nil, 3, nil)
	assert.ErrorIs(t, err, ErrUnknownScene)
	_, err = Render(nil, -1, nil)
	assert.ErrorIs(t, err, ErrUnknownScene)
}

func TestRender_DrilldownFilter(t *testing.T) {
	ms := sampleData()
	elems, err := Render(ms, DrilldownIndex, &models.FilterState{Location: "Upper West Side (CD7)", FromYear: 2010, ToYear: 2011})
	require.NoError(t, err)
	for _, e := range elems {
		if p, ok := e.(chart.Path); ok && p.ID == IDLine {
			assert.Len(t, p.Points, 4)
		}
	}

	_, err = Render(ms, DrilldownIndex, &models.FilterState{Location: "Nowhere"})
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestNarratives(t *testing.T) {
	ns := DefaultNarratives()
	require.Len(t, ns, Count)
	n, ok := ns.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Scene 2 Observations", n.Title)
	_, ok = ns.Get(3)
	assert.False(t, ok)

	assert.Equal(t, "<h4>Scene 1 Observations</h4><p>"+ns[0].Body+"</p>", ns[0].HTML())
	assert.Contains(t, Narrative{Title: "A & B", Body: "x"}.HTML(), "A &amp; B")
	assert.Contains(t, ns[0].Text(), "Scene 1 Observations")
}

// stubLoader returns fixed data. gate, if set, runs before each load with the
// 1-based call number.
type stubLoader struct {
	mu    sync.Mutex
	calls int
	ms    []models.Measurement
	err   error
	gate  func(call int)
}

func (l *stubLoader) Load(ctx context.Context) ([]models.Measurement, error) {
	l.mu.Lock()
	l.calls++
	call, gate := l.calls, l.gate
	l.mu.Unlock()
	if gate != nil {
		gate(call)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ms, l.err
}

func TestController_InitialState(t *testing.T) {
	c := NewController(&stubLoader{}, DefaultNarratives(), nil)
	snap := c.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.False(t, snap.Shown)
	assert.Empty(t, snap.Elements)
	assert.Equal(t, "Scene 1 Observations", snap.Panel.Title)
}

func TestController_SwitchClearsSurface(t *testing.T) {
	ms := sampleData()
	c := NewController(&stubLoader{ms: ms}, DefaultNarratives(), nil)
	ctx := context.Background()

	require.NoError(t, c.Show(ctx, 1))
	require.NoError(t, c.Show(ctx, 0))

	want, err := Render(ms, 0, nil)
	require.NoError(t, err)
	snap := c.Snapshot()
	assert.Equal(t, want, snap.Elements)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, "Scene 1 Observations", snap.Panel.Title)
	assert.Empty(t, snap.Panel.Error)
	for _, e := range snap.Elements {
		assert.NotEqual(t, IDLegend, e.ElementID(), "no scene 2 legend left behind")
	}
}

func TestController_UnknownScene(t *testing.T) {
	c := NewController(&stubLoader{}, DefaultNarratives(), nil)
	assert.ErrorIs(t, c.Show(context.Background(), 3), ErrUnknownScene)
	assert.ErrorIs(t, c.Show(context.Background(), -1), ErrUnknownScene)
}

func TestController_FailedLoadKeepsChart(t *testing.T) {
	loader := &stubLoader{ms: sampleData()}
	c := NewController(loader, DefaultNarratives(), nil)
	ctx := context.Background()
	require.NoError(t, c.Show(ctx, 0))
	before := c.Snapshot()

	loader.mu.Lock()
	loader.err = errors.New("connection reset")
	loader.mu.Unlock()

	err := c.Show(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	after := c.Snapshot()
	assert.Equal(t, before.Elements, after.Elements)
	assert.Equal(t, 0, after.Index)
	assert.Contains(t, after.Panel.Error, "connection reset")
	assert.Equal(t, "Scene 2 Observations", after.Panel.Title)
}

func TestController_StaleLoadDiscarded(t *testing.T) {
	ms := sampleData()
	started := make(chan struct{})
	release := make(chan struct{})
	loader := &stubLoader{ms: ms, gate: func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}}
	c := NewController(loader, DefaultNarratives(), nil)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- c.Show(ctx, 1) }()
	<-started

	require.NoError(t, c.Show(ctx, DrilldownIndex))
	close(release)
	assert.ErrorIs(t, <-errc, ErrSuperseded)

	snap := c.Snapshot()
	assert.Equal(t, DrilldownIndex, snap.Index)
	want, err := Render(ms, DrilldownIndex, nil)
	require.NoError(t, err)
	assert.Equal(t, want, snap.Elements)
}

func TestController_Filters(t *testing.T) {
	ms := sampleData()
	c := NewController(&stubLoader{ms: ms}, DefaultNarratives(), nil)
	ctx := context.Background()

	require.NoError(t, c.Show(ctx, 0))
	assert.ErrorIs(t, c.SetLocation("Upper West Side (CD7)"), ErrNotInteractive)

	require.NoError(t, c.Show(ctx, DrilldownIndex))
	snap := c.Snapshot()
	require.True(t, snap.Interactive())
	assert.Equal(t, models.FilterState{Location: "Astoria (CD1)", FromYear: 2009, ToYear: 2022}, snap.Filter)

	require.NoError(t, c.SetLocation("Upper West Side (CD7)"))
	require.NoError(t, c.SetFromYear(2012))
	require.NoError(t, c.SetToYear(2013))
	assert.ErrorIs(t, c.SetToYear(1999), ErrInvalidOption)
	assert.ErrorIs(t, c.SetLocation("Nowhere"), ErrInvalidOption)

	snap = c.Snapshot()
	assert.Equal(t, models.FilterState{Location: "Upper West Side (CD7)", FromYear: 2012, ToYear: 2013}, snap.Filter)
	want, err := Render(ms, DrilldownIndex, &snap.Filter)
	require.NoError(t, err)
	assert.Equal(t, want, snap.Elements, "redrawing in place matches a fresh render")

	require.NoError(t, c.SetFromYear(2020))
	snap = c.Snapshot()
	assert.Equal(t, 1, countClass(snap.Elements, chart.CalloutClass))
}

func TestController_SetFilter(t *testing.T) {
	ms := sampleData()
	c := NewController(&stubLoader{ms: ms}, DefaultNarratives(), nil)
	ctx := context.Background()

	assert.ErrorIs(t, c.SetFilter(models.FilterState{Location: "Astoria (CD1)", FromYear: 2010, ToYear: 2012}), ErrNotInteractive)

	require.NoError(t, c.Show(ctx, DrilldownIndex))
	before := c.Snapshot()

	err := c.SetFilter(models.FilterState{Location: "Upper West Side (CD7)", FromYear: 1999, ToYear: 2013})
	assert.ErrorIs(t, err, ErrInvalidOption)
	after := c.Snapshot()
	assert.Equal(t, before.Filter, after.Filter, "a rejected change leaves every field alone")
	assert.Equal(t, before.Elements, after.Elements)

	want := models.FilterState{Location: "Upper West Side (CD7)", FromYear: 2012, ToYear: 2013}
	require.NoError(t, c.SetFilter(want))
	snap := c.Snapshot()
	assert.Equal(t, want, snap.Filter)
	rendered, err := Render(ms, DrilldownIndex, &want)
	require.NoError(t, err)
	assert.Equal(t, rendered, snap.Elements)
}

func countClass(elems []chart.Element, class string) int {
	n := 0
	for _, e := range elems {
		if e.ElementClass() == class {
			n++
		}
	}
	return n
}
