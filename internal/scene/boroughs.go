package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/lox/nycair/internal/aggregate"
	"github.com/lox/nycair/internal/chart"
	"github.com/lox/nycair/internal/models"
)

// BoroughsLayout is the frame of scene 2. The wide right margin holds the legend.
var BoroughsLayout = Layout{
	Width:  1000,
	Height: 500,
	Margin: Margins{Top: 50, Right: 300, Bottom: 50, Left: 60},
}

// District is one community district drawn in scene 2.
type District struct {
	Location string // Geo Place Name in the dataset
	Label    string // legend text
	Color    string
}

// Borough returns the borough part of the label, "Manhattan" for
// "Manhattan (Upper West Side)".
func (d District) Borough() string {
	if i := strings.Index(d.Label, " ("); i > 0 {
		return d.Label[:i]
	}
	return d.Label
}

// Districts is the ordered list of scene 2 series, one per borough. Order
// fixes both the legend order and the colour of each series.
var Districts = []District{
	{Location: "Upper West Side (CD7)", Label: "Manhattan (Upper West Side)", Color: chart.Blue},
	{Location: "Flushing and Whitestone (CD7)", Label: "Queens (Flushing and Whitestone)", Color: chart.Green},
	{Location: "Flatbush and Midwood (CD14)", Label: "Brooklyn (Flatbush and Midwood)", Color: chart.Orange},
	{Location: "Riverdale and Fieldston (CD8)", Label: "Bronx (Riverdale and Fieldston)", Color: chart.Red},
	{Location: "St. George and Stapleton (CD1)", Label: "Staten Island (St. George and Stapleton)", Color: chart.Black},
}

const (
	highlightYear     = 2016
	highlightFallback = 24
)

// LineID returns the element ID of the i'th district's line.
func LineID(i int) string {
	return fmt.Sprintf("line-%d", i)
}

// Boroughs renders scene 2: one yearly-average line per district on shared
// axes, a legend, and a callout on the district with the highest mean.
func Boroughs(ms []models.Measurement) []chart.Command {
	l := BoroughsLayout

	keys := make([]string, len(Districts))
	for i, d := range Districts {
		keys[i] = d.Location
	}
	set := aggregate.ByYearAndLocation(ms, keys)

	first, last, ok := aggregate.YearExtent(set)
	x, xTicks := l.yearScale(first, last, ok)

	var all []float64
	for _, s := range set {
		all = append(all, aggregate.Values(s.Points)...)
	}
	_, max, _ := aggregate.Extent(all)
	y, yTicks := l.valueScale(max)

	cmds := []chart.Command{
		chart.Append(l.frame()),
		chart.Append(l.xAxis(xTicks)),
		chart.Append(l.yAxis(yTicks)),
	}

	legend := chart.Legend{
		Meta:    chart.Meta{ID: IDLegend},
		X:       l.right() + 10,
		Y:       l.top(),
		Spacing: 20,
	}
	highest, highestMean := -1, math.Inf(-1)
	for i, d := range Districts {
		series, _ := set.Get(d.Location)
		points := make([]chart.Point, len(series.Points))
		for j, p := range series.Points {
			points[j] = chart.Point{X: x.Map(float64(p.Year)), Y: y.Map(p.Value)}
		}
		cmds = append(cmds, chart.Append(chart.Path{
			Meta:        chart.Meta{ID: LineID(i), Class: "line"},
			Points:      points,
			Stroke:      d.Color,
			StrokeWidth: lineWidth,
		}))
		legend.Entries = append(legend.Entries, chart.LegendEntry{Label: d.Label, Color: d.Color})

		if mean := aggregate.Mean(series.Points); !math.IsNaN(mean) && mean > highestMean {
			highest, highestMean = i, mean
		}
	}

	cmds = append(cmds,
		chart.Append(legend),
		chart.Append(l.title("5 Most Popular Borough's NO2 Levels (ppb) vs Time (Years) Trend")),
		chart.Append(l.xLabel("Time (Years)", l.Margin.Bottom/4)),
		chart.Append(l.yLabel("NO2 (ppb)")),
	)

	if highest >= 0 {
		d := Districts[highest]
		series, _ := set.Get(d.Location)
		year := highlightYear
		if year < first || year > last {
			year = first + (last-first)/2
		}
		v := float64(highlightFallback)
		for _, p := range series.Points {
			if p.Year == year {
				v = p.Value
			}
		}
		cmds = append(cmds, chart.Append(callout(
			chart.Point{X: x.Map(float64(year)), Y: y.Map(v)}, 40, -30,
			d.Borough()+"'s Pollution",
			d.Borough()+" has the highest pollution levels of all the popular boroughs.",
		)))
	}
	return cmds
}
