package scene

import (
	"github.com/lox/nycair/internal/aggregate"
	"github.com/lox/nycair/internal/chart"
	"github.com/lox/nycair/internal/models"
)

// CitywideLayout is the frame of scene 1.
var CitywideLayout = Layout{
	Width:  800,
	Height: 500,
	Margin: Margins{Top: 50, Right: 50, Bottom: 50, Left: 60},
}

const (
	declineStartYear = 2008

	// Where the callouts sit when the dataset has no average for their year.
	declineStartValue = 28
	declineEndYear    = 2023
	declineEndValue   = 15
)

// Citywide renders scene 1: the yearly citywide average as a single line
// over every year in the dataset, with callouts on 2008 and the final year.
func Citywide(ms []models.Measurement) []chart.Command {
	l := CitywideLayout
	yearly := aggregate.ByYear(ms)

	first, last, ok := 0, 0, len(yearly) > 0
	if ok {
		first, last = yearly[0].Year, yearly[len(yearly)-1].Year
	}
	x, xTicks := l.yearScale(first, last, ok)
	_, max, _ := aggregate.Extent(aggregate.Values(yearly))
	y, yTicks := l.valueScale(max)

	points := make([]chart.Point, len(yearly))
	for i, p := range yearly {
		points[i] = chart.Point{X: x.Map(float64(p.Year)), Y: y.Map(p.Value)}
	}

	at := func(year int, fallback float64) chart.Point {
		v := fallback
		for _, p := range yearly {
			if p.Year == year {
				v = p.Value
			}
		}
		return chart.Point{X: x.Map(float64(year)), Y: y.Map(v)}
	}
	endYear := declineEndYear
	if ok {
		endYear = last
	}

	return []chart.Command{
		chart.Append(l.frame()),
		chart.Append(l.yAxis(yTicks)),
		chart.Append(l.xAxis(xTicks)),
		chart.Append(chart.Path{
			Meta:        chart.Meta{ID: IDLine, Class: "line"},
			Points:      points,
			Stroke:      chart.Blue,
			StrokeWidth: lineWidth,
		}),
		chart.Append(l.title("Overall NYC NO2 (ppb) vs Time (Years) Trend")),
		chart.Append(l.xLabel("Time (Years)", l.Margin.Bottom/4)),
		chart.Append(l.yLabel("NO2 (ppb)")),
		chart.Append(callout(at(declineStartYear, declineStartValue), 40, -10,
			"Pollution Decline Starts", "After 2008, there's a sharp decline.")),
		chart.Append(callout(at(endYear, declineEndValue), -50, -75,
			"Pollution Decline", "As you can see, the level here is way lower than it was in 2008.")),
	}
}
