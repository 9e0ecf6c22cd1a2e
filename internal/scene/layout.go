// Package scene renders the three scenes of the NO2 narrative as chart
// commands and runs the controller that moves between them.
package scene

import (
	"github.com/lox/nycair/internal/chart"
)

// Element IDs shared by the scenes.
const (
	IDFrame  = "frame"
	IDTitle  = "title"
	IDXLabel = "x-label"
	IDYLabel = "y-label"
	IDXAxis  = "x-axis"
	IDYAxis  = "y-axis"
	IDLine   = "line"
	IDLegend = "legend"
)

const (
	lineWidth     = 2
	titleFontSize = 16
	labelFontSize = 12
)

// Margins is the space between the frame edge and the plot area.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Layout is the frame size and plot margins of a scene.
type Layout struct {
	Width, Height int
	Margin        Margins
}

func (l Layout) left() float64   { return l.Margin.Left }
func (l Layout) right() float64  { return float64(l.Width) - l.Margin.Right }
func (l Layout) top() float64    { return l.Margin.Top }
func (l Layout) bottom() float64 { return float64(l.Height) - l.Margin.Bottom }

func (l Layout) frame() chart.Frame {
	return chart.Frame{Meta: chart.Meta{ID: IDFrame}, Width: l.Width, Height: l.Height}
}

func (l Layout) title(text string) chart.Text {
	return chart.Text{
		Meta:    chart.Meta{ID: IDTitle},
		X:       float64(l.Width) / 2,
		Y:       l.Margin.Top / 2,
		Content: text,
		Anchor:  chart.AnchorMiddle,
		Size:    titleFontSize,
	}
}

// xLabel places the x axis label labelOffset pixels above the frame bottom.
func (l Layout) xLabel(text string, labelOffset float64) chart.Text {
	return chart.Text{
		Meta:    chart.Meta{ID: IDXLabel},
		X:       float64(l.Width) / 2,
		Y:       float64(l.Height) - labelOffset,
		Content: text,
		Anchor:  chart.AnchorMiddle,
		Size:    labelFontSize,
	}
}

func (l Layout) yLabel(text string) chart.Text {
	return chart.Text{
		Meta:    chart.Meta{ID: IDYLabel},
		X:       l.Margin.Left / 3,
		Y:       float64(l.Height) / 2,
		Content: text,
		Anchor:  chart.AnchorMiddle,
		Size:    labelFontSize,
		Rotate:  -90,
	}
}

func (l Layout) xAxis(ticks []chart.Tick) chart.Axis {
	return chart.Axis{
		Meta:   chart.Meta{ID: IDXAxis, Class: IDXAxis},
		Orient: chart.OrientBottom,
		Pos:    l.bottom(),
		Start:  l.left(),
		End:    l.right(),
		Ticks:  ticks,
	}
}

func (l Layout) yAxis(ticks []chart.Tick) chart.Axis {
	return chart.Axis{
		Meta:   chart.Meta{ID: IDYAxis, Class: IDYAxis},
		Orient: chart.OrientLeft,
		Pos:    l.left(),
		Start:  l.bottom(),
		End:    l.top(),
		Ticks:  ticks,
	}
}

// yearScale returns the x scale and ticks over [first, last]. With no years
// the domain is degenerate and there are no ticks.
func (l Layout) yearScale(first, last int, ok bool) (*chart.Linear, []chart.Tick) {
	x := chart.NewLinear(float64(first), float64(last), l.left(), l.right())
	if !ok {
		return x, nil
	}
	years := chart.YearTicks(first, last, chart.DefaultTicks)
	ticks := make([]chart.Tick, len(years))
	for i, y := range years {
		ticks[i] = chart.Tick{At: x.Map(float64(y)), Label: chart.FormatYear(float64(y))}
	}
	return x, ticks
}

// valueScale returns the y scale from zero to a rounded max and its ticks.
func (l Layout) valueScale(max float64) (*chart.Linear, []chart.Tick) {
	if max < 0 {
		max = 0
	}
	y := chart.NewLinear(0, max, l.bottom(), l.top()).Nice(chart.DefaultTicks)
	return y, y.AxisTicks(chart.DefaultTicks, chart.FormatNumber)
}

func callout(anchor chart.Point, dx, dy float64, title, label string) chart.Callout {
	return chart.Callout{
		Meta:   chart.Meta{Class: chart.CalloutClass},
		Anchor: anchor,
		DX:     dx,
		DY:     dy,
		Title:  title,
		Label:  label,
		Wrap:   200,
	}
}
