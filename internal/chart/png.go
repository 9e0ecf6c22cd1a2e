package chart

import (
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

func drawingColor(hex string) drawing.Color {
	c := ParseHex(hex)
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// WritePNG rasterises elems with the go-chart renderer and writes a PNG of
// the frame size.
func WritePNG(w io.Writer, elems []Element) error {
	frame := FrameOf(elems)
	r, err := gochart.PNG(frame.Width, frame.Height)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	r.SetDPI(72)

	// Roboto, parsed once and cached by go-chart.
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}

	fillRect(r, rect{x: 0, y: 0, w: float64(frame.Width), h: float64(frame.Height), fill: White})
	for _, e := range elems {
		s := layout(e)
		for _, rc := range s.rects {
			fillRect(r, rc)
		}
		for _, l := range s.lines {
			if len(l.points) < 2 {
				continue
			}
			r.SetStrokeColor(drawingColor(l.color))
			r.SetStrokeWidth(l.width)
			r.MoveTo(px(l.points[0].X), px(l.points[0].Y))
			for _, p := range l.points[1:] {
				r.LineTo(px(p.X), px(p.Y))
			}
			r.Stroke()
		}
		for _, t := range s.texts {
			r.SetFont(font)
			r.SetFontSize(t.Size)
			r.SetFontColor(drawingColor(t.color))
			start := textStart(t.Text, float64(r.MeasureText(t.Content).Width()))
			if t.Rotate != 0 {
				r.SetTextRotation(math.Mod(t.Rotate+360, 360) * math.Pi / 180)
			}
			r.Text(t.Content, px(start.X), px(start.Y))
			r.ClearTextRotation()
		}
	}

	if err := r.Save(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func fillRect(r gochart.Renderer, rc rect) {
	r.SetFillColor(drawingColor(rc.fill))
	r.SetStrokeColor(drawing.Color{})
	r.SetStrokeWidth(0)
	r.MoveTo(px(rc.x), px(rc.y))
	r.LineTo(px(rc.x+rc.w), px(rc.y))
	r.LineTo(px(rc.x+rc.w), px(rc.y+rc.h))
	r.LineTo(px(rc.x), px(rc.y+rc.h))
	r.Close()
	r.Fill()
}

func px(v float64) int {
	return int(math.Round(v))
}
