package chart

import (
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// WriteSVG writes elems as a standalone SVG document. Each element becomes a
// group carrying its ID and class.
func WriteSVG(w io.Writer, elems []Element) error {
	cw := &countingWriter{w: w}
	frame := FrameOf(elems)

	canvas := svg.New(cw)
	canvas.Start(frame.Width, frame.Height, `font-family="Roboto,Helvetica,Arial,sans-serif"`)
	canvas.Rect(0, 0, frame.Width, frame.Height, `fill="#ffffff"`)

	for _, e := range elems {
		if _, ok := e.(Selector); ok {
			continue
		}
		if _, ok := e.(Frame); ok {
			continue
		}

		var attrs []string
		if id := e.ElementID(); id != "" {
			attrs = append(attrs, fmt.Sprintf(`id="%s"`, attrEscape(id)))
		}
		if class := e.ElementClass(); class != "" {
			attrs = append(attrs, fmt.Sprintf(`class="%s"`, attrEscape(class)))
		}
		canvas.Group(attrs...)
		drawSVG(canvas, layout(e))
		canvas.Gend()
	}

	canvas.End()
	return cw.err
}

func drawSVG(canvas *svg.SVG, s shape) {
	for _, r := range s.rects {
		canvas.Rect(int(r.x), int(r.y), int(r.w), int(r.h), fmt.Sprintf(`fill="%s"`, r.fill))
	}
	for _, l := range s.lines {
		canvas.Path(pathData(l.points),
			`fill="none"`,
			fmt.Sprintf(`stroke="%s"`, l.color),
			fmt.Sprintf(`stroke-width="%.6g"`, l.width),
		)
	}
	for _, t := range s.texts {
		attrs := []string{
			fmt.Sprintf(`text-anchor="%s"`, t.Anchor),
			fmt.Sprintf(`font-size="%.6gpx"`, t.Size),
			fmt.Sprintf(`fill="%s"`, t.color),
		}
		if t.bold {
			attrs = append(attrs, `font-weight="bold"`)
		}
		if t.Rotate != 0 {
			attrs = append(attrs, fmt.Sprintf(`transform="rotate(%.6g %.6g %.6g)"`, t.Rotate, t.X, t.Y))
		}
		canvas.Text(int(t.X), int(t.Y), t.Content, attrs...)
	}
}

// pathData returns the SVG path data of a polyline.
func pathData(points []Point) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		fmt.Fprintf(&b, "%.2f,%.2f", p.X, p.Y)
	}
	return b.String()
}

var attrReplacer = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

func attrEscape(s string) string {
	return attrReplacer.Replace(s)
}

// countingWriter keeps the first write error, since svgo ignores them.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
