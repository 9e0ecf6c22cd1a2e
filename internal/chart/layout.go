package chart

import "math"

// Sizes shared by every writer.
const (
	TickSize       = 6
	TickFontSize   = 10
	LegendFontSize = 12
	LegendSwatch   = 10
	NoteFontSize   = 11
	NoteLineHeight = 14
	defaultStroke  = 1
)

// polyline is an unfilled line through points.
type polyline struct {
	points []Point
	color  string
	width  float64
}

type rect struct {
	x, y, w, h float64
	fill       string
}

// styledText is a Text with a colour and weight, as drawn by the writers.
type styledText struct {
	Text
	color string
	bold  bool
}

// shape is an element reduced to the primitives every writer can draw.
type shape struct {
	lines []polyline
	rects []rect
	texts []styledText
}

func layout(e Element) shape {
	switch e := e.(type) {
	case Path:
		width := e.StrokeWidth
		if width <= 0 {
			width = defaultStroke
		}
		return shape{lines: []polyline{{points: e.Points, color: e.Stroke, width: width}}}
	case Text:
		if e.Size <= 0 {
			e.Size = LegendFontSize
		}
		if e.Anchor == "" {
			e.Anchor = AnchorStart
		}
		return shape{texts: []styledText{{Text: e, color: Black}}}
	case Axis:
		return layoutAxis(e)
	case Legend:
		return layoutLegend(e)
	case Callout:
		return layoutCallout(e)
	}
	return shape{}
}

func layoutAxis(a Axis) shape {
	var s shape
	switch a.Orient {
	case OrientLeft:
		s.lines = append(s.lines, polyline{
			points: []Point{{a.Pos - TickSize, a.Start}, {a.Pos, a.Start}, {a.Pos, a.End}, {a.Pos - TickSize, a.End}},
			color:  Black, width: defaultStroke,
		})
		for _, t := range a.Ticks {
			s.lines = append(s.lines, polyline{points: []Point{{a.Pos - TickSize, t.At}, {a.Pos, t.At}}, color: Black, width: defaultStroke})
			s.texts = append(s.texts, styledText{
				Text:  Text{X: a.Pos - TickSize - 3, Y: t.At + TickFontSize*0.32, Content: t.Label, Anchor: AnchorEnd, Size: TickFontSize},
				color: Black,
			})
		}
	default:
		s.lines = append(s.lines, polyline{
			points: []Point{{a.Start, a.Pos + TickSize}, {a.Start, a.Pos}, {a.End, a.Pos}, {a.End, a.Pos + TickSize}},
			color:  Black, width: defaultStroke,
		})
		for _, t := range a.Ticks {
			s.lines = append(s.lines, polyline{points: []Point{{t.At, a.Pos}, {t.At, a.Pos + TickSize}}, color: Black, width: defaultStroke})
			s.texts = append(s.texts, styledText{
				Text:  Text{X: t.At, Y: a.Pos + TickSize + 3 + TickFontSize*0.71, Content: t.Label, Anchor: AnchorMiddle, Size: TickFontSize},
				color: Black,
			})
		}
	}
	return s
}

func layoutLegend(l Legend) shape {
	spacing := l.Spacing
	if spacing <= 0 {
		spacing = 20
	}
	var s shape
	for i, e := range l.Entries {
		y := l.Y + float64(i)*spacing
		s.rects = append(s.rects, rect{x: l.X, y: y, w: LegendSwatch, h: LegendSwatch, fill: e.Color})
		s.texts = append(s.texts, styledText{
			Text:  Text{X: l.X + 15, Y: y + LegendSwatch, Content: e.Label, Anchor: AnchorStart, Size: LegendFontSize},
			color: Black,
		})
	}
	return s
}

// layoutCallout draws a connector from the anchor to the note, a rule under
// the note's width, and the title and wrapped label on the side of the rule
// facing away from the anchor.
func layoutCallout(c Callout) shape {
	color := c.Color
	if color == "" {
		color = Grey
	}
	wrap := c.Wrap
	if wrap <= 0 {
		wrap = 120
	}
	note := c.Note()

	lines := append([]string{c.Title}, Wrap(c.Label, wrap, NoteFontSize)...)
	if c.Title == "" {
		lines = lines[1:]
	}

	// The rule extends from the note towards the side the note was pushed to.
	x0, x1 := note.X, note.X+wrap
	anchor := AnchorStart
	if c.DX < 0 {
		x0, x1 = note.X-wrap, note.X
		anchor = AnchorEnd
	}
	textX := x0
	if anchor == AnchorEnd {
		textX = x1
	}

	s := shape{
		lines: []polyline{
			{points: []Point{c.Anchor, note}, color: color, width: defaultStroke},
			{points: []Point{{x0, note.Y}, {x1, note.Y}}, color: color, width: defaultStroke},
		},
	}

	// Notes above the anchor stack upwards from the rule; notes below hang from it.
	first := note.Y - 4 - float64(len(lines)-1)*NoteLineHeight
	if c.DY >= 0 {
		first = note.Y + NoteLineHeight
	}
	for i, line := range lines {
		s.texts = append(s.texts, styledText{
			Text: Text{
				X: textX, Y: first + float64(i)*NoteLineHeight,
				Content: line, Anchor: anchor, Size: NoteFontSize,
			},
			color: color,
			bold:  i == 0 && c.Title != "",
		})
	}
	return s
}

// anchorFactor is the share of a text's width that lies before its position.
func anchorFactor(a Anchor) float64 {
	switch a {
	case AnchorMiddle:
		return 0.5
	case AnchorEnd:
		return 1
	}
	return 0
}

// textStart returns where a left-aligned string of the given width must start
// to honour t's anchor and rotation.
func textStart(t Text, width float64) Point {
	k := anchorFactor(t.Anchor) * width
	theta := t.Rotate * math.Pi / 180
	return Point{X: t.X - k*math.Cos(theta), Y: t.Y - k*math.Sin(theta)}
}
