// Package chart describes charts as a list of draw commands applied to a
// Surface, and writes a Surface out as SVG, PNG or PDF.
package chart

// Point is a position in pixels from the top-left corner of the frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is one drawable item on a Surface.
type Element interface {
	ElementID() string
	ElementClass() string
	Kind() string
}

// Meta carries the identity every element shares. Elements with an empty ID
// can only be removed by class or by clearing the surface.
type Meta struct {
	ID    string `json:"id,omitempty"`
	Class string `json:"class,omitempty"`
}

func (m Meta) ElementID() string    { return m.ID }
func (m Meta) ElementClass() string { return m.Class }

// Frame sets the pixel size of the chart.
type Frame struct {
	Meta
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (Frame) Kind() string { return "frame" }

// Path is an unfilled polyline. A path with no points draws nothing but still
// occupies its place on the surface.
type Path struct {
	Meta
	Points      []Point `json:"points"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
}

func (Path) Kind() string { return "path" }

// Anchor is the horizontal alignment of text relative to its position.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Text is a single line of text. Rotate is in degrees, clockwise, about the
// text position.
type Text struct {
	Meta
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Content string  `json:"content"`
	Anchor  Anchor  `json:"anchor"`
	Size    float64 `json:"size"`
	Rotate  float64 `json:"rotate,omitempty"`
}

func (Text) Kind() string { return "text" }

// Orient says which side of the plot an axis is drawn on.
type Orient string

const (
	OrientBottom Orient = "bottom"
	OrientLeft   Orient = "left"
)

// Tick is one labelled mark along an axis, At being the pixel coordinate
// along the axis direction.
type Tick struct {
	At    float64 `json:"at"`
	Label string  `json:"label"`
}

// Axis is a domain line with tick marks. For a bottom axis Pos is the y
// coordinate of the line and Start/End its x extent; for a left axis Pos is
// the x coordinate and Start/End its y extent.
type Axis struct {
	Meta
	Orient Orient  `json:"orient"`
	Pos    float64 `json:"pos"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Ticks  []Tick  `json:"ticks"`
}

func (Axis) Kind() string { return "axis" }

// LegendEntry is one swatch and label of a legend.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend lists entries top to bottom starting at X, Y, Spacing pixels apart.
type Legend struct {
	Meta
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Spacing float64       `json:"spacing"`
	Entries []LegendEntry `json:"entries"`
}

func (Legend) Kind() string { return "legend" }

// CalloutClass is the class of every chart callout.
const CalloutClass = "annotation-group"

// Callout pins a titled note to a point on the chart. The note sits DX, DY
// pixels from the anchor and its label is wrapped to Wrap pixels.
type Callout struct {
	Meta
	Anchor Point   `json:"anchor"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Title  string  `json:"title"`
	Label  string  `json:"label"`
	Wrap   float64 `json:"wrap"`
	Color  string  `json:"color"`
}

func (Callout) Kind() string { return "callout" }

// Note returns the position of the note text.
func (c Callout) Note() Point {
	return Point{X: c.Anchor.X + c.DX, Y: c.Anchor.Y + c.DY}
}

// Option is one choice of a Selector.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Selector is a drop-down control. Image writers skip it; pages render it
// as a form field.
type Selector struct {
	Meta
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Options  []Option `json:"options"`
	Selected string   `json:"selected"`
}

func (Selector) Kind() string { return "selector" }

// Has reports whether value is one of the selector's options.
func (s Selector) Has(value string) bool {
	for _, o := range s.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Described pairs an element with its kind for JSON output.
type Described struct {
	Type    string  `json:"type"`
	Element Element `json:"element"`
}

// Describe returns elems tagged with their kinds.
func Describe(elems []Element) []Described {
	out := make([]Described, len(elems))
	for i, e := range elems {
		out[i] = Described{Type: e.Kind(), Element: e}
	}
	return out
}
