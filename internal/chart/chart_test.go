package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(elems []Element) []string {
	out := make([]string, len(elems))
	for i, e := range elems {
		out[i] = e.ElementID()
	}
	return out
}

func TestSurface_AppendRejectsDuplicateID(t *testing.T) {
	s := NewSurface()
	require.NoError(t, s.Apply(Append(Path{Meta: Meta{ID: "line"}})))

	err := s.Apply(Append(Text{Meta: Meta{ID: "title"}}), Append(Path{Meta: Meta{ID: "line"}}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateID))
	assert.Equal(t, []string{"line"}, ids(s.Elements()), "failed apply leaves the surface unchanged")

	require.NoError(t, s.Apply(Append(Text{}), Append(Text{})), "empty IDs never collide")
	assert.Equal(t, 3, s.Len())
}

func TestSurface_UpsertKeepsPosition(t *testing.T) {
	s := NewSurface()
	require.NoError(t, s.Apply(
		Append(Frame{Width: 800, Height: 500}),
		Append(Path{Meta: Meta{ID: "line"}, Stroke: Blue}),
		Append(Axis{Meta: Meta{ID: "x-axis"}}),
	))

	require.NoError(t, s.Apply(Upsert(Path{Meta: Meta{ID: "line"}, Stroke: Red})))
	require.NoError(t, s.Apply(Upsert(Axis{Meta: Meta{ID: "y-axis"}})))

	assert.Equal(t, []string{"", "line", "x-axis", "y-axis"}, ids(s.Elements()))
	e, ok := s.Find("line")
	require.True(t, ok)
	assert.Equal(t, Red, e.(Path).Stroke)

	assert.Error(t, s.Apply(Upsert(Path{})), "upsert needs an id")
}

func TestSurface_RemoveAndClear(t *testing.T) {
	s := NewSurface()
	require.NoError(t, s.Apply(
		Append(Path{Meta: Meta{ID: "line"}}),
		Append(Callout{Meta: Meta{Class: CalloutClass}, Title: "a"}),
		Append(Callout{Meta: Meta{Class: CalloutClass}, Title: "b"}),
		Append(Text{Meta: Meta{ID: "title"}}),
	))
	assert.Equal(t, 2, s.CountClass(CalloutClass))

	require.NoError(t, s.Apply(RemoveClass(CalloutClass), Remove("line"), Remove("missing")))
	assert.Equal(t, []string{"title"}, ids(s.Elements()))

	require.NoError(t, s.Apply(Clear()))
	assert.Zero(t, s.Len())
	_, ok := s.Find("title")
	assert.False(t, ok)
}

func TestSurface_ElementsIsACopy(t *testing.T) {
	s := NewSurface()
	require.NoError(t, s.Apply(Append(Path{Meta: Meta{ID: "line"}})))
	elems := s.Elements()
	elems[0] = Text{Meta: Meta{ID: "other"}}
	_, ok := s.Find("line")
	assert.True(t, ok)
}

func TestFrameOf(t *testing.T) {
	assert.Equal(t, DefaultFrame, FrameOf(nil))
	assert.Equal(t, 1000, FrameOf([]Element{Path{}, Frame{Width: 1000, Height: 500}}).Width)
}

func TestLinear(t *testing.T) {
	y := NewLinear(0, 35, 450, 50).Nice(DefaultTicks)
	min, max := y.Domain()
	assert.Equal(t, 0.0, min)
	assert.GreaterOrEqual(t, max, 35.0)
	assert.InDelta(t, 450, y.Map(0), 1e-9)
	assert.InDelta(t, 50, y.Map(max), 1e-9)

	ticks := y.Ticks(DefaultTicks)
	require.NotEmpty(t, ticks)
	assert.LessOrEqual(t, len(ticks), DefaultTicks)
	assert.Equal(t, 0.0, ticks[0])

	x := NewLinear(2008, 2023, 60, 750)
	assert.InDelta(t, 60, x.Map(2008), 1e-9)
	assert.InDelta(t, 750, x.Map(2023), 1e-9)
	assert.InDelta(t, 405, x.Map(2015.5), 1e-9)
}

func TestLinear_Degenerate(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
	}{
		{name: "zero", min: 0, max: 0},
		{name: "single", min: 5, max: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLinear(tt.min, tt.max, 450, 50).Nice(DefaultTicks)
			assert.Equal(t, 250.0, l.Map(tt.min))
			assert.Equal(t, []float64{tt.min}, l.Ticks(DefaultTicks))
		})
	}
}

func TestYearTicks(t *testing.T) {
	tests := []struct {
		first, last int
		want        []int
	}{
		{first: 2015, last: 2015, want: []int{2015}},
		{first: 2010, last: 2012, want: []int{2010, 2011, 2012}},
		{first: 2008, last: 2023, want: []int{2008, 2010, 2012, 2014, 2016, 2018, 2020, 2022}},
		{first: 2023, last: 2008, want: []int{2008, 2010, 2012, 2014, 2016, 2018, 2020, 2022}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, YearTicks(tt.first, tt.last, DefaultTicks), "%d-%d", tt.first, tt.last)
	}
}

func date(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestTime_AxisTicks(t *testing.T) {
	monthly := NewTime(date(2015, 1), date(2015, 12), 60, 760).AxisTicks(DefaultTicks)
	require.Len(t, monthly, 6)
	assert.Equal(t, "Jan 2015", monthly[0].Label)
	assert.Equal(t, "Mar", monthly[1].Label)
	assert.InDelta(t, 60, monthly[0].At, 1e-9)

	yearly := NewTime(date(2009, 1), date(2022, 12), 60, 760).AxisTicks(DefaultTicks)
	require.NotEmpty(t, yearly)
	assert.Equal(t, "2010", yearly[0].Label)
	assert.LessOrEqual(t, len(yearly), DefaultTicks)

	single := NewTime(date(2015, 6), date(2015, 6), 60, 760)
	ticks := single.AxisTicks(DefaultTicks)
	require.Len(t, ticks, 1)
	assert.Equal(t, "Jun 2015", ticks[0].Label)
	assert.Equal(t, 410.0, ticks[0].At)
	assert.True(t, single.Mid().Equal(date(2015, 6)))
}

func TestTime_AxisTicks_UnalignedStart(t *testing.T) {
	tests := []struct {
		name   string
		min    time.Time
		max    time.Time
		labels []string
	}{
		{"december start", date(2008, 12), date(2009, 12), []string{"Jan 2009", "Mar", "May", "Jul", "Sep", "Nov"}},
		{"february start", date(2015, 2), date(2016, 12), []string{"Apr 2015", "Jul", "Oct", "Jan 2016", "Apr", "Jul", "Oct"}},
		{"june start", date(2015, 6), date(2016, 12), []string{"Jul 2015", "Sep", "Nov", "Jan 2016", "Mar", "May", "Jul", "Sep", "Nov"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticks := NewTime(tt.min, tt.max, 60, 760).AxisTicks(DefaultTicks)
			labels := make([]string, len(ticks))
			for i, tick := range ticks {
				labels[i] = tick.Label
				assert.GreaterOrEqual(t, tick.At, 60.0)
				assert.LessOrEqual(t, tick.At, 760.0)
			}
			assert.Equal(t, tt.labels, labels)
		})
	}
}

func TestTime_AxisTicks_WithinOneMonth(t *testing.T) {
	min := time.Date(2015, time.January, 10, 0, 0, 0, 0, time.UTC)
	max := time.Date(2015, time.January, 20, 0, 0, 0, 0, time.UTC)
	ticks := NewTime(min, max, 60, 760).AxisTicks(DefaultTicks)
	require.Len(t, ticks, 1)
	assert.Equal(t, "Jan 2015", ticks[0].Label)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"aaa bbb", "ccc"}, Wrap("aaa bbb ccc", 50, 13))
	assert.Equal(t, []string{"averyveryverylongword", "x"}, Wrap("averyveryverylongword x", 20, 13))
	assert.Nil(t, Wrap("   ", 200, 11))
	assert.Equal(t, []string{"a b"}, Wrap(" a  b ", 0, 11))
}

func TestParseHex(t *testing.T) {
	c := ParseHex("#ffa500")
	assert.Equal(t, [4]uint8{0xff, 0xa5, 0x00, 0xff}, [4]uint8{c.R, c.G, c.B, c.A})
	c = ParseHex("#fff")
	assert.Equal(t, uint8(0xff), c.G)
	c = ParseHex("steelblue")
	assert.Equal(t, [4]uint8{0, 0, 0, 0xff}, [4]uint8{c.R, c.G, c.B, c.A})
}

func sampleChart() []Element {
	return []Element{
		Frame{Width: 400, Height: 300},
		Path{Meta: Meta{ID: "a"}, Points: []Point{{10, 10}, {100, 50}, {200, 20}}, Stroke: Blue, StrokeWidth: 2},
		Path{Meta: Meta{ID: "b"}, Stroke: Green, StrokeWidth: 2},
		Text{Meta: Meta{ID: "title"}, X: 200, Y: 20, Content: "NO2 & friends <ppb>", Anchor: AnchorMiddle, Size: 16},
		Text{X: 20, Y: 150, Content: "NO2 (ppb)", Anchor: AnchorMiddle, Rotate: -90},
		Selector{Meta: Meta{ID: "location"}, Options: []Option{{Value: "X", Label: "X"}}},
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, sampleChart()))
	out := buf.String()

	assert.Contains(t, out, `width="400"`)
	assert.Contains(t, out, `height="300"`)
	assert.Equal(t, 2, strings.Count(out, "<path"))
	assert.Contains(t, out, "NO2 &amp; friends &lt;ppb&gt;")
	assert.Contains(t, out, `id="title"`)
	assert.Contains(t, out, `transform="rotate(-90 20 150)"`)
	assert.NotContains(t, out, `id="location"`, "selectors are not drawn")
}

func TestWriteSVG_Callout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, []Element{
		Callout{Meta: Meta{Class: CalloutClass}, Anchor: Point{100, 200}, DX: 40, DY: -10, Title: "Pollution Decline Starts", Label: "After 2008, there's a sharp decline.", Wrap: 200},
	}))
	out := buf.String()

	assert.Contains(t, out, `class="annotation-group"`)
	assert.Contains(t, out, "Pollution Decline Starts")
	assert.Contains(t, out, `font-weight="bold"`)
	assert.Equal(t, 2, strings.Count(out, "<path"), "connector and rule")
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, sampleChart()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleChart(), Report{Title: "Scene 1 Observations", Body: "The overall pollution (NO2) level has been on a decline."}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestDescribe(t *testing.T) {
	data, err := json.Marshal(Describe([]Element{Frame{Width: 800, Height: 500}, Path{Meta: Meta{ID: "line"}}}))
	require.NoError(t, err)

	var got []struct {
		Type    string          `json:"type"`
		Element json.RawMessage `json:"element"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "frame", got[0].Type)
	assert.Equal(t, "path", got[1].Type)
	assert.Contains(t, string(got[1].Element), `"id":"line"`)
}
