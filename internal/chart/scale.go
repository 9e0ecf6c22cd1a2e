package chart

import (
	"math"
	"strconv"
	"time"

	"github.com/aclements/go-moremath/scale"
)

// DefaultTicks is the most major ticks an axis asks for.
const DefaultTicks = 10

// Linear maps a numeric domain onto a pixel range. A degenerate domain
// (Min == Max) maps every value to the middle of the range.
type Linear struct {
	s      scale.Linear
	r0, r1 float64
}

// NewLinear returns a scale from [min, max] to [r0, r1]. r0 may be greater
// than r1 for axes that grow upwards.
func NewLinear(min, max, r0, r1 float64) *Linear {
	if math.IsNaN(min) || math.IsNaN(max) {
		min, max = 0, 0
	}
	if min > max {
		min, max = max, min
	}
	return &Linear{s: scale.Linear{Min: min, Max: max}, r0: r0, r1: r1}
}

// Nice widens the domain to round tick values.
func (l *Linear) Nice(maxTicks int) *Linear {
	if l.s.Min < l.s.Max {
		l.s.Nice(scale.TickOptions{Max: maxTicks})
	}
	return l
}

// Domain returns the current domain bounds.
func (l *Linear) Domain() (min, max float64) {
	return l.s.Min, l.s.Max
}

// Map returns the pixel coordinate of x.
func (l *Linear) Map(x float64) float64 {
	if l.s.Min >= l.s.Max {
		return (l.r0 + l.r1) / 2
	}
	return l.r0 + l.s.Map(x)*(l.r1-l.r0)
}

// Ticks returns at most maxTicks round values within the domain. A
// degenerate domain has a single tick at its value.
func (l *Linear) Ticks(maxTicks int) []float64 {
	if l.s.Min >= l.s.Max {
		return []float64{l.s.Min}
	}
	major, _ := l.s.Ticks(scale.TickOptions{Max: maxTicks})
	return major
}

// AxisTicks maps Ticks to labelled pixel positions using format.
func (l *Linear) AxisTicks(maxTicks int, format func(float64) string) []Tick {
	values := l.Ticks(maxTicks)
	out := make([]Tick, len(values))
	for i, v := range values {
		out[i] = Tick{At: l.Map(v), Label: format(v)}
	}
	return out
}

// FormatNumber formats v without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatYear formats v as a whole year.
func FormatYear(v float64) string {
	return strconv.Itoa(int(math.Round(v)))
}

var _ scale.Ticker = yearTicker{}

// yearTicker counts and lists whole-year ticks between first and last.
// Level l steps by 1, 2 or 5 times 10^(l/3) years.
type yearTicker struct {
	first, last int
}

func (yearTicker) step(level int) int {
	s := []int{1, 2, 5}[level%3]
	for i := 0; i < level/3; i++ {
		s *= 10
	}
	return s
}

func (t yearTicker) CountTicks(level int) int {
	st := t.step(level)
	return floorDiv(t.last, st) - ceilDiv(t.first, st) + 1
}

func (t yearTicker) TicksAtLevel(level int) interface{} {
	return t.years(level)
}

func (t yearTicker) years(level int) []int {
	st := t.step(level)
	var out []int
	for y := ceilDiv(t.first, st) * st; y <= t.last; y += st {
		out = append(out, y)
	}
	return out
}

// YearTicks returns whole-year ticks between first and last, stepping by 1, 2
// or 5 times a power of ten so that there are at most maxTicks of them.
func YearTicks(first, last, maxTicks int) []int {
	if first > last {
		first, last = last, first
	}
	if first == last || maxTicks < 2 {
		return []int{first}
	}

	ticker := yearTicker{first: first, last: last}
	opts := scale.TickOptions{Max: maxTicks, MinLevel: 0, MaxLevel: 12}
	level, ok := opts.FindLevel(ticker, 0)
	if !ok {
		return []int{first, last}
	}
	return ticker.years(level)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}

// Time maps instants onto a pixel range.
type Time struct {
	min, max time.Time
	lin      *Linear
}

// NewTime returns a scale from [min, max] to [r0, r1].
func NewTime(min, max time.Time, r0, r1 float64) *Time {
	if max.Before(min) {
		min, max = max, min
	}
	return &Time{
		min: min,
		max: max,
		lin: NewLinear(seconds(min), seconds(max), r0, r1),
	}
}

func seconds(t time.Time) float64 {
	return float64(t.Unix())
}

// Domain returns the current domain bounds.
func (t *Time) Domain() (min, max time.Time) {
	return t.min, t.max
}

// Map returns the pixel coordinate of v.
func (t *Time) Map(v time.Time) float64 {
	return t.lin.Map(seconds(v))
}

// Mid returns the instant halfway through the domain.
func (t *Time) Mid() time.Time {
	return t.min.Add(t.max.Sub(t.min) / 2)
}

var monthSteps = []int{1, 2, 3, 6}

// AxisTicks labels the domain with month ticks ("Jan 2015") when at most
// maxTicks months fit, and with year ticks otherwise.
func (t *Time) AxisTicks(maxTicks int) []Tick {
	if !t.min.Before(t.max) {
		return []Tick{{At: t.Map(t.min), Label: t.min.Format("Jan 2006")}}
	}

	first := time.Date(t.min.Year(), t.min.Month(), 1, 0, 0, 0, 0, time.UTC)
	if first.Before(t.min) {
		first = first.AddDate(0, 1, 0)
	}
	months := monthsBetween(first, t.max) + 1
	for _, step := range monthSteps {
		if months/step > maxTicks || months > 24 {
			continue
		}
		// Ticks sit on months that are a whole number of steps from January.
		start := first
		for (int(start.Month())-1)%step != 0 {
			start = start.AddDate(0, 1, 0)
		}
		var out []Tick
		for m := start; !m.After(t.max); m = m.AddDate(0, step, 0) {
			label := m.Format("Jan")
			if m.Month() == time.January || len(out) == 0 {
				label = m.Format("Jan 2006")
			}
			out = append(out, Tick{At: t.Map(m), Label: label})
		}
		if len(out) > 0 {
			return out
		}
		break
	}

	fromYear := t.min.Year()
	if !time.Date(fromYear, 1, 1, 0, 0, 0, 0, time.UTC).Equal(t.min) {
		fromYear++
	}
	years := YearTicks(fromYear, t.max.Year(), maxTicks)
	out := make([]Tick, 0, len(years))
	for _, y := range years {
		at := time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
		if at.Before(t.min) || at.After(t.max) {
			continue
		}
		out = append(out, Tick{At: t.Map(at), Label: strconv.Itoa(y)})
	}
	if len(out) == 0 {
		out = append(out, Tick{At: t.Map(t.min), Label: t.min.Format("Jan 2006")})
	}
	return out
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
