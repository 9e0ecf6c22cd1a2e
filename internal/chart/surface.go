package chart

import (
	"errors"
	"fmt"
)

// ErrDuplicateID is returned when an element is appended with an ID that is
// already on the surface.
var ErrDuplicateID = errors.New("duplicate element id")

// Op is the kind of a Command.
type Op int

const (
	OpAppend Op = iota
	OpUpsert
	OpRemove
	OpRemoveClass
	OpClear
)

func (o Op) String() string {
	switch o {
	case OpAppend:
		return "append"
	case OpUpsert:
		return "upsert"
	case OpRemove:
		return "remove"
	case OpRemoveClass:
		return "remove-class"
	case OpClear:
		return "clear"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is one change to a Surface.
type Command struct {
	Op      Op
	Element Element
	Target  string // element ID for OpRemove, class for OpRemoveClass
}

// Append adds e after every existing element.
func Append(e Element) Command { return Command{Op: OpAppend, Element: e} }

// Upsert replaces the element with e's ID in place, or appends e when no
// element has that ID.
func Upsert(e Element) Command { return Command{Op: OpUpsert, Element: e} }

// Remove deletes the element with the given ID if present.
func Remove(id string) Command { return Command{Op: OpRemove, Target: id} }

// RemoveClass deletes every element of the given class.
func RemoveClass(class string) Command { return Command{Op: OpRemoveClass, Target: class} }

// Clear deletes every element.
func Clear() Command { return Command{Op: OpClear} }

// Surface is an ordered list of elements, drawn first to last. A Surface is
// not safe for concurrent use.
type Surface struct {
	elems []Element
}

func NewSurface() *Surface {
	return &Surface{}
}

// Apply runs cmds in order. If any command fails the surface is left as it
// was before the call.
func (s *Surface) Apply(cmds ...Command) error {
	elems := make([]Element, len(s.elems))
	copy(elems, s.elems)

	for i, c := range cmds {
		var err error
		elems, err = apply(elems, c)
		if err != nil {
			return fmt.Errorf("command %d (%s): %w", i, c.Op, err)
		}
	}
	s.elems = elems
	return nil
}

func apply(elems []Element, c Command) ([]Element, error) {
	switch c.Op {
	case OpAppend:
		if c.Element == nil {
			return elems, errors.New("nil element")
		}
		if id := c.Element.ElementID(); id != "" && indexOf(elems, id) >= 0 {
			return elems, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		return append(elems, c.Element), nil

	case OpUpsert:
		if c.Element == nil {
			return elems, errors.New("nil element")
		}
		id := c.Element.ElementID()
		if id == "" {
			return elems, errors.New("upsert needs an element id")
		}
		if i := indexOf(elems, id); i >= 0 {
			elems[i] = c.Element
			return elems, nil
		}
		return append(elems, c.Element), nil

	case OpRemove:
		if i := indexOf(elems, c.Target); i >= 0 && c.Target != "" {
			return append(elems[:i], elems[i+1:]...), nil
		}
		return elems, nil

	case OpRemoveClass:
		kept := elems[:0]
		for _, e := range elems {
			if e.ElementClass() != c.Target {
				kept = append(kept, e)
			}
		}
		return kept, nil

	case OpClear:
		return nil, nil
	}
	return elems, fmt.Errorf("unknown op %d", int(c.Op))
}

func indexOf(elems []Element, id string) int {
	for i, e := range elems {
		if e.ElementID() == id {
			return i
		}
	}
	return -1
}

// Elements returns a copy of the elements in draw order.
func (s *Surface) Elements() []Element {
	out := make([]Element, len(s.elems))
	copy(out, s.elems)
	return out
}

// Find returns the element with the given ID.
func (s *Surface) Find(id string) (Element, bool) {
	if i := indexOf(s.elems, id); i >= 0 && id != "" {
		return s.elems[i], true
	}
	return nil, false
}

// CountClass returns how many elements have the given class.
func (s *Surface) CountClass(class string) int {
	n := 0
	for _, e := range s.elems {
		if e.ElementClass() == class {
			n++
		}
	}
	return n
}

// Len returns the number of elements.
func (s *Surface) Len() int { return len(s.elems) }

// DefaultFrame is the size used when no Frame element is present.
var DefaultFrame = Frame{Width: 800, Height: 500}

// FrameOf returns the first Frame in elems, or DefaultFrame.
func FrameOf(elems []Element) Frame {
	for _, e := range elems {
		if f, ok := e.(Frame); ok && f.Width > 0 && f.Height > 0 {
			return f
		}
	}
	return DefaultFrame
}
