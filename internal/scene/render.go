package scene

import (
	"errors"
	"fmt"

	"github.com/lox/nycair/internal/chart"
	"github.com/lox/nycair/internal/models"
)

var (
	ErrUnknownScene   = errors.New("unknown scene")
	ErrSuperseded     = errors.New("superseded by a later scene change")
	ErrNotInteractive = errors.New("current scene has no filters")
	ErrInvalidOption  = errors.New("invalid selector option")
)

// Count is the number of scenes.
const Count = 3

// DrilldownIndex is the index of the interactive scene.
const DrilldownIndex = 2

// Commands returns the draw commands of scene index for ms. For the
// drill-down a nil filter selects the default state; the state drawn is
// returned alongside.
func Commands(ms []models.Measurement, index int, filter *models.FilterState) ([]chart.Command, models.FilterState, error) {
	switch index {
	case 0:
		return Citywide(ms), models.FilterState{}, nil
	case 1:
		return Boroughs(ms), models.FilterState{}, nil
	case DrilldownIndex:
		d := NewDrill(ms)
		state := d.DefaultState()
		if filter != nil {
			if err := d.Validate(*filter); err != nil {
				return nil, state, err
			}
			state = *filter
		}
		return d.Setup(state), state, nil
	}
	return nil, models.FilterState{}, fmt.Errorf("%w: %d", ErrUnknownScene, index)
}

// Render draws scene index onto a fresh surface and returns its elements.
func Render(ms []models.Measurement, index int, filter *models.FilterState) ([]chart.Element, error) {
	cmds, _, err := Commands(ms, index, filter)
	if err != nil {
		return nil, err
	}
	s := chart.NewSurface()
	if err := s.Apply(cmds...); err != nil {
		return nil, fmt.Errorf("render scene %d: %w", index, err)
	}
	return s.Elements(), nil
}
