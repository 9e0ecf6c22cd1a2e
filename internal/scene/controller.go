package scene

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/lox/nycair/internal/chart"
	"github.com/lox/nycair/internal/metrics"
	"github.com/lox/nycair/internal/models"
)

// Loader supplies the parsed dataset.
type Loader interface {
	Load(ctx context.Context) ([]models.Measurement, error)
}

// Panel is the narrative side panel. Error is set when the last scene change
// failed; the chart keeps showing the previous scene.
type Panel struct {
	Narrative
	Error string `json:"error,omitempty"`
}

// Snapshot is a copy of the controller state at one instant.
type Snapshot struct {
	Index    int
	Shown    bool // a scene has been drawn at least once
	Elements []chart.Element
	Panel    Panel
	Filter   models.FilterState // drill-down only
	Drill    *Drill             // drill-down only
}

// Interactive reports whether the snapshot shows the drill-down.
func (s Snapshot) Interactive() bool {
	return s.Shown && s.Index == DrilldownIndex && s.Drill != nil
}

// Controller owns the chart surface and the current scene. Scene changes
// load the dataset outside the lock; a change that finishes after a newer
// one started is discarded.
type Controller struct {
	loader     Loader
	narratives Narratives
	logger     *slog.Logger

	mu      sync.Mutex
	gen     uint64
	surface *chart.Surface
	index   int
	shown   bool
	panel   Panel
	drill   *Drill
	filter  models.FilterState
}

// NewController returns a controller on scene 0 with an empty surface.
func NewController(loader Loader, narratives Narratives, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		loader:     loader,
		narratives: narratives,
		logger:     logger,
		surface:    chart.NewSurface(),
	}
	c.panel.Narrative, _ = narratives.Get(0)
	return c
}

// Show switches to scene index: it loads the dataset, clears the surface,
// draws the scene and sets the panel to the scene narrative. If loading fails
// the surface is left alone and the panel carries the error.
func (c *Controller) Show(ctx context.Context, index int) error {
	narrative, ok := c.narratives.Get(index)
	if !ok || index >= Count {
		return fmt.Errorf("%w: %d", ErrUnknownScene, index)
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	label := strconv.Itoa(index)
	start := time.Now()
	defer func() {
		metrics.SceneRenderLatency.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	ms, err := c.loader.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		metrics.SceneRendersTotal.WithLabelValues(label, "superseded").Inc()
		c.logger.Debug("discarding superseded scene change", "scene", index)
		return ErrSuperseded
	}
	if err != nil {
		metrics.SceneRendersTotal.WithLabelValues(label, "error").Inc()
		c.logger.Error("scene load failed", "scene", index, "error", err)
		c.panel = Panel{Narrative: narrative, Error: "Could not load the air quality data: " + err.Error()}
		return fmt.Errorf("show scene %d: %w", index, err)
	}

	cmds, state, err := Commands(ms, index, nil)
	if err != nil {
		metrics.SceneRendersTotal.WithLabelValues(label, "error").Inc()
		return err
	}
	if err := c.surface.Apply(append([]chart.Command{chart.Clear()}, cmds...)...); err != nil {
		metrics.SceneRendersTotal.WithLabelValues(label, "error").Inc()
		return fmt.Errorf("show scene %d: %w", index, err)
	}

	c.index, c.shown = index, true
	c.panel = Panel{Narrative: narrative}
	c.drill, c.filter = nil, models.FilterState{}
	if index == DrilldownIndex {
		c.drill, c.filter = NewDrill(ms), state
	}

	metrics.SceneRendersTotal.WithLabelValues(label, "ok").Inc()
	c.logger.Info("scene shown", "scene", index, "elements", c.surface.Len(), "duration", time.Since(start))
	return nil
}

// SetLocation changes the drill-down location and redraws.
func (c *Controller) SetLocation(location string) error {
	return c.update(SelectLocation, func(d *Drill, s *models.FilterState) error {
		if !d.HasLocation(location) {
			return fmt.Errorf("%w: location %q", ErrInvalidOption, location)
		}
		s.Location = location
		return nil
	})
}

// SetFromYear changes the first year of the drill-down range and redraws.
func (c *Controller) SetFromYear(year int) error {
	return c.update(SelectFrom, func(d *Drill, s *models.FilterState) error {
		if !d.HasYear(year) {
			return fmt.Errorf("%w: from year %d", ErrInvalidOption, year)
		}
		s.FromYear = year
		return nil
	})
}

// SetToYear changes the last year of the drill-down range and redraws.
func (c *Controller) SetToYear(year int) error {
	return c.update(SelectTo, func(d *Drill, s *models.FilterState) error {
		if !d.HasYear(year) {
			return fmt.Errorf("%w: to year %d", ErrInvalidOption, year)
		}
		s.ToYear = year
		return nil
	})
}

// SetFilter replaces the whole drill-down selection with one redraw. If any
// field is not an offered option nothing changes.
func (c *Controller) SetFilter(state models.FilterState) error {
	return c.update(SelectFilter, func(d *Drill, s *models.FilterState) error {
		if err := d.Validate(state); err != nil {
			return err
		}
		*s = state
		return nil
	})
}

func (c *Controller) update(selector string, change func(*Drill, *models.FilterState) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.shown || c.index != DrilldownIndex || c.drill == nil {
		return ErrNotInteractive
	}
	state := c.filter
	if err := change(c.drill, &state); err != nil {
		return err
	}
	if err := c.surface.Apply(c.drill.Redraw(state)...); err != nil {
		return fmt.Errorf("redraw: %w", err)
	}
	c.filter = state
	metrics.FilterRedrawsTotal.WithLabelValues(selector).Inc()
	c.logger.Debug("drill-down redrawn", "selector", selector,
		"location", state.Location, "from", state.FromYear, "to", state.ToYear)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Index:    c.index,
		Shown:    c.shown,
		Elements: c.surface.Elements(),
		Panel:    c.panel,
		Filter:   c.filter,
		Drill:    c.drill,
	}
}

// Narratives returns the controller's narrative table.
func (c *Controller) Narratives() Narratives {
	return c.narratives
}
