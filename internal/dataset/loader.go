package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lox/nycair/internal/metrics"
	"github.com/lox/nycair/internal/models"
)

// Loader loads and parses a dataset once and serves the parsed
// measurements to every later caller. Failed loads are not cached.
type Loader struct {
	source    Source
	pollutant string
	logger    *slog.Logger

	mu     sync.Mutex
	loaded bool
	data   []models.Measurement
	stats  ParseStats
}

func NewLoader(source Source, pollutant string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, pollutant: pollutant, logger: logger}
}

// Load returns the measurements for the loader's pollutant. The returned
// slice is shared and must not be modified.
func (l *Loader) Load(ctx context.Context) ([]models.Measurement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.data, nil
	}

	start := time.Now()
	scheme := l.source.Scheme()
	rows, err := l.source.Rows(ctx)
	metrics.DatasetLoadLatency.WithLabelValues(scheme).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues(scheme, "error").Inc()
		l.logger.Error("dataset load failed", "source", l.source.String(), "rows_read", len(rows), "error", err)
		return nil, fmt.Errorf("load %s: %w", l.source, err)
	}

	data, stats := ParseMeasurements(rows, l.pollutant)
	metrics.DatasetLoadsTotal.WithLabelValues(scheme, "ok").Inc()
	metrics.DatasetRows.WithLabelValues("kept").Set(float64(stats.Kept))
	metrics.DatasetRows.WithLabelValues("other_pollutant").Set(float64(stats.OtherPollutant))
	metrics.DatasetRows.WithLabelValues("bad_date").Set(float64(stats.BadDate))
	metrics.DatasetRows.WithLabelValues("no_value").Set(float64(stats.NoValue))

	l.logger.Info("dataset loaded",
		"source", l.source.String(),
		"rows", stats.Rows,
		"kept", stats.Kept,
		"bad_date", stats.BadDate,
		"no_value", stats.NoValue,
		"duration", time.Since(start),
	)

	l.data, l.stats, l.loaded = data, stats, true
	return l.data, nil
}

// Stats returns the parse statistics of the cached load and whether a load
// has succeeded yet.
func (l *Loader) Stats() (ParseStats, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats, l.loaded
}

// Source returns the loader's dataset source.
func (l *Loader) Source() Source {
	return l.source
}
