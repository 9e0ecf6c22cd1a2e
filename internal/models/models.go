package models

import (
	"math"
	"time"
)

// Measurement is one row of the air-quality dataset for the pollutant in scope.
type Measurement struct {
	Pollutant string
	Location  string // Geo Place Name, e.g. "Upper West Side (CD7)"
	StartDate time.Time
	Year      int
	Value     float64 // NaN when the source value was not numeric
}

// HasValue reports whether the measurement carries a usable numeric value.
func (m Measurement) HasValue() bool {
	return !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0)
}

// YearlyAverage is the mean of all numeric measurements for one year.
type YearlyAverage struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is a sequence of yearly averages for one location, sorted by year.
type Series struct {
	Location string          `json:"location"`
	Points   []YearlyAverage `json:"points"`
}

// SeriesSet holds one series per requested location, in request order.
type SeriesSet []Series

// Get returns the series for location.
func (s SeriesSet) Get(location string) (Series, bool) {
	for _, series := range s {
		if series.Location == location {
			return series, true
		}
	}
	return Series{}, false
}

// FilterState is the drill-down selection: one location and an inclusive year range.
type FilterState struct {
	Location string `json:"location"`
	FromYear int    `json:"from_year"`
	ToYear   int    `json:"to_year"`
}

// Contains reports whether year lies within the selected range.
func (f FilterState) Contains(year int) bool {
	return year >= f.FromYear && year <= f.ToYear
}
