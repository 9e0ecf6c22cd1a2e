package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lox/nycair/internal/models"
)

// NO2 is the Name value of nitrogen dioxide rows.
const NO2 = "Nitrogen dioxide (NO2)"

var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
}

// ParseStats summarises what ParseMeasurements did with its input.
type ParseStats struct {
	Rows           int
	Kept           int
	OtherPollutant int
	BadDate        int
	NoValue        int // kept, but Value is NaN
}

// ParseMeasurements converts raw rows for pollutant into measurements.
// Rows for other pollutants and rows without a parseable start date are
// dropped. A value that is not a number becomes NaN.
func ParseMeasurements(rows []Row, pollutant string) ([]models.Measurement, ParseStats) {
	stats := ParseStats{Rows: len(rows)}
	out := make([]models.Measurement, 0, len(rows))

	for _, row := range rows {
		if row[ColumnName] != pollutant {
			stats.OtherPollutant++
			continue
		}

		date, ok := ParseDate(row[ColumnStartDate])
		if !ok {
			stats.BadDate++
			continue
		}

		value := ParseValue(row[ColumnValue])
		if math.IsNaN(value) {
			stats.NoValue++
		}

		out = append(out, models.Measurement{
			Pollutant: pollutant,
			Location:  row[ColumnPlace],
			StartDate: date,
			Year:      date.Year(),
			Value:     value,
		})
		stats.Kept++
	}
	return out, stats
}

// ParseDate parses a start date in any of the layouts seen in exports of the dataset.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseValue parses a data value, returning NaN for blanks and placeholders.
func ParseValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
