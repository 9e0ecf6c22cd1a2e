// Package aggregate reduces parsed measurements to the yearly averages and
// distinct values the scenes draw from.
package aggregate

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/lox/nycair/internal/models"
)

// ByYear groups measurements by year and averages each group. The result is
// sorted by year with one entry per year that has at least one numeric value.
func ByYear(ms []models.Measurement) []models.YearlyAverage {
	byYear := make(map[int][]float64)
	for _, m := range ms {
		if !m.HasValue() {
			continue
		}
		byYear[m.Year] = append(byYear[m.Year], m.Value)
	}
	return averages(byYear)
}

// ByYearAndLocation averages measurements per (location, year) for the given
// location keys. The set holds one series per distinct key in key order; a key
// with no matching measurements gets an empty series.
func ByYearAndLocation(ms []models.Measurement, keys []string) models.SeriesSet {
	grouped := make(map[string]map[int][]float64, len(keys))
	var order []string
	for _, k := range keys {
		if _, ok := grouped[k]; ok {
			continue
		}
		grouped[k] = make(map[int][]float64)
		order = append(order, k)
	}

	for _, m := range ms {
		byYear, ok := grouped[m.Location]
		if !ok || !m.HasValue() {
			continue
		}
		byYear[m.Year] = append(byYear[m.Year], m.Value)
	}

	set := make(models.SeriesSet, 0, len(order))
	for _, k := range order {
		set = append(set, models.Series{Location: k, Points: averages(grouped[k])})
	}
	return set
}

func averages(byYear map[int][]float64) []models.YearlyAverage {
	out := make([]models.YearlyAverage, 0, len(byYear))
	for year, values := range byYear {
		out = append(out, models.YearlyAverage{Year: year, Value: stats.Mean(values)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Locations returns the distinct locations in ms, sorted.
func Locations(ms []models.Measurement) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range ms {
		if !seen[m.Location] {
			seen[m.Location] = true
			out = append(out, m.Location)
		}
	}
	sort.Strings(out)
	return out
}

// Years returns the distinct years in ms, ascending.
func Years(ms []models.Measurement) []int {
	seen := make(map[int]bool)
	var out []int
	for _, m := range ms {
		if !seen[m.Year] {
			seen[m.Year] = true
			out = append(out, m.Year)
		}
	}
	sort.Ints(out)
	return out
}

// Extent returns the minimum and maximum of the finite values. ok is false
// when there are none.
func Extent(values []float64) (min, max float64, ok bool) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, 0, false
	}
	min, max = stats.Bounds(finite)
	return min, max, true
}

// Values returns the Value of each yearly average.
func Values(points []models.YearlyAverage) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// YearExtent returns the first and last year across every series. ok is false
// when all series are empty.
func YearExtent(set models.SeriesSet) (first, last int, ok bool) {
	for _, s := range set {
		for _, p := range s.Points {
			if !ok {
				first, last, ok = p.Year, p.Year, true
				continue
			}
			if p.Year < first {
				first = p.Year
			}
			if p.Year > last {
				last = p.Year
			}
		}
	}
	return first, last, ok
}

// Mean returns the mean of a series' yearly averages, or NaN when it is empty.
func Mean(points []models.YearlyAverage) float64 {
	if len(points) == 0 {
		return math.NaN()
	}
	return stats.Mean(Values(points))
}
