package climgrid

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SymmetricLevels returns n contour levels evenly spaced over [-lim, +lim]
// where lim = median(|v|) + 3*stddev(v) over the non-missing cells of
// field. Using the median rather than the max keeps a handful of outliers
// from washing out the color scale of anomaly and difference plots.
//
// n == 1 yields the single level -lim; n <= 0 yields nil. A field with no
// finite cells yields all-NaN levels.
func SymmetricLevels(field *Grid, n int) []float64 {
	if n <= 0 {
		return nil
	}
	vals := make([]float64, 0, len(field.Data.Elements))
	abs := make([]float64, 0, len(field.Data.Elements))
	for _, v := range field.Data.Elements {
		if math.IsNaN(v) {
			continue
		}
		vals = append(vals, v)
		abs = append(abs, math.Abs(v))
	}
	lim := math.NaN()
	if len(vals) > 0 {
		sort.Float64s(abs)
		lim = median(abs) + 3*stat.PopStdDev(vals, nil)
	}
	if n == 1 {
		return []float64{-lim}
	}
	return floats.Span(make([]float64, n), -lim, lim)
}

// median returns the median of an ascending-sorted slice: the middle
// element for an odd count, the mean of the two middle elements for an
// even count.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
