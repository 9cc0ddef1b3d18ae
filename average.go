package climgrid

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// WeightedAverage computes the weighted mean of field over latitude and
// longitude within band, preserving any leading axes. The result has the
// field's leading shape; for a plain 2-D field it has a single element
// (Elements[0]).
//
// weight must share field's latitude axis and be either lat/lon shaped or
// latitude-only (broadcast over longitude); it carries no leading axes.
// When band is narrower than Global(), weights outside the band are
// excluded and the remainder renormalized by their mean, so that the result
// stays an average rather than a weighted sum whatever the weight magnitudes.
//
// Cells are excluded from both the numerator and the denominator when their
// weight is exactly zero, their value is NaN, or their latitude falls
// outside [band.Min, band.Max). A band that covers no cells yields NaN, not
// an error: an inverted band (Min >= Max) is accepted and produces an
// all-NaN result.
func WeightedAverage(field, weight *Grid, band LatBand) (*sparse.DenseArray, error) {
	if field.Lon == nil {
		return nil, fmt.Errorf("field has no longitude axis: %w", ErrDimensionMismatch)
	}
	if err := alignLat(field, weight); err != nil {
		return nil, err
	}
	if len(weight.Leading()) != 0 {
		return nil, fmt.Errorf("weight has leading axes %v: %w", weight.Leading(), ErrDimensionMismatch)
	}
	nlat, nlon := len(field.Lat), len(field.Lon)
	if weight.Lon != nil && len(weight.Lon) != nlon {
		return nil, fmt.Errorf("weight has %d lons, field has %d: %w",
			len(weight.Lon), nlon, ErrDimensionMismatch)
	}

	w := broadcastWeights(weight, nlat, nlon)
	if band != Global() {
		restrictWeights(w, field.Lat, nlat, nlon, band)
	}

	out := sparse.ZerosDense(field.Leading()...)
	for l := 0; l < field.leadingCount(); l++ {
		sum, count := 0.0, 0
		for j := 0; j < nlat; j++ {
			if !band.contains(field.Lat[j]) {
				continue
			}
			for i := 0; i < nlon; i++ {
				wv := w[j*nlon+i]
				if wv == 0 || math.IsNaN(wv) {
					continue
				}
				v := field.Data.Elements[(l*nlat+j)*nlon+i]
				if math.IsNaN(v) {
					continue
				}
				sum += v * wv
				count++
			}
		}
		if count == 0 {
			out.Elements[l] = math.NaN()
		} else {
			out.Elements[l] = sum / float64(count)
		}
	}
	return out, nil
}

// broadcastWeights expands weight into a flat nlat*nlon slice, repeating
// latitude-only weights along the longitude axis.
func broadcastWeights(weight *Grid, nlat, nlon int) []float64 {
	w := make([]float64, nlat*nlon)
	if weight.Lon == nil {
		for j := 0; j < nlat; j++ {
			wv := weight.Data.Elements[j]
			for i := 0; i < nlon; i++ {
				w[j*nlon+i] = wv
			}
		}
		return w
	}
	copy(w, weight.Data.Elements)
	return w
}

// restrictWeights masks weights outside band to NaN and renormalizes the
// remainder by their mean, so in-band weights average to one. Out-of-band
// cells become NaN rather than zero so they cannot leak back into any
// subsequent mean.
func restrictWeights(w []float64, lat []float64, nlat, nlon int, band LatBand) {
	sum, count := 0.0, 0
	for j := 0; j < nlat; j++ {
		inBand := band.contains(lat[j])
		for i := 0; i < nlon; i++ {
			if !inBand {
				w[j*nlon+i] = math.NaN()
				continue
			}
			if v := w[j*nlon+i]; !math.IsNaN(v) {
				sum += v
				count++
			}
		}
	}
	if count == 0 {
		return // nothing left in band; averages come out NaN
	}
	mean := sum / float64(count)
	for i := range w {
		w[i] /= mean
	}
}
