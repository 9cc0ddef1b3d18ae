package climgrid

import (
	"math"

	"github.com/ctessum/sparse"
)

// CosLatWeight returns field scaled cellwise by cos(latitude), the usual
// area proxy for regular lat/lon grids. Leading axes and the longitude
// broadcast of lat-only grids are preserved.
func CosLatWeight(field *Grid) *Grid {
	out := field.Copy()
	nlat, nlon := len(out.Lat), out.nLon()
	for idx := range out.Data.Elements {
		j := (idx / nlon) % nlat
		out.Data.Elements[idx] *= math.Cos(toRad(out.Lat[j]))
	}
	return out
}

// CosLatWeights builds a cosine-latitude Weight Grid over the given
// coordinates, suitable as the weight argument to WeightedAverage. A nil
// lon yields a latitude-only grid, broadcast over longitude.
func CosLatWeights(lat, lon []float64) *Grid {
	if lon == nil {
		data := sparse.ZerosDense(len(lat))
		for j, l := range lat {
			data.Elements[j] = math.Cos(toRad(l))
		}
		return &Grid{Lat: lat, Data: data}
	}
	data := sparse.ZerosDense(len(lat), len(lon))
	for j, l := range lat {
		w := math.Cos(toRad(l))
		for i := range lon {
			data.Elements[j*len(lon)+i] = w
		}
	}
	return &Grid{Lat: lat, Lon: lon, Data: data}
}

// CosLatAreaAvg computes the cosine-latitude weighted global average:
// plain mean over longitude, scaled by cos(latitude), plain mean over
// latitude. Leading axes are preserved; the result for a 2-D field has a
// single element.
//
// Unlike WeightedAverage this is an unmasked fast path for already-clean
// global fields: NaN cells propagate into the result and zero weights are
// not excluded. Use WeightedAverage when a latitude band or missing values
// are in play.
func CosLatAreaAvg(field *Grid) *sparse.DenseArray {
	nlat, nlon := len(field.Lat), field.nLon()
	out := sparse.ZerosDense(field.Leading()...)
	for l := 0; l < field.leadingCount(); l++ {
		latSum := 0.0
		for j := 0; j < nlat; j++ {
			lonSum := 0.0
			for i := 0; i < nlon; i++ {
				lonSum += field.Data.Elements[(l*nlat+j)*nlon+i]
			}
			latSum += lonSum / float64(nlon) * math.Cos(toRad(field.Lat[j]))
		}
		out.Elements[l] = latSum / float64(nlat)
	}
	return out
}
