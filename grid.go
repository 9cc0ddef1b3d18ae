// Package climgrid provides spatial-averaging and figure-preparation helpers
// for latitude/longitude gridded climate fields: cosine-latitude weighting,
// band-restricted weighted means, symmetric contour level selection, cyclic
// longitude points and map gridlines.
package climgrid

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// ErrDimensionMismatch reports that a field and its coordinates, or a field
// and its weights, do not share compatible shapes or latitude axes.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// latAlignTol is the tolerance for comparing latitude coordinates when
// aligning a field with its weights.
const latAlignTol = 1e-9

// Grid is a latitude/longitude gridded field. Data is stored row-major with
// latitude and longitude as the two trailing axes, so a shape of
// [nt, nlat, nlon] holds nt independent lat/lon slices. Missing values are
// math.NaN().
//
// A Grid built by NewLatGrid has no longitude axis (Lon is nil); such grids
// broadcast over longitude and are used as latitude-only weights.
type Grid struct {
	Lat  []float64 // latitude coordinates, degrees north
	Lon  []float64 // longitude coordinates, degrees east; nil for lat-only grids
	Data *sparse.DenseArray
}

// NewGrid returns a Grid over the given coordinates. The trailing axes of
// data must match len(lat) and len(lon); extra leading axes (time, level)
// are allowed and preserved by all reductions.
func NewGrid(lat, lon []float64, data *sparse.DenseArray) (*Grid, error) {
	if data == nil {
		return nil, fmt.Errorf("nil data array: %w", ErrDimensionMismatch)
	}
	nd := len(data.Shape)
	if nd < 2 {
		return nil, fmt.Errorf("need at least 2 axes, got shape %v: %w", data.Shape, ErrDimensionMismatch)
	}
	if data.Shape[nd-2] != len(lat) || data.Shape[nd-1] != len(lon) {
		return nil, fmt.Errorf("trailing shape %v does not match %d lats x %d lons: %w",
			data.Shape[nd-2:], len(lat), len(lon), ErrDimensionMismatch)
	}
	return &Grid{Lat: lat, Lon: lon, Data: data}, nil
}

// NewLatGrid returns a latitude-only Grid, broadcast over longitude wherever
// it is combined with a lat/lon field. The trailing axis of data must match
// len(lat).
func NewLatGrid(lat []float64, data *sparse.DenseArray) (*Grid, error) {
	if data == nil {
		return nil, fmt.Errorf("nil data array: %w", ErrDimensionMismatch)
	}
	nd := len(data.Shape)
	if nd < 1 || data.Shape[nd-1] != len(lat) {
		return nil, fmt.Errorf("trailing shape %v does not match %d lats: %w",
			data.Shape, len(lat), ErrDimensionMismatch)
	}
	return &Grid{Lat: lat, Data: data}, nil
}

// nLon returns the longitude axis length used for flat indexing: 1 for
// lat-only grids.
func (g *Grid) nLon() int {
	if g.Lon == nil {
		return 1
	}
	return len(g.Lon)
}

// Leading returns the shape of the axes before latitude (and longitude),
// empty for a plain 2-D field.
func (g *Grid) Leading() []int {
	nd := len(g.Data.Shape)
	n := 1 // lat
	if g.Lon != nil {
		n = 2 // lat, lon
	}
	return g.Data.Shape[:nd-n]
}

// leadingCount returns the product of the leading axes, at least 1.
func (g *Grid) leadingCount() int {
	n := 1
	for _, d := range g.Leading() {
		n *= d
	}
	return n
}

// Copy returns a deep copy of the grid.
func (g *Grid) Copy() *Grid {
	lat := make([]float64, len(g.Lat))
	copy(lat, g.Lat)
	var lon []float64
	if g.Lon != nil {
		lon = make([]float64, len(g.Lon))
		copy(lon, g.Lon)
	}
	return &Grid{Lat: lat, Lon: lon, Data: g.Data.Copy()}
}

// SetMissing replaces every cell equal to sentinel (e.g. -9999 or a NetCDF
// _FillValue) with NaN, in place.
func (g *Grid) SetMissing(sentinel float64) {
	for i, v := range g.Data.Elements {
		if v == sentinel {
			g.Data.Elements[i] = math.NaN()
		}
	}
}

// AddCyclicPoint returns a new grid with the first longitude column
// duplicated at lon[0]+360°, closing the seam for wraparound contour plots.
func AddCyclicPoint(g *Grid) (*Grid, error) {
	if g.Lon == nil {
		return nil, fmt.Errorf("cyclic point: grid has no longitude axis")
	}
	nlat, nlon := len(g.Lat), len(g.Lon)
	lead := g.Leading()
	shape := make([]int, 0, len(lead)+2)
	shape = append(append(shape, lead...), nlat, nlon+1)
	out := sparse.ZerosDense(shape...)
	for l := 0; l < g.leadingCount(); l++ {
		for j := 0; j < nlat; j++ {
			src := (l*nlat + j) * nlon
			dst := (l*nlat + j) * (nlon + 1)
			copy(out.Elements[dst:dst+nlon], g.Data.Elements[src:src+nlon])
			out.Elements[dst+nlon] = g.Data.Elements[src]
		}
	}
	lat := make([]float64, nlat)
	copy(lat, g.Lat)
	lon := make([]float64, nlon+1)
	copy(lon, g.Lon)
	lon[nlon] = g.Lon[0] + 360
	return &Grid{Lat: lat, Lon: lon, Data: out}, nil
}

// LatBand is an ascending latitude interval, inclusive of Min and exclusive
// of Max. The zero value is an empty band; use Global for the whole globe.
type LatBand struct {
	Min, Max float64
}

// Global returns the full-globe band [-90, 90).
func Global() LatBand {
	return LatBand{Min: -90, Max: 90}
}

// contains reports whether lat falls inside the band.
func (b LatBand) contains(lat float64) bool {
	return lat >= b.Min && lat < b.Max
}

// alignLat checks that weight's latitude axis matches field's.
func alignLat(field, weight *Grid) error {
	if len(weight.Lat) != len(field.Lat) {
		return fmt.Errorf("weight has %d lats, field has %d: %w",
			len(weight.Lat), len(field.Lat), ErrDimensionMismatch)
	}
	for i, lat := range field.Lat {
		if math.Abs(weight.Lat[i]-lat) > latAlignTol {
			return fmt.Errorf("latitude axes differ at index %d (%g vs %g): %w",
				i, weight.Lat[i], lat, ErrDimensionMismatch)
		}
	}
	return nil
}

func toRad(d float64) float64 { return d * math.Pi / 180 }
