package climgrid

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// gridXYZ adapts a 2-D Grid to plotter.GridXYZ: columns are longitudes,
// rows latitudes.
type gridXYZ struct {
	g *Grid
}

func (d gridXYZ) Dims() (c, r int)   { return len(d.g.Lon), len(d.g.Lat) }
func (d gridXYZ) Z(c, r int) float64 { return d.g.Data.Elements[r*len(d.g.Lon)+c] }
func (d gridXYZ) X(c int) float64    { return d.g.Lon[c] }
func (d gridXYZ) Y(r int) float64    { return d.g.Lat[r] }

// CyclicContour adds a contour of the 2-D grid g to p, with the first
// longitude column repeated at lon[0]+360° so wraparound fields draw
// without a seam. A nil levels selects SymmetricLevels(g, 11).
func CyclicContour(p *plot.Plot, g *Grid, levels []float64) (*plotter.Contour, error) {
	if g.Lon == nil || len(g.Leading()) != 0 {
		return nil, fmt.Errorf("contour: need a 2-D lat/lon grid, got shape %v", g.Data.Shape)
	}
	cg, err := AddCyclicPoint(g)
	if err != nil {
		return nil, err
	}
	if levels == nil {
		levels = SymmetricLevels(g, 11)
	}
	c := plotter.NewContour(gridXYZ{g: cg}, levels, palette.Heat(len(levels)+1, 255))
	p.Add(c)
	return c, nil
}

// AddGridlines pins the plot's ticks to the given latitude and longitude
// coordinates, draws gridlines through them with the given style, and
// clamps the latitude range to pole-to-pole.
func AddGridlines(p *plot.Plot, lats, lons []float64, style draw.LineStyle) {
	p.X.Tick.Marker = degreeTicks(lons)
	p.Y.Tick.Marker = degreeTicks(lats)
	grid := plotter.NewGrid()
	grid.Vertical = style
	grid.Horizontal = style
	p.Add(grid)
	p.Y.Min, p.Y.Max = -90, 90
}

// degreeTicks returns fixed tick marks at the given coordinates.
func degreeTicks(vals []float64) plot.ConstantTicks {
	ticks := make([]plot.Tick, len(vals))
	for i, v := range vals {
		ticks[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'g', -1, 64)}
	}
	return plot.ConstantTicks(ticks)
}

// DefaultGridLats returns the default latitude gridline coordinates.
// A fresh slice is returned on every call so callers can edit it freely.
func DefaultGridLats() []float64 {
	return []float64{-60, -30, 0, 30, 60}
}

// DefaultGridLons returns the default longitude gridline coordinates.
func DefaultGridLons() []float64 {
	return []float64{-120, -60, 0, 60, 120, 180}
}

// DefaultGridStyle returns the default gridline style: a thin dotted black
// line.
func DefaultGridStyle() draw.LineStyle {
	return draw.LineStyle{
		Color:  color.Black,
		Width:  vg.Points(0.5),
		Dashes: []vg.Length{vg.Points(1), vg.Points(2)},
	}
}

// SymmetricYAxis widens the plot's y-axis limits so they are symmetric
// about zero, keeping difference plots visually centered.
func SymmetricYAxis(p *plot.Plot) {
	lim := math.Max(math.Abs(p.Y.Min), math.Abs(p.Y.Max))
	p.Y.Min, p.Y.Max = -lim, lim
}
