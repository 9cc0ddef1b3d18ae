package climgrid

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/ctessum/sparse"
)

// OpenGrid reads variable varName and its coordinate variables latName and
// lonName from the NetCDF file at path into a Grid. The variable may be
// 2-D [lat, lon] or 3-D [time, lat, lon], stored as float64 or float32.
// Fill values are read as-is; apply SetMissing afterwards to turn a known
// fill sentinel into NaN.
func OpenGrid(path, varName, latName, lonName string) (*Grid, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer nc.Close()

	latVr, err := nc.GetVariable(latName)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", latName, err)
	}
	lat, err := coordFloats(latVr.Values)
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", latName, err)
	}
	lonVr, err := nc.GetVariable(lonName)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", lonName, err)
	}
	lon, err := coordFloats(lonVr.Values)
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", lonName, err)
	}

	vr, err := nc.GetVariable(varName)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", varName, err)
	}
	vals, shape, err := flattenValues(vr.Values)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", varName, err)
	}
	data := sparse.ZerosDense(shape...)
	copy(data.Elements, vals)
	return NewGrid(lat, lon, data)
}

// coordFloats converts a 1-D coordinate variable to float64.
func coordFloats(v interface{}) ([]float64, error) {
	switch c := v.(type) {
	case []float64:
		out := make([]float64, len(c))
		copy(out, c)
		return out, nil
	case []float32:
		out := make([]float64, len(c))
		for i, f := range c {
			out[i] = float64(f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("not a 1-D float coordinate (%T)", v)
	}
}

// flattenValues turns a 2-D or 3-D nested-slice variable into a flat
// row-major slice plus its shape. Ragged rows are rejected.
func flattenValues(v interface{}) ([]float64, []int, error) {
	switch d := v.(type) {
	case [][]float64:
		return flatten2(d, func(row []float64) []float64 { return row })
	case [][]float32:
		return flatten2(d, row32to64)
	case [][][]float64:
		return flatten3(d, func(row []float64) []float64 { return row })
	case [][][]float32:
		return flatten3(d, row32to64)
	default:
		return nil, nil, fmt.Errorf("unsupported variable layout %T", v)
	}
}

func row32to64(row []float32) []float64 {
	out := make([]float64, len(row))
	for i, f := range row {
		out[i] = float64(f)
	}
	return out
}

func flatten2[T any](d [][]T, conv func([]T) []float64) ([]float64, []int, error) {
	if len(d) == 0 {
		return nil, nil, fmt.Errorf("empty variable")
	}
	ncol := len(d[0])
	out := make([]float64, 0, len(d)*ncol)
	for j, row := range d {
		if len(row) != ncol {
			return nil, nil, fmt.Errorf("ragged row %d (%d vs %d values)", j, len(row), ncol)
		}
		out = append(out, conv(row)...)
	}
	return out, []int{len(d), ncol}, nil
}

func flatten3[T any](d [][][]T, conv func([]T) []float64) ([]float64, []int, error) {
	if len(d) == 0 {
		return nil, nil, fmt.Errorf("empty variable")
	}
	var out []float64
	var inner []int
	for t, slice := range d {
		vals, shape, err := flatten2(slice, conv)
		if err != nil {
			return nil, nil, fmt.Errorf("slice %d: %w", t, err)
		}
		if inner == nil {
			inner = shape
			out = make([]float64, 0, len(d)*len(vals))
		} else if shape[0] != inner[0] || shape[1] != inner[1] {
			return nil, nil, fmt.Errorf("slice %d has shape %v, want %v", t, shape, inner)
		}
		out = append(out, vals...)
	}
	return out, []int{len(d), inner[0], inner[1]}, nil
}
