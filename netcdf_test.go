package climgrid

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
)

func TestOpenGridRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tas.nc")
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	vars := []struct {
		name string
		v    api.Variable
	}{
		{"lat", api.Variable{
			Values:     []float64{-30, 30},
			Dimensions: []string{"lat"},
		}},
		{"lon", api.Variable{
			Values:     []float64{0, 120, 240},
			Dimensions: []string{"lon"},
		}},
		{"tas", api.Variable{
			Values:     [][]float64{{1, 2, 3}, {4, 5, 6}},
			Dimensions: []string{"lat", "lon"},
		}},
	}
	for _, v := range vars {
		if err := cw.AddVar(v.name, v.v); err != nil {
			t.Fatalf("writing %s: %v", v.name, err)
		}
	}
	if err := cw.Close(); err != nil {
		t.Fatal(err)
	}

	g, err := OpenGrid(path, "tas", "lat", "lon")
	if err != nil {
		t.Fatal(err)
	}
	wantLat := []float64{-30, 30}
	wantLon := []float64{0, 120, 240}
	if len(g.Lat) != len(wantLat) || len(g.Lon) != len(wantLon) {
		t.Fatalf("coords: lat %v, lon %v", g.Lat, g.Lon)
	}
	for i, v := range wantLat {
		if g.Lat[i] != v {
			t.Errorf("lat[%d] = %g, want %g", i, g.Lat[i], v)
		}
	}
	for i, v := range wantLon {
		if g.Lon[i] != v {
			t.Errorf("lon[%d] = %g, want %g", i, g.Lon[i], v)
		}
	}
	want := []float64{1, 2, 3, 4, 5, 6}
	if len(g.Data.Shape) != 2 || g.Data.Shape[0] != 2 || g.Data.Shape[1] != 3 {
		t.Fatalf("data shape = %v, want [2 3]", g.Data.Shape)
	}
	for i, w := range want {
		if g.Data.Elements[i] != w {
			t.Errorf("data[%d] = %g, want %g", i, g.Data.Elements[i], w)
		}
	}
}

func TestOpenGridMissingFile(t *testing.T) {
	if _, err := OpenGrid("testdata/no-such-file.nc", "tas", "lat", "lon"); err == nil {
		t.Fatal("want error for missing file, got nil")
	}
}

func TestCoordFloats(t *testing.T) {
	got, err := coordFloats([]float64{1, 2})
	if err != nil || len(got) != 2 || got[1] != 2 {
		t.Fatalf("float64 coords: %v, %v", got, err)
	}
	got, err = coordFloats([]float32{1.5, 2.5})
	if err != nil || got[0] != 1.5 || got[1] != 2.5 {
		t.Fatalf("float32 coords: %v, %v", got, err)
	}
	if _, err = coordFloats([]int64{1, 2}); err == nil {
		t.Fatal("integer coords: want error, got nil")
	}
}

func TestFlattenValues2D(t *testing.T) {
	vals, shape, err := flattenValues([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatal(err)
	}
	if shape[0] != 2 || shape[1] != 3 {
		t.Fatalf("shape = %v, want [2 3]", shape)
	}
	want := []float64{1, 2, 3, 4, 5, 6}
	for i, w := range want {
		if vals[i] != w {
			t.Errorf("vals[%d] = %g, want %g", i, vals[i], w)
		}
	}
}

func TestFlattenValues3DFloat32(t *testing.T) {
	vals, shape, err := flattenValues([][][]float32{
		{{1, 2}, {3, 4}},
		{{5, 6}, {7, 8}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if shape[0] != 2 || shape[1] != 2 || shape[2] != 2 {
		t.Fatalf("shape = %v, want [2 2 2]", shape)
	}
	if vals[4] != 5 || vals[7] != 8 {
		t.Errorf("vals = %v", vals)
	}
}

func TestFlattenValuesRagged(t *testing.T) {
	if _, _, err := flattenValues([][]float64{{1, 2}, {3}}); err == nil {
		t.Fatal("ragged rows: want error, got nil")
	}
}

func TestFlattenValuesUnsupported(t *testing.T) {
	if _, _, err := flattenValues([]float64{1, 2}); err == nil {
		t.Fatal("1-D variable: want error, got nil")
	}
}

// The NaN round trip matters for missing values: math in this package
// relies on NaN cells surviving a load.
func TestOpenGridNaNValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaps.nc")
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	vars := []struct {
		name string
		v    api.Variable
	}{
		{"lat", api.Variable{Values: []float64{0}, Dimensions: []string{"lat"}}},
		{"lon", api.Variable{Values: []float64{0, 180}, Dimensions: []string{"lon"}}},
		{"tas", api.Variable{
			Values:     [][]float64{{7, math.NaN()}},
			Dimensions: []string{"lat", "lon"},
		}},
	}
	for _, v := range vars {
		if err := cw.AddVar(v.name, v.v); err != nil {
			t.Fatalf("writing %s: %v", v.name, err)
		}
	}
	if err := cw.Close(); err != nil {
		t.Fatal(err)
	}

	g, err := OpenGrid(path, "tas", "lat", "lon")
	if err != nil {
		t.Fatal(err)
	}
	if g.Data.Elements[0] != 7 {
		t.Errorf("data[0] = %g, want 7", g.Data.Elements[0])
	}
	if !math.IsNaN(g.Data.Elements[1]) {
		t.Errorf("data[1] = %g, want NaN", g.Data.Elements[1])
	}
}
