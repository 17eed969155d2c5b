package viz

import (
	"strings"
	"testing"

	"github.com/plasmalab/dhyb/internal/dataset"
)

type gridReader struct {
	vals []float64
	dims []int // on-disk order
}

func (r *gridReader) ReadDataset(path, name string) ([]float64, []int, error) {
	return r.vals, r.dims, nil
}

func (r *gridReader) DatasetInfo(path, name string) ([]int, string, error) {
	return r.dims, "float32", nil
}

func (r *gridReader) AxisLimits(path, axis string) ([2]float64, error) {
	return [2]float64{0, 10}, nil
}

func (r *gridReader) Keys(path string) ([]string, error) {
	return nil, nil
}

func TestLineCut1D(t *testing.T) {
	r := &gridReader{vals: []float64{3, 1, 4, 1, 5}, dims: []int{5}}
	h := dataset.New(r, "Bx_16.h5", "Bx", 16, false, dataset.FieldKind, "Total")

	cut, err := LineCut(h, "x", 0)
	if err != nil {
		t.Fatalf("cut failed: %v", err)
	}
	if len(cut.Y) != 5 || cut.Y[2] != 4 {
		t.Errorf("unexpected ys %v", cut.Y)
	}
	// Cell centers of [0, 10] over 5 bins.
	if cut.X[0] != 1 || cut.X[4] != 9 {
		t.Errorf("unexpected xs %v", cut.X)
	}
	if !strings.Contains(cut.Caption, "Bx") || !strings.Contains(cut.Caption, "16") {
		t.Errorf("caption missing context: %q", cut.Caption)
	}
}

func TestLineCut2D(t *testing.T) {
	// Stored [2, 3]: 3 along X1, 2 along X2. Logical shape [3, 2].
	r := &gridReader{vals: []float64{0, 1, 2, 3, 4, 5}, dims: []int{2, 3}}
	h := dataset.New(r, "Bx_16.h5", "Bx", 16, false, dataset.FieldKind, "Total")

	// Cut along x with y fixed at 1: logical [i][1] = stored[1][i].
	cut, err := LineCut(h, "x", 1)
	if err != nil {
		t.Fatalf("cut failed: %v", err)
	}
	want := []float64{3, 4, 5}
	for i := range want {
		if cut.Y[i] != want[i] {
			t.Fatalf("expected ys %v, got %v", want, cut.Y)
		}
	}

	// Cut along y with x fixed at 2: logical [2][j] = stored[j][2].
	cut, err = LineCut(h, "y", 2)
	if err != nil {
		t.Fatalf("cut failed: %v", err)
	}
	want = []float64{2, 5}
	for i := range want {
		if cut.Y[i] != want[i] {
			t.Fatalf("expected ys %v, got %v", want, cut.Y)
		}
	}
}

func TestLineCutBadAxis(t *testing.T) {
	r := &gridReader{vals: []float64{1, 2}, dims: []int{2}}
	h := dataset.New(r, "Bx_16.h5", "Bx", 16, false, dataset.FieldKind, "Total")

	if _, err := LineCut(h, "q", 0); err == nil {
		t.Error("expected error for unknown axis")
	}
	if _, err := LineCut(h, "y", 0); err == nil {
		t.Error("expected error for axis beyond rank")
	}
}

func TestLineCutIndexRange(t *testing.T) {
	r := &gridReader{vals: []float64{0, 1, 2, 3, 4, 5}, dims: []int{2, 3}}
	h := dataset.New(r, "Bx_16.h5", "Bx", 16, false, dataset.FieldKind, "Total")
	if _, err := LineCut(h, "x", 5); err == nil {
		t.Error("expected error for out-of-range slice index")
	}
}

func TestRenderIncludesCaptionAndRange(t *testing.T) {
	cut := Cut{
		X:       []float64{1, 3, 5},
		Y:       []float64{0, 2, 1},
		XLabel:  "x / d_i",
		Caption: "Bx at timestep 16",
	}
	out := Render(cut, 40, 8)
	if !strings.Contains(out, "Bx at timestep 16") {
		t.Errorf("caption missing:\n%s", out)
	}
	if !strings.Contains(out, "x / d_i") {
		t.Errorf("x range footer missing:\n%s", out)
	}
}

func TestAxisLabels(t *testing.T) {
	tests := []struct {
		name string
		x, y string
	}{
		{"p1x1", "x / d_i", "p_x / (m_i v_A)"},
		{"x3x2", "y / d_i", "z / d_i"},
		{"etx1", "x / d_i", "ln(e_tot / (m_i v_A^2))"},
		{"Bx", "x / d_i", "y / d_i"}, // spatial default
	}
	for _, tt := range tests {
		x, y := AxisLabels(tt.name)
		if x != tt.x || y != tt.y {
			t.Errorf("labels(%q) = (%q, %q), want (%q, %q)", tt.name, x, y, tt.x, tt.y)
		}
	}
}
