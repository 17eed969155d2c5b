package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plasmalab/dhyb/internal/container"
	"github.com/plasmalab/dhyb/internal/dataset"
)

// fixedReader serves the same small 1-D dataset for every path, so catalog
// tests never touch real HDF5 files.
type fixedReader struct {
	vals []float64
}

func (r *fixedReader) ReadDataset(path, name string) ([]float64, []int, error) {
	return r.vals, []int{len(r.vals)}, nil
}

func (r *fixedReader) DatasetInfo(path, name string) ([]int, string, error) {
	return []int{len(r.vals)}, "float32", nil
}

func (r *fixedReader) AxisLimits(path, axis string) ([2]float64, error) {
	return [2]float64{0, float64(len(r.vals))}, nil
}

func (r *fixedReader) Keys(path string) ([]string, error) {
	return []string{"x1"}, nil
}

const sampleDeck = `
time {
	dt = 0.01,
	niter = 1000,
}

grid {
	ncells = 128, 64,
	boxsize = 12.8, 6.4,
}
`

// writeTree lays out an output directory with empty stand-in files; the
// traversal only reads paths, never file contents.
func writeTree(t *testing.T, relpaths []string) (input, output string) {
	t.Helper()
	root := t.TempDir()
	input = filepath.Join(root, "input")
	if err := os.WriteFile(input, []byte(sampleDeck), 0o644); err != nil {
		t.Fatal(err)
	}
	output = filepath.Join(root, "Output")
	for _, rel := range relpaths {
		full := filepath.Join(output, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return input, output
}

var sampleTree = []string{
	"Fields/Magnetic/Total/x/Bx_0.h5",
	"Fields/Magnetic/Total/x/Bx_16.h5",
	"Fields/Magnetic/Total/x/Bx_32.h5",
	"Fields/Magnetic/External/z/Bz_16.h5",
	"Fields/CurrentDens/x/J_5.h5",
	"Fields/Electric/Total/Intensity/E_16.h5",
	"Phase/p1x1/1/p1x1_16.h5",
	"Phase/p1x1/Total/p1x1_16.h5",
	"Phase/x3x2x1/1/bar_pres_8.h5",
	"Phase/FluidVel/1/x/V_16.h5",
	"Phase/PressureTen/2/xx/P_16.h5",
	"Raw/Sp01/raw_16.h5",
	"notes.txt",
}

func openSample(t *testing.T, mutate func(*Config)) *Catalog {
	t.Helper()
	input, output := writeTree(t, sampleTree)
	cfg := Config{
		InputFile:  input,
		OutputPath: output,
		Reader:     &fixedReader{vals: []float64{1, 2, 3, 4}},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	cat, err := Open(cfg)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	return cat
}

func TestOpenIndexesTree(t *testing.T) {
	cat := openSample(t, nil)

	got := cat.Timesteps()
	want := []int{5, 8, 16, 32}
	if len(got) != len(want) {
		t.Fatalf("expected timesteps %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected timesteps %v, got %v", want, got)
		}
	}

	// Timestep 0 is excluded from enumeration but reachable directly.
	if _, err := cat.Timestep(0); err != nil {
		t.Errorf("timestep 0 unreachable: %v", err)
	}

	ts, err := cat.Timestep(16)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts.Fields.Get("Bx"); err != nil {
		t.Errorf("Bx lookup failed: %v", err)
	}
	if _, err := ts.Fields.Get("Bz", container.Origin("External")); err != nil {
		t.Errorf("external Bz lookup failed: %v", err)
	}
	if _, err := ts.Fields.Get("Emagnitude"); err != nil {
		t.Errorf("Emagnitude lookup failed: %v", err)
	}
	if _, err := ts.Phases.Get("p1x1", container.SpeciesToken("Total")); err != nil {
		t.Errorf("aggregate p1x1 lookup failed: %v", err)
	}
	if _, err := ts.Phases.Get("Vx"); err != nil {
		t.Errorf("Vx lookup failed: %v", err)
	}
	if _, err := ts.Phases.Get("Pxx", container.Species(2)); err != nil {
		t.Errorf("Pxx lookup failed: %v", err)
	}
	if _, err := ts.RawFiles.Get("raw"); err != nil {
		t.Errorf("raw lookup failed: %v", err)
	}

	ts5, err := cat.Timestep(5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts5.Fields.Get("Jx"); err != nil {
		t.Errorf("current density lookup failed: %v", err)
	}

	ts8, err := cat.Timestep(8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts8.Phases.Get("P"); err != nil {
		t.Errorf("pressure trace lookup failed: %v", err)
	}

	fields, phases, raws := cat.Counts()
	if fields != 6 || phases != 5 || raws != 1 {
		t.Errorf("expected counts (6, 5, 1), got (%d, %d, %d)", fields, phases, raws)
	}
}

func TestIncludeZero(t *testing.T) {
	cat := openSample(t, func(cfg *Config) { cfg.IncludeZero = true })
	got := cat.Timesteps()
	if len(got) == 0 || got[0] != 0 {
		t.Errorf("expected leading 0, got %v", got)
	}
}

func TestTimestepIndex(t *testing.T) {
	cat := openSample(t, nil)

	last, err := cat.TimestepIndex(-1)
	if err != nil {
		t.Fatalf("index -1 failed: %v", err)
	}
	if last.Step != 32 {
		t.Errorf("expected step 32, got %d", last.Step)
	}

	first, err := cat.TimestepIndex(0)
	if err != nil {
		t.Fatalf("index 0 failed: %v", err)
	}
	if first.Step != 5 {
		t.Errorf("expected step 5, got %d", first.Step)
	}

	if _, err := cat.TimestepIndex(4); !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected range error, got %v", err)
	}
	if _, err := cat.TimestepIndex(-5); !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected range error, got %v", err)
	}
}

func TestTimestepNotFound(t *testing.T) {
	cat := openSample(t, nil)
	_, err := cat.Timestep(99)
	if !errors.Is(err, ErrTimestepNotFound) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestTraversalWarnsAndSkips(t *testing.T) {
	tree := append([]string{
		"Bogus/thing_3.h5",
		"Raw/background/raw_16.h5",
		"Fields/Magnetic/Wrong/x/B_16.h5",
	}, sampleTree...)
	input, output := writeTree(t, tree)
	cat, err := Open(Config{
		InputFile:  input,
		OutputPath: output,
		Reader:     &fixedReader{vals: []float64{1}},
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	warnings := cat.Diagnostics().Warnings()
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(warnings), warnings)
	}
	// Unknown kinds never create a timestep.
	if _, err := cat.Timestep(3); !errors.Is(err, ErrTimestepNotFound) {
		t.Errorf("skipped file materialized timestep 3: %v", err)
	}
	// A rejected origin leaves the rest of the step intact.
	ts, err := cat.Timestep(16)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts.Fields.Get("Bx"); err != nil {
		t.Errorf("valid sibling lost: %v", err)
	}
}

func TestOpenRejectsMissingPaths(t *testing.T) {
	input, output := writeTree(t, nil)

	if _, err := os.Stat(output); err != nil {
		// No files written means no output dir; create it empty.
		if err := os.MkdirAll(output, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	_, err := Open(Config{InputFile: filepath.Join(output, "nope"), OutputPath: output})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("expected config error for missing input, got %v", err)
	}

	_, err = Open(Config{InputFile: input, OutputPath: filepath.Join(output, "nope")})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("expected config error for missing output, got %v", err)
	}

	_, err = Open(Config{InputFile: input, OutputPath: input})
	if !errors.Is(err, ErrConfig) {
		t.Errorf("expected config error for file output path, got %v", err)
	}
}

func TestInputsParsed(t *testing.T) {
	cat := openSample(t, nil)
	deck := cat.Inputs()
	sec, ok := deck.Section("time")
	if !ok {
		t.Fatal("time section missing")
	}
	dt, ok := sec.Float("dt")
	if !ok {
		t.Fatal("dt missing or not numeric")
	}
	if dt != 0.01 {
		t.Errorf("expected dt 0.01, got %v", dt)
	}
}

func TestCreateDerivedField(t *testing.T) {
	cat := openSample(t, nil)
	ts, err := cat.Timestep(16)
	if err != nil {
		t.Fatal(err)
	}
	bx, err := ts.Fields.Get("Bx")
	if err != nil {
		t.Fatal(err)
	}

	double := func(args []*dataset.Array) (*dataset.Array, error) {
		vals, err := args[0].Values()
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = 2 * v
		}
		return dataset.NewEager(out, args[0].Shape(), args[0].Dtype()), nil
	}

	h, err := cat.Create("Bx2", double, []*dataset.Handle{bx})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	arr, err := h.Data()
	if err != nil {
		t.Fatal(err)
	}
	vals, err := arr.Values()
	if err != nil {
		t.Fatal(err)
	}
	if vals[0] != 2 || vals[3] != 8 {
		t.Errorf("unexpected derived values %v", vals)
	}

	// The derived field is registered and resolvable like any other.
	got, err := ts.Fields.Get("Bx2")
	if err != nil {
		t.Fatalf("derived lookup failed: %v", err)
	}
	if got != h {
		t.Error("derived lookup returned a different handle")
	}

	// A second registration under the same name is rejected.
	_, err = cat.Create("Bx2", double, []*dataset.Handle{bx})
	if !errors.Is(err, container.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Bx2") {
		t.Errorf("error does not name the field: %v", err)
	}
}

func TestCreateRejectsRaw(t *testing.T) {
	cat := openSample(t, nil)
	ts, err := cat.Timestep(16)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := ts.RawFiles.Get("raw")
	if err != nil {
		t.Fatal(err)
	}
	_, err = cat.Create("raw2", func(args []*dataset.Array) (*dataset.Array, error) {
		return args[0], nil
	}, []*dataset.Handle{raw})
	if !errors.Is(err, container.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
