package inputdeck

import (
	"os"
	"path/filepath"
	"testing"
)

const sample = `
! dHybridR input deck
node_conf
{
	node_number = 4, 2,    ! MPI decomposition
}

time
{
	dt = 0.01,
	niter = 2000,
	t0 = 0.0
}

grid
{
	boxsize = 12.8d0, 6.4D1,
	ncells = 128, 64,
}

diag_species
{
	raw_write = .true.,
	label = 'H+ ions',
	comment = "has ! inside quotes",
	frac = .false.
}
`

func TestParseSections(t *testing.T) {
	d, err := Parse(sample)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	got := d.Sections()
	want := []string{"node_conf", "time", "grid", "diag_species"}
	if len(got) != len(want) {
		t.Fatalf("expected sections %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("section order: expected %v, got %v", want, got)
		}
	}
}

func TestScalarTypes(t *testing.T) {
	d, err := Parse(sample)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	tm, _ := d.Section("time")
	if dt, ok := tm.Float("dt"); !ok || dt != 0.01 {
		t.Errorf("dt: got %v, %v", dt, ok)
	}
	if n, ok := tm.Int("niter"); !ok || n != 2000 {
		t.Errorf("niter: got %v, %v", n, ok)
	}
	// Trailing line without a comma still parses.
	if t0, ok := tm.Float("t0"); !ok || t0 != 0.0 {
		t.Errorf("t0: got %v, %v", t0, ok)
	}

	ds, _ := d.Section("diag_species")
	if b, ok := ds.Bool("raw_write"); !ok || !b {
		t.Errorf("raw_write: got %v, %v", b, ok)
	}
	if b, ok := ds.Bool("frac"); !ok || b {
		t.Errorf("frac: got %v, %v", b, ok)
	}
	if s, ok := ds.Str("label"); !ok || s != "H+ ions" {
		t.Errorf("label: got %q, %v", s, ok)
	}
	if s, ok := ds.Str("comment"); !ok || s != "has ! inside quotes" {
		t.Errorf("quoted comment mangled: got %q, %v", s, ok)
	}
}

func TestFortranExponents(t *testing.T) {
	d, err := Parse(sample)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	grid, _ := d.Section("grid")
	box, ok := grid.Floats("boxsize")
	if !ok || len(box) != 2 {
		t.Fatalf("boxsize: got %v, %v", box, ok)
	}
	if box[0] != 12.8 || box[1] != 64.0 {
		t.Errorf("expected [12.8 64], got %v", box)
	}
}

func TestValueLists(t *testing.T) {
	d, err := Parse(sample)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	nc, _ := d.Section("node_conf")
	vals, ok := nc["node_number"]
	if !ok || len(vals) != 2 {
		t.Fatalf("node_number: got %v", vals)
	}
	if vals[0] != int64(4) || vals[1] != int64(2) {
		t.Errorf("expected [4 2], got %v", vals)
	}
}

func TestMapCollapsesScalars(t *testing.T) {
	d, err := Parse(sample)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	m := d.Map()
	if m["time"]["dt"] != 0.01 {
		t.Errorf("scalar not collapsed: %v", m["time"]["dt"])
	}
	if _, isList := m["grid"]["ncells"].([]Value); !isList {
		t.Errorf("list collapsed: %T", m["grid"]["ncells"])
	}
}

func TestMalformedLines(t *testing.T) {
	tests := []string{
		"time { dt 0.01, }",
		"time { = 0.01, }",
		"time { dt = , }",
	}
	for _, text := range tests {
		if _, err := Parse(text); err == nil {
			t.Errorf("parse(%q): expected error", text)
		}
	}
}

func TestUnknownScalarPassesThrough(t *testing.T) {
	d, err := Parse("x { name = plasma_run, }")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	sec, _ := d.Section("x")
	if s, ok := sec.Str("name"); !ok || s != "plasma_run" {
		t.Errorf("bareword: got %q, %v", s, ok)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(d.Sections()) != 4 {
		t.Errorf("expected 4 sections, got %d", len(d.Sections()))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
