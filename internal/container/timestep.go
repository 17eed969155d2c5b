package container

import (
	"fmt"
	"strings"
	"sync"

	"github.com/plasmalab/dhyb/internal/dataset"
)

// Timestep owns the three lookup tables for one simulation timestep. It is
// created on the first file observed for that step during traversal and lives
// for the catalog's lifetime.
//
// Insertions take a coarse per-timestep lock so traversal workers can insert
// concurrently; per-file insertion work is small next to the walk I/O.
type Timestep struct {
	Step     int
	Fields   *Container
	Phases   *Container
	RawFiles *Container

	mu sync.Mutex
}

func NewTimestep(step int) *Timestep {
	return &Timestep{
		Step:     step,
		Fields:   NewFields(step),
		Phases:   NewPhases(step),
		RawFiles: NewRaw(step),
	}
}

// AddField inserts a field handle, validating its origin against the fixed
// origin set.
func (t *Timestep) AddField(h *dataset.Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Fields.Add(h)
}

// AddPhase inserts a phase handle, creating its species bucket if novel.
func (t *Timestep) AddPhase(h *dataset.Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Phases.Add(h)
}

// AddRaw inserts a raw-dump handle, creating its species bucket if novel.
func (t *Timestep) AddRaw(h *dataset.Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.RawFiles.Add(h)
}

func (t *Timestep) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Timestep(%d", t.Step)
	for _, c := range []*Container{t.Fields, t.Phases, t.RawFiles} {
		if c.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, ", %ss={", c.Kind())
		for i, q := range c.Qualifiers() {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %v", q, c.Names(q))
		}
		b.WriteString("}")
	}
	b.WriteString(")")
	return b.String()
}
