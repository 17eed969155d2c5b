// Package catalog indexes a dHybridR output directory tree.
//
// A Catalog is built in one traversal pass: every file named *_<digits>.h5 is
// classified by its path shape, its canonical name derived from the directory
// tokens, and a lazily-bound dataset handle inserted into the owning
// timestep's container. Lookup afterwards is by (timestep, origin/species,
// name); the catalog is read-only once built.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/plasmalab/dhyb/internal/container"
	"github.com/plasmalab/dhyb/internal/dataset"
	"github.com/plasmalab/dhyb/internal/diag"
	"github.com/plasmalab/dhyb/internal/hdf5io"
	"github.com/plasmalab/dhyb/internal/inputdeck"
)

// Construction-time configuration errors abort; there is no usable catalog
// without a readable input deck and output directory.
var (
	ErrConfig = errors.New("catalog: invalid configuration")

	// ErrTimestepNotFound wraps exact-lookup misses.
	ErrTimestepNotFound = errors.New("catalog: timestep not found")

	// ErrIndexRange wraps ordinal lookups outside the visible timestep list.
	ErrIndexRange = errors.New("catalog: timestep index out of range")
)

// Config carries catalog construction parameters.
type Config struct {
	// InputFile is the simulation input deck. Must exist.
	InputFile string

	// OutputPath is the root of the output tree. Must be a directory.
	OutputPath string

	// Lazy makes handles return deferred arrays that load on Force.
	Lazy bool

	// IncludeZero keeps timestep 0 in Timesteps(). By default 0 is the
	// initial condition and is excluded from enumeration, though it stays
	// reachable through Timestep(0).
	IncludeZero bool

	// Reader overrides the storage backend. Nil selects the HDF5 reader.
	Reader dataset.Reader

	// Workers bounds traversal parallelism. Zero or negative selects a
	// default.
	Workers int
}

const defaultWorkers = 4

// Catalog owns the timestep index, the parsed input deck, and the
// diagnostics recorded while traversing.
type Catalog struct {
	cfg    Config
	reader dataset.Reader
	inputs inputdeck.Deck
	log    *diag.Log

	mu     sync.Mutex
	steps  map[int]*container.Timestep
	sorted []int // filled lazily after traversal
}

// Open validates paths, parses the input deck, and walks the output tree
// exactly once. Classification problems become warnings in Diagnostics();
// I/O failure of the walk itself aborts, since a half-built catalog is
// unusable.
func Open(cfg Config) (*Catalog, error) {
	if _, err := os.Stat(cfg.InputFile); err != nil {
		return nil, fmt.Errorf("%w: input file %s: %v", ErrConfig, cfg.InputFile, err)
	}
	info, err := os.Stat(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: output path %s: %v", ErrConfig, cfg.OutputPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: output path %s is not a directory", ErrConfig, cfg.OutputPath)
	}

	deck, err := inputdeck.ParseFile(cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("parsing input deck %s: %w", cfg.InputFile, err)
	}

	reader := cfg.Reader
	if reader == nil {
		reader = hdf5io.New()
	}

	c := &Catalog{
		cfg:    cfg,
		reader: reader,
		inputs: deck,
		log:    diag.NewLog(),
		steps:  make(map[int]*container.Timestep),
	}
	if err := c.traverse(); err != nil {
		return nil, err
	}
	return c, nil
}

type fileTask struct {
	dir      string
	name     string
	timestep int
}

// traverse walks the output root once, then fans classification out over a
// worker pool. Timestep creation on first touch is serialized by the catalog
// lock; container insertion takes the per-timestep lock.
func (c *Catalog) traverse() error {
	var tasks []fileTask
	err := filepath.WalkDir(c.cfg.OutputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ts, ok := matchTimestep(d.Name()); ok {
			tasks = append(tasks, fileTask{dir: filepath.Dir(path), name: d.Name(), timestep: ts})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", c.cfg.OutputPath, err)
	}

	workers := c.cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}
	if workers <= 1 {
		for _, t := range tasks {
			c.processFile(t)
		}
		return nil
	}

	ch := make(chan fileTask)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for t := range ch {
				c.processFile(t)
			}
		}()
	}
	for _, t := range tasks {
		ch <- t
	}
	close(ch)
	wg.Wait()
	return nil
}

// processFile classifies one file and inserts its handle. All failures are
// isolated to this file and recorded as diagnostics.
func (c *Catalog) processFile(t fileTask) {
	rec, err := classify(c.cfg.OutputPath, t.dir, t.name, t.timestep)
	if err != nil {
		c.log.Warnf(filepath.Join(t.dir, t.name), "skipped: %v", err)
		return
	}
	if rec.Kind == KindUnknown {
		c.log.Warnf(rec.Path, "unknown output kind %q, skipped", rec.Name)
		return
	}

	ts := c.timestepFor(rec.Timestep)
	var kind dataset.Kind
	var add func(*dataset.Handle) error
	switch rec.Kind {
	case KindField:
		kind, add = dataset.FieldKind, ts.AddField
	case KindPhase:
		kind, add = dataset.PhaseKind, ts.AddPhase
	case KindRaw:
		kind, add = dataset.RawKind, ts.AddRaw
	}
	h := dataset.New(c.reader, rec.Path, rec.Name, rec.Timestep, c.cfg.Lazy, kind, rec.Qualifier)
	if err := add(h); err != nil {
		c.log.Warnf(rec.Path, "skipped: %v", err)
	}
}

// timestepFor returns the Timestep for step, creating it on first touch.
func (c *Catalog) timestepFor(step int) *container.Timestep {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts, ok := c.steps[step]
	if !ok {
		ts = container.NewTimestep(step)
		c.steps[step] = ts
		c.sorted = nil
	}
	return ts
}

// Timestep is the exact lookup by timestep value. Timestep 0 is always
// reachable here even when excluded from enumeration.
func (c *Catalog) Timestep(step int) (*container.Timestep, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts, ok := c.steps[step]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrTimestepNotFound, step)
	}
	return ts, nil
}

// Timesteps returns the sorted distinct timestep values. Unless IncludeZero
// is set, a present timestep 0 is dropped from this list.
func (c *Catalog) Timesteps() []int {
	all := c.allSorted()
	if !c.cfg.IncludeZero && len(all) > 0 && all[0] == 0 {
		return all[1:]
	}
	return all
}

func (c *Catalog) allSorted() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sorted == nil {
		c.sorted = make([]int, 0, len(c.steps))
		for step := range c.steps {
			c.sorted = append(c.sorted, step)
		}
		sort.Ints(c.sorted)
	}
	return c.sorted
}

// TimestepIndex resolves an ordinal index against the visible timestep list,
// with negative wraparound: -1 is the last visible timestep.
func (c *Catalog) TimestepIndex(i int) (*container.Timestep, error) {
	visible := c.Timesteps()
	n := len(visible)
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil, fmt.Errorf("%w: %d (valid range [%d, %d))", ErrIndexRange, i, -n, n)
	}
	return c.Timestep(visible[idx])
}

// Create registers a derived field or phase: fn applied to the forced data of
// the input handles, inserted into their shared timestep under name. The kind
// and qualifier follow the first input. A name already present for that
// qualifier at that timestep is rejected.
func (c *Catalog) Create(name string, fn dataset.CombineFunc, handles []*dataset.Handle) (*dataset.Handle, error) {
	h, err := dataset.Derive(name, fn, handles)
	if err != nil {
		return nil, err
	}
	ts, err := c.Timestep(h.Timestep())
	if err != nil {
		return nil, err
	}

	switch h.Kind() {
	case dataset.FieldKind:
		if ts.Fields.Has(name, h.Qualifier()) {
			return nil, fmt.Errorf("%w: field %q already exists at timestep %d", container.ErrValidation, name, h.Timestep())
		}
		if err := ts.AddField(h); err != nil {
			return nil, err
		}
	case dataset.PhaseKind:
		if ts.Phases.Has(name, h.Qualifier()) {
			return nil, fmt.Errorf("%w: phase %q already exists at timestep %d", container.ErrValidation, name, h.Timestep())
		}
		if err := ts.AddPhase(h); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: cannot derive %s datasets", container.ErrValidation, h.Kind())
	}
	return h, nil
}

// Inputs exposes the parsed input deck.
func (c *Catalog) Inputs() inputdeck.Deck { return c.inputs }

// Diagnostics exposes the events recorded during traversal.
func (c *Catalog) Diagnostics() *diag.Log { return c.log }

// Counts reports how many handles of each kind were indexed.
func (c *Catalog) Counts() (fields, phases, raws int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ts := range c.steps {
		fields += ts.Fields.Len()
		phases += ts.Phases.Len()
		raws += ts.RawFiles.Len()
	}
	return fields, phases, raws
}
