// Package dataset provides lazily-bound references to on-disk simulation
// datasets. A Handle names one dataset (a field, a phase-space histogram, or
// a raw particle dump) and materializes its array, coordinate grids, and axis
// limits only when first asked, caching each sub-resource per instance.
package dataset

import (
	"errors"
	"fmt"
	"sync"
)

// Kind tags what a handle refers to.
type Kind int

const (
	FieldKind Kind = iota
	PhaseKind
	RawKind
)

func (k Kind) String() string {
	switch k {
	case FieldKind:
		return "field"
	case PhaseKind:
		return "phase"
	case RawKind:
		return "raw"
	}
	return "unknown"
}

// primaryDataset is the dataset name inside every field and phase file.
const primaryDataset = "DATA"

var axisNames = [3]string{"X1 AXIS", "X2 AXIS", "X3 AXIS"}

var (
	// ErrSynthetic is returned when a file-backed operation is invoked on a
	// derived handle with no backing file.
	ErrSynthetic = errors.New("dataset: handle has no backing file")

	// ErrAxisRange is returned for a coordinate axis beyond the data's rank.
	ErrAxisRange = errors.New("dataset: axis beyond data rank")
)

// Handle is a lazily-bound reference to one on-disk dataset. All accessors
// cache their result, so every backing sub-resource is read at most once per
// handle. Handles are safe for concurrent use.
type Handle struct {
	reader    Reader // nil for synthetic handles
	path      string
	name      string
	timestep  int
	qualifier string // origin for fields, species token for phases/raw
	kind      Kind
	lazy      bool

	mu      sync.Mutex
	data    *Array
	shape   []int
	dtype   string
	coords  [3]*Array
	limits  [3]*[2]float64
	columns map[string]*Array
}

// New binds a handle to the dataset at path. Under lazy, Data and Columns
// return deferred arrays whose bytes load on Force.
func New(r Reader, path, name string, timestep int, lazy bool, kind Kind, qualifier string) *Handle {
	return &Handle{
		reader:    r,
		path:      path,
		name:      name,
		timestep:  timestep,
		qualifier: qualifier,
		kind:      kind,
		lazy:      lazy,
	}
}

func (h *Handle) Name() string      { return h.name }
func (h *Handle) Path() string      { return h.path }
func (h *Handle) Timestep() int     { return h.timestep }
func (h *Handle) Qualifier() string { return h.qualifier }
func (h *Handle) Kind() Kind        { return h.kind }
func (h *Handle) Lazy() bool        { return h.lazy }

// Synthetic reports whether the handle was built by Derive rather than bound
// to a file.
func (h *Handle) Synthetic() bool { return h.reader == nil && h.path == "" }

func (h *Handle) String() string {
	return fmt.Sprintf("%s %q (timestep=%d, %s)", h.kind, h.name, h.timestep, h.qualifier)
}

// Shape returns the logical shape: the on-disk dimensions reversed, matching
// the axis order Data presents. Metadata only; no values are loaded.
func (h *Handle) Shape() ([]int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shapeLocked()
}

func (h *Handle) shapeLocked() ([]int, error) {
	if h.shape != nil {
		return h.shape, nil
	}
	if h.Synthetic() {
		if h.data != nil {
			h.shape = h.data.Shape()
			return h.shape, nil
		}
		return nil, ErrSynthetic
	}
	dims, dtype, err := h.reader.DatasetInfo(h.path, primaryDataset)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", h.path, err)
	}
	h.shape = reverseDims(dims)
	h.dtype = dtype
	return h.shape, nil
}

// Dtype returns the element type of the backing dataset without loading it.
func (h *Handle) Dtype() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dtype != "" {
		return h.dtype, nil
	}
	if h.Synthetic() {
		if h.data != nil {
			h.dtype = h.data.Dtype()
			return h.dtype, nil
		}
		return "", ErrSynthetic
	}
	if _, err := h.shapeLocked(); err != nil {
		return "", err
	}
	return h.dtype, nil
}

// Data returns the primary array with axes reordered so axis 0 is X1. The
// on-disk layout stores X1 innermost, so the stored buffer is transposed on
// load. Eager handles read immediately on first call; lazy handles return a
// deferred array. Either way the result is cached.
func (h *Handle) Data() (*Array, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.data != nil {
		return h.data, nil
	}
	if h.Synthetic() {
		return nil, ErrSynthetic
	}

	load := func() ([]float64, error) {
		vals, dims, err := h.reader.ReadDataset(h.path, primaryDataset)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", h.path, err)
		}
		return transposeReverse(vals, dims), nil
	}

	shape, err := h.shapeLocked()
	if err != nil {
		return nil, err
	}

	if h.lazy {
		h.data = NewDeferred(load, shape, h.dtype)
		return h.data, nil
	}
	vals, err := load()
	if err != nil {
		return nil, err
	}
	h.data = NewEager(vals, shape, h.dtype)
	return h.data, nil
}

// XData returns cell-center coordinates along the first axis.
func (h *Handle) XData() (*Array, error) { return h.coordData(0) }

// YData returns cell-center coordinates along the second axis.
func (h *Handle) YData() (*Array, error) { return h.coordData(1) }

// ZData returns cell-center coordinates along the third axis.
func (h *Handle) ZData() (*Array, error) { return h.coordData(2) }

func (h *Handle) coordData(axis int) (*Array, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.coords[axis] != nil {
		return h.coords[axis], nil
	}
	shape, err := h.shapeLocked()
	if err != nil {
		return nil, err
	}
	if axis >= len(shape) {
		return nil, fmt.Errorf("%w: axis %d of %d-dimensional data", ErrAxisRange, axis+1, len(shape))
	}
	lim, err := h.limitsLocked(axis)
	if err != nil {
		return nil, err
	}
	h.coords[axis] = cellCenters(*lim, shape[axis])
	return h.coords[axis], nil
}

// cellCenters places shape sample points at the midpoints of equal-width bins
// spanning the limits: coord[i] = low + step*(i + 0.5).
func cellCenters(lim [2]float64, length int) *Array {
	step := (lim[1] - lim[0]) / float64(length)
	vals := make([]float64, length)
	for i := range vals {
		vals[i] = lim[0] + step*(float64(i)+0.5)
	}
	return NewEager(vals, []int{length}, "float64")
}

// XLimData returns the stored two-element bounds of the first axis.
func (h *Handle) XLimData() ([2]float64, error) { return h.limData(0) }

// YLimData returns the stored two-element bounds of the second axis.
func (h *Handle) YLimData() ([2]float64, error) { return h.limData(1) }

// ZLimData returns the stored two-element bounds of the third axis.
func (h *Handle) ZLimData() ([2]float64, error) { return h.limData(2) }

func (h *Handle) limData(axis int) ([2]float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	lim, err := h.limitsLocked(axis)
	if err != nil {
		return [2]float64{}, err
	}
	return *lim, nil
}

func (h *Handle) limitsLocked(axis int) (*[2]float64, error) {
	if h.limits[axis] != nil {
		return h.limits[axis], nil
	}
	if h.Synthetic() {
		return nil, ErrSynthetic
	}
	lim, err := h.reader.AxisLimits(h.path, axisNames[axis])
	if err != nil {
		return nil, fmt.Errorf("reading %s of %s: %w", axisNames[axis], h.path, err)
	}
	h.limits[axis] = &lim
	return h.limits[axis], nil
}

// Columns loads every named column of a raw particle dump into a map. The
// whole map is populated on first access; later calls return the cached map
// unchanged. Under lazy, each column is a deferred array.
func (h *Handle) Columns() (map[string]*Array, error) {
	if h.kind != RawKind {
		return nil, fmt.Errorf("dataset: columns requested on %s handle %q", h.kind, h.name)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.columns != nil {
		return h.columns, nil
	}
	if h.Synthetic() {
		return nil, ErrSynthetic
	}

	keys, err := h.reader.Keys(h.path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", h.path, err)
	}
	cols := make(map[string]*Array, len(keys))
	for _, key := range keys {
		if h.lazy {
			dims, dtype, err := h.reader.DatasetInfo(h.path, key)
			if err != nil {
				return nil, fmt.Errorf("probing column %q of %s: %w", key, h.path, err)
			}
			k := key
			cols[key] = NewDeferred(func() ([]float64, error) {
				vals, _, err := h.reader.ReadDataset(h.path, k)
				return vals, err
			}, dims, dtype)
			continue
		}
		vals, dims, err := h.reader.ReadDataset(h.path, key)
		if err != nil {
			return nil, fmt.Errorf("reading column %q of %s: %w", key, h.path, err)
		}
		cols[key] = NewEager(vals, dims, "float64")
	}
	h.columns = cols
	return h.columns, nil
}
