package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrTimestepMismatch is returned when derived inputs span timesteps.
	ErrTimestepMismatch = errors.New("dataset: handles belong to different timesteps")

	// ErrNoInputs is returned when Derive gets an empty handle list.
	ErrNoInputs = errors.New("dataset: derive needs at least one input handle")
)

// CombineFunc builds a new array from already-loaded sibling arrays. It must
// be pure: no retained references, no mutation of the inputs.
type CombineFunc func(args []*Array) (*Array, error)

// Derive builds a synthetic handle whose data is fn applied to the forced
// data of the inputs. All inputs must share one timestep. Coordinate and
// limit caches are copied from the first input, one axis per dimension of the
// combiner's output, so a 1-D reduction of a 2-D field keeps only x.
func Derive(name string, fn CombineFunc, handles []*Handle) (*Handle, error) {
	if fn == nil {
		return nil, errNilCombiner
	}
	if len(handles) == 0 {
		return nil, ErrNoInputs
	}
	first := handles[0]
	for _, h := range handles[1:] {
		if h.Timestep() != first.Timestep() {
			return nil, fmt.Errorf("%w: %d and %d", ErrTimestepMismatch, first.Timestep(), h.Timestep())
		}
	}

	args := make([]*Array, len(handles))
	for i, h := range handles {
		arr, err := h.Data()
		if err != nil {
			return nil, fmt.Errorf("loading input %q: %w", h.Name(), err)
		}
		if err := arr.Force(); err != nil {
			return nil, fmt.Errorf("forcing input %q: %w", h.Name(), err)
		}
		args[i] = arr
	}

	out, err := fn(args)
	if err != nil {
		return nil, fmt.Errorf("combining into %q: %w", name, err)
	}

	d := &Handle{
		name:      name,
		timestep:  first.Timestep(),
		qualifier: first.Qualifier(),
		kind:      first.Kind(),
		data:      out,
		shape:     out.Shape(),
		dtype:     out.Dtype(),
	}

	// Copy coordinate data for as many axes as the output has. References
	// only; coordinate arrays are never mutated after construction.
	rank := out.Rank()
	if rank > 3 {
		rank = 3
	}
	for axis := 0; axis < rank; axis++ {
		first.mu.Lock()
		coord := first.coords[axis]
		lim := first.limits[axis]
		first.mu.Unlock()
		if coord == nil {
			if coord, err = first.coordData(axis); err != nil {
				return nil, fmt.Errorf("copying axis %d from %q: %w", axis+1, first.Name(), err)
			}
			first.mu.Lock()
			lim = first.limits[axis]
			first.mu.Unlock()
		}
		d.coords[axis] = coord
		d.limits[axis] = lim
	}
	return d, nil
}
