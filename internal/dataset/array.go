package dataset

import (
	"errors"
	"fmt"
)

// Array is an N-dimensional numeric array that is either eager (values held
// in memory) or deferred (a thunk plus shape/dtype metadata). Both variants
// answer shape and dtype probes without touching the backing file; deferred
// arrays load on the first Force.
type Array struct {
	shape []int
	dtype string
	vals  []float64
	thunk func() ([]float64, error)
}

// NewEager wraps an already materialized buffer.
func NewEager(vals []float64, shape []int, dtype string) *Array {
	return &Array{shape: shape, dtype: dtype, vals: vals}
}

// NewDeferred builds an array whose values are produced by thunk on first
// Force. The thunk runs at most once.
func NewDeferred(thunk func() ([]float64, error), shape []int, dtype string) *Array {
	return &Array{shape: shape, dtype: dtype, thunk: thunk}
}

func (a *Array) Shape() []int { return a.shape }

func (a *Array) Dtype() string { return a.dtype }

// Rank is the number of axes.
func (a *Array) Rank() int { return len(a.shape) }

// Len is the total element count implied by the shape.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// Deferred reports whether the values have not been materialized yet.
func (a *Array) Deferred() bool { return a.vals == nil && a.thunk != nil }

// Force materializes a deferred array. It is a no-op on eager arrays and on
// arrays already forced.
func (a *Array) Force() error {
	if a.vals != nil || a.thunk == nil {
		return nil
	}
	vals, err := a.thunk()
	if err != nil {
		return err
	}
	if len(vals) != a.Len() {
		return fmt.Errorf("deferred load returned %d values, shape %v wants %d", len(vals), a.shape, a.Len())
	}
	a.vals = vals
	a.thunk = nil
	return nil
}

// Values forces the array and returns the flat buffer in row-major order
// with axis 0 varying slowest.
func (a *Array) Values() ([]float64, error) {
	if err := a.Force(); err != nil {
		return nil, err
	}
	return a.vals, nil
}

// At forces the array and returns the element at the given multi-index.
func (a *Array) At(idx ...int) (float64, error) {
	if len(idx) != len(a.shape) {
		return 0, fmt.Errorf("index rank %d does not match array rank %d", len(idx), len(a.shape))
	}
	vals, err := a.Values()
	if err != nil {
		return 0, err
	}
	flat := 0
	for i, ix := range idx {
		if ix < 0 || ix >= a.shape[i] {
			return 0, fmt.Errorf("index %d out of range for axis %d (size %d)", ix, i, a.shape[i])
		}
		flat = flat*a.shape[i] + ix
	}
	return vals[flat], nil
}

var errNilCombiner = errors.New("dataset: nil combining function")

// transposeReverse reorders a row-major buffer with on-disk dims into the
// buffer whose axis order is reversed, so that axis 0 of the result is the
// innermost on-disk axis (X1). Downstream coordinate indexing relies on this
// order.
func transposeReverse(vals []float64, dims []int) []float64 {
	n := len(dims)
	if n <= 1 {
		out := make([]float64, len(vals))
		copy(out, vals)
		return out
	}

	// Strides of the source layout.
	srcStride := make([]int, n)
	srcStride[n-1] = 1
	for i := n - 2; i >= 0; i-- {
		srcStride[i] = srcStride[i+1] * dims[i+1]
	}

	// Destination shape is the reversed dims; iterate destination indices in
	// order and gather from the source.
	dstShape := make([]int, n)
	for i := range dims {
		dstShape[i] = dims[n-1-i]
	}

	out := make([]float64, len(vals))
	idx := make([]int, n)
	for flat := range out {
		src := 0
		for i := 0; i < n; i++ {
			// Destination axis i maps to source axis n-1-i.
			src += idx[i] * srcStride[n-1-i]
		}
		out[flat] = vals[src]

		for i := n - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < dstShape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return out
}

// reverseDims returns dims in reverse order, the logical shape after
// transposition.
func reverseDims(dims []int) []int {
	out := make([]int, len(dims))
	for i, d := range dims {
		out[len(dims)-1-i] = d
	}
	return out
}
