// Package hdf5io adapts the go-hdf5 library to the dataset.Reader boundary.
//
// Every method opens the file read-only, reads the one requested
// sub-resource, and closes the file before returning.
package hdf5io

import (
	"fmt"
	"sort"

	"github.com/robert-malhotra/go-hdf5/hdf5"
)

// axisGroup holds the per-axis limit arrays in field and phase files.
const axisGroup = "AXIS"

type Reader struct{}

func New() *Reader {
	return &Reader{}
}

// ReadDataset loads the named dataset as float64 values with its on-disk
// dimension order.
func (r *Reader) ReadDataset(path, name string) ([]float64, []int, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ds, err := f.OpenDataset(name)
	if err != nil {
		return nil, nil, fmt.Errorf("opening dataset %q in %s: %w", name, path, err)
	}
	vals, err := ds.ReadFloat64()
	if err != nil {
		return nil, nil, fmt.Errorf("reading dataset %q in %s: %w", name, path, err)
	}
	return vals, intDims(ds.Shape()), nil
}

// DatasetInfo probes dimensions and element type without reading values.
func (r *Reader) DatasetInfo(path, name string) ([]int, string, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ds, err := f.OpenDataset(name)
	if err != nil {
		return nil, "", fmt.Errorf("opening dataset %q in %s: %w", name, path, err)
	}
	dtype := "unknown"
	if t, err := ds.GoType(); err == nil {
		dtype = t.String()
	}
	return intDims(ds.Shape()), dtype, nil
}

// AxisLimits reads the two-element bounds array for one axis from the AXIS
// group.
func (r *Reader) AxisLimits(path, axis string) ([2]float64, error) {
	var lim [2]float64

	f, err := hdf5.Open(path)
	if err != nil {
		return lim, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	g, err := f.OpenGroup(axisGroup)
	if err != nil {
		return lim, fmt.Errorf("opening %s group in %s: %w", axisGroup, path, err)
	}
	ds, err := g.OpenDataset(axis)
	if err != nil {
		return lim, fmt.Errorf("opening %q in %s: %w", axis, path, err)
	}
	vals, err := ds.ReadFloat64()
	if err != nil {
		return lim, fmt.Errorf("reading %q in %s: %w", axis, path, err)
	}
	if len(vals) < 2 {
		return lim, fmt.Errorf("axis %q in %s has %d values, want 2", axis, path, len(vals))
	}
	lim[0], lim[1] = vals[0], vals[1]
	return lim, nil
}

// Keys enumerates the root-level dataset names of a raw particle file.
func (r *Reader) Keys(path string) ([]string, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	members, err := f.Root().Members()
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}
	sort.Strings(members)
	return members, nil
}

func intDims(dims []uint64) []int {
	out := make([]int, len(dims))
	for i, d := range dims {
		out[i] = int(d)
	}
	return out
}
