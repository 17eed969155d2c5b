package dataset

// Reader is the storage boundary for handle loads. Each call opens the
// backing file read-only, reads the one named sub-resource, and closes it
// before returning; no handles stay open between calls.
//
// The production implementation lives in internal/hdf5io. Tests substitute a
// counting stub to verify each sub-resource is read at most once per handle.
type Reader interface {
	// ReadDataset loads the named dataset as a flat row-major buffer plus its
	// on-disk dimension order.
	ReadDataset(path, name string) (vals []float64, dims []int, err error)

	// DatasetInfo probes on-disk dimensions and element type without loading
	// any values.
	DatasetInfo(path, name string) (dims []int, dtype string, err error)

	// AxisLimits reads the two-element bounds array for one axis, e.g.
	// "X1 AXIS", from the file's AXIS group.
	AxisLimits(path, axis string) ([2]float64, error)

	// Keys enumerates the named datasets at the root of a raw particle file.
	Keys(path string) ([]string, error)
}
