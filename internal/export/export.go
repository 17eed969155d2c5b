// Package export writes catalog datasets to portable formats: indented JSON
// for whole arrays and CSV for 1-D cuts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/plasmalab/dhyb/internal/dataset"
	"github.com/plasmalab/dhyb/internal/viz"
)

// DatasetJSON is the on-disk JSON shape of one exported dataset.
type DatasetJSON struct {
	Name      string    `json:"name"`
	Timestep  int       `json:"timestep"`
	Qualifier string    `json:"qualifier"`
	Kind      string    `json:"kind"`
	Dtype     string    `json:"dtype,omitempty"`
	Shape     []int     `json:"shape,omitempty"`
	Values    []float64 `json:"values,omitempty"`

	// Columns is set instead of Shape/Values for raw particle dumps.
	Columns map[string][]float64 `json:"columns,omitempty"`
}

// JSON writes h with all its values as indented JSON.
func JSON(w io.Writer, h *dataset.Handle) error {
	data := DatasetJSON{
		Name:      h.Name(),
		Timestep:  h.Timestep(),
		Qualifier: h.Qualifier(),
		Kind:      h.Kind().String(),
	}

	if h.Kind() == dataset.RawKind {
		cols, err := h.Columns()
		if err != nil {
			return err
		}
		data.Columns = make(map[string][]float64, len(cols))
		for key, arr := range cols {
			vals, err := arr.Values()
			if err != nil {
				return fmt.Errorf("column %q: %w", key, err)
			}
			data.Columns[key] = vals
		}
	} else {
		arr, err := h.Data()
		if err != nil {
			return err
		}
		vals, err := arr.Values()
		if err != nil {
			return err
		}
		data.Shape = arr.Shape()
		data.Dtype = arr.Dtype()
		data.Values = vals
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// CSVCut writes a 1-D cut as two columns with a header row.
func CSVCut(w io.Writer, cut viz.Cut, name string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{cut.XLabel, name}); err != nil {
		return err
	}
	for i := range cut.Y {
		row := []string{
			strconv.FormatFloat(cut.X[i], 'g', -1, 64),
			strconv.FormatFloat(cut.Y[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVColumns writes a raw dump's columns side by side, keys sorted, rows
// padded with empty cells where columns differ in length.
func CSVColumns(w io.Writer, h *dataset.Handle) error {
	cols, err := h.Columns()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(cols))
	for key := range cols {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	series := make([][]float64, len(keys))
	rows := 0
	for i, key := range keys {
		vals, err := cols[key].Values()
		if err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		series[i] = vals
		if len(vals) > rows {
			rows = len(vals)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(keys); err != nil {
		return err
	}
	row := make([]string, len(keys))
	for r := 0; r < rows; r++ {
		for i := range keys {
			if r < len(series[i]) {
				row[i] = strconv.FormatFloat(series[i][r], 'g', -1, 64)
			} else {
				row[i] = ""
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
