// Package viz renders catalog datasets in the terminal: asciigraph line
// plots of 1-D cuts and an interactive bubbletea browser.
package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/plasmalab/dhyb/internal/dataset"
)

// Cut is a 1-D sample line pulled out of a handle's data, ready to plot.
type Cut struct {
	X       []float64
	Y       []float64
	XLabel  string
	Caption string
}

// axisIndex maps the slice-axis flag values to coordinate axes.
func axisIndex(axis string) (int, error) {
	switch axis {
	case "x", "":
		return 0, nil
	case "y":
		return 1, nil
	case "z":
		return 2, nil
	}
	return 0, fmt.Errorf("slice axis must be x, y, or z, got %q", axis)
}

// LineCut extracts a 1-D cut along the given axis, fixing every other axis
// at index. Deferred arrays are forced here, before any numeric work.
func LineCut(h *dataset.Handle, axis string, index int) (Cut, error) {
	along, err := axisIndex(axis)
	if err != nil {
		return Cut{}, err
	}

	arr, err := h.Data()
	if err != nil {
		return Cut{}, err
	}
	if err := arr.Force(); err != nil {
		return Cut{}, err
	}
	shape := arr.Shape()
	if along >= len(shape) {
		return Cut{}, fmt.Errorf("data for %q is %d-dimensional, no %q axis", h.Name(), len(shape), axis)
	}

	coord, err := coordFor(h, along)
	if err != nil {
		return Cut{}, err
	}
	xs, err := coord.Values()
	if err != nil {
		return Cut{}, err
	}

	ys := make([]float64, shape[along])
	idx := make([]int, len(shape))
	for i := range idx {
		if i != along {
			if index < 0 || index >= shape[i] {
				return Cut{}, fmt.Errorf("slice index %d out of range for axis %d (size %d)", index, i, shape[i])
			}
			idx[i] = index
		}
	}
	for i := range ys {
		idx[along] = i
		v, err := arr.At(idx...)
		if err != nil {
			return Cut{}, err
		}
		ys[i] = v
	}

	xlabel, _ := AxisLabels(h.Name())
	caption := fmt.Sprintf("%s at timestep %d", h.Name(), h.Timestep())
	if len(shape) > 1 {
		caption = fmt.Sprintf("%s (cut along %s, other axes at %d)", caption, axis, index)
	}
	return Cut{X: xs, Y: ys, XLabel: xlabel, Caption: caption}, nil
}

func coordFor(h *dataset.Handle, axis int) (*dataset.Array, error) {
	switch axis {
	case 0:
		return h.XData()
	case 1:
		return h.YData()
	default:
		return h.ZData()
	}
}

// Render draws a cut as an asciigraph line plot.
func Render(cut Cut, width, height int) string {
	graph := asciigraph.Plot(cut.Y,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(cut.Caption),
	)
	footer := ""
	if len(cut.X) > 1 {
		footer = fmt.Sprintf("\n%s: %.4g .. %.4g", cut.XLabel, cut.X[0], cut.X[len(cut.X)-1])
	}
	return graph + footer
}
