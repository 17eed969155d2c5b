package viz

// Axis captions for phase-space projections, keyed by canonical name. The
// default is a spatial x/y pair; projection names select position or momentum
// axes per their coordinate codes.

const (
	labelX    = "x / d_i"
	labelY    = "y / d_i"
	labelZ    = "z / d_i"
	labelPX   = "p_x / (m_i v_A)"
	labelPY   = "p_y / (m_i v_A)"
	labelPZ   = "p_z / (m_i v_A)"
	labelPTot = "p_tot / (m_i v_A)"
	labelETot = "ln(e_tot / (m_i v_A^2))"
)

var axisLabels = map[string][2]string{
	"p1x1": {labelX, labelPX},
	"p1x2": {labelY, labelPX},
	"p1x3": {labelZ, labelPX},

	"p2x1": {labelX, labelPY},
	"p2x2": {labelY, labelPY},
	"p2x3": {labelZ, labelPY},

	"p3x1": {labelX, labelPZ},
	"p3x2": {labelY, labelPZ},
	"p3x3": {labelZ, labelPZ},

	"x2x1": {labelX, labelY},
	"x3x1": {labelX, labelZ},
	"x3x2": {labelY, labelZ},

	"p2p1": {labelPX, labelPY},
	"p3p1": {labelPX, labelPZ},
	"p3p2": {labelPY, labelPZ},

	"ptx1": {labelX, labelPTot},
	"ptx2": {labelY, labelPTot},
	"ptx3": {labelZ, labelPTot},

	"etx1": {labelX, labelETot},
	"etx2": {labelY, labelETot},
	"etx3": {labelZ, labelETot},
}

// AxisLabels returns the (x, y) axis captions for a dataset name.
func AxisLabels(name string) (string, string) {
	if l, ok := axisLabels[name]; ok {
		return l[0], l[1]
	}
	return labelX, labelY
}
