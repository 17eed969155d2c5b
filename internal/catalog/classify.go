package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// FileKind is the top-level classification of an output file, selected by the
// first path component under the output root.
type FileKind int

const (
	KindUnknown FileKind = iota
	KindField
	KindPhase
	KindRaw
)

func (k FileKind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindPhase:
		return "phase"
	case KindRaw:
		return "raw"
	}
	return "unknown"
}

// Record is one classified output file: what it is, when, whose, and what to
// call it.
type Record struct {
	Kind      FileKind
	Timestep  int
	Qualifier string // origin for fields, species token for phases/raw
	Name      string
	Path      string // absolute path of the backing file
}

// ClassifyError marks a file that cannot be classified: an unmapped category,
// an unexpected folder depth, or a species folder without digits. These are
// recorded as warnings and the file is skipped; one bad file never aborts the
// traversal.
type ClassifyError struct {
	Path   string
	Reason string
}

func (e *ClassifyError) Error() string {
	return fmt.Sprintf("cannot classify %s: %s", e.Path, e.Reason)
}

var ErrClassify = errors.New("catalog: unclassifiable file")

func (e *ClassifyError) Unwrap() error { return ErrClassify }

var (
	timestepPattern = regexp.MustCompile(`_(\d+)\.h5$`)
	digitRun        = regexp.MustCompile(`\d+`)
)

// matchTimestep extracts the timestep from a filename ending in _<digits>.h5.
// Non-matching filenames are unrelated files, not errors.
func matchTimestep(filename string) (int, bool) {
	m := timestepPattern.FindStringSubmatch(filename)
	if m == nil {
		return 0, false
	}
	ts, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return ts, true
}

// classify maps one discovered file to a Record. dir must be a descendant of
// root. Unknown top-level kinds produce a Record with KindUnknown and no
// error; structural problems inside a known kind produce a ClassifyError.
func classify(root, dir, filename string, timestep int) (Record, error) {
	full := filepath.Join(dir, filename)
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return Record{}, &ClassifyError{Path: full, Reason: err.Error()}
	}
	comps := strings.Split(filepath.ToSlash(rel), "/")

	rec := Record{Timestep: timestep, Path: full}
	switch comps[0] {
	case "Fields":
		return classifyField(rec, comps)
	case "Phase":
		return classifyPhase(rec, comps, filename)
	case "Raw":
		return classifyRaw(rec, comps)
	default:
		rec.Kind = KindUnknown
		rec.Name = comps[0]
		return rec, nil
	}
}

func classifyField(rec Record, comps []string) (Record, error) {
	if len(comps) < 3 {
		return rec, &ClassifyError{Path: rec.Path, Reason: "field folder too shallow"}
	}
	category := comps[1]

	// Current density has no External/Self split in the source tool; a
	// synthetic Total origin is spliced in so the layout matches the others.
	if category == "CurrentDens" {
		comps = append(comps[:2], append([]string{"Total"}, comps[2:]...)...)
	}
	if len(comps) < 4 {
		return rec, &ClassifyError{Path: rec.Path, Reason: "field folder missing origin or component"}
	}

	name, ok := fieldName(category, comps[len(comps)-1])
	if !ok {
		return rec, &ClassifyError{Path: rec.Path, Reason: fmt.Sprintf("unknown field category %q", category)}
	}
	rec.Kind = KindField
	rec.Qualifier = comps[len(comps)-2]
	rec.Name = name
	return rec, nil
}

func classifyPhase(rec Record, comps []string, filename string) (Record, error) {
	if len(comps) < 3 {
		return rec, &ClassifyError{Path: rec.Path, Reason: "phase folder too shallow"}
	}
	family := comps[1]

	var name, speciesTok string
	if phaseFamilyPrefixed(family) {
		// FluidVel/PressureTen mirror the field layout: species folder then
		// vector or tensor component folder.
		if len(comps) < 4 {
			return rec, &ClassifyError{Path: rec.Path, Reason: fmt.Sprintf("%s folder missing species or component", family)}
		}
		speciesTok = comps[len(comps)-2]
		name, _ = phaseName(family, comps[len(comps)-1])
	} else {
		speciesTok = comps[len(comps)-1]
		name = comps[len(comps)-2]
	}

	// The pressure-tensor trace is stored under the full-phase-space folder
	// but presents as "P".
	if name == "x3x2x1" && strings.Contains(filename, "pres") {
		name = "P"
	}

	species, err := parseSpecies(rec.Path, speciesTok)
	if err != nil {
		return rec, err
	}
	rec.Kind = KindPhase
	rec.Qualifier = species
	rec.Name = name
	return rec, nil
}

func classifyRaw(rec Record, comps []string) (Record, error) {
	if len(comps) < 2 {
		return rec, &ClassifyError{Path: rec.Path, Reason: "raw folder too shallow"}
	}
	species, err := parseSpecies(rec.Path, comps[len(comps)-1])
	if err != nil {
		return rec, err
	}
	rec.Kind = KindRaw
	rec.Qualifier = species
	rec.Name = "raw"
	return rec, nil
}

// parseSpecies turns a species folder token into a canonical qualifier: the
// literal "Total", or the first run of digits as a species index.
func parseSpecies(path, tok string) (string, error) {
	if tok == "Total" {
		return tok, nil
	}
	digits := digitRun.FindString(tok)
	if digits == "" {
		return "", &ClassifyError{Path: path, Reason: fmt.Sprintf("species folder %q has no digits", tok)}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "", &ClassifyError{Path: path, Reason: fmt.Sprintf("species folder %q: %v", tok, err)}
	}
	return strconv.Itoa(n), nil
}
