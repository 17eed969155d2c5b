// Package container implements the keyed lookup tables behind a timestep:
// two-level maps from a qualifier (field origin or particle species) to a
// dataset name to a handle.
//
// The Python-era access style ts.fields.Bx(origin="Total") becomes an
// explicit Get with an optional qualifier argument:
//
//	ts.Fields.Get("Bx", container.Origin("Total"))
//	ts.Phases.Get("p1x1", container.Species(2))
//	ts.Fields.Get("Ez") // default origin "Total"
package container

import (
	"sort"
	"strconv"
	"strings"

	"github.com/plasmalab/dhyb/internal/dataset"
)

// Origins every field container accepts, declared up front. Inserting a field
// with any other origin is a validation error.
var FieldOrigins = []string{"Total", "External", "Self"}

// TotalSpecies is the aggregate species qualifier.
const TotalSpecies = "Total"

// Qual is one qualifier argument to Get: a keyword plus its value.
type Qual struct {
	Keyword string
	Value   string
}

// Origin qualifies a field lookup.
func Origin(v string) Qual { return Qual{Keyword: "origin", Value: v} }

// Species qualifies a phase or raw lookup by species index.
func Species(n int) Qual { return Qual{Keyword: "species", Value: strconv.Itoa(n)} }

// SpeciesToken qualifies a phase or raw lookup by literal token, e.g. the
// "Total" aggregate.
func SpeciesToken(v string) Qual { return Qual{Keyword: "species", Value: v} }

// Container resolves (name, qualifier) pairs to dataset handles. Field
// containers are strict: their qualifier buckets are fixed at construction.
// Phase and raw containers create buckets as novel species are discovered.
type Container struct {
	kind        dataset.Kind
	timestep    int
	keyword     string
	defaultQual string
	strict      bool
	buckets     map[string]map[string]*dataset.Handle
}

// NewFields builds a strict container pre-declared with FieldOrigins,
// qualified by "origin" and defaulting to "Total".
func NewFields(timestep int) *Container {
	c := &Container{
		kind:        dataset.FieldKind,
		timestep:    timestep,
		keyword:     "origin",
		defaultQual: "Total",
		strict:      true,
		buckets:     make(map[string]map[string]*dataset.Handle, len(FieldOrigins)),
	}
	for _, origin := range FieldOrigins {
		c.buckets[origin] = make(map[string]*dataset.Handle)
	}
	return c
}

// NewPhases builds a species-qualified container defaulting to species 1.
func NewPhases(timestep int) *Container {
	return &Container{
		kind:        dataset.PhaseKind,
		timestep:    timestep,
		keyword:     "species",
		defaultQual: "1",
		buckets:     make(map[string]map[string]*dataset.Handle),
	}
}

// NewRaw builds a species-qualified container for raw particle dumps.
func NewRaw(timestep int) *Container {
	return &Container{
		kind:        dataset.RawKind,
		timestep:    timestep,
		keyword:     "species",
		defaultQual: "1",
		buckets:     make(map[string]map[string]*dataset.Handle),
	}
}

func (c *Container) Kind() dataset.Kind { return c.kind }
func (c *Container) Timestep() int      { return c.timestep }
func (c *Container) Keyword() string    { return c.keyword }

// Get resolves name under the given qualifier, or under the container's
// default when none is supplied. Supplying more than one qualifier, or a
// qualifier with the wrong keyword, is a usage error regardless of contents.
func (c *Container) Get(name string, quals ...Qual) (*dataset.Handle, error) {
	if len(quals) > 1 {
		return nil, usagef("expected at most one qualifier argument, got %d", len(quals))
	}
	qual := c.defaultQual
	if len(quals) == 1 {
		q := quals[0]
		if q.Keyword != c.keyword {
			return nil, usagef("qualifier keyword %q must be %q for %s containers", q.Keyword, c.keyword, c.kind)
		}
		qual = normalizeQualifier(q.Value)
	}

	bucket, ok := c.buckets[qual]
	if !ok {
		return nil, &NotFoundError{Kind: c.kind, Timestep: c.timestep, Qualifier: qual, Name: name, bucket: true}
	}
	h, ok := bucket[name]
	if !ok {
		return nil, &NotFoundError{Kind: c.kind, Timestep: c.timestep, Qualifier: qual, Name: name}
	}
	return h, nil
}

// Add inserts a handle under its own qualifier. Strict containers reject
// qualifiers outside the declared set; others create the bucket. A collision
// on (qualifier, name) silently overwrites: walk order is not guaranteed and
// valid output trees do not collide.
func (c *Container) Add(h *dataset.Handle) error {
	qual := h.Qualifier()
	bucket, ok := c.buckets[qual]
	if !ok {
		if c.strict {
			return validationf("unknown origin %q for %s %q at timestep %d (allowed: %s)",
				qual, c.kind, h.Name(), c.timestep, strings.Join(FieldOrigins, ", "))
		}
		bucket = make(map[string]*dataset.Handle)
		c.buckets[qual] = bucket
	}
	bucket[h.Name()] = h
	return nil
}

// Has reports whether name exists under the normalized qualifier.
func (c *Container) Has(name, qualifier string) bool {
	bucket, ok := c.buckets[normalizeQualifier(qualifier)]
	if !ok {
		return false
	}
	_, ok = bucket[name]
	return ok
}

// Qualifiers returns the sorted bucket keys. Integer species sort
// numerically, ahead of token qualifiers.
func (c *Container) Qualifiers() []string {
	out := make([]string, 0, len(c.buckets))
	for q := range c.buckets {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, ei := strconv.Atoi(out[i])
		nj, ej := strconv.Atoi(out[j])
		switch {
		case ei == nil && ej == nil:
			return ni < nj
		case ei == nil:
			return true
		case ej == nil:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// Names returns the sorted dataset names in one qualifier bucket.
func (c *Container) Names(qualifier string) []string {
	bucket := c.buckets[normalizeQualifier(qualifier)]
	out := make([]string, 0, len(bucket))
	for name := range bucket {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len counts handles across all buckets.
func (c *Container) Len() int {
	n := 0
	for _, bucket := range c.buckets {
		n += len(bucket)
	}
	return n
}

// normalizeQualifier capitalizes a qualifier (first letter upper, rest
// lower), except tokens that are already fully upper-case, which pass through
// as literal codes. Digit-only species tokens have no case and are untouched.
func normalizeQualifier(q string) string {
	if q == "" || q == strings.ToUpper(q) {
		return q
	}
	return strings.ToUpper(q[:1]) + strings.ToLower(q[1:])
}
