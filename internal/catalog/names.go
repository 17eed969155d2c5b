package catalog

// Canonical-name rewriting from directory-encoded tokens.
//
// Category folders map to one-letter prefixes and the component suffix is
// appended, so Fields/Magnetic/Total/x becomes "Bx" and
// Fields/Electric/Total/Intensity becomes "Emagnitude". Simple phase names
// ("p1x1", "x3x2x1") pass through untouched.

var fieldPrefixes = map[string]string{
	"Magnetic":    "B",
	"Electric":    "E",
	"CurrentDens": "J",
}

var phasePrefixes = map[string]string{
	"FluidVel":    "V",
	"PressureTen": "P",
}

var suffixRewrites = map[string]string{
	"Intensity": "magnitude",
}

// fieldName composes the canonical field name for a category folder and
// component suffix. ok is false for unmapped categories; the file is then
// skipped with a warning, never inserted.
func fieldName(category, component string) (string, bool) {
	prefix, ok := fieldPrefixes[category]
	if !ok {
		return "", false
	}
	return prefix + rewriteSuffix(component), true
}

// phaseName composes the canonical name for the prefixed phase families
// (FluidVel, PressureTen).
func phaseName(family, component string) (string, bool) {
	prefix, ok := phasePrefixes[family]
	if !ok {
		return "", false
	}
	return prefix + rewriteSuffix(component), true
}

// phaseFamilyPrefixed reports whether a phase family folder uses the
// prefix+component layout with a species directory in between.
func phaseFamilyPrefixed(family string) bool {
	_, ok := phasePrefixes[family]
	return ok
}

func rewriteSuffix(s string) string {
	if r, ok := suffixRewrites[s]; ok {
		return r
	}
	return s
}
