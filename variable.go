package equationapi

import "sort"

// SelectVariable picks the symbol to solve for. An explicit request always
// wins, even when the symbol does not occur in the equation; otherwise a
// single free variable is used as-is, "x" is preferred when present, and the
// alphabetically first name breaks ties. Empty input yields the empty string,
// which is the caller's evaluate path.
func SelectVariable(freeVars []string, requested string) string {
	if requested != "" {
		return requested
	}
	switch len(freeVars) {
	case 0:
		return ""
	case 1:
		return freeVars[0]
	}
	sorted := append([]string(nil), freeVars...)
	sort.Strings(sorted)
	for _, name := range sorted {
		if name == "x" {
			return name
		}
	}
	return sorted[0]
}
