package relevance

import "strings"

// IsLocal reports whether a posting targets the Danish market.
//
// A blank location short-circuits to false even when company or description
// mention Denmark.
func IsLocal(location, company, description string) bool {
	if strings.TrimSpace(location) == "" {
		return false
	}
	text := fold(location + " " + company + " " + description)
	return containsAny(text, foldedLocations)
}
