// Package capability implements the shared-secret link codes that gate the
// personal agenda bucket and restricted-visibility rows. This is a soft
// link-sharing gate carried in a URL query parameter, deliberately not a
// real authorization scheme; do not extend it into one.
package capability

import "strings"

// Set is the collection of codes a request carries.
type Set map[string]struct{}

// ParseSet parses a raw code parameter value ("1912,666", comma, fullwidth
// comma or whitespace separated).
func ParseSet(raw string) Set {
	s := strings.TrimSpace(raw)
	set := make(Set)
	if s == "" {
		return set
	}
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '，' || r == ' ' || r == '\t'
	}) {
		if t := strings.TrimSpace(tok); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// Has reports whether code is present.
func (s Set) Has(code string) bool {
	if code == "" {
		return false
	}
	_, ok := s[code]
	return ok
}
