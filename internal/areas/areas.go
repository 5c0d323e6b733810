// Package areas matches free-text event locations against configured
// area filters and splits multi-area specifications.
package areas

import "strings"

// MatchMode selects how a location is compared against a filter.
type MatchMode string

const (
	// ModeContains matches when the location contains the filter.
	ModeContains MatchMode = "contains"
	// ModeExact matches the full location name only.
	ModeExact MatchMode = "exact"
)

// Valid reports whether m names a known mode.
func (m MatchMode) Valid() bool {
	return m == ModeContains || m == ModeExact
}

// delimiters that may separate several areas in one specification.
var delimiters = []string{"/", ",", ";", "|", "\n"}

// Matches reports whether a location name satisfies one area filter. Both
// sides are trimmed and case-folded first. An empty filter matches
// everything; a non-empty filter never matches an empty location.
func Matches(locationName, filter string, mode MatchMode) bool {
	f := fold(filter)
	if f == "" {
		return true
	}
	loc := fold(locationName)
	if loc == "" {
		return false
	}
	if mode == ModeExact {
		return loc == f
	}
	return strings.Contains(loc, f)
}

// Split breaks a free-text area specification on the supported delimiters
// and returns the trimmed, non-empty segments in input order.
func Split(spec string) []string {
	parts := []string{spec}
	for _, d := range delimiters {
		next := make([]string, 0, len(parts))
		for _, p := range parts {
			next = append(next, strings.Split(p, d)...)
		}
		parts = next
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Dedupe drops case-insensitive duplicates, keeping first occurrences in
// order.
func Dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, item := range list {
		key := fold(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
