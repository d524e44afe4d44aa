// Package normalize canonicalizes free-text values so that equality checks
// and substring predicates are insensitive to case and whitespace noise.
//
// Two profiles exist:
//
//   - JoinKey upper-cases and is applied on BOTH sides of the dictionary
//     join (alias columns when the dictionary is built, source substance
//     names when rows are enriched). Matches are therefore case- and
//     whitespace-insensitive only, never semantically fuzzy.
//   - Display lower-cases and is used by text-matching filter predicates
//     (e.g. flag == "sim", class contains "opio").
//
// Both profiles trim leading/trailing whitespace and collapse interior runs
// of whitespace (including NBSP and other Unicode spaces) to a single ASCII
// space. Both are idempotent.
package normalize

import "strings"

// collapse trims and squeezes all whitespace runs down to single spaces.
// strings.Fields splits on unicode.IsSpace, so NBSP and friends are handled.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinKey returns the join-key form of s: trimmed, whitespace-collapsed,
// upper-cased. An all-whitespace or empty input yields "".
func JoinKey(s string) string {
	return strings.ToUpper(collapse(s))
}

// Display returns the display/filter form of s: trimmed,
// whitespace-collapsed, lower-cased.
func Display(s string) string {
	return strings.ToLower(collapse(s))
}
