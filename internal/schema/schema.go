// Package schema unifies the ragged per-year source schemas into one
// superset schema and precomputes, per file, how rows project onto it.
//
// Per-file column presence is resolved exactly once here into a Projection;
// downstream stages consult the projection (SourceIndex/Has) instead of
// re-checking column existence ad hoc.
package schema

import "sort"

// Superset returns the sorted union of all column names across files.
// Every column is treated as text downstream, which keeps the consolidated
// schema stable across years with diverging types.
func Superset(columnLists [][]string) []string {
	set := make(map[string]struct{})
	for _, cols := range columnLists {
		for _, c := range cols {
			set[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Projection maps superset columns onto one file's physical column order.
type Projection struct {
	// Columns is the superset, in output order.
	Columns []string
	// SrcIdx aligns with Columns: the index of that column in the file's
	// header, or -1 when the file does not carry it (projected as null).
	SrcIdx []int

	index map[string]int
}

// Project computes the projection of fileCols onto the superset.
func Project(superset, fileCols []string) Projection {
	pos := make(map[string]int, len(fileCols))
	for i, c := range fileCols {
		// First occurrence wins if a header repeats a name.
		if _, dup := pos[c]; !dup {
			pos[c] = i
		}
	}

	p := Projection{
		Columns: superset,
		SrcIdx:  make([]int, len(superset)),
		index:   make(map[string]int, len(superset)),
	}
	for i, c := range superset {
		p.index[c] = i
		if si, ok := pos[c]; ok {
			p.SrcIdx[i] = si
		} else {
			p.SrcIdx[i] = -1
		}
	}
	return p
}

// Has reports whether the projected file physically carries col.
func (p Projection) Has(col string) bool {
	return p.SourceIndex(col) >= 0
}

// SourceIndex returns the file-local column index for col, or -1 when the
// file does not carry it (or col is not a superset column).
func (p Projection) SourceIndex(col string) int {
	i, ok := p.index[col]
	if !ok {
		return -1
	}
	return p.SrcIdx[i]
}
