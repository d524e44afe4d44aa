// Package dict builds the substance-dictionary mapping used to enrich
// consolidated rows.
//
// The dictionary ships as a semicolon-separated latin1 CSV whose rows carry
// one substance under up to three alias columns. The builder reshapes that
// wide layout into a long one (one entry per alias value), normalizes every
// alias with the join-key profile, and deduplicates by normalized key with
// first occurrence winning. Parsing is lenient: malformed rows are dropped
// and counted, never fatal. Missing alias columns ARE fatal, since without
// them no join is possible.
package dict

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"prescricoes/internal/datasource/file"
	"prescricoes/internal/normalize"
)

// ErrNoAliasColumns is returned when the dictionary header contains none of
// the expected alias columns.
var ErrNoAliasColumns = errors.New("dictionary has no expected key columns: PRINCIPIO_ATIVO(_1|_2)")

// aliasColumns are the column names that may carry a substance alias, in
// reshape order.
var aliasColumns = []string{"PRINCIPIO_ATIVO", "PRINCIPIO_ATIVO_1", "PRINCIPIO_ATIVO_2"}

// Table is the normalized-key → descriptor mapping plus bookkeeping counts.
type Table struct {
	descriptors []string
	entries     map[string][]*string

	// RowsRead counts successfully parsed dictionary rows.
	RowsRead int
	// RowsSkipped counts malformed rows dropped during parsing.
	RowsSkipped int
	// DuplicateKeys counts alias occurrences discarded because their
	// normalized key was already mapped.
	DuplicateKeys int
}

// Descriptors returns the ordered descriptor column names (every named
// dictionary column that is not an alias column).
func (t *Table) Descriptors() []string { return t.descriptors }

// Len returns the number of distinct normalized keys in the mapping.
func (t *Table) Len() int { return len(t.entries) }

// Lookup returns the descriptor values for an already-normalized key.
// Callers must normalize with normalize.JoinKey before calling.
func (t *Table) Lookup(key string) ([]*string, bool) {
	v, ok := t.entries[key]
	return v, ok
}

// Load reads and reshapes the dictionary file at path.
func Load(ctx context.Context, path string) (*Table, error) {
	rc, err := file.NewLocalEncoded(path, file.EncodingLatin1).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return build(rc, path)
}

// dictRow keeps one parsed row's alias values and descriptor payload.
// Rows are buffered because the reshape walks alias columns in column-major
// order: every row's first alias is considered before any row's second.
type dictRow struct {
	aliases     []string
	descriptors []*string
}

func build(r io.Reader, path string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read dictionary header %s: %w", path, err)
	}

	// Locate alias columns and named descriptor columns. Empty-named columns
	// (artifacts of trailing separators) are ignored entirely.
	aliasIdx := make([]int, 0, len(aliasColumns))
	var descIdx []int
	var descriptors []string
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
			header[0] = name
		}
		if name == "" {
			continue
		}
		if isAlias(name) {
			continue
		}
		descIdx = append(descIdx, i)
		descriptors = append(descriptors, name)
	}
	for _, alias := range aliasColumns {
		for i, raw := range header {
			if strings.TrimSpace(raw) == alias {
				aliasIdx = append(aliasIdx, i)
				break
			}
		}
	}
	if len(aliasIdx) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoAliasColumns)
	}

	t := &Table{
		descriptors: descriptors,
		entries:     make(map[string][]*string),
	}

	var rows []dictRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.RowsSkipped++
			continue
		}
		row := dictRow{
			aliases:     make([]string, len(aliasIdx)),
			descriptors: make([]*string, len(descIdx)),
		}
		for j, si := range aliasIdx {
			if si < len(rec) {
				row.aliases[j] = rec[si]
			}
		}
		for j, si := range descIdx {
			if si >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[si])
			if v == "" {
				continue
			}
			v = strings.Clone(v)
			row.descriptors[j] = &v
		}
		rows = append(rows, row)
		t.RowsRead++
	}

	// Column-major reshape with first-occurrence-wins dedupe: all rows'
	// first alias before any row's second alias.
	for j := range aliasIdx {
		for _, row := range rows {
			key := normalize.JoinKey(row.aliases[j])
			if key == "" {
				continue
			}
			if _, seen := t.entries[key]; seen {
				t.DuplicateKeys++
				continue
			}
			t.entries[key] = row.descriptors
		}
	}
	return t, nil
}

func isAlias(name string) bool {
	for _, a := range aliasColumns {
		if name == a {
			return true
		}
	}
	return false
}
