package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// WriteUnmatchedReport writes the per-year unmatched counts as a small CSV
// ("ano,nao_mapeados", sorted by year). Only years that actually had
// unmatched rows appear. Callers treat a failure here as non-fatal: the
// report is diagnostic, the consolidated output is the deliverable.
func WriteUnmatchedReport(path string, unmatched map[string]int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unmatched report: %w", err)
	}

	years := make([]string, 0, len(unmatched))
	for y := range unmatched {
		years = append(years, y)
	}
	sort.Strings(years)

	w := csv.NewWriter(f)
	if err := w.Write([]string{"ano", "nao_mapeados"}); err != nil {
		f.Close()
		return fmt.Errorf("unmatched report: %w", err)
	}
	for _, y := range years {
		if err := w.Write([]string{y, strconv.FormatInt(unmatched[y], 10)}); err != nil {
			f.Close()
			return fmt.Errorf("unmatched report: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("unmatched report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unmatched report: %w", err)
	}
	return nil
}
