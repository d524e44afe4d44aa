package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"prescricoes/internal/storage/parquetfile"
)

// verify checks the consolidated Parquet output: required columns present,
// IDs unique and well-formed, ID year prefix consistent with the year
// column, and enrichment coverage per year. Exit status 1 on any violation.

const readBatch = 4096

var idRe = regexp.MustCompile(`^\d{4}-\d{8}$`)

func main() {
	input := flag.String("input", "/scratch/arturxavier/odonto_prescricoes/prescricoes_all.parquet", "consolidated Parquet file")
	coverageCol := flag.String("coverage-column", "Classe_1", "dictionary column used to measure enrichment coverage (empty to skip)")
	sample := flag.Int("sample", 3, "rows to print as a sample (0 to skip)")
	flag.Parse()

	r, err := parquetfile.OpenReader(*input)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer r.Close()

	cols := r.Columns()
	colIdx := make(map[string]int, len(cols))
	for i, c := range cols {
		colIdx[c] = i
	}

	failures := 0
	for _, c := range missingColumns(colIdx) {
		fmt.Printf("FAIL missing required column %s\n", c)
		failures++
	}
	if failures > 0 {
		os.Exit(1)
	}

	var (
		total       int64
		nullIDs     int64
		malformed   int64
		duplicates  int64
		prefixDrift int64
		seen        = newIDSet()
		perYear     = make(map[string]int64)
		covered     = make(map[string]int64)
		sampled     int
	)
	covIdx := -1
	if *coverageCol != "" {
		if i, ok := colIdx[*coverageCol]; ok {
			covIdx = i
		} else {
			fmt.Printf("WARN coverage column %s absent\n", *coverageCol)
		}
	}

	for {
		rows, err := r.ReadRows(readBatch)
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		if len(rows) == 0 {
			break
		}
		for _, row := range rows {
			total++

			year := ""
			if v := row["ano"]; v != nil {
				year = *v
			}
			perYear[year]++

			id := row["ID"]
			switch {
			case id == nil:
				nullIDs++
			case !idRe.MatchString(*id):
				malformed++
			default:
				if year != "" && !strings.HasPrefix(*id, year+"-") {
					prefixDrift++
				}
				if seen.add(*id) {
					duplicates++
				}
			}

			if covIdx >= 0 && row[cols[covIdx]] != nil {
				covered[year]++
			}

			if sampled < *sample {
				printRow(cols, row)
				sampled++
			}
		}
	}

	years := make([]string, 0, len(perYear))
	for y := range perYear {
		years = append(years, y)
	}
	sort.Strings(years)
	for _, y := range years {
		line := fmt.Sprintf("year %s: rows=%d", y, perYear[y])
		if covIdx >= 0 {
			line += fmt.Sprintf(" %s=%d (%.1f%%)", *coverageCol, covered[y],
				100*float64(covered[y])/float64(perYear[y]))
		}
		fmt.Println(line)
	}
	fmt.Printf("total rows=%d columns=%d\n", total, len(cols))

	check := func(n int64, what string) {
		if n > 0 {
			fmt.Printf("FAIL %s: %d\n", what, n)
			failures++
		} else {
			fmt.Printf("ok   %s\n", what)
		}
	}
	check(nullIDs, "null IDs")
	check(malformed, "malformed IDs")
	check(duplicates, "duplicate IDs")
	check(prefixDrift, "ID year prefix != ano")

	if failures > 0 {
		os.Exit(1)
	}
}

// requiredColumns must all exist in the consolidated file.
var requiredColumns = []string{"ID", "ano", "PRINCIPIO_ATIVO"}

// missingColumns returns the required columns absent from the file, in
// requiredColumns order.
func missingColumns(colIdx map[string]int) []string {
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := colIdx[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// idSet tracks seen IDs by 64-bit hash, keeping the first ID stored per
// hash so a hash collision between distinct IDs is never counted as a
// duplicate.
type idSet struct {
	hash func(string) uint64
	seen map[uint64]string
}

func newIDSet() *idSet {
	return &idSet{hash: xxh3.HashString, seen: make(map[uint64]string)}
}

// add records id and reports whether the same ID was seen before.
func (s *idSet) add(id string) bool {
	h := s.hash(id)
	prev, ok := s.seen[h]
	if !ok {
		s.seen[h] = id
		return false
	}
	return prev == id
}

// printRow renders one sample row, nulls as "-". Long values are clipped.
func printRow(cols []string, row map[string]*string) {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		v := "-"
		if p := row[c]; p != nil {
			v = *p
			if len(v) > 40 {
				v = v[:40] + "…"
			}
		}
		parts = append(parts, c+"="+v)
	}
	fmt.Println("sample: " + strings.Join(parts, " "))
}
