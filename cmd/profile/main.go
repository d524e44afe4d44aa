package main

import (
	"flag"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"prescricoes/internal/storage/parquetfile"
)

// profile summarizes value quality in the consolidated file: frequency
// tables for the low-cardinality categorical columns, numeric ranges and
// parse failures for the count-like columns, and format conformance for the
// synthesized ID and the CID-10 diagnosis code. Purely informational; always
// exits 0 when the file is readable.

const readBatch = 4096

// topN frequency entries shown per categorical column.
const topN = 15

var (
	idRe = regexp.MustCompile(`^\d{4}-\d{8}$`)
	// CID-10 codes: letter, two digits, optional extra char, optional
	// dotted suffix ("F41", "F41.1", "J06.9").
	cid10Re = regexp.MustCompile(`^[A-Z]\d{2}[A-Z0-9]?(?:\.\d{1,4})?$`)
)

// flagColumn is the controlled-substance yes/no column added by the
// dictionary join.
const flagColumn = "Ansiolítico/Sedativo/Hipnótico"

// categoricalColumns get full frequency tables. UF_* columns are added
// dynamically from the schema.
var categoricalColumns = []string{
	"SEXO", "TIPO_RECEITUARIO", "UNIDADE_IDADE", "UNIDADE_MEDIDA",
	"CONSELHO_PRESCRITOR", flagColumn,
}

// categoricalTargets selects the frequency-table columns: the fixed
// categorical set plus every UF_* column, restricted to the columns the
// file carries.
func categoricalTargets(cols []string) []string {
	fixed := make(map[string]bool, len(categoricalColumns))
	for _, c := range categoricalColumns {
		fixed[c] = true
	}
	var out []string
	for _, c := range cols {
		if fixed[c] || strings.HasPrefix(c, "UF_") {
			out = append(out, c)
		}
	}
	return out
}

// numericColumns get min/max plus validity counters; min/max bounds are
// checked where a sane range exists.
var numericColumns = []struct {
	name     string
	min, max float64
	ranged   bool
}{
	{name: "ano", min: 2000, max: 2099, ranged: true},
	{name: "MES_VENDA", min: 1, max: 12, ranged: true},
	{name: "IDADE", min: 0, max: 120, ranged: true},
	{name: "QTD_VENDIDA"},
}

type numStat struct {
	present    int64
	invalid    int64
	nonInteger int64
	outOfRange int64
	zero       int64
	negative   int64
	min, max   float64
}

type formatStat struct {
	present int64
	bad     int64
}

func main() {
	input := flag.String("input", "/scratch/arturxavier/odonto_prescricoes/prescricoes_all.parquet", "consolidated Parquet file")
	limit := flag.Int64("limit", 0, "max rows to scan (0 = all)")
	flag.Parse()

	r, err := parquetfile.OpenReader(*input)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer r.Close()

	cols := r.Columns()
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}

	cats := make(map[string]map[string]int64)
	for _, c := range categoricalTargets(cols) {
		cats[c] = make(map[string]int64)
	}

	nums := make(map[string]*numStat)
	for _, nc := range numericColumns {
		if present[nc.name] {
			nums[nc.name] = &numStat{}
		}
	}

	formats := map[string]*formatStat{}
	formatRes := map[string]*regexp.Regexp{}
	if present["ID"] {
		formats["ID"] = &formatStat{}
		formatRes["ID"] = idRe
	}
	if present["CID10"] {
		formats["CID10"] = &formatStat{}
		formatRes["CID10"] = cid10Re
	}

	var scanned int64
scan:
	for {
		rows, err := r.ReadRows(readBatch)
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		if len(rows) == 0 {
			break
		}
		for _, row := range rows {
			if *limit > 0 && scanned >= *limit {
				break scan
			}
			scanned++

			for c, freq := range cats {
				if v := row[c]; v != nil {
					freq[*v]++
				}
			}
			for _, nc := range numericColumns {
				st, ok := nums[nc.name]
				if !ok {
					continue
				}
				v := row[nc.name]
				if v == nil {
					continue
				}
				st.present++
				raw := strings.TrimSpace(strings.ReplaceAll(*v, ",", "."))
				f, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					st.invalid++
					continue
				}
				if f != float64(int64(f)) {
					st.nonInteger++
				}
				if nc.ranged && (f < nc.min || f > nc.max) {
					st.outOfRange++
				}
				if f == 0 {
					st.zero++
				}
				if f < 0 {
					st.negative++
				}
				if st.present-st.invalid == 1 {
					st.min, st.max = f, f
				} else {
					if f < st.min {
						st.min = f
					}
					if f > st.max {
						st.max = f
					}
				}
			}
			for c, st := range formats {
				v := row[c]
				if v == nil {
					continue
				}
				st.present++
				if !formatRes[c].MatchString(*v) {
					st.bad++
				}
			}
		}
	}

	fmt.Printf("scanned %d rows\n\n", scanned)

	catNames := make([]string, 0, len(cats))
	for c := range cats {
		catNames = append(catNames, c)
	}
	sort.Strings(catNames)
	for _, c := range catNames {
		fmt.Printf("%s (%d distinct):\n", c, len(cats[c]))
		for _, kv := range topValues(cats[c], topN) {
			fmt.Printf("  %-30s %d\n", kv.k, kv.n)
		}
	}

	for _, nc := range numericColumns {
		st, ok := nums[nc.name]
		if !ok {
			continue
		}
		fmt.Printf("\n%s: present=%d invalid=%d non_integer=%d zero=%d negative=%d",
			nc.name, st.present, st.invalid, st.nonInteger, st.zero, st.negative)
		if st.present > st.invalid {
			fmt.Printf(" min=%g max=%g", st.min, st.max)
		}
		if nc.ranged {
			fmt.Printf(" out_of_range[%g..%g]=%d", nc.min, nc.max, st.outOfRange)
		}
		fmt.Println()
	}

	for _, c := range []string{"ID", "CID10"} {
		if st, ok := formats[c]; ok {
			fmt.Printf("\n%s format: present=%d nonconforming=%d\n", c, st.present, st.bad)
		}
	}
}

type kv struct {
	k string
	n int64
}

func topValues(freq map[string]int64, n int) []kv {
	out := make([]kv, 0, len(freq))
	for k, c := range freq {
		out = append(out, kv{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].k < out[j].k
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
