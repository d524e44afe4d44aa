package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"prescricoes/internal/normalize"
	"prescricoes/internal/storage/parquetfile"
)

// filter_controlled extracts the controlled-substance slice of the
// consolidated file: rows flagged as anxiolytic/sedative/hypnotic by the
// dictionary, plus rows whose therapeutic class mentions opioids. The
// output is a Parquet file with the same column layout.

const readBatch = 4096

// classColumns are the dictionary class columns scanned for the substring.
var classColumns = []string{"Classe_1", "Classe_2", "Classe_3", "Classe_4"}

func main() {
	input := flag.String("input", "/scratch/arturxavier/odonto_prescricoes/prescricoes_all.parquet", "consolidated Parquet file")
	output := flag.String("output", "/scratch/arturxavier/odonto_prescricoes/prescricoes_controladas.parquet", "filtered Parquet output")
	flagCol := flag.String("flag-column", "Ansiolítico/Sedativo/Hipnótico", "yes/no dictionary column selecting rows when \"sim\"")
	classMatch := flag.String("class-match", "opio", "substring matched (case/space-insensitively) inside the class columns")
	flag.Parse()

	start := time.Now()
	r, err := parquetfile.OpenReader(*input)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer r.Close()

	cols := r.Columns()
	hasFlag := false
	for _, c := range cols {
		if c == *flagCol {
			hasFlag = true
		}
	}
	if !hasFlag {
		log.Printf("warning: flag column %q absent; selecting on class columns only", *flagCol)
	}

	w, err := parquetfile.NewWriter(*output, cols)
	if err != nil {
		log.Fatalf("open output: %v", err)
	}

	match := normalize.Display(*classMatch)
	var total, kept int64
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
			if !selected(row, *flagCol, match) {
				continue
			}
			out := make([]*string, len(cols))
			for i, c := range cols {
				out[i] = row[c]
			}
			if err := w.Write(out); err != nil {
				log.Fatalf("write: %v", err)
			}
			kept++
		}
	}
	if err := w.Close(); err != nil {
		log.Fatalf("finalize output: %v", err)
	}

	pct := 0.0
	if total > 0 {
		pct = 100 * float64(kept) / float64(total)
	}
	log.Printf("kept %d of %d rows (%.2f%%) -> %s in %s",
		kept, total, pct, *output, time.Since(start).Truncate(time.Millisecond))
}

// selected keeps a row when the yes/no flag column says "sim", or when any
// class column contains the match substring.
func selected(row map[string]*string, flagCol, match string) bool {
	if v := row[flagCol]; v != nil && normalize.Display(*v) == "sim" {
		return true
	}
	for _, c := range classColumns {
		if v := row[c]; v != nil && strings.Contains(normalize.Display(*v), match) {
			return true
		}
	}
	return false
}
