package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"

	"prescricoes/internal/storage/parquetfile"
)

// extract_sample dumps the first N rows of the consolidated file to a CSV
// for eyeballing in a spreadsheet. Nulls become empty cells.

func main() {
	input := flag.String("input", "/scratch/arturxavier/odonto_prescricoes/prescricoes_all.parquet", "consolidated Parquet file")
	output := flag.String("output", "sample.csv", "CSV destination")
	n := flag.Int("n", 50, "number of rows")
	flag.Parse()

	r, err := parquetfile.OpenReader(*input)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer r.Close()

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	cols := r.Columns()
	if err := w.Write(cols); err != nil {
		log.Fatalf("write header: %v", err)
	}

	rows, err := r.ReadRows(*n)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	rec := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			rec[i] = ""
			if v := row[c]; v != nil {
				rec[i] = *v
			}
		}
		if err := w.Write(rec); err != nil {
			log.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Fatalf("flush: %v", err)
	}
	log.Printf("wrote %d rows to %s", len(rows), *output)
}
