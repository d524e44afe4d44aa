// Package pipeline consolidates the yearly prescription-sales extracts into
// one uniform dataset enriched from the substance dictionary.
//
// The work is split into a describe phase and an execute phase. BuildPlan
// probes every source file, loads the dictionary, computes the superset
// schema and fixes the output column layout; nothing heavy runs yet.
// Plan.Execute then streams each file row by row into the sink. Runs are
// idempotent: inputs are read-only and the sink overwrites prior output.
package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"prescricoes/internal/config"
	"prescricoes/internal/datasource/file"
	"prescricoes/internal/dict"
	"prescricoes/internal/metrics"
	"prescricoes/internal/normalize"
	"prescricoes/internal/probe"
	"prescricoes/internal/schema"
)

// Column names with pipeline-level meaning.
const (
	// IDColumn is the synthesized record identifier, "YYYY-NNNNNNNN".
	IDColumn = "ID"
	// YearColumn carries the sales year extracted from the filename.
	YearColumn = "ano"
	// PrincipalColumn is the substance-name column joined against the
	// dictionary when a file carries it.
	PrincipalColumn = "PRINCIPIO_ATIVO"
	// PresentationColumn is pinned right after ID and year in the output.
	PresentationColumn = "DESCRICAO_APRESENTACAO"
	// duplicateYearColumn repeats the filename year inside certain source
	// files; it is dropped in favor of YearColumn.
	duplicateYearColumn = "ANO_VENDA"
)

// logEveryN rows a progress heartbeat is emitted per file.
const logEveryN = 50_000

// skipLogLimit caps per-file log lines for skipped rows; skipping continues
// silently (but counted) beyond it.
const skipLogLimit = 400

type colKind uint8

const (
	colID colKind = iota
	colYear
	colSource
	colDescriptor
)

// outCol is one column of the output layout. For colDescriptor, idx is the
// position inside the dictionary descriptor payload.
type outCol struct {
	name string
	kind colKind
	idx  int
}

// SourceFile pairs a probed file with its projection onto the superset.
type SourceFile struct {
	Info probe.FileInfo
	Proj schema.Projection
}

// Plan is the fully described consolidation: inputs probed, dictionary
// loaded, layout fixed. It is inert until Execute.
type Plan struct {
	Files    []SourceFile
	Superset []string
	Dict     *dict.Table
	Job      string

	cols []outCol
}

// Stats summarizes an executed run.
type Stats struct {
	RowsWritten int64
	RowsSkipped int64
	Files       int
	// Unmatched counts, per year, rows that found no dictionary entry.
	// Years with zero unmatched rows are absent.
	Unmatched map[string]int64
}

// RowSink receives output rows. Cells align with Plan.Columns; nil is null.
type RowSink interface {
	Write(row []*string) error
}

// BuildPlan describes the full run: lists and probes the source files,
// loads the dictionary, and fixes the output layout. Any failure here is
// fatal for the run; a half-probed input set cannot produce a coherent
// superset schema.
func BuildPlan(ctx context.Context, cfg config.Settings) (*Plan, error) {
	job := cfg.Job
	if job == "" {
		job = config.DefaultJob
	}

	paths, err := file.ListPattern(cfg.InputDir, config.SourceFileGlob)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files in %s", config.SourceFileGlob, cfg.InputDir)
	}

	start := time.Now()
	files := make([]SourceFile, 0, len(paths))
	yearSeen := make(map[string]string, len(paths))
	var columnLists [][]string
	for _, p := range paths {
		info, err := probe.Inspect(ctx, p)
		if err != nil {
			metrics.RecordStep(job, "probe", err, time.Since(start))
			return nil, err
		}
		// One file per year keeps IDs globally unique: the sequence
		// number restarts per file, so a second file for the same year
		// would collide.
		if prev, dup := yearSeen[info.Year]; dup {
			err := fmt.Errorf("year %s claimed by both %s and %s", info.Year, prev, p)
			metrics.RecordStep(job, "probe", err, time.Since(start))
			return nil, err
		}
		yearSeen[info.Year] = p
		files = append(files, SourceFile{Info: info})
		columnLists = append(columnLists, info.Columns)
	}
	metrics.RecordStep(job, "probe", nil, time.Since(start))

	start = time.Now()
	table, err := dict.Load(ctx, cfg.DictPath)
	metrics.RecordStep(job, "dictionary", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	if table.RowsSkipped > 0 {
		log.Printf("dictionary: skipped %d malformed rows", table.RowsSkipped)
	}
	log.Printf("dictionary: %d keys, %d descriptor columns (%d duplicate aliases dropped)",
		table.Len(), len(table.Descriptors()), table.DuplicateKeys)

	superset := schema.Superset(columnLists)
	for i := range files {
		files[i].Proj = schema.Project(superset, files[i].Info.Columns)
	}

	return &Plan{
		Files:    files,
		Superset: superset,
		Dict:     table,
		Job:      job,
		cols:     buildLayout(superset, table.Descriptors()),
	}, nil
}

// Columns returns the output column names in layout order.
func (p *Plan) Columns() []string {
	out := make([]string, len(p.cols))
	for i, c := range p.cols {
		out[i] = c.name
	}
	return out
}

// buildLayout fixes the output column order: ID, year and the presentation
// column first, then the remaining superset columns in sorted order, then
// the dictionary descriptors.
//
// Dropped on the way: the duplicate year column, and any descriptor whose
// name collides with a superset column (the join would only produce a
// throwaway duplicate). The row sequence and the join key are never
// materialized at all.
func buildLayout(superset, descriptors []string) []outCol {
	inSuperset := make(map[string]bool, len(superset))
	for _, c := range superset {
		inSuperset[c] = true
	}

	cols := []outCol{
		{name: IDColumn, kind: colID},
		{name: YearColumn, kind: colYear},
	}
	if inSuperset[PresentationColumn] {
		cols = append(cols, outCol{name: PresentationColumn, kind: colSource})
	}
	for _, c := range superset {
		switch c {
		case PresentationColumn, duplicateYearColumn, IDColumn, YearColumn:
			continue
		}
		cols = append(cols, outCol{name: c, kind: colSource})
	}
	for i, d := range descriptors {
		if inSuperset[d] || d == IDColumn || d == YearColumn {
			continue
		}
		cols = append(cols, outCol{name: d, kind: colDescriptor, idx: i})
	}
	return cols
}

// Execute materializes the plan into sink, one source file at a time in
// lexical (hence chronological) order.
func (p *Plan) Execute(ctx context.Context, sink RowSink) (*Stats, error) {
	stats := &Stats{Unmatched: make(map[string]int64)}

	for _, sf := range p.Files {
		start := time.Now()
		err := p.consolidateFile(ctx, sf, sink, stats)
		metrics.RecordStep(p.Job, "consolidate_file", err, time.Since(start))
		if err != nil {
			return stats, err
		}
		stats.Files++
	}

	metrics.RecordFiles(p.Job, int64(stats.Files))
	metrics.RecordRows(p.Job, "rows_written", stats.RowsWritten)
	metrics.RecordRows(p.Job, "rows_skipped", stats.RowsSkipped)
	var unmatched int64
	for _, n := range stats.Unmatched {
		unmatched += n
	}
	metrics.RecordRows(p.Job, "rows_unmatched", unmatched)
	return stats, nil
}

// consolidateFile streams one source file through projection, enrichment
// and the sink. Malformed rows are skipped and counted; a sink error is
// fatal.
func (p *Plan) consolidateFile(ctx context.Context, sf SourceFile, sink RowSink, stats *Stats) error {
	base := filepath.Base(sf.Info.Path)

	rc, err := file.NewLocalEncoded(sf.Info.Path, sf.Info.Encoding).Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	cr.Comma = sf.Info.Sep
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", sf.Info.Path, err)
	}
	// Physical indexes come from the live header: the probe's sampled
	// prefix may truncate very wide headers, but the column SET it saw is
	// authoritative for the superset.
	srcToIdx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		if _, dup := srcToIdx[h]; h != "" && !dup {
			srcToIdx[h] = i
		}
	}
	phys := make([]int, len(p.cols))
	for i, c := range p.cols {
		phys[i] = -1
		if c.kind == colSource {
			if si, ok := srcToIdx[c.name]; ok {
				phys[i] = si
			}
		}
	}
	principalIdx := -1
	if si, ok := srcToIdx[PrincipalColumn]; ok {
		principalIdx = si
	}

	seq := 0
	skippedHere := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skippedHere < skipLogLimit {
				log.Printf("%s: skipping row: %v", base, err)
			}
			skippedHere++
			stats.RowsSkipped++
			continue
		}

		seq++
		id := fmt.Sprintf("%s-%08d", sf.Info.Year, seq)

		var desc []*string
		matched := false
		if principalIdx >= 0 && principalIdx < len(rec) {
			if key := normalize.JoinKey(rec[principalIdx]); key != "" {
				desc, matched = p.Dict.Lookup(key)
			}
		}
		if !matched {
			stats.Unmatched[sf.Info.Year]++
		}

		row := make([]*string, len(p.cols))
		for i, c := range p.cols {
			switch c.kind {
			case colID:
				v := id
				row[i] = &v
			case colYear:
				v := sf.Info.Year
				row[i] = &v
			case colSource:
				si := phys[i]
				if si < 0 || si >= len(rec) {
					continue
				}
				v := strings.TrimSpace(rec[si])
				if v == "" {
					continue
				}
				v = strings.Clone(v)
				row[i] = &v
			case colDescriptor:
				if matched {
					row[i] = desc[c.idx]
				}
			}
		}

		if err := sink.Write(row); err != nil {
			return fmt.Errorf("%s row %d: %w", base, seq, err)
		}
		stats.RowsWritten++
		if stats.RowsWritten%logEveryN == 0 {
			log.Printf("consolidate: %s seq=%d total=%d", base, seq, stats.RowsWritten)
		}
	}

	log.Printf("consolidate: %s done rows=%d skipped=%d", base, seq, skippedHere)
	return nil
}
