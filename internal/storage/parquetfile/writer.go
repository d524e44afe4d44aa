// Package parquetfile is the columnar storage layer: a snappy-compressed
// Parquet sink for the consolidated dataset and a chunked reader used by the
// auditing commands.
//
// Every column is written as an optional UTF-8 byte array. The consolidated
// schema is the superset of heterogeneous yearly extracts, so a uniform text
// representation is the only typing that stays stable across inputs; typing
// is an auditing concern, not a storage one.
package parquetfile

import (
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// writerParallelism is the parquet-go marshalling parallelism. This is
// engine-internal chunk handling, not pipeline concurrency.
const writerParallelism = 4

// Writer writes rows of optional text cells to a local Parquet file.
type Writer struct {
	path string
	cols []string
	fw   source.ParquetFile
	pw   *writer.CSVWriter
	rows int64
}

// SanitizeColumn rewrites a column name so it survives parquet-go's
// "key=value, ..." tag metadata syntax. Spaces, commas, semicolons, dots and
// equals signs become underscores; everything else (including accented
// characters and slashes) passes through.
func SanitizeColumn(name string) string {
	r := strings.NewReplacer(" ", "_", ",", "_", ";", "_", ".", "_", "=", "_")
	return r.Replace(name)
}

// NewWriter creates path (truncating any previous run's output) with the
// given column layout.
func NewWriter(path string, columns []string) (*Writer, error) {
	md := make([]string, len(columns))
	for i, c := range columns {
		md[i] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL", SanitizeColumn(c))
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	pw, err := writer.NewCSVWriter(md, fw, writerParallelism)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("parquet writer %s: %w", path, err)
	}
	// Snappy: write throughput over ratio.
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	return &Writer{path: path, cols: columns, fw: fw, pw: pw}, nil
}

// Columns returns the writer's column layout (original names, not the
// sanitized forms stored in the file metadata).
func (w *Writer) Columns() []string { return w.cols }

// Rows returns the number of rows written so far.
func (w *Writer) Rows() int64 { return w.rows }

// Write appends one row. Cells align with Columns; nil means null.
func (w *Writer) Write(row []*string) error {
	if len(row) != len(w.cols) {
		return fmt.Errorf("row width %d != %d columns", len(row), len(w.cols))
	}
	if err := w.pw.WriteString(row); err != nil {
		return fmt.Errorf("write row to %s: %w", w.path, err)
	}
	w.rows++
	return nil
}

// Close flushes the remaining row groups and the footer, then closes the
// underlying file. Close must be called for the file to be readable.
func (w *Writer) Close() error {
	if err := w.pw.WriteStop(); err != nil {
		w.fw.Close()
		return fmt.Errorf("finalize %s: %w", w.path, err)
	}
	if err := w.fw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	return nil
}
