package parquetfile

import (
	"encoding/json"
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
)

// Reader reads a consolidated Parquet file in bounded chunks so auditors
// never materialize the full dataset. The schema comes from the file footer;
// no Go struct definition is needed.
type Reader struct {
	path string
	fr   source.ParquetFile
	pr   *reader.ParquetReader

	cols    []string // external column names, file order
	inNames []string // parquet-go generated field names, aligned with cols
}

// OpenReader opens path for chunked reading.
func OpenReader(path string) (*Reader, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	pr, err := reader.NewParquetReader(fr, nil, writerParallelism)
	if err != nil {
		fr.Close()
		return nil, fmt.Errorf("parquet reader %s: %w", path, err)
	}

	r := &Reader{path: path, fr: fr, pr: pr}
	// Infos[0] is the schema root; leaves follow in file order.
	for _, info := range pr.SchemaHandler.Infos[1:] {
		r.cols = append(r.cols, info.ExName)
		r.inNames = append(r.inNames, info.InName)
	}
	return r, nil
}

// Columns returns the column names in file order.
func (r *Reader) Columns() []string { return r.cols }

// NumRows returns the total row count from the file metadata.
func (r *Reader) NumRows() int64 { return r.pr.GetNumRows() }

// ReadRows returns up to n rows as column-name → value maps (nil value means
// null). It returns an empty slice once the file is exhausted.
func (r *Reader) ReadRows(n int) ([]map[string]*string, error) {
	if n <= 0 {
		return nil, nil
	}
	vals, err := r.pr.ReadByNumber(n)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(vals) == 0 {
		return nil, nil
	}

	// parquet-go materializes rows as reflect-built structs keyed by its
	// generated field names; round-trip through JSON to get at them without
	// depending on the generated type.
	raw, err := json.Marshal(vals)
	if err != nil {
		return nil, fmt.Errorf("decode rows from %s: %w", r.path, err)
	}
	var generic []map[string]*string
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decode rows from %s: %w", r.path, err)
	}

	out := make([]map[string]*string, len(generic))
	for i, m := range generic {
		row := make(map[string]*string, len(r.cols))
		for j, col := range r.cols {
			row[col] = m[r.inNames[j]]
		}
		out[i] = row
	}
	return out, nil
}

// Close releases the reader and the underlying file.
func (r *Reader) Close() error {
	r.pr.ReadStop()
	if err := r.fr.Close(); err != nil {
		return fmt.Errorf("close %s: %w", r.path, err)
	}
	return nil
}
