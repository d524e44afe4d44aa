package parquetfile

import (
	"path/filepath"
	"reflect"
	"testing"
)

func strp(s string) *string { return &s }

/*
TestSanitizeColumn maps tag-metadata separators to underscores and leaves
accented characters and slashes alone.
*/
func TestSanitizeColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"QTD_VENDIDA", "QTD_VENDIDA"},
		{"Classe 1", "Classe_1"},
		{"a,b;c.d=e", "a_b_c_d_e"},
		{"Ansiolítico/Sedativo/Hipnótico", "Ansiolítico/Sedativo/Hipnótico"},
	}
	for _, tt := range tests {
		if got := SanitizeColumn(tt.in); got != tt.want {
			t.Fatalf("SanitizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

/*
TestWriteReadRoundTrip writes a small dataset with nulls, reopens it, and
checks row count, column order and cell content, reading in chunks smaller
than the row count to exercise the bounded-read path.
*/
func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	cols := []string{"ID", "ano", "PRINCIPIO_ATIVO"}

	w, err := NewWriter(path, cols)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	rows := [][]*string{
		{strp("2020-00000001"), strp("2020"), strp("DIAZEPAM")},
		{strp("2020-00000002"), strp("2020"), nil},
		{strp("2021-00000001"), strp("2021"), strp("CODEÍNA")},
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if w.Rows() != 3 {
		t.Fatalf("Rows = %d", w.Rows())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	if r.NumRows() != 3 {
		t.Fatalf("NumRows = %d", r.NumRows())
	}
	if !reflect.DeepEqual(r.Columns(), cols) {
		t.Fatalf("Columns = %v, want %v", r.Columns(), cols)
	}

	var got []map[string]*string
	for {
		batch, err := r.ReadRows(2)
		if err != nil {
			t.Fatalf("ReadRows: %v", err)
		}
		if len(batch) == 0 {
			break
		}
		got = append(got, batch...)
	}
	if len(got) != 3 {
		t.Fatalf("read %d rows, want 3", len(got))
	}
	if v := got[0]["ID"]; v == nil || *v != "2020-00000001" {
		t.Fatalf("row 0 ID = %v", v)
	}
	if got[1]["PRINCIPIO_ATIVO"] != nil {
		t.Fatalf("row 1 PRINCIPIO_ATIVO = %v, want null", *got[1]["PRINCIPIO_ATIVO"])
	}
	if v := got[2]["PRINCIPIO_ATIVO"]; v == nil || *v != "CODEÍNA" {
		t.Fatalf("row 2 PRINCIPIO_ATIVO = %v", v)
	}
}

/*
TestWrite_WidthMismatch rejects rows that do not align with the layout.
*/
func TestWrite_WidthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	w, err := NewWriter(path, []string{"a", "b"})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	defer w.Close()

	if err := w.Write([]*string{strp("only one")}); err == nil {
		t.Fatal("want width error")
	}
}

/*
TestOpenReader_Missing propagates the open error for a nonexistent path.
*/
func TestOpenReader_Missing(t *testing.T) {
	if _, err := OpenReader(filepath.Join(t.TempDir(), "none.parquet")); err == nil {
		t.Fatal("want error")
	}
}
