package dict

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"prescricoes/internal/normalize"
)

func writeDict(t *testing.T, content []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "analise_geral_medicamentos.csv")
	if err := os.WriteFile(p, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func deref(vals []*string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}

/*
TestLoad_Basic checks the wide→long reshape: descriptor column discovery,
join-profile key normalization, and lookup through a secondary alias.
*/
func TestLoad_Basic(t *testing.T) {
	p := writeDict(t, []byte(
		"PRINCIPIO_ATIVO;Classe_1;PRINCIPIO_ATIVO_1;Ansiolítico/Sedativo/Hipnótico\n"+
			" diazepam ;Benzodiazepínico;Valium;Sim\n"+
			"codeína;Opioide;;Não\n"))

	tbl, err := Load(context.Background(), p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantDesc := []string{"Classe_1", "Ansiolítico/Sedativo/Hipnótico"}
	if !reflect.DeepEqual(tbl.Descriptors(), wantDesc) {
		t.Fatalf("Descriptors = %v, want %v", tbl.Descriptors(), wantDesc)
	}
	// diazepam + codeína + the Valium alias.
	if tbl.Len() != 3 {
		t.Fatalf("Len = %d, want 3", tbl.Len())
	}

	got, ok := tbl.Lookup(normalize.JoinKey(" Diazepam "))
	if !ok {
		t.Fatal("diazepam not found")
	}
	if want := []any{"Benzodiazepínico", "Sim"}; !reflect.DeepEqual(deref(got), want) {
		t.Fatalf("diazepam descriptors = %v, want %v", deref(got), want)
	}

	// The secondary alias maps to the same descriptor payload.
	alias, ok := tbl.Lookup("VALIUM")
	if !ok {
		t.Fatal("alias VALIUM not found")
	}
	if !reflect.DeepEqual(deref(alias), deref(got)) {
		t.Fatalf("alias payload = %v, want %v", deref(alias), deref(got))
	}

	if _, ok := tbl.Lookup("INEXISTENTE"); ok {
		t.Fatal("unexpected match for INEXISTENTE")
	}
}

/*
TestLoad_FirstOccurrenceWins asserts the dedupe policy in column-major
order: when two rows share a normalized key the first row's descriptors
survive, and a primary-column alias beats a later row's secondary alias.
*/
func TestLoad_FirstOccurrenceWins(t *testing.T) {
	p := writeDict(t, []byte(
		"PRINCIPIO_ATIVO;PRINCIPIO_ATIVO_1;Classe_1\n"+
			"AMOXICILINA 500MG;;Penicilina\n"+
			" amoxicilina  500mg ;;Duplicada\n"+
			"OUTRA;AMOXICILINA 500MG;Alias tardio\n"))

	tbl, err := Load(context.Background(), p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.DuplicateKeys != 2 {
		t.Fatalf("DuplicateKeys = %d, want 2", tbl.DuplicateKeys)
	}

	got, ok := tbl.Lookup("AMOXICILINA 500MG")
	if !ok {
		t.Fatal("key not found")
	}
	if *got[0] != "Penicilina" {
		t.Fatalf("descriptor = %q, want %q (first occurrence)", *got[0], "Penicilina")
	}
}

/*
TestLoad_Latin1AndLenient feeds latin1 bytes with a trailing-separator
header column and a short row; the empty-named column is ignored and
accented keys are decoded before normalization.
*/
func TestLoad_Latin1AndLenient(t *testing.T) {
	content := []byte("PRINCIPIO_ATIVO;Classe_1;\n")
	content = append(content, []byte{'c', 'o', 'd', 'e', 0xED, 'n', 'a', ';', 'O', 'p', 'i', 'o', 'i', 'd', 'e', ';', '\n'}...)
	content = append(content, []byte("so_chave\n")...) // short row: alias only
	p := writeDict(t, content)

	tbl, err := Load(context.Background(), p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(tbl.Descriptors(), []string{"Classe_1"}) {
		t.Fatalf("Descriptors = %v", tbl.Descriptors())
	}
	if _, ok := tbl.Lookup("CODEÍNA"); !ok {
		t.Fatal("accented key not found after latin1 decode")
	}
	short, ok := tbl.Lookup("SO_CHAVE")
	if !ok {
		t.Fatal("short row key not found")
	}
	if short[0] != nil {
		t.Fatalf("short row descriptor = %v, want nil", *short[0])
	}
}

/*
TestLoad_NoAliasColumns is the fatal case: a dictionary without any of the
expected key columns cannot drive a join.
*/
func TestLoad_NoAliasColumns(t *testing.T) {
	p := writeDict(t, []byte("NOME;Classe_1\nx;y\n"))
	_, err := Load(context.Background(), p)
	if !errors.Is(err, ErrNoAliasColumns) {
		t.Fatalf("want ErrNoAliasColumns, got %v", err)
	}
}

/*
TestLoad_EmptyKeysDropped: rows whose aliases normalize to "" contribute no
mapping entries.
*/
func TestLoad_EmptyKeysDropped(t *testing.T) {
	p := writeDict(t, []byte("PRINCIPIO_ATIVO;Classe_1\n   ;Vazia\n;Vazia2\nreal;Classe\n"))
	tbl, err := Load(context.Background(), p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tbl.Len())
	}
}
