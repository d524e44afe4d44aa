package main

import (
	"reflect"
	"testing"
)

/*
TestCategoricalTargets: the fixed categorical set, the controlled-substance
flag column, and every UF_* column get frequency tables when the file
carries them; anything else does not, and absent columns are never selected.
*/
func TestCategoricalTargets(t *testing.T) {
	cols := []string{
		"ID", "ano", "SEXO", "UF_VENDA", "UF_CONSELHO_PRESCRITOR",
		flagColumn, "QTD_VENDIDA", "Classe_1",
	}
	want := []string{"SEXO", "UF_VENDA", "UF_CONSELHO_PRESCRITOR", flagColumn}
	if got := categoricalTargets(cols); !reflect.DeepEqual(got, want) {
		t.Fatalf("targets = %v, want %v", got, want)
	}

	if got := categoricalTargets([]string{"ID", "ano"}); got != nil {
		t.Fatalf("targets without categoricals = %v", got)
	}
}
