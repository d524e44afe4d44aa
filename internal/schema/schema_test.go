package schema

import (
	"reflect"
	"testing"
)

/*
TestSuperset returns the sorted union of the observed column names.
*/
func TestSuperset(t *testing.T) {
	got := Superset([][]string{
		{"QTD_VENDIDA", "PRINCIPIO_ATIVO"},
		{"PRINCIPIO_ATIVO", "ANO_VENDA", "CID10"},
		nil,
	})
	want := []string{"ANO_VENDA", "CID10", "PRINCIPIO_ATIVO", "QTD_VENDIDA"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Superset = %v, want %v", got, want)
	}
}

/*
TestProject verifies the dest→source index plan: present columns point at
their physical position, absent columns project to -1, and the capability
helpers agree with the plan.
*/
func TestProject(t *testing.T) {
	superset := []string{"A", "B", "C", "D"}
	fileCols := []string{"C", "A"} // file order differs from superset order

	p := Project(superset, fileCols)

	if !reflect.DeepEqual(p.Columns, superset) {
		t.Fatalf("Columns = %v", p.Columns)
	}
	if want := []int{1, -1, 0, -1}; !reflect.DeepEqual(p.SrcIdx, want) {
		t.Fatalf("SrcIdx = %v, want %v", p.SrcIdx, want)
	}

	if !p.Has("A") || p.Has("B") || !p.Has("C") || p.Has("D") {
		t.Fatal("Has disagrees with SrcIdx")
	}
	if p.SourceIndex("C") != 0 || p.SourceIndex("B") != -1 {
		t.Fatal("SourceIndex disagrees with SrcIdx")
	}
	if p.SourceIndex("NOT_IN_SUPERSET") != -1 {
		t.Fatal("unknown column must project to -1")
	}
}

/*
TestProject_DuplicateHeaderName: when a file header repeats a name the first
physical occurrence wins.
*/
func TestProject_DuplicateHeaderName(t *testing.T) {
	p := Project([]string{"X"}, []string{"X", "X"})
	if p.SourceIndex("X") != 0 {
		t.Fatalf("SourceIndex(X) = %d, want 0", p.SourceIndex("X"))
	}
}
