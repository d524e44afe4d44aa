package main

import (
	"reflect"
	"testing"
)

/*
TestMissingColumns: ID, ano and PRINCIPIO_ATIVO are all required; any absence
is reported, in a stable order.
*/
func TestMissingColumns(t *testing.T) {
	full := map[string]int{"ID": 0, "ano": 1, "PRINCIPIO_ATIVO": 2, "Classe_1": 3}
	if got := missingColumns(full); got != nil {
		t.Fatalf("missing = %v", got)
	}

	partial := map[string]int{"ID": 0, "Classe_1": 1}
	want := []string{"ano", "PRINCIPIO_ATIVO"}
	if got := missingColumns(partial); !reflect.DeepEqual(got, want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
}

/*
TestIDSet_Add: a repeated ID is a duplicate, distinct IDs are not, and two
distinct IDs landing on the same hash bucket are not miscounted.
*/
func TestIDSet_Add(t *testing.T) {
	s := newIDSet()
	if s.add("2020-00000001") {
		t.Fatal("first ID reported as duplicate")
	}
	if s.add("2020-00000002") {
		t.Fatal("distinct ID reported as duplicate")
	}
	if !s.add("2020-00000001") {
		t.Fatal("repeated ID not reported")
	}

	// Force every ID into one bucket: only a true repeat may count.
	c := &idSet{hash: func(string) uint64 { return 42 }, seen: make(map[uint64]string)}
	if c.add("2020-00000001") {
		t.Fatal("first ID reported as duplicate")
	}
	if c.add("2021-00000001") {
		t.Fatal("hash collision counted as duplicate")
	}
	if !c.add("2020-00000001") {
		t.Fatal("repeat of the stored ID not reported")
	}
}
