package main

import "testing"

func strp(s string) *string { return &s }

/*
TestSelected exercises the keep predicate: the yes/no flag column selects on
"sim" in any casing/spacing, class columns select on the substring, and rows
matching neither are dropped. Nulls never select.
*/
func TestSelected(t *testing.T) {
	const flagCol = "Ansiolítico/Sedativo/Hipnótico"

	tests := []struct {
		name string
		row  map[string]*string
		want bool
	}{
		{"flag sim", map[string]*string{flagCol: strp("sim")}, true},
		{"flag SIM with spaces", map[string]*string{flagCol: strp("  SIM ")}, true},
		{"flag nao", map[string]*string{flagCol: strp("não")}, false},
		{"flag null", map[string]*string{flagCol: nil}, false},
		{"class opioid", map[string]*string{"Classe_1": strp("Analgésico Opioide")}, true},
		{"class opioid later column", map[string]*string{
			"Classe_1": strp("antitussígeno"),
			"Classe_3": strp("OPIOIDE"),
		}, true},
		{"class unrelated", map[string]*string{"Classe_1": strp("antibiótico")}, false},
		{"flag nao but class matches", map[string]*string{
			flagCol:    strp("não"),
			"Classe_2": strp("agonista opioide parcial"),
		}, true},
		{"empty row", map[string]*string{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selected(tt.row, flagCol, "opio"); got != tt.want {
				t.Fatalf("selected = %v, want %v", got, tt.want)
			}
		})
	}
}
