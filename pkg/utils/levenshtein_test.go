package utils

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical", "hello", "hello", 0},
		{"empty a", "", "hello", 5},
		{"empty b", "hello", "", 5},
		{"substitution", "cat", "bat", 1},
		{"insertion", "cat", "cart", 1},
		{"kitten to sitting", "kitten", "sitting", 3},
		{"case difference", "Hello", "hello", 1},
		{"unicode", "café", "cafe", 1},
		{"transposition", "ab", "ba", 2},
		{"file name typo", "Jet_egnine.txt", "Jet_engine.txt", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Levenshtein(tt.a, tt.b); got != tt.want {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Levenshtein(tt.b, tt.a); got != tt.want {
				t.Errorf("Levenshtein(%q, %q) = %d, want %d (reverse)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestClosest(t *testing.T) {
	candidates := []string{"a.txt", "Jet_engine.txt", "Cat.txt"}
	if got, ok := Closest("jet_engine.txt", candidates, 3); !ok || got != "Jet_engine.txt" {
		t.Errorf("Closest = %q, %v", got, ok)
	}
	if got, ok := Closest("completely-different.md", candidates, 3); ok {
		t.Errorf("expected no match, got %q", got)
	}
	if _, ok := Closest("x", nil, 3); ok {
		t.Error("expected no match for empty candidates")
	}
}
