package keyword

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"identical empty", "", "", 0},
		{"identical word", "garlic", "garlic", 0},
		{"empty a", "", "basil", 5},
		{"empty b", "basil", "", 5},
		{"one substitution", "thyme", "thyne", 1},
		{"one insertion", "tomatos", "tomatoes", 1},
		{"one deletion", "cumin", "cumn", 1},
		{"kitten to sitting", "kitten", "sitting", 3},
		{"unicode", "crème", "creme", 1},
		{"case difference", "Flour", "flour", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevenshteinDistance(tt.a, tt.b); got != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
			if got := LevenshteinDistance(tt.b, tt.a); got != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d (symmetry)", tt.b, tt.a, got, tt.expected)
			}
		})
	}
}

func TestMaxEdits(t *testing.T) {
	for term, want := range map[string]int{"egg": 1, "rice": 1, "basil": 2, "crème": 2} {
		if got := maxEdits(term); got != want {
			t.Errorf("maxEdits(%q) = %d, want %d", term, got, want)
		}
	}
}
