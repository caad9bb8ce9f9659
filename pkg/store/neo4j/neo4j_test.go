package neo4j

import "testing"

func TestSafeLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected string
	}{
		{"plain", "Person", "Person"},
		{"underscore", "Legal_Entity", "Legal_Entity"},
		{"space", "Legal Entity", "Entity"},
		{"empty", "", "Entity"},
		{"injection", "Person) DETACH DELETE (n", "Entity"},
		{"leading digit", "1Person", "Entity"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := safeLabel(test.label); got != test.expected {
				t.Errorf("safeLabel(%q) = %q, expected %q", test.label, got, test.expected)
			}
		})
	}
}

func TestSafeRelType(t *testing.T) {
	tests := []struct {
		name     string
		relType  string
		expected string
	}{
		{"plain", "WORKS_FOR", "WORKS_FOR"},
		{"hyphen", "WORKS-FOR", "RELATED_TO"},
		{"empty", "", "RELATED_TO"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := safeRelType(test.relType); got != test.expected {
				t.Errorf("safeRelType(%q) = %q, expected %q", test.relType, got, test.expected)
			}
		})
	}
}
