package namematch

import (
	"reflect"
	"testing"
)

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Honza", "Honza"},
		{"Jiří", "Jiri"},
		{"café", "cafe"},
		{"naïve", "naive"},
		{"Renée", "Renee"},
		{"José García", "Jose Garcia"},
		{"Žluťoučký kůň", "Zlutoucky kun"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := RemoveDiacritics(tt.input)
			if result != tt.expected {
				t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jan Novák", "jan novak"},
		{"JOHN DOE", "john doe"},
		{"  John   Smith ", "john smith"},
		{"Jane A. Doe", "jane a doe"},
		{"O'Brien, Patrick", "o'brien patrick"},
		{"Smith-Jones", "smith-jones"},
		{"Dr. Jane Doe, PhD.", "dr jane doe phd"},
		{"Renée Müller", "renee muller"},
		{"李明 (Li Ming)", "li ming"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Canonical(tt.input)
			if result != tt.expected {
				t.Errorf("Canonical(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Jane A. Doe", []string{"jane", "a", "doe"}},
		{"O'Brien", []string{"o'brien"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Tokens(tt.input)
			if len(result) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Tokens(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}
