package casestore

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"John Smith", "john-smith"},
		{"Jana Nováková", "jana-novakova"},
		{"José Ramírez-García", "jose-ramirez-garcia"},
		{"O'Brien, Pat", "o-brien-pat"},
		{"  Anna   Marie  ", "anna-marie"},
		{"UPPER Case", "upper-case"},
		{"agent 007", "agent-007"},
		{"...", ""},
		{"", ""},
		{"李明", ""},
		{"李明 (Li Ming)", "li-ming"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Slugify(tc.name)
			if got != tc.want {
				t.Errorf("Slugify(%q) = %q, want %q", tc.name, got, tc.want)
			}
		})
	}
}

func TestSlugify_NoLeadingOrTrailingDash(t *testing.T) {
	got := Slugify("!!!fire--walk!!!")
	if got != "fire-walk" {
		t.Errorf("expected 'fire-walk', got %q", got)
	}
}
