package intent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestHeuristicParse_quotedTitle(t *testing.T) {
	p := NewHeuristicParser()
	structure, text, err := p.Parse(context.Background(),
		`I need a team site 'Hr Portal' with a document library called 'Policy Files'`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := structure["site_title"]; got != "Hr Portal" {
		t.Errorf("site_title = %v, want Hr Portal", got)
	}
	if got := structure["site_type"]; got != "TeamSite" {
		t.Errorf("site_type = %v, want TeamSite", got)
	}

	lists, ok := structure["lists"].([]any)
	if !ok || len(lists) != 1 {
		t.Fatalf("lists = %v, want one entry", structure["lists"])
	}
	list := lists[0].(map[string]any)
	if got := list["title"]; got != "Policy Files" {
		t.Errorf("list title = %v, want Policy Files", got)
	}
	if got := list["url"]; got != "PolicyFiles" {
		t.Errorf("list url = %v, want PolicyFiles", got)
	}
	if got := list["template_type"]; got != float64(101) {
		t.Errorf("template_type = %v, want 101", got)
	}

	var roundTrip map[string]any
	if err := json.Unmarshal([]byte(text), &roundTrip); err != nil {
		t.Errorf("report text is not JSON: %v", err)
	}
}

func TestHeuristicParse_defaults(t *testing.T) {
	p := NewHeuristicParser()
	structure, _, err := p.Parse(context.Background(), "an intranet for company news")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := structure["site_type"]; got != "CommunicationSite" {
		t.Errorf("site_type = %v, want CommunicationSite", got)
	}
	if got := structure["site_title"]; got != "Corporate Portal" {
		t.Errorf("site_title = %v, want Corporate Portal", got)
	}
	if _, ok := structure["theme"]; ok {
		t.Error("theme present without a color keyword")
	}
}

func TestHeuristicParse_themeKeyword(t *testing.T) {
	p := NewHeuristicParser()
	structure, _, err := p.Parse(context.Background(),
		"a project tracker for the safety team, alert red branding")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	theme, ok := structure["theme"].(map[string]any)
	if !ok {
		t.Fatalf("theme = %v, want object", structure["theme"])
	}
	if got := theme["color"]; got != "#d13438" {
		t.Errorf("theme color = %v, want #d13438", got)
	}
}

func TestHeuristicParse_noFalseThemeMatch(t *testing.T) {
	p := NewHeuristicParser()
	structure, _, err := p.Parse(context.Background(),
		"a registered vendors list for procurement")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := structure["theme"]; ok {
		t.Error(`"registered" matched the red keyword`)
	}
}

func TestHeuristicParse_titleCasesExtractedNames(t *testing.T) {
	p := NewHeuristicParser()
	structure, _, err := p.Parse(context.Background(),
		`a team site 'ANNUAL AUDITS' with a library called 'JOB PACKS'`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := structure["site_title"]; got != "Annual Audits" {
		t.Errorf("site_title = %v, want Annual Audits", got)
	}
	list := structure["lists"].([]any)[0].(map[string]any)
	if got := list["title"]; got != "Job Packs" {
		t.Errorf("list title = %v, want Job Packs", got)
	}
}

func TestHeuristicParse_truncatesDescriptionOnRuneBoundary(t *testing.T) {
	p := NewHeuristicParser()
	description := "a team site for the café crew " + strings.Repeat("é", 100)
	structure, _, err := p.Parse(context.Background(), description)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	desc, ok := structure["description"].(string)
	if !ok {
		t.Fatalf("description = %v, want string", structure["description"])
	}
	if !utf8.ValidString(desc) {
		t.Fatalf("description = %q, not valid UTF-8", desc)
	}
	if got := utf8.RuneCountInString(strings.TrimSuffix(desc, "...")); got != 100 {
		t.Errorf("truncated rune count = %d, want 100", got)
	}
	if !strings.HasSuffix(desc, "...") {
		t.Errorf("description = %q, want ... suffix", desc)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around fence", "Here you go:\n```json\n{\"a\":1}\n```\nEnjoy.", `{"a":1}`},
		{"whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
