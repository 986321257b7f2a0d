package intent

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
)

// HeuristicParser derives a minimal structure from the description with
// plain pattern matching. It is the offline fallback: always available,
// never errors, and deliberately conservative.
type HeuristicParser struct{}

// NewHeuristicParser creates the fallback parser.
func NewHeuristicParser() *HeuristicParser {
	return &HeuristicParser{}
}

var (
	quotedRe = regexp.MustCompile(`['"]([^'"]+)['"]`)
	calledRe = regexp.MustCompile(`(?i)called\s+['"]([^'"]+)['"]`)
	libRe    = regexp.MustCompile(`(?i)library\s+['"]?([^'".\s]+)['"]?`)
)

var teamKeywords = []string{"team", "collaboration", "project"}

// Checked in order; the first whole-word match wins.
var themeKeywords = []struct{ word, hex string }{
	{"red", "#d13438"},
	{"green", "#498205"},
	{"orange", "#ca5010"},
	{"teal", "#038387"},
	{"blue", "#0078d4"},
}

var wordRes = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(themeKeywords))
	for _, kw := range themeKeywords {
		m[kw.word] = regexp.MustCompile(`\b` + kw.word + `\b`)
	}
	return m
}()

func (p *HeuristicParser) Parse(_ context.Context, description string) (map[string]any, string, error) {
	lower := strings.ToLower(description)

	siteType := "CommunicationSite"
	for _, kw := range teamKeywords {
		if strings.Contains(lower, kw) {
			siteType = "TeamSite"
			break
		}
	}

	siteTitle := "Corporate Portal"
	if m := quotedRe.FindStringSubmatch(description); m != nil {
		siteTitle = titleCase(m[1])
	} else if strings.Contains(lower, "team") {
		siteTitle = "Team Collaboration Site"
	} else if strings.Contains(lower, "project") {
		siteTitle = "Project Management Site"
	}

	libraryName := "Documents"
	if m := calledRe.FindStringSubmatch(description); m != nil {
		libraryName = titleCase(m[1])
	} else if m := libRe.FindStringSubmatch(description); m != nil {
		libraryName = titleCase(m[1])
	}

	desc := description
	if runes := []rune(desc); len(runes) > 100 {
		desc = string(runes[:100]) + "..."
	}

	structure := map[string]any{
		"site_type":   siteType,
		"site_title":  siteTitle,
		"description": desc,
		"site_fields": []any{
			map[string]any{
				"name":        "DocumentStatus",
				"displayName": "Document Status",
				"type":        "Choice",
				"choices":     []any{"Draft", "Review", "Approved"},
			},
		},
		"lists": []any{
			map[string]any{
				"title":             libraryName,
				"template_type":     float64(101),
				"url":               strings.ReplaceAll(libraryName, " ", ""),
				"enable_versioning": true,
				"fields":            []any{"DocumentStatus"},
			},
		},
		"navigation": []any{
			map[string]any{"title": "Home", "url": "{site}"},
			map[string]any{"title": libraryName, "url": "{site}/" + strings.ReplaceAll(libraryName, " ", "")},
		},
	}

	for _, kw := range themeKeywords {
		if wordRes[kw.word].MatchString(lower) {
			structure["theme"] = map[string]any{"color": kw.hex}
			break
		}
	}

	text, err := json.MarshalIndent(structure, "", "  ")
	if err != nil {
		return structure, "", nil
	}
	return structure, string(text), nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
