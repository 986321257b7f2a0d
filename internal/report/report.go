// Package report renders the human-readable run report: validation
// outcome, coercion warnings, and the raw intent structure the run was
// built from.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wrenfold/sitewright/model"
)

// Input collects everything one report covers.
type Input struct {
	RunID        string
	Timestamp    time.Time
	Description  string
	SiteTitle    string
	Provider     string
	TemplatePath string
	Warnings     []model.Defect
	Defects      []model.Defect

	// IntentJSON is the raw structure text as the parser produced it.
	IntentJSON string
}

const rule = "============================================================"

// Render produces the report text.
func Render(in Input) string {
	var b strings.Builder

	b.WriteString("Provisioning Template - Generation Report\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Run:         %s\n", in.RunID)
	fmt.Fprintf(&b, "Timestamp:   %s\n", in.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Provider:    %s\n", in.Provider)
	fmt.Fprintf(&b, "Site title:  %s\n", in.SiteTitle)
	fmt.Fprintf(&b, "Template:    %s\n", in.TemplatePath)
	if in.Description != "" {
		fmt.Fprintf(&b, "Request:     %s\n", in.Description)
	}

	b.WriteString("\nVALIDATION RESULTS\n")
	b.WriteString(strings.Repeat("-", 25) + "\n")
	if len(in.Defects) == 0 {
		b.WriteString("STATUS: PASSED\n")
		b.WriteString("The template conforms to the provisioning schema.\n")
	} else {
		b.WriteString("STATUS: FAILED\n")
		fmt.Fprintf(&b, "Found %d validation defect(s):\n\n", len(in.Defects))
		for i, d := range in.Defects {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, d)
		}
		b.WriteString("\nThe template may not apply cleanly.\n")
	}

	if len(in.Warnings) > 0 {
		b.WriteString("\nCOERCION WARNINGS\n")
		b.WriteString(strings.Repeat("-", 25) + "\n")
		for i, w := range in.Warnings {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, w)
		}
	}

	if in.IntentJSON != "" {
		b.WriteString("\n" + rule + "\n")
		b.WriteString("INTENT STRUCTURE\n")
		b.WriteString(rule + "\n")
		b.WriteString(prettyJSON(in.IntentJSON))
		b.WriteString("\n")
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString("REPORT END\n")
	b.WriteString(rule + "\n")
	return b.String()
}

// prettyJSON re-indents the text when it parses as JSON and returns it
// untouched otherwise.
func prettyJSON(text string) string {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return text
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return text
	}
	return string(out)
}
