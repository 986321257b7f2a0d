// Package integration exercises the whole generation flow the way the CLI
// drives it: description to intent structure to document, report, and run
// history, with nothing mocked below the intent parser.
package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/wrenfold/sitewright/internal/intent"
	"github.com/wrenfold/sitewright/internal/pipeline"
	"github.com/wrenfold/sitewright/internal/report"
	"github.com/wrenfold/sitewright/internal/runstore"
	"github.com/wrenfold/sitewright/internal/schema"
	"github.com/wrenfold/sitewright/model"
)

// TestHarness drives full generation runs against a temp directory.
type TestHarness struct {
	t      *testing.T
	dir    string
	gen    *pipeline.Generator
	parser intent.Parser
}

// NewTestHarness builds a harness with the structural validator and the
// offline parser.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()
	return &TestHarness{
		t:   t,
		dir: t.TempDir(),
		gen: pipeline.New(pipeline.Options{
			Validator: schema.New(),
			Logger:    zap.NewNop(),
		}),
		parser: intent.NewHeuristicParser(),
	}
}

// RunDescription parses a free-text description and generates from it.
func (h *TestHarness) RunDescription(description string) (*pipeline.Result, string) {
	h.t.Helper()
	raw, intentJSON, err := h.parser.Parse(context.Background(), description)
	if err != nil {
		h.t.Fatalf("Parse() error = %v", err)
	}
	res, err := h.gen.Generate(context.Background(), raw)
	if err != nil {
		h.t.Fatalf("Generate() error = %v", err)
	}
	return res, intentJSON
}

// RunFixture generates from a JSON fixture under testdata/.
func (h *TestHarness) RunFixture(name string) *pipeline.Result {
	h.t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		h.t.Fatalf("reading fixture %s: %v", name, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		h.t.Fatalf("fixture %s is not JSON: %v", name, err)
	}
	res, err := h.gen.Generate(context.Background(), raw)
	if err != nil {
		h.t.Fatalf("Generate() error = %v", err)
	}
	return res
}

// ParseXML parses generated XML, failing the test on malformed output.
func (h *TestHarness) ParseXML(xml string) *etree.Document {
	h.t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		h.t.Fatalf("generated XML does not parse: %v", err)
	}
	return doc
}

// WriteArtifacts writes the template and report the way the CLI does and
// returns their paths.
func (h *TestHarness) WriteArtifacts(res *pipeline.Result, description, intentJSON string) (string, string) {
	h.t.Helper()
	templatePath := filepath.Join(h.dir, "template.xml")
	if err := os.WriteFile(templatePath, []byte(res.XML), 0o644); err != nil {
		h.t.Fatalf("writing template: %v", err)
	}
	reportPath := filepath.Join(h.dir, "report.txt")
	text := report.Render(report.Input{
		RunID:        "integration-run",
		Timestamp:    time.Now(),
		Description:  description,
		SiteTitle:    res.Site.Title,
		Provider:     "heuristic",
		TemplatePath: templatePath,
		Warnings:     res.Warnings,
		Defects:      res.Defects,
		IntentJSON:   intentJSON,
	})
	if err := os.WriteFile(reportPath, []byte(text), 0o644); err != nil {
		h.t.Fatalf("writing report: %v", err)
	}
	return templatePath, reportPath
}

// OpenStore opens a run store inside the harness directory.
func (h *TestHarness) OpenStore() *runstore.Store {
	h.t.Helper()
	s, err := runstore.Open(filepath.Join(h.dir, "runs.db"))
	if err != nil {
		h.t.Fatalf("Open() error = %v", err)
	}
	h.t.Cleanup(func() { s.Close() })
	return s
}

// AssertNoDefects fails the test when validation found anything.
func (h *TestHarness) AssertNoDefects(res *pipeline.Result) {
	h.t.Helper()
	for _, d := range res.Defects {
		h.t.Errorf("unexpected defect: %s", d)
	}
}

func hasCode(defects []model.Defect, code string) bool {
	for _, d := range defects {
		if d.Code == code {
			return true
		}
	}
	return false
}
