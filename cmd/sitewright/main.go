// Package main is the entry point for the sitewright generator.
// It turns a free-text site description into a validated provisioning
// template plus a generation report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wrenfold/sitewright/internal/config"
	"github.com/wrenfold/sitewright/internal/intent"
	"github.com/wrenfold/sitewright/internal/observability"
	"github.com/wrenfold/sitewright/internal/pipeline"
	"github.com/wrenfold/sitewright/internal/report"
	"github.com/wrenfold/sitewright/internal/runstore"
	"github.com/wrenfold/sitewright/internal/schema"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Step 1: Parse CLI flags. The description comes from -input ("-" for
	// stdin) or from the remaining arguments.
	configPath := flag.String("config", "", "path to configuration file")
	inputPath := flag.String("input", "", `description file, or "-" for stdin`)
	outDir := flag.String("out", "", "output directory (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sitewright %s (%s)\n", version, commit)
		return 0
	}

	// Step 2: Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	if *outDir != "" {
		cfg.Output.Directory = *outDir
	}

	// Step 3: Initialize the logger.
	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck // stderr sync is best effort

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	runID := uuid.NewString()
	logger = observability.RunLogger(ctx, logger, runID)
	ctx = observability.WithLogger(ctx, logger)

	// Step 4: Read the description.
	description, err := readDescription(*inputPath, flag.Args())
	if err != nil {
		logger.Error("reading description failed", zap.Error(err))
		return 1
	}
	if strings.TrimSpace(description) == "" {
		fmt.Fprintln(os.Stderr, `usage: sitewright [flags] "site description"`)
		flag.PrintDefaults()
		return 2
	}

	// Step 5: Parse the description into a raw structure. Input that is
	// already a JSON object bypasses the intent step.
	var (
		raw        map[string]any
		intentJSON string
		provider   string
	)
	if structure, ok := parseStructure(description); ok {
		raw, intentJSON, provider = structure, description, "json"
		logger.Info("input is a structure; skipping intent parsing")
	} else {
		var parser intent.Parser
		parser, provider = buildParser(cfg.Intent, logger)
		parseCtx, cancel := context.WithTimeout(ctx, cfg.Intent.Timeout)
		raw, intentJSON, err = parser.Parse(parseCtx, description)
		cancel()
	}
	if err != nil {
		if !cfg.Intent.Fallback {
			logger.Error("intent parsing failed", zap.Error(err))
			return 1
		}
		logger.Warn("intent parsing failed; using heuristic fallback", zap.Error(err))
		provider = "heuristic"
		raw, intentJSON, err = intent.NewHeuristicParser().Parse(ctx, description)
		if err != nil {
			logger.Error("fallback parsing failed", zap.Error(err))
			return 1
		}
	}

	// Step 6: Build the validator, strict when an XSD is configured.
	validator := schema.New()
	if cfg.Schema.XSDPath != "" {
		dir, base := filepath.Split(filepath.Clean(cfg.Schema.XSDPath))
		if dir == "" {
			dir = "."
		}
		validator, err = schema.NewStrict(os.DirFS(dir), base)
		if err != nil {
			logger.Error("schema load failed", zap.Error(err))
			return 1
		}
	}

	// Step 7: Generate the document.
	gen := pipeline.New(pipeline.Options{Validator: validator, Logger: logger})
	res, err := gen.Generate(ctx, raw)
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		return 1
	}
	for _, w := range res.Warnings {
		logger.Warn("coercion warning", zap.String("path", w.Path),
			zap.String("code", w.Code), zap.String("detail", w.Message))
	}

	// Step 8: Write the artifacts.
	now := time.Now()
	stamp := now.Format("20060102_150405")
	base := fmt.Sprintf("%s_%s", slug(res.Site.Title), stamp)

	if err := os.MkdirAll(cfg.Output.Directory, 0o755); err != nil {
		logger.Error("creating output directory failed", zap.Error(err))
		return 1
	}
	templatePath := filepath.Join(cfg.Output.Directory, base+cfg.Output.TemplateExt)
	if err := os.WriteFile(templatePath, []byte(res.XML), 0o644); err != nil {
		logger.Error("writing template failed", zap.Error(err))
		return 1
	}
	logger.Info("template written", zap.String("path", templatePath),
		zap.Int("defects", len(res.Defects)), zap.Int("warnings", len(res.Warnings)))

	reportPath := ""
	if cfg.Output.WriteReport {
		reportPath = filepath.Join(cfg.Output.Directory, base+"_report.txt")
		text := report.Render(report.Input{
			RunID:        runID,
			Timestamp:    now,
			Description:  description,
			SiteTitle:    res.Site.Title,
			Provider:     provider,
			TemplatePath: templatePath,
			Warnings:     res.Warnings,
			Defects:      res.Defects,
			IntentJSON:   intentJSON,
		})
		if err := os.WriteFile(reportPath, []byte(text), 0o644); err != nil {
			logger.Error("writing report failed", zap.Error(err))
			return 1
		}
		logger.Info("report written", zap.String("path", reportPath))
	}

	// Step 9: Record the run.
	if cfg.Store.Enabled {
		status := runstore.StatusClean
		if len(res.Defects) > 0 {
			status = runstore.StatusDefects
		}
		if err := recordRun(ctx, cfg.Store.Path, runstore.Record{
			RunID:           runID,
			Description:     description,
			SiteTitle:       res.Site.Title,
			Provider:        provider,
			Status:          status,
			WarningCount:    len(res.Warnings),
			DefectCount:     len(res.Defects),
			TemplatePath:    templatePath,
			ReportPath:      reportPath,
			CreatedAtUnixMs: now.UnixMilli(),
		}); err != nil {
			logger.Error("recording run failed", zap.Error(err))
			return 1
		}
	}

	if len(res.Defects) > 0 && cfg.Schema.FailOnDefects {
		logger.Error("validation defects found", zap.Int("count", len(res.Defects)))
		return 1
	}
	return 0
}

// parseStructure reports whether the input text is already a JSON object
// and returns it decoded when it is.
func parseStructure(text string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, false
	}
	return raw, true
}

func readDescription(inputPath string, args []string) (string, error) {
	switch {
	case inputPath == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case inputPath != "":
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", inputPath, err)
		}
		return string(data), nil
	default:
		return strings.Join(args, " "), nil
	}
}

func buildParser(cfg config.IntentConfig, logger *zap.Logger) (intent.Parser, string) {
	if cfg.Provider == "heuristic" {
		return intent.NewHeuristicParser(), "heuristic"
	}
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		logger.Warn("api key not set; using heuristic parser",
			zap.String("env", cfg.APIKeyEnv))
		return intent.NewHeuristicParser(), "heuristic"
	}
	return intent.NewOpenAIParser(intent.OpenAIOptions{
		APIKey:  apiKey,
		BaseURL: cfg.BaseURL,
		Models:  cfg.Models,
	}, logger), "openai"
}

func recordRun(ctx context.Context, path string, rec runstore.Record) error {
	store, err := runstore.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(ctx, rec)
}

// slug turns a site title into a file-safe base name.
func slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	s := strings.Trim(b.String(), "_")
	if s == "" {
		return "template"
	}
	return s
}
