package config

import (
	"testing"
	"time"
)

func TestLoad_valid(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Intent.Provider != "heuristic" {
		t.Errorf("Intent.Provider = %q, want heuristic", cfg.Intent.Provider)
	}
	if cfg.Intent.Timeout != 30*time.Second {
		t.Errorf("Intent.Timeout = %v, want 30s", cfg.Intent.Timeout)
	}
	if cfg.Output.Directory != "out" {
		t.Errorf("Output.Directory = %q, want out", cfg.Output.Directory)
	}
	if cfg.Output.WriteReport {
		t.Error("Output.WriteReport = true, want false")
	}
	if cfg.Schema.XSDPath != "schemas/provisioning.xsd" {
		t.Errorf("Schema.XSDPath = %q", cfg.Schema.XSDPath)
	}
	if !cfg.Schema.FailOnDefects {
		t.Error("Schema.FailOnDefects = false, want true")
	}
	if !cfg.Store.Enabled {
		t.Error("Store.Enabled = false, want true")
	}
	if cfg.Store.Path != "runs/history.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Theme.DefaultSeed != "#038387" {
		t.Errorf("Theme.DefaultSeed = %q, want #038387", cfg.Theme.DefaultSeed)
	}
}

func TestLoad_missing_file(t *testing.T) {
	_, err := Load("testdata/nonexistent.yaml")
	if err == nil {
		t.Fatal("Load() with missing file should return error")
	}
}

func TestLoad_empty_path_uses_defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Intent.Provider != "openai" {
		t.Errorf("Intent.Provider = %q, want openai", cfg.Intent.Provider)
	}
}

func TestLoad_bad_provider(t *testing.T) {
	_, err := Load("testdata/bad_provider.yaml")
	if err == nil {
		t.Fatal("Load() with unknown provider should return error")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Intent.Provider != "openai" {
		t.Errorf("default Intent.Provider = %q, want openai", cfg.Intent.Provider)
	}
	if cfg.Intent.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("default Intent.APIKeyEnv = %q", cfg.Intent.APIKeyEnv)
	}
	if !cfg.Intent.Fallback {
		t.Error("default Intent.Fallback = false, want true")
	}
	if cfg.Theme.DefaultSeed != "#0078d4" {
		t.Errorf("default Theme.DefaultSeed = %q, want #0078d4", cfg.Theme.DefaultSeed)
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("default LogLevel = %q, want info", cfg.Observability.LogLevel)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SITEWRIGHT_INTENT_PROVIDER", "heuristic")
	t.Setenv("SITEWRIGHT_OUTPUT_DIRECTORY", "/tmp/templates")
	t.Setenv("SITEWRIGHT_OBSERVABILITY_LOG_LEVEL", "error")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Intent.Provider != "heuristic" {
		t.Errorf("Intent.Provider = %q, want heuristic (env override)", cfg.Intent.Provider)
	}
	if cfg.Output.Directory != "/tmp/templates" {
		t.Errorf("Output.Directory = %q, want env override", cfg.Output.Directory)
	}
	if cfg.Observability.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error (env override)", cfg.Observability.LogLevel)
	}
}

func TestLoad_env_priority_over_file(t *testing.T) {
	t.Setenv("SITEWRIGHT_OUTPUT_DIRECTORY", "elsewhere")

	cfg, err := Load("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output.Directory != "elsewhere" {
		t.Errorf("Output.Directory = %q, want elsewhere (env override beats file)", cfg.Output.Directory)
	}
}

func TestValidate_bad_seed(t *testing.T) {
	cfg := Defaults()
	cfg.Theme.DefaultSeed = "bluish"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with non-hex seed should return error")
	}
}

func TestValidate_zero_timeout(t *testing.T) {
	cfg := Defaults()
	cfg.Intent.Timeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() with zero timeout should return error")
	}
}
