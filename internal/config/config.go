// Package config loads and validates application configuration from YAML files
// and environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Intent        IntentConfig        `yaml:"intent"`
	Output        OutputConfig        `yaml:"output"`
	Schema        SchemaConfig        `yaml:"schema"`
	Store         StoreConfig         `yaml:"store"`
	Theme         ThemeConfig         `yaml:"theme"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// IntentConfig describes how free-text descriptions are turned into raw
// site structures.
type IntentConfig struct {
	// Provider selects the parser: "openai" or "heuristic".
	Provider  string        `yaml:"provider"`
	APIKeyEnv string        `yaml:"api_key_env"`
	BaseURL   string        `yaml:"base_url"`
	Models    []string      `yaml:"models"`
	Timeout   time.Duration `yaml:"timeout"`

	// Fallback runs the heuristic parser when the provider fails.
	Fallback bool `yaml:"fallback"`
}

// OutputConfig describes where generated artifacts are written.
type OutputConfig struct {
	Directory   string `yaml:"directory"`
	TemplateExt string `yaml:"template_ext"`
	WriteReport bool   `yaml:"write_report"`
}

// SchemaConfig describes document validation settings.
type SchemaConfig struct {
	// XSDPath points at a provisioning schema file. Empty disables the
	// strict pass; the structural pass always runs.
	XSDPath string `yaml:"xsd_path"`

	// FailOnDefects makes the run exit non-zero when validation finds
	// defects.
	FailOnDefects bool `yaml:"fail_on_defects"`
}

// StoreConfig describes run history persistence.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ThemeConfig describes theme derivation settings.
type ThemeConfig struct {
	// DefaultSeed is used when the input carries a theme section with no
	// usable seed color and no matching hint.
	DefaultSeed string `yaml:"default_seed"`
}

// ObservabilityConfig describes logging settings.
type ObservabilityConfig struct {
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Intent: IntentConfig{
			Provider:  "openai",
			APIKeyEnv: "OPENAI_API_KEY",
			Timeout:   60 * time.Second,
			Fallback:  true,
		},
		Output: OutputConfig{
			Directory:   ".",
			TemplateExt: ".xml",
			WriteReport: true,
		},
		Store: StoreConfig{
			Path: "sitewright.db",
		},
		Theme: ThemeConfig{
			DefaultSeed: "#0078d4",
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Load reads a YAML config file, applies environment variable overrides,
// and validates required fields. An empty path yields the defaults with
// overrides applied.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required fields are present and valid.
func (c *Config) Validate() error {
	var errs []string

	switch c.Intent.Provider {
	case "openai", "heuristic":
	default:
		errs = append(errs, fmt.Sprintf("intent.provider %q must be openai or heuristic", c.Intent.Provider))
	}
	if c.Intent.Provider == "openai" && c.Intent.APIKeyEnv == "" {
		errs = append(errs, "intent.api_key_env is required for the openai provider")
	}
	if c.Intent.Timeout <= 0 {
		errs = append(errs, "intent.timeout must be positive")
	}
	if c.Output.Directory == "" {
		errs = append(errs, "output.directory is required")
	}
	if c.Store.Enabled && c.Store.Path == "" {
		errs = append(errs, "store.path is required when the store is enabled")
	}
	if seed := c.Theme.DefaultSeed; seed != "" && !looksLikeHex(seed) {
		errs = append(errs, fmt.Sprintf("theme.default_seed %q is not a hex color", seed))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func looksLikeHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// applyEnvOverrides reads SITEWRIGHT_* environment variables and overrides
// config values. Only the most commonly overridden fields are supported.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SITEWRIGHT_INTENT_PROVIDER"); v != "" {
		cfg.Intent.Provider = v
	}
	if v := os.Getenv("SITEWRIGHT_INTENT_BASE_URL"); v != "" {
		cfg.Intent.BaseURL = v
	}
	if v := os.Getenv("SITEWRIGHT_OUTPUT_DIRECTORY"); v != "" {
		cfg.Output.Directory = v
	}
	if v := os.Getenv("SITEWRIGHT_SCHEMA_XSD_PATH"); v != "" {
		cfg.Schema.XSDPath = v
	}
	if v := os.Getenv("SITEWRIGHT_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SITEWRIGHT_OBSERVABILITY_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
}
