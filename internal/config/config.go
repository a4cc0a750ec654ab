// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/jonathan/trial-reconciler/internal/orchestrator"
)

// Summarizer backends.
const (
	SummarizerGemini   = "gemini"
	SummarizerTemplate = "template"
)

// Config represents the service configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must
// be provided via CLI flags or environment.
type Config struct {
	// Analysis thresholds
	MaterialityThreshold       float64 `json:"materiality_threshold,omitempty"`         // Minimum variance treated as a violation (USD)
	BudgetVarianceThresholdPct float64 `json:"budget_variance_threshold_pct,omitempty"` // Over/under budget classification threshold
	TopSites                   int     `json:"top_sites,omitempty"`                     // Sites listed per category ranking
	OverBudgetTop              int     `json:"over_budget_top,omitempty"`               // Over-budget sites listed in the report
	UnderBudgetTop             int     `json:"under_budget_top,omitempty"`              // Under-budget sites listed in the report

	// Progress tracking
	PreviewChars int `json:"preview_chars,omitempty"` // Stored output preview cap per stage task

	// Narrative generation
	Summarizer       string `json:"summarizer,omitempty"`        // "gemini" or "template"
	Model            string `json:"model,omitempty"`             // Gemini model name
	NarrativeRetries int    `json:"narrative_retries,omitempty"` // Extra attempts after a failed summarization
	APIKey           string `json:"api_key,omitempty"`           // Gemini API key

	// Data source
	Seed    int64  `json:"seed,omitempty"`     // Generator seed
	DataDir string `json:"data_dir,omitempty"` // Directory of JSON table files; empty uses the generator

	// Infrastructure
	DatabaseURL string `json:"database_url,omitempty"` // Optional PostgreSQL URL for investigation persistence
	Port        int    `json:"port,omitempty"`         // HTTP listen port
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		MaterialityThreshold:       1.0,
		BudgetVarianceThresholdPct: 20.0,
		TopSites:                   3,
		OverBudgetTop:              5,
		UnderBudgetTop:             3,
		PreviewChars:               500,
		Summarizer:                 SummarizerGemini,
		NarrativeRetries:           2,
		Seed:                       42,
		Port:                       8080,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.MaterialityThreshold < 0 {
		return fmt.Errorf("config error: 'materiality_threshold' must be non-negative")
	}
	if c.BudgetVarianceThresholdPct < 0 {
		return fmt.Errorf("config error: 'budget_variance_threshold_pct' must be non-negative")
	}
	if c.TopSites < 0 || c.OverBudgetTop < 0 || c.UnderBudgetTop < 0 {
		return fmt.Errorf("config error: site ranking limits must be non-negative")
	}
	if c.PreviewChars < 0 {
		return fmt.Errorf("config error: 'preview_chars' must be non-negative")
	}
	if c.Summarizer != "" && c.Summarizer != SummarizerGemini && c.Summarizer != SummarizerTemplate {
		return fmt.Errorf("config error: 'summarizer' must be %q or %q", SummarizerGemini, SummarizerTemplate)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be a valid port number")
	}
	if c.DataDir != "" {
		if _, err := os.Stat(c.DataDir); os.IsNotExist(err) {
			return fmt.Errorf("config error: data directory not found: %s", c.DataDir)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. CLI flags and environment always win over the file.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.MaterialityThreshold == 0 {
		result.MaterialityThreshold = defaults.MaterialityThreshold
	}
	if result.BudgetVarianceThresholdPct == 0 {
		result.BudgetVarianceThresholdPct = defaults.BudgetVarianceThresholdPct
	}
	if result.TopSites == 0 {
		result.TopSites = defaults.TopSites
	}
	if result.OverBudgetTop == 0 {
		result.OverBudgetTop = defaults.OverBudgetTop
	}
	if result.UnderBudgetTop == 0 {
		result.UnderBudgetTop = defaults.UnderBudgetTop
	}
	if result.PreviewChars == 0 {
		result.PreviewChars = defaults.PreviewChars
	}
	if result.Summarizer == "" {
		result.Summarizer = defaults.Summarizer
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.NarrativeRetries == 0 {
		result.NarrativeRetries = defaults.NarrativeRetries
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Seed == 0 {
		result.Seed = defaults.Seed
	}
	if result.DataDir == "" {
		result.DataDir = defaults.DataDir
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	return result
}

// Options converts the configuration into orchestrator options.
func (c *Config) Options() orchestrator.Options {
	return orchestrator.Options{
		MaterialityThreshold:       decimal.NewFromFloat(c.MaterialityThreshold),
		BudgetVarianceThresholdPct: c.BudgetVarianceThresholdPct,
		TopSites:                   c.TopSites,
		OverBudgetTop:              c.OverBudgetTop,
		UnderBudgetTop:             c.UnderBudgetTop,
		PreviewChars:               c.PreviewChars,
		NarrativeRetries:           c.NarrativeRetries,
	}
}
