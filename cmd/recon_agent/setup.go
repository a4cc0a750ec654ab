package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/trial-reconciler/internal/config"
	"github.com/jonathan/trial-reconciler/internal/dataset"
	"github.com/jonathan/trial-reconciler/internal/narrative"
	"github.com/jonathan/trial-reconciler/internal/orchestrator"
)

// loadConfig merges an optional config file with defaults and environment
// variables. CLI flags are applied by the callers afterwards.
func loadConfig(path string) (config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildSource selects the dataset source: a directory of JSON table files
// when configured, otherwise the seeded generator.
func buildSource(cfg config.Config) orchestrator.Source {
	if cfg.DataDir != "" {
		return &dataset.FileSource{Dir: cfg.DataDir}
	}
	return dataset.NewGenerator(cfg.Seed)
}

// buildSummarizer selects the narrative backend. The Gemini backend
// requires an API key; the template backend is deterministic and offline.
func buildSummarizer(ctx context.Context, cfg config.Config) (narrative.Summarizer, func(), error) {
	switch cfg.Summarizer {
	case config.SummarizerTemplate:
		return narrative.TemplateSummarizer{}, func() {}, nil
	default:
		if cfg.APIKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable is required (or use --summarizer template)")
		}
		s, err := narrative.NewGeminiSummarizer(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
}
