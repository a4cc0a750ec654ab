package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/trial-reconciler/internal/db"
	"github.com/jonathan/trial-reconciler/internal/orchestrator"
	"github.com/jonathan/trial-reconciler/internal/server"
)

var (
	serveConfigPath string
	servePort       int
	serveDataDir    string
	serveSummarizer string
	serveSeed       int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for launching
reconciliation investigations and polling their progress.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "Directory of JSON table files (omit to use the seeded generator)")
	serveCmd.Flags().StringVar(&serveSummarizer, "summarizer", "", "Narrative backend: gemini or template")
	serveCmd.Flags().Int64Var(&serveSeed, "seed", 0, "Generator seed (ignored with --data-dir)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveDataDir != "" {
		cfg.DataDir = serveDataDir
	}
	if serveSummarizer != "" {
		cfg.Summarizer = serveSummarizer
	}
	if serveSeed != 0 {
		cfg.Seed = serveSeed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	summarizer, closeSummarizer, err := buildSummarizer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSummarizer()

	// Database is optional: without DATABASE_URL investigations live only
	// in memory.
	var store orchestrator.Store
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: database unavailable, continuing without persistence: %v", err)
		} else {
			defer database.Close()
			if err := database.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to ensure database schema: %w", err)
			}
			store = database
		}
	}

	orch := orchestrator.New(buildSource(cfg), summarizer, store, cfg.Options())
	srv := server.New(server.Config{Port: cfg.Port}, orch)
	return srv.Start()
}
