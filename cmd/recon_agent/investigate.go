package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/trial-reconciler/internal/budget"
	"github.com/jonathan/trial-reconciler/internal/compliance"
	"github.com/jonathan/trial-reconciler/internal/observability"
	"github.com/jonathan/trial-reconciler/internal/recon"
	"github.com/jonathan/trial-reconciler/internal/report"
)

var (
	invConfigPath string
	invDataDir    string
	invSummarizer string
	invSeed       int64
	invVerbose    bool
)

var investigateCmd = &cobra.Command{
	Use:   "investigate",
	Short: "Run a full reconciliation investigation end-to-end",
	Long: `Runs the entire pipeline synchronously: data ingestion -> reconciliation ->
contract compliance -> budget analysis -> report generation. The executive
report is printed to stdout.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runInvestigate,
}

func init() {
	investigateCmd.Flags().StringVar(&invConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	investigateCmd.Flags().StringVar(&invDataDir, "data-dir", "", "Directory of JSON table files (omit to use the seeded generator)")
	investigateCmd.Flags().StringVar(&invSummarizer, "summarizer", "", "Narrative backend: gemini or template")
	investigateCmd.Flags().Int64Var(&invSeed, "seed", 0, "Generator seed (ignored with --data-dir)")
	investigateCmd.Flags().BoolVarP(&invVerbose, "verbose", "v", false, "Print dataset and findings detail before the report")
	rootCmd.AddCommand(investigateCmd)
}

func runInvestigate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(invConfigPath)
	if err != nil {
		return err
	}
	if invDataDir != "" {
		cfg.DataDir = invDataDir
	}
	if invSummarizer != "" {
		cfg.Summarizer = invSummarizer
	}
	if invSeed != 0 {
		cfg.Seed = invSeed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	summarizer, closeSummarizer, err := buildSummarizer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSummarizer()

	ds, err := buildSource(cfg).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	if invVerbose {
		printer.PrintDataset(ds)
	}

	opts := cfg.Options()
	reconFindings := recon.Reconcile(ds.Visits, ds.Payments, opts.TopSites)
	complianceFindings, err := compliance.Check(ds.Contracts, ds.Payments, opts.MaterialityThreshold, opts.TopSites)
	if err != nil {
		return fmt.Errorf("contract compliance check failed: %w", err)
	}
	budgetFindings := budget.Analyze(ds.Budgets, ds.Payments, ds.Visits, opts.BudgetVarianceThresholdPct)

	findings := report.Aggregate(reconFindings, complianceFindings, budgetFindings)
	if invVerbose {
		printer.PrintFindings(findings)
	}

	narrativeText, err := summarizer.Summarize(ctx, findings)
	if err != nil {
		return fmt.Errorf("narrative generation failed: %w", err)
	}

	fmt.Println(report.Render(findings, narrativeText))
	return nil
}
