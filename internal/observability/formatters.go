// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/trial-reconciler/internal/report"
	"github.com/jonathan/trial-reconciler/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDataset outputs a human-readable overview of the loaded tables.
func (p *Printer) PrintDataset(ds *types.Dataset) {
	if ds == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Contracts: %d\n", len(ds.Contracts)))
	sb.WriteString(fmt.Sprintf("Visits:    %d\n", len(ds.Visits)))
	sb.WriteString(fmt.Sprintf("Payments:  %d\n", len(ds.Payments)))
	sb.WriteString(fmt.Sprintf("Budgets:   %d", len(ds.Budgets)))
	p.printBox("Dataset", sb.String())
}

// PrintFindings outputs the aggregated findings summary.
func (p *Printer) PrintFindings(f *types.Findings) {
	if f == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total Exposure:    %s\n", report.USD(f.TotalFinancialExposure)))
	sb.WriteString(fmt.Sprintf("Unpaid Visits:     %d (%s)\n", f.UnpaidCount, report.USD(f.UnpaidAmount)))
	sb.WriteString(fmt.Sprintf("Duplicates:        %d (%s)\n", f.DuplicateCount, report.USD(f.DuplicateAmountEstimate)))
	sb.WriteString(fmt.Sprintf("Screen Fail Paid:  %d (%s)\n", f.DisallowedCount, report.USD(f.DisallowedAmount)))
	sb.WriteString(fmt.Sprintf("Rate Violations:   %d (net %s)\n", f.ViolationCount, report.USD(f.NetViolationImpact)))
	sb.WriteString(fmt.Sprintf("Over Budget Sites: %d", f.OverBudgetSiteCount))
	p.printBox("Findings", sb.String())
}

// PrintStages outputs the per-stage progress of an investigation.
func (p *Printer) PrintStages(inv *types.Investigation) {
	if inv == nil {
		return
	}
	var sb strings.Builder
	shown := 0
	for _, stage := range inv.Stages {
		if shown >= maxItemsToShow {
			break
		}
		sb.WriteString(fmt.Sprintf("%-24s %s", stage.StageName, stage.Status))
		if stage.ErrorMessage != "" {
			sb.WriteString(" (" + stage.ErrorMessage + ")")
		}
		sb.WriteString("\n")
		shown++
	}
	p.printBox(fmt.Sprintf("Investigation %s", inv.Status), strings.TrimRight(sb.String(), "\n"))
}
