package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jonathan/trial-reconciler/internal/types"
)

const divider = "════════════════════════════════════════════════════════════════"

// USD formats a decimal amount as a dollar string with thousands separators.
func USD(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")
	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s.%s", sign, sb.String(), fracPart)
}

func siteList(rows []types.SiteAmount) string {
	if len(rows) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, fmt.Sprintf("%s (%d, %s)", row.SiteID, row.Count, USD(row.Amount)))
	}
	return strings.Join(parts, ", ")
}

// RenderReconciliation renders the reconciliation stage output.
func RenderReconciliation(f *types.ReconciliationFindings) string {
	var sb strings.Builder
	sb.WriteString("RECONCILIATION COMPLETE\n\n")
	sb.WriteString("Critical Discrepancies Found:\n\n")
	fmt.Fprintf(&sb, "1. UNPAID VISITS: %d completed visits with no matching payment\n", f.UnpaidCount)
	fmt.Fprintf(&sb, "   - Estimated financial impact: %s (at mean payment %s per visit)\n", USD(f.UnpaidEstimate), USD(f.MeanPayment))
	fmt.Fprintf(&sb, "   - Top affected sites: %s\n\n", siteList(f.UnpaidTopSites))
	fmt.Fprintf(&sb, "2. UNMATCHED PAYMENTS: %d payments with no corresponding visit record\n", f.UnmatchedCount)
	fmt.Fprintf(&sb, "   - Total amount: %s\n", USD(f.UnmatchedAmount))
	fmt.Fprintf(&sb, "   - Top affected sites: %s\n\n", siteList(f.UnmatchedTopSites))
	fmt.Fprintf(&sb, "3. SCREEN FAILURE PAYMENTS: %d payments made for screen failures (protocol violation)\n", f.DisallowedCount)
	fmt.Fprintf(&sb, "   - Total overpaid: %s\n", USD(f.DisallowedAmount))
	fmt.Fprintf(&sb, "   - Top affected sites: %s\n\n", siteList(f.DisallowedTopSites))
	fmt.Fprintf(&sb, "4. DUPLICATE PAYMENTS: %d duplicated payment keys\n", f.DuplicateGroupCount)
	fmt.Fprintf(&sb, "   - Estimated excess amount: %s\n", USD(f.DuplicateExcess))
	fmt.Fprintf(&sb, "   - Top affected sites: %s\n", siteList(f.DuplicateTopSites))
	return sb.String()
}

// RenderCompliance renders the contract compliance stage output.
func RenderCompliance(f *types.ComplianceFindings) string {
	var sb strings.Builder
	sb.WriteString("CONTRACT COMPLIANCE CHECK COMPLETE\n\n")
	fmt.Fprintf(&sb, "Total Payments Checked: %d\n", f.PaymentsChecked)
	rate := 0.0
	if f.PaymentsChecked > 0 {
		rate = float64(f.ViolationCount) / float64(f.PaymentsChecked) * 100
	}
	fmt.Fprintf(&sb, "Contract Violations Found: %d (%.1f%%)\n\n", f.ViolationCount, rate)
	sb.WriteString("OVERCHARGES (Site Billed Too Much):\n")
	fmt.Fprintf(&sb, "- Count: %d\n", f.OverchargeCount)
	fmt.Fprintf(&sb, "- Total Overpaid: %s\n", USD(f.OverchargeTotal))
	fmt.Fprintf(&sb, "- Average Overcharge: %s\n", USD(f.OverchargeMean))
	fmt.Fprintf(&sb, "- Top offending sites: %s\n\n", siteList(f.TopOvercharged))
	sb.WriteString("UNDERCHARGES (Site Billed Too Little):\n")
	fmt.Fprintf(&sb, "- Count: %d\n", f.UnderchargeCount)
	fmt.Fprintf(&sb, "- Total Underpaid: %s\n", USD(f.UnderchargeTotal.Abs()))
	fmt.Fprintf(&sb, "- Average Undercharge: %s\n", USD(f.UnderchargeMean.Abs()))
	fmt.Fprintf(&sb, "- Top affected sites: %s\n\n", siteList(f.TopUndercharged))
	fmt.Fprintf(&sb, "NET FINANCIAL IMPACT: %s (positive = we overpaid)\n", USD(f.NetImpact))
	if len(f.FeeErrors) > 0 {
		fmt.Fprintf(&sb, "\nDATA ERRORS: %d payments with undefined expected fees (reported separately, excluded from ratios)\n", len(f.FeeErrors))
	}
	return sb.String()
}

// RenderBudget renders the budget analysis stage output. overTop and
// underTop bound the listed sites.
func RenderBudget(f *types.BudgetFindings, overTop, underTop int) string {
	var sb strings.Builder
	sb.WriteString("BUDGET ANALYSIS COMPLETE\n\n")
	sb.WriteString("Overall Budget Health:\n")
	fmt.Fprintf(&sb, "- Total Allocated: %s\n", USD(f.TotalAllocated))
	fmt.Fprintf(&sb, "- Total Spent: %s\n", USD(f.TotalSpent))
	fmt.Fprintf(&sb, "- Overall Variance: %s\n", USD(f.TotalVariance))
	fmt.Fprintf(&sb, "- Average Site Utilization: %.1f%%\n\n", f.MeanUtilizationPct)

	fmt.Fprintf(&sb, "CRITICAL ALERTS - Over Budget Sites (%d):\n", len(f.OverBudget))
	for i, site := range f.OverBudget {
		if i >= overTop {
			break
		}
		if site.RatioDefined {
			fmt.Fprintf(&sb, "- Site %s: %s over (%.1f%% over budget)\n", site.SiteID, USD(site.Variance), site.VariancePct)
		} else {
			fmt.Fprintf(&sb, "- Site %s: %s spent with no budget allocation\n", site.SiteID, USD(site.ActualSpend))
		}
	}

	fmt.Fprintf(&sb, "\nUnder-Spending Sites (%d):\n", len(f.UnderBudget))
	for i, site := range f.UnderBudget {
		if i >= underTop {
			break
		}
		fmt.Fprintf(&sb, "- Site %s: %s under (%.1f%% under budget)\n", site.SiteID, USD(site.Variance.Abs()), -site.VariancePct)
	}

	sb.WriteString("\nCost Efficiency Metrics:\n")
	fmt.Fprintf(&sb, "- Average Cost Per Patient: %s\n", USD(f.CostPerPatientMean))
	fmt.Fprintf(&sb, "- Highest Cost Site: %s per patient\n", USD(f.CostPerPatientMax))
	fmt.Fprintf(&sb, "- Lowest Cost Site: %s per patient\n", USD(f.CostPerPatientMin))
	return sb.String()
}

// Render produces the final executive report, embedding the narrative text
// from the summarization collaborator verbatim.
func Render(f *types.Findings, narrative string) string {
	var sb strings.Builder
	sb.WriteString(divider + "\n")
	sb.WriteString("CLINICAL TRIAL PAYMENT RECONCILIATION - EXECUTIVE REPORT\n")
	sb.WriteString(divider + "\n\n")

	sb.WriteString("KEY METRICS\n-----------\n")
	fmt.Fprintf(&sb, "Total Financial Exposure: %s\n", USD(f.TotalFinancialExposure))
	fmt.Fprintf(&sb, "Unpaid Visits: %d (%s)\n", f.UnpaidCount, USD(f.UnpaidAmount))
	fmt.Fprintf(&sb, "Duplicate Payments: %d (%s excess)\n", f.DuplicateCount, USD(f.DuplicateAmountEstimate))
	fmt.Fprintf(&sb, "Screen Failure Payments: %d (%s)\n", f.DisallowedCount, USD(f.DisallowedAmount))
	fmt.Fprintf(&sb, "Contract Violations: %d (net impact %s, reported separately)\n", f.ViolationCount, USD(f.NetViolationImpact))
	fmt.Fprintf(&sb, "Sites Over Budget: %d\n\n", f.OverBudgetSiteCount)

	if narrative != "" {
		sb.WriteString("ANALYSIS\n--------\n")
		sb.WriteString(strings.TrimSpace(narrative))
		sb.WriteString("\n\n")
	}

	sb.WriteString("RECOMMENDED ACTIONS (Priority Order)\n")
	sb.WriteString(divider + "\n")
	fmt.Fprintf(&sb, "1. Investigate %d duplicate payment groups and initiate recovery\n", f.DuplicateCount)
	fmt.Fprintf(&sb, "2. Review %d screen failure payments for protocol compliance\n", f.DisallowedCount)
	fmt.Fprintf(&sb, "3. Contact %d over-budget sites for enrollment forecast updates\n", f.OverBudgetSiteCount)
	fmt.Fprintf(&sb, "4. Process %d unpaid visit invoices to maintain site relationships\n", f.UnpaidCount)
	fmt.Fprintf(&sb, "5. Audit %d contract rate violations\n", f.ViolationCount)
	sb.WriteString(divider + "\n")
	return sb.String()
}
