package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/trial-reconciler/internal/report"
	"github.com/jonathan/trial-reconciler/internal/types"
)

// TemplateSummarizer renders a deterministic narrative directly from the
// findings, with no external calls. It stands in for the LLM in tests and
// offline runs.
type TemplateSummarizer struct{}

// Summarize never fails and always produces the same text for the same
// findings.
func (TemplateSummarizer) Summarize(_ context.Context, f *types.Findings) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "This automated reconciliation identified %s of total financial exposure across three discrepancy categories. ",
		report.USD(f.TotalFinancialExposure))
	fmt.Fprintf(&sb, "%d completed visits remain unpaid (an estimated %s owed to sites), ",
		f.UnpaidCount, report.USD(f.UnpaidAmount))
	fmt.Fprintf(&sb, "%d payment keys were paid more than once (about %s in excess), ",
		f.DuplicateCount, report.USD(f.DuplicateAmountEstimate))
	fmt.Fprintf(&sb, "and %d payments were made for screen failures in violation of protocol (%s).\n\n",
		f.DisallowedCount, report.USD(f.DisallowedAmount))
	fmt.Fprintf(&sb, "Separately, %d payments deviated from contracted rates beyond the materiality threshold, ",
		f.ViolationCount)
	fmt.Fprintf(&sb, "for a net impact of %s (%s overpaid, %s underpaid). ",
		report.USD(f.NetViolationImpact), report.USD(f.OverchargeTotal), report.USD(f.UnderchargeTotal.Abs()))
	fmt.Fprintf(&sb, "%d sites are running over their allocated budgets and warrant enrollment and billing review.",
		f.OverBudgetSiteCount)
	return sb.String(), nil
}
