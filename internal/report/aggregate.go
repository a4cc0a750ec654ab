// Package report merges the engine outputs into the fixed-shape findings
// summary and renders the executive report text.
package report

import (
	"github.com/jonathan/trial-reconciler/internal/types"
)

// Aggregate merges the three engine outputs into the fixed field set handed
// to the narrative collaborator. Total financial exposure is the sum of the
// unpaid estimate, the disallowed amount, and the duplicate excess; the
// contract-violation net impact is reported separately because an
// overcharge is not recoverable exposure in the same sense.
func Aggregate(r *types.ReconciliationFindings, c *types.ComplianceFindings, b *types.BudgetFindings) *types.Findings {
	f := &types.Findings{
		Reconciliation: r,
		Compliance:     c,
		Budget:         b,
	}

	if r != nil {
		f.UnpaidCount = r.UnpaidCount
		f.UnpaidAmount = r.UnpaidEstimate
		f.DuplicateCount = r.DuplicateGroupCount
		f.DuplicateAmountEstimate = r.DuplicateExcess
		f.DisallowedCount = r.DisallowedCount
		f.DisallowedAmount = r.DisallowedAmount
		f.UnpaidTopSites = r.UnpaidTopSites
		f.DuplicateTopSites = r.DuplicateTopSites
		f.DisallowedTopSites = r.DisallowedTopSites
	}
	if c != nil {
		f.ViolationCount = c.ViolationCount
		f.OverchargeTotal = c.OverchargeTotal
		f.UnderchargeTotal = c.UnderchargeTotal
		f.NetViolationImpact = c.NetImpact
		f.TopOvercharged = c.TopOvercharged
		f.TopUndercharged = c.TopUndercharged
	}
	if b != nil {
		f.OverBudgetSiteCount = len(b.OverBudget)
	}

	f.TotalFinancialExposure = f.UnpaidAmount.Add(f.DisallowedAmount).Add(f.DuplicateAmountEstimate)
	return f
}
