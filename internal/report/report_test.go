package report

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/trial-reconciler/internal/types"
)

func TestUSD(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		want   string
	}{
		{"zero", decimal.Zero, "$0.00"},
		{"small", decimal.NewFromFloat(5.5), "$5.50"},
		{"thousands", decimal.NewFromInt(1500), "$1,500.00"},
		{"millions", decimal.NewFromFloat(1234567.89), "$1,234,567.89"},
		{"negative", decimal.NewFromInt(-3000), "-$3,000.00"},
		{"exact_thousand", decimal.NewFromInt(1000), "$1,000.00"},
		{"rounding", decimal.NewFromFloat(99.999), "$100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, USD(tt.amount))
		})
	}
}

func TestAggregate_ExposureExcludesViolationImpact(t *testing.T) {
	r := &types.ReconciliationFindings{
		UnpaidCount:         2,
		UnpaidEstimate:      decimal.NewFromInt(4000),
		DisallowedCount:     1,
		DisallowedAmount:    decimal.NewFromInt(1500),
		DuplicateGroupCount: 1,
		DuplicateExcess:     decimal.NewFromInt(3000),
	}
	c := &types.ComplianceFindings{
		ViolationCount: 5,
		NetImpact:      decimal.NewFromInt(700),
	}
	b := &types.BudgetFindings{
		OverBudget: []types.SiteBudget{{SiteID: "SITE_001"}, {SiteID: "SITE_002"}},
	}

	f := Aggregate(r, c, b)

	assert.True(t, f.TotalFinancialExposure.Equal(decimal.NewFromInt(8500)), "exposure %s", f.TotalFinancialExposure)
	assert.True(t, f.NetViolationImpact.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, 2, f.OverBudgetSiteCount)
	assert.Same(t, r, f.Reconciliation)
	assert.Same(t, c, f.Compliance)
	assert.Same(t, b, f.Budget)
}

func TestAggregate_DuplicatePairScenario(t *testing.T) {
	// A single $3,000 duplicate pair contributes its excess, $3,000, to the
	// total exposure.
	r := &types.ReconciliationFindings{
		DuplicateGroupCount: 1,
		DuplicateExcess:     decimal.NewFromInt(3000),
	}

	f := Aggregate(r, &types.ComplianceFindings{}, &types.BudgetFindings{})
	assert.True(t, f.TotalFinancialExposure.Equal(decimal.NewFromInt(3000)))
}

func TestAggregate_NilEngineOutputs(t *testing.T) {
	f := Aggregate(nil, nil, nil)
	assert.True(t, f.TotalFinancialExposure.IsZero())
	assert.Nil(t, f.Reconciliation)
}

func TestRenderReconciliation(t *testing.T) {
	f := &types.ReconciliationFindings{
		UnpaidCount:      3,
		UnpaidEstimate:   decimal.NewFromInt(6000),
		MeanPayment:      decimal.NewFromInt(2000),
		UnmatchedCount:   1,
		UnmatchedAmount:  decimal.NewFromInt(500),
		DisallowedCount:  2,
		DisallowedAmount: decimal.NewFromInt(3000),
		UnpaidTopSites:   []types.SiteAmount{{SiteID: "SITE_007", Count: 3}},
	}

	out := RenderReconciliation(f)

	assert.Contains(t, out, "RECONCILIATION COMPLETE")
	assert.Contains(t, out, "UNPAID VISITS: 3")
	assert.Contains(t, out, "$6,000.00")
	assert.Contains(t, out, "SITE_007")
	assert.Contains(t, out, "SCREEN FAILURE PAYMENTS: 2")
}

func TestRenderCompliance_UnderchargesShownAsPositiveAmounts(t *testing.T) {
	f := &types.ComplianceFindings{
		PaymentsChecked:  100,
		ViolationCount:   10,
		UnderchargeCount: 4,
		UnderchargeTotal: decimal.NewFromInt(-800),
		UnderchargeMean:  decimal.NewFromInt(-200),
		NetImpact:        decimal.NewFromInt(-800),
	}

	out := RenderCompliance(f)

	assert.Contains(t, out, "Contract Violations Found: 10 (10.0%)")
	assert.Contains(t, out, "Total Underpaid: $800.00")
	assert.Contains(t, out, "Average Undercharge: $200.00")
	// Net impact keeps its sign.
	assert.Contains(t, out, "NET FINANCIAL IMPACT: -$800.00")
}

func TestRenderCompliance_FeeErrorsNoted(t *testing.T) {
	f := &types.ComplianceFindings{
		FeeErrors: []types.FeeError{{PaymentID: "PAY-00001", Reason: "contracted fee is zero"}},
	}
	out := RenderCompliance(f)
	assert.Contains(t, out, "DATA ERRORS: 1 payments")
}

func TestRenderBudget_ListsBounded(t *testing.T) {
	f := &types.BudgetFindings{
		OverBudget: []types.SiteBudget{
			{SiteID: "SITE_001", Variance: decimal.NewFromInt(5000), VariancePct: 50, RatioDefined: true},
			{SiteID: "SITE_002", Variance: decimal.NewFromInt(4000), VariancePct: 40, RatioDefined: true},
			{SiteID: "SITE_003", Variance: decimal.NewFromInt(3000), VariancePct: 30, RatioDefined: true},
		},
	}

	out := RenderBudget(f, 2, 3)

	assert.Contains(t, out, "Over Budget Sites (3)")
	assert.Contains(t, out, "SITE_001")
	assert.Contains(t, out, "SITE_002")
	assert.NotContains(t, out, "- Site SITE_003")
}

func TestRenderBudget_UnbudgetedSiteLine(t *testing.T) {
	f := &types.BudgetFindings{
		OverBudget: []types.SiteBudget{
			{SiteID: "SITE_009", ActualSpend: decimal.NewFromInt(5000), Unbudgeted: true},
		},
	}
	out := RenderBudget(f, 5, 3)
	assert.Contains(t, out, "Site SITE_009: $5,000.00 spent with no budget allocation")
}

func TestRender_EmbedsNarrativeVerbatim(t *testing.T) {
	f := Aggregate(&types.ReconciliationFindings{}, &types.ComplianceFindings{}, &types.BudgetFindings{})
	narrative := "The trial shows material payment discrepancies at three sites."

	out := Render(f, narrative)

	assert.Contains(t, out, "CLINICAL TRIAL PAYMENT RECONCILIATION - EXECUTIVE REPORT")
	assert.Contains(t, out, "KEY METRICS")
	assert.Contains(t, out, narrative)
	assert.Contains(t, out, "RECOMMENDED ACTIONS (Priority Order)")

	// Actions appear in priority order.
	idx1 := strings.Index(out, "1. Investigate")
	idx5 := strings.Index(out, "5. Audit")
	require.True(t, idx1 >= 0 && idx5 >= 0)
	assert.Less(t, idx1, idx5)
}

func TestRender_NoAnalysisSectionWithoutNarrative(t *testing.T) {
	f := Aggregate(&types.ReconciliationFindings{}, &types.ComplianceFindings{}, &types.BudgetFindings{})
	out := Render(f, "")
	assert.NotContains(t, out, "ANALYSIS\n")
}
