package budget

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/trial-reconciler/internal/types"
)

func budgetRow(site string, allocated float64) types.Budget {
	return types.Budget{SiteID: site, AllocatedAmount: decimal.NewFromFloat(allocated), Currency: "USD"}
}

func payment(site string, amount float64) types.Payment {
	return types.Payment{
		PaymentID: "PAY-00001",
		SiteID:    site,
		PatientID: "P-0001",
		VisitType: types.VisitScreening,
		Amount:    decimal.NewFromFloat(amount),
	}
}

func completedVisit(site, patient string) types.Visit {
	return types.Visit{SiteID: site, PatientID: patient, VisitType: types.VisitScreening, Status: types.VisitCompleted}
}

func TestAnalyze_OverBudgetClassification(t *testing.T) {
	budgets := []types.Budget{budgetRow("SITE_001", 10000)}
	payments := []types.Payment{payment("SITE_001", 13000)}

	f := Analyze(budgets, payments, nil, DefaultVarianceThresholdPct)

	require.Len(t, f.Sites, 1)
	site := f.Sites[0]
	assert.True(t, site.Variance.Equal(decimal.NewFromInt(3000)))
	assert.InDelta(t, 30.0, site.VariancePct, 0.001)
	assert.InDelta(t, 130.0, site.UtilizationPct, 0.001)
	require.Len(t, f.OverBudget, 1)
	assert.Empty(t, f.UnderBudget)
}

func TestAnalyze_VarianceSignConvention(t *testing.T) {
	budgets := []types.Budget{
		budgetRow("SITE_001", 10000),
		budgetRow("SITE_002", 10000),
	}
	payments := []types.Payment{
		{PaymentID: "PAY-00001", SiteID: "SITE_001", PatientID: "P-0001", VisitType: types.VisitScreening, Amount: decimal.NewFromInt(12000)},
		{PaymentID: "PAY-00002", SiteID: "SITE_002", PatientID: "P-0002", VisitType: types.VisitScreening, Amount: decimal.NewFromInt(7000)},
	}

	f := Analyze(budgets, payments, nil, DefaultVarianceThresholdPct)

	require.Len(t, f.Sites, 2)
	// Positive variance means spend exceeded allocation.
	assert.True(t, f.Sites[0].Variance.IsPositive())
	assert.True(t, f.Sites[1].Variance.IsNegative())
	assert.True(t, f.TotalVariance.Equal(decimal.NewFromInt(-1000)))
}

func TestAnalyze_WithinThresholdNeitherOverNorUnder(t *testing.T) {
	budgets := []types.Budget{budgetRow("SITE_001", 10000)}
	payments := []types.Payment{payment("SITE_001", 11500)} // +15%

	f := Analyze(budgets, payments, nil, DefaultVarianceThresholdPct)

	assert.Empty(t, f.OverBudget)
	assert.Empty(t, f.UnderBudget)
}

func TestAnalyze_BudgetedSiteWithoutPaymentsAppears(t *testing.T) {
	budgets := []types.Budget{budgetRow("SITE_001", 10000)}

	f := Analyze(budgets, nil, nil, DefaultVarianceThresholdPct)

	require.Len(t, f.Sites, 1)
	site := f.Sites[0]
	assert.True(t, site.ActualSpend.IsZero())
	assert.True(t, site.Variance.Equal(decimal.NewFromInt(-10000)))
	assert.InDelta(t, -100.0, site.VariancePct, 0.001)
	// 100% under budget exceeds the threshold.
	require.Len(t, f.UnderBudget, 1)
}

func TestAnalyze_UnbudgetedSiteIsZeroAllocationOverBudget(t *testing.T) {
	payments := []types.Payment{payment("SITE_009", 5000)}

	f := Analyze(nil, payments, nil, DefaultVarianceThresholdPct)

	require.Len(t, f.Sites, 1)
	site := f.Sites[0]
	assert.True(t, site.Unbudgeted)
	assert.False(t, site.RatioDefined)
	assert.True(t, site.AllocatedAmount.IsZero())
	require.Len(t, f.OverBudget, 1)
	assert.Equal(t, "SITE_009", f.OverBudget[0].SiteID)
}

func TestAnalyze_ZeroAllocationZeroSpendNotOverBudget(t *testing.T) {
	budgets := []types.Budget{budgetRow("SITE_001", 0)}

	f := Analyze(budgets, nil, nil, DefaultVarianceThresholdPct)

	require.Len(t, f.Sites, 1)
	assert.False(t, f.Sites[0].RatioDefined)
	assert.Empty(t, f.OverBudget)
	assert.Empty(t, f.UnderBudget)
}

func TestAnalyze_CostPerPatient(t *testing.T) {
	budgets := []types.Budget{budgetRow("SITE_001", 10000)}
	payments := []types.Payment{payment("SITE_001", 9000)}
	visits := []types.Visit{
		completedVisit("SITE_001", "P-0001"),
		completedVisit("SITE_001", "P-0002"),
		completedVisit("SITE_001", "P-0002"), // same patient, second visit
		{SiteID: "SITE_001", PatientID: "P-0003", VisitType: types.VisitScreening, Status: types.VisitScreenFailure},
	}

	f := Analyze(budgets, payments, visits, DefaultVarianceThresholdPct)

	require.Len(t, f.Sites, 1)
	site := f.Sites[0]
	// Screen failure patients do not count; P-0002 counts once.
	assert.Equal(t, 2, site.PatientCount)
	assert.True(t, site.CostPerPatientDefined)
	assert.True(t, site.CostPerPatient.Equal(decimal.NewFromInt(4500)), "cpp %s", site.CostPerPatient)
}

func TestAnalyze_ZeroPatientsCostPerPatientUndefined(t *testing.T) {
	budgets := []types.Budget{budgetRow("SITE_001", 10000)}
	payments := []types.Payment{payment("SITE_001", 9000)}

	f := Analyze(budgets, payments, nil, DefaultVarianceThresholdPct)

	require.Len(t, f.Sites, 1)
	assert.False(t, f.Sites[0].CostPerPatientDefined)
	assert.True(t, f.CostPerPatientMean.IsZero())
}

func TestAnalyze_Rollups(t *testing.T) {
	budgets := []types.Budget{
		budgetRow("SITE_001", 10000),
		budgetRow("SITE_002", 20000),
	}
	payments := []types.Payment{
		{PaymentID: "PAY-00001", SiteID: "SITE_001", PatientID: "P-0001", VisitType: types.VisitScreening, Amount: decimal.NewFromInt(5000)},
		{PaymentID: "PAY-00002", SiteID: "SITE_002", PatientID: "P-0002", VisitType: types.VisitScreening, Amount: decimal.NewFromInt(20000)},
	}

	f := Analyze(budgets, payments, nil, DefaultVarianceThresholdPct)

	assert.True(t, f.TotalAllocated.Equal(decimal.NewFromInt(30000)))
	assert.True(t, f.TotalSpent.Equal(decimal.NewFromInt(25000)))
	assert.True(t, f.TotalVariance.Equal(decimal.NewFromInt(-5000)))
	assert.InDelta(t, 75.0, f.MeanUtilizationPct, 0.001) // (50 + 100) / 2
}

func TestAnalyze_OverBudgetSortedByVarianceDescending(t *testing.T) {
	budgets := []types.Budget{
		budgetRow("SITE_001", 1000),
		budgetRow("SITE_002", 1000),
	}
	payments := []types.Payment{
		{PaymentID: "PAY-00001", SiteID: "SITE_001", PatientID: "P-0001", VisitType: types.VisitScreening, Amount: decimal.NewFromInt(2000)},
		{PaymentID: "PAY-00002", SiteID: "SITE_002", PatientID: "P-0002", VisitType: types.VisitScreening, Amount: decimal.NewFromInt(5000)},
	}

	f := Analyze(budgets, payments, nil, DefaultVarianceThresholdPct)

	require.Len(t, f.OverBudget, 2)
	assert.Equal(t, "SITE_002", f.OverBudget[0].SiteID)
	assert.Equal(t, "SITE_001", f.OverBudget[1].SiteID)
}
