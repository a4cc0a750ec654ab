// Package budget implements the budget analysis engine: per-site spend
// against allocation, variance classification, and cost-per-patient metrics.
package budget

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jonathan/trial-reconciler/internal/types"
)

// DefaultVarianceThresholdPct classifies a site as over or under budget when
// its variance exceeds this percentage of the allocation in either direction.
const DefaultVarianceThresholdPct = 20.0

// Analyze aggregates actual spend per site against its allocation. Every
// budgeted site appears in the result, with spend zero when it has no
// payments. Sites with payments but no budget row are included as
// zero-allocation rows and classified over budget. Zero allocations and
// zero-patient sites yield flagged undefined ratios, never a division error.
func Analyze(budgets []types.Budget, payments []types.Payment, visits []types.Visit, thresholdPct float64) *types.BudgetFindings {
	if thresholdPct <= 0 {
		thresholdPct = DefaultVarianceThresholdPct
	}

	spendBySite := make(map[string]decimal.Decimal)
	for i := range payments {
		p := &payments[i]
		spendBySite[p.SiteID] = spendBySite[p.SiteID].Add(p.Amount)
	}

	// Distinct patients with at least one completed visit, per site.
	patientsBySite := make(map[string]map[string]struct{})
	for i := range visits {
		v := &visits[i]
		if v.Status != types.VisitCompleted {
			continue
		}
		set, ok := patientsBySite[v.SiteID]
		if !ok {
			set = make(map[string]struct{})
			patientsBySite[v.SiteID] = set
		}
		set[v.PatientID] = struct{}{}
	}

	f := &types.BudgetFindings{}
	budgeted := make(map[string]struct{}, len(budgets))

	for i := range budgets {
		b := &budgets[i]
		budgeted[b.SiteID] = struct{}{}
		f.Sites = append(f.Sites, buildSite(b.SiteID, b.AllocatedAmount, spendBySite[b.SiteID], len(patientsBySite[b.SiteID]), false))
	}
	for siteID, spend := range spendBySite {
		if _, ok := budgeted[siteID]; ok {
			continue
		}
		f.Sites = append(f.Sites, buildSite(siteID, decimal.Zero, spend, len(patientsBySite[siteID]), true))
	}
	sort.Slice(f.Sites, func(i, j int) bool { return f.Sites[i].SiteID < f.Sites[j].SiteID })

	utilSum := 0.0
	utilCount := 0
	var cppSum decimal.Decimal
	cppCount := 0
	for _, site := range f.Sites {
		f.TotalAllocated = f.TotalAllocated.Add(site.AllocatedAmount)
		f.TotalSpent = f.TotalSpent.Add(site.ActualSpend)
		f.TotalVariance = f.TotalVariance.Add(site.Variance)

		if site.RatioDefined {
			utilSum += site.UtilizationPct
			utilCount++
		}
		if site.CostPerPatientDefined {
			if cppCount == 0 || site.CostPerPatient.LessThan(f.CostPerPatientMin) {
				f.CostPerPatientMin = site.CostPerPatient
			}
			if cppCount == 0 || site.CostPerPatient.GreaterThan(f.CostPerPatientMax) {
				f.CostPerPatientMax = site.CostPerPatient
			}
			cppSum = cppSum.Add(site.CostPerPatient)
			cppCount++
		}

		if overBudget(site, thresholdPct) {
			f.OverBudget = append(f.OverBudget, site)
		} else if site.RatioDefined && site.VariancePct < -thresholdPct {
			f.UnderBudget = append(f.UnderBudget, site)
		}
	}
	if utilCount > 0 {
		f.MeanUtilizationPct = utilSum / float64(utilCount)
	}
	if cppCount > 0 {
		f.CostPerPatientMean = cppSum.Div(decimal.NewFromInt(int64(cppCount))).Round(2)
	}

	sort.Slice(f.OverBudget, func(i, j int) bool {
		a, b := f.OverBudget[i], f.OverBudget[j]
		if !a.Variance.Equal(b.Variance) {
			return a.Variance.GreaterThan(b.Variance)
		}
		return a.SiteID < b.SiteID
	})
	sort.Slice(f.UnderBudget, func(i, j int) bool {
		a, b := f.UnderBudget[i], f.UnderBudget[j]
		if !a.Variance.Equal(b.Variance) {
			return a.Variance.LessThan(b.Variance)
		}
		return a.SiteID < b.SiteID
	})

	return f
}

func buildSite(siteID string, allocated, spend decimal.Decimal, patientCount int, unbudgeted bool) types.SiteBudget {
	site := types.SiteBudget{
		SiteID:          siteID,
		AllocatedAmount: allocated,
		ActualSpend:     spend,
		Variance:        spend.Sub(allocated),
		Unbudgeted:      unbudgeted,
		PatientCount:    patientCount,
	}
	if allocated.IsPositive() {
		site.RatioDefined = true
		site.VariancePct = pct(site.Variance, allocated)
		site.UtilizationPct = pct(spend, allocated)
	}
	if patientCount > 0 {
		site.CostPerPatientDefined = true
		site.CostPerPatient = spend.Div(decimal.NewFromInt(int64(patientCount))).Round(2)
	}
	return site
}

func overBudget(site types.SiteBudget, thresholdPct float64) bool {
	if site.RatioDefined {
		return site.VariancePct > thresholdPct
	}
	// Zero allocation with any spend is over budget by definition.
	return site.ActualSpend.IsPositive()
}

func pct(part, whole decimal.Decimal) float64 {
	v, _ := part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return v
}
