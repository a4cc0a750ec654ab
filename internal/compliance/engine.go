// Package compliance implements the contract compliance engine, comparing
// payment amounts against contracted per-visit-type rates.
package compliance

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jonathan/trial-reconciler/internal/types"
)

// DefaultThreshold is the materiality threshold: variances at or below one
// dollar are treated as rounding noise, not violations.
var DefaultThreshold = decimal.NewFromInt(1)

// DefaultTopSites is the number of sites reported per ranking.
const DefaultTopSites = 3

// Check validates every payment against its site's contracted rate. A
// payment referencing a site with no contract is a data integrity error and
// fails the whole check. Payments whose expected fee is zero or undefined
// are reported in FeeErrors rather than producing an undefined ratio.
func Check(contracts []types.Contract, payments []types.Payment, threshold decimal.Decimal, topSites int) (*types.ComplianceFindings, error) {
	if threshold.LessThanOrEqual(decimal.Zero) {
		threshold = DefaultThreshold
	}
	if topSites < 1 {
		topSites = DefaultTopSites
	}

	bySite := make(map[string]*types.Contract, len(contracts))
	for i := range contracts {
		bySite[contracts[i].SiteID] = &contracts[i]
	}

	f := &types.ComplianceFindings{PaymentsChecked: len(payments)}
	overBySite := make(map[string]*types.SiteAmount)
	underBySite := make(map[string]*types.SiteAmount)

	for i := range payments {
		p := &payments[i]
		contract, ok := bySite[p.SiteID]
		if !ok {
			return nil, fmt.Errorf("payment %s references unknown site %s: no contract on file", p.PaymentID, p.SiteID)
		}

		expected, known := contract.Fee(p.VisitType)
		if !known {
			f.FeeErrors = append(f.FeeErrors, types.FeeError{
				PaymentID: p.PaymentID,
				SiteID:    p.SiteID,
				VisitType: p.VisitType,
				Reason:    "unknown visit type",
			})
			continue
		}
		if expected.IsZero() {
			f.FeeErrors = append(f.FeeErrors, types.FeeError{
				PaymentID: p.PaymentID,
				SiteID:    p.SiteID,
				VisitType: p.VisitType,
				Reason:    "contracted fee is zero",
			})
			continue
		}

		variance := p.Amount.Sub(expected)
		if variance.Abs().LessThanOrEqual(threshold) {
			continue
		}

		f.ViolationCount++
		f.NetImpact = f.NetImpact.Add(variance)
		if variance.IsPositive() {
			f.OverchargeCount++
			f.OverchargeTotal = f.OverchargeTotal.Add(variance)
			tallySite(overBySite, p.SiteID, variance)
		} else {
			f.UnderchargeCount++
			f.UnderchargeTotal = f.UnderchargeTotal.Add(variance)
			tallySite(underBySite, p.SiteID, variance)
		}
	}

	if f.OverchargeCount > 0 {
		f.OverchargeMean = f.OverchargeTotal.Div(decimal.NewFromInt(int64(f.OverchargeCount))).Round(2)
	}
	if f.UnderchargeCount > 0 {
		f.UnderchargeMean = f.UnderchargeTotal.Div(decimal.NewFromInt(int64(f.UnderchargeCount))).Round(2)
	}

	// Overcharges rank by summed variance descending; undercharges by summed
	// variance ascending, so the most negative sites come first.
	f.TopOvercharged = rankSites(overBySite, topSites, false)
	f.TopUndercharged = rankSites(underBySite, topSites, true)

	return f, nil
}

func tallySite(m map[string]*types.SiteAmount, siteID string, variance decimal.Decimal) {
	row, ok := m[siteID]
	if !ok {
		row = &types.SiteAmount{SiteID: siteID}
		m[siteID] = row
	}
	row.Count++
	row.Amount = row.Amount.Add(variance)
}

func rankSites(m map[string]*types.SiteAmount, n int, ascending bool) []types.SiteAmount {
	out := make([]types.SiteAmount, 0, len(m))
	for _, row := range m {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Amount.Equal(b.Amount) {
			if ascending {
				return a.Amount.LessThan(b.Amount)
			}
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.SiteID < b.SiteID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
