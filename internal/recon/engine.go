// Package recon implements the payment reconciliation engine: the set-based
// join of visits and payments on the (site_id, patient_id, visit_type)
// composite key and the four discrepancy categories derived from it.
package recon

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jonathan/trial-reconciler/internal/types"
)

// DefaultTopSites is the number of sites reported per category ranking.
const DefaultTopSites = 3

// Reconcile matches visits to payments and reports unpaid visits, unmatched
// payments, disallowed payments, and duplicate payments. Empty inputs
// degrade to zero-valued findings. topSites bounds the per-category site
// rankings; values below one fall back to DefaultTopSites.
func Reconcile(visits []types.Visit, payments []types.Payment, topSites int) *types.ReconciliationFindings {
	if topSites < 1 {
		topSites = DefaultTopSites
	}

	f := &types.ReconciliationFindings{}

	completedKeys := make(map[types.CompositeKey]struct{})
	screenFailKeys := make(map[types.CompositeKey]struct{})
	for i := range visits {
		v := &visits[i]
		switch v.Status {
		case types.VisitCompleted:
			completedKeys[v.Key()] = struct{}{}
			f.CompletedVisits++
		case types.VisitScreenFailure:
			screenFailKeys[v.Key()] = struct{}{}
		}
	}

	paymentsByKey := make(map[types.CompositeKey][]*types.Payment)
	total := decimal.Zero
	for i := range payments {
		p := &payments[i]
		paymentsByKey[p.Key()] = append(paymentsByKey[p.Key()], p)
		total = total.Add(p.Amount)
	}
	if len(payments) > 0 {
		f.MeanPayment = total.Div(decimal.NewFromInt(int64(len(payments)))).Round(2)
	}

	// Unpaid visits: left-only rows of the outer join. Every completed visit
	// row whose key has no payment counts once.
	unpaid := newSiteTally()
	for i := range visits {
		v := &visits[i]
		if v.Status != types.VisitCompleted {
			continue
		}
		if _, ok := paymentsByKey[v.Key()]; ok {
			f.MatchedVisits++
			continue
		}
		f.UnpaidCount++
		unpaid.add(v.SiteID, decimal.Zero)
	}
	f.UnpaidEstimate = f.MeanPayment.Mul(decimal.NewFromInt(int64(f.UnpaidCount))).Round(2)
	f.UnpaidTopSites = unpaid.top(topSites, byCount)

	// Unmatched payments: right-only rows of the same join.
	unmatched := newSiteTally()
	for i := range payments {
		p := &payments[i]
		if _, ok := completedKeys[p.Key()]; ok {
			continue
		}
		f.UnmatchedCount++
		f.UnmatchedAmount = f.UnmatchedAmount.Add(p.Amount)
		unmatched.add(p.SiteID, p.Amount)
	}
	f.UnmatchedTopSites = unmatched.top(topSites, byAmount)

	// Disallowed payments: inner join against the screen-failure subset.
	// Screen failures must not be paid.
	disallowed := newSiteTally()
	for i := range payments {
		p := &payments[i]
		if _, ok := screenFailKeys[p.Key()]; !ok {
			continue
		}
		f.DisallowedCount++
		f.DisallowedAmount = f.DisallowedAmount.Add(p.Amount)
		disallowed.add(p.SiteID, p.Amount)
	}
	f.DisallowedTopSites = disallowed.top(topSites, byAmount)

	// Duplicate payments: any key appearing at least twice among all
	// payments, reported once per key. Excess per group is the group total
	// minus one representative mean share (total - total/count), which for a
	// pair is half the total.
	dupSites := newSiteTally()
	for key, group := range paymentsByKey {
		if len(group) < 2 {
			continue
		}
		groupTotal := decimal.Zero
		ids := make([]string, 0, len(group))
		for _, p := range group {
			groupTotal = groupTotal.Add(p.Amount)
			ids = append(ids, p.PaymentID)
		}
		sort.Strings(ids)
		count := decimal.NewFromInt(int64(len(group)))
		excess := groupTotal.Sub(groupTotal.Div(count)).Round(2)

		f.DuplicateGroups = append(f.DuplicateGroups, types.DuplicateGroup{
			SiteID:     key.SiteID,
			PatientID:  key.PatientID,
			VisitType:  key.VisitType,
			PaymentIDs: ids,
			Count:      len(group),
			Total:      groupTotal,
			Excess:     excess,
		})
		f.DuplicateExcess = f.DuplicateExcess.Add(excess)
		dupSites.add(key.SiteID, excess)
	}
	sort.Slice(f.DuplicateGroups, func(i, j int) bool {
		a, b := f.DuplicateGroups[i], f.DuplicateGroups[j]
		if a.SiteID != b.SiteID {
			return a.SiteID < b.SiteID
		}
		if a.PatientID != b.PatientID {
			return a.PatientID < b.PatientID
		}
		return a.VisitType < b.VisitType
	})
	f.DuplicateGroupCount = len(f.DuplicateGroups)
	f.DuplicateTopSites = dupSites.top(topSites, byAmount)

	return f
}

// rankBy selects the ordering criterion for a site ranking.
type rankBy int

const (
	byCount rankBy = iota
	byAmount
)

// siteTally accumulates per-site counts and amounts for a category.
type siteTally struct {
	rows map[string]*types.SiteAmount
}

func newSiteTally() *siteTally {
	return &siteTally{rows: make(map[string]*types.SiteAmount)}
}

func (t *siteTally) add(siteID string, amount decimal.Decimal) {
	row, ok := t.rows[siteID]
	if !ok {
		row = &types.SiteAmount{SiteID: siteID}
		t.rows[siteID] = row
	}
	row.Count++
	row.Amount = row.Amount.Add(amount)
}

// top returns the n highest-ranked sites, descending, ties broken by site id
// ascending.
func (t *siteTally) top(n int, by rankBy) []types.SiteAmount {
	out := make([]types.SiteAmount, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch by {
		case byCount:
			if a.Count != b.Count {
				return a.Count > b.Count
			}
		case byAmount:
			if !a.Amount.Equal(b.Amount) {
				return a.Amount.GreaterThan(b.Amount)
			}
		}
		return a.SiteID < b.SiteID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
