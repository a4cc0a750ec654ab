package types

import "github.com/shopspring/decimal"

// SiteAmount is one row of a per-site ranking: how many findings a site
// accumulated in a category and the summed amount involved.
type SiteAmount struct {
	SiteID string          `json:"site_id"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// DuplicateGroup describes all payments sharing one composite key when that
// key appears two or more times.
type DuplicateGroup struct {
	SiteID     string          `json:"site_id"`
	PatientID  string          `json:"patient_id"`
	VisitType  VisitType       `json:"visit_type"`
	PaymentIDs []string        `json:"payment_ids"`
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
	// Excess is the estimated recoverable amount: the group total minus one
	// representative mean share (total - total/count). For a pair this is
	// half the group total.
	Excess decimal.Decimal `json:"excess"`
}

// ReconciliationFindings is the structured output of the reconciliation
// engine: the four discrepancy categories of the visit/payment join.
type ReconciliationFindings struct {
	CompletedVisits int `json:"completed_visits"`
	MatchedVisits   int `json:"matched_visits"`

	UnpaidCount    int             `json:"unpaid_count"`
	UnpaidEstimate decimal.Decimal `json:"unpaid_estimate"`
	UnpaidTopSites []SiteAmount    `json:"unpaid_top_sites"`

	UnmatchedCount    int             `json:"unmatched_count"`
	UnmatchedAmount   decimal.Decimal `json:"unmatched_amount"`
	UnmatchedTopSites []SiteAmount    `json:"unmatched_top_sites"`

	DisallowedCount    int             `json:"disallowed_count"`
	DisallowedAmount   decimal.Decimal `json:"disallowed_amount"`
	DisallowedTopSites []SiteAmount    `json:"disallowed_top_sites"`

	DuplicateGroups     []DuplicateGroup `json:"duplicate_groups"`
	DuplicateGroupCount int              `json:"duplicate_group_count"`
	DuplicateExcess     decimal.Decimal  `json:"duplicate_excess"`
	DuplicateTopSites   []SiteAmount     `json:"duplicate_top_sites"`

	// MeanPayment is the mean amount across all payments, used as the proxy
	// value for an unpaid visit. This deliberately avoids a contract join
	// and biases estimates where rates vary widely by visit type or country.
	MeanPayment decimal.Decimal `json:"mean_payment"`
}

// FeeError records a payment whose expected fee could not be determined
// (zero or missing fee in the contract schedule). Reported distinctly so no
// infinite or NaN ratio is produced.
type FeeError struct {
	PaymentID string    `json:"payment_id"`
	SiteID    string    `json:"site_id"`
	VisitType VisitType `json:"visit_type"`
	Reason    string    `json:"reason"`
}

// ComplianceFindings is the structured output of the contract compliance
// engine. Violations partition exactly into overcharges and undercharges.
type ComplianceFindings struct {
	PaymentsChecked int `json:"payments_checked"`
	ViolationCount  int `json:"violation_count"`

	OverchargeCount int             `json:"overcharge_count"`
	OverchargeTotal decimal.Decimal `json:"overcharge_total"`
	OverchargeMean  decimal.Decimal `json:"overcharge_mean"`
	TopOvercharged  []SiteAmount    `json:"top_overcharged"`

	UnderchargeCount int             `json:"undercharge_count"`
	UnderchargeTotal decimal.Decimal `json:"undercharge_total"`
	UnderchargeMean  decimal.Decimal `json:"undercharge_mean"`
	TopUndercharged  []SiteAmount    `json:"top_undercharged"`

	// NetImpact preserves sign: positive means the payer overpaid on net.
	NetImpact decimal.Decimal `json:"net_impact"`

	FeeErrors []FeeError `json:"fee_errors,omitempty"`
}

// SiteBudget is the per-site budget position.
type SiteBudget struct {
	SiteID          string          `json:"site_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	ActualSpend     decimal.Decimal `json:"actual_spend"`
	Variance        decimal.Decimal `json:"variance"`
	// VariancePct and UtilizationPct are undefined when the allocation is
	// zero; RatioDefined distinguishes that from a genuine 0%.
	VariancePct    float64 `json:"variance_pct"`
	UtilizationPct float64 `json:"utilization_pct"`
	RatioDefined   bool    `json:"ratio_defined"`
	// Unbudgeted marks a site that has payments but no budget row. Such
	// sites are treated as zero-allocation and classified over budget.
	Unbudgeted bool `json:"unbudgeted,omitempty"`

	PatientCount          int             `json:"patient_count"`
	CostPerPatient        decimal.Decimal `json:"cost_per_patient"`
	CostPerPatientDefined bool            `json:"cost_per_patient_defined"`
}

// BudgetFindings is the structured output of the budget analysis engine.
type BudgetFindings struct {
	Sites []SiteBudget `json:"sites"`

	TotalAllocated     decimal.Decimal `json:"total_allocated"`
	TotalSpent         decimal.Decimal `json:"total_spent"`
	TotalVariance      decimal.Decimal `json:"total_variance"`
	MeanUtilizationPct float64         `json:"mean_utilization_pct"`

	OverBudget  []SiteBudget `json:"over_budget"`
	UnderBudget []SiteBudget `json:"under_budget"`

	CostPerPatientMin  decimal.Decimal `json:"cost_per_patient_min"`
	CostPerPatientMax  decimal.Decimal `json:"cost_per_patient_max"`
	CostPerPatientMean decimal.Decimal `json:"cost_per_patient_mean"`
}

// Findings is the fixed-shape summary handed to the narrative collaborator.
// TotalFinancialExposure excludes the contract-violation net impact, which
// is reported separately: an overcharge is not recoverable exposure in the
// same sense as an unpaid or duplicated amount.
type Findings struct {
	TotalFinancialExposure  decimal.Decimal `json:"total_financial_exposure"`
	UnpaidCount             int             `json:"unpaid_count"`
	UnpaidAmount            decimal.Decimal `json:"unpaid_amount"`
	DuplicateCount          int             `json:"duplicate_count"`
	DuplicateAmountEstimate decimal.Decimal `json:"duplicate_amount_estimate"`
	DisallowedCount         int             `json:"disallowed_count"`
	DisallowedAmount        decimal.Decimal `json:"disallowed_amount"`
	ViolationCount          int             `json:"violation_count"`
	OverchargeTotal         decimal.Decimal `json:"overcharge_total"`
	UnderchargeTotal        decimal.Decimal `json:"undercharge_total"`
	NetViolationImpact      decimal.Decimal `json:"net_violation_impact"`
	OverBudgetSiteCount     int             `json:"over_budget_site_count"`

	UnpaidTopSites     []SiteAmount `json:"unpaid_top_sites"`
	DuplicateTopSites  []SiteAmount `json:"duplicate_top_sites"`
	DisallowedTopSites []SiteAmount `json:"disallowed_top_sites"`
	TopOvercharged     []SiteAmount `json:"top_overcharged"`
	TopUndercharged    []SiteAmount `json:"top_undercharged"`

	Reconciliation *ReconciliationFindings `json:"reconciliation,omitempty"`
	Compliance     *ComplianceFindings     `json:"compliance,omitempty"`
	Budget         *BudgetFindings         `json:"budget,omitempty"`
}
