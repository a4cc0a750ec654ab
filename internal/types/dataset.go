// Package types provides type definitions for structured data used throughout the trial-reconciler system.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts serialize as JSON numbers so datasets round-trip against the
	// table schemas, which declare the *_usd columns as "number".
	decimal.MarshalJSONWithoutQuotes = true
}

// VisitType identifies a protocol-defined visit.
type VisitType string

// Protocol visit types, in protocol order.
const (
	VisitScreening VisitType = "screening"
	VisitBaseline  VisitType = "baseline"
	VisitMonth3    VisitType = "month_3"
	VisitMonth6    VisitType = "month_6"
	VisitMonth12   VisitType = "month_12"
	VisitCloseout  VisitType = "closeout"
)

// VisitTypes returns all visit types in protocol order.
func VisitTypes() []VisitType {
	return []VisitType{
		VisitScreening,
		VisitBaseline,
		VisitMonth3,
		VisitMonth6,
		VisitMonth12,
		VisitCloseout,
	}
}

// VisitStatus is the outcome recorded for a visit.
type VisitStatus string

// Visit outcomes.
const (
	VisitCompleted     VisitStatus = "completed"
	VisitScreenFailure VisitStatus = "screen_failure"
)

// CompositeKey is the (site_id, patient_id, visit_type) tuple used to join
// visits and payments. It is not unique on either side: a visit may have
// zero, one, or many payment rows.
type CompositeKey struct {
	SiteID    string
	PatientID string
	VisitType VisitType
}

// Contract holds the negotiated per-visit fee schedule for one site.
// Exactly one contract exists per site.
type Contract struct {
	SiteID       string          `json:"site_id" validate:"required"`
	SiteName     string          `json:"site_name"`
	Country      string          `json:"country" validate:"required"`
	ScreeningFee decimal.Decimal `json:"screening_fee_usd"`
	BaselineFee  decimal.Decimal `json:"baseline_fee_usd"`
	Month3Fee    decimal.Decimal `json:"month3_fee_usd"`
	Month6Fee    decimal.Decimal `json:"month6_fee_usd"`
	Month12Fee   decimal.Decimal `json:"month12_fee_usd"`
	CloseoutFee  decimal.Decimal `json:"closeout_fee_usd"`
}

// Fee returns the contracted fee for a visit type. The second return value
// is false for an unknown visit type.
func (c *Contract) Fee(vt VisitType) (decimal.Decimal, bool) {
	switch vt {
	case VisitScreening:
		return c.ScreeningFee, true
	case VisitBaseline:
		return c.BaselineFee, true
	case VisitMonth3:
		return c.Month3Fee, true
	case VisitMonth6:
		return c.Month6Fee, true
	case VisitMonth12:
		return c.Month12Fee, true
	case VisitCloseout:
		return c.CloseoutFee, true
	default:
		return decimal.Zero, false
	}
}

// SetFee assigns the contracted fee for a visit type.
func (c *Contract) SetFee(vt VisitType, amount decimal.Decimal) {
	switch vt {
	case VisitScreening:
		c.ScreeningFee = amount
	case VisitBaseline:
		c.BaselineFee = amount
	case VisitMonth3:
		c.Month3Fee = amount
	case VisitMonth6:
		c.Month6Fee = amount
	case VisitMonth12:
		c.Month12Fee = amount
	case VisitCloseout:
		c.CloseoutFee = amount
	}
}

// Visit is one scheduled patient encounter.
type Visit struct {
	PatientID string      `json:"patient_id" validate:"required"`
	SiteID    string      `json:"site_id" validate:"required"`
	VisitType VisitType   `json:"visit_type" validate:"required,oneof=screening baseline month_3 month_6 month_12 closeout"`
	VisitDate time.Time   `json:"visit_date"`
	Status    VisitStatus `json:"status" validate:"required,oneof=completed screen_failure"`
}

// Key returns the composite join key for this visit.
func (v *Visit) Key() CompositeKey {
	return CompositeKey{SiteID: v.SiteID, PatientID: v.PatientID, VisitType: v.VisitType}
}

// Payment is one recorded payment to a site for a patient visit.
type Payment struct {
	PaymentID     string          `json:"payment_id" validate:"required"`
	SiteID        string          `json:"site_id" validate:"required"`
	PatientID     string          `json:"patient_id" validate:"required"`
	VisitType     VisitType       `json:"visit_type" validate:"required,oneof=screening baseline month_3 month_6 month_12 closeout"`
	Amount        decimal.Decimal `json:"amount_usd"`
	PaymentDate   time.Time       `json:"payment_date"`
	InvoiceNumber string          `json:"invoice_number"`
}

// Key returns the composite join key for this payment.
func (p *Payment) Key() CompositeKey {
	return CompositeKey{SiteID: p.SiteID, PatientID: p.PatientID, VisitType: p.VisitType}
}

// Budget is the allocated spend for one site.
type Budget struct {
	SiteID          string          `json:"site_id" validate:"required"`
	AllocatedAmount decimal.Decimal `json:"allocated_budget_usd"`
	Currency        string          `json:"currency" validate:"required"`
}

// Dataset bundles the four tables for one investigation. A dataset is
// generated or loaded once, up front, and treated as read-only afterwards,
// so the engines may share it without synchronization.
type Dataset struct {
	Contracts []Contract `json:"contracts"`
	Visits    []Visit    `json:"visits"`
	Payments  []Payment  `json:"payments"`
	Budgets   []Budget   `json:"budgets"`
}

// ContractBySite indexes contracts by site id.
func (d *Dataset) ContractBySite() map[string]*Contract {
	m := make(map[string]*Contract, len(d.Contracts))
	for i := range d.Contracts {
		m[d.Contracts[i].SiteID] = &d.Contracts[i]
	}
	return m
}

// BudgetBySite indexes budgets by site id.
func (d *Dataset) BudgetBySite() map[string]*Budget {
	m := make(map[string]*Budget, len(d.Budgets))
	for i := range d.Budgets {
		m[d.Budgets[i].SiteID] = &d.Budgets[i]
	}
	return m
}
