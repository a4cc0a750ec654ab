package dataset

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/trial-reconciler/internal/types"
)

func TestSummary_Counts(t *testing.T) {
	ds := &types.Dataset{
		Contracts: []types.Contract{{SiteID: "SITE_001", Country: "USA",
			ScreeningFee: decimal.NewFromInt(1500), BaselineFee: decimal.NewFromInt(3000),
			Month3Fee: decimal.NewFromInt(2000), Month6Fee: decimal.NewFromInt(2000),
			Month12Fee: decimal.NewFromInt(2500), CloseoutFee: decimal.NewFromInt(3500)}},
		Visits: []types.Visit{
			{PatientID: "P-0001", SiteID: "SITE_001", VisitType: types.VisitScreening, VisitDate: time.Now(), Status: types.VisitCompleted},
			{PatientID: "P-0002", SiteID: "SITE_001", VisitType: types.VisitScreening, VisitDate: time.Now(), Status: types.VisitScreenFailure},
		},
		Payments: []types.Payment{
			{PaymentID: "PAY-00001", SiteID: "SITE_001", PatientID: "P-0001", VisitType: types.VisitScreening,
				Amount: decimal.NewFromInt(1500), PaymentDate: time.Now()},
		},
		Budgets: []types.Budget{{SiteID: "SITE_001", AllocatedAmount: decimal.NewFromInt(100000), Currency: "USD"}},
	}

	out := Summary(ds)

	assert.Contains(t, out, "DATA VALIDATION COMPLETE")
	assert.Contains(t, out, "- Sites: 1")
	assert.Contains(t, out, "- Patients: 2")
	assert.Contains(t, out, "Total Visits: 2 (1 completed, 1 screen failures)")
	assert.Contains(t, out, "- Total Amount Paid: $1,500.00")
	assert.Contains(t, out, "- Total Budget Allocated: $100,000.00")
	assert.Contains(t, out, "No critical data quality issues detected")
}

func TestSummary_ReportsDataQualityIssues(t *testing.T) {
	ds := &types.Dataset{
		Contracts: []types.Contract{{SiteID: "SITE_001", Country: "USA"}}, // all fees zero
		Visits: []types.Visit{
			{PatientID: "P-0001", SiteID: "SITE_001", VisitType: types.VisitScreening, Status: types.VisitCompleted}, // zero date
		},
	}

	out := Summary(ds)

	assert.Contains(t, out, "6 site contract fees are zero or missing")
	assert.Contains(t, out, "1 visits have missing dates")
	assert.NotContains(t, out, "No critical data quality issues")
}
