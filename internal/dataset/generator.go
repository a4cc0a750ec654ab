// Package dataset supplies the four reconciliation tables: a seeded
// synthetic generator with deliberately injected defects, and a loader for
// externally supplied JSON datasets.
package dataset

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jonathan/trial-reconciler/internal/types"
)

// DefaultSeed reproduces the reference dataset.
const DefaultSeed = 42

const (
	numSites            = 50
	minPatientsPerSite  = 8
	maxPatientsPerSite  = 12
	screenFailureRate   = 0.15
	missedPaymentRate   = 0.05
	rateVarianceRate    = 0.10
	numDuplicates       = 8
	screenFailurePayPct = 0.08
)

var countries = []string{"USA", "Germany", "UK", "France", "Canada", "Australia", "Japan", "Spain", "Italy", "Netherlands"}

// baseFees are the USA-level fees per visit type before the country
// multiplier is applied.
var baseFees = map[types.VisitType]float64{
	types.VisitScreening: 1500,
	types.VisitBaseline:  3000,
	types.VisitMonth3:    2000,
	types.VisitMonth6:    2000,
	types.VisitMonth12:   2500,
	types.VisitCloseout:  3500,
}

// followUpRates are the completion probabilities for the visits after
// baseline, in protocol order.
var followUpRates = map[types.VisitType]float64{
	types.VisitMonth3:   0.90,
	types.VisitMonth6:   0.80,
	types.VisitMonth12:  0.70,
	types.VisitCloseout: 0.65,
}

// Generator produces an internally consistent synthetic dataset with
// seeded discrepancies: missing payments, contract-rate violations,
// duplicate payments, and payments for screen failures.
type Generator struct {
	seed int64
}

// NewGenerator returns a generator for the given seed. The same seed always
// yields the same dataset.
func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed}
}

// Load implements the orchestrator's data source contract.
func (g *Generator) Load(_ context.Context) (*types.Dataset, error) {
	return g.Generate(), nil
}

// Generate builds the four tables.
func (g *Generator) Generate() *types.Dataset {
	r := rand.New(rand.NewSource(g.seed))
	startDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	contracts := g.generateContracts(r)
	visits := g.generateVisits(r, startDate)
	payments := g.generatePayments(r, visits, contracts)
	budgets := g.generateBudgets(contracts)

	return &types.Dataset{
		Contracts: contracts,
		Visits:    visits,
		Payments:  payments,
		Budgets:   budgets,
	}
}

func (g *Generator) generateContracts(r *rand.Rand) []types.Contract {
	contracts := make([]types.Contract, 0, numSites)
	for i := 1; i <= numSites; i++ {
		country := countries[r.Intn(len(countries))]

		// Rates run higher in the US and Japan, lower across the EU.
		multiplier := 0.75
		switch country {
		case "USA", "Japan", "Australia":
			multiplier = 1.0
		case "UK", "Canada":
			multiplier = 0.85
		}

		c := types.Contract{
			SiteID:   fmt.Sprintf("SITE_%03d", i),
			SiteName: fmt.Sprintf("%s Medical Center %d", country, i),
			Country:  country,
		}
		for _, vt := range types.VisitTypes() {
			c.SetFee(vt, decimal.NewFromFloat(baseFees[vt]*multiplier).Round(2))
		}
		contracts = append(contracts, c)
	}
	return contracts
}

func (g *Generator) generateVisits(r *rand.Rand, startDate time.Time) []types.Visit {
	var visits []types.Visit
	patientNum := 1

	for siteNum := 1; siteNum <= numSites; siteNum++ {
		siteID := fmt.Sprintf("SITE_%03d", siteNum)
		numPatients := minPatientsPerSite + r.Intn(maxPatientsPerSite-minPatientsPerSite+1)

		for p := 0; p < numPatients; p++ {
			patientID := fmt.Sprintf("P-%04d", patientNum)
			patientNum++

			isScreenFailure := r.Float64() < screenFailureRate
			visitDate := startDate.AddDate(0, 0, r.Intn(181))

			status := types.VisitCompleted
			if isScreenFailure {
				status = types.VisitScreenFailure
			}
			visits = append(visits, types.Visit{
				PatientID: patientID,
				SiteID:    siteID,
				VisitType: types.VisitScreening,
				VisitDate: visitDate,
				Status:    status,
			})
			if isScreenFailure {
				// A screen failure terminates the patient's visit sequence.
				continue
			}

			visitDate = visitDate.AddDate(0, 0, 3+r.Intn(12))
			visits = append(visits, types.Visit{
				PatientID: patientID,
				SiteID:    siteID,
				VisitType: types.VisitBaseline,
				VisitDate: visitDate,
				Status:    types.VisitCompleted,
			})

			for _, vt := range []types.VisitType{types.VisitMonth3, types.VisitMonth6, types.VisitMonth12, types.VisitCloseout} {
				if r.Float64() >= followUpRates[vt] {
					continue
				}
				switch vt {
				case types.VisitMonth12:
					visitDate = visitDate.AddDate(0, 0, 175+r.Intn(11))
				case types.VisitCloseout:
					visitDate = visitDate.AddDate(0, 0, 30+r.Intn(31))
				default:
					visitDate = visitDate.AddDate(0, 0, 85+r.Intn(11))
				}
				visits = append(visits, types.Visit{
					PatientID: patientID,
					SiteID:    siteID,
					VisitType: vt,
					VisitDate: visitDate,
					Status:    types.VisitCompleted,
				})
			}
		}
	}
	return visits
}

func (g *Generator) generatePayments(r *rand.Rand, visits []types.Visit, contracts []types.Contract) []types.Payment {
	bySite := make(map[string]*types.Contract, len(contracts))
	for i := range contracts {
		bySite[contracts[i].SiteID] = &contracts[i]
	}

	var payments []types.Payment
	paymentNum := 1
	nextPayment := func(siteID string) (string, string) {
		paymentID := fmt.Sprintf("PAY-%05d", paymentNum)
		invoice := fmt.Sprintf("INV-%s-%05d", siteID, paymentNum)
		paymentNum++
		return paymentID, invoice
	}

	var screenFailures []types.Visit
	for _, v := range visits {
		if v.Status == types.VisitScreenFailure {
			screenFailures = append(screenFailures, v)
			continue
		}

		// A slice of completed visits goes unpaid: the missing-payment defect.
		if r.Float64() < missedPaymentRate {
			continue
		}

		expected, _ := bySite[v.SiteID].Fee(v.VisitType)
		amount := expected
		// Some payments deviate from the contracted rate by up to 20% either
		// way: the rate-violation defect.
		if r.Float64() < rateVarianceRate {
			variance := -0.20 + r.Float64()*0.40
			amount = expected.Mul(decimal.NewFromFloat(1 + variance)).Round(2)
		}

		paymentID, invoice := nextPayment(v.SiteID)
		payments = append(payments, types.Payment{
			PaymentID:     paymentID,
			SiteID:        v.SiteID,
			PatientID:     v.PatientID,
			VisitType:     v.VisitType,
			Amount:        amount,
			PaymentDate:   v.VisitDate.AddDate(0, 0, 30+r.Intn(31)),
			InvoiceNumber: invoice,
		})
	}

	// Duplicate a handful of payments under fresh ids: the duplicate defect.
	for _, idx := range r.Perm(len(payments))[:numDuplicates] {
		dup := payments[idx]
		dup.PaymentID, dup.InvoiceNumber = nextPayment(dup.SiteID)
		dup.PaymentDate = dup.PaymentDate.AddDate(0, 0, 1+r.Intn(30))
		payments = append(payments, dup)
	}

	// Pay a share of screen failures their screening fee: the disallowed
	// defect.
	numSF := int(float64(len(screenFailures)) * screenFailurePayPct)
	for _, idx := range r.Perm(len(screenFailures))[:numSF] {
		sf := screenFailures[idx]
		fee, _ := bySite[sf.SiteID].Fee(types.VisitScreening)
		paymentID, invoice := nextPayment(sf.SiteID)
		payments = append(payments, types.Payment{
			PaymentID:     paymentID,
			SiteID:        sf.SiteID,
			PatientID:     sf.PatientID,
			VisitType:     types.VisitScreening,
			Amount:        fee,
			PaymentDate:   sf.VisitDate.AddDate(0, 0, 30+r.Intn(31)),
			InvoiceNumber: invoice,
		})
	}

	return payments
}

func (g *Generator) generateBudgets(contracts []types.Contract) []types.Budget {
	budgets := make([]types.Budget, 0, len(contracts))
	for i := range contracts {
		c := &contracts[i]
		perPatient := decimal.Zero
		for _, vt := range types.VisitTypes() {
			fee, _ := c.Fee(vt)
			perPatient = perPatient.Add(fee)
		}
		// Budget covers ten patients through the full schedule plus a 10%
		// buffer.
		allocated := perPatient.Mul(decimal.NewFromInt(10)).Mul(decimal.NewFromFloat(1.10)).Round(2)
		budgets = append(budgets, types.Budget{
			SiteID:          c.SiteID,
			AllocatedAmount: allocated,
			Currency:        "USD",
		})
	}
	return budgets
}
