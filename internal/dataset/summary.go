package dataset

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jonathan/trial-reconciler/internal/report"
	"github.com/jonathan/trial-reconciler/internal/types"
)

// Summary produces the data-validation text for the first pipeline stage:
// row counts, totals, and any data quality issues found.
func Summary(ds *types.Dataset) string {
	patients := make(map[string]struct{})
	completed := 0
	screenFailures := 0
	missingVisitDates := 0
	for _, v := range ds.Visits {
		patients[v.PatientID] = struct{}{}
		switch v.Status {
		case types.VisitCompleted:
			completed++
		case types.VisitScreenFailure:
			screenFailures++
		}
		if v.VisitDate.IsZero() {
			missingVisitDates++
		}
	}

	totalPaid := decimal.Zero
	missingPaymentDates := 0
	for _, p := range ds.Payments {
		totalPaid = totalPaid.Add(p.Amount)
		if p.PaymentDate.IsZero() {
			missingPaymentDates++
		}
	}

	totalBudget := decimal.Zero
	for _, b := range ds.Budgets {
		totalBudget = totalBudget.Add(b.AllocatedAmount)
	}

	missingFees := 0
	for i := range ds.Contracts {
		for _, vt := range types.VisitTypes() {
			if fee, _ := ds.Contracts[i].Fee(vt); fee.IsZero() {
				missingFees++
			}
		}
	}

	var issues []string
	if missingFees > 0 {
		issues = append(issues, fmt.Sprintf("%d site contract fees are zero or missing", missingFees))
	}
	if missingVisitDates > 0 {
		issues = append(issues, fmt.Sprintf("%d visits have missing dates", missingVisitDates))
	}
	if missingPaymentDates > 0 {
		issues = append(issues, fmt.Sprintf("%d payments have missing dates", missingPaymentDates))
	}

	var sb strings.Builder
	sb.WriteString("DATA VALIDATION COMPLETE\n\n")
	sb.WriteString("Summary Statistics:\n")
	fmt.Fprintf(&sb, "- Sites: %d\n", len(ds.Contracts))
	fmt.Fprintf(&sb, "- Patients: %d\n", len(patients))
	fmt.Fprintf(&sb, "- Total Visits: %d (%d completed, %d screen failures)\n", len(ds.Visits), completed, screenFailures)
	fmt.Fprintf(&sb, "- Total Payments Recorded: %d\n", len(ds.Payments))
	fmt.Fprintf(&sb, "- Total Amount Paid: %s\n", report.USD(totalPaid))
	fmt.Fprintf(&sb, "- Total Budget Allocated: %s\n\n", report.USD(totalBudget))

	fmt.Fprintf(&sb, "Data Quality Issues: %d\n", len(issues))
	if len(issues) == 0 {
		sb.WriteString("- No critical data quality issues detected\n")
	}
	for _, issue := range issues {
		fmt.Fprintf(&sb, "- %s\n", issue)
	}
	return sb.String()
}
