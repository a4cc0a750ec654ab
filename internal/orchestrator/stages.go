// Package orchestrator sequences the reconciliation pipeline as an explicit
// state machine: five stages executed strictly in order on a background
// goroutine, with per-stage progress visible to a polling caller.
package orchestrator

// Stage identifiers, in execution order.
const (
	StageDataIngestion      = "data_ingestion"
	StageReconciliation     = "reconciliation"
	StageContractCompliance = "contract_compliance"
	StageBudgetAnalysis     = "budget_analysis"
	StageReportGeneration   = "report_generation"
)

// stageDef describes one pipeline stage.
type stageDef struct {
	ID          string
	Name        string
	Description string
}

// stageDefs lists the pipeline stages in execution order. Stage status
// records are created from this list, so the slice order is the execution
// order.
var stageDefs = []stageDef{
	{StageDataIngestion, "Data Ingestion", "Loading and validating payment data"},
	{StageReconciliation, "Payment Reconciliation", "Matching visits to payments"},
	{StageContractCompliance, "Contract Compliance", "Validating payment amounts"},
	{StageBudgetAnalysis, "Budget Analysis", "Analyzing budget health"},
	{StageReportGeneration, "Report Generation", "Compiling executive report"},
}
