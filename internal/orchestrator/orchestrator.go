package orchestrator

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jonathan/trial-reconciler/internal/budget"
	"github.com/jonathan/trial-reconciler/internal/compliance"
	"github.com/jonathan/trial-reconciler/internal/dataset"
	"github.com/jonathan/trial-reconciler/internal/narrative"
	"github.com/jonathan/trial-reconciler/internal/recon"
	"github.com/jonathan/trial-reconciler/internal/report"
	"github.com/jonathan/trial-reconciler/internal/types"
)

// DefaultPreviewChars caps the stored output preview per completed task.
const DefaultPreviewChars = 500

// Source supplies the immutable dataset for one investigation.
type Source interface {
	Load(ctx context.Context) (*types.Dataset, error)
}

// Store persists terminal investigation records. It is optional and
// best-effort: the in-memory registry stays authoritative.
type Store interface {
	SaveInvestigation(ctx context.Context, inv *types.Investigation) error
}

// Options tunes the analysis thresholds and progress tracking.
type Options struct {
	MaterialityThreshold       decimal.Decimal
	BudgetVarianceThresholdPct float64
	TopSites                   int
	OverBudgetTop              int
	UnderBudgetTop             int
	PreviewChars               int
	NarrativeRetries           int
}

// DefaultOptions returns the reference thresholds.
func DefaultOptions() Options {
	return Options{
		MaterialityThreshold:       compliance.DefaultThreshold,
		BudgetVarianceThresholdPct: budget.DefaultVarianceThresholdPct,
		TopSites:                   recon.DefaultTopSites,
		OverBudgetTop:              5,
		UnderBudgetTop:             3,
		PreviewChars:               DefaultPreviewChars,
		NarrativeRetries:           2,
	}
}

// Orchestrator starts investigations and drives their pipelines on
// background goroutines. Each investigation is independent; the registry is
// the only shared mutable state.
type Orchestrator struct {
	registry   *Registry
	source     Source
	summarizer narrative.Summarizer
	store      Store
	opts       Options
}

// New creates an orchestrator. store may be nil to disable persistence.
func New(source Source, summarizer narrative.Summarizer, store Store, opts Options) *Orchestrator {
	if opts.PreviewChars < 1 {
		opts.PreviewChars = DefaultPreviewChars
	}
	if opts.OverBudgetTop < 1 {
		opts.OverBudgetTop = 5
	}
	if opts.UnderBudgetTop < 1 {
		opts.UnderBudgetTop = 3
	}
	return &Orchestrator{
		registry:   NewRegistry(),
		source:     source,
		summarizer: narrative.WithRetry(summarizer, opts.NarrativeRetries),
		store:      store,
		opts:       opts,
	}
}

// Get returns a snapshot of an investigation's current state.
func (o *Orchestrator) Get(id string) (*types.Investigation, bool) {
	return o.registry.Get(id)
}

// Start creates a new investigation with all stages pending, marks the
// first stage running, spawns the pipeline, and returns the identifier
// immediately. Cancellation of a started investigation is not supported: it
// runs to completion or error.
func (o *Orchestrator) Start(_ context.Context) string {
	id := uuid.New().String()
	now := time.Now()

	stages := make([]types.StageStatus, len(stageDefs))
	for i, def := range stageDefs {
		stages[i] = types.StageStatus{
			StageID:         def.ID,
			StageName:       def.Name,
			Status:          types.StatusPending,
			TasksCompleted:  []types.StageTask{},
			CurrentActivity: def.Description,
		}
	}
	stages[0].Status = types.StatusRunning
	stages[0].StartedAt = &now

	o.registry.put(&types.Investigation{
		InvestigationID: id,
		Status:          types.StatusRunning,
		StartedAt:       now,
		Stages:          stages,
	})

	// The pipeline is decoupled from the request that started it.
	go o.run(context.Background(), id)

	return id
}

// run executes the five stages strictly in sequence. A stage error stops
// the pipeline; completed stages keep their results visible.
func (o *Orchestrator) run(ctx context.Context, id string) {
	ds, err := o.source.Load(ctx)
	if err != nil {
		o.failStage(ctx, id, 0, err)
		return
	}
	o.completeStage(id, 0, "Load and validate dataset", dataset.Summary(ds))

	reconFindings := recon.Reconcile(ds.Visits, ds.Payments, o.opts.TopSites)
	o.completeStage(id, 1, "Reconcile visits to payments", report.RenderReconciliation(reconFindings))

	complianceFindings, err := compliance.Check(ds.Contracts, ds.Payments, o.opts.MaterialityThreshold, o.opts.TopSites)
	if err != nil {
		o.failStage(ctx, id, 2, err)
		return
	}
	o.completeStage(id, 2, "Validate payments against contracted rates", report.RenderCompliance(complianceFindings))

	budgetFindings := budget.Analyze(ds.Budgets, ds.Payments, ds.Visits, o.opts.BudgetVarianceThresholdPct)
	o.completeStage(id, 3, "Analyze budget utilization", report.RenderBudget(budgetFindings, o.opts.OverBudgetTop, o.opts.UnderBudgetTop))

	findings := report.Aggregate(reconFindings, complianceFindings, budgetFindings)
	narrativeText, err := o.summarizer.Summarize(ctx, findings)
	if err != nil {
		o.failStage(ctx, id, 4, err)
		return
	}
	finalReport := report.Render(findings, narrativeText)

	now := time.Now()
	o.registry.update(id, func(inv *types.Investigation) {
		stage := &inv.Stages[4]
		stage.TasksCompleted = append(stage.TasksCompleted, types.StageTask{
			TaskName:      "Compile executive report",
			CompletedAt:   now,
			OutputPreview: truncate(finalReport, o.opts.PreviewChars),
		})
		stage.Status = types.StatusComplete
		stage.CompletedAt = &now
		stage.CurrentActivity = "Complete"

		inv.FinalReport = finalReport
		inv.Status = types.StatusComplete
		inv.CompletedAt = &now
	})
	o.persist(ctx, id)
}

// completeStage records the stage's output, marks it complete, and starts
// the next stage if one exists. At most one stage is running at any
// instant.
func (o *Orchestrator) completeStage(id string, idx int, taskName, output string) {
	now := time.Now()
	o.registry.update(id, func(inv *types.Investigation) {
		stage := &inv.Stages[idx]
		stage.TasksCompleted = append(stage.TasksCompleted, types.StageTask{
			TaskName:      taskName,
			CompletedAt:   now,
			OutputPreview: truncate(output, o.opts.PreviewChars),
		})
		stage.Status = types.StatusComplete
		stage.CompletedAt = &now
		stage.CurrentActivity = "Complete"

		if idx+1 < len(inv.Stages) {
			next := &inv.Stages[idx+1]
			next.Status = types.StatusRunning
			next.StartedAt = &now
		}
	})
}

// failStage marks the stage and the whole investigation as errored. No
// further stages start; prior stages' results remain visible.
func (o *Orchestrator) failStage(ctx context.Context, id string, idx int, err error) {
	log.Printf("Investigation %s failed at stage %s: %v", id, stageDefs[idx].ID, err)
	now := time.Now()
	o.registry.update(id, func(inv *types.Investigation) {
		stage := &inv.Stages[idx]
		stage.Status = types.StatusError
		stage.ErrorMessage = err.Error()
		stage.CompletedAt = &now

		inv.Status = types.StatusError
		inv.ErrorMessage = err.Error()
		inv.CompletedAt = &now
	})
	o.persist(ctx, id)
}

// persist saves the terminal record when a store is configured. Failures
// are logged, never fatal.
func (o *Orchestrator) persist(ctx context.Context, id string) {
	if o.store == nil {
		return
	}
	inv, ok := o.registry.Get(id)
	if !ok {
		return
	}
	if err := o.store.SaveInvestigation(ctx, inv); err != nil {
		log.Printf("Warning: failed to persist investigation %s: %v", id, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
