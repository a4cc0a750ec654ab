package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvestigation() *Investigation {
	now := time.Now()
	return &Investigation{
		InvestigationID: "abc-123",
		Status:          StatusRunning,
		StartedAt:       now,
		Stages: []StageStatus{
			{
				StageID:   "data_ingestion",
				StageName: "Data Ingestion & Validation",
				Status:    StatusComplete,
				StartedAt: &now,
				TasksCompleted: []StageTask{
					{TaskName: "Load and validate dataset", CompletedAt: now, OutputPreview: "ok"},
				},
			},
			{StageID: "reconciliation", Status: StatusRunning, TasksCompleted: []StageTask{}},
		},
	}
}

func TestInvestigation_CloneIsDeep(t *testing.T) {
	inv := sampleInvestigation()
	clone := inv.Clone()

	require.Equal(t, inv, clone)

	// Mutating the clone must not leak into the original.
	clone.Stages[0].Status = StatusError
	clone.Stages[0].TasksCompleted[0].TaskName = "changed"
	*clone.Stages[0].StartedAt = time.Time{}

	assert.Equal(t, StatusComplete, inv.Stages[0].Status)
	assert.Equal(t, "Load and validate dataset", inv.Stages[0].TasksCompleted[0].TaskName)
	assert.False(t, inv.Stages[0].StartedAt.IsZero())
}

func TestInvestigation_Sealed(t *testing.T) {
	inv := sampleInvestigation()
	assert.False(t, inv.Sealed())

	inv.Status = StatusComplete
	assert.True(t, inv.Sealed())

	inv.Status = StatusError
	assert.True(t, inv.Sealed())
}
