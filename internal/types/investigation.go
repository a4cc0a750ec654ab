package types

import "time"

// Status is the lifecycle state shared by investigations and stages.
type Status string

// Lifecycle states. An investigation starts running immediately; it never
// rests in pending.
const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// StageTask records one completed unit of work within a stage.
type StageTask struct {
	TaskName      string    `json:"task_name"`
	CompletedAt   time.Time `json:"completed_at"`
	OutputPreview string    `json:"output_preview,omitempty"`
}

// StageStatus tracks one pipeline stage of an investigation.
type StageStatus struct {
	StageID         string      `json:"stage_id"`
	StageName       string      `json:"stage_name"`
	Status          Status      `json:"status"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	TasksCompleted  []StageTask `json:"tasks_completed"`
	CurrentActivity string      `json:"current_activity,omitempty"`
	ErrorMessage    string      `json:"error_message,omitempty"`
}

// Investigation is the full record of one reconciliation run. It is mutated
// in place while running and sealed once the overall status reaches
// complete or error.
type Investigation struct {
	InvestigationID string        `json:"investigation_id"`
	Status          Status        `json:"status"`
	StartedAt       time.Time     `json:"started_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	Stages          []StageStatus `json:"stages"`
	FinalReport     string        `json:"final_report,omitempty"`
	ErrorMessage    string        `json:"error_message,omitempty"`
}

// Clone returns a deep copy of the investigation. Readers receive clones so
// that a status read during an in-flight mutation never observes a
// half-updated stage list.
func (inv *Investigation) Clone() *Investigation {
	out := *inv
	if inv.CompletedAt != nil {
		t := *inv.CompletedAt
		out.CompletedAt = &t
	}
	out.Stages = make([]StageStatus, len(inv.Stages))
	for i, st := range inv.Stages {
		cp := st
		if st.StartedAt != nil {
			t := *st.StartedAt
			cp.StartedAt = &t
		}
		if st.CompletedAt != nil {
			t := *st.CompletedAt
			cp.CompletedAt = &t
		}
		cp.TasksCompleted = make([]StageTask, len(st.TasksCompleted))
		copy(cp.TasksCompleted, st.TasksCompleted)
		out.Stages[i] = cp
	}
	return &out
}

// Sealed reports whether the investigation has reached a terminal state.
func (inv *Investigation) Sealed() bool {
	return inv.Status == StatusComplete || inv.Status == StatusError
}
