package operations

import (
	"time"

	"salespulse/internal/cleaning"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/features"
	"salespulse/pkg/contracts/domain"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a Step
type StepState struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    StepStatus     `json:"status"`
	StartTime *time.Time     `json:"start_time,omitempty"`
	EndTime   *time.Time     `json:"end_time,omitempty"`
	Message   string         `json:"message,omitempty"`
	Error     string         `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewStepState creates a pending step state.
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: make(map[string]any),
	}
}

// Start marks the step as active
func (s *StepState) Start() {
	now := time.Now()
	s.Status = StepStatusActive
	s.StartTime = &now
}

// Complete marks the step as completed
func (s *StepState) Complete(message string) {
	s.finish(StepStatusCompleted)
	s.Message = message
}

// Fail marks the step as failed
func (s *StepState) Fail(err error) {
	s.finish(StepStatusFailed)
	s.Error = err.Error()
}

// Skip marks the step as skipped
func (s *StepState) Skip(reason string) {
	s.finish(StepStatusSkipped)
	s.Message = reason
}

// Duration returns the time the step ran, zero if it never started.
func (s *StepState) Duration() time.Duration {
	if s.StartTime == nil || s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(*s.StartTime)
}

func (s *StepState) finish(status StepStatus) {
	now := time.Now()
	s.Status = status
	s.EndTime = &now
}

// Report is the complete outcome of one analysis run. Sections are filled in
// as their steps complete; a failed forecast leaves Forecast and Summary nil
// and sets ForecastError.
type Report struct {
	RunID     string        `json:"run_id"`
	Status    RunStatus     `json:"status"`
	StartTime time.Time     `json:"start_time"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	Steps     []*StepState  `json:"steps"`

	Method  domain.Method `json:"method"`
	Horizon int           `json:"horizon"`

	Input          dataprocessing.DataSummary    `json:"input"`
	CleaningLog    []string                      `json:"cleaning_log"`
	RowsRetained   int                           `json:"rows_retained"`
	RowsRemoved    int                           `json:"rows_removed"`
	Outliers       []cleaning.OutlierReport      `json:"outliers,omitempty"`
	Metrics        *features.Metrics             `json:"metrics,omitempty"`
	Breakdowns     map[string][]features.Segment `json:"breakdowns,omitempty"`
	MonthlyRevenue domain.Series                 `json:"monthly_revenue"`

	Forecast      *domain.ForecastResult  `json:"forecast,omitempty"`
	Summary       *domain.ForecastSummary `json:"summary,omitempty"`
	ForecastError *ForecastFailure        `json:"forecast_error,omitempty"`

	// Cleaned and Features back the CSV exports.
	Cleaned  domain.Table          `json:"-"`
	Features []features.FeatureRow `json:"-"`
}

// Step returns the state of the named step, or nil.
func (r *Report) Step(id string) *StepState {
	for _, s := range r.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// HasFailures reports whether any step failed
func (r *Report) HasFailures() bool {
	for _, s := range r.Steps {
		if s.Status == StepStatusFailed {
			return true
		}
	}
	return false
}

func (r *Report) finish(status RunStatus) {
	now := time.Now()
	r.Status = status
	r.EndTime = &now
	r.Duration = now.Sub(r.StartTime)
}
