package model

import "time"

// RunnerStatus is the process-wide state of the scrape runner.
type RunnerStatus string

const (
	RunnerStatusIdle    RunnerStatus = "idle"
	RunnerStatusRunning RunnerStatus = "running"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one scrape, whether triggered by the API, the schedule or the CLI.
type Run struct {
	ID             string     `json:"id" db:"id"`
	Status         RunStatus  `json:"status" db:"status"`
	TriggeredBy    string     `json:"triggered_by" db:"triggered_by"` // "api", "schedule" or "cli"
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Duration       *int64     `json:"duration_ms,omitempty" db:"duration_ms"`
	ChallengeCount int        `json:"challenge_count" db:"challenge_count"`
	FailedCount    int        `json:"failed_count" db:"failed_count"`
	SnapshotTime   *string    `json:"snapshot_timestamp,omitempty" db:"snapshot_timestamp"`
	Error          *string    `json:"error,omitempty" db:"error"`
}

// Finish stamps the run as completed or failed depending on err.
func (r *Run) Finish(at time.Time, err error) {
	r.FinishedAt = &at
	d := at.Sub(r.StartedAt).Milliseconds()
	r.Duration = &d
	if err != nil {
		msg := err.Error()
		r.Error = &msg
		r.Status = RunStatusFailed
		return
	}
	r.Status = RunStatusCompleted
}

// StatusReport is what the runner exposes to callers polling for progress.
type StatusReport struct {
	Status     RunnerStatus `json:"status"`
	CurrentRun *Run         `json:"current_run,omitempty"`
	LastRun    *Run         `json:"last_run,omitempty"`
}
