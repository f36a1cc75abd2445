package jobrun

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
	TriggerStartup   Trigger = "startup"
	TriggerCLI       Trigger = "cli"
)

// Run is the ledger row of one reconcile attempt. It is written when the
// run starts and overwritten when it ends.
type Run struct {
	ID           string
	JobName      string
	Trigger      Trigger
	Status       Status
	Summary      map[string]any
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
	TraceID      string
	SpanID       string
}
