package domain

import "errors"

// Ingestion job statuses as stored by the API service
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// Job is the worker's view of an ingestion job row
type Job struct {
	JobID  string `db:"id"`
	Status string `db:"status"`
}

// JobDocument is one member document of a job, in processing order
type JobDocument struct {
	DocumentID string `db:"id"`
	Name       string `db:"name"`
}

// JobMessage is a queue message naming a job to process
type JobMessage struct {
	JobID       string `json:"job_id"`
	DeliveryTag uint64 `json:"-"`
}

var (
	// ErrJobNotClaimable is returned when the pending->running transition
	// matches no row: the job is unknown, already claimed, or finalized.
	// The message is dropped without retry in all three cases.
	ErrJobNotClaimable = errors.New("job not found or not in pending status")
)
