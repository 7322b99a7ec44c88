package model

import "time"

// JobStatus is the lifecycle state of a background initialize or reindex.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobType names the index operation a job runs.
type JobType string

const (
	JobTypeInitialize JobType = "initialize"
	JobTypeReindex    JobType = "reindex"
)

// Job is a background index operation started from the HTTP surface.
// Metadata carries the operation's result summary once it finishes.
type Job struct {
	ID          string            `json:"id"`
	Type        JobType           `json:"type"`
	Status      JobStatus         `json:"status"`
	Progress    *JobProgress      `json:"progress,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// JobProgress counts projects handled so far.
type JobProgress struct {
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Message string  `json:"message,omitempty"`
}

// NewJobProgress builds a progress record; Percent is 0 when total is 0.
func NewJobProgress(current, total int, message string) *JobProgress {
	p := &JobProgress{Current: current, Total: total, Message: message}
	if total > 0 {
		p.Percent = float64(current) / float64(total) * 100
	}
	return p
}

// Done reports whether the job has reached a terminal status.
func (j *Job) Done() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
