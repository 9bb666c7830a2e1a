package domain

import "fmt"

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ParseJobStatus parses the string form stored in the jobs table.
func ParseJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case JobPending, JobRunning, JobCompleted, JobFailed:
		return JobStatus(s), nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// Active reports whether the job is still in flight.
func (s JobStatus) Active() bool {
	return s == JobPending || s == JobRunning
}

// JobSource records which front-end submitted a job.
type JobSource string

const (
	JobSourceCLI JobSource = "cli"
	JobSourceGUI JobSource = "gui"
)

// Job tracks one in-flight or finished generation.
type Job struct {
	ID          int64
	Status      JobStatus
	Model       string
	Prompt      string
	Tags        []string
	Source      JobSource
	RefCount    int
	CreatedAt   string
	StartedAt   string
	CompletedAt string
	RecordID    int64 // linked output record, 0 until completed
	Error       string
}
