package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a download job
type JobStatus string

const (
	// JobStatusPending means the job was accepted but no tool is running for it yet
	JobStatusPending JobStatus = "pending"

	// JobStatusRunning means the download or conversion is in progress
	JobStatusRunning JobStatus = "running"

	// JobStatusSucceeded means the artifact is stored and can be served
	JobStatusSucceeded JobStatus = "succeeded"

	// JobStatusFailed means the job ended with an error
	JobStatusFailed JobStatus = "failed"
)

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsFinished returns true if the job reached a terminal state
func (s JobStatus) IsFinished() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// Job is the ephemeral record pairing a request with its outcome
type Job struct {
	ID         uuid.UUID
	URL        string
	Format     Format
	Status     JobStatus
	Artifact   *Artifact
	Error      string
	Cached     bool // served from the artifact index without running the tools
	CreatedAt  time.Time
	FinishedAt time.Time
}

// NewJob creates a pending job for req
func NewJob(req FetchRequest) *Job {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Job{
		ID:        id,
		URL:       req.URL,
		Format:    req.Format,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}
}

// Clone returns a copy of the job that callers may read without synchronization
func (j *Job) Clone() *Job {
	c := *j
	if j.Artifact != nil {
		a := *j.Artifact
		c.Artifact = &a
	}
	return &c
}
