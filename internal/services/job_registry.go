package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Belphemur/MediaFetch/internal/models"
)

// jobRegistry keeps recent jobs in an expiring LRU. Stored jobs are only mutated
// under mu; readers always get a clone.
type jobRegistry struct {
	mu   sync.Mutex
	jobs *lru.LRU[uuid.UUID, *models.Job]
}

func newJobRegistry(capacity int, ttl time.Duration) *jobRegistry {
	if capacity <= 0 {
		capacity = 1000
	}
	return &jobRegistry{
		jobs: lru.NewLRU[uuid.UUID, *models.Job](capacity, nil, ttl),
	}
}

func (r *jobRegistry) add(job *models.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs.Add(job.ID, job)
}

func (r *jobRegistry) get(id uuid.UUID) (*models.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs.Get(id)
	if !ok {
		return nil, false
	}
	return job.Clone(), true
}

// update applies fn to the live job. Jobs that already finished are left alone.
func (r *jobRegistry) update(job *models.Job, fn func(j *models.Job)) *models.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !job.Status.IsFinished() {
		fn(job)
	}
	return job.Clone()
}

func (r *jobRegistry) start(job *models.Job) *models.Job {
	return r.update(job, func(j *models.Job) {
		j.Status = models.JobStatusRunning
	})
}

func (r *jobRegistry) succeed(job *models.Job, artifact *models.Artifact, cached bool) *models.Job {
	return r.update(job, func(j *models.Job) {
		a := *artifact
		j.Status = models.JobStatusSucceeded
		j.Artifact = &a
		j.Cached = cached
		j.FinishedAt = time.Now()
	})
}

func (r *jobRegistry) fail(job *models.Job, err error) *models.Job {
	return r.update(job, func(j *models.Job) {
		j.Status = models.JobStatusFailed
		j.Error = err.Error()
		j.FinishedAt = time.Now()
	})
}
