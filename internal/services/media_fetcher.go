package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Belphemur/MediaFetch/internal/models"
)

// MediaFetcher turns fetch requests into stored artifacts.
type MediaFetcher interface {
	// Fetch downloads req.URL, converts it to req.Format when needed and stores the
	// result. The returned job is a snapshot in a terminal state when err is nil.
	Fetch(ctx context.Context, req models.FetchRequest) (*models.Job, error)

	// Job returns a snapshot of a recent job.
	Job(id uuid.UUID) (*models.Job, bool)

	// Close releases the artifact index.
	Close() error
}

// ArtifactStore is the subset of the artifact store the fetcher writes to.
type ArtifactStore interface {
	Put(ctx context.Context, key, path, contentType string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Options tunes the fetch pipeline.
type Options struct {
	WorkDirectory string
	Timeout       time.Duration
	Retries       int
	RetryBackoff  time.Duration
	MaxConcurrent int
	MaxQueueWait  time.Duration
	// JobRetention bounds how long finished jobs can be looked up.
	JobRetention time.Duration
	// JobCapacity caps the job registry. Past it the oldest jobs are evicted
	// before their retention ends.
	JobCapacity int
}
