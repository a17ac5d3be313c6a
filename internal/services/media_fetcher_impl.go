package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/bulkhead"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/cache"
	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/fetcher"
	"github.com/Belphemur/MediaFetch/internal/metrics"
	"github.com/Belphemur/MediaFetch/internal/models"
	"github.com/Belphemur/MediaFetch/internal/storage"
	"github.com/Belphemur/MediaFetch/internal/transcode"
)

// DefaultMediaFetcher implements MediaFetcher on top of the download tool, ffmpeg and
// the artifact store. Identical concurrent requests share one download.
type DefaultMediaFetcher struct {
	downloader fetcher.Downloader
	transcoder transcode.Transcoder
	store      ArtifactStore
	index      cache.Cache
	opts       Options

	jobs     *jobRegistry
	group    singleflight.Group
	retry    retrypolicy.RetryPolicy[*models.Artifact]
	bulkhead bulkhead.Bulkhead[*models.Artifact]
}

// NewMediaFetcher wires the fetch pipeline. index maps request cache keys to
// JSON-encoded artifacts.
func NewMediaFetcher(downloader fetcher.Downloader, transcoder transcode.Transcoder, store ArtifactStore, index cache.Cache, opts Options) MediaFetcher {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.WorkDirectory == "" {
		opts.WorkDirectory = os.TempDir()
	}

	return &DefaultMediaFetcher{
		downloader: downloader,
		transcoder: transcoder,
		store:      store,
		index:      index,
		opts:       opts,
		jobs:       newJobRegistry(opts.JobCapacity, opts.JobRetention),
		retry:      newRetryPolicy(opts),
		bulkhead: bulkhead.NewBuilder[*models.Artifact](uint(opts.MaxConcurrent)).
			WithMaxWaitTime(opts.MaxQueueWait).
			Build(),
	}
}

// OptionsFromConfig reads the download, jobs and storage sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		WorkDirectory: cfg.Download.WorkDirectory,
		Timeout:       config.ParseDuration("download.timeout", cfg.Download.Timeout, 10*time.Minute),
		Retries:       cfg.Download.Retries,
		RetryBackoff:  config.ParseDuration("download.retry_backoff", cfg.Download.RetryBackoff, 2*time.Second),
		MaxConcurrent: cfg.Download.MaxConcurrent,
		MaxQueueWait:  config.ParseDuration("download.max_queue_wait", cfg.Download.MaxQueueWait, 30*time.Second),
		JobRetention:  config.ParseDuration("storage.retention", cfg.Storage.Retention, 24*time.Hour),
		JobCapacity:   cfg.Jobs.Capacity,
	}
}

func newRetryPolicy(opts Options) retrypolicy.RetryPolicy[*models.Artifact] {
	return retrypolicy.NewBuilder[*models.Artifact]().
		AbortIf(func(_ *models.Artifact, err error) bool {
			return isPermanent(err)
		}).
		WithMaxRetries(opts.Retries).
		WithDelay(opts.RetryBackoff).
		ReturnLastFailure().
		OnRetry(func(e failsafe.ExecutionEvent[*models.Artifact]) {
			logger := config.GetLogger()
			logger.Warn().
				Err(e.LastError()).
				Int("attempt", e.Attempts()).
				Msg("Fetch attempt failed, retrying")
		}).
		Build()
}

// isPermanent reports errors another attempt cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, &apperrors.ErrInvalidRequest{}) ||
		errors.Is(err, bulkhead.ErrFull) ||
		errors.Is(err, apperrors.ErrBusy) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Fetch implements MediaFetcher.
func (f *DefaultMediaFetcher) Fetch(ctx context.Context, req models.FetchRequest) (*models.Job, error) {
	logger := config.GetLogger()
	if !req.Format.Valid() {
		return nil, &apperrors.ErrInvalidRequest{Field: "format", Message: fmt.Sprintf("unsupported format %q", req.Format)}
	}

	job := models.NewJob(req)
	f.jobs.add(job)

	logger.Info().
		Str("job", job.ID.String()).
		Str("url", req.URL).
		Str("format", req.Format.String()).
		Msg("Fetch requested")

	if artifact := f.lookup(ctx, req); artifact != nil {
		metrics.FetchesTotal.WithLabelValues(req.Format.String(), metrics.StatusCached).Inc()
		logger.Info().Str("job", job.ID.String()).Str("key", artifact.Key).Msg("Serving artifact from index")
		return f.jobs.succeed(job, artifact, true), nil
	}

	f.jobs.start(job)
	ch := f.group.DoChan(req.CacheKey(), func() (interface{}, error) {
		return f.fetchShared(ctx, req, job.ID)
	})

	select {
	case res := <-ch:
		return f.finish(job, req, res)
	case <-ctx.Done():
		// The shared fetch keeps running; record its outcome once it lands.
		go func() {
			_, _ = f.finish(job, req, <-ch)
		}()
		return nil, ctx.Err()
	}
}

// Job implements MediaFetcher.
func (f *DefaultMediaFetcher) Job(id uuid.UUID) (*models.Job, bool) {
	return f.jobs.get(id)
}

// Close implements MediaFetcher.
func (f *DefaultMediaFetcher) Close() error {
	return f.index.Close()
}

func (f *DefaultMediaFetcher) finish(job *models.Job, req models.FetchRequest, res singleflight.Result) (*models.Job, error) {
	logger := config.GetLogger()
	format := req.Format.String()

	if res.Err != nil {
		status := metrics.StatusError
		if errors.Is(res.Err, apperrors.ErrBusy) {
			status = metrics.StatusBusy
		}
		metrics.FetchesTotal.WithLabelValues(format, status).Inc()
		logger.Error().
			Err(res.Err).
			Str("job", job.ID.String()).
			Str("url", req.URL).
			Msg("Fetch failed")
		f.jobs.fail(job, res.Err)
		return nil, res.Err
	}

	artifact := res.Val.(*models.Artifact)
	metrics.FetchesTotal.WithLabelValues(format, metrics.StatusSuccess).Inc()
	logger.Info().
		Str("job", job.ID.String()).
		Str("key", artifact.Key).
		Bool("shared", res.Shared).
		Msg("Fetch finished")
	return f.jobs.succeed(job, artifact, false), nil
}

// fetchShared runs once per cache key. It outlives the caller that started it so
// coalesced callers are not failed by someone else's disconnect.
func (f *DefaultMediaFetcher) fetchShared(ctx context.Context, req models.FetchRequest, jobID uuid.UUID) (*models.Artifact, error) {
	runCtx := context.WithoutCancel(ctx)
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, f.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	artifact, err := failsafe.With[*models.Artifact](f.retry, f.bulkhead).
		WithContext(runCtx).
		Get(func() (*models.Artifact, error) {
			return f.attempt(runCtx, req, jobID)
		})
	metrics.FetchDuration.WithLabelValues(req.Format.String()).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, bulkhead.ErrFull) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrBusy, err)
		}
		return nil, err
	}

	f.remember(req, artifact)
	return artifact, nil
}

// attempt performs one download, optional conversion and store upload inside a
// scratch directory that is always removed.
func (f *DefaultMediaFetcher) attempt(ctx context.Context, req models.FetchRequest, jobID uuid.UUID) (*models.Artifact, error) {
	logger := config.GetLogger()
	metrics.FetchesInFlight.Inc()
	defer metrics.FetchesInFlight.Dec()

	dir, err := os.MkdirTemp(f.opts.WorkDirectory, "job-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("Failed to remove scratch directory")
		}
	}()

	res, err := f.downloader.Download(ctx, fetcher.Request{URL: req.URL, Format: req.Format, Dir: dir})
	if err != nil {
		return nil, err
	}

	path := res.Path
	if transcode.NeedsTranscode(path, req.Format) {
		path, err = f.transcoder.Transcode(ctx, path, req.Format)
		if err != nil {
			return nil, err
		}
	}

	duration, err := f.transcoder.Probe(path)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("Could not probe duration")
	}

	filename := filepath.Base(path)
	key := storage.Key(jobID.String(), filename)
	contentType := models.ContentTypeForFile(filename)

	size, err := f.store.Put(ctx, key, path, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store artifact: %w", err)
	}

	logger.Info().Str("key", key).Int64("size", size).Msg("Artifact stored")

	return &models.Artifact{
		Key:         key,
		Filename:    filename,
		Size:        size,
		ContentType: contentType,
		Title:       res.Title,
		Duration:    duration,
		Format:      req.Format,
		SourceURL:   req.URL,
		CreatedAt:   time.Now(),
	}, nil
}

// lookup returns the indexed artifact for req if it is still in the store. Stale
// or unreadable entries are dropped.
func (f *DefaultMediaFetcher) lookup(ctx context.Context, req models.FetchRequest) *models.Artifact {
	logger := config.GetLogger()
	key := req.CacheKey()

	data, ok := f.index.Get(key)
	if !ok {
		return nil
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		logger.Warn().Err(err).Str("cacheKey", key).Msg("Dropping unreadable index entry")
		f.index.Delete(key)
		return nil
	}

	exists, err := f.store.Exists(ctx, artifact.Key)
	if err != nil {
		logger.Warn().Err(err).Str("key", artifact.Key).Msg("Could not verify indexed artifact")
		return nil
	}
	if !exists {
		logger.Debug().Str("key", artifact.Key).Msg("Indexed artifact is gone, refetching")
		f.index.Delete(key)
		return nil
	}
	return &artifact
}

func (f *DefaultMediaFetcher) remember(req models.FetchRequest, artifact *models.Artifact) {
	data, err := json.Marshal(artifact)
	if err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Str("key", artifact.Key).Msg("Failed to encode artifact for index")
		return
	}
	f.index.Set(req.CacheKey(), data)
}
