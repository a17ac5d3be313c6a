package storage

import (
	"context"
	"time"

	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/metrics"
)

// Sweeper removes artifacts older than a cutoff.
type Sweeper interface {
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// Janitor periodically deletes artifacts past their retention.
type Janitor struct {
	sweeper   Sweeper
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewJanitor creates a janitor. A non-positive retention disables sweeping.
func NewJanitor(sweeper Sweeper, retention, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Janitor{
		sweeper:   sweeper,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// SweepOnce runs one retention pass.
func (j *Janitor) SweepOnce(ctx context.Context) int {
	if j.retention <= 0 {
		return 0
	}
	logger := config.GetLogger()

	removed, err := j.sweeper.Sweep(ctx, j.now().Add(-j.retention))
	if removed > 0 {
		metrics.ArtifactsSweptTotal.Add(float64(removed))
		logger.Info().Int("removed", removed).Dur("retention", j.retention).Msg("Swept expired artifacts")
	}
	if err != nil {
		logger.Error().Err(err).Msg("Artifact sweep failed")
	}
	return removed
}

// Run sweeps once immediately and then on every interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) error {
	if j.retention <= 0 {
		return nil
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.SweepOnce(ctx)
	for {
		select {
		case <-ticker.C:
			j.SweepOnce(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}
