package reporting

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/MediaFetch/internal/config"
)

// Init configures the sentry client. An empty DSN leaves reporting disabled and
// every capture becomes a no-op.
func Init(cfg *config.Config, release string) (bool, error) {
	if cfg.Sentry.DSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		SampleRate:  cfg.Sentry.SampleRate,
		Release:     release,
	})
	if err != nil {
		return false, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return true, nil
}

// CaptureError sends err to sentry with the given tags attached.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events to be sent.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
