package cache

import "github.com/rs/zerolog"

// Logger receives errors from cache backends that cannot return them to callers.
type Logger interface {
	Error(msg string, err error)
}

type zerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologLogger adapts a zerolog logger to the cache Logger interface.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologAdapter{logger: l.With().Str("component", "cache").Logger()}
}

func (z *zerologAdapter) Error(msg string, err error) {
	z.logger.Error().Err(err).Msg(msg)
}
