package fetcher

import (
	"fmt"
	"os"

	"github.com/Belphemur/MediaFetch/internal/config"
)

// writeCookieFile stores a Netscape cookie jar in a temporary file. The returned
// cleanup removes it and is safe to call more than once.
func writeCookieFile(contents string) (string, func(), error) {
	f, err := os.CreateTemp("", "ytdlp-cookies-*.txt")
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create cookie file: %w", err)
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("path", path).Msg("Failed to remove cookie file")
		}
	}

	if _, err := f.WriteString(contents); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("failed to write cookie file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to close cookie file: %w", err)
	}
	return path, cleanup, nil
}
