package transcode

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Belphemur/MediaFetch/internal/models"
)

// Transcoder converts downloaded media into a requested format.
type Transcoder interface {
	// Transcode writes a converted copy of input next to it and returns its path.
	Transcode(ctx context.Context, input string, format models.Format) (string, error)
	// Probe returns the container duration reported by ffprobe, in seconds.
	Probe(path string) (string, error)
}

// NeedsTranscode reports whether the file at path must be converted to satisfy format.
func NeedsTranscode(path string, format models.Format) bool {
	if format == models.FormatOriginal || format == "" {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ext != format.Extension()
}

// OutputPath swaps the extension of input for the one of format.
func OutputPath(input string, format models.Format) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format.Extension()
}
