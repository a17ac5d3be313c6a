package fetcher

import (
	"context"

	"github.com/Belphemur/MediaFetch/internal/models"
)

// OutputTemplate names downloaded files after the media title and extractor id.
const OutputTemplate = "%(title)s-%(id)s.%(ext)s"

// Request describes one download tool run.
type Request struct {
	URL    string
	Format models.Format
	// Dir is the scratch directory the tool writes into. It must exist.
	Dir string
}

// Result is what a successful run produced.
type Result struct {
	Path  string
	Title string
}

// Downloader fetches remote media into a local directory.
type Downloader interface {
	Download(ctx context.Context, req Request) (*Result, error)
}
