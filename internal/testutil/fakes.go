package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/Belphemur/MediaFetch/internal/fetcher"
	"github.com/Belphemur/MediaFetch/internal/models"
	"github.com/Belphemur/MediaFetch/internal/transcode"
)

// FakeDownloader stands in for yt-dlp by writing a small file into the request dir.
// This is a test helper and should not be used in production code.
type FakeDownloader struct {
	// Ext is the extension of the produced file, "webm" when empty.
	Ext string
	// Errs are returned by successive calls before the downloader starts succeeding.
	Errs []error
	// Gate, when set, blocks every call until it is closed or the context ends.
	Gate chan struct{}

	mu       sync.Mutex
	calls    int
	requests []fetcher.Request
}

// Download implements fetcher.Downloader.
func (d *FakeDownloader) Download(ctx context.Context, req fetcher.Request) (*fetcher.Result, error) {
	d.mu.Lock()
	call := d.calls
	d.calls++
	d.requests = append(d.requests, req)
	d.mu.Unlock()

	if d.Gate != nil {
		select {
		case <-d.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if call < len(d.Errs) && d.Errs[call] != nil {
		return nil, d.Errs[call]
	}

	ext := d.Ext
	if ext == "" {
		ext = "webm"
	}
	path := filepath.Join(req.Dir, "Clip-abc123."+ext)
	if err := os.WriteFile(path, []byte("media:"+req.URL), 0o644); err != nil {
		return nil, err
	}
	return &fetcher.Result{Path: path, Title: "Clip"}, nil
}

// Calls returns how many times Download was invoked.
func (d *FakeDownloader) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Requests returns a copy of every request received.
func (d *FakeDownloader) Requests() []fetcher.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]fetcher.Request(nil), d.requests...)
}

// FakeTranscoder copies the input to the target extension instead of running ffmpeg.
// This is a test helper and should not be used in production code.
type FakeTranscoder struct {
	Err      error
	ProbeErr error
	Duration string

	mu    sync.Mutex
	calls int
}

// Transcode implements transcode.Transcoder.
func (t *FakeTranscoder) Transcode(_ context.Context, input string, format models.Format) (string, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()

	if t.Err != nil {
		return "", t.Err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return "", err
	}
	output := transcode.OutputPath(input, format)
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return "", err
	}
	return output, nil
}

// Probe implements transcode.Transcoder.
func (t *FakeTranscoder) Probe(string) (string, error) {
	if t.ProbeErr != nil {
		return "", t.ProbeErr
	}
	return t.Duration, nil
}

// Calls returns how many conversions were requested.
func (t *FakeTranscoder) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
