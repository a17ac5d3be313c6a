// Package apperrors tests verify the custom error types, their Error()
// messages, Is() matching semantics and compatibility with errors.Is()
// and errors.As() through fmt.Errorf wrapping.
package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

// ---------------------------------------------------------------------------
// ErrNotFound
// ---------------------------------------------------------------------------

func TestErrNotFound_Error(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      *ErrNotFound
		expected string
	}{
		{
			name:     "with string ID",
			err:      &ErrNotFound{Resource: "job", ID: "abc"},
			expected: "job with ID abc not found",
		},
		{
			name:     "with nil ID",
			err:      &ErrNotFound{Resource: "job", ID: nil},
			expected: "job not found",
		},
		{
			name:     "job constructor",
			err:      NewJobNotFoundError("0190f"),
			expected: "job with ID 0190f not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrNotFound_Is(t *testing.T) {
	t.Parallel()
	wrapped := fmt.Errorf("lookup: %w", NewNotFoundError("job", 1))

	if !errors.Is(wrapped, &ErrNotFound{}) {
		t.Error("Expected wrapped ErrNotFound to match with errors.Is")
	}
	if errors.Is(wrapped, &ErrArtifactNotFound{}) {
		t.Error("Expected ErrNotFound not to match ErrArtifactNotFound")
	}
}

// ---------------------------------------------------------------------------
// ErrInvalidRequest
// ---------------------------------------------------------------------------

func TestErrInvalidRequest_Error(t *testing.T) {
	t.Parallel()
	withField := &ErrInvalidRequest{Field: "format", Message: "unsupported format \"avi\""}
	if got := withField.Error(); got != "invalid format: unsupported format \"avi\"" {
		t.Errorf("Error() = %q", got)
	}

	withoutField := &ErrInvalidRequest{Message: "URL parameter is required."}
	if got := withoutField.Error(); got != "URL parameter is required." {
		t.Errorf("Error() = %q", got)
	}
}

// ---------------------------------------------------------------------------
// ErrDownloadFailed / ErrConversionFailed
// ---------------------------------------------------------------------------

func TestErrDownloadFailed_Unwrap(t *testing.T) {
	t.Parallel()
	cause := errors.New("exit status 1")
	err := fmt.Errorf("attempt: %w", &ErrDownloadFailed{URL: "https://example.com/v", Err: cause})

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the tool error")
	}
	if !errors.Is(err, &ErrDownloadFailed{}) {
		t.Error("Expected errors.Is to match ErrDownloadFailed")
	}

	var target *ErrDownloadFailed
	if !errors.As(err, &target) {
		t.Fatal("Expected errors.As to extract ErrDownloadFailed")
	}
	if target.URL != "https://example.com/v" {
		t.Errorf("Expected URL to be preserved, got %q", target.URL)
	}
}

func TestErrConversionFailed_Error(t *testing.T) {
	t.Parallel()
	noCause := &ErrConversionFailed{Input: "a.webm", Format: "mp3"}
	if got := noCause.Error(); got != "conversion of a.webm to mp3 failed" {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("muxer not found")
	withCause := &ErrConversionFailed{Input: "a.webm", Format: "mp3", Err: cause}
	if got := withCause.Error(); got != "conversion of a.webm to mp3 failed: muxer not found" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(withCause, cause) {
		t.Error("Expected errors.Is to reach the transcoder error")
	}
}

// ---------------------------------------------------------------------------
// Artifact errors
// ---------------------------------------------------------------------------

func TestArtifactErrors(t *testing.T) {
	t.Parallel()
	missing := &ErrArtifactMissing{Dir: "/tmp/job-1"}
	if got := missing.Error(); got != "could not determine the final downloaded file path in /tmp/job-1" {
		t.Errorf("Error() = %q", got)
	}

	notFound := fmt.Errorf("open: %w", &ErrArtifactNotFound{Key: "id/file.mp3"})
	if !errors.Is(notFound, &ErrArtifactNotFound{}) {
		t.Error("Expected wrapped ErrArtifactNotFound to match")
	}
	if errors.Is(notFound, &ErrArtifactMissing{}) {
		t.Error("Expected ErrArtifactNotFound not to match ErrArtifactMissing")
	}
}

func TestErrBusy_Wrapped(t *testing.T) {
	t.Parallel()
	if !errors.Is(fmt.Errorf("fetch: %w", ErrBusy), ErrBusy) {
		t.Error("Expected wrapped ErrBusy to match")
	}
}
