package api

import (
	"net/http"
	"strings"
	"testing"
)

const audioBytes = "ID3-0123456789-audio"

func TestServeDownload(t *testing.T) {
	env := newTestEnv(t, nil)
	putArtifact(t, env.store, "job-1/Song-abc.mp3", audioBytes, "audio/mpeg")

	rec := env.do(http.MethodGet, "/downloads/job-1/Song-abc.mp3", map[string]string{"Accept-Encoding": "gzip"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != audioBytes {
		t.Errorf("Expected artifact bytes, got %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg, got %s", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=Song-abc.mp3" {
		t.Errorf("Unexpected Content-Disposition %q", got)
	}
	if rec.Header().Get("Content-Encoding") != "" {
		t.Error("Expected media bytes to be sent uncompressed")
	}
}

func TestServeDownload_Range(t *testing.T) {
	env := newTestEnv(t, nil)
	putArtifact(t, env.store, "job-1/Song-abc.mp3", audioBytes, "audio/mpeg")

	rec := env.do(http.MethodGet, "/downloads/job-1/Song-abc.mp3", map[string]string{"Range": "bytes=4-13"})
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("Expected 206, got %d", rec.Code)
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("Expected ranged bytes, got %q", rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Range"), "bytes 4-13/") {
		t.Errorf("Unexpected Content-Range %q", rec.Header().Get("Content-Range"))
	}
}

func TestServeDownload_Head(t *testing.T) {
	env := newTestEnv(t, nil)
	putArtifact(t, env.store, "job-1/clip.webm", "webm-bytes", "video/webm")

	rec := env.do(http.MethodHead, "/downloads/job-1/clip.webm", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty HEAD body, got %d bytes", rec.Body.Len())
	}
	if rec.Header().Get("Content-Length") != "10" {
		t.Errorf("Expected Content-Length 10, got %q", rec.Header().Get("Content-Length"))
	}
}

func TestServeDownload_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, target := range []string{
		"/downloads/job-1/missing.mp3",
		"/downloads/job-1/..",
		"/downloads/job-1/%2e%2e",
	} {
		rec := env.do(http.MethodGet, target, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", target, rec.Code)
			continue
		}
		if strings.Contains(target, "missing") {
			if body := decode[ErrorResponse](t, rec); body.Detail != "File not found." {
				t.Errorf("Expected 'File not found.', got %q", body.Detail)
			}
		}
	}

	if rec := env.do(http.MethodHead, "/downloads/job-1/missing.mp3", nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for HEAD on a missing artifact, got %d", rec.Code)
	}
}
