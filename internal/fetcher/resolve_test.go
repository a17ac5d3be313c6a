package fetcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		files    map[string]int
		hint     string
		absHint  bool
		expected string
	}{
		{
			name:     "existing absolute hint wins over larger file",
			files:    map[string]int{"Song-abc.mp3": 10, "Song-abc.webm": 100},
			hint:     "Song-abc.mp3",
			absHint:  true,
			expected: "Song-abc.mp3",
		},
		{
			name:     "missing hint falls back to largest file",
			files:    map[string]int{"a.m4a": 10, "b.webm": 50},
			hint:     "gone.mp4",
			expected: "b.webm",
		},
		{
			name:     "partial files ignored",
			files:    map[string]int{"clip.mp4.part": 500, "clip.f137.mp4.ytdl": 400, "clip.mp4": 20},
			expected: "clip.mp4",
		},
		{
			name:     "fragment files ignored",
			files:    map[string]int{"clip.mp4.part-Frag3": 500, "clip.mkv": 5},
			expected: "clip.mkv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			for name, size := range tt.files {
				writeFile(t, dir, name, size)
			}

			hint := tt.hint
			if tt.absHint {
				hint = filepath.Join(dir, hint)
			}

			got, err := ResolveOutputPath(dir, hint)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if filepath.Base(got) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, filepath.Base(got))
			}
		})
	}
}

func TestResolveOutputPath_RelativeHint(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "Talk-xyz.opus", 3)
	writeFile(t, dir, "bigger.webm", 30)

	got, err := ResolveOutputPath(dir, "Talk-xyz.opus")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != filepath.Join(dir, "Talk-xyz.opus") {
		t.Errorf("Expected relative hint resolved inside dir, got %s", got)
	}
}

func TestResolveOutputPath_Empty(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "only.part", 10)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("Failed to create subdir: %v", err)
	}

	_, err := ResolveOutputPath(dir, "")
	if !errors.Is(err, &apperrors.ErrArtifactMissing{}) {
		t.Fatalf("Expected ErrArtifactMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "could not determine the final downloaded file path") {
		t.Errorf("Unexpected message: %v", err)
	}
}

func TestResolveOutputPath_MissingDir(t *testing.T) {
	t.Parallel()
	_, err := ResolveOutputPath(filepath.Join(t.TempDir(), "nope"), "")
	if err == nil {
		t.Fatal("Expected error for missing directory")
	}
	if errors.Is(err, &apperrors.ErrArtifactMissing{}) {
		t.Error("Expected a listing error, not ErrArtifactMissing")
	}
}
