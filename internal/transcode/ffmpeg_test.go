package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/models"
)

const fakeFfprobe = `#!/bin/sh
echo '{"format":{"filename":"in.webm","duration":"12.500000","format_name":"webm"},"streams":[]}'
`

// ffmpegScript builds a stand-in for ffmpeg. The output is the last .mp3 argument;
// the arguments are recorded next to it before body runs.
func ffmpegScript(body string) string {
	return `#!/bin/sh
for arg in "$@"; do
  case "$arg" in
    *.mp3) out="$arg" ;;
  esac
done
echo "$@" > "$(dirname "$out")/ffmpeg-args.log"
` + body
}

func installTools(t *testing.T, ffmpegBody string) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	ffmpegPath := filepath.Join(dir, "ffmpeg")
	ffprobePath := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(ffmpegPath, []byte(ffmpegScript(ffmpegBody)), 0o755); err != nil {
		t.Fatalf("Failed to write fake ffmpeg: %v", err)
	}
	if err := os.WriteFile(ffprobePath, []byte(fakeFfprobe), 0o755); err != nil {
		t.Fatalf("Failed to write fake ffprobe: %v", err)
	}
	return ffmpegPath, ffprobePath
}

func writeInput(t *testing.T) string {
	t.Helper()
	input := filepath.Join(t.TempDir(), "Song-abc.webm")
	if err := os.WriteFile(input, []byte("webm-bytes"), 0o644); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}
	return input
}

func TestFFmpegTranscoder_Transcode(t *testing.T) {
	ffmpegPath, ffprobePath := installTools(t, `printf 'mp3-bytes' > "$out"
`)
	input := writeInput(t)

	tr := NewFFmpegTranscoder(ffmpegPath, ffprobePath)
	out, err := tr.Transcode(context.Background(), input, models.FormatMP3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != OutputPath(input, models.FormatMP3) {
		t.Errorf("Expected output %s, got %s", OutputPath(input, models.FormatMP3), out)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "mp3-bytes" {
		t.Fatalf("Expected converted bytes, got %q (%v)", string(data), err)
	}

	args, err := os.ReadFile(filepath.Join(filepath.Dir(input), "ffmpeg-args.log"))
	if err != nil {
		t.Fatalf("Failed to read recorded args: %v", err)
	}
	for _, want := range []string{input, "mp3", "libmp3lame", "-vn", "-y"} {
		if !strings.Contains(string(args), want) {
			t.Errorf("Expected ffmpeg args to contain %q, got %s", want, string(args))
		}
	}
}

func TestFFmpegTranscoder_FailedRunIsConversionError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "non-zero exit with partial output",
			body: `printf 'partial' > "$out"
exit 1
`,
		},
		{
			name: "empty output",
			body: `: > "$out"
`,
		},
		{
			name: "no output",
			body: `exit 0
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ffmpegPath, ffprobePath := installTools(t, tt.body)
			input := writeInput(t)

			tr := NewFFmpegTranscoder(ffmpegPath, ffprobePath)
			out, err := tr.Transcode(context.Background(), input, models.FormatMP3)
			if !errors.Is(err, &apperrors.ErrConversionFailed{}) {
				t.Fatalf("Expected ErrConversionFailed, got out=%q err=%v", out, err)
			}
			if out != "" {
				t.Errorf("Expected no output path on failure, got %s", out)
			}
			if tt.name == "non-zero exit with partial output" {
				if _, err := os.Stat(OutputPath(input, models.FormatMP3)); !os.IsNotExist(err) {
					t.Errorf("Expected partial output to be removed, stat err=%v", err)
				}
			}
		})
	}
}

func TestFFmpegTranscoder_Probe(t *testing.T) {
	ffmpegPath, ffprobePath := installTools(t, "exit 0\n")
	input := writeInput(t)

	tr := NewFFmpegTranscoder(ffmpegPath, ffprobePath)
	duration, err := tr.Probe(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if duration != "12.500000" {
		t.Errorf("Expected duration 12.500000, got %q", duration)
	}
}
