package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/floostack/transcoder/ffmpeg"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/metrics"
	"github.com/Belphemur/MediaFetch/internal/models"
)

// audioCodecs pins the encoder for audio targets; video targets let ffmpeg pick.
var audioCodecs = map[models.Format]string{
	models.FormatMP3:  "libmp3lame",
	models.FormatM4A:  "aac",
	models.FormatOpus: "libopus",
	models.FormatWAV:  "pcm_s16le",
	models.FormatFLAC: "flac",
}

// FFmpegTranscoder runs ffmpeg through the transcoder library.
type FFmpegTranscoder struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegTranscoder creates a Transcoder using the given binaries.
func NewFFmpegTranscoder(ffmpegPath, ffprobePath string) Transcoder {
	return &FFmpegTranscoder{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

func (t *FFmpegTranscoder) config(progress bool) *ffmpeg.Config {
	return &ffmpeg.Config{
		ProgressEnabled: progress,
		FfmpegBinPath:   t.ffmpegPath,
		FfprobeBinPath:  t.ffprobePath,
	}
}

func options(format models.Format) *ffmpeg.Options {
	muxer := format.Muxer()
	overwrite := true
	opts := &ffmpeg.Options{
		OutputFormat: &muxer,
		Overwrite:    &overwrite,
	}
	if codec, ok := audioCodecs[format]; ok {
		skipVideo := true
		opts.AudioCodec = &codec
		opts.SkipVideo = &skipVideo
	}
	return opts
}

// Transcode converts input to format. The library drops the error of the wait
// when progress reporting is on, so the exit status is read from the process state.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, input string, format models.Format) (string, error) {
	logger := config.GetLogger()
	output := OutputPath(input, format)

	logger.Info().
		Str("input", input).
		Str("output", output).
		Str("format", format.String()).
		Msg("Starting ffmpeg conversion")

	instance := ffmpeg.New(t.config(true)).
		Input(input).
		Output(output).
		WithContext(&ctx)
	progress, err := instance.Start(options(format))
	if err != nil {
		metrics.TranscodesTotal.WithLabelValues(format.String(), metrics.StatusError).Inc()
		return "", &apperrors.ErrConversionFailed{Input: input, Format: format.String(), Err: err}
	}

	for p := range progress {
		logger.Debug().
			Str("output", output).
			Float64("progress", p.GetProgress()).
			Str("speed", p.GetSpeed()).
			Msg("ffmpeg progress")
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(output)
		metrics.TranscodesTotal.WithLabelValues(format.String(), metrics.StatusError).Inc()
		return "", err
	}

	// The progress channel closes after the process was waited on.
	if cmd := instance.GetRunningCmdInstance(); cmd == nil || cmd.ProcessState == nil || !cmd.ProcessState.Success() {
		_ = os.Remove(output)
		metrics.TranscodesTotal.WithLabelValues(format.String(), metrics.StatusError).Inc()
		return "", &apperrors.ErrConversionFailed{Input: input, Format: format.String(), Err: exitError(cmd)}
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		metrics.TranscodesTotal.WithLabelValues(format.String(), metrics.StatusError).Inc()
		if err == nil {
			err = fmt.Errorf("ffmpeg produced an empty file")
		}
		return "", &apperrors.ErrConversionFailed{Input: input, Format: format.String(), Err: err}
	}

	metrics.TranscodesTotal.WithLabelValues(format.String(), metrics.StatusSuccess).Inc()
	logger.Info().Str("output", output).Int64("size", info.Size()).Msg("ffmpeg conversion finished")
	return output, nil
}

func exitError(cmd *exec.Cmd) error {
	if cmd == nil || cmd.ProcessState == nil {
		return errors.New("ffmpeg did not run")
	}
	return fmt.Errorf("ffmpeg exited with code %d", cmd.ProcessState.ExitCode())
}

// Probe reads the container duration with ffprobe.
func (t *FFmpegTranscoder) Probe(path string) (string, error) {
	metadata, err := ffmpeg.New(t.config(false)).Input(path).GetMetadata()
	if err != nil {
		return "", fmt.Errorf("failed to extract file metadata using ffprobe: %w", err)
	}
	return metadata.GetFormat().GetDuration(), nil
}
