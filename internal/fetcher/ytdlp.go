package fetcher

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/config"
)

// YtDlpDownloader drives the yt-dlp binary.
type YtDlpDownloader struct {
	executable string
	ffmpegPath string
	cookies    string
}

// NewYtDlpDownloader creates a Downloader running the given yt-dlp executable.
// ffmpegPath is handed to yt-dlp for merging separate video and audio streams.
// Non-empty cookies are handed to every run through a temporary cookie file.
func NewYtDlpDownloader(executable, ffmpegPath, cookies string) Downloader {
	return &YtDlpDownloader{
		executable: executable,
		ffmpegPath: ffmpegPath,
		cookies:    cookies,
	}
}

// NewYtDlpDownloaderFromConfig reads the tool paths and cookie jar from cfg.
func NewYtDlpDownloaderFromConfig(cfg *config.Config) Downloader {
	return NewYtDlpDownloader(cfg.Tools.YtDlpPath, cfg.Tools.FfmpegPath, cfg.Download.Cookies)
}

func (d *YtDlpDownloader) command(req Request) *ytdlp.Command {
	cmd := ytdlp.New().
		RestrictFilenames().
		NoPlaylist().
		Quiet().
		NoWarnings().
		NoProgress().
		PrintJSON().
		Output(filepath.Join(req.Dir, OutputTemplate)).
		Format(req.Format.Selector())
	if d.executable != "" {
		cmd.SetExecutable(d.executable)
	}
	if d.ffmpegPath != "" {
		cmd.FFmpegLocation(d.ffmpegPath)
	}
	return cmd
}

// Download runs yt-dlp for req.URL and resolves the produced file inside req.Dir.
func (d *YtDlpDownloader) Download(ctx context.Context, req Request) (*Result, error) {
	logger := config.GetLogger()
	logger.Info().
		Str("url", req.URL).
		Str("format", req.Format.String()).
		Str("dir", req.Dir).
		Msg("Starting yt-dlp download")

	cmd := d.command(req)
	if d.cookies != "" {
		cookieFile, cleanup, err := writeCookieFile(d.cookies)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		cmd.Cookies(cookieFile)
	}

	res, err := cmd.Run(ctx, req.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logStderr(logger, res)
		return nil, &apperrors.ErrDownloadFailed{URL: req.URL, Err: err}
	}

	hint, title := extractedFile(res)
	path, err := ResolveOutputPath(req.Dir, hint)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("url", req.URL).
		Str("path", path).
		Str("title", title).
		Msg("yt-dlp download finished")

	return &Result{Path: path, Title: title}, nil
}

// extractedFile reads the filename and title yt-dlp printed for the first entry.
func extractedFile(res *ytdlp.Result) (string, string) {
	if res == nil {
		return "", ""
	}
	info, err := res.GetExtractedInfo()
	if err != nil || len(info) == 0 || info[0] == nil {
		return "", ""
	}
	var filename, title string
	if info[0].Filename != nil {
		filename = *info[0].Filename
	}
	if info[0].Title != nil {
		title = *info[0].Title
	}
	return filename, title
}

func logStderr(logger zerolog.Logger, res *ytdlp.Result) {
	if res == nil || res.Stderr == "" {
		return
	}
	logger.Debug().Str("stderr", res.Stderr).Int("exitCode", res.ExitCode).Msg("yt-dlp stderr")
}
