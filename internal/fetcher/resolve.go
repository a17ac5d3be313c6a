package fetcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
)

// partialSuffixes are left behind by interrupted or in-progress downloads.
var partialSuffixes = []string{".part", ".ytdl", ".temp", ".tmp"}

func isPartial(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return strings.Contains(lower, ".part-frag")
}

// ResolveOutputPath returns the file a download produced inside dir. The hint reported
// by the tool wins when it names an existing regular file; otherwise the largest
// complete file in dir is used.
func ResolveOutputPath(dir, hint string) (string, error) {
	if hint != "" {
		candidate := hint
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(dir, candidate)
		}
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var (
		best     string
		bestSize int64 = -1
	)
	for _, entry := range entries {
		if !entry.Type().IsRegular() || isPartial(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, entry.Name())
			bestSize = info.Size()
		}
	}

	if best == "" {
		return "", &apperrors.ErrArtifactMissing{Dir: dir}
	}
	return best, nil
}
