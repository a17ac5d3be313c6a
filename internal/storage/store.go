package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/config"
)

// Store keeps finished artifacts in a blob bucket under "<job-id>/<filename>" keys.
type Store struct {
	bucket *blob.Bucket
	root   string // local directory behind a fileblob bucket, empty otherwise
}

// Object is an open artifact. Reader is seekable, so it can back range requests.
type Object struct {
	Reader      *blob.Reader
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Close releases the underlying reader.
func (o *Object) Close() error {
	return o.Reader.Close()
}

// Open opens bucketURL, or a local fileblob bucket rooted at directory when the URL is
// empty. The directory is created if it does not exist.
func Open(ctx context.Context, bucketURL, directory string) (*Store, error) {
	logger := config.GetLogger()

	if bucketURL != "" {
		bucket, err := blob.OpenBucket(ctx, bucketURL)
		if err != nil {
			return nil, fmt.Errorf("storage: open bucket %s: %w", bucketURL, err)
		}
		logger.Info().Str("bucket", bucketURL).Msg("Artifact store opened")
		return NewStore(bucket), nil
	}

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create directory %s: %w", directory, err)
	}
	bucket, err := fileblob.OpenBucket(directory, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open directory %s: %w", directory, err)
	}
	logger.Info().Str("directory", directory).Msg("Artifact store opened")
	store := NewStore(bucket)
	store.root = directory
	return store, nil
}

// NewStore wraps an already opened bucket.
func NewStore(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

// Key builds the artifact key for a job and file name.
func Key(jobID, filename string) string {
	return jobID + "/" + filename
}

// ValidateKey rejects keys that are not exactly "<job>/<filename>" or that try to
// leave the bucket root.
func ValidateKey(key string) error {
	parts := strings.Split(key, "/")
	if len(parts) != 2 {
		return &apperrors.ErrInvalidRequest{Field: "key", Message: fmt.Sprintf("artifact key %q must have two segments", key)}
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `\`+"\x00") {
			return &apperrors.ErrInvalidRequest{Field: "key", Message: fmt.Sprintf("artifact key %q is not allowed", key)}
		}
	}
	return nil
}

// Put copies the local file at path into the bucket and returns the stored size.
func (s *Store) Put(ctx context.Context, key, path, contentType string) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("storage: open %s: %w", path, err)
	}
	defer f.Close()

	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return 0, fmt.Errorf("storage: new writer %s: %w", key, err)
	}
	n, copyErr := io.Copy(w, f)
	closeErr := w.Close()
	if copyErr != nil {
		return 0, fmt.Errorf("storage: write %s: %w", key, copyErr)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("storage: commit %s: %w", key, closeErr)
	}
	return n, nil
}

// Open returns a reader for key. Unknown keys yield ErrArtifactNotFound.
func (s *Store) Open(ctx context.Context, key string) (*Object, error) {
	if err := ValidateKey(key); err != nil {
		return nil, &apperrors.ErrArtifactNotFound{Key: key}
	}

	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if isNotExist(err) {
			return nil, &apperrors.ErrArtifactNotFound{Key: key}
		}
		return nil, fmt.Errorf("storage: open %s: %w", key, err)
	}
	return &Object{
		Reader:      r,
		Size:        r.Size(),
		ModTime:     r.ModTime(),
		ContentType: r.ContentType(),
	}, nil
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, nil
	}
	ok, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("storage: exists %s: %w", key, err)
	}
	return ok, nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil && !isNotExist(err) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	s.pruneJobDir(key)
	return nil
}

// pruneJobDir removes the local job directory of key once it holds no more files.
func (s *Store) pruneJobDir(key string) {
	if s.root == "" {
		return
	}
	jobDir, _, ok := strings.Cut(key, "/")
	if !ok || jobDir == "" || jobDir == "." || jobDir == ".." {
		return
	}
	// os.Remove refuses non-empty directories.
	if err := os.Remove(filepath.Join(s.root, jobDir)); err != nil && !os.IsNotExist(err) {
		logger := config.GetLogger()
		logger.Debug().Err(err).Str("job", jobDir).Msg("Job directory kept")
	}
}

// Sweep deletes every object last modified before cutoff and returns how many went.
func (s *Store) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	var expired []string
	iter := s.bucket.List(nil)
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("storage: list: %w", err)
		}
		if obj.IsDir {
			continue
		}
		if obj.ModTime.Before(cutoff) {
			expired = append(expired, obj.Key)
		}
	}

	removed := 0
	for _, key := range expired {
		if err := s.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Ping checks that the bucket can be reached.
func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.bucket.IsAccessible(ctx)
	if err != nil {
		return fmt.Errorf("storage: bucket not accessible: %w", err)
	}
	if !ok {
		return errors.New("storage: bucket not accessible")
	}
	return nil
}

// Close closes the bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

func isNotExist(err error) bool {
	return gcerrors.Code(err) == gcerrors.NotFound
}
