package apperrors

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when every download slot is taken and the wait for one timed out.
var ErrBusy = errors.New("too many downloads in progress")

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewJobNotFoundError creates a specific error for an unknown or expired download job.
func NewJobNotFoundError(jobID string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "job",
		ID:       jobID,
	}
}

// ErrInvalidRequest is returned when a download request fails validation.
type ErrInvalidRequest struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ErrInvalidRequest) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidRequest) Is(target error) bool {
	_, ok := target.(*ErrInvalidRequest)
	return ok
}

// ErrDownloadFailed is returned when the download tool exits unsuccessfully for a URL.
type ErrDownloadFailed struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ErrDownloadFailed) Error() string {
	return fmt.Sprintf("download of %s failed: %v", e.URL, e.Err)
}

// Unwrap exposes the tool error.
func (e *ErrDownloadFailed) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrDownloadFailed) Is(target error) bool {
	_, ok := target.(*ErrDownloadFailed)
	return ok
}

// ErrConversionFailed is returned when ffmpeg could not produce the requested format.
type ErrConversionFailed struct {
	Input  string
	Format string
	Err    error
}

// Error implements the error interface.
func (e *ErrConversionFailed) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conversion of %s to %s failed: %v", e.Input, e.Format, e.Err)
	}
	return fmt.Sprintf("conversion of %s to %s failed", e.Input, e.Format)
}

// Unwrap exposes the transcoder error.
func (e *ErrConversionFailed) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrConversionFailed) Is(target error) bool {
	_, ok := target.(*ErrConversionFailed)
	return ok
}

// ErrArtifactMissing is returned when the download tool succeeded but the produced file
// could not be located.
type ErrArtifactMissing struct {
	Dir string
}

// Error implements the error interface.
func (e *ErrArtifactMissing) Error() string {
	return fmt.Sprintf("could not determine the final downloaded file path in %s", e.Dir)
}

// Is allows for error checking with errors.Is().
func (e *ErrArtifactMissing) Is(target error) bool {
	_, ok := target.(*ErrArtifactMissing)
	return ok
}

// ErrArtifactNotFound is returned when a stored artifact key does not exist.
type ErrArtifactNotFound struct {
	Key string
}

// Error implements the error interface.
func (e *ErrArtifactNotFound) Error() string {
	return fmt.Sprintf("artifact %s not found", e.Key)
}

// Is allows for error checking with errors.Is().
func (e *ErrArtifactNotFound) Is(target error) bool {
	_, ok := target.(*ErrArtifactNotFound)
	return ok
}
