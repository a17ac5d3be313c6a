package api

import (
	"time"

	"github.com/Belphemur/MediaFetch/internal/models"
)

// Response messages kept for clients of the original endpoints.
const (
	msgHealthy           = "API is running smoothly."
	msgConversionSuccess = "Download and conversion successful"
	msgDownloadSuccess   = "Download successful"
)

type (
	// FetchQuery is bound from the query string of the fetch endpoints.
	FetchQuery struct {
		URL    string `query:"url" validate:"required,abs_http_url"`
		Format string `query:"format"`
	}

	HealthResponse struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	FetchResponse struct {
		Message     string        `json:"message"`
		DownloadURL string        `json:"download_url"`
		JobID       string        `json:"job_id"`
		Filename    string        `json:"filename"`
		Format      models.Format `json:"format"`
		Cached      bool          `json:"cached"`
	}

	ArtifactDto struct {
		Filename    string        `json:"filename"`
		DownloadURL string        `json:"download_url"`
		Size        int64         `json:"size"`
		ContentType string        `json:"content_type"`
		Title       string        `json:"title,omitempty"`
		Duration    string        `json:"duration,omitempty"`
		Format      models.Format `json:"format"`
	}

	JobDto struct {
		ID         string           `json:"id"`
		URL        string           `json:"url"`
		Format     models.Format    `json:"format"`
		Status     models.JobStatus `json:"status"`
		Cached     bool             `json:"cached"`
		Error      string           `json:"error,omitempty"`
		Artifact   *ArtifactDto     `json:"artifact,omitempty"`
		CreatedAt  time.Time        `json:"created_at"`
		FinishedAt *time.Time       `json:"finished_at,omitempty"`
	}

	ErrorResponse struct {
		Detail string `json:"detail"`
	}
)

func newFetchResponse(message string, job *models.Job) FetchResponse {
	return FetchResponse{
		Message:     message,
		DownloadURL: job.Artifact.DownloadPath(),
		JobID:       job.ID.String(),
		Filename:    job.Artifact.Filename,
		Format:      job.Format,
		Cached:      job.Cached,
	}
}

// NewJobDto converts a job snapshot for the API.
func NewJobDto(job *models.Job) JobDto {
	dto := JobDto{
		ID:        job.ID.String(),
		URL:       job.URL,
		Format:    job.Format,
		Status:    job.Status,
		Cached:    job.Cached,
		Error:     job.Error,
		CreatedAt: job.CreatedAt,
	}
	if !job.FinishedAt.IsZero() {
		finished := job.FinishedAt
		dto.FinishedAt = &finished
	}
	if a := job.Artifact; a != nil {
		dto.Artifact = &ArtifactDto{
			Filename:    a.Filename,
			DownloadURL: a.DownloadPath(),
			Size:        a.Size,
			ContentType: a.ContentType,
			Title:       a.Title,
			Duration:    a.Duration,
			Format:      a.Format,
		}
	}
	return dto
}
