package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/models"
)

func (s *Server) health(ec echo.Context) error {
	return ec.JSON(http.StatusOK, HealthResponse{Status: "ok", Message: msgHealthy})
}

func (s *Server) ready(ec echo.Context) error {
	report := s.checker.Run(ec.Request().Context())
	if !report.Healthy {
		return ec.JSON(http.StatusServiceUnavailable, report)
	}
	return ec.JSON(http.StatusOK, report)
}

// fetchMP3 downloads the URL and converts it to mp3.
func (s *Server) fetchMP3(ec echo.Context) error {
	return s.runFetch(ec, models.FormatMP3, msgConversionSuccess)
}

// fetchVideo downloads the URL in the container the source provides.
func (s *Server) fetchVideo(ec echo.Context) error {
	return s.runFetch(ec, models.FormatOriginal, msgDownloadSuccess)
}

// fetch honours the format query parameter, falling back to the configured default.
func (s *Server) fetch(ec echo.Context) error {
	format, err := models.ParseFormat(ec.QueryParam("format"), s.defaultFormat)
	if err != nil {
		return &apperrors.ErrInvalidRequest{Field: "format", Message: err.Error()}
	}

	message := msgDownloadSuccess
	if format != models.FormatOriginal {
		message = msgConversionSuccess
	}
	return s.runFetch(ec, format, message)
}

func (s *Server) runFetch(ec echo.Context, format models.Format, message string) error {
	var q FetchQuery
	if err := ec.Bind(&q); err != nil {
		return &apperrors.ErrInvalidRequest{Message: msgURLInvalid}
	}
	if err := ec.Validate(&q); err != nil {
		return err
	}

	job, err := s.fetcher.Fetch(ec.Request().Context(), models.FetchRequest{URL: q.URL, Format: format})
	if err != nil {
		return err
	}
	return ec.JSON(http.StatusOK, newFetchResponse(message, job))
}

func (s *Server) job(ec echo.Context) error {
	id, err := uuid.Parse(ec.Param("id"))
	if err != nil {
		return &apperrors.ErrInvalidRequest{Field: "id", Message: "job ID is not a valid UUID"}
	}

	job, ok := s.fetcher.Job(id)
	if !ok {
		return apperrors.NewJobNotFoundError(id.String())
	}
	return ec.JSON(http.StatusOK, NewJobDto(job))
}
