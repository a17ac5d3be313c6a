package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/config"
	"github.com/Belphemur/MediaFetch/internal/reporting"
)

// statusClientClosedRequest is used when the caller went away before the fetch finished.
const statusClientClosedRequest = 499

// statusFor maps an error to the HTTP status and detail message sent to clients.
func statusFor(err error) (int, string) {
	var httpErr *echo.HTTPError
	var invalid *apperrors.ErrInvalidRequest
	var downloadErr *apperrors.ErrDownloadFailed
	var notFound *apperrors.ErrNotFound

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	case errors.As(err, &invalid):
		return http.StatusBadRequest, invalid.Error()
	case errors.As(err, &downloadErr):
		return http.StatusBadRequest, fmt.Sprintf("Video download error: %v", downloadErr.Err)
	case errors.Is(err, &apperrors.ErrArtifactNotFound{}):
		return http.StatusNotFound, "File not found."
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.Is(err, apperrors.ErrBusy):
		return http.StatusServiceUnavailable, "Too many downloads in progress, retry later."
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, "Request canceled."
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Download timed out."
	default:
		return http.StatusInternalServerError, fmt.Sprintf("An unexpected error occurred: %v", err)
	}
}

// errorHandler writes {"detail": ...} bodies and reports server-side failures.
func errorHandler(err error, ec echo.Context) {
	if ec.Response().Committed {
		return
	}

	status, detail := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger := config.GetLogger()
		logger.Error().
			Err(err).
			Str("method", ec.Request().Method).
			Str("path", ec.Path()).
			Int("status", status).
			Msg("Request failed")
		reporting.CaptureError(err, map[string]string{
			"route":  ec.Path(),
			"format": ec.QueryParam("format"),
		})
	}

	if ec.Request().Method == http.MethodHead {
		err = ec.NoContent(status)
	} else {
		err = ec.JSON(status, ErrorResponse{Detail: detail})
	}
	if err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Msg("Failed to write error response")
	}
}
