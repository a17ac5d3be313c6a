package api

import (
	"mime"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
	"github.com/Belphemur/MediaFetch/internal/storage"
)

func pathParam(ec echo.Context, name string) string {
	raw := ec.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// serveDownload streams a stored artifact with range and conditional request support.
func (s *Server) serveDownload(ec echo.Context) error {
	filename := pathParam(ec, "filename")
	key := storage.Key(pathParam(ec, "job"), filename)
	if err := storage.ValidateKey(key); err != nil {
		return &apperrors.ErrArtifactNotFound{Key: key}
	}

	obj, err := s.store.Open(ec.Request().Context(), key)
	if err != nil {
		return err
	}
	defer obj.Close()

	header := ec.Response().Header()
	if obj.ContentType != "" {
		header.Set(echo.HeaderContentType, obj.ContentType)
	}
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": filename}))

	http.ServeContent(ec.Response(), ec.Request(), filename, obj.ModTime, obj.Reader)
	return nil
}
