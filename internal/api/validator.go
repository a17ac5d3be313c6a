package api

import (
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/Belphemur/MediaFetch/internal/apperrors"
)

const (
	msgURLRequired = "URL parameter is required."
	msgURLInvalid  = "URL must be an absolute http or https URL."
)

// requestValidator plugs go-playground/validator into echo.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	_ = v.RegisterValidation("abs_http_url", func(fl validator.FieldLevel) bool {
		return isAbsoluteHTTPURL(fl.Field().String())
	})
	return &requestValidator{validate: v}
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Validate implements echo.Validator and reports failures as ErrInvalidRequest.
func (rv *requestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &apperrors.ErrInvalidRequest{Message: err.Error()}
	}

	fe := fieldErrs[0]
	if fe.Field() == "URL" {
		if fe.Tag() == "required" {
			return &apperrors.ErrInvalidRequest{Message: msgURLRequired}
		}
		return &apperrors.ErrInvalidRequest{Message: msgURLInvalid}
	}
	return &apperrors.ErrInvalidRequest{Field: fe.Field(), Message: fe.Tag()}
}
