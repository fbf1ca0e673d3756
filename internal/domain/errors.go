package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConfiguration = errors.New("service not configured")
	ErrUpstream      = errors.New("upstream service failed")
	ErrParse         = errors.New("generated content is not valid JSON")
	ErrShape         = errors.New("generated content does not match the form schema")
	ErrNotPublished  = errors.New("form is not published")
	ErrQuotaExceeded = errors.New("free form limit reached")
)

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ForbiddenError indicates the caller does not own the resource
	ForbiddenError struct {
		Message string
	}

	// NotPublishedError indicates a submission or public view against a draft form
	NotPublishedError struct {
		FormID int64
	}

	// QuotaExceededError indicates the free-tier form ceiling was reached
	QuotaExceededError struct {
		Limit int
		Used  int
	}
)

func (e *NotFoundError) Error() string  { return e.Message }
func (e *ForbiddenError) Error() string { return e.Message }
func (e *NotPublishedError) Error() string {
	return fmt.Sprintf("form %d is not published", e.FormID)
}
func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("free form limit reached (%d/%d)", e.Used, e.Limit)
}

func (e *NotFoundError) Is(target error) bool      { return target == ErrNotFound }
func (e *ForbiddenError) Is(target error) bool     { return target == ErrForbidden }
func (e *NotPublishedError) Is(target error) bool  { return target == ErrNotPublished }
func (e *QuotaExceededError) Is(target error) bool { return target == ErrQuotaExceeded }

func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *ForbiddenError) StatusCode() int     { return http.StatusForbidden }
func (e *NotPublishedError) StatusCode() int  { return http.StatusConflict }
func (e *QuotaExceededError) StatusCode() int { return http.StatusPaymentRequired }

// ValidationError carries user-correctable input problems. Fields maps a
// field key to its message; Message is the summary shown inline.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Fields)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }

// ConfigurationError reports a missing operator setting. Setting names the
// missing key (never its value).
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
func (e *ConfigurationError) StatusCode() int      { return http.StatusServiceUnavailable }

// UpstreamError wraps a failure of an external service call.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: no response", e.Service)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error        { return e.Err }
func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }
func (e *UpstreamError) StatusCode() int      { return http.StatusBadGateway }

// UploadError is an attachment upload failure for a named submission field.
type UploadError struct {
	Field string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed for field %q: %v", e.Field, e.Err)
}

func (e *UploadError) Unwrap() error        { return e.Err }
func (e *UploadError) Is(target error) bool { return target == ErrUpstream }
func (e *UploadError) StatusCode() int      { return http.StatusBadGateway }

// ParseError means the model output was not JSON. Raw holds the offending
// text for server-side logs; it is never part of Error().
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string        { return ErrParse.Error() }
func (e *ParseError) Unwrap() error        { return e.Err }
func (e *ParseError) Is(target error) bool { return target == ErrParse }
func (e *ParseError) StatusCode() int      { return http.StatusBadGateway }

// ShapeError means the model output was JSON of the wrong structure.
type ShapeError struct {
	Path   string
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrShape.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrShape.Error(), e.Path, e.Reason)
}

func (e *ShapeError) Is(target error) bool { return target == ErrShape }
func (e *ShapeError) StatusCode() int      { return http.StatusBadGateway }

// UnauthorizedError means the operation needs an identity and none was resolved
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return ErrUnauthorized.Error()
	}
	return e.Message
}

func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *UnauthorizedError) StatusCode() int      { return http.StatusUnauthorized }
