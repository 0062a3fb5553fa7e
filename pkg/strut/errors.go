package strut

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// HttpError represents an HTTP error with a specific status code and message.
// Endpoint methods return one to control the failure status of a response.
type HttpError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHttpError creates a new HttpError with the given status code and message.
func NewHttpError(statusCode int, message string) *HttpError {
	return &HttpError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewHttpErrorWithDetails creates a new HttpError with additional details.
func NewHttpErrorWithDetails(statusCode int, message string, details any) *HttpError {
	return &HttpError{
		StatusCode: statusCode,
		Message:    message,
		Details:    details,
	}
}

// Common HTTP error constructors for convenience

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message)
}

// ErrUnauthorized creates a 401 Unauthorized error
func ErrUnauthorized(message string) *HttpError {
	return NewHttpError(http.StatusUnauthorized, message)
}

// ErrForbidden creates a 403 Forbidden error
func ErrForbidden(message string) *HttpError {
	return NewHttpError(http.StatusForbidden, message)
}

// ErrNotFound creates a 404 Not Found error
func ErrNotFound(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message)
}

// ErrConflict creates a 409 Conflict error
func ErrConflict(message string) *HttpError {
	return NewHttpError(http.StatusConflict, message)
}

// ErrUnprocessableEntity creates a 422 Unprocessable Entity error
func ErrUnprocessableEntity(message string) *HttpError {
	return NewHttpError(http.StatusUnprocessableEntity, message)
}

// ErrInternalServerError creates a 500 Internal Server Error
func ErrInternalServerError(message string) *HttpError {
	return NewHttpError(http.StatusInternalServerError, message)
}

// ValidationError reports that a request body failed transformation or
// validation. It maps to HTTP 400 with the validation detail in the body.
type ValidationError struct {
	Detail any
	cause  error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("validation failed: %v", e.cause)
	}
	return fmt.Sprintf("validation failed: %v", e.Detail)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.cause
}

// NewValidationError wraps a transform/validate failure, extracting
// field-level detail from validator errors.
func NewValidationError(cause error) *ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(cause, &verrs) {
		detail := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			detail[fe.Field()] = fmt.Sprintf("failed on the %q rule", fe.Tag())
		}
		return &ValidationError{Detail: detail, cause: cause}
	}
	return &ValidationError{Detail: cause.Error(), cause: cause}
}

// StartupError reports a configuration problem detected while binding
// controllers. It is fatal: the binder prints it and exits non-zero.
type StartupError struct {
	Controller string
	Endpoint   string
	Message    string
}

// Error implements the error interface.
func (e *StartupError) Error() string {
	switch {
	case e.Controller != "" && e.Endpoint != "":
		return fmt.Sprintf("controller %s, endpoint %s: %s", e.Controller, e.Endpoint, e.Message)
	case e.Controller != "":
		return fmt.Sprintf("controller %s: %s", e.Controller, e.Message)
	}
	return e.Message
}

// ErrRouteNotFound is the failure synthesized for requests that match no
// bound route. The translator maps it to HTTP 404.
var ErrRouteNotFound = NewHttpError(http.StatusNotFound, "Not Found")

// Translator maps every failure reaching it onto exactly one terminal HTTP
// response. It is installed as the router's error hook and as the not-found
// terminal handler when error handling is enabled.
type Translator struct {
	// Sanitize, when set, replaces the serialized body of unclassified
	// failures. The default passes the error message through unchanged.
	Sanitize func(error) any

	logger *slog.Logger
}

// NewTranslator creates a Translator logging through the given logger.
func NewTranslator(logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{logger: logger}
}

// Translate writes the terminal response for err. It never returns a failure
// of its own: if the response writer rejects the write there is nothing left
// to do but log.
func (t *Translator) Translate(c Context, err error) {
	if c.Written() {
		// A response is already on the wire; writing again would corrupt it.
		t.logger.Error("failure after response was committed", "path", c.Path(), "error", err)
		return
	}

	var writeErr error
	var verr *ValidationError
	var herr *HttpError
	switch {
	case errors.As(err, &verr):
		writeErr = c.JSON(http.StatusBadRequest, map[string]any{"error": verr.Detail})
	case errors.As(err, &herr):
		writeErr = c.JSON(herr.StatusCode, herr)
	default:
		body := any(map[string]any{"error": err.Error()})
		if t.Sanitize != nil {
			body = t.Sanitize(err)
		}
		t.logger.Error("unhandled dispatch failure", "path", c.Path(), "error", err)
		writeErr = c.JSON(http.StatusInternalServerError, body)
	}

	if writeErr != nil {
		t.logger.Error("failed to write error response", "path", c.Path(), "error", writeErr)
	}
}

// NotFoundHandler returns the terminal handler for unmatched requests.
func (t *Translator) NotFoundHandler() HandlerFunc {
	return func(c Context) error {
		return ErrRouteNotFound
	}
}
