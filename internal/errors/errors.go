package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Code classifies processing failures into the ledger's error taxonomy.
type Code string

const (
	CodeFileNotFound   Code = "E1001"
	CodeFileExtension  Code = "E1002"
	CodeFileRead       Code = "E1003"
	CodeHeaderNotFound Code = "E1004"
	CodeDataProcessing Code = "E2001"
	CodeDataValidation Code = "E2002"
	CodeDatabase       Code = "E3001"
	CodeInvalidParam   Code = "E4001"
	CodeDataNotFound   Code = "E5001"
	CodeSystem         Code = "E9001"
)

// ProcessingError is a classified pipeline failure. It wraps the
// underlying cause so callers can still match with errors.Is/As.
type ProcessingError struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewProcessing creates a classified processing error.
func NewProcessing(code Code, format string, args ...interface{}) *ProcessingError {
	return &ProcessingError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapProcessing classifies an underlying error.
func WrapProcessing(code Code, err error, format string, args ...interface{}) *ProcessingError {
	return &ProcessingError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the taxonomy code from err, defaulting to CodeSystem.
func CodeOf(err error) Code {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeSystem
}

// statusByCode maps taxonomy codes to HTTP status codes at the API edge.
var statusByCode = map[Code]int{
	CodeFileNotFound:   http.StatusNotFound,
	CodeFileExtension:  http.StatusBadRequest,
	CodeFileRead:       http.StatusUnprocessableEntity,
	CodeHeaderNotFound: http.StatusUnprocessableEntity,
	CodeDataProcessing: http.StatusUnprocessableEntity,
	CodeDataValidation: http.StatusUnprocessableEntity,
	CodeDatabase:       http.StatusInternalServerError,
	CodeInvalidParam:   http.StatusBadRequest,
	CodeDataNotFound:   http.StatusNotFound,
	CodeSystem:         http.StatusInternalServerError,
}

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// FromProcessing converts a pipeline failure into its API shape.
func FromProcessing(err error) *APIError {
	var pe *ProcessingError
	if !errors.As(err, &pe) {
		return NewWithDetails(http.StatusInternalServerError, string(CodeSystem), "internal error", err.Error())
	}
	status, ok := statusByCode[pe.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	out := New(status, string(pe.Code), pe.Message)
	if pe.Err != nil {
		out.Details = pe.Err.Error()
	}
	return out
}

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, string(CodeInvalidParam), "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, string(CodeInvalidParam), "Request validation failed")
	ErrMissingParameter = New(http.StatusBadRequest, string(CodeInvalidParam), "Required parameter is missing")

	// 404 Not Found
	ErrNotFound    = New(http.StatusNotFound, string(CodeDataNotFound), "Resource not found")
	ErrRunNotFound = New(http.StatusNotFound, string(CodeDataNotFound), "processing run not found")

	// 409 Conflict
	ErrConflict = New(http.StatusConflict, "CONFLICT", "Resource conflict")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, string(CodeSystem), "Internal server error")

	// 503 Service Unavailable
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service temporarily unavailable")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, string(CodeInvalidParam), "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, string(CodeInvalidParam), "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, string(CodeDataNotFound), fmt.Sprintf("%s not found", resource), resource)
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		string(CodeInvalidParam),
		"Request validation failed",
		ValidationErrors{Errors: errs},
	)
}

// PanicRecovery represents panic recovery information
type PanicRecovery struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrPanic creates a panic recovery error
func ErrPanic(rec interface{}) *APIError {
	return NewWithDetails(
		http.StatusInternalServerError,
		string(CodeSystem),
		"Internal server error",
		PanicRecovery{
			Message: fmt.Sprintf("%v", rec),
		},
	)
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(NewErrorResponse(err))
}
