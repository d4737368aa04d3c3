package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest          = "INVALID_REQUEST"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeInvalidRole             = "INVALID_ROLE"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeInvalidSession          = "INVALID_SESSION"
	CodeForbidden               = "FORBIDDEN"
	CodeEmailTaken              = "EMAIL_TAKEN"
	CodeIdentityNotFound        = "IDENTITY_NOT_FOUND"
	CodeJobNotFound             = "JOB_NOT_FOUND"
	CodeCertificationNotFound   = "CERTIFICATION_NOT_FOUND"
	CodeHackathonNotFound       = "HACKATHON_NOT_FOUND"
	CodeTeammateRequestNotFound = "TEAMMATE_REQUEST_NOT_FOUND"
	CodeInternalError           = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// mapping ties a sentinel error to its wire representation
type mapping struct {
	err     error
	status  int
	code    string
	message string
}

// mappings is consulted in order, both when writing errors and when a
// client turns a code back into a sentinel
var mappings = []mapping{
	{model.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password"},
	{model.ErrInvalidSession, http.StatusUnauthorized, CodeInvalidSession, "Invalid or expired session"},
	{model.ErrForbidden, http.StatusForbidden, CodeForbidden, "Administrator privileges required"},
	{model.ErrEmailTaken, http.StatusConflict, CodeEmailTaken, "Email is already registered"},
	{model.ErrInvalidRole, http.StatusBadRequest, CodeInvalidRole, "Unknown role"},
	{model.ErrIdentityNotFound, http.StatusNotFound, CodeIdentityNotFound, "Identity not found"},
	{model.ErrJobNotFound, http.StatusNotFound, CodeJobNotFound, "Job not found"},
	{model.ErrCertificationNotFound, http.StatusNotFound, CodeCertificationNotFound, "Certification not found"},
	{model.ErrHackathonNotFound, http.StatusNotFound, CodeHackathonNotFound, "Hackathon not found"},
	{model.ErrTeammateRequestNotFound, http.StatusNotFound, CodeTeammateRequestNotFound, "Teammate request not found"},
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Validation errors carry a useful message after the sentinel
	if errors.Is(err, model.ErrInvalidInput) {
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidInput, err.Error()}}
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return &httpError{m.status, APIError{m.code, m.message}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// Sentinel returns the model error a code stands for, or nil when the code
// has no sentinel
func Sentinel(code string) error {
	if code == CodeInvalidInput || code == CodeInvalidRequest {
		return model.ErrInvalidInput
	}
	if code == CodeUnauthorized {
		return model.ErrInvalidSession
	}
	for _, m := range mappings {
		if m.code == code {
			return m.err
		}
	}
	return nil
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
