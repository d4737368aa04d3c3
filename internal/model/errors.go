package model

import "errors"

// Common errors used across the application
var (
	// Identity errors
	ErrIdentityNotFound = errors.New("identity not found")
	ErrEmailTaken       = errors.New("email is already registered")
	ErrInvalidRole      = errors.New("invalid role")

	// Authentication errors. Unknown emails and wrong passwords share
	// ErrInvalidCredentials so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrSessionNotFound    = errors.New("session not found")

	// Authorization errors
	ErrForbidden = errors.New("administrator privileges required")

	// Portal errors
	ErrJobNotFound             = errors.New("job not found")
	ErrCertificationNotFound   = errors.New("certification not found")
	ErrHackathonNotFound       = errors.New("hackathon not found")
	ErrTeammateRequestNotFound = errors.New("teammate request not found")
	ErrInvalidInput            = errors.New("invalid input")
)
