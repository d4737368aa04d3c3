package session

import "errors"

var (
	// ErrAuthentication is returned when a login does not succeed. The
	// message never says whether the email or the password was wrong.
	ErrAuthentication = errors.New("authentication failed")

	// ErrAuthorizationDenied is returned when credentials are valid but the
	// identity lacks the privilege the caller asked for.
	ErrAuthorizationDenied = errors.New("administrator privileges required")

	// ErrAuthorityUnavailable is returned when the identity authority or role
	// store cannot be reached. Login failures caused by it match both this
	// error and ErrAuthentication.
	ErrAuthorityUnavailable = errors.New("identity authority unavailable")

	ErrAlreadyStarted = errors.New("session: manager already started")
	ErrClosed         = errors.New("session: manager closed")
)
