package model

import "time"

// SessionID identifies a durable authority-side session
type SessionID string

// AuthSession is the authority's record of a signed-in identity.
// Tokens reference it by ID, so deleting it revokes every token issued for it.
type AuthSession struct {
	ID         SessionID  `json:"id"`
	IdentityID IdentityID `json:"identity_id"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// Expired reports whether the session has lapsed at now
func (s *AuthSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Grant is what the authority hands back on a successful sign-in
type Grant struct {
	Token      string     `json:"token"`
	SessionID  SessionID  `json:"session_id"`
	IdentityID IdentityID `json:"identity_id"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// SessionEventType identifies the kind of session change
type SessionEventType string

const (
	EventSignedIn        SessionEventType = "signed_in"
	EventSignedOut       SessionEventType = "signed_out"
	EventTokenRefreshed  SessionEventType = "token_refreshed"
	EventIdentityUpdated SessionEventType = "identity_updated"
)

// Reasons attached to signed_out events
const (
	ReasonLogout  = "logout"
	ReasonExpired = "expired"
	ReasonRevoked = "revoked"
)

// SessionEvent is pushed by the authority whenever a session changes
type SessionEvent struct {
	Type       SessionEventType `json:"type"`
	SessionID  SessionID        `json:"session_id,omitempty"`
	IdentityID IdentityID       `json:"identity_id"`
	Token      string           `json:"token,omitempty"` // only set for token_refreshed
	Reason     string           `json:"reason,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}
