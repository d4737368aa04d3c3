package model

import "time"

// IdentityID uniquely identifies an identity across the system
type IdentityID string

// Role is the closed set of access tags an identity can carry
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin:
		return true
	}
	return false
}

// StudentStatus tracks the enrolment standing of a student record
type StudentStatus string

const (
	StatusActive    StudentStatus = "active"
	StatusInactive  StudentStatus = "inactive"
	StatusSuspended StudentStatus = "suspended"
)

// Valid reports whether s is one of the known statuses
func (s StudentStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// Identity is the durable record of a portal user.
// Role only changes through an explicit administrative action.
type Identity struct {
	ID         IdentityID    `json:"id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Role       Role          `json:"role"`
	Department string        `json:"department,omitempty"`
	Year       string        `json:"year,omitempty"`
	Status     StudentStatus `json:"status,omitempty"`
	Verified   bool          `json:"verified"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// IsAdmin is the single privilege predicate. A nil identity is never an admin.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Clone returns a copy that callers may retain without sharing state
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// Credential holds the password hash for an identity.
// Stored separately so the hash never travels with the profile.
type Credential struct {
	IdentityID   IdentityID `json:"identity_id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
