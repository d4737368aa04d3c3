// Package access holds the server-side privilege checks every privileged
// write goes through, independent of any client-side check.
package access

import "github.com/Ayu-zh/placement-connector/internal/model"

// RequireAuthenticated fails unless an identity is acting
func RequireAuthenticated(actor *model.Identity) error {
	if actor == nil {
		return model.ErrInvalidSession
	}
	return nil
}

// RequireAdmin fails unless the acting identity is an administrator
func RequireAdmin(actor *model.Identity) error {
	if err := RequireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return model.ErrForbidden
	}
	return nil
}

// RequireSelfOrAdmin fails unless the actor is the subject or an administrator
func RequireSelfOrAdmin(actor *model.Identity, subject model.IdentityID) error {
	if err := RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.ID != subject && !actor.IsAdmin() {
		return model.ErrForbidden
	}
	return nil
}
