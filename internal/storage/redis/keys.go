package redis

import (
	"fmt"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

// Key prefix for all portal data
const keyPrefix = "placement"

// identityKey returns the Redis key for an Identity
func identityKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:identity:%s", keyPrefix, id)
}

// identitiesIndexKey returns the Redis key for the SET of all identity IDs
func identitiesIndexKey() string {
	return fmt.Sprintf("%s:idx:identities", keyPrefix)
}

// emailIndexKey returns the Redis key for the email -> identity_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// credentialKey returns the Redis key for a Credential
func credentialKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:credential:%s", keyPrefix, id)
}

// credentialEmailIndexKey returns the Redis key for the login email -> identity_id index
func credentialEmailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:credential_email:%s", keyPrefix, email)
}

// sessionKey returns the Redis key for an AuthSession
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionsIndexKey returns the Redis key for the SET of all session IDs
func sessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// identitySessionsIndexKey returns the Redis key for the SET of sessions held by an identity
func identitySessionsIndexKey(id model.IdentityID) string {
	return fmt.Sprintf("%s:idx:identity_sessions:%s", keyPrefix, id)
}

// recordKey returns the Redis key for a portal record of the given kind
func recordKey(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, kind, id)
}

// recordIndexKey returns the Redis key for the SET of record IDs of the given kind
func recordIndexKey(kind string) string {
	return fmt.Sprintf("%s:idx:%s", keyPrefix, kind)
}

// Record kinds
const (
	kindJob             = "job"
	kindCertification   = "certification"
	kindHackathon       = "hackathon"
	kindTeammateRequest = "teammate_request"
)
