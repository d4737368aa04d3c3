package storage

import (
	"context"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

// Storage defines the interface for data persistence.
// Getters return the matching model.Err*NotFound error when a record is absent;
// deletes of absent records are not errors.
type Storage interface {
	// Identity operations. Emails are stored normalized and must be unique.
	SaveIdentity(ctx context.Context, identity *model.Identity) error
	GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)
	// ListIdentities returns every identity with the given role, or all when role is empty
	ListIdentities(ctx context.Context, role model.Role) ([]*model.Identity, error)
	DeleteIdentity(ctx context.Context, id model.IdentityID) error

	// Credential operations
	SaveCredential(ctx context.Context, cred *model.Credential) error
	GetCredential(ctx context.Context, id model.IdentityID) (*model.Credential, error)
	GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error)
	DeleteCredential(ctx context.Context, id model.IdentityID) error

	// Auth session operations
	SaveAuthSession(ctx context.Context, session *model.AuthSession) error
	GetAuthSession(ctx context.Context, id model.SessionID) (*model.AuthSession, error)
	ListAuthSessions(ctx context.Context) ([]*model.AuthSession, error)
	ListAuthSessionsForIdentity(ctx context.Context, id model.IdentityID) ([]*model.AuthSession, error)
	DeleteAuthSession(ctx context.Context, id model.SessionID) error

	// Job operations
	SaveJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context) ([]*model.Job, error)
	DeleteJob(ctx context.Context, id string) error

	// Certification operations
	SaveCertification(ctx context.Context, cert *model.Certification) error
	GetCertification(ctx context.Context, id string) (*model.Certification, error)
	ListCertifications(ctx context.Context) ([]*model.Certification, error)
	DeleteCertification(ctx context.Context, id string) error

	// Hackathon operations
	SaveHackathon(ctx context.Context, hackathon *model.Hackathon) error
	GetHackathon(ctx context.Context, id string) (*model.Hackathon, error)
	ListHackathons(ctx context.Context) ([]*model.Hackathon, error)
	DeleteHackathon(ctx context.Context, id string) error

	// Teammate request operations
	SaveTeammateRequest(ctx context.Context, req *model.TeammateRequest) error
	GetTeammateRequest(ctx context.Context, id string) (*model.TeammateRequest, error)
	ListTeammateRequests(ctx context.Context) ([]*model.TeammateRequest, error)
	DeleteTeammateRequest(ctx context.Context, id string) error
}
