package students

import (
	"context"
	"log/slog"

	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/access"
	"github.com/Ayu-zh/placement-connector/internal/services/identity"
	"github.com/Ayu-zh/placement-connector/internal/storage"
)

// NewStudent describes a student record created by the placement cell
type NewStudent struct {
	Name       string
	Email      string
	Password   string
	Department string
	Year       string
	Status     model.StudentStatus
	Verified   bool
}

// Service manages student records on behalf of administrators.
// Every change goes through the identity authority so watchers of the
// affected identity are notified.
type Service struct {
	storage  storage.Storage
	identity *identity.Service
	logger   *slog.Logger
}

// New creates a new students Service
func New(storage storage.Storage, identity *identity.Service, logger *slog.Logger) *Service {
	return &Service{
		storage:  storage,
		identity: identity,
		logger:   logger.With(slog.String("component", "students")),
	}
}

// List returns every student record
func (s *Service) List(ctx context.Context, actor *model.Identity) ([]*model.Identity, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.storage.ListIdentities(ctx, model.RoleStudent)
}

// Get returns a student record. Students may read their own.
func (s *Service) Get(ctx context.Context, actor *model.Identity, id model.IdentityID) (*model.Identity, error) {
	if err := access.RequireSelfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	return s.student(ctx, id)
}

// Add creates a student identity with an initial password
func (s *Service) Add(ctx context.Context, actor *model.Identity, in NewStudent) (*model.Identity, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = model.StatusActive
	}
	created, err := s.identity.Register(ctx, identity.NewIdentity{
		Name:       in.Name,
		Email:      in.Email,
		Password:   in.Password,
		Role:       model.RoleStudent,
		Department: in.Department,
		Year:       in.Year,
		Status:     in.Status,
		Verified:   in.Verified,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("student added",
		slog.String("identity_id", string(created.ID)),
		slog.String("actor_id", string(actor.ID)))
	return created, nil
}

// Update changes a student's profile and, when password is set, their password
func (s *Service) Update(ctx context.Context, actor *model.Identity, update *model.Identity, password string) (*model.Identity, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.student(ctx, update.ID); err != nil {
		return nil, err
	}
	updated, err := s.identity.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}
	if password != "" {
		if err := s.identity.SetPassword(ctx, update.ID, password); err != nil {
			return nil, err
		}
	}
	s.logger.Info("student updated",
		slog.String("identity_id", string(update.ID)),
		slog.String("actor_id", string(actor.ID)))
	return updated, nil
}

// Delete removes a student and signs out all of their sessions
func (s *Service) Delete(ctx context.Context, actor *model.Identity, id model.IdentityID) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.student(ctx, id); err != nil {
		return err
	}
	if err := s.identity.Deregister(ctx, id); err != nil {
		return err
	}
	s.logger.Info("student deleted",
		slog.String("identity_id", string(id)),
		slog.String("actor_id", string(actor.ID)))
	return nil
}

// ToggleVerification flips a student's verified flag
func (s *Service) ToggleVerification(ctx context.Context, actor *model.Identity, id model.IdentityID) (*model.Identity, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.student(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Verified = !current.Verified
	return s.identity.UpdateProfile(ctx, current)
}

// student loads an identity and hides non-student records from this surface
func (s *Service) student(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	identity, err := s.storage.GetIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	if identity.Role != model.RoleStudent {
		return nil, model.ErrIdentityNotFound
	}
	return identity, nil
}
