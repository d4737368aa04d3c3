// Package catalog manages the certifications and hackathons advertised to
// students. Changes are restricted to administrators.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Ayu-zh/placement-connector/internal/dependencies/clock"
	"github.com/Ayu-zh/placement-connector/internal/dependencies/random"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/access"
	"github.com/Ayu-zh/placement-connector/internal/storage"
)

// Service manages certifications and hackathons
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new catalog Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "catalog")),
	}
}

// ListCertifications returns certifications. Students only see active ones.
func (s *Service) ListCertifications(ctx context.Context, actor *model.Identity) ([]*model.Certification, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	all, err := s.storage.ListCertifications(ctx)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return all, nil
	}
	visible := make([]*model.Certification, 0, len(all))
	for _, cert := range all {
		if cert.Active {
			visible = append(visible, cert)
		}
	}
	return visible, nil
}

// CreateCertification adds a certification
func (s *Service) CreateCertification(ctx context.Context, actor *model.Identity, cert *model.Certification) (*model.Certification, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cert.Title) == "" || strings.TrimSpace(cert.Provider) == "" {
		return nil, fmt.Errorf("%w: title and provider are required", model.ErrInvalidInput)
	}

	now := s.clock.Now()
	created := *cert
	created.ID = s.random.UUID()
	created.CreatedAt = now
	created.UpdatedAt = now
	if err := s.storage.SaveCertification(ctx, &created); err != nil {
		return nil, err
	}
	s.logger.Info("certification created",
		slog.String("certification_id", created.ID),
		slog.String("actor_id", string(actor.ID)))
	return &created, nil
}

// UpdateCertification replaces the editable fields of a certification
func (s *Service) UpdateCertification(ctx context.Context, actor *model.Identity, cert *model.Certification) (*model.Certification, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.storage.GetCertification(ctx, cert.ID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cert.Title) == "" || strings.TrimSpace(cert.Provider) == "" {
		return nil, fmt.Errorf("%w: title and provider are required", model.ErrInvalidInput)
	}

	updated := *cert
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveCertification(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ToggleCertification flips whether a certification is shown to students
func (s *Service) ToggleCertification(ctx context.Context, actor *model.Identity, id string) (*model.Certification, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	cert, err := s.storage.GetCertification(ctx, id)
	if err != nil {
		return nil, err
	}
	cert.Active = !cert.Active
	cert.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveCertification(ctx, cert); err != nil {
		return nil, err
	}
	s.logger.Info("certification toggled",
		slog.String("certification_id", id),
		slog.Bool("active", cert.Active))
	return cert, nil
}

// DeleteCertification removes a certification
func (s *Service) DeleteCertification(ctx context.Context, actor *model.Identity, id string) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.storage.GetCertification(ctx, id); err != nil {
		return err
	}
	return s.storage.DeleteCertification(ctx, id)
}

// ListHackathons returns hackathons. Students only see active ones.
func (s *Service) ListHackathons(ctx context.Context, actor *model.Identity) ([]*model.Hackathon, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	all, err := s.storage.ListHackathons(ctx)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return all, nil
	}
	visible := make([]*model.Hackathon, 0, len(all))
	for _, h := range all {
		if h.Active {
			visible = append(visible, h)
		}
	}
	return visible, nil
}

// CreateHackathon adds a hackathon
func (s *Service) CreateHackathon(ctx context.Context, actor *model.Identity, hackathon *model.Hackathon) (*model.Hackathon, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateHackathon(hackathon); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	created := *hackathon
	created.ID = s.random.UUID()
	created.CreatedAt = now
	created.UpdatedAt = now
	if err := s.storage.SaveHackathon(ctx, &created); err != nil {
		return nil, err
	}
	s.logger.Info("hackathon created",
		slog.String("hackathon_id", created.ID),
		slog.String("actor_id", string(actor.ID)))
	return &created, nil
}

// UpdateHackathon replaces the editable fields of a hackathon
func (s *Service) UpdateHackathon(ctx context.Context, actor *model.Identity, hackathon *model.Hackathon) (*model.Hackathon, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.storage.GetHackathon(ctx, hackathon.ID)
	if err != nil {
		return nil, err
	}
	if err := validateHackathon(hackathon); err != nil {
		return nil, err
	}

	updated := *hackathon
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveHackathon(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ToggleHackathon flips whether a hackathon is shown to students
func (s *Service) ToggleHackathon(ctx context.Context, actor *model.Identity, id string) (*model.Hackathon, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	hackathon, err := s.storage.GetHackathon(ctx, id)
	if err != nil {
		return nil, err
	}
	hackathon.Active = !hackathon.Active
	hackathon.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveHackathon(ctx, hackathon); err != nil {
		return nil, err
	}
	s.logger.Info("hackathon toggled",
		slog.String("hackathon_id", id),
		slog.Bool("active", hackathon.Active))
	return hackathon, nil
}

// DeleteHackathon removes a hackathon
func (s *Service) DeleteHackathon(ctx context.Context, actor *model.Identity, id string) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.storage.GetHackathon(ctx, id); err != nil {
		return err
	}
	return s.storage.DeleteHackathon(ctx, id)
}

func validateHackathon(h *model.Hackathon) error {
	if strings.TrimSpace(h.Title) == "" || strings.TrimSpace(h.Organizer) == "" {
		return fmt.Errorf("%w: title and organizer are required", model.ErrInvalidInput)
	}
	if !h.StartDate.IsZero() && !h.EndDate.IsZero() && h.EndDate.Before(h.StartDate) {
		return fmt.Errorf("%w: end date is before start date", model.ErrInvalidInput)
	}
	return nil
}
