package jobs

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

// Service manages job postings. Reads are open to any signed-in identity;
// writes require an administrator.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new jobs Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "jobs")),
	}
}

// List returns every job posting
func (s *Service) List(ctx context.Context, actor *model.Identity) ([]*model.Job, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	return s.storage.ListJobs(ctx)
}

// Get returns a single job posting
func (s *Service) Get(ctx context.Context, actor *model.Identity, id string) (*model.Job, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	return s.storage.GetJob(ctx, id)
}

// Create posts a new job
func (s *Service) Create(ctx context.Context, actor *model.Identity, job *model.Job) (*model.Job, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validate(job); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	created := *job
	created.ID = s.random.UUID()
	created.PostedBy = actor.ID
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Type == "" {
		created.Type = model.JobFullTime
	}

	if err := s.storage.SaveJob(ctx, &created); err != nil {
		return nil, err
	}
	s.logger.Info("job created",
		slog.String("job_id", created.ID),
		slog.String("actor_id", string(actor.ID)))
	return &created, nil
}

// Update replaces the editable fields of a job
func (s *Service) Update(ctx context.Context, actor *model.Identity, job *model.Job) (*model.Job, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.storage.GetJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	if err := validate(job); err != nil {
		return nil, err
	}

	updated := *job
	updated.PostedBy = current.PostedBy
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.clock.Now()
	if updated.Type == "" {
		updated.Type = current.Type
	}

	if err := s.storage.SaveJob(ctx, &updated); err != nil {
		return nil, err
	}
	s.logger.Info("job updated",
		slog.String("job_id", updated.ID),
		slog.String("actor_id", string(actor.ID)))
	return &updated, nil
}

// Delete removes a job posting
func (s *Service) Delete(ctx context.Context, actor *model.Identity, id string) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.storage.GetJob(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteJob(ctx, id); err != nil {
		return err
	}
	s.logger.Info("job deleted",
		slog.String("job_id", id),
		slog.String("actor_id", string(actor.ID)))
	return nil
}

func validate(job *model.Job) error {
	if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Company) == "" {
		return fmt.Errorf("%w: title and company are required", model.ErrInvalidInput)
	}
	switch job.Type {
	case "", model.JobFullTime, model.JobPartTime, model.JobInternship, model.JobContract:
	default:
		return fmt.Errorf("%w: unknown job type %q", model.ErrInvalidInput, job.Type)
	}
	return nil
}
