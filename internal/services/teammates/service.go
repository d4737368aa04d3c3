// Package teammates lets students advertise for hackathon teammates.
package teammates

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

// maxTeamSize bounds the team size a request can ask for
const maxTeamSize = 10

// Service manages teammate requests
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new teammates Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "teammates")),
	}
}

// Post publishes a request authored by the actor
func (s *Service) Post(ctx context.Context, actor *model.Identity, req *model.TeammateRequest) (*model.TeammateRequest, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.HackathonName) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: hackathon name and description are required", model.ErrInvalidInput)
	}
	if req.TeamSize < 0 || req.TeamSize > maxTeamSize {
		return nil, fmt.Errorf("%w: team size must be between 1 and %d", model.ErrInvalidInput, maxTeamSize)
	}

	created := *req
	created.ID = s.random.UUID()
	created.AuthorID = actor.ID
	created.AuthorName = actor.Name
	created.CreatedAt = s.clock.Now()
	created.Skills = cleanSkills(req.Skills)
	if created.TeamSize == 0 {
		created.TeamSize = 1
	}

	if err := s.storage.SaveTeammateRequest(ctx, &created); err != nil {
		return nil, err
	}
	s.logger.Info("teammate request posted",
		slog.String("request_id", created.ID),
		slog.String("actor_id", string(actor.ID)))
	return &created, nil
}

// List returns every teammate request
func (s *Service) List(ctx context.Context, actor *model.Identity) ([]*model.TeammateRequest, error) {
	if err := access.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	return s.storage.ListTeammateRequests(ctx)
}

// Search returns requests whose hackathon name, description or skills
// contain query, ignoring case. An empty query matches everything.
func (s *Service) Search(ctx context.Context, actor *model.Identity, query string) ([]*model.TeammateRequest, error) {
	all, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	matches := make([]*model.TeammateRequest, 0, len(all))
	for _, req := range all {
		if matchesQuery(req, query) {
			matches = append(matches, req)
		}
	}
	return matches, nil
}

// Delete removes a request. Only its author or an administrator may.
func (s *Service) Delete(ctx context.Context, actor *model.Identity, id string) error {
	if err := access.RequireAuthenticated(actor); err != nil {
		return err
	}
	req, err := s.storage.GetTeammateRequest(ctx, id)
	if err != nil {
		return err
	}
	if err := access.RequireSelfOrAdmin(actor, req.AuthorID); err != nil {
		return err
	}
	return s.storage.DeleteTeammateRequest(ctx, id)
}

func matchesQuery(req *model.TeammateRequest, query string) bool {
	if strings.Contains(strings.ToLower(req.HackathonName), query) ||
		strings.Contains(strings.ToLower(req.Description), query) {
		return true
	}
	for _, skill := range req.Skills {
		if strings.Contains(strings.ToLower(skill), query) {
			return true
		}
	}
	return false
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	return out
}
