// Package dashboard computes the placement cell's aggregate statistics.
package dashboard

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Ayu-zh/placement-connector/internal/dependencies/clock"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/access"
	"github.com/Ayu-zh/placement-connector/internal/storage"
)

// Service computes dashboard statistics
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new dashboard Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "dashboard")),
	}
}

// Stats aggregates student, job and hackathon counts for administrators
func (s *Service) Stats(ctx context.Context, actor *model.Identity) (*model.DashboardStats, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	students, err := s.storage.ListIdentities(ctx, model.RoleStudent)
	if err != nil {
		return nil, err
	}
	jobs, err := s.storage.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	hackathons, err := s.storage.ListHackathons(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	stats := &model.DashboardStats{
		TotalStudents:  len(students),
		StudentsByDept: make(map[string]int),
		TotalJobs:      len(jobs),
		GeneratedAt:    now,
	}
	for _, student := range students {
		if student.Status == model.StatusActive {
			stats.ActiveStudents++
		}
		if student.Verified {
			stats.VerifiedStudents++
		}
		dept := student.Department
		if dept == "" {
			dept = "Unassigned"
		}
		stats.StudentsByDept[dept]++
	}

	companies := make(map[string]struct{})
	for _, job := range jobs {
		companies[strings.ToLower(strings.TrimSpace(job.Company))] = struct{}{}
		if job.Open(now) {
			stats.OpenJobs++
		}
	}
	stats.RegisteredCompanies = len(companies)

	for _, h := range hackathons {
		if h.Active {
			stats.ActiveHackathons++
		}
	}
	return stats, nil
}
