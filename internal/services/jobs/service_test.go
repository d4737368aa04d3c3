package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Ayu-zh/placement-connector/internal/dependencies/mocks"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/storage/memory"
	"github.com/Ayu-zh/placement-connector/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
	admin   *model.Identity
	student *model.Identity
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, mocks.NewMockRandom(), testutil.NopLogger())
	s.ctx = context.Background()
	s.admin = &model.Identity{ID: "admin-1", Role: model.RoleAdmin}
	s.student = &model.Identity{ID: "s1", Role: model.RoleStudent}
}

func (s *ServiceSuite) newJob() *model.Job {
	return &model.Job{
		Title:    "Software Engineer",
		Company:  "TechCorp",
		Location: "Bangalore",
		Type:     model.JobFullTime,
		Deadline: s.clock.Now().Add(14 * 24 * time.Hour),
	}
}

func (s *ServiceSuite) TestAdminCanCreateJob() {
	job, err := s.service.Create(s.ctx, s.admin, s.newJob())
	s.Require().NoError(err)

	s.NotEmpty(job.ID)
	s.Equal(model.IdentityID("admin-1"), job.PostedBy)
	s.Equal(s.clock.Now(), job.CreatedAt)
}

func (s *ServiceSuite) TestStudentCannotCreateJob() {
	_, err := s.service.Create(s.ctx, s.student, s.newJob())
	s.ErrorIs(err, model.ErrForbidden)

	jobs, _ := s.storage.ListJobs(s.ctx)
	s.Empty(jobs)
}

func (s *ServiceSuite) TestAnonymousCannotList() {
	_, err := s.service.List(s.ctx, nil)
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *ServiceSuite) TestStudentCanReadJobs() {
	created, _ := s.service.Create(s.ctx, s.admin, s.newJob())

	jobs, err := s.service.List(s.ctx, s.student)
	s.Require().NoError(err)
	s.Len(jobs, 1)

	got, err := s.service.Get(s.ctx, s.student, created.ID)
	s.Require().NoError(err)
	s.Equal("TechCorp", got.Company)
}

func (s *ServiceSuite) TestCreateValidates() {
	job := s.newJob()
	job.Company = ""
	_, err := s.service.Create(s.ctx, s.admin, job)
	s.ErrorIs(err, model.ErrInvalidInput)

	job = s.newJob()
	job.Type = "Gig"
	_, err = s.service.Create(s.ctx, s.admin, job)
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ServiceSuite) TestUpdateKeepsProvenance() {
	created, _ := s.service.Create(s.ctx, s.admin, s.newJob())
	s.clock.Advance(time.Hour)

	change := *created
	change.Title = "Senior Software Engineer"
	change.PostedBy = "someone-else"
	updated, err := s.service.Update(s.ctx, s.admin, &change)
	s.Require().NoError(err)

	s.Equal("Senior Software Engineer", updated.Title)
	s.Equal(model.IdentityID("admin-1"), updated.PostedBy)
	s.Equal(created.CreatedAt, updated.CreatedAt)
	s.Equal(s.clock.Now(), updated.UpdatedAt)
}

func (s *ServiceSuite) TestStudentCannotUpdateOrDelete() {
	created, _ := s.service.Create(s.ctx, s.admin, s.newJob())

	_, err := s.service.Update(s.ctx, s.student, created)
	s.ErrorIs(err, model.ErrForbidden)
	s.ErrorIs(s.service.Delete(s.ctx, s.student, created.ID), model.ErrForbidden)

	_, err = s.storage.GetJob(s.ctx, created.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestDeleteJob() {
	created, _ := s.service.Create(s.ctx, s.admin, s.newJob())

	s.Require().NoError(s.service.Delete(s.ctx, s.admin, created.ID))
	s.ErrorIs(s.service.Delete(s.ctx, s.admin, created.ID), model.ErrJobNotFound)
}
