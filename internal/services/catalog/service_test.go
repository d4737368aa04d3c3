package catalog

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
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	s.service = New(memory.New(), s.clock, mocks.NewMockRandom(), testutil.NopLogger())
	s.ctx = context.Background()
	s.admin = &model.Identity{ID: "admin-1", Role: model.RoleAdmin}
	s.student = &model.Identity{ID: "s1", Role: model.RoleStudent}
}

func (s *ServiceSuite) TestInactiveCertificationsHiddenFromStudents() {
	_, err := s.service.CreateCertification(s.ctx, s.admin, &model.Certification{Title: "AWS Cloud Practitioner", Provider: "Amazon", Active: true})
	s.Require().NoError(err)
	_, err = s.service.CreateCertification(s.ctx, s.admin, &model.Certification{Title: "Retired Course", Provider: "Nobody"})
	s.Require().NoError(err)

	adminView, err := s.service.ListCertifications(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Len(adminView, 2)

	studentView, err := s.service.ListCertifications(s.ctx, s.student)
	s.Require().NoError(err)
	s.Require().Len(studentView, 1)
	s.Equal("AWS Cloud Practitioner", studentView[0].Title)
}

func (s *ServiceSuite) TestToggleCertification() {
	cert, err := s.service.CreateCertification(s.ctx, s.admin, &model.Certification{Title: "CCNA", Provider: "Cisco", Active: true})
	s.Require().NoError(err)

	toggled, err := s.service.ToggleCertification(s.ctx, s.admin, cert.ID)
	s.Require().NoError(err)
	s.False(toggled.Active)

	_, err = s.service.ToggleCertification(s.ctx, s.student, cert.ID)
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ServiceSuite) TestStudentCannotWriteCatalog() {
	_, err := s.service.CreateCertification(s.ctx, s.student, &model.Certification{Title: "CCNA", Provider: "Cisco"})
	s.ErrorIs(err, model.ErrForbidden)
	_, err = s.service.CreateHackathon(s.ctx, s.student, &model.Hackathon{Title: "Smart India", Organizer: "Gov"})
	s.ErrorIs(err, model.ErrForbidden)
	s.ErrorIs(s.service.DeleteHackathon(s.ctx, s.student, "any"), model.ErrForbidden)
	s.ErrorIs(s.service.DeleteCertification(s.ctx, nil, "any"), model.ErrInvalidSession)
}

func (s *ServiceSuite) TestHackathonDatesValidated() {
	start := s.clock.Now().Add(24 * time.Hour)
	_, err := s.service.CreateHackathon(s.ctx, s.admin, &model.Hackathon{
		Title: "CodeFest", Organizer: "CS Dept", StartDate: start, EndDate: start.Add(-time.Hour),
	})
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ServiceSuite) TestHackathonLifecycle() {
	start := s.clock.Now().Add(24 * time.Hour)
	h, err := s.service.CreateHackathon(s.ctx, s.admin, &model.Hackathon{
		Title: "CodeFest", Organizer: "CS Dept", StartDate: start, EndDate: start.Add(48 * time.Hour), Active: true,
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	change := *h
	change.Location = "Main Auditorium"
	updated, err := s.service.UpdateHackathon(s.ctx, s.admin, &change)
	s.Require().NoError(err)
	s.Equal(h.CreatedAt, updated.CreatedAt)
	s.Equal(s.clock.Now(), updated.UpdatedAt)

	visible, err := s.service.ListHackathons(s.ctx, s.student)
	s.Require().NoError(err)
	s.Len(visible, 1)

	_, err = s.service.ToggleHackathon(s.ctx, s.admin, h.ID)
	s.Require().NoError(err)
	visible, err = s.service.ListHackathons(s.ctx, s.student)
	s.Require().NoError(err)
	s.Empty(visible)

	s.Require().NoError(s.service.DeleteHackathon(s.ctx, s.admin, h.ID))
	s.ErrorIs(s.service.DeleteHackathon(s.ctx, s.admin, h.ID), model.ErrHackathonNotFound)
}
