package teammates

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
	rahul   *model.Identity
	priya   *model.Identity
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	s.service = New(memory.New(), s.clock, mocks.NewMockRandom(), testutil.NopLogger())
	s.ctx = context.Background()
	s.admin = &model.Identity{ID: "admin-1", Name: "Admin User", Role: model.RoleAdmin}
	s.rahul = &model.Identity{ID: "s1", Name: "Rahul Sharma", Role: model.RoleStudent}
	s.priya = &model.Identity{ID: "s2", Name: "Priya Patel", Role: model.RoleStudent}
}

func (s *ServiceSuite) post(actor *model.Identity, hackathon, description string, skills ...string) *model.TeammateRequest {
	req, err := s.service.Post(s.ctx, actor, &model.TeammateRequest{
		HackathonName: hackathon,
		Description:   description,
		Skills:        skills,
		TeamSize:      3,
	})
	s.Require().NoError(err)
	return req
}

func (s *ServiceSuite) TestPostTakesAuthorFromActor() {
	req, err := s.service.Post(s.ctx, s.rahul, &model.TeammateRequest{
		AuthorID:      "someone-else",
		HackathonName: "Smart India Hackathon",
		Description:   "Need a frontend dev",
		Skills:        []string{" React ", ""},
	})
	s.Require().NoError(err)

	s.Equal(model.IdentityID("s1"), req.AuthorID)
	s.Equal("Rahul Sharma", req.AuthorName)
	s.Equal([]string{"React"}, req.Skills)
	s.Equal(1, req.TeamSize)
}

func (s *ServiceSuite) TestPostRequiresSession() {
	_, err := s.service.Post(s.ctx, nil, &model.TeammateRequest{HackathonName: "X", Description: "Y"})
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *ServiceSuite) TestPostValidation() {
	_, err := s.service.Post(s.ctx, s.rahul, &model.TeammateRequest{HackathonName: "X"})
	s.ErrorIs(err, model.ErrInvalidInput)

	_, err = s.service.Post(s.ctx, s.rahul, &model.TeammateRequest{HackathonName: "X", Description: "Y", TeamSize: 50})
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ServiceSuite) TestSearchIsCaseInsensitive() {
	s.post(s.rahul, "Smart India Hackathon", "Looking for ML folks", "Python", "TensorFlow")
	s.clock.Advance(time.Minute)
	s.post(s.priya, "CodeFest", "Embedded team", "C", "Arduino")

	byName, err := s.service.Search(s.ctx, s.rahul, "smart india")
	s.Require().NoError(err)
	s.Require().Len(byName, 1)
	s.Equal("s1", string(byName[0].AuthorID))

	bySkill, err := s.service.Search(s.ctx, s.rahul, "ARDUINO")
	s.Require().NoError(err)
	s.Require().Len(bySkill, 1)
	s.Equal("CodeFest", bySkill[0].HackathonName)

	byDescription, err := s.service.Search(s.ctx, s.rahul, "ml folks")
	s.Require().NoError(err)
	s.Len(byDescription, 1)

	all, err := s.service.Search(s.ctx, s.rahul, "  ")
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *ServiceSuite) TestDeleteOwnerOrAdmin() {
	req := s.post(s.rahul, "CodeFest", "Need a designer")

	s.ErrorIs(s.service.Delete(s.ctx, s.priya, req.ID), model.ErrForbidden)
	s.NoError(s.service.Delete(s.ctx, s.rahul, req.ID))

	other := s.post(s.priya, "CodeFest", "Need a backend dev")
	s.NoError(s.service.Delete(s.ctx, s.admin, other.ID))

	s.ErrorIs(s.service.Delete(s.ctx, s.admin, other.ID), model.ErrTeammateRequestNotFound)
}
