package students

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ayu-zh/placement-connector/internal/dependencies/mocks"
	"github.com/Ayu-zh/placement-connector/internal/events"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/services/identity"
	"github.com/Ayu-zh/placement-connector/internal/storage/memory"
	"github.com/Ayu-zh/placement-connector/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	hub      *events.Hub
	identity *identity.Service
	service  *Service
	ctx      context.Context
	admin    *model.Identity
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.hub = events.NewHub(testutil.NopLogger())
	go s.hub.Run()

	cfg := identity.DefaultConfig()
	cfg.TokenSecret = []byte("test-secret")
	cfg.BcryptCost = bcrypt.MinCost
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	var err error
	s.identity, err = identity.New(s.storage, clock, mocks.NewMockRandom(), s.hub, testutil.NopLogger(), cfg)
	s.Require().NoError(err)
	s.service = New(s.storage, s.identity, testutil.NopLogger())
	s.ctx = context.Background()

	s.admin, err = s.identity.Register(s.ctx, identity.NewIdentity{
		Name: "Admin User", Email: "admin@college.edu", Password: "admin123", Role: model.RoleAdmin, Verified: true,
	})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.hub.Close()
}

func (s *ServiceSuite) addRahul() *model.Identity {
	student, err := s.service.Add(s.ctx, s.admin, NewStudent{
		Name: "Rahul Sharma", Email: "rahul.s@college.edu", Password: "password123",
		Department: "Computer Science", Year: "4th Year", Verified: true,
	})
	s.Require().NoError(err)
	return student
}

func (s *ServiceSuite) TestAddCreatesActiveStudent() {
	student := s.addRahul()

	s.Equal(model.RoleStudent, student.Role)
	s.Equal(model.StatusActive, student.Status)

	_, err := s.identity.SignIn(s.ctx, "rahul.s@college.edu", "password123")
	s.NoError(err)
}

func (s *ServiceSuite) TestStudentCannotManageStudents() {
	student := s.addRahul()

	_, err := s.service.List(s.ctx, student)
	s.ErrorIs(err, model.ErrForbidden)
	_, err = s.service.Add(s.ctx, student, NewStudent{Name: "X", Email: "x@college.edu", Password: "p"})
	s.ErrorIs(err, model.ErrForbidden)
	_, err = s.service.ToggleVerification(s.ctx, student, student.ID)
	s.ErrorIs(err, model.ErrForbidden)
	s.ErrorIs(s.service.Delete(s.ctx, student, student.ID), model.ErrForbidden)
}

func (s *ServiceSuite) TestStudentCanReadOwnRecordOnly() {
	rahul := s.addRahul()
	priya, err := s.service.Add(s.ctx, s.admin, NewStudent{Name: "Priya Patel", Email: "priya.p@college.edu", Password: "password123"})
	s.Require().NoError(err)

	got, err := s.service.Get(s.ctx, rahul, rahul.ID)
	s.Require().NoError(err)
	s.Equal("Rahul Sharma", got.Name)

	_, err = s.service.Get(s.ctx, rahul, priya.ID)
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ServiceSuite) TestListOnlyReturnsStudents() {
	s.addRahul()

	list, err := s.service.List(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("rahul.s@college.edu", list[0].Email)
}

func (s *ServiceSuite) TestAdminRecordIsNotAStudent() {
	_, err := s.service.Get(s.ctx, s.admin, s.admin.ID)
	s.ErrorIs(err, model.ErrIdentityNotFound)
	s.ErrorIs(s.service.Delete(s.ctx, s.admin, s.admin.ID), model.ErrIdentityNotFound)
}

func (s *ServiceSuite) TestToggleVerification() {
	student := s.addRahul()

	toggled, err := s.service.ToggleVerification(s.ctx, s.admin, student.ID)
	s.Require().NoError(err)
	s.False(toggled.Verified)

	toggled, err = s.service.ToggleVerification(s.ctx, s.admin, student.ID)
	s.Require().NoError(err)
	s.True(toggled.Verified)
}

func (s *ServiceSuite) TestUpdateCannotPromote() {
	student := s.addRahul()

	change := student.Clone()
	change.Role = model.RoleAdmin
	change.Year = "Graduated"
	updated, err := s.service.Update(s.ctx, s.admin, change, "")
	s.Require().NoError(err)

	s.Equal(model.RoleStudent, updated.Role)
	s.Equal("Graduated", updated.Year)
}

func (s *ServiceSuite) TestUpdateWithPassword() {
	student := s.addRahul()

	_, err := s.service.Update(s.ctx, s.admin, student, "fresh-pass")
	s.Require().NoError(err)

	_, err = s.identity.SignIn(s.ctx, "rahul.s@college.edu", "fresh-pass")
	s.NoError(err)
}

func (s *ServiceSuite) TestPasswordResetEndsOldSessions() {
	student := s.addRahul()
	grant, err := s.identity.SignIn(s.ctx, "rahul.s@college.edu", "password123")
	s.Require().NoError(err)

	_, err = s.service.Update(s.ctx, s.admin, student, "fresh-pass")
	s.Require().NoError(err)

	_, err = s.identity.Resume(s.ctx, grant.Token)
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *ServiceSuite) TestDeleteRevokesSessions() {
	student := s.addRahul()
	grant, err := s.identity.SignIn(s.ctx, "rahul.s@college.edu", "password123")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, s.admin, student.ID))

	_, err = s.identity.Resume(s.ctx, grant.Token)
	s.ErrorIs(err, model.ErrInvalidSession)
}
