// Package storagetest holds the behavioural suite every storage backend must pass.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/storage"
)

// Suite exercises a storage.Storage implementation. Backends embed it and
// set Storage in their own SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func identity(id, email string, role model.Role, offset time.Duration) *model.Identity {
	return &model.Identity{
		ID:        model.IdentityID(id),
		Name:      "User " + id,
		Email:     email,
		Role:      role,
		Verified:  true,
		CreatedAt: base.Add(offset),
		UpdatedAt: base.Add(offset),
	}
}

// Identity tests

func (s *Suite) TestSaveAndGetIdentity() {
	in := identity("u1", "Rahul.S@College.edu ", model.RoleStudent, 0)
	in.Department = "Computer Science"
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, in))

	got, err := s.Storage.GetIdentity(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal("rahul.s@college.edu", got.Email)
	s.Equal(model.RoleStudent, got.Role)
	s.Equal("Computer Science", got.Department)
	s.True(got.CreatedAt.Equal(in.CreatedAt))
}

func (s *Suite) TestGetIdentityNotFound() {
	_, err := s.Storage.GetIdentity(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

func (s *Suite) TestGetIdentityByEmailIsCaseInsensitive() {
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, identity("u1", "priya.p@college.edu", model.RoleStudent, 0)))

	got, err := s.Storage.GetIdentityByEmail(s.Ctx, "PRIYA.P@college.edu")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("u1"), got.ID)
}

func (s *Suite) TestSaveIdentityRejectsDuplicateEmail() {
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, identity("u1", "dup@college.edu", model.RoleStudent, 0)))

	err := s.Storage.SaveIdentity(s.Ctx, identity("u2", "dup@college.edu", model.RoleStudent, time.Second))
	s.ErrorIs(err, model.ErrEmailTaken)
}

func (s *Suite) TestSaveIdentityAllowsResaveWithSameEmail() {
	in := identity("u1", "same@college.edu", model.RoleStudent, 0)
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, in))

	in.Verified = false
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, in))

	got, err := s.Storage.GetIdentity(s.Ctx, "u1")
	s.Require().NoError(err)
	s.False(got.Verified)
}

func (s *Suite) TestSaveIdentityEmailChangeReleasesOldEmail() {
	in := identity("u1", "old@college.edu", model.RoleStudent, 0)
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, in))

	in.Email = "new@college.edu"
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, in))

	_, err := s.Storage.GetIdentityByEmail(s.Ctx, "old@college.edu")
	s.ErrorIs(err, model.ErrIdentityNotFound)
	s.NoError(s.Storage.SaveIdentity(s.Ctx, identity("u2", "old@college.edu", model.RoleStudent, time.Second)))
}

func (s *Suite) TestListIdentitiesFiltersByRole() {
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, identity("admin", "admin@college.edu", model.RoleAdmin, 0)))
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, identity("s2", "b@college.edu", model.RoleStudent, 2*time.Second)))
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, identity("s1", "a@college.edu", model.RoleStudent, time.Second)))

	students, err := s.Storage.ListIdentities(s.Ctx, model.RoleStudent)
	s.Require().NoError(err)
	s.Require().Len(students, 2)
	s.Equal(model.IdentityID("s1"), students[0].ID)
	s.Equal(model.IdentityID("s2"), students[1].ID)

	all, err := s.Storage.ListIdentities(s.Ctx, "")
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *Suite) TestDeleteIdentityFreesEmail() {
	s.Require().NoError(s.Storage.SaveIdentity(s.Ctx, identity("u1", "gone@college.edu", model.RoleStudent, 0)))
	s.Require().NoError(s.Storage.DeleteIdentity(s.Ctx, "u1"))

	_, err := s.Storage.GetIdentity(s.Ctx, "u1")
	s.ErrorIs(err, model.ErrIdentityNotFound)
	_, err = s.Storage.GetIdentityByEmail(s.Ctx, "gone@college.edu")
	s.ErrorIs(err, model.ErrIdentityNotFound)
	s.NoError(s.Storage.DeleteIdentity(s.Ctx, "u1"))
}

// Credential tests

func (s *Suite) TestSaveAndGetCredential() {
	cred := &model.Credential{IdentityID: "u1", Email: "Neha.G@college.edu", PasswordHash: "hash", UpdatedAt: base}
	s.Require().NoError(s.Storage.SaveCredential(s.Ctx, cred))

	got, err := s.Storage.GetCredentialByEmail(s.Ctx, "neha.g@college.edu")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("u1"), got.IdentityID)
	s.Equal("hash", got.PasswordHash)

	byID, err := s.Storage.GetCredential(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Equal("neha.g@college.edu", byID.Email)
}

func (s *Suite) TestSaveCredentialEmailChangeMovesLookup() {
	cred := &model.Credential{IdentityID: "u1", Email: "before@college.edu", PasswordHash: "hash"}
	s.Require().NoError(s.Storage.SaveCredential(s.Ctx, cred))

	cred.Email = "after@college.edu"
	s.Require().NoError(s.Storage.SaveCredential(s.Ctx, cred))

	_, err := s.Storage.GetCredentialByEmail(s.Ctx, "before@college.edu")
	s.ErrorIs(err, model.ErrIdentityNotFound)
	got, err := s.Storage.GetCredentialByEmail(s.Ctx, "after@college.edu")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("u1"), got.IdentityID)
}

func (s *Suite) TestGetCredentialNotFound() {
	_, err := s.Storage.GetCredentialByEmail(s.Ctx, "nobody@college.edu")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

func (s *Suite) TestDeleteCredential() {
	s.Require().NoError(s.Storage.SaveCredential(s.Ctx, &model.Credential{IdentityID: "u1", Email: "x@college.edu", PasswordHash: "h"}))
	s.Require().NoError(s.Storage.DeleteCredential(s.Ctx, "u1"))

	_, err := s.Storage.GetCredentialByEmail(s.Ctx, "x@college.edu")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

// Auth session tests

func (s *Suite) TestSaveAndGetAuthSession() {
	in := &model.AuthSession{ID: "sess1", IdentityID: "u1", CreatedAt: base, ExpiresAt: base.Add(time.Hour)}
	s.Require().NoError(s.Storage.SaveAuthSession(s.Ctx, in))

	got, err := s.Storage.GetAuthSession(s.Ctx, "sess1")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("u1"), got.IdentityID)
	s.True(got.ExpiresAt.Equal(in.ExpiresAt))
}

func (s *Suite) TestGetAuthSessionNotFound() {
	_, err := s.Storage.GetAuthSession(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *Suite) TestListAuthSessionsForIdentity() {
	for i, id := range []model.SessionID{"a", "b", "c"} {
		owner := model.IdentityID("u1")
		if id == "c" {
			owner = "u2"
		}
		s.Require().NoError(s.Storage.SaveAuthSession(s.Ctx, &model.AuthSession{
			ID: id, IdentityID: owner, CreatedAt: base.Add(time.Duration(i) * time.Second), ExpiresAt: base.Add(time.Hour),
		}))
	}

	mine, err := s.Storage.ListAuthSessionsForIdentity(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(mine, 2)
	s.Equal(model.SessionID("a"), mine[0].ID)

	all, err := s.Storage.ListAuthSessions(s.Ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *Suite) TestDeleteAuthSession() {
	s.Require().NoError(s.Storage.SaveAuthSession(s.Ctx, &model.AuthSession{ID: "a", IdentityID: "u1", CreatedAt: base, ExpiresAt: base.Add(time.Hour)}))
	s.Require().NoError(s.Storage.DeleteAuthSession(s.Ctx, "a"))

	_, err := s.Storage.GetAuthSession(s.Ctx, "a")
	s.ErrorIs(err, model.ErrSessionNotFound)
	mine, err := s.Storage.ListAuthSessionsForIdentity(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Empty(mine)
	s.NoError(s.Storage.DeleteAuthSession(s.Ctx, "a"))
}

// Portal record tests

func (s *Suite) TestJobLifecycle() {
	job := &model.Job{
		ID: "j1", Title: "Software Engineer", Company: "TechCorp", Type: model.JobFullTime,
		Requirements: []string{"Go", "SQL"}, Deadline: base.Add(48 * time.Hour), CreatedAt: base,
	}
	s.Require().NoError(s.Storage.SaveJob(s.Ctx, job))

	got, err := s.Storage.GetJob(s.Ctx, "j1")
	s.Require().NoError(err)
	s.Equal("TechCorp", got.Company)
	s.Equal([]string{"Go", "SQL"}, got.Requirements)

	jobs, err := s.Storage.ListJobs(s.Ctx)
	s.Require().NoError(err)
	s.Len(jobs, 1)

	s.Require().NoError(s.Storage.DeleteJob(s.Ctx, "j1"))
	_, err = s.Storage.GetJob(s.Ctx, "j1")
	s.ErrorIs(err, model.ErrJobNotFound)
}

func (s *Suite) TestCertificationLifecycle() {
	s.Require().NoError(s.Storage.SaveCertification(s.Ctx, &model.Certification{ID: "c1", Title: "AWS Cloud Practitioner", Active: true, CreatedAt: base}))

	got, err := s.Storage.GetCertification(s.Ctx, "c1")
	s.Require().NoError(err)
	s.True(got.Active)

	s.Require().NoError(s.Storage.DeleteCertification(s.Ctx, "c1"))
	certs, err := s.Storage.ListCertifications(s.Ctx)
	s.Require().NoError(err)
	s.Empty(certs)
	_, err = s.Storage.GetCertification(s.Ctx, "c1")
	s.ErrorIs(err, model.ErrCertificationNotFound)
}

func (s *Suite) TestHackathonLifecycle() {
	s.Require().NoError(s.Storage.SaveHackathon(s.Ctx, &model.Hackathon{ID: "h2", Title: "Late", CreatedAt: base.Add(time.Second)}))
	s.Require().NoError(s.Storage.SaveHackathon(s.Ctx, &model.Hackathon{ID: "h1", Title: "Early", CreatedAt: base}))

	hackathons, err := s.Storage.ListHackathons(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(hackathons, 2)
	s.Equal("h1", hackathons[0].ID)

	s.Require().NoError(s.Storage.DeleteHackathon(s.Ctx, "h1"))
	_, err = s.Storage.GetHackathon(s.Ctx, "h1")
	s.ErrorIs(err, model.ErrHackathonNotFound)
}

func (s *Suite) TestTeammateRequestLifecycle() {
	req := &model.TeammateRequest{ID: "t1", AuthorID: "u1", HackathonName: "Smart India", Skills: []string{"React"}, TeamSize: 4, CreatedAt: base}
	s.Require().NoError(s.Storage.SaveTeammateRequest(s.Ctx, req))

	got, err := s.Storage.GetTeammateRequest(s.Ctx, "t1")
	s.Require().NoError(err)
	s.Equal([]string{"React"}, got.Skills)

	reqs, err := s.Storage.ListTeammateRequests(s.Ctx)
	s.Require().NoError(err)
	s.Len(reqs, 1)

	s.Require().NoError(s.Storage.DeleteTeammateRequest(s.Ctx, "t1"))
	_, err = s.Storage.GetTeammateRequest(s.Ctx, "t1")
	s.ErrorIs(err, model.ErrTeammateRequestNotFound)
}
