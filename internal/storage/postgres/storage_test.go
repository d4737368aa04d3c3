package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/suite"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

type StorageSuite struct {
	suite.Suite
	db      *sql.DB
	mock    sqlmock.Sqlmock
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	s.Require().NoError(err)
	s.db = db
	s.mock = mock
	s.storage = NewWithDB(db)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	_ = s.db.Close()
}

var identityRow = []string{"id", "name", "email", "role", "department", "year", "status", "verified", "created_at", "updated_at"}

func (s *StorageSuite) TestSaveIdentityNormalizesEmail() {
	s.mock.ExpectExec(`(?s)^INSERT\s+INTO\s+identities.*ON\s+CONFLICT\s+\(id\)\s+DO\s+UPDATE`).
		WithArgs("u1", "Rahul Sharma", "rahul.s@college.edu", "student", "Computer Science", "4th Year", "active", true, s.now, s.now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.storage.SaveIdentity(s.ctx, &model.Identity{
		ID: "u1", Name: "Rahul Sharma", Email: " Rahul.S@College.edu", Role: model.RoleStudent,
		Department: "Computer Science", Year: "4th Year", Status: model.StatusActive, Verified: true,
		CreatedAt: s.now, UpdatedAt: s.now,
	})
	s.NoError(err)
}

func (s *StorageSuite) TestSaveIdentityMapsUniqueViolation() {
	s.mock.ExpectExec(`(?s)^INSERT\s+INTO\s+identities`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "identities_email_key"})

	err := s.storage.SaveIdentity(s.ctx, &model.Identity{ID: "u2", Email: "dup@college.edu", Role: model.RoleStudent})
	s.ErrorIs(err, model.ErrEmailTaken)
}

func (s *StorageSuite) TestSaveIdentityWrapsOtherErrors() {
	s.mock.ExpectExec(`(?s)^INSERT\s+INTO\s+identities`).WillReturnError(errors.New("db down"))

	err := s.storage.SaveIdentity(s.ctx, &model.Identity{ID: "u2", Email: "x@college.edu", Role: model.RoleStudent})
	s.Require().Error(err)
	s.Contains(err.Error(), "db error: db down")
}

func (s *StorageSuite) TestGetIdentityFound() {
	s.mock.ExpectQuery(`(?s)^SELECT\s+id,\s*name,.*FROM\s+identities\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("admin-1").
		WillReturnRows(sqlmock.NewRows(identityRow).
			AddRow("admin-1", "Admin User", "admin@college.edu", "admin", "", "", "", true, s.now, s.now))

	got, err := s.storage.GetIdentity(s.ctx, "admin-1")
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, got.Role)
	s.True(got.IsAdmin())
}

func (s *StorageSuite) TestGetIdentityNotFound() {
	s.mock.ExpectQuery(`FROM\s+identities\s+WHERE\s+id`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.storage.GetIdentity(s.ctx, "missing")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

func (s *StorageSuite) TestGetIdentityByEmailNormalizes() {
	s.mock.ExpectQuery(`FROM\s+identities\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("admin@college.edu").
		WillReturnRows(sqlmock.NewRows(identityRow).
			AddRow("admin-1", "Admin User", "admin@college.edu", "admin", "", "", "", true, s.now, s.now))

	got, err := s.storage.GetIdentityByEmail(s.ctx, "ADMIN@college.edu")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("admin-1"), got.ID)
}

func (s *StorageSuite) TestListIdentitiesByRole() {
	s.mock.ExpectQuery(`(?s)FROM\s+identities\s+WHERE\s+\$1\s*=\s*''\s+OR\s+role\s*=\s*\$1\s+ORDER\s+BY\s+created_at,\s*id`).
		WithArgs("student").
		WillReturnRows(sqlmock.NewRows(identityRow).
			AddRow("s1", "Rahul Sharma", "rahul.s@college.edu", "student", "Computer Science", "4th Year", "active", true, s.now, s.now).
			AddRow("s2", "Priya Patel", "priya.p@college.edu", "student", "Electronics", "3rd Year", "active", true, s.now, s.now))

	got, err := s.storage.ListIdentities(s.ctx, model.RoleStudent)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("Priya Patel", got[1].Name)
}

func (s *StorageSuite) TestGetCredentialByEmail() {
	s.mock.ExpectQuery(`FROM\s+credentials\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("rahul.s@college.edu").
		WillReturnRows(sqlmock.NewRows([]string{"identity_id", "email", "password_hash", "updated_at"}).
			AddRow("s1", "rahul.s@college.edu", "$2a$10$hash", s.now))

	got, err := s.storage.GetCredentialByEmail(s.ctx, "rahul.s@college.edu")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("s1"), got.IdentityID)
}

func (s *StorageSuite) TestGetAuthSessionNotFound() {
	s.mock.ExpectQuery(`FROM\s+auth_sessions\s+WHERE\s+id`).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	_, err := s.storage.GetAuthSession(s.ctx, "gone")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteAuthSession() {
	s.mock.ExpectExec(`^DELETE\s+FROM\s+auth_sessions\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("sess1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.storage.DeleteAuthSession(s.ctx, "sess1"))
}

func (s *StorageSuite) TestSaveJobEncodesRequirements() {
	deadline := s.now.Add(72 * time.Hour)
	s.mock.ExpectExec(`(?s)^INSERT\s+INTO\s+jobs`).
		WithArgs("j1", "Software Engineer", "TechCorp", "Bangalore", "Full-time", "", "", []byte(`["Go","SQL"]`),
			deadline, "admin-1", s.now, s.now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.storage.SaveJob(s.ctx, &model.Job{
		ID: "j1", Title: "Software Engineer", Company: "TechCorp", Location: "Bangalore", Type: model.JobFullTime,
		Requirements: []string{"Go", "SQL"}, Deadline: deadline, PostedBy: "admin-1", CreatedAt: s.now, UpdatedAt: s.now,
	})
	s.NoError(err)
}

func (s *StorageSuite) TestListJobsDecodesRows() {
	cols := []string{"id", "title", "company", "location", "type", "salary", "description", "requirements", "deadline", "posted_by", "created_at", "updated_at"}
	s.mock.ExpectQuery(`FROM\s+jobs\s+ORDER\s+BY\s+created_at,\s*id`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("j1", "Engineer", "TechCorp", "", "Full-time", "", "", []byte(`["Go"]`), nil, "", s.now, s.now))

	jobs, err := s.storage.ListJobs(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(jobs, 1)
	s.Equal([]string{"Go"}, jobs[0].Requirements)
	s.True(jobs[0].Deadline.IsZero())
}

func (s *StorageSuite) TestGetTeammateRequestNotFound() {
	s.mock.ExpectQuery(`FROM\s+teammate_requests\s+WHERE\s+id`).
		WithArgs("t9").
		WillReturnError(sql.ErrNoRows)

	_, err := s.storage.GetTeammateRequest(s.ctx, "t9")
	s.ErrorIs(err, model.ErrTeammateRequestNotFound)
}

func (s *StorageSuite) TestRunMigrationsUsesEmbeddedRoot() {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	s.Require().NoError(RunMigrations(s.ctx, s.db))
	s.Equal(".", gotDir)
}

func (s *StorageSuite) TestRunMigrationsPropagatesError() {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	s.EqualError(RunMigrations(s.ctx, s.db), "boom")
}
