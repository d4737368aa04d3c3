package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/storage"
	"github.com/Ayu-zh/placement-connector/internal/storage/postgres/migrations"
)

// uniqueViolation is the SQLSTATE for unique constraint failures
const uniqueViolation = "23505"

// Storage is a Postgres-backed implementation of the storage interface
type Storage struct {
	db *sql.DB
}

// New opens a connection pool, verifies it and applies migrations if configured
func New(ctx context.Context, cfg Config) (*Storage, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.Migrate {
		if err := RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &Storage{db: db}, nil
}

// NewWithDB creates a Postgres storage with an existing handle (for testing)
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func dbError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.ErrEmailTaken
	}
	return fmt.Errorf("db error: %w", err)
}

// Identity operations

const identityColumns = `id, name, email, role, department, year, status, verified, created_at, updated_at`

func scanIdentity(row scanner) (*model.Identity, error) {
	var i model.Identity
	if err := row.Scan(&i.ID, &i.Name, &i.Email, &i.Role, &i.Department, &i.Year, &i.Status, &i.Verified, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.Identity) error {
	query :=
		`INSERT INTO identities (` + identityColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name, email = EXCLUDED.email, role = EXCLUDED.role,
		   department = EXCLUDED.department, year = EXCLUDED.year, status = EXCLUDED.status,
		   verified = EXCLUDED.verified, updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		identity.ID, identity.Name, storage.NormalizeEmail(identity.Email), identity.Role,
		identity.Department, identity.Year, identity.Status, identity.Verified,
		identity.CreatedAt, identity.UpdatedAt)
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	return s.getIdentity(ctx, query, id)
}

func (s *Storage) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`
	return s.getIdentity(ctx, query, storage.NormalizeEmail(email))
}

func (s *Storage) getIdentity(ctx context.Context, query string, arg any) (*model.Identity, error) {
	identity, err := scanIdentity(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, dbError(err)
	}
	return identity, nil
}

func (s *Storage) ListIdentities(ctx context.Context, role model.Role) ([]*model.Identity, error) {
	query :=
		`SELECT ` + identityColumns + ` FROM identities
		 WHERE $1 = '' OR role = $1
		 ORDER BY created_at, id`
	return queryAll(ctx, s.db, scanIdentity, query, role)
}

func (s *Storage) DeleteIdentity(ctx context.Context, id model.IdentityID) error {
	return s.exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	query :=
		`INSERT INTO credentials (identity_id, email, password_hash, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (identity_id) DO UPDATE SET
		   email = EXCLUDED.email, password_hash = EXCLUDED.password_hash, updated_at = EXCLUDED.updated_at`
	return s.exec(ctx, query, cred.IdentityID, storage.NormalizeEmail(cred.Email), cred.PasswordHash, cred.UpdatedAt)
}

const credentialColumns = `identity_id, email, password_hash, updated_at`

func scanCredential(row scanner) (*model.Credential, error) {
	var c model.Credential
	if err := row.Scan(&c.IdentityID, &c.Email, &c.PasswordHash, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Storage) GetCredential(ctx context.Context, id model.IdentityID) (*model.Credential, error) {
	return getOne(ctx, s.db, scanCredential, model.ErrIdentityNotFound,
		`SELECT `+credentialColumns+` FROM credentials WHERE identity_id = $1`, id)
}

func (s *Storage) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	return getOne(ctx, s.db, scanCredential, model.ErrIdentityNotFound,
		`SELECT `+credentialColumns+` FROM credentials WHERE email = $1`, storage.NormalizeEmail(email))
}

func (s *Storage) DeleteCredential(ctx context.Context, id model.IdentityID) error {
	return s.exec(ctx, `DELETE FROM credentials WHERE identity_id = $1`, id)
}

// Auth session operations

const sessionColumns = `id, identity_id, created_at, expires_at`

func scanAuthSession(row scanner) (*model.AuthSession, error) {
	var a model.AuthSession
	if err := row.Scan(&a.ID, &a.IdentityID, &a.CreatedAt, &a.ExpiresAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Storage) SaveAuthSession(ctx context.Context, session *model.AuthSession) error {
	query :=
		`INSERT INTO auth_sessions (` + sessionColumns + `)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET expires_at = EXCLUDED.expires_at`
	return s.exec(ctx, query, session.ID, session.IdentityID, session.CreatedAt, session.ExpiresAt)
}

func (s *Storage) GetAuthSession(ctx context.Context, id model.SessionID) (*model.AuthSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM auth_sessions WHERE id = $1`
	session, err := scanAuthSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, dbError(err)
	}
	return session, nil
}

func (s *Storage) ListAuthSessions(ctx context.Context) ([]*model.AuthSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM auth_sessions ORDER BY created_at, id`
	return queryAll(ctx, s.db, scanAuthSession, query)
}

func (s *Storage) ListAuthSessionsForIdentity(ctx context.Context, id model.IdentityID) ([]*model.AuthSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM auth_sessions WHERE identity_id = $1 ORDER BY created_at, id`
	return queryAll(ctx, s.db, scanAuthSession, query, id)
}

func (s *Storage) DeleteAuthSession(ctx context.Context, id model.SessionID) error {
	return s.exec(ctx, `DELETE FROM auth_sessions WHERE id = $1`, id)
}

// Job operations

const jobColumns = `id, title, company, location, type, salary, description, requirements, deadline, posted_by, created_at, updated_at`

func scanJob(row scanner) (*model.Job, error) {
	var (
		j            model.Job
		requirements []byte
		deadline     sql.NullTime
	)
	if err := row.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Type, &j.Salary, &j.Description,
		&requirements, &deadline, &j.PostedBy, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeList(requirements, &j.Requirements); err != nil {
		return nil, err
	}
	j.Deadline = deadline.Time
	return &j, nil
}

func (s *Storage) SaveJob(ctx context.Context, job *model.Job) error {
	requirements, err := encodeList(job.Requirements)
	if err != nil {
		return err
	}
	query :=
		`INSERT INTO jobs (` + jobColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title, company = EXCLUDED.company, location = EXCLUDED.location,
		   type = EXCLUDED.type, salary = EXCLUDED.salary, description = EXCLUDED.description,
		   requirements = EXCLUDED.requirements, deadline = EXCLUDED.deadline, updated_at = EXCLUDED.updated_at`
	return s.exec(ctx, query, job.ID, job.Title, job.Company, job.Location, job.Type, job.Salary, job.Description,
		requirements, nullTime(job.Deadline), job.PostedBy, job.CreatedAt, job.UpdatedAt)
}

func (s *Storage) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return getOne(ctx, s.db, scanJob, model.ErrJobNotFound, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
}

func (s *Storage) ListJobs(ctx context.Context) ([]*model.Job, error) {
	return queryAll(ctx, s.db, scanJob, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at, id`)
}

func (s *Storage) DeleteJob(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
}

// Certification operations

const certificationColumns = `id, title, provider, description, link, duration, level, active, created_at, updated_at`

func scanCertification(row scanner) (*model.Certification, error) {
	var c model.Certification
	if err := row.Scan(&c.ID, &c.Title, &c.Provider, &c.Description, &c.Link, &c.Duration, &c.Level,
		&c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Storage) SaveCertification(ctx context.Context, cert *model.Certification) error {
	query :=
		`INSERT INTO certifications (` + certificationColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title, provider = EXCLUDED.provider, description = EXCLUDED.description,
		   link = EXCLUDED.link, duration = EXCLUDED.duration, level = EXCLUDED.level,
		   active = EXCLUDED.active, updated_at = EXCLUDED.updated_at`
	return s.exec(ctx, query, cert.ID, cert.Title, cert.Provider, cert.Description, cert.Link, cert.Duration,
		cert.Level, cert.Active, cert.CreatedAt, cert.UpdatedAt)
}

func (s *Storage) GetCertification(ctx context.Context, id string) (*model.Certification, error) {
	return getOne(ctx, s.db, scanCertification, model.ErrCertificationNotFound,
		`SELECT `+certificationColumns+` FROM certifications WHERE id = $1`, id)
}

func (s *Storage) ListCertifications(ctx context.Context) ([]*model.Certification, error) {
	return queryAll(ctx, s.db, scanCertification, `SELECT `+certificationColumns+` FROM certifications ORDER BY created_at, id`)
}

func (s *Storage) DeleteCertification(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM certifications WHERE id = $1`, id)
}

// Hackathon operations

const hackathonColumns = `id, title, organizer, description, location, link, start_date, end_date, active, created_at, updated_at`

func scanHackathon(row scanner) (*model.Hackathon, error) {
	var (
		h          model.Hackathon
		start, end sql.NullTime
	)
	if err := row.Scan(&h.ID, &h.Title, &h.Organizer, &h.Description, &h.Location, &h.Link,
		&start, &end, &h.Active, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	h.StartDate, h.EndDate = start.Time, end.Time
	return &h, nil
}

func (s *Storage) SaveHackathon(ctx context.Context, hackathon *model.Hackathon) error {
	query :=
		`INSERT INTO hackathons (` + hackathonColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title, organizer = EXCLUDED.organizer, description = EXCLUDED.description,
		   location = EXCLUDED.location, link = EXCLUDED.link, start_date = EXCLUDED.start_date,
		   end_date = EXCLUDED.end_date, active = EXCLUDED.active, updated_at = EXCLUDED.updated_at`
	return s.exec(ctx, query, hackathon.ID, hackathon.Title, hackathon.Organizer, hackathon.Description,
		hackathon.Location, hackathon.Link, nullTime(hackathon.StartDate), nullTime(hackathon.EndDate),
		hackathon.Active, hackathon.CreatedAt, hackathon.UpdatedAt)
}

func (s *Storage) GetHackathon(ctx context.Context, id string) (*model.Hackathon, error) {
	return getOne(ctx, s.db, scanHackathon, model.ErrHackathonNotFound,
		`SELECT `+hackathonColumns+` FROM hackathons WHERE id = $1`, id)
}

func (s *Storage) ListHackathons(ctx context.Context) ([]*model.Hackathon, error) {
	return queryAll(ctx, s.db, scanHackathon, `SELECT `+hackathonColumns+` FROM hackathons ORDER BY created_at, id`)
}

func (s *Storage) DeleteHackathon(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM hackathons WHERE id = $1`, id)
}

// Teammate request operations

const teammateColumns = `id, author_id, author_name, hackathon_name, description, skills, team_size, contact, created_at`

func scanTeammateRequest(row scanner) (*model.TeammateRequest, error) {
	var (
		r      model.TeammateRequest
		skills []byte
	)
	if err := row.Scan(&r.ID, &r.AuthorID, &r.AuthorName, &r.HackathonName, &r.Description,
		&skills, &r.TeamSize, &r.Contact, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeList(skills, &r.Skills); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Storage) SaveTeammateRequest(ctx context.Context, req *model.TeammateRequest) error {
	skills, err := encodeList(req.Skills)
	if err != nil {
		return err
	}
	query :=
		`INSERT INTO teammate_requests (` + teammateColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   hackathon_name = EXCLUDED.hackathon_name, description = EXCLUDED.description,
		   skills = EXCLUDED.skills, team_size = EXCLUDED.team_size, contact = EXCLUDED.contact`
	return s.exec(ctx, query, req.ID, req.AuthorID, req.AuthorName, req.HackathonName, req.Description,
		skills, req.TeamSize, req.Contact, req.CreatedAt)
}

func (s *Storage) GetTeammateRequest(ctx context.Context, id string) (*model.TeammateRequest, error) {
	return getOne(ctx, s.db, scanTeammateRequest, model.ErrTeammateRequestNotFound,
		`SELECT `+teammateColumns+` FROM teammate_requests WHERE id = $1`, id)
}

func (s *Storage) ListTeammateRequests(ctx context.Context) ([]*model.TeammateRequest, error) {
	return queryAll(ctx, s.db, scanTeammateRequest, `SELECT `+teammateColumns+` FROM teammate_requests ORDER BY created_at, id`)
}

func (s *Storage) DeleteTeammateRequest(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM teammate_requests WHERE id = $1`, id)
}

// Query helpers

func (s *Storage) exec(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return dbError(err)
	}
	return nil
}

func getOne[T any](ctx context.Context, db *sql.DB, scan func(scanner) (*T, error), notFound error, query string, args ...any) (*T, error) {
	v, err := scan(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, dbError(err)
	}
	return v, nil
}

func queryAll[T any](ctx context.Context, db *sql.DB, scan func(scanner) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	result := make([]*T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, dbError(err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err)
	}
	return result, nil
}

func encodeList(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

func decodeList(data []byte, dst *[]string) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return err
	}
	if len(*dst) == 0 {
		*dst = nil
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
