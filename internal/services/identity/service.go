package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Ayu-zh/placement-connector/internal/dependencies/clock"
	"github.com/Ayu-zh/placement-connector/internal/dependencies/random"
	"github.com/Ayu-zh/placement-connector/internal/events"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/storage"
)

// sessionIDLength is the length of generated session identifiers
const sessionIDLength = 32

// MinPasswordLength applies to passwords chosen at sign-up
const MinPasswordLength = 6

// Config holds configuration for the identity service
type Config struct {
	SessionDuration time.Duration
	TokenSecret     []byte
	Issuer          string
	BcryptCost      int
}

// DefaultConfig returns default identity configuration.
// TokenSecret has no default and must be supplied.
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		Issuer:          "placement-connector",
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// NewIdentity describes an account to register
type NewIdentity struct {
	Name       string
	Email      string
	Password   string
	Role       model.Role
	Department string
	Year       string
	Status     model.StudentStatus
	Verified   bool
}

// Service is the identity authority: it verifies passwords, issues and
// revokes session tokens, publishes session events and answers role lookups.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	hub     *events.Hub
	logger  *slog.Logger
	cfg     Config

	// dummyHash is compared against when an email is unknown so both
	// rejection paths cost one bcrypt comparison
	dummyHash []byte
}

// New creates a new identity Service
func New(storage storage.Storage, clock clock.Clock, random random.Random, hub *events.Hub, logger *slog.Logger, cfg Config) (*Service, error) {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	if len(cfg.TokenSecret) == 0 {
		return nil, errors.New("identity: token secret is required")
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("placement-connector"), cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	return &Service{
		storage:   storage,
		clock:     clock,
		random:    random,
		hub:       hub,
		logger:    logger.With(slog.String("component", "identity")),
		cfg:       cfg,
		dummyHash: dummy,
	}, nil
}

// Register creates an identity with a password credential
func (s *Service) Register(ctx context.Context, in NewIdentity) (*model.Identity, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name and password are required", model.ErrInvalidInput)
	}
	if in.Role == "" {
		in.Role = model.RoleStudent
	}
	if !in.Role.Valid() {
		return nil, model.ErrInvalidRole
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidInput, in.Status)
	}

	// Check if email exists
	_, err = s.storage.GetIdentityByEmail(ctx, email)
	if err == nil {
		return nil, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrIdentityNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	identity := &model.Identity{
		ID:         model.IdentityID(s.random.UUID()),
		Name:       name,
		Email:      email,
		Role:       in.Role,
		Department: strings.TrimSpace(in.Department),
		Year:       strings.TrimSpace(in.Year),
		Status:     in.Status,
		Verified:   in.Verified,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.storage.SaveIdentity(ctx, identity); err != nil {
		return nil, err
	}

	cred := &model.Credential{
		IdentityID:   identity.ID,
		Email:        email,
		PasswordHash: string(hash),
		UpdatedAt:    now,
	}
	if err := s.storage.SaveCredential(ctx, cred); err != nil {
		// Roll back so the identity is not left without a credential
		_ = s.storage.DeleteIdentity(ctx, identity.ID)
		return nil, err
	}

	s.logger.Info("identity registered",
		slog.String("identity_id", string(identity.ID)),
		slog.String("role", string(identity.Role)))
	return identity, nil
}

// SignUpRequest is a student's own registration
type SignUpRequest struct {
	Name       string
	Email      string
	Password   string
	Department string
	Year       string
}

// SignUp registers a student account on the student's own behalf. The role
// is always student and the account starts unverified until the placement
// cell confirms it. It does not open a session.
func (s *Service) SignUp(ctx context.Context, in SignUpRequest) (*model.Identity, error) {
	if strings.TrimSpace(in.Department) == "" {
		return nil, fmt.Errorf("%w: department is required", model.ErrInvalidInput)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", model.ErrInvalidInput, MinPasswordLength)
	}
	return s.Register(ctx, NewIdentity{
		Name:       in.Name,
		Email:      in.Email,
		Password:   in.Password,
		Role:       model.RoleStudent,
		Department: in.Department,
		Year:       in.Year,
		Status:     model.StatusActive,
	})
}

// UpdateProfile saves changed profile fields and notifies watchers.
// The stored role is kept: it cannot be changed through a profile update.
func (s *Service) UpdateProfile(ctx context.Context, update *model.Identity) (*model.Identity, error) {
	current, err := s.storage.GetIdentity(ctx, update.ID)
	if err != nil {
		return nil, err
	}

	email, err := normalizeEmail(update.Email)
	if err != nil {
		return nil, err
	}
	if update.Status != "" && !update.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", model.ErrInvalidInput, update.Status)
	}

	next := current.Clone()
	if name := strings.TrimSpace(update.Name); name != "" {
		next.Name = name
	}
	next.Email = email
	next.Department = strings.TrimSpace(update.Department)
	next.Year = strings.TrimSpace(update.Year)
	next.Status = update.Status
	next.Verified = update.Verified
	next.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveIdentity(ctx, next); err != nil {
		return nil, err
	}
	if email != current.Email {
		if err := s.updateCredential(ctx, next.ID, func(c *model.Credential) error {
			c.Email = email
			return nil
		}); err != nil {
			return nil, err
		}
	}

	s.NotifyIdentityChanged(next.ID)
	return next, nil
}

// SetPassword replaces an identity's password and signs out every session
// opened with the old one
func (s *Service) SetPassword(ctx context.Context, id model.IdentityID, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", model.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.updateCredential(ctx, id, func(c *model.Credential) error {
		c.PasswordHash = string(hash)
		return nil
	}); err != nil {
		return err
	}
	s.logger.Info("password changed", slog.String("identity_id", string(id)))
	return s.RevokeIdentity(ctx, id)
}

func (s *Service) updateCredential(ctx context.Context, id model.IdentityID, mutate func(*model.Credential) error) error {
	cred, err := s.storage.GetCredential(ctx, id)
	if err != nil {
		return err
	}
	if err := mutate(cred); err != nil {
		return err
	}
	cred.UpdatedAt = s.clock.Now()
	return s.storage.SaveCredential(ctx, cred)
}

// Deregister revokes every session of an identity and deletes it
func (s *Service) Deregister(ctx context.Context, id model.IdentityID) error {
	if _, err := s.storage.GetIdentity(ctx, id); err != nil {
		return err
	}
	if err := s.RevokeIdentity(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteCredential(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteIdentity(ctx, id); err != nil {
		return err
	}
	s.logger.Info("identity deregistered", slog.String("identity_id", string(id)))
	return nil
}

// SignIn verifies a password and opens a session.
// Unknown emails and wrong passwords both return model.ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Grant, error) {
	cred, err := s.storage.GetCredentialByEmail(ctx, storage.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.logger.Info("sign-in rejected")
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("sign-in rejected")
		return nil, model.ErrInvalidCredentials
	}

	// The profile must still exist for the credential to be usable
	if _, err := s.storage.GetIdentity(ctx, cred.IdentityID); err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.clock.Now()
	session := &model.AuthSession{
		ID:         model.SessionID(s.random.String(sessionIDLength, random.Alphanumeric)),
		IdentityID: cred.IdentityID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.SessionDuration),
	}
	token, err := s.signToken(session)
	if err != nil {
		return nil, err
	}
	if err := s.storage.SaveAuthSession(ctx, session); err != nil {
		return nil, err
	}

	s.publish(model.SessionEvent{Type: model.EventSignedIn, SessionID: session.ID, IdentityID: session.IdentityID})
	s.logger.Info("signed in",
		slog.String("identity_id", string(session.IdentityID)),
		slog.String("session_id", string(session.ID)))
	return grantFor(token, session), nil
}

// Resume validates a token and returns the live session it refers to
func (s *Service) Resume(ctx context.Context, token string) (*model.Grant, error) {
	session, err := s.validate(ctx, token)
	if err != nil {
		return nil, err
	}
	return grantFor(token, session), nil
}

// Authenticate resolves a token to its session and identity
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Identity, *model.AuthSession, error) {
	session, err := s.validate(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	identity, err := s.storage.GetIdentity(ctx, session.IdentityID)
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			return nil, nil, model.ErrInvalidSession
		}
		return nil, nil, err
	}
	return identity, session, nil
}

func (s *Service) validate(ctx context.Context, token string) (*model.AuthSession, error) {
	claims, err := s.parseToken(token, true)
	if err != nil {
		return nil, err
	}
	session, err := s.storage.GetAuthSession(ctx, model.SessionID(claims.ID))
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, model.ErrInvalidSession
		}
		return nil, err
	}
	if session.IdentityID != model.IdentityID(claims.Subject) || session.Expired(s.clock.Now()) {
		return nil, model.ErrInvalidSession
	}
	return session, nil
}

// Refresh extends a live session and issues a replacement token
func (s *Service) Refresh(ctx context.Context, token string) (*model.Grant, error) {
	session, err := s.validate(ctx, token)
	if err != nil {
		return nil, err
	}

	session.ExpiresAt = s.clock.Now().Add(s.cfg.SessionDuration)
	next, err := s.signToken(session)
	if err != nil {
		return nil, err
	}
	if err := s.storage.SaveAuthSession(ctx, session); err != nil {
		return nil, err
	}

	s.publish(model.SessionEvent{
		Type:       model.EventTokenRefreshed,
		SessionID:  session.ID,
		IdentityID: session.IdentityID,
		Token:      next,
	})
	return grantFor(next, session), nil
}

// SignOut revokes the session a token refers to. Unknown, expired and
// already revoked tokens are a no-op; forged tokens are rejected.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parseToken(token, false)
	if err != nil {
		return err
	}
	sessionID := model.SessionID(claims.ID)
	if _, err := s.storage.GetAuthSession(ctx, sessionID); err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return s.endSession(ctx, sessionID, model.IdentityID(claims.Subject), model.ReasonLogout)
}

// RevokeIdentity signs out every session held by an identity
func (s *Service) RevokeIdentity(ctx context.Context, id model.IdentityID) error {
	sessions, err := s.storage.ListAuthSessionsForIdentity(ctx, id)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if err := s.endSession(ctx, session.ID, session.IdentityID, model.ReasonRevoked); err != nil {
			return err
		}
	}
	return nil
}

// SweepExpired removes lapsed sessions and reports how many were removed.
// Watchers of those sessions receive signed_out with reason "expired".
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	sessions, err := s.storage.ListAuthSessions(ctx)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	removed := 0
	for _, session := range sessions {
		if !session.Expired(now) {
			continue
		}
		if err := s.endSession(ctx, session.ID, session.IdentityID, model.ReasonExpired); err != nil {
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("expired sessions swept", slog.Int("removed", removed))
	}
	return removed, nil
}

func (s *Service) endSession(ctx context.Context, id model.SessionID, identityID model.IdentityID, reason string) error {
	if err := s.storage.DeleteAuthSession(ctx, id); err != nil {
		return err
	}
	s.publish(model.SessionEvent{Type: model.EventSignedOut, SessionID: id, IdentityID: identityID, Reason: reason})
	s.logger.Info("signed out",
		slog.String("identity_id", string(identityID)),
		slog.String("session_id", string(id)),
		slog.String("reason", reason))
	return nil
}

// LookupIdentity is the role-store point lookup by identity ID
func (s *Service) LookupIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	return s.storage.GetIdentity(ctx, id)
}

// LookupIdentityByEmail is the role-store point lookup by email
func (s *Service) LookupIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	return s.storage.GetIdentityByEmail(ctx, storage.NormalizeEmail(email))
}

// NotifyIdentityChanged tells watchers that an identity's record changed
func (s *Service) NotifyIdentityChanged(id model.IdentityID) {
	s.publish(model.SessionEvent{Type: model.EventIdentityUpdated, IdentityID: id})
}

// Watch streams the events that concern the token's session: its sign-out,
// token refreshes and changes to its identity. The channel closes when ctx
// is done or the hub shuts down.
func (s *Service) Watch(ctx context.Context, token string) (<-chan model.SessionEvent, error) {
	claims, err := s.parseToken(token, true)
	if err != nil {
		return nil, err
	}
	sessionID := model.SessionID(claims.ID)
	identityID := model.IdentityID(claims.Subject)

	// Subscribe before validating so a revocation in between is not missed
	sub := s.hub.Subscribe("watch:"+string(sessionID), func(ev model.SessionEvent) bool {
		switch ev.Type {
		case model.EventSignedOut, model.EventTokenRefreshed:
			return ev.SessionID == sessionID
		case model.EventIdentityUpdated:
			return ev.IdentityID == identityID
		}
		return false
	})

	if _, err := s.validate(ctx, token); err != nil {
		s.hub.Unsubscribe(sub)
		return nil, err
	}

	go func() {
		<-ctx.Done()
		s.hub.Unsubscribe(sub)
	}()
	return sub.Events(), nil
}

func (s *Service) publish(ev model.SessionEvent) {
	ev.Timestamp = s.clock.Now()
	s.hub.Publish(ev)
}

func normalizeEmail(email string) (string, error) {
	email = storage.NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: invalid email address", model.ErrInvalidInput)
	}
	return email, nil
}
