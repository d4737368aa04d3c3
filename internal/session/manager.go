// Package session binds a client process to at most one identity and is the
// single place that answers whether that identity may act as an administrator.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Ayu-zh/placement-connector/internal/model"
)

// State is the Manager's position in the session lifecycle
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// Reasons reported with a Change, in addition to the model.Reason* values
// carried by sign-out events
const (
	ReasonLogin          = "login"
	ReasonRestored       = "restored"
	ReasonRoleRefreshed  = "role_refreshed"
	ReasonTokenRefreshed = "token_refreshed"
	ReasonAdminDenied    = "admin_denied"
)

const defaultRetryInterval = 2 * time.Second

// Authority is the external identity authority: it verifies passwords,
// issues and revokes session tokens and streams session events.
type Authority interface {
	SignIn(ctx context.Context, email, password string) (*model.Grant, error)
	SignOut(ctx context.Context, token string) error
	Resume(ctx context.Context, token string) (*model.Grant, error)
	Watch(ctx context.Context, token string) (<-chan model.SessionEvent, error)
}

// RoleStore answers point lookups of an identity's role and verification
type RoleStore interface {
	LookupIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error)
}

// Change describes a transition of the bound session
type Change struct {
	State    State
	Identity *model.Identity
	Reason   string
}

// Config holds the Manager's collaborators
type Config struct {
	Authority Authority
	Roles     RoleStore
	// Tokens persists the authority token; defaults to a MemoryTokenStore
	Tokens TokenStore
	Logger *slog.Logger
	// OnChange is called after every transition. It may be called from the
	// watcher goroutine and from callers of Login and Logout concurrently.
	OnChange func(Change)
	// RetryInterval is the pause before re-attaching a lost event subscription
	RetryInterval time.Duration
}

// binding is an immutable snapshot of who the process is acting as.
// It is replaced as a whole, never mutated.
type binding struct {
	epoch    uint64
	token    string
	session  model.SessionID
	identity *model.Identity
	// stale is set when the latest role lookup failed; admin is denied
	// until a lookup succeeds again
	stale bool
}

// Manager is the session and role authority for one client process.
// It is safe for concurrent use.
type Manager struct {
	authority Authority
	roles     RoleStore
	tokens    TokenStore
	logger    *slog.Logger
	onChange  func(Change)
	retry     time.Duration

	mu      sync.RWMutex
	current *binding
	epoch   uint64
	pending int
	// logouts counts Logout calls. A login that began before the latest
	// logout is discarded when it completes.
	logouts uint64

	persistMu sync.Mutex
	wake      chan struct{}

	lifecycleMu sync.Mutex
	started     bool
	closed      bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// New creates an anonymous Manager
func New(cfg Config) (*Manager, error) {
	if cfg.Authority == nil || cfg.Roles == nil {
		return nil, errors.New("session: authority and role store are required")
	}
	if cfg.Tokens == nil {
		cfg.Tokens = NewMemoryTokenStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	return &Manager{
		authority: cfg.Authority,
		roles:     cfg.Roles,
		tokens:    cfg.Tokens,
		logger:    cfg.Logger.With(slog.String("component", "session")),
		onChange:  cfg.OnChange,
		retry:     cfg.RetryInterval,
		wake:      make(chan struct{}, 1),
	}, nil
}

// Login verifies credentials with the authority and binds the session to
// the resulting identity. On failure the session is left exactly as it was.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	logouts := m.begin()
	defer m.end()

	grant, err := m.authority.SignIn(ctx, email, password)
	if err != nil {
		return m.loginError(err)
	}
	identity, err := m.roles.LookupIdentity(WithToken(ctx, grant.Token), grant.IdentityID)
	if err != nil {
		m.logger.Warn("role lookup failed after sign-in",
			slog.String("identity_id", string(grant.IdentityID)),
			slog.String("error", err.Error()))
		m.revoke(ctx, grant.Token)
		return fmt.Errorf("%w: %w", ErrAuthentication, ErrAuthorityUnavailable)
	}
	return m.bind(ctx, logouts, grant, identity, ReasonLogin)
}

// AdminLogin is Login restricted to administrators. It reports true once an
// administrator is bound. Any other outcome returns false, signs out the
// authority session it created and leaves the Manager anonymous.
func (m *Manager) AdminLogin(ctx context.Context, email, password string) (bool, error) {
	logouts := m.begin()
	defer m.end()

	grant, err := m.authority.SignIn(ctx, email, password)
	if err != nil {
		m.deny(ctx)
		return false, m.loginError(err)
	}

	identity, err := m.roles.LookupIdentity(WithToken(ctx, grant.Token), grant.IdentityID)
	if err != nil {
		m.logger.Warn("role lookup failed, denying admin",
			slog.String("identity_id", string(grant.IdentityID)),
			slog.String("error", err.Error()))
		cause := fmt.Errorf("%w: %w", ErrAuthorizationDenied, ErrAuthorityUnavailable)
		err = m.forceSignOut(ctx, grant, cause)
		m.deny(ctx)
		return false, err
	}
	if !identity.IsAdmin() {
		m.logger.Info("admin login denied", slog.String("identity_id", string(identity.ID)))
		err = m.forceSignOut(ctx, grant, ErrAuthorizationDenied)
		m.deny(ctx)
		return false, err
	}

	if err := m.bind(ctx, logouts, grant, identity, ReasonLogin); err != nil {
		return false, err
	}
	return true, nil
}

// Logout clears the session and revokes its token with the authority.
// Logging out while anonymous is a no-op. The local session is cleared even
// when the authority cannot be reached.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	previous := m.current
	m.current = nil
	m.logouts++
	if previous != nil {
		m.epoch++
	}
	m.mu.Unlock()

	m.persist()
	if previous == nil {
		return nil
	}
	m.signal()
	m.notify(Change{State: m.State(), Reason: model.ReasonLogout})
	m.logger.Info("logged out", slog.String("session_id", string(previous.session)))

	if err := m.authority.SignOut(ctx, previous.token); err != nil {
		if errors.Is(err, model.ErrInvalidSession) {
			return nil
		}
		m.logger.Warn("sign-out not confirmed by authority", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrAuthorityUnavailable, err)
	}
	return nil
}

// CurrentIdentity returns a copy of the bound identity, or nil when anonymous.
// It never performs I/O.
func (m *Manager) CurrentIdentity() *model.Identity {
	b := m.snapshot()
	if b == nil {
		return nil
	}
	return b.identity.Clone()
}

// IsAdmin reports whether an administrator is bound and their role was
// confirmed by the latest lookup
func (m *Manager) IsAdmin() bool {
	b := m.snapshot()
	return b != nil && !b.stale && b.identity.IsAdmin()
}

// RequireAdmin is the check every privileged write makes before it is sent
func (m *Manager) RequireAdmin() error {
	if !m.IsAdmin() {
		return ErrAuthorizationDenied
	}
	return nil
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

// Token returns the bound authority token, or "" when anonymous
func (m *Manager) Token() string {
	b := m.snapshot()
	if b == nil {
		return ""
	}
	return b.token
}

// Restore resumes the persisted token, if any. A token the authority no
// longer accepts is discarded and the Manager stays anonymous.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.tokens.Load()
	if err != nil {
		return fmt.Errorf("load session token: %w", err)
	}
	if token == "" {
		return nil
	}

	logouts := m.begin()
	defer m.end()

	grant, err := m.authority.Resume(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrInvalidSession) {
			m.logger.Info("stored session is no longer valid")
			m.persist()
			return nil
		}
		return fmt.Errorf("%w: %w", ErrAuthorityUnavailable, err)
	}

	identity, err := m.roles.LookupIdentity(WithToken(ctx, grant.Token), grant.IdentityID)
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			m.revoke(ctx, grant.Token)
			m.persist()
			return nil
		}
		return fmt.Errorf("%w: %w", ErrAuthorityUnavailable, err)
	}
	return m.bind(ctx, logouts, grant, identity, ReasonRestored)
}

// Refresh re-reads the bound identity's role and verification from the
// role store. If the lookup fails admin is denied until a later one succeeds;
// if the identity no longer exists the session is cleared.
func (m *Manager) Refresh(ctx context.Context) error {
	b := m.snapshot()
	if b == nil {
		return nil
	}

	identity, err := m.roles.LookupIdentity(WithToken(ctx, b.token), b.identity.ID)
	if errors.Is(err, model.ErrIdentityNotFound) {
		m.clearIf(ctx, func(cur *binding) bool { return cur.epoch == b.epoch }, model.ReasonRevoked, true)
		return nil
	}

	m.mu.Lock()
	cur := m.current
	if cur == nil || cur.epoch != b.epoch {
		// Superseded while the lookup was in flight
		m.mu.Unlock()
		return nil
	}
	next := *cur
	if err != nil {
		next.stale = true
	} else {
		next.identity = identity.Clone()
		next.stale = false
	}
	m.current = &next
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("role refresh failed, admin denied",
			slog.String("identity_id", string(b.identity.ID)),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", ErrAuthorityUnavailable, err)
	}
	m.notify(Change{State: StateAuthenticated, Identity: identity.Clone(), Reason: ReasonRoleRefreshed})
	return nil
}

func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending++
	return m.logouts
}

func (m *Manager) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending--
}

func (m *Manager) stateLocked() State {
	switch {
	case m.current != nil:
		return StateAuthenticated
	case m.pending > 0:
		return StateAuthenticating
	default:
		return StateAnonymous
	}
}

func (m *Manager) snapshot() *binding {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// bind installs a new binding unless a Logout happened since the attempt
// began. A binding it replaces has its token revoked.
func (m *Manager) bind(ctx context.Context, logouts uint64, grant *model.Grant, identity *model.Identity, reason string) error {
	m.mu.Lock()
	if m.logouts != logouts {
		m.mu.Unlock()
		m.revoke(ctx, grant.Token)
		return fmt.Errorf("%w: cancelled by logout", ErrAuthentication)
	}
	previous := m.current
	m.epoch++
	m.current = &binding{
		epoch:    m.epoch,
		token:    grant.Token,
		session:  grant.SessionID,
		identity: identity.Clone(),
	}
	m.mu.Unlock()

	if previous != nil && previous.session != grant.SessionID {
		m.revoke(ctx, previous.token)
	}
	m.persist()
	m.signal()
	m.notify(Change{State: StateAuthenticated, Identity: identity.Clone(), Reason: reason})
	m.logger.Info("session bound",
		slog.String("identity_id", string(identity.ID)),
		slog.String("session_id", string(grant.SessionID)),
		slog.String("reason", reason))
	return nil
}

// clearIf drops the current binding when match accepts it. With signOut
// set the dropped token is also revoked with the authority.
func (m *Manager) clearIf(ctx context.Context, match func(*binding) bool, reason string, signOut bool) bool {
	m.mu.Lock()
	previous := m.current
	if previous == nil || !match(previous) {
		m.mu.Unlock()
		return false
	}
	m.epoch++
	m.current = nil
	state := m.stateLocked()
	m.mu.Unlock()

	if signOut {
		m.revoke(ctx, previous.token)
	}
	m.persist()
	m.signal()
	m.notify(Change{State: state, Reason: reason})
	m.logger.Info("session cleared",
		slog.String("session_id", string(previous.session)),
		slog.String("reason", reason))
	return true
}

// deny clears whatever is bound after a failed admin login
func (m *Manager) deny(ctx context.Context) {
	m.clearIf(ctx, func(*binding) bool { return true }, ReasonAdminDenied, true)
}

// forceSignOut ends the authority session a rejected admin login created.
// If the authority cannot confirm it the failure is added to cause.
func (m *Manager) forceSignOut(ctx context.Context, grant *model.Grant, cause error) error {
	if err := m.authority.SignOut(ctx, grant.Token); err != nil {
		m.logger.Error("forced sign-out failed",
			slog.String("session_id", string(grant.SessionID)),
			slog.String("error", err.Error()))
		return errors.Join(cause, fmt.Errorf("forced sign-out: %w", ErrAuthorityUnavailable))
	}
	return cause
}

// revoke signs a token out, logging rather than returning failures
func (m *Manager) revoke(ctx context.Context, token string) {
	if err := m.authority.SignOut(ctx, token); err != nil && !errors.Is(err, model.ErrInvalidSession) {
		m.logger.Warn("token revocation failed", slog.String("error", err.Error()))
	}
}

// loginError classifies a failed sign-in. Answers from the authority
// rejecting the attempt are plain authentication failures. Anything else
// means the authority could not be consulted.
func (m *Manager) loginError(err error) error {
	if !errors.Is(err, ErrAuthorityUnavailable) &&
		(errors.Is(err, model.ErrInvalidCredentials) || errors.Is(err, model.ErrInvalidInput)) {
		m.logger.Info("login rejected")
		return ErrAuthentication
	}
	m.logger.Warn("login failed", slog.String("error", err.Error()))
	return fmt.Errorf("%w: %w", ErrAuthentication, ErrAuthorityUnavailable)
}

// persist writes the current binding's token, or clears it when anonymous.
// It always writes the latest state so concurrent callers cannot leave a
// superseded token on disk.
func (m *Manager) persist() {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	var err error
	if b := m.snapshot(); b != nil {
		err = m.tokens.Save(b.token)
	} else {
		err = m.tokens.Clear()
	}
	if err != nil {
		m.logger.Warn("session token not persisted", slog.String("error", err.Error()))
	}
}

// signal wakes the watcher so it follows the current binding
func (m *Manager) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) notify(change Change) {
	if m.onChange != nil {
		m.onChange(change)
	}
}
