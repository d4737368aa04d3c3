package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	identities       map[model.IdentityID]*model.Identity
	emailIndex       map[string]model.IdentityID
	credentials      map[model.IdentityID]*model.Credential
	sessions         map[model.SessionID]*model.AuthSession
	jobs             map[string]*model.Job
	certifications   map[string]*model.Certification
	hackathons       map[string]*model.Hackathon
	teammateRequests map[string]*model.TeammateRequest
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		identities:       make(map[model.IdentityID]*model.Identity),
		emailIndex:       make(map[string]model.IdentityID),
		credentials:      make(map[model.IdentityID]*model.Credential),
		sessions:         make(map[model.SessionID]*model.AuthSession),
		jobs:             make(map[string]*model.Job),
		certifications:   make(map[string]*model.Certification),
		hackathons:       make(map[string]*model.Hackathon),
		teammateRequests: make(map[string]*model.TeammateRequest),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Identity operations

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := storage.NormalizeEmail(identity.Email)
	if owner, ok := s.emailIndex[email]; ok && owner != identity.ID {
		return model.ErrEmailTaken
	}
	if prev, ok := s.identities[identity.ID]; ok {
		delete(s.emailIndex, storage.NormalizeEmail(prev.Email))
	}
	c := identity.Clone()
	c.Email = email
	s.identities[c.ID] = c
	s.emailIndex[email] = c.ID
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	return identity.Clone(), nil
}

func (s *Storage) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[storage.NormalizeEmail(email)]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	identity, ok := s.identities[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	return identity.Clone(), nil
}

func (s *Storage) ListIdentities(ctx context.Context, role model.Role) ([]*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Identity, 0, len(s.identities))
	for _, identity := range s.identities {
		if role == "" || identity.Role == role {
			result = append(result, identity.Clone())
		}
	}
	storage.SortIdentities(result)
	return result, nil
}

func (s *Storage) DeleteIdentity(ctx context.Context, id model.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity, ok := s.identities[id]; ok {
		delete(s.emailIndex, storage.NormalizeEmail(identity.Email))
	}
	delete(s.identities, id)
	return nil
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cred
	c.Email = storage.NormalizeEmail(c.Email)
	s.credentials[c.IdentityID] = &c
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, id model.IdentityID) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	c := *cred
	return &c, nil
}

func (s *Storage) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = storage.NormalizeEmail(email)
	for _, cred := range s.credentials {
		if cred.Email == email {
			c := *cred
			return &c, nil
		}
	}
	return nil, model.ErrIdentityNotFound
}

func (s *Storage) DeleteCredential(ctx context.Context, id model.IdentityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.credentials, id)
	return nil
}

// Auth session operations

func (s *Storage) SaveAuthSession(ctx context.Context, session *model.AuthSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *session
	s.sessions[c.ID] = &c
	return nil
}

func (s *Storage) GetAuthSession(ctx context.Context, id model.SessionID) (*model.AuthSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	c := *session
	return &c, nil
}

func (s *Storage) ListAuthSessions(ctx context.Context) ([]*model.AuthSession, error) {
	return s.listAuthSessions(func(*model.AuthSession) bool { return true }), nil
}

func (s *Storage) ListAuthSessionsForIdentity(ctx context.Context, id model.IdentityID) ([]*model.AuthSession, error) {
	return s.listAuthSessions(func(session *model.AuthSession) bool { return session.IdentityID == id }), nil
}

func (s *Storage) listAuthSessions(keep func(*model.AuthSession) bool) []*model.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.AuthSession, 0)
	for _, session := range s.sessions {
		if keep(session) {
			c := *session
			result = append(result, &c)
		}
	}
	storage.SortAuthSessions(result)
	return result
}

func (s *Storage) DeleteAuthSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Job operations

func (s *Storage) SaveJob(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *job
	c.Requirements = slices.Clone(job.Requirements)
	s.jobs[c.ID] = &c
	return nil
}

func (s *Storage) GetJob(ctx context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, model.ErrJobNotFound
	}
	c := *job
	c.Requirements = slices.Clone(job.Requirements)
	return &c, nil
}

func (s *Storage) ListJobs(ctx context.Context) ([]*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		c := *job
		c.Requirements = slices.Clone(job.Requirements)
		result = append(result, &c)
	}
	storage.SortJobs(result)
	return result, nil
}

func (s *Storage) DeleteJob(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	return nil
}

// Certification operations

func (s *Storage) SaveCertification(ctx context.Context, cert *model.Certification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cert
	s.certifications[c.ID] = &c
	return nil
}

func (s *Storage) GetCertification(ctx context.Context, id string) (*model.Certification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cert, ok := s.certifications[id]
	if !ok {
		return nil, model.ErrCertificationNotFound
	}
	c := *cert
	return &c, nil
}

func (s *Storage) ListCertifications(ctx context.Context) ([]*model.Certification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Certification, 0, len(s.certifications))
	for _, cert := range s.certifications {
		c := *cert
		result = append(result, &c)
	}
	storage.SortCertifications(result)
	return result, nil
}

func (s *Storage) DeleteCertification(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.certifications, id)
	return nil
}

// Hackathon operations

func (s *Storage) SaveHackathon(ctx context.Context, hackathon *model.Hackathon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *hackathon
	s.hackathons[c.ID] = &c
	return nil
}

func (s *Storage) GetHackathon(ctx context.Context, id string) (*model.Hackathon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hackathon, ok := s.hackathons[id]
	if !ok {
		return nil, model.ErrHackathonNotFound
	}
	c := *hackathon
	return &c, nil
}

func (s *Storage) ListHackathons(ctx context.Context) ([]*model.Hackathon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Hackathon, 0, len(s.hackathons))
	for _, hackathon := range s.hackathons {
		c := *hackathon
		result = append(result, &c)
	}
	storage.SortHackathons(result)
	return result, nil
}

func (s *Storage) DeleteHackathon(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hackathons, id)
	return nil
}

// Teammate request operations

func (s *Storage) SaveTeammateRequest(ctx context.Context, req *model.TeammateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *req
	c.Skills = slices.Clone(req.Skills)
	s.teammateRequests[c.ID] = &c
	return nil
}

func (s *Storage) GetTeammateRequest(ctx context.Context, id string) (*model.TeammateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.teammateRequests[id]
	if !ok {
		return nil, model.ErrTeammateRequestNotFound
	}
	c := *req
	c.Skills = slices.Clone(req.Skills)
	return &c, nil
}

func (s *Storage) ListTeammateRequests(ctx context.Context) ([]*model.TeammateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.TeammateRequest, 0, len(s.teammateRequests))
	for _, req := range s.teammateRequests {
		c := *req
		c.Skills = slices.Clone(req.Skills)
		result = append(result, &c)
	}
	storage.SortTeammateRequests(result)
	return result, nil
}

func (s *Storage) DeleteTeammateRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.teammateRequests, id)
	return nil
}
