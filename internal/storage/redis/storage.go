package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Identity operations

func (s *Storage) SaveIdentity(ctx context.Context, identity *model.Identity) error {
	c := identity.Clone()
	c.Email = storage.NormalizeEmail(c.Email)

	// Claim the email first so two identities can never share it
	claimed, err := s.client.SetNX(ctx, emailIndexKey(c.Email), string(c.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		owner, err := s.client.Get(ctx, emailIndexKey(c.Email)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if owner != string(c.ID) {
			return model.ErrEmailTaken
		}
	}

	prev, err := s.GetIdentity(ctx, c.ID)
	if err != nil && !errors.Is(err, model.ErrIdentityNotFound) {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, identityKey(c.ID), data, 0)
	pipe.SAdd(ctx, identitiesIndexKey(), string(c.ID))
	if prev != nil && prev.Email != c.Email {
		pipe.Del(ctx, emailIndexKey(prev.Email))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	return getJSON[model.Identity](ctx, s.client, identityKey(id), model.ErrIdentityNotFound)
}

func (s *Storage) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	id, err := s.client.Get(ctx, emailIndexKey(storage.NormalizeEmail(email))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, err
	}
	return s.GetIdentity(ctx, model.IdentityID(id))
}

func (s *Storage) ListIdentities(ctx context.Context, role model.Role) ([]*model.Identity, error) {
	all, err := listJSON[model.Identity](ctx, s.client, identitiesIndexKey(), func(id string) string {
		return identityKey(model.IdentityID(id))
	})
	if err != nil {
		return nil, err
	}
	result := make([]*model.Identity, 0, len(all))
	for _, identity := range all {
		if role == "" || identity.Role == role {
			result = append(result, identity)
		}
	}
	storage.SortIdentities(result)
	return result, nil
}

func (s *Storage) DeleteIdentity(ctx context.Context, id model.IdentityID) error {
	identity, err := s.GetIdentity(ctx, id)
	if errors.Is(err, model.ErrIdentityNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, identityKey(id))
	pipe.Del(ctx, emailIndexKey(identity.Email))
	pipe.SRem(ctx, identitiesIndexKey(), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	c := *cred
	c.Email = storage.NormalizeEmail(c.Email)

	prev, err := s.GetCredential(ctx, c.IdentityID)
	if err != nil && !errors.Is(err, model.ErrIdentityNotFound) {
		return err
	}

	data, err := json.Marshal(&c)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	if prev != nil && prev.Email != c.Email {
		pipe.Del(ctx, credentialEmailIndexKey(prev.Email))
	}
	pipe.Set(ctx, credentialKey(c.IdentityID), data, 0)
	pipe.Set(ctx, credentialEmailIndexKey(c.Email), string(c.IdentityID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetCredential(ctx context.Context, id model.IdentityID) (*model.Credential, error) {
	return getJSON[model.Credential](ctx, s.client, credentialKey(id), model.ErrIdentityNotFound)
}

func (s *Storage) GetCredentialByEmail(ctx context.Context, email string) (*model.Credential, error) {
	id, err := s.client.Get(ctx, credentialEmailIndexKey(storage.NormalizeEmail(email))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, err
	}
	return getJSON[model.Credential](ctx, s.client, credentialKey(model.IdentityID(id)), model.ErrIdentityNotFound)
}

func (s *Storage) DeleteCredential(ctx context.Context, id model.IdentityID) error {
	cred, err := s.GetCredential(ctx, id)
	if errors.Is(err, model.ErrIdentityNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, credentialKey(id))
	pipe.Del(ctx, credentialEmailIndexKey(cred.Email))
	_, err = pipe.Exec(ctx)
	return err
}

// Auth session operations

func (s *Storage) SaveAuthSession(ctx context.Context, session *model.AuthSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL)
	pipe.SAdd(ctx, sessionsIndexKey(), string(session.ID))
	pipe.SAdd(ctx, identitySessionsIndexKey(session.IdentityID), string(session.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetAuthSession(ctx context.Context, id model.SessionID) (*model.AuthSession, error) {
	return getJSON[model.AuthSession](ctx, s.client, sessionKey(id), model.ErrSessionNotFound)
}

func (s *Storage) ListAuthSessions(ctx context.Context) ([]*model.AuthSession, error) {
	return s.listAuthSessions(ctx, sessionsIndexKey())
}

func (s *Storage) ListAuthSessionsForIdentity(ctx context.Context, id model.IdentityID) ([]*model.AuthSession, error) {
	return s.listAuthSessions(ctx, identitySessionsIndexKey(id))
}

func (s *Storage) listAuthSessions(ctx context.Context, indexKey string) ([]*model.AuthSession, error) {
	sessions, err := listJSON[model.AuthSession](ctx, s.client, indexKey, func(id string) string {
		return sessionKey(model.SessionID(id))
	})
	if err != nil {
		return nil, err
	}
	storage.SortAuthSessions(sessions)
	return sessions, nil
}

func (s *Storage) DeleteAuthSession(ctx context.Context, id model.SessionID) error {
	session, err := s.GetAuthSession(ctx, id)
	if err != nil && !errors.Is(err, model.ErrSessionNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, sessionsIndexKey(), string(id))
	if session != nil {
		pipe.SRem(ctx, identitySessionsIndexKey(session.IdentityID), string(id))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Job operations

func (s *Storage) SaveJob(ctx context.Context, job *model.Job) error {
	return s.saveRecord(ctx, kindJob, job.ID, job)
}

func (s *Storage) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return getJSON[model.Job](ctx, s.client, recordKey(kindJob, id), model.ErrJobNotFound)
}

func (s *Storage) ListJobs(ctx context.Context) ([]*model.Job, error) {
	jobs, err := listRecords[model.Job](ctx, s.client, kindJob)
	if err != nil {
		return nil, err
	}
	storage.SortJobs(jobs)
	return jobs, nil
}

func (s *Storage) DeleteJob(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, kindJob, id)
}

// Certification operations

func (s *Storage) SaveCertification(ctx context.Context, cert *model.Certification) error {
	return s.saveRecord(ctx, kindCertification, cert.ID, cert)
}

func (s *Storage) GetCertification(ctx context.Context, id string) (*model.Certification, error) {
	return getJSON[model.Certification](ctx, s.client, recordKey(kindCertification, id), model.ErrCertificationNotFound)
}

func (s *Storage) ListCertifications(ctx context.Context) ([]*model.Certification, error) {
	certs, err := listRecords[model.Certification](ctx, s.client, kindCertification)
	if err != nil {
		return nil, err
	}
	storage.SortCertifications(certs)
	return certs, nil
}

func (s *Storage) DeleteCertification(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, kindCertification, id)
}

// Hackathon operations

func (s *Storage) SaveHackathon(ctx context.Context, hackathon *model.Hackathon) error {
	return s.saveRecord(ctx, kindHackathon, hackathon.ID, hackathon)
}

func (s *Storage) GetHackathon(ctx context.Context, id string) (*model.Hackathon, error) {
	return getJSON[model.Hackathon](ctx, s.client, recordKey(kindHackathon, id), model.ErrHackathonNotFound)
}

func (s *Storage) ListHackathons(ctx context.Context) ([]*model.Hackathon, error) {
	hackathons, err := listRecords[model.Hackathon](ctx, s.client, kindHackathon)
	if err != nil {
		return nil, err
	}
	storage.SortHackathons(hackathons)
	return hackathons, nil
}

func (s *Storage) DeleteHackathon(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, kindHackathon, id)
}

// Teammate request operations

func (s *Storage) SaveTeammateRequest(ctx context.Context, req *model.TeammateRequest) error {
	return s.saveRecord(ctx, kindTeammateRequest, req.ID, req)
}

func (s *Storage) GetTeammateRequest(ctx context.Context, id string) (*model.TeammateRequest, error) {
	return getJSON[model.TeammateRequest](ctx, s.client, recordKey(kindTeammateRequest, id), model.ErrTeammateRequestNotFound)
}

func (s *Storage) ListTeammateRequests(ctx context.Context) ([]*model.TeammateRequest, error) {
	reqs, err := listRecords[model.TeammateRequest](ctx, s.client, kindTeammateRequest)
	if err != nil {
		return nil, err
	}
	storage.SortTeammateRequests(reqs)
	return reqs, nil
}

func (s *Storage) DeleteTeammateRequest(ctx context.Context, id string) error {
	return s.deleteRecord(ctx, kindTeammateRequest, id)
}

// Record helpers

func (s *Storage) saveRecord(ctx context.Context, kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKey(kind, id), data, 0)
	pipe.SAdd(ctx, recordIndexKey(kind), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) deleteRecord(ctx context.Context, kind, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, recordKey(kind, id))
	pipe.SRem(ctx, recordIndexKey(kind), id)
	_, err := pipe.Exec(ctx)
	return err
}

func listRecords[T any](ctx context.Context, client *redis.Client, kind string) ([]*T, error) {
	return listJSON[T](ctx, client, recordIndexKey(kind), func(id string) string {
		return recordKey(kind, id)
	})
}

func getJSON[T any](ctx context.Context, client *redis.Client, key string, notFound error) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &v, nil
}

// listJSON loads every member of an index SET. Members whose record has
// expired are dropped from the index.
func listJSON[T any](ctx context.Context, client *redis.Client, indexKey string, keyFor func(string) string) ([]*T, error) {
	ids, err := client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyFor(id)
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*T, 0, len(values))
	var stale []any
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			continue // Skip invalid data
		}
		result = append(result, &v)
	}

	if len(stale) > 0 {
		if err := client.SRem(ctx, indexKey, stale...).Err(); err != nil {
			return nil, err
		}
	}
	return result, nil
}
