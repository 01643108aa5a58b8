// Package tokenstore persists the credential pair and the logged-in user list.
//
// It is pure storage: the only logic is presence checks. Storage failures are
// logged and swallowed, so readers see "no token" and writers carry on
// degraded, matching how a browser treats an unavailable local storage.
package tokenstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/libdesk/internal/client/models"
	"github.com/dmitrijs2005/libdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/libdesk/internal/common"
	"github.com/dmitrijs2005/libdesk/internal/logging"
)

// Store is shared by the HTTP client and the session manager.
type Store interface {
	Save(ctx context.Context, access, refresh string)
	// SetAccessToken replaces the access token and leaves the refresh token as is.
	SetAccessToken(ctx context.Context, access string)
	AccessToken(ctx context.Context) string
	RefreshToken(ctx context.Context) string
	// Clear removes both tokens.
	Clear(ctx context.Context)

	SaveUsers(ctx context.Context, users []models.User)
	Users(ctx context.Context) []models.User
	ClearUsers(ctx context.Context)
}

// SQLStore keeps state in the metadata table of the client database.
type SQLStore struct {
	repo metadata.Repository
	log  logging.Logger
}

func NewSQLStore(repo metadata.Repository, log logging.Logger) *SQLStore {
	return &SQLStore{repo: repo, log: log.With("component", "tokenstore")}
}

func (s *SQLStore) Save(ctx context.Context, access, refresh string) {
	err := s.repo.SetMany(ctx, map[string]string{
		common.AccessTokenKey:  access,
		common.RefreshTokenKey: refresh,
	})
	if err != nil {
		s.log.Error(ctx, "failed to save tokens", "error", err)
	}
}

func (s *SQLStore) SetAccessToken(ctx context.Context, access string) {
	if err := s.repo.Set(ctx, common.AccessTokenKey, access); err != nil {
		s.log.Error(ctx, "failed to save access token", "error", err)
	}
}

func (s *SQLStore) AccessToken(ctx context.Context) string {
	return s.get(ctx, common.AccessTokenKey)
}

func (s *SQLStore) RefreshToken(ctx context.Context) string {
	return s.get(ctx, common.RefreshTokenKey)
}

func (s *SQLStore) get(ctx context.Context, key string) string {
	v, _, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Error(ctx, "failed to read token", "key", key, "error", err)
		return ""
	}
	return v
}

func (s *SQLStore) Clear(ctx context.Context) {
	if err := s.repo.Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey); err != nil {
		s.log.Error(ctx, "failed to clear tokens", "error", err)
	}
}

func (s *SQLStore) SaveUsers(ctx context.Context, users []models.User) {
	b, err := json.Marshal(users)
	if err != nil {
		s.log.Error(ctx, "failed to encode users", "error", err)
		return
	}
	if err := s.repo.Set(ctx, common.UsersKey, string(b)); err != nil {
		s.log.Error(ctx, "failed to save users", "error", err)
	}
}

func (s *SQLStore) Users(ctx context.Context) []models.User {
	raw, ok, err := s.repo.Get(ctx, common.UsersKey)
	if err != nil {
		s.log.Error(ctx, "failed to read users", "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var users []models.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		s.log.Warn(ctx, "stored users are not valid JSON, ignoring", "error", err)
		return nil
	}
	return users
}

func (s *SQLStore) ClearUsers(ctx context.Context) {
	if err := s.repo.Delete(ctx, common.UsersKey); err != nil {
		s.log.Error(ctx, "failed to clear users", "error", err)
	}
}

// MemoryStore is an in-process Store for tests and throwaway sessions.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
	users   []models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, access, refresh string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = access, refresh
}

func (m *MemoryStore) SetAccessToken(_ context.Context, access string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
}

func (m *MemoryStore) AccessToken(context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

func (m *MemoryStore) RefreshToken(context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh
}

func (m *MemoryStore) Clear(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = "", ""
}

func (m *MemoryStore) SaveUsers(_ context.Context, users []models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append([]models.User(nil), users...)
}

func (m *MemoryStore) Users(context.Context) []models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.User(nil), m.users...)
}

func (m *MemoryStore) ClearUsers(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = nil
}
