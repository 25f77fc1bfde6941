// Package session keeps the per-browser GitHub connection state: the
// access token, the connected user and the pending OAuth state nonce.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/yaguaretech/builder/models"
)

// Keys under which the GitHub connection is stored
const (
	KeyToken      = "github_token"
	KeyUser       = "github_user"
	KeyOAuthState = "github_oauth_state"
)

// CookieName carries the browser session id
const CookieName = "builder_sid"

var (
	// ErrStateMismatch is returned when a callback's state does not match the
	// nonce issued for the session, or no nonce was issued
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// Store is a string key-value store partitioned by browser session id
type Store interface {
	Get(ctx context.Context, sid, key string) (string, bool, error)
	Set(ctx context.Context, sid, key, value string) error
	Delete(ctx context.Context, sid, key string) error
	Clear(ctx context.Context, sid string) error
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, sid, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[sid][key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, sid, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[sid] == nil {
		m.values[sid] = make(map[string]string)
	}
	m.values[sid][key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sid, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values[sid], key)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, sid)
	return nil
}

// GitHubSession is the GitHub connection of one browser session
type GitHubSession struct {
	store Store
	sid   string
}

// ForSession binds a store to a browser session id
func ForSession(store Store, sid string) *GitHubSession {
	return &GitHubSession{store: store, sid: sid}
}

// Load returns the connected user. ok is false when the session holds no
// token or no decodable user; a half-written session counts as
// disconnected.
func (s *GitHubSession) Load(ctx context.Context) (user models.GitHubUser, ok bool, err error) {
	token, hasToken, err := s.store.Get(ctx, s.sid, KeyToken)
	if err != nil || !hasToken || token == "" {
		return models.GitHubUser{}, false, err
	}

	raw, hasUser, err := s.store.Get(ctx, s.sid, KeyUser)
	if err != nil || !hasUser {
		return models.GitHubUser{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return models.GitHubUser{}, false, nil
	}
	return user, true, nil
}

// Token returns the stored access token, if any
func (s *GitHubSession) Token(ctx context.Context) (string, bool, error) {
	return s.store.Get(ctx, s.sid, KeyToken)
}

// Save persists a successful connection
func (s *GitHubSession) Save(ctx context.Context, token string, user models.GitHubUser) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode github user: %w", err)
	}
	if err := s.store.Set(ctx, s.sid, KeyToken, token); err != nil {
		return err
	}
	return s.store.Set(ctx, s.sid, KeyUser, string(raw))
}

// IssueState generates and stores a fresh OAuth state nonce, replacing any
// pending one
func (s *GitHubSession) IssueState(ctx context.Context) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	state := hex.EncodeToString(buf)
	if err := s.store.Set(ctx, s.sid, KeyOAuthState, state); err != nil {
		return "", err
	}
	return state, nil
}

// ConsumeState checks state against the pending nonce. The nonce is removed
// whether or not it matches, so each one is accepted at most once.
func (s *GitHubSession) ConsumeState(ctx context.Context, state string) error {
	pending, ok, err := s.store.Get(ctx, s.sid, KeyOAuthState)
	if err != nil {
		return err
	}
	if ok {
		if err := s.store.Delete(ctx, s.sid, KeyOAuthState); err != nil {
			return err
		}
	}
	if !ok || pending == "" || state != pending {
		return ErrStateMismatch
	}
	return nil
}

// Disconnect removes the token and the user
func (s *GitHubSession) Disconnect(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.sid, KeyToken); err != nil {
		return err
	}
	return s.store.Delete(ctx, s.sid, KeyUser)
}
