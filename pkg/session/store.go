// Package session owns the authenticated identity and the raw session
// credential. Both are persisted together and survive a restart; validity of
// a restored credential is only discovered on the first privileged call.
package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/lkarlslund/tokenpool/pkg/cache"
)

// Identity is the user record as reported by /api/auth/me (and, as a subset,
// by the login response).
type Identity struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	IsAdmin          bool   `json:"is_admin"`
	DailyQuota       int64  `json:"daily_quota"`
	TokenCount       int    `json:"token_count,omitempty"`
	PublicTokenCount int    `json:"public_token_count,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

type state struct {
	AccessToken string    `json:"access_token"`
	User        *Identity `json:"user"`
}

// Store holds the session in memory and mirrors it to a JSON file. All
// mutation goes through Commit and Clear, both driven by explicit user
// actions, so there is no background writer to race with.
type Store struct {
	mu   sync.RWMutex
	path string
	st   state
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Restore reads the persisted session. A missing or partial file leaves the
// store unauthenticated and is not an error. No network validation happens
// here.
func (s *Store) Restore() error {
	var st state
	err := cache.LoadJSON(s.path, &st)
	if errors.Is(err, cache.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if strings.TrimSpace(st.AccessToken) == "" || st.User == nil {
		return nil
	}
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
	return nil
}

// Commit stores identity and credential and persists both atomically.
func (s *Store) Commit(id Identity, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return errors.New("session credential cannot be empty")
	}
	st := state{AccessToken: credential, User: &id}
	if err := cache.SaveJSON(s.path, &st); err != nil {
		return err
	}
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
	return nil
}

// UpdateIdentity re-persists a refreshed identity under the current
// credential. Used by the dashboard reload; a no-op when unauthenticated.
func (s *Store) UpdateIdentity(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(s.st.AccessToken) == "" {
		return nil
	}
	st := state{AccessToken: s.st.AccessToken, User: &id}
	if err := cache.SaveJSON(s.path, &st); err != nil {
		return err
	}
	s.st = st
	return nil
}

// Clear erases the persisted session and marks the store unauthenticated.
func (s *Store) Clear() error {
	if err := cache.Remove(s.path); err != nil {
		return err
	}
	s.mu.Lock()
	s.st = state{}
	s.mu.Unlock()
	return nil
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strings.TrimSpace(s.st.AccessToken) != "" && s.st.User != nil
}

// Credential returns the raw session credential, empty when unauthenticated.
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.AccessToken
}

func (s *Store) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st.User == nil {
		return Identity{}, false
	}
	return *s.st.User, true
}
