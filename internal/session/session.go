// Package session keeps assistant chat history per login session.
//
// History is keyed by the session id carried in the auth token, so logging
// out (or the token expiring) starts a fresh conversation. Stores keep at
// most the configured number of most recent messages.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/sakif/fittrack/internal/model"
)

// Store persists chat history. Load returns an empty slice, not an error,
// for an unknown session.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	Save(ctx context.Context, sessionID string, history []model.ChatMessage) error
	Clear(ctx context.Context, sessionID string) error
}

// Trim returns the last max messages of history. max <= 0 keeps everything.
func Trim(history []model.ChatMessage, max int) []model.ChatMessage {
	if max <= 0 || len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}

type memoryEntry struct {
	history []model.ChatMessage
	expires time.Time
}

// MemoryStore is the single-process Store used when no Redis is configured.
type MemoryStore struct {
	mu         sync.Mutex
	sessions   map[string]memoryEntry
	maxHistory int
	ttl        time.Duration
	now        func() time.Time
	nextSweep  time.Time
}

// NewMemoryStore returns an empty MemoryStore. A zero ttl never expires.
func NewMemoryStore(maxHistory int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions:   make(map[string]memoryEntry),
		maxHistory: maxHistory,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return []model.ChatMessage{}, nil
	}
	if !entry.expires.IsZero() && s.now().After(entry.expires) {
		delete(s.sessions, sessionID)
		return []model.ChatMessage{}, nil
	}
	out := make([]model.ChatMessage, len(entry.history))
	copy(out, entry.history)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, history []model.ChatMessage) error {
	trimmed := Trim(history, s.maxHistory)
	stored := make([]model.ChatMessage, len(trimmed))
	copy(stored, trimmed)

	now := s.now()
	var expires time.Time
	if s.ttl > 0 {
		expires = now.Add(s.ttl)
	}

	s.mu.Lock()
	s.sessions[sessionID] = memoryEntry{history: stored, expires: expires}
	s.sweep(now)
	s.mu.Unlock()
	return nil
}

// sweep drops expired sessions, at most once per ttl. Abandoned sessions
// are never loaded again, so Load alone would keep them forever. Caller
// holds s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	if s.ttl <= 0 || now.Before(s.nextSweep) {
		return
	}
	for id, e := range s.sessions {
		if now.After(e.expires) {
			delete(s.sessions, id)
		}
	}
	s.nextSweep = now.Add(s.ttl)
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
