package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"example/aoe4-reviewer/app/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists review sessions between requests.
type SessionStore interface {
	Load(ctx context.Context, id string) (*models.ReviewSession, error)
	Save(ctx context.Context, s *models.ReviewSession) error
}

// NewSession starts an empty session with a random id.
func NewSession(viewerID string) *models.ReviewSession {
	return &models.ReviewSession{
		ID:        uuid.NewString(),
		ViewerID:  viewerID,
		UpdatedAt: time.Now().UTC(),
	}
}

// MemorySessions keeps sessions in process. Expired entries are dropped by Prune.
type MemorySessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

func NewMemorySessions(ttl time.Duration) *MemorySessions {
	return &MemorySessions{
		ttl:      ttl,
		sessions: map[string]memoryEntry{},
		now:      time.Now,
	}
}

func (m *MemorySessions) Load(_ context.Context, id string) (*models.ReviewSession, error) {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok || m.now().After(entry.expires) {
		return nil, ErrSessionNotFound
	}
	return decodeSession(entry.data)
}

// Save stores a copy so later edits to s do not leak into the store.
func (m *MemorySessions) Save(_ context.Context, s *models.ReviewSession) error {
	s.UpdatedAt = m.now().UTC()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	m.mu.Lock()
	m.sessions[s.ID] = memoryEntry{data: data, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

// Prune removes expired sessions and reports how many were dropped.
func (m *MemorySessions) Prune() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for id, entry := range m.sessions {
		if now.After(entry.expires) {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

func (m *MemorySessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RedisSessions stores sessions as JSON strings with a sliding TTL.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("review:session:%s", id)
}

func (r *RedisSessions) Load(ctx context.Context, id string) (*models.ReviewSession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return decodeSession(data)
}

func (r *RedisSessions) Save(ctx context.Context, s *models.ReviewSession) error {
	s.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(s.ID), data, r.ttl).Err()
}

func decodeSession(data []byte) (*models.ReviewSession, error) {
	var s models.ReviewSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling session: %w", err)
	}
	return &s, nil
}
