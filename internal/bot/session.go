package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is the position of a user inside a conversation flow.
type State int

const (
	StateIdle State = iota
	StateWaitingIngredients
	StateWaitingRecipeName
	StateWaitingRecipeContent
	StateWaitingRecipeUpdate
)

// Session is the scratch state for one user's in-progress conversation. It
// lives only for the duration of a flow and is cleared on completion or
// cancellation; stores additionally expire abandoned sessions after a TTL.
type Session struct {
	State           State  `json:"state"`
	PendingName     string `json:"pending_name,omitempty"`
	EditingRecipeID string `json:"editing_recipe_id,omitempty"`
}

// SessionStore holds conversation scratch state keyed by user id.
// Get returns (nil, nil) when the user has no live session.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, userID int64, session *Session) error
	Clear(ctx context.Context, userID int64) error
}

// DefaultSessionTTL bounds how long an abandoned conversation's scratch
// state survives.
const DefaultSessionTTL = 30 * time.Minute

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. A janitor goroutine
// evicts expired entries so abandoned conversations do not leak.
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	stop    chan struct{}
}

// NewMemorySessionStore creates an in-memory store. A ttl of zero uses
// DefaultSessionTTL.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &MemorySessionStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemorySessionStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictExpired(time.Now())
		case <-s.stop:
			return
		}
	}
}

func (s *MemorySessionStore) evictExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, userID)
		}
	}
}

// Get returns the user's live session or (nil, nil).
func (s *MemorySessionStore) Get(ctx context.Context, userID int64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[userID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, userID)
		return nil, nil
	}
	copied := *entry.session
	return &copied, nil
}

// Put stores the session and resets its expiry.
func (s *MemorySessionStore) Put(ctx context.Context, userID int64, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.entries[userID] = memoryEntry{session: &copied, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

// Clear removes the session; absence is not an error.
func (s *MemorySessionStore) Clear(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

// Close stops the janitor goroutine.
func (s *MemorySessionStore) Close() {
	close(s.stop)
}

// RedisSessionStore keeps sessions in Redis, surviving bot restarts. Expiry
// rides on the key TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed store. A ttl of zero uses
// DefaultSessionTTL.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("bot:session:%d", userID)
}

// Get returns the user's live session or (nil, nil).
func (s *RedisSessionStore) Get(ctx context.Context, userID int64) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		log.Printf("Dropping unreadable session for user %d: %v", userID, err)
		_ = s.client.Del(ctx, sessionKey(userID)).Err()
		return nil, nil
	}
	return &session, nil
}

// Put stores the session with the store's TTL.
func (s *RedisSessionStore) Put(ctx context.Context, userID int64, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to Redis: %w", err)
	}
	return nil
}

// Clear removes the session; absence is not an error.
func (s *RedisSessionStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	return nil
}
