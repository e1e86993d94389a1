package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TranscriptEntry is a single turn in a call transcript.
type TranscriptEntry struct {
	Role      string    `json:"role"` // "caller" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionStore persists intake sessions for the duration of a call.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	// Get returns nil, nil when no session exists for the call.
	Get(ctx context.Context, callID string) (*Session, error)
	Delete(ctx context.Context, callID string) error
	AppendTranscript(ctx context.Context, callID string, entry TranscriptEntry) error
	Transcript(ctx context.Context, callID string) ([]TranscriptEntry, error)
}

const (
	sessionKeyPrefix    = "intake:session:"
	transcriptKeyPrefix = "intake:transcript:"

	defaultSessionTTL = 2 * time.Hour
)

// RedisSessionStore manages intake sessions in Redis. Sessions expire after
// the TTL so abandoned calls clean themselves up.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionStore creates a session store backed by Redis.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(callID string) string {
	return sessionKeyPrefix + callID
}

func transcriptKey(callID string) string {
	return transcriptKeyPrefix + callID
}

// Save persists or updates a session.
func (s *RedisSessionStore) Save(ctx context.Context, session *Session) error {
	if session == nil || session.CallID == "" {
		return fmt.Errorf("intake: session call_id required")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("intake: marshal session: %w", err)
	}
	return s.rdb.Set(ctx, sessionKey(session.CallID), data, s.ttl).Err()
}

// Get retrieves a session; nil, nil when absent.
func (s *RedisSessionStore) Get(ctx context.Context, callID string) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(callID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("intake: get session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("intake: unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes a session and its transcript.
func (s *RedisSessionStore) Delete(ctx context.Context, callID string) error {
	return s.rdb.Del(ctx, sessionKey(callID), transcriptKey(callID)).Err()
}

// AppendTranscript records one turn of the call transcript.
func (s *RedisSessionStore) AppendTranscript(ctx context.Context, callID string, entry TranscriptEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("intake: marshal transcript entry: %w", err)
	}
	pipe := s.rdb.Pipeline()
	pipe.RPush(ctx, transcriptKey(callID), data)
	pipe.Expire(ctx, transcriptKey(callID), s.ttl)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("intake: append transcript: %w", err)
	}
	return nil
}

// Transcript returns the full transcript for a call in order.
func (s *RedisSessionStore) Transcript(ctx context.Context, callID string) ([]TranscriptEntry, error) {
	items, err := s.rdb.LRange(ctx, transcriptKey(callID), 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("intake: read transcript: %w", err)
	}
	entries := make([]TranscriptEntry, 0, len(items))
	for _, item := range items {
		var entry TranscriptEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("intake: unmarshal transcript entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

var _ SessionStore = (*RedisSessionStore)(nil)
