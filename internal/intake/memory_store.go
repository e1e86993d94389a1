package intake

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemorySessionStore is a SessionStore backed by process memory, for local
// development and tests. Sessions are copied on read and write so no two
// calls ever share a mutable map.
type MemorySessionStore struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	transcripts map[string][]TranscriptEntry
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions:    make(map[string]*Session),
		transcripts: make(map[string][]TranscriptEntry),
	}
}

func (s *MemorySessionStore) Save(ctx context.Context, session *Session) error {
	if session == nil || session.CallID == "" {
		return fmt.Errorf("intake: session call_id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.CallID] = cloneSession(session)
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, callID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[callID]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, callID)
	delete(s.transcripts, callID)
	return nil
}

func (s *MemorySessionStore) AppendTranscript(ctx context.Context, callID string, entry TranscriptEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[callID] = append(s.transcripts[callID], entry)
	return nil
}

func (s *MemorySessionStore) Transcript(ctx context.Context, callID string) ([]TranscriptEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.transcripts[callID]
	out := make([]TranscriptEntry, len(entries))
	copy(out, entries)
	return out, nil
}

func cloneSession(session *Session) *Session {
	clone := *session
	clone.Collected = make(map[Field]string, len(session.Collected))
	for k, v := range session.Collected {
		clone.Collected[k] = v
	}
	return &clone
}

var _ SessionStore = (*MemorySessionStore)(nil)
