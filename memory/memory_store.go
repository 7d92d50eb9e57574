package memory

import (
	"context"
	"sync"

	"github.com/MuaazSM/multimodal-travel-agent/state"
)

// MemoryStore keeps thread state in process. Loaded and saved values are
// copies, so callers never share a state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*state.ConversationState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[string]*state.ConversationState)}
}

func (s *MemoryStore) Load(_ context.Context, threadID string) (*state.ConversationState, error) {
	if threadID == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.threads[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	return st.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, st *state.ConversationState) error {
	if err := validate(st); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads[st.ThreadID] = st.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, threadID string) error {
	if threadID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.threads, threadID)
	return nil
}
