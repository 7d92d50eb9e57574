// Package memory persists the latest conversation state of each thread.
package memory

import (
	"context"
	"errors"

	"github.com/MuaazSM/multimodal-travel-agent/state"
)

var (
	ErrNotFound     = errors.New("memory: thread not found")
	ErrInvalidID    = errors.New("memory: thread id is empty")
	ErrInvalidState = errors.New("memory: state is nil")
)

// Store maps a thread id to the state left by its last finished turn.
type Store interface {
	Load(ctx context.Context, threadID string) (*state.ConversationState, error)
	Save(ctx context.Context, st *state.ConversationState) error
	Delete(ctx context.Context, threadID string) error
}

func validate(st *state.ConversationState) error {
	if st == nil {
		return ErrInvalidState
	}
	if st.ThreadID == "" {
		return ErrInvalidID
	}
	return nil
}
