// Package handlers exposes travel turns over HTTP and MCP.
package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MuaazSM/multimodal-travel-agent/state"
	"github.com/MuaazSM/multimodal-travel-agent/travelagent"
)

// TurnRunner is the slice of the orchestrator the handlers need.
type TurnRunner interface {
	Run(ctx context.Context, threadID, query string) (*state.ConversationState, error)
	Thread(ctx context.Context, threadID string) (*state.ConversationState, error)
	Reset(ctx context.Context, threadID string) error
}

func newThreadID() string {
	return uuid.NewString()
}

// withSaveWarning marks the output of a turn that completed but could not be persisted.
func withSaveWarning(out travelagent.TravelOutput, saveErr error) travelagent.TravelOutput {
	out.Errors = append(out.Errors, fmt.Sprintf("Conversation state was not saved: %v", saveErr))
	return out
}
