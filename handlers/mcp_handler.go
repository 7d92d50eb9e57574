package handlers

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/travelagent"
)

const TravelQueryToolName = "travel_query"

// TravelQueryTool describes the travel_query MCP tool.
func TravelQueryTool() mcp.Tool {
	return mcp.NewTool(
		TravelQueryToolName,
		mcp.WithDescription("Answers a travel question about a city with a summary, a daily weather forecast and destination images. Pass the returned thread_id on follow-up questions to keep the conversation context."),
		mcp.WithString("query",
			mcp.Description("The user's travel question, e.g. 'Tell me about Paris next week'"),
			mcp.Required(),
		),
		mcp.WithString("thread_id",
			mcp.Description("Conversation id from a previous call; omit to start a new conversation"),
		),
	)
}

type TravelQueryHandler struct {
	turns TurnRunner
	newID func() string
}

func NewTravelQueryHandler(turns TurnRunner) *TravelQueryHandler {
	return &TravelQueryHandler{turns: turns, newID: newThreadID}
}

func (h *TravelQueryHandler) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("No query provided"), nil
	}

	threadID := strings.TrimSpace(req.GetString("thread_id", ""))
	if threadID == "" {
		threadID = h.newID()
	}

	st, err := h.turns.Run(ctx, threadID, query)
	if err != nil && st == nil {
		logger.Error("Travel query failed", zap.String("threadId", threadID), zap.Error(err))
		return mcp.NewToolResultError("Travel query failed: " + err.Error()), nil
	}

	out := travelagent.NewTravelOutput(st)
	if err != nil {
		logger.Error("Travel query finished without saving", zap.String("threadId", threadID), zap.Error(err))
		out = withSaveWarning(out, err)
	}
	md := travelagent.RenderMarkdown(out)
	return mcp.NewToolResultText(md + "\n_thread_id: " + threadID + "_\n"), nil
}
