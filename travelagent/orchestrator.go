package travelagent

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/memory"
	"github.com/MuaazSM/multimodal-travel-agent/metrics"
	"github.com/MuaazSM/multimodal-travel-agent/state"
)

// Stage names, also used as metric and span labels.
const (
	StageParse         = "parse"
	StageRoute         = "route"
	StageVectorSummary = "vector_summary"
	StageWebSummary    = "web_summary"
	StageEnrich        = "enrich"
	StageFinal         = "final"
)

// Orchestrator runs one turn of a thread: load state, walk the stage graph, persist.
type Orchestrator struct {
	graph     *Runnable
	assembler *Assembler
	store     memory.Store
	locks     *memory.ThreadLocks
	metrics   *metrics.Metrics
	history   int
	now       func() time.Time
}

func newGraph(parser *QueryParser, vector *VectorSummary, web *WebSummary, enricher *Enricher, assembler *Assembler) *Graph {
	g := NewGraph()

	g.AddNode(StageParse, "Identify the city and dates", parser.Run)
	g.AddNode(StageRoute, "Choose how to describe the city", routeNode)
	g.AddNode(StageVectorSummary, "Summarize from the travel knowledge base", vector.Run)
	g.AddNode(StageWebSummary, "Summarize from web search", web.Run)
	g.AddNode(StageEnrich, "Fetch weather and images", enricher.Run)
	g.AddNode(StageFinal, "Assemble the answer", assembler.Run)

	g.SetEntryPoint(StageParse)
	g.AddEdge(StageParse, StageRoute)
	g.AddConditionalEdge(StageRoute, func(st *state.ConversationState) string {
		switch Route(st) {
		case LabelVector:
			return StageVectorSummary
		case LabelWeb:
			return StageWebSummary
		default:
			return StageEnrich
		}
	}, StageVectorSummary, StageWebSummary, StageEnrich)
	g.AddEdge(StageVectorSummary, StageEnrich)
	g.AddEdge(StageWebSummary, StageEnrich)
	g.AddEdge(StageEnrich, StageFinal)
	g.AddEdge(StageFinal, END)

	return g
}

func routeNode(ctx context.Context, st *state.ConversationState) {
	label := Route(st)
	st.Route = label.route()

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("route.label", string(label)))
	logger.Info("Route selected",
		zap.String("threadId", st.ThreadID),
		zap.String("city", st.City),
		zap.String("label", string(label)))
}

// Run executes one turn for threadID. Turns of the same thread are serialized.
// The returned state is the finished turn even when persisting it fails.
func (o *Orchestrator) Run(ctx context.Context, threadID, query string) (*state.ConversationState, error) {
	if threadID == "" {
		return nil, memory.ErrInvalidID
	}

	unlock := o.locks.Lock(threadID)
	defer unlock()

	st := o.load(ctx, threadID)
	st.BeginTurn(query)

	logger.Info("Turn started", zap.String("threadId", threadID), zap.String("query", query))

	visited, err := o.graph.Invoke(ctx, st)
	if err != nil {
		logger.Error("Pipeline stopped early",
			zap.String("threadId", threadID),
			zap.Strings("visited", visited),
			zap.Error(err))
		st.AddError(fmt.Sprintf("Pipeline stopped early: %v", err))
		discardStale(st, visited)
	}
	if !slices.Contains(visited, StageFinal) {
		o.assembler.Run(ctx, st)
	}

	label := string(st.Route)
	if st.SkipSummary {
		label = string(LabelSkip)
	}
	o.metrics.TurnFinished(label)

	st.RecordTurn(o.now(), o.history)

	if err := o.store.Save(context.WithoutCancel(ctx), st); err != nil {
		logger.Error("Failed to save thread state", zap.String("threadId", threadID), zap.Error(err))
		return st, fmt.Errorf("save thread %s: %w", threadID, err)
	}

	logger.Info("Turn finished",
		zap.String("threadId", threadID),
		zap.String("city", st.City),
		zap.String("route", label),
		zap.Int("errors", len(st.Errors)))
	return st, nil
}

// discardStale drops content carried over from the previous turn that a stopped
// pipeline did not refresh. Only the summary and images of an unchanged city
// survive; weather is per turn.
func discardStale(st *state.ConversationState, visited []string) {
	if !slices.Contains(visited, StageEnrich) {
		st.WeatherForecast = nil
	}
	if !slices.Contains(visited, StageParse) {
		return
	}
	if !st.SkipSummary && !slices.Contains(visited, StageVectorSummary) && !slices.Contains(visited, StageWebSummary) {
		st.CitySummary = ""
	}
	if !st.SkipImages && !slices.Contains(visited, StageEnrich) {
		st.ImageURLs = nil
	}
}

func (o *Orchestrator) load(ctx context.Context, threadID string) *state.ConversationState {
	st, err := o.store.Load(ctx, threadID)
	switch {
	case err == nil:
		return st
	case errors.Is(err, memory.ErrNotFound):
		return state.New(threadID)
	default:
		logger.Error("Failed to load thread state, starting fresh", zap.String("threadId", threadID), zap.Error(err))
		return state.New(threadID)
	}
}

// Thread returns the state left by the last finished turn of threadID.
func (o *Orchestrator) Thread(ctx context.Context, threadID string) (*state.ConversationState, error) {
	if threadID == "" {
		return nil, memory.ErrInvalidID
	}
	return o.store.Load(ctx, threadID)
}

// Reset forgets threadID so its next turn starts a new conversation.
func (o *Orchestrator) Reset(ctx context.Context, threadID string) error {
	if threadID == "" {
		return memory.ErrInvalidID
	}

	unlock := o.locks.Lock(threadID)
	defer unlock()

	logger.Info("Thread reset", zap.String("threadId", threadID))
	return o.store.Delete(ctx, threadID)
}
