package travelagent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/llm"
	"github.com/MuaazSM/multimodal-travel-agent/metrics"
	"github.com/MuaazSM/multimodal-travel-agent/prompts"
	"github.com/MuaazSM/multimodal-travel-agent/retrieval"
	"github.com/MuaazSM/multimodal-travel-agent/state"
	"github.com/MuaazSM/multimodal-travel-agent/tools"
)

const (
	summaryPassages = 5
	searchResults   = 5
)

// summarizer turns a rendered prompt into prose, bounded by its own timeout.
type summarizer struct {
	client  llm.LLMClient
	timeout time.Duration
}

func (s summarizer) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var out strings.Builder
	err := s.client.GenerateInference(ctx,
		[]llm.Message{{Role: "user", Content: prompt}},
		func(chunk string) error {
			out.WriteString(chunk)
			return nil
		},
		llm.WithTemperature(0),
		llm.WithMaxTokens(1024),
	)
	return strings.TrimSpace(out.String()), err
}

// VectorSummary writes the city summary from pre-indexed knowledge base passages.
type VectorSummary struct {
	retriever  retrieval.Retriever
	summarizer summarizer
	timeout    time.Duration
	metrics    *metrics.Metrics
}

func NewVectorSummary(retriever retrieval.Retriever, client llm.LLMClient, fetchTimeout, generateTimeout time.Duration, m *metrics.Metrics) *VectorSummary {
	return &VectorSummary{
		retriever:  retriever,
		summarizer: summarizer{client: client, timeout: generateTimeout},
		timeout:    fetchTimeout,
		metrics:    m,
	}
}

func (v *VectorSummary) Run(ctx context.Context, st *state.ConversationState) {
	if !st.HasCity() {
		st.AddError("Vector summary: no city to work with")
		return
	}
	city := st.City

	passages, err := v.retrieve(ctx, city)
	if err != nil {
		v.fail(st, err)
		return
	}

	if len(passages) == 0 {
		logger.Info("No vector results", zap.String("threadId", st.ThreadID), zap.String("city", city))
		v.metrics.UpstreamFailure("vector")
		st.CitySummary = fmt.Sprintf("Information about %s is not available.", city)
		st.AddError(fmt.Sprintf("No vector DB results for %s", city))
		return
	}

	prompt, err := prompts.RenderVectorSummaryPrompt(city, strings.Join(passages, "\n---\n"))
	if err != nil {
		v.fail(st, err)
		return
	}

	summary, err := v.summarizer.generate(ctx, prompt)
	if err != nil {
		v.fail(st, err)
		return
	}

	if summary == "" {
		st.CitySummary = fmt.Sprintf("No summary generated for %s from vector data.", city)
		st.AddError(fmt.Sprintf("Vector summary: empty response for %s", city))
		return
	}

	st.CitySummary = summary
	logger.Info("Vector summary generated",
		zap.String("threadId", st.ThreadID),
		zap.String("city", city),
		zap.Int("passages", len(passages)),
		zap.Int("chars", len(summary)))
}

func (v *VectorSummary) retrieve(ctx context.Context, city string) ([]string, error) {
	ctx, cancel := withTimeout(ctx, v.timeout)
	defer cancel()
	return v.retriever.Retrieve(ctx, city, "Overview and information about "+city, summaryPassages)
}

func (v *VectorSummary) fail(st *state.ConversationState, err error) {
	logger.Error("Vector summary failed",
		zap.String("threadId", st.ThreadID),
		zap.String("source", "vector"),
		zap.Error(err))
	v.metrics.UpstreamFailure("vector")
	st.CitySummary = fmt.Sprintf("Unable to retrieve information about %s.", st.City)
	st.AddError(fmt.Sprintf("Vector DB error: %v", err))
}

// WebSummary writes the city summary from live web search results.
type WebSummary struct {
	searcher   tools.WebSearcher
	summarizer summarizer
	timeout    time.Duration
	metrics    *metrics.Metrics
}

func NewWebSummary(searcher tools.WebSearcher, client llm.LLMClient, fetchTimeout, generateTimeout time.Duration, m *metrics.Metrics) *WebSummary {
	return &WebSummary{
		searcher:   searcher,
		summarizer: summarizer{client: client, timeout: generateTimeout},
		timeout:    fetchTimeout,
		metrics:    m,
	}
}

func (w *WebSummary) Run(ctx context.Context, st *state.ConversationState) {
	if !st.HasCity() {
		st.AddError("Web summary: no city to work with")
		return
	}
	city := st.City

	results, err := w.search(ctx, city)
	if err != nil {
		w.fail(st, err)
		return
	}

	if len(results) == 0 {
		logger.Info("No web results", zap.String("threadId", st.ThreadID), zap.String("city", city))
		w.metrics.UpstreamFailure("web")
		st.CitySummary = fmt.Sprintf("Unable to find info about %s online", city)
		st.AddError(fmt.Sprintf("Web search returned no results for %s", city))
		return
	}

	prompt, err := prompts.RenderWebSummaryPrompt(city, webContext(results))
	if err != nil {
		w.fail(st, err)
		return
	}

	summary, err := w.summarizer.generate(ctx, prompt)
	if err != nil {
		w.fail(st, err)
		return
	}

	if summary == "" {
		st.CitySummary = fmt.Sprintf("No summary generated for %s from web search.", city)
		st.AddError(fmt.Sprintf("Web summary: empty response for %s", city))
		return
	}

	st.CitySummary = summary
	logger.Info("Web summary generated",
		zap.String("threadId", st.ThreadID),
		zap.String("city", city),
		zap.Int("sources", len(results)),
		zap.Int("chars", len(summary)))
}

func (w *WebSummary) search(ctx context.Context, city string) ([]tools.SearchResult, error) {
	ctx, cancel := withTimeout(ctx, w.timeout)
	defer cancel()
	return w.searcher.Search(ctx, city+" city information overview guide", searchResults)
}

func (w *WebSummary) fail(st *state.ConversationState, err error) {
	logger.Error("Web summary failed",
		zap.String("threadId", st.ThreadID),
		zap.String("source", "web"),
		zap.Error(err))
	w.metrics.UpstreamFailure("web")
	st.CitySummary = fmt.Sprintf("Unable to retrieve information about %s at this time.", st.City)
	st.AddError(fmt.Sprintf("Web summary error: %v", err))
}

// webContext numbers each result as a labelled source.
func webContext(results []tools.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Source %d: %s]\n%s", i+1, r.Title, r.Snippet)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// withTimeout leaves ctx unchanged when d is not positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
