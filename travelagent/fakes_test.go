package travelagent

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/MuaazSM/multimodal-travel-agent/llm"
	"github.com/MuaazSM/multimodal-travel-agent/state"
	"github.com/MuaazSM/multimodal-travel-agent/tools"
)

type fakeLLM struct {
	mu           sync.Mutex
	capabilities llm.Capability
	content      string
	toolCalls    []api.ToolCall
	err          error
	prompts      []string
	calls        int
}

func (f *fakeLLM) GenerateInference(ctx context.Context, messages []llm.Message, callback func(chunk string) error, opts ...llm.LLMOption) error {
	return f.GenerateInferenceWithTools(ctx, messages, callback, nil, opts...)
}

func (f *fakeLLM) GenerateInferenceWithTools(
	_ context.Context,
	messages []llm.Message,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
	_ ...llm.LLMOption,
) error {
	f.mu.Lock()
	f.calls++
	for _, m := range messages {
		f.prompts = append(f.prompts, m.Content)
	}
	f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	if len(f.toolCalls) > 0 && toolCallback != nil {
		return toolCallback(f.toolCalls)
	}
	if f.content != "" && contentCallback != nil {
		return contentCallback(f.content)
	}
	return nil
}

func (f *fakeLLM) Capabilities() llm.Capability { return f.capabilities }
func (f *fakeLLM) GetModel() string             { return "fake-model" }

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// fakeExtractor answers per query; unknown queries get an empty extraction.
type fakeExtractor struct {
	byQuery map[string]CityExtraction
	err     error
}

func (f *fakeExtractor) Extract(_ context.Context, query string) (CityExtraction, error) {
	if f.err != nil {
		return CityExtraction{}, f.err
	}
	return f.byQuery[query], nil
}

type fakeRetriever struct {
	passages []string
	err      error
	calls    atomic.Int32
	lastCity string
	lastK    int
	// onCall runs with the 1-based call number before the result is returned.
	onCall func(n int)
}

func (f *fakeRetriever) Retrieve(_ context.Context, city, _ string, k int) ([]string, error) {
	n := f.calls.Add(1)
	if f.onCall != nil {
		f.onCall(int(n))
	}
	f.lastCity = city
	f.lastK = k
	return f.passages, f.err
}

type fakeSearcher struct {
	results   []tools.SearchResult
	err       error
	calls     atomic.Int32
	lastQuery string
	lastMax   int
}

func (f *fakeSearcher) Search(_ context.Context, query string, maxResults int) ([]tools.SearchResult, error) {
	f.calls.Add(1)
	f.lastQuery = query
	f.lastMax = maxResults
	return f.results, f.err
}

type fakeWeather struct {
	forecast []state.DailyForecast
	err      error
	calls    atomic.Int32
	barrier  *barrier
}

func (f *fakeWeather) Forecast(ctx context.Context, _ string) ([]state.DailyForecast, error) {
	f.calls.Add(1)
	if f.barrier != nil {
		if err := f.barrier.arrive(ctx); err != nil {
			return nil, err
		}
	}
	return f.forecast, f.err
}

type fakeImages struct {
	urls      []string
	err       error
	calls     atomic.Int32
	lastLimit atomic.Int32
	barrier   *barrier
}

func (f *fakeImages) Images(ctx context.Context, _ string, limit int) ([]string, error) {
	f.calls.Add(1)
	f.lastLimit.Store(int32(limit))
	if f.barrier != nil {
		if err := f.barrier.arrive(ctx); err != nil {
			return nil, err
		}
	}
	return f.urls, f.err
}

// barrier releases its parties only once all of them have arrived, so it
// deadlocks (until ctx expires) when they are called one after another.
type barrier struct {
	wg sync.WaitGroup
}

func newBarrier(parties int) *barrier {
	b := &barrier{}
	b.wg.Add(parties)
	return b
}

func (b *barrier) arrive(ctx context.Context) error {
	b.wg.Done()
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type recordingReporter struct {
	mu     sync.Mutex
	events []*ProgressEvent
}

func (r *recordingReporter) Send(ev *ProgressEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func forecastDays(n int) []state.DailyForecast {
	start := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	out := make([]state.DailyForecast, n)
	for i := range out {
		out[i] = state.DailyForecast{
			Date:        start.AddDate(0, 0, i).Format(time.DateOnly),
			TempMin:     10,
			TempMax:     20,
			TempAvg:     15,
			Description: "clear sky",
		}
	}
	return out
}
