package travelagent

import (
	"errors"
	"time"

	"github.com/MuaazSM/multimodal-travel-agent/llm"
	"github.com/MuaazSM/multimodal-travel-agent/memory"
	"github.com/MuaazSM/multimodal-travel-agent/metrics"
	"github.com/MuaazSM/multimodal-travel-agent/retrieval"
	"github.com/MuaazSM/multimodal-travel-agent/tools"
)

const (
	DefaultUpstreamTimeout = 10 * time.Second
	DefaultGenerateTimeout = 60 * time.Second
	DefaultHistorySize     = 20
)

type OrchestratorBuilder struct {
	llmClient       llm.LLMClient
	extractor       CityExtractor
	retriever       retrieval.Retriever
	searcher        tools.WebSearcher
	weather         tools.WeatherProvider
	images          tools.ImageProvider
	store           memory.Store
	metrics         *metrics.Metrics
	reporter        ProgressReporter
	upstreamTimeout time.Duration
	generateTimeout time.Duration
	historySize     int
	now             func() time.Time
}

func NewOrchestratorBuilder() *OrchestratorBuilder {
	return &OrchestratorBuilder{
		upstreamTimeout: DefaultUpstreamTimeout,
		generateTimeout: DefaultGenerateTimeout,
		historySize:     DefaultHistorySize,
		now:             time.Now,
	}
}

// WithLLM sets the model used for summaries and, unless WithExtractor is given, city extraction.
func (b *OrchestratorBuilder) WithLLM(client llm.LLMClient) *OrchestratorBuilder {
	b.llmClient = client
	return b
}

func (b *OrchestratorBuilder) WithExtractor(extractor CityExtractor) *OrchestratorBuilder {
	b.extractor = extractor
	return b
}

func (b *OrchestratorBuilder) WithRetriever(retriever retrieval.Retriever) *OrchestratorBuilder {
	b.retriever = retriever
	return b
}

func (b *OrchestratorBuilder) WithWebSearcher(searcher tools.WebSearcher) *OrchestratorBuilder {
	b.searcher = searcher
	return b
}

func (b *OrchestratorBuilder) WithWeather(provider tools.WeatherProvider) *OrchestratorBuilder {
	b.weather = provider
	return b
}

func (b *OrchestratorBuilder) WithImages(provider tools.ImageProvider) *OrchestratorBuilder {
	b.images = provider
	return b
}

func (b *OrchestratorBuilder) WithStore(store memory.Store) *OrchestratorBuilder {
	b.store = store
	return b
}

func (b *OrchestratorBuilder) WithMetrics(m *metrics.Metrics) *OrchestratorBuilder {
	b.metrics = m
	return b
}

func (b *OrchestratorBuilder) WithReporter(reporter ProgressReporter) *OrchestratorBuilder {
	b.reporter = reporter
	return b
}

// WithUpstreamTimeout bounds each retrieval, search, weather and image call.
func (b *OrchestratorBuilder) WithUpstreamTimeout(d time.Duration) *OrchestratorBuilder {
	b.upstreamTimeout = d
	return b
}

// WithGenerateTimeout bounds each summary generation call.
func (b *OrchestratorBuilder) WithGenerateTimeout(d time.Duration) *OrchestratorBuilder {
	b.generateTimeout = d
	return b
}

func (b *OrchestratorBuilder) WithHistorySize(n int) *OrchestratorBuilder {
	b.historySize = n
	return b
}

func (b *OrchestratorBuilder) WithClock(now func() time.Time) *OrchestratorBuilder {
	b.now = now
	return b
}

func (b *OrchestratorBuilder) Build() (*Orchestrator, error) {
	if b.llmClient == nil {
		return nil, errors.New("orchestrator: llm client is required")
	}
	if b.searcher == nil {
		return nil, errors.New("orchestrator: web searcher is required")
	}
	if b.weather == nil {
		return nil, errors.New("orchestrator: weather provider is required")
	}
	if b.images == nil {
		return nil, errors.New("orchestrator: image provider is required")
	}

	extractor := b.extractor
	if extractor == nil {
		extractor = NewLLMCityExtractor(b.llmClient)
	}
	retriever := b.retriever
	if retriever == nil {
		retriever = retrieval.Disabled{}
	}
	store := b.store
	if store == nil {
		store = memory.NewMemoryStore()
	}

	assembler := NewAssembler()
	g := newGraph(
		NewQueryParser(extractor, b.metrics),
		NewVectorSummary(retriever, b.llmClient, b.upstreamTimeout, b.generateTimeout, b.metrics),
		NewWebSummary(b.searcher, b.llmClient, b.upstreamTimeout, b.generateTimeout, b.metrics),
		NewEnricher(b.weather, b.images, b.upstreamTimeout, b.metrics),
		assembler,
	)

	runnable, err := g.Compile(RunOptions{Metrics: b.metrics, Reporter: b.reporter})
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		graph:     runnable,
		assembler: assembler,
		store:     store,
		locks:     memory.NewThreadLocks(),
		metrics:   b.metrics,
		history:   b.historySize,
		now:       b.now,
	}, nil
}
