// Package bootstrap wires configured collaborators into a travel orchestrator.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-api-boot/odm"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/appconfig"
	"github.com/MuaazSM/multimodal-travel-agent/llm"
	"github.com/MuaazSM/multimodal-travel-agent/memory"
	"github.com/MuaazSM/multimodal-travel-agent/metrics"
	"github.com/MuaazSM/multimodal-travel-agent/retrieval"
	"github.com/MuaazSM/multimodal-travel-agent/tools"
	"github.com/MuaazSM/multimodal-travel-agent/travelagent"
)

// App holds the orchestrator and the connections it depends on.
type App struct {
	Orchestrator *travelagent.Orchestrator
	mongo        odm.MongoClient
	closers      []func()
}

var mongoConnect = func(uri string) (odm.MongoClient, error) {
	return mongo.Connect(options.Client().ApplyURI(uri))
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New builds the orchestrator described by cfg. reg may be nil to skip metrics.
func New(ctx context.Context, cfg *appconfig.AppConfig, reg prometheus.Registerer, reporter travelagent.ProgressReporter) (*App, error) {
	app := &App{}

	ollamaClient, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("ollama client: %w", err)
	}

	client, err := NewLLMClient(cfg, ollamaClient)
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	retriever, err := app.newRetriever(ctx, cfg, ollamaClient)
	if err != nil {
		app.Close()
		return nil, err
	}

	store, err := app.newStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	orchestrator, err := travelagent.NewOrchestratorBuilder().
		WithLLM(client).
		WithRetriever(retriever).
		WithWebSearcher(tools.NewTavilyClient(cfg.TavilyAPIKey)).
		WithWeather(tools.NewOpenWeatherClient(cfg.OpenWeatherAPIKey)).
		WithImages(tools.NewImageProvider(cfg.UnsplashAPIKey, cfg.PexelsAPIKey)).
		WithStore(store).
		WithMetrics(m).
		WithReporter(reporter).
		WithUpstreamTimeout(cfg.UpstreamTimeout()).
		WithGenerateTimeout(cfg.GenerateTimeout()).
		WithHistorySize(cfg.History()).
		Build()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Orchestrator = orchestrator

	logger.Info("Travel orchestrator ready",
		zap.String("llmProvider", cfg.Provider()),
		zap.String("model", client.GetModel()),
		zap.String("vectorBackend", cfg.Vector()),
		zap.String("stateStore", cfg.Store()))
	warnMissingKeys(cfg)
	return app, nil
}

// NewLLMClient returns the client named by llm_provider.
func NewLLMClient(cfg *appconfig.AppConfig, ollamaClient *api.Client) (llm.LLMClient, error) {
	switch cfg.Provider() {
	case "ollama":
		return llm.NewOllamaClient(ollamaClient, cfg.Model()), nil
	case "groq":
		return llm.NewGroqClient(cfg.GroqAPIKey, cfg.Model())
	case "anthropic":
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model())
	default:
		return nil, fmt.Errorf("unknown llm_provider %q", cfg.Provider())
	}
}

// mongoClient connects to mongo_uri on first use and shares the client afterwards.
func (a *App) mongoClient(ctx context.Context, cfg *appconfig.AppConfig) (odm.MongoClient, error) {
	if a.mongo != nil {
		return a.mongo, nil
	}
	if cfg.MongoURI == "" {
		return nil, errors.New("mongo backend needs mongo_uri")
	}

	client, err := mongoConnect(cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	a.mongo = client
	return client, nil
}

func (a *App) newRetriever(ctx context.Context, cfg *appconfig.AppConfig, ollamaClient *api.Client) (retrieval.Retriever, error) {
	embedder := retrieval.NewOllamaEmbedder(ollamaClient, cfg.Embedding())

	switch cfg.Vector() {
	case "none":
		return retrieval.Disabled{}, nil

	case "mongo":
		client, err := a.mongoClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := odm.EnsureIndexes[retrieval.CityChunkModel](ctx, client, cfg.Database()); err != nil {
			logger.Error("Failed to ensure city chunk indexes", zap.Error(err))
		}
		return retrieval.NewMongoRetriever(odm.CollectionOf[retrieval.CityChunkModel](client, cfg.Database()), embedder), nil

	case "pgvector":
		if cfg.PostgresURL == "" {
			return nil, errors.New("vector_backend pgvector needs postgres_url")
		}
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("postgres pool: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := retrieval.EnsurePgSchema(ctx, pool, retrieval.EmbeddingDimensions); err != nil {
			return nil, err
		}
		return retrieval.NewPgVectorRetriever(pool, embedder), nil

	default:
		return nil, fmt.Errorf("unknown vector_backend %q", cfg.Vector())
	}
}

func (a *App) newStore(ctx context.Context, cfg *appconfig.AppConfig) (memory.Store, error) {
	switch cfg.Store() {
	case "memory":
		return memory.NewMemoryStore(), nil

	case "mongo":
		client, err := a.mongoClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return memory.NewMongoStore(odm.CollectionOf[memory.ThreadModel](client, cfg.Database())), nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis()})
		a.closers = append(a.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis(), err)
		}
		return memory.NewRedisStore(client, memory.WithTTL(cfg.StateTTL())), nil

	default:
		return nil, fmt.Errorf("unknown state_store %q", cfg.Store())
	}
}

func warnMissingKeys(cfg *appconfig.AppConfig) {
	keys := map[string]string{
		"openweather_api_key": cfg.OpenWeatherAPIKey,
		"tavily_api_key":      cfg.TavilyAPIKey,
	}
	for name, v := range keys {
		if v == "" {
			logger.Info("API key not set; the matching stage will report errors", zap.String("key", name))
		}
	}
	if cfg.UnsplashAPIKey == "" && cfg.PexelsAPIKey == "" {
		logger.Info("No image API key set; images will be unavailable")
	}
}
