package appconfig

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	LLMProvider     string `env:"LLM-PROVIDER" ini:"llm_provider"` // ollama | groq | anthropic
	LLMModel        string `env:"LLM-MODEL" ini:"llm_model"`
	GroqAPIKey      string `env:"GROQ-API-KEY" ini:"groq_api_key"`
	AnthropicAPIKey string `env:"ANTHROPIC-API-KEY" ini:"anthropic_api_key"`
	EmbeddingModel  string `env:"EMBEDDING-MODEL" ini:"embedding_model"`

	OpenWeatherAPIKey string `env:"OPENWEATHER-API-KEY" ini:"openweather_api_key"`
	UnsplashAPIKey    string `env:"UNSPLASH-API-KEY" ini:"unsplash_api_key"`
	PexelsAPIKey      string `env:"PEXELS-API-KEY" ini:"pexels_api_key"`
	TavilyAPIKey      string `env:"TAVILY-API-KEY" ini:"tavily_api_key"`

	VectorBackend string `env:"VECTOR-BACKEND" ini:"vector_backend"` // mongo | pgvector | none
	MongoURI      string `env:"MONGO-URI" ini:"mongo_uri"`
	MongoDatabase string `env:"MONGO-DATABASE" ini:"mongo_database"`
	PostgresURL   string `env:"DATABASE-URL" ini:"postgres_url"`

	StateStore    string `env:"STATE-STORE" ini:"state_store"` // memory | mongo | redis
	RedisAddr     string `env:"REDIS-ADDR" ini:"redis_addr"`
	StateTTLHours string `env:"STATE-TTL-HOURS" ini:"state_ttl_hours"`

	UpstreamTimeoutSeconds string `env:"UPSTREAM-TIMEOUT-SECONDS" ini:"upstream_timeout_seconds"`
	GenerateTimeoutSeconds string `env:"GENERATE-TIMEOUT-SECONDS" ini:"generate_timeout_seconds"`
	HTTPPort               string `env:"HTTP-PORT" ini:"http_port"`
	HistorySize            string `env:"HISTORY-SIZE" ini:"history_size"`
	TraceStdout            string `env:"TRACE-STDOUT" ini:"trace_stdout"`
}

// Load reads the config.ini section named by ENV, then lets environment
// variables override any field carrying an env tag. Both the tag as written
// (GROQ-API-KEY) and its shell form (GROQ_API_KEY) are honoured.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := config.LoadConfig(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *AppConfig) applyEnv(lookup func(string) (string, bool)) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("env")
		if tag == "" || field.Type.Kind() != reflect.String {
			continue
		}
		for _, name := range []string{strings.ReplaceAll(tag, "-", "_"), tag} {
			if val, ok := lookup(name); ok && val != "" {
				v.Field(i).SetString(val)
				break
			}
		}
	}
}

func (c *AppConfig) Provider() string {
	return orDefault(strings.ToLower(c.LLMProvider), "ollama")
}

func (c *AppConfig) Model() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	switch c.Provider() {
	case "groq":
		return "llama-3.3-70b-versatile"
	case "anthropic":
		return "claude-3-5-haiku-latest"
	default:
		return "llama3.2"
	}
}

func (c *AppConfig) Embedding() string {
	return orDefault(c.EmbeddingModel, "nomic-embed-text")
}

func (c *AppConfig) Vector() string {
	return orDefault(strings.ToLower(c.VectorBackend), "none")
}

func (c *AppConfig) Store() string {
	return orDefault(strings.ToLower(c.StateStore), "memory")
}

func (c *AppConfig) Database() string {
	return orDefault(c.MongoDatabase, "travel")
}

func (c *AppConfig) Redis() string {
	return orDefault(c.RedisAddr, "localhost:6379")
}

func (c *AppConfig) StateTTL() time.Duration {
	return time.Duration(positiveInt(c.StateTTLHours, 24)) * time.Hour
}

func (c *AppConfig) UpstreamTimeout() time.Duration {
	return time.Duration(positiveInt(c.UpstreamTimeoutSeconds, 10)) * time.Second
}

// GenerateTimeout bounds one summary generation call.
func (c *AppConfig) GenerateTimeout() time.Duration {
	return time.Duration(positiveInt(c.GenerateTimeoutSeconds, 60)) * time.Second
}

func (c *AppConfig) Port() string {
	return ":" + strings.TrimPrefix(orDefault(c.HTTPPort, "8080"), ":")
}

func (c *AppConfig) History() int {
	return positiveInt(c.HistorySize, 20)
}

func (c *AppConfig) TraceToStdout() bool {
	v, err := strconv.ParseBool(c.TraceStdout)
	return err == nil && v
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func positiveInt(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
