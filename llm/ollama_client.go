package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ollama/ollama/api"
)

// ollamaChatter is the slice of *api.Client used here; tests substitute it.
type ollamaChatter interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

type OllamaClient struct {
	client ollamaChatter
	model  string
}

// NewOllamaClient talks to the Ollama server named by OLLAMA_HOST (default localhost:11434).
func NewOllamaClient(client *api.Client, model string) *OllamaClient {
	return &OllamaClient{client: client, model: model}
}

func (c *OllamaClient) Capabilities() Capability {
	return NativeToolCalling
}

func (c *OllamaClient) GetModel() string {
	return c.model
}

func (c *OllamaClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	return c.GenerateInferenceWithTools(ctx, messages, callback, nil, opts...)
}

func (c *OllamaClient) GenerateInferenceWithTools(
	ctx context.Context,
	messages []Message,
	contentCallback func(chunk string) error,
	toolCallback func(toolCalls []api.ToolCall) error,
	opts ...LLMOption,
) error {
	settings := defaultSettings(c.model)
	applyOptions(&settings, opts)

	stream := false
	req := &api.ChatRequest{
		Model:    settings.model,
		Messages: toOllamaMessages(settings.system, messages),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": settings.temperature,
			"num_predict": settings.maxTokens,
		},
	}
	if len(settings.tools) > 0 && toolCallback != nil {
		req.Tools = settings.tools
	}
	if settings.jsonMode {
		req.Format = json.RawMessage(`"json"`)
	}

	var content strings.Builder
	var toolCalls []api.ToolCall
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		toolCalls = append(toolCalls, resp.Message.ToolCalls...)
		return nil
	})
	if err != nil {
		return err
	}

	if len(toolCalls) > 0 && toolCallback != nil {
		return toolCallback(toolCalls)
	}
	if content.Len() > 0 && contentCallback != nil {
		return contentCallback(content.String())
	}
	return nil
}

func toOllamaMessages(system string, messages []Message) []api.Message {
	out := make([]api.Message, 0, len(messages)+1)
	if system != "" {
		out = append(out, api.Message{Role: "system", Content: system})
	}
	for _, m := range messages {
		out = append(out, api.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
