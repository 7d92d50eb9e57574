package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatter struct {
	req       *api.ChatRequest
	responses []api.ChatResponse
	err       error
}

func (f *fakeChatter) Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error {
	f.req = req
	if f.err != nil {
		return f.err
	}
	for _, r := range f.responses {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func TestOllamaClientContent(t *testing.T) {
	fake := &fakeChatter{responses: []api.ChatResponse{
		{Message: api.Message{Content: "Tokyo is "}},
		{Message: api.Message{Content: "vast."}},
	}}
	client := &OllamaClient{client: fake, model: "llama3.2"}

	var result string
	err := client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "Tokyo?"}},
		func(chunk string) error {
			result = chunk
			return nil
		},
		WithSystemPrompt("sys"),
		WithJSONMode(),
	)

	require.NoError(t, err)
	assert.Equal(t, "Tokyo is vast.", result)
	require.Len(t, fake.req.Messages, 2)
	assert.Equal(t, "system", fake.req.Messages[0].Role)
	assert.Equal(t, json.RawMessage(`"json"`), fake.req.Format)
	assert.False(t, *fake.req.Stream)
	assert.Nil(t, fake.req.Tools)
}

func TestOllamaClientToolCalls(t *testing.T) {
	fake := &fakeChatter{responses: []api.ChatResponse{{
		Message: api.Message{ToolCalls: []api.ToolCall{{
			Function: api.ToolCallFunction{
				Name:      "extract_city",
				Arguments: api.ToolCallFunctionArguments{"city_name": "Paris"},
			},
		}}},
	}}}
	client := &OllamaClient{client: fake, model: "llama3.2"}
	tool := NewToolBuilder("extract_city", "extract").Build()

	var calls []api.ToolCall
	err := client.GenerateInferenceWithTools(context.Background(),
		[]Message{{Role: "user", Content: "Paris"}},
		func(string) error { return nil },
		func(tc []api.ToolCall) error {
			calls = tc
			return nil
		},
		WithTools([]api.Tool{tool}),
	)

	require.NoError(t, err)
	require.Len(t, fake.req.Tools, 1)
	require.Len(t, calls, 1)
	assert.Equal(t, "Paris", calls[0].Function.Arguments["city_name"])
}

func TestOllamaClientError(t *testing.T) {
	fake := &fakeChatter{err: errors.New("connection refused")}
	client := &OllamaClient{client: fake, model: "llama3.2"}

	err := client.GenerateInference(context.Background(), nil, func(string) error { return nil })
	assert.EqualError(t, err, "connection refused")
	assert.True(t, client.Capabilities()&NativeToolCalling != 0)
}
