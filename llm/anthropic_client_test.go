package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnthropicClientRequiresKey(t *testing.T) {
	_, err := NewAnthropicClient("", "claude-3-haiku")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestAnthropicClientGenerateInference(t *testing.T) {
	var got anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []content{{Type: "text", Text: `{"city_name":"Paris","confidence":0.95}`}},
		})
	}))
	defer server.Close()

	client, err := NewAnthropicClient("test-key", "claude-3-haiku")
	require.NoError(t, err)
	client.url = server.URL
	assert.Equal(t, Capability(0), client.Capabilities())

	var result string
	err = client.GenerateInference(context.Background(),
		[]Message{{Role: "user", Content: "Visiting Paris"}},
		func(chunk string) error {
			result = chunk
			return nil
		},
		WithSystemPrompt("extract the city"),
		WithJSONMode(),
		WithMaxTokens(256),
	)

	require.NoError(t, err)
	assert.JSONEq(t, `{"city_name":"Paris","confidence":0.95}`, result)
	assert.Equal(t, 256, got.MaxTokens)
	assert.Contains(t, got.System, "extract the city")
	assert.Contains(t, got.System, "JSON object")
	require.Len(t, got.Messages, 1)
}

func TestAnthropicClientEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{})
	}))
	defer server.Close()

	client, err := NewAnthropicClient("test-key", "claude-3-haiku")
	require.NoError(t, err)
	client.url = server.URL

	err = client.GenerateInferenceWithTools(context.Background(), nil, func(string) error { return nil }, nil)
	assert.EqualError(t, err, "no content in response")
}
