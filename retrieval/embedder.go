package retrieval

import (
	"context"
	"fmt"

	"github.com/ollama/ollama/api"
)

type ollamaEmbedClient interface {
	Embed(ctx context.Context, req *api.EmbedRequest) (*api.EmbedResponse, error)
}

// OllamaEmbedder computes query embeddings with a local Ollama embedding model.
type OllamaEmbedder struct {
	client ollamaEmbedClient
	model  string
}

func NewOllamaEmbedder(client *api.Client, model string) *OllamaEmbedder {
	return &OllamaEmbedder{client: client, model: model}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("embed with %s: %w", e.model, err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embed with %s: empty embedding", e.model)
	}
	return resp.Embeddings[0], nil
}
