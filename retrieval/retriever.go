// Package retrieval finds knowledge base passages about a pre-indexed city.
package retrieval

import (
	"context"
	"errors"
	"strings"
)

// ErrNotConfigured is returned when no vector backend has been set up.
var ErrNotConfigured = errors.New("retrieval: vector backend is not configured")

type Retriever interface {
	// Retrieve returns up to k passages tagged with city, most relevant to query first.
	Retrieve(ctx context.Context, city, query string, k int) ([]string, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Disabled is the Retriever used when vector_backend is "none".
type Disabled struct{}

func (Disabled) Retrieve(context.Context, string, string, int) ([]string, error) {
	return nil, ErrNotConfigured
}

// CityTag is the normalized form of a city name stored alongside each passage.
func CityTag(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
