// Package tools holds the fixed set of external capabilities a turn can call:
// weather forecasts, destination images and web search.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MuaazSM/multimodal-travel-agent/state"
)

// ErrMissingAPIKey is returned by a provider whose credentials are not configured.
var ErrMissingAPIKey = errors.New("tools: api key is not set")

// DefaultTimeout bounds a single outbound call when the caller's context has no deadline.
const DefaultTimeout = 10 * time.Second

type WeatherProvider interface {
	// Forecast returns up to state.MaxForecastDays daily records in date order.
	// An unknown city yields an empty slice and no error.
	Forecast(ctx context.Context, city string) ([]state.DailyForecast, error)
}

type ImageProvider interface {
	Images(ctx context.Context, query string, limit int) ([]string, error)
}

type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// doJSON sends req and decodes a 200 response body into out.
func doJSON(client *http.Client, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}
	return nil
}

func clampLimit(limit, lo, hi int) int {
	return max(lo, min(limit, hi))
}
