package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	unsplashURL = "https://api.unsplash.com"
	pexelsURL   = "https://api.pexels.com"

	maxImages = 15
)

// NewImageProvider prefers Unsplash when its key is set and falls back to Pexels.
// Without either key the returned provider fails every call with ErrMissingAPIKey.
func NewImageProvider(unsplashKey, pexelsKey string) ImageProvider {
	switch {
	case unsplashKey != "":
		return NewUnsplashClient(unsplashKey)
	case pexelsKey != "":
		return NewPexelsClient(pexelsKey)
	default:
		return unconfiguredImages{}
	}
}

type unconfiguredImages struct{}

func (unconfiguredImages) Images(context.Context, string, int) ([]string, error) {
	return nil, fmt.Errorf("images: set UNSPLASH-API-KEY or PEXELS-API-KEY: %w", ErrMissingAPIKey)
}

type UnsplashClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewUnsplashClient(apiKey string) *UnsplashClient {
	return &UnsplashClient{apiKey: apiKey, baseURL: unsplashURL, httpClient: newHTTPClient()}
}

// Images returns landscape photo URLs, skipping portrait and square results.
func (c *UnsplashClient) Images(ctx context.Context, query string, limit int) ([]string, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("unsplash: %w", ErrMissingAPIKey)
	}

	params := url.Values{
		"query":       {query},
		"per_page":    {strconv.Itoa(clampLimit(limit, 1, maxImages))},
		"orientation": {"landscape"},
		"order_by":    {"relevant"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("unsplash: error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.apiKey)

	var resp unsplashSearchResponse
	if err := doJSON(c.httpClient, req, &resp); err != nil {
		return nil, fmt.Errorf("unsplash: %w", err)
	}

	urls := make([]string, 0, len(resp.Results))
	for _, item := range resp.Results {
		if item.Width > 0 && item.Height > 0 && item.Width <= item.Height {
			continue
		}
		if u := firstNonEmpty(item.URLs.Regular, item.URLs.Full, item.URLs.Small); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

type PexelsClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewPexelsClient(apiKey string) *PexelsClient {
	return &PexelsClient{apiKey: apiKey, baseURL: pexelsURL, httpClient: newHTTPClient()}
}

func (c *PexelsClient) Images(ctx context.Context, query string, limit int) ([]string, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("pexels: %w", ErrMissingAPIKey)
	}

	params := url.Values{
		"query":       {query},
		"per_page":    {strconv.Itoa(clampLimit(limit, 1, maxImages))},
		"orientation": {"landscape"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pexels: error creating request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	var resp pexelsSearchResponse
	if err := doJSON(c.httpClient, req, &resp); err != nil {
		return nil, fmt.Errorf("pexels: %w", err)
	}

	urls := make([]string, 0, len(resp.Photos))
	for _, p := range resp.Photos {
		if u := firstNonEmpty(p.Src.Landscape, p.Src.Large, p.Src.Original); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type unsplashSearchResponse struct {
	Results []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
		URLs   struct {
			Full    string `json:"full"`
			Regular string `json:"regular"`
			Small   string `json:"small"`
		} `json:"urls"`
	} `json:"results"`
}

type pexelsSearchResponse struct {
	Photos []struct {
		Src struct {
			Original  string `json:"original"`
			Large     string `json:"large"`
			Landscape string `json:"landscape"`
		} `json:"src"`
	} `json:"photos"`
}
