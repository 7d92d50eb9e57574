package tools

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/state"
)

const openWeatherURL = "https://api.openweathermap.org"

// OpenWeatherClient geocodes a city name and aggregates the 5 day / 3 hour
// forecast into daily records.
type OpenWeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenWeatherClient(apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:     apiKey,
		baseURL:    openWeatherURL,
		httpClient: newHTTPClient(),
	}
}

func (c *OpenWeatherClient) Forecast(ctx context.Context, city string) ([]state.DailyForecast, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather: %w", ErrMissingAPIKey)
	}

	loc, found, err := c.geocode(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("openweather geocode: %w", err)
	}
	if !found {
		logger.Info("City could not be geocoded", zap.String("city", city))
		return []state.DailyForecast{}, nil
	}

	var resp owmForecastResponse
	params := url.Values{
		"lat":   {strconv.FormatFloat(loc.Lat, 'f', -1, 64)},
		"lon":   {strconv.FormatFloat(loc.Lon, 'f', -1, 64)},
		"units": {"metric"},
		"appid": {c.apiKey},
	}
	if err := c.get(ctx, "/data/2.5/forecast", params, &resp); err != nil {
		return nil, fmt.Errorf("openweather forecast: %w", err)
	}

	return aggregateDaily(resp.List, time.Duration(resp.City.Timezone)*time.Second), nil
}

func (c *OpenWeatherClient) geocode(ctx context.Context, city string) (owmLocation, bool, error) {
	var locations []owmLocation
	params := url.Values{
		"q":     {city},
		"limit": {"1"},
		"appid": {c.apiKey},
	}
	if err := c.get(ctx, "/geo/1.0/direct", params, &locations); err != nil {
		return owmLocation{}, false, err
	}
	if len(locations) == 0 {
		return owmLocation{}, false, nil
	}
	return locations[0], true, nil
}

func (c *OpenWeatherClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	return doJSON(c.httpClient, req, out)
}

type dayBucket struct {
	date         string
	temps        []float64
	mins         []float64
	maxs         []float64
	descriptions []string
}

// aggregateDaily groups 3-hourly entries by calendar day at the given UTC offset.
func aggregateDaily(entries []owmForecastEntry, offset time.Duration) []state.DailyForecast {
	zone := time.FixedZone("city", int(offset.Seconds()))
	buckets := make(map[string]*dayBucket)

	for _, e := range entries {
		date := time.Unix(e.Dt, 0).In(zone).Format(time.DateOnly)
		b, ok := buckets[date]
		if !ok {
			b = &dayBucket{date: date}
			buckets[date] = b
		}

		b.temps = append(b.temps, e.Main.Temp)
		b.mins = append(b.mins, e.Main.TempMin)
		b.maxs = append(b.maxs, e.Main.TempMax)
		desc := ""
		if len(e.Weather) > 0 {
			desc = e.Weather[0].Description
		}
		b.descriptions = append(b.descriptions, desc)
	}

	dates := make([]string, 0, len(buckets))
	for d := range buckets {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	if len(dates) > state.MaxForecastDays {
		dates = dates[:state.MaxForecastDays]
	}

	out := make([]state.DailyForecast, 0, len(dates))
	for _, d := range dates {
		b := buckets[d]
		out = append(out, state.DailyForecast{
			Date:        b.date,
			TempMin:     round1(slices.Min(b.mins)),
			TempMax:     round1(slices.Max(b.maxs)),
			TempAvg:     round1(mean(b.temps)),
			Description: mostFrequent(b.descriptions),
		})
	}
	return out
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// mostFrequent breaks ties in favour of the value seen first.
func mostFrequent(values []string) string {
	counts := make(map[string]int, len(values))
	best, bestCount := "", 0
	for _, v := range values {
		counts[v]++
	}
	for _, v := range values {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best
}

type owmLocation struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

type owmForecastResponse struct {
	List []owmForecastEntry `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

type owmForecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}
