package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forecastEntry(at time.Time, temp, lo, hi float64, desc string) map[string]any {
	return map[string]any{
		"dt":      at.Unix(),
		"main":    map[string]any{"temp": temp, "temp_min": lo, "temp_max": hi},
		"weather": []map[string]any{{"description": desc}},
	}
}

func newWeatherServer(t *testing.T, geocode []map[string]any, entries []map[string]any, tz int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		switch r.URL.Path {
		case "/geo/1.0/direct":
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			json.NewEncoder(w).Encode(geocode)
		case "/data/2.5/forecast":
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			assert.Equal(t, "48.8566", r.URL.Query().Get("lat"))
			json.NewEncoder(w).Encode(map[string]any{
				"list": entries,
				"city": map[string]any{"name": "Paris", "timezone": tz},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestOpenWeatherForecast(t *testing.T) {
	day1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	entries := []map[string]any{
		forecastEntry(day1, 14.0, 12.04, 15.0, "light rain"),
		forecastEntry(day1.Add(3*time.Hour), 18.0, 16.0, 19.96, "clear sky"),
		forecastEntry(day1.Add(6*time.Hour), 16.0, 15.0, 17.0, "clear sky"),
		forecastEntry(day2, 20.0, 19.0, 21.0, "few clouds"),
	}

	server := newWeatherServer(t, []map[string]any{{"name": "Paris", "lat": 48.8566, "lon": 2.3522}}, entries, 0)
	defer server.Close()

	client := NewOpenWeatherClient("test-key")
	client.baseURL = server.URL

	days, err := client.Forecast(context.Background(), "Paris")
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, "2026-05-01", days[0].Date)
	assert.Equal(t, 12.0, days[0].TempMin)
	assert.Equal(t, 20.0, days[0].TempMax)
	assert.Equal(t, 16.0, days[0].TempAvg)
	assert.Equal(t, "clear sky", days[0].Description)
	assert.Equal(t, "2026-05-02", days[1].Date)

	for _, d := range days {
		assert.True(t, d.Valid(), "invalid record %+v", d)
	}
}

func TestOpenWeatherUnknownCity(t *testing.T) {
	server := newWeatherServer(t, []map[string]any{}, nil, 0)
	defer server.Close()

	client := NewOpenWeatherClient("test-key")
	client.baseURL = server.URL

	days, err := client.Forecast(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, days)
	assert.NotNil(t, days)
}

func TestOpenWeatherMissingKey(t *testing.T) {
	_, err := NewOpenWeatherClient("").Forecast(context.Background(), "Paris")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestOpenWeatherUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewOpenWeatherClient("test-key")
	client.baseURL = server.URL

	_, err := client.Forecast(context.Background(), "Paris")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestAggregateDaily(t *testing.T) {
	t.Run("groups by local day using the city offset", func(t *testing.T) {
		// 23:00 UTC is already the next day in Tokyo (UTC+9).
		at := time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC)
		var entries []owmForecastEntry
		require.NoError(t, json.Unmarshal(mustJSON(t, []map[string]any{
			forecastEntry(at, 10, 9, 11, "mist"),
		}), &entries))

		days := aggregateDaily(entries, 9*time.Hour)
		require.Len(t, days, 1)
		assert.Equal(t, "2026-05-02", days[0].Date)
	})

	t.Run("keeps at most seven days in date order", func(t *testing.T) {
		start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		var raw []map[string]any
		for i := 9; i >= 0; i-- {
			raw = append(raw, forecastEntry(start.Add(time.Duration(i)*24*time.Hour), 10, 9, 11, "mist"))
		}
		var entries []owmForecastEntry
		require.NoError(t, json.Unmarshal(mustJSON(t, raw), &entries))

		days := aggregateDaily(entries, 0)
		require.Len(t, days, 7)
		assert.Equal(t, "2026-05-01", days[0].Date)
		assert.Equal(t, "2026-05-07", days[6].Date)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, aggregateDaily(nil, 0))
	})
}

func TestMostFrequent(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"majority", []string{"rain", "sun", "rain"}, "rain"},
		{"tie goes to first seen", []string{"sun", "rain", "rain", "sun"}, "sun"},
		{"single", []string{"mist"}, "mist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mostFrequent(tt.values))
		})
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
