package travelagent

import (
	"context"
	"fmt"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/metrics"
	"github.com/MuaazSM/multimodal-travel-agent/state"
	"github.com/MuaazSM/multimodal-travel-agent/tools"
)

const (
	imageLimit = 10
	// forecastWindowDays is roughly what the weather provider can see ahead.
	forecastWindowDays = 5
)

// Enricher fetches weather and images for the resolved city in parallel.
// Each branch returns its result to the join point, which is the only writer of state.
type Enricher struct {
	weather tools.WeatherProvider
	images  tools.ImageProvider
	timeout time.Duration
	metrics *metrics.Metrics
}

func NewEnricher(weather tools.WeatherProvider, images tools.ImageProvider, timeout time.Duration, m *metrics.Metrics) *Enricher {
	return &Enricher{weather: weather, images: images, timeout: timeout, metrics: m}
}

func (e *Enricher) Run(ctx context.Context, st *state.ConversationState) {
	if !st.HasCity() {
		st.AddError("Tool executor: no city to work with")
		return
	}
	city := st.City

	weatherTask := async.Go(func() ([]state.DailyForecast, error) {
		ctx, cancel := withTimeout(ctx, e.timeout)
		defer cancel()
		return e.weather.Forecast(ctx, city)
	})

	var imageTask <-chan async.Result[[]string]
	if !st.SkipImages {
		imageTask = async.Go(func() ([]string, error) {
			ctx, cancel := withTimeout(ctx, e.timeout)
			defer cancel()
			return e.images.Images(ctx, city, imageLimit)
		})
	}

	forecast, weatherErr := async.Await(weatherTask)
	e.applyWeather(st, forecast, weatherErr)

	if imageTask != nil {
		urls, imageErr := async.Await(imageTask)
		e.applyImages(st, urls, imageErr)
	}

	logger.Info("Enrichment finished",
		zap.String("threadId", st.ThreadID),
		zap.String("city", city),
		zap.Int("forecastDays", len(st.WeatherForecast)),
		zap.Int("images", len(st.ImageURLs)),
		zap.Bool("imagesSkipped", st.SkipImages))
}

func (e *Enricher) applyWeather(st *state.ConversationState, forecast []state.DailyForecast, err error) {
	if err != nil {
		logger.Error("Weather fetch failed",
			zap.String("threadId", st.ThreadID),
			zap.String("source", "weather"),
			zap.Error(err))
		e.metrics.UpstreamFailure("weather")
		st.WeatherForecast = []state.DailyForecast{}
		st.AddError(fmt.Sprintf("Weather error: %v", err))
		return
	}

	forecast = sanitizeForecast(forecast)
	if len(forecast) == 0 {
		e.metrics.UpstreamFailure("weather")
		st.WeatherForecast = []state.DailyForecast{}
		st.AddError(fmt.Sprintf("Weather data unavailable for %s", st.City))
		return
	}

	st.WeatherForecast = forecast
	if st.DateRange != "" && len(forecast) < forecastWindowDays {
		st.AddError(fmt.Sprintf("Weather API only provides ~5-day forecast; requested '%s' may extend beyond available data", st.DateRange))
	}
}

func (e *Enricher) applyImages(st *state.ConversationState, urls []string, err error) {
	if err != nil {
		logger.Error("Image fetch failed",
			zap.String("threadId", st.ThreadID),
			zap.String("source", "images"),
			zap.Error(err))
		e.metrics.UpstreamFailure("images")
		st.ImageURLs = []string{}
		st.AddError(fmt.Sprintf("Images: %v", err))
		return
	}

	if len(urls) == 0 {
		e.metrics.UpstreamFailure("images")
		st.ImageURLs = []string{}
		st.AddError(fmt.Sprintf("Images: no results for %s", st.City))
		return
	}
	st.ImageURLs = urls
}

// sanitizeForecast drops records that break the temperature ordering and caps the list.
func sanitizeForecast(in []state.DailyForecast) []state.DailyForecast {
	out := make([]state.DailyForecast, 0, min(len(in), state.MaxForecastDays))
	for _, f := range in {
		if len(out) == state.MaxForecastDays {
			break
		}
		if f.Valid() {
			out = append(out, f)
		}
	}
	return out
}
