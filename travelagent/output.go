package travelagent

import (
	"context"
	"fmt"
	"slices"

	"github.com/SaiNageswarS/go-collection-boot/linq"

	"github.com/MuaazSM/multimodal-travel-agent/state"
)

const windowWarning = "Weather provider returns about 5 days of forecast; your request may extend beyond available data. Showing available days."

// TravelOutput is the presentation view of a finished turn.
type TravelOutput struct {
	ThreadID         string   `json:"thread_id"`
	City             string   `json:"city,omitempty"`
	Route            string   `json:"route,omitempty"`
	CitySummary      string   `json:"city_summary"`
	WeatherForecast  []string `json:"weather_forecast"`
	ImageURLs        []string `json:"image_urls"`
	DateRange        string   `json:"date_range,omitempty"`
	Errors           []string `json:"errors"`
	ContextPreserved bool     `json:"context_preserved"`
	WindowWarning    string   `json:"window_warning,omitempty"`
}

func NewTravelOutput(st *state.ConversationState) TravelOutput {
	forecast, _ := linq.Pipe2(
		linq.FromSlice(context.Background(), st.WeatherForecast),
		linq.Select(FormatForecastDay),
		linq.ToSlice[string](),
	)

	out := TravelOutput{
		ThreadID:         st.ThreadID,
		City:             st.City,
		Route:            string(st.Route),
		CitySummary:      st.CitySummary,
		WeatherForecast:  forecast,
		ImageURLs:        slices.Clone(st.ImageURLs),
		DateRange:        st.DateRange,
		Errors:           slices.Clone(st.Errors),
		ContextPreserved: st.SkipSummary,
	}
	if out.WeatherForecast == nil {
		out.WeatherForecast = []string{}
	}
	if out.ImageURLs == nil {
		out.ImageURLs = []string{}
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	if st.DateRange != "" && len(st.WeatherForecast) < forecastWindowDays {
		out.WindowWarning = windowWarning
	}
	return out
}

// FormatForecastDay renders one day as "<date>: <min>°C - <max>°C (<description>)".
func FormatForecastDay(f state.DailyForecast) string {
	return fmt.Sprintf("%s: %.1f°C - %.1f°C (%s)", f.Date, f.TempMin, f.TempMax, f.Description)
}

// ContextNote explains a turn that reused the previous summary, or returns "".
func (o TravelOutput) ContextNote() string {
	if !o.ContextPreserved {
		return ""
	}
	return fmt.Sprintf("Context preserved: Using existing summary for %s, only updating weather data", o.City)
}
