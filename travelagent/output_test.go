package travelagent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MuaazSM/multimodal-travel-agent/state"
)

func TestNewTravelOutput(t *testing.T) {
	st := cityState("Tokyo")
	st.Route = state.RouteVector
	st.CitySummary = "Tokyo summary"
	st.WeatherForecast = []state.DailyForecast{
		{Date: "2026-10-16", TempMin: 12.04, TempMax: 19.96, TempAvg: 16, Description: "light rain"},
	}
	st.ImageURLs = []string{"https://img/1"}
	st.DateRange = "this weekend"
	st.SkipSummary = true

	out := NewTravelOutput(st)

	assert.Equal(t, []string{"2026-10-16: 12.0°C - 20.0°C (light rain)"}, out.WeatherForecast)
	assert.Equal(t, "vector", out.Route)
	assert.True(t, out.ContextPreserved)
	assert.Equal(t, windowWarning, out.WindowWarning)
	assert.Equal(t, "Context preserved: Using existing summary for Tokyo, only updating weather data", out.ContextNote())
}

func TestNewTravelOutputEmptyState(t *testing.T) {
	out := NewTravelOutput(&state.ConversationState{ThreadID: "t1"})

	assert.NotNil(t, out.WeatherForecast)
	assert.NotNil(t, out.ImageURLs)
	assert.NotNil(t, out.Errors)
	assert.Empty(t, out.WindowWarning)
	assert.Empty(t, out.ContextNote())
}

func TestRenderMarkdown(t *testing.T) {
	out := TravelOutput{
		City:             "Paris",
		CitySummary:      "Paris is the capital of France.",
		WeatherForecast:  []string{"2026-10-16: 10.0°C - 20.0°C (clear sky)"},
		ImageURLs:        []string{"https://img/1"},
		DateRange:        "tomorrow",
		Errors:           []string{"Images: quota exceeded"},
		ContextPreserved: true,
		WindowWarning:    windowWarning,
	}

	md := RenderMarkdown(out)

	assert.True(t, strings.HasPrefix(md, "## Paris\n\n"))
	assert.Contains(t, md, "_Context preserved: Using existing summary for Paris, only updating weather data_")
	assert.Contains(t, md, "### Weather (tomorrow)\n\n- 2026-10-16: 10.0°C - 20.0°C (clear sky)\n")
	assert.Contains(t, md, "> "+windowWarning)
	assert.Contains(t, md, "### Images\n\n- https://img/1\n")
	assert.Contains(t, md, "> **Warning:** Images: quota exceeded")
}

func TestRenderMarkdownWithoutCity(t *testing.T) {
	md := RenderMarkdown(TravelOutput{CitySummary: "fallback"})

	assert.True(t, strings.HasPrefix(md, "## Travel info\n\n"))
	assert.Contains(t, md, "No forecast available.")
	assert.NotContains(t, md, "### Images")
	assert.NotContains(t, md, "### Warnings")
}
