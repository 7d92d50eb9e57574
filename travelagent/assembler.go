package travelagent

import (
	"context"
	"fmt"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/state"
)

const (
	msgMissingCity    = "Final: city is missing from state"
	msgMissingSummary = "Final: missing city summary; using a default message"
	msgNoWeather      = "Final: weather data unavailable; showing no forecast"
	msgNoImages       = "Final: no images found; showing an empty list"
)

// Assembler normalizes the finished state so every field is renderable.
// It makes no external calls and applying it twice changes nothing further.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

func (a *Assembler) Run(_ context.Context, st *state.ConversationState) {
	st.PreviousCity = st.City

	if !st.HasCity() {
		st.AddErrorOnce(msgMissingCity)
	}

	if strings.TrimSpace(st.CitySummary) == "" {
		label := st.City
		if !st.HasCity() {
			label = "the city"
		}
		st.CitySummary = fmt.Sprintf("Summary for %s isn't available right now. Key highlights: weather shown below; images provided.", label)
		st.AddErrorOnce(msgMissingSummary)
	}

	st.WeatherForecast = sanitizeForecast(st.WeatherForecast)
	if len(st.WeatherForecast) == 0 {
		st.AddErrorOnce(msgNoWeather)
	}

	if st.ImageURLs == nil {
		st.ImageURLs = []string{}
	}
	if len(st.ImageURLs) == 0 {
		st.AddErrorOnce(msgNoImages)
	}

	if st.Errors == nil {
		st.Errors = []string{}
	}

	logger.Info("Turn assembled",
		zap.String("threadId", st.ThreadID),
		zap.String("city", st.City),
		zap.Int("errors", len(st.Errors)))
}
