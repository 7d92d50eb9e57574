package travelagent

import (
	"context"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"

	"github.com/MuaazSM/multimodal-travel-agent/metrics"
	"github.com/MuaazSM/multimodal-travel-agent/state"
)

// MinCityConfidence is the extraction confidence at which a new city is accepted.
const MinCityConfidence = 0.5

const msgNoCity = "Could not identify a city in your query"

// QueryParser resolves the city of a turn and decides whether the previous
// turn's summary and images can be reused.
type QueryParser struct {
	extractor CityExtractor
	metrics   *metrics.Metrics
}

func NewQueryParser(extractor CityExtractor, m *metrics.Metrics) *QueryParser {
	return &QueryParser{extractor: extractor, metrics: m}
}

func (p *QueryParser) Run(ctx context.Context, st *state.ConversationState) {
	ex, err := p.extractor.Extract(ctx, st.UserQuery)
	if err != nil {
		logger.Error("City extraction failed",
			zap.String("threadId", st.ThreadID),
			zap.String("source", "extraction"),
			zap.Error(err))
		p.metrics.UpstreamFailure("extraction")
		ex = CityExtraction{}
	}

	if ex.Confidence >= MinCityConfidence {
		sameCity := st.PreviousCity != "" && strings.EqualFold(st.PreviousCity, ex.CityName)
		st.SkipSummary = sameCity
		st.SkipImages = sameCity

		st.PreviousCity = st.City
		st.City = ex.CityName
		st.DateRange = ex.DateReference

		logger.Info("City resolved",
			zap.String("threadId", st.ThreadID),
			zap.String("city", st.City),
			zap.Float64("confidence", ex.Confidence),
			zap.Bool("contextPreserved", sameCity))
		return
	}

	if st.HasCity() {
		st.SkipSummary = true
		st.SkipImages = true
		logger.Info("Low confidence extraction, continuing with previous city",
			zap.String("threadId", st.ThreadID),
			zap.String("city", st.City),
			zap.Float64("confidence", ex.Confidence))
	} else {
		st.City = ""
		st.SkipSummary = false
		st.SkipImages = false
		st.AddError(msgNoCity)
		logger.Info("No city identified", zap.String("threadId", st.ThreadID), zap.String("query", st.UserQuery))
	}
	st.DateRange = ex.DateReference
}
