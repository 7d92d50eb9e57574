package travelagent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MuaazSM/multimodal-travel-agent/state"
)

func TestQueryParser(t *testing.T) {
	tests := []struct {
		name         string
		before       func() *state.ConversationState
		extraction   CityExtraction
		city         string
		previousCity string
		dateRange    string
		skip         bool
		errors       []string
	}{
		{
			name:       "new thread resolves city",
			before:     func() *state.ConversationState { return state.New("t1") },
			extraction: CityExtraction{CityName: "Paris", Confidence: 0.95},
			city:       "Paris",
			errors:     []string{},
		},
		{
			name: "same city follow-up preserves context",
			before: func() *state.ConversationState {
				st := state.New("t1")
				st.City = "Tokyo"
				st.PreviousCity = "Tokyo"
				return st
			},
			extraction:   CityExtraction{CityName: "tokyo", Confidence: 0.9, DateReference: "tomorrow"},
			city:         "tokyo",
			previousCity: "Tokyo",
			dateRange:    "tomorrow",
			skip:         true,
			errors:       []string{},
		},
		{
			name: "different city resets skip flags",
			before: func() *state.ConversationState {
				st := state.New("t1")
				st.City = "Tokyo"
				st.PreviousCity = "Tokyo"
				st.SkipSummary = true
				st.SkipImages = true
				return st
			},
			extraction:   CityExtraction{CityName: "Paris", Confidence: 0.9},
			city:         "Paris",
			previousCity: "Tokyo",
			errors:       []string{},
		},
		{
			name: "low confidence keeps previous city",
			before: func() *state.ConversationState {
				st := state.New("t1")
				st.City = "Tokyo"
				st.PreviousCity = "Tokyo"
				return st
			},
			extraction:   CityExtraction{Confidence: 0.1, DateReference: "this weekend"},
			city:         "Tokyo",
			previousCity: "Tokyo",
			dateRange:    "this weekend",
			skip:         true,
			errors:       []string{},
		},
		{
			name:       "low confidence without prior city",
			before:     func() *state.ConversationState { return state.New("t1") },
			extraction: CityExtraction{CityName: "asdkjasd", Confidence: 0.2},
			city:       "",
			errors:     []string{msgNoCity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.before()
			st.BeginTurn("query")
			extractor := &fakeExtractor{byQuery: map[string]CityExtraction{"query": tt.extraction}}

			NewQueryParser(extractor, nil).Run(context.Background(), st)

			assert.Equal(t, tt.city, st.City)
			assert.Equal(t, tt.previousCity, st.PreviousCity)
			assert.Equal(t, tt.dateRange, st.DateRange)
			assert.Equal(t, tt.skip, st.SkipSummary)
			assert.Equal(t, tt.skip, st.SkipImages)
			assert.Equal(t, tt.errors, st.Errors)
		})
	}
}

func TestQueryParserExtractionFailureIsLowConfidence(t *testing.T) {
	st := state.New("t1")
	st.BeginTurn("hello")

	NewQueryParser(&fakeExtractor{err: errors.New("model offline")}, nil).Run(context.Background(), st)

	assert.False(t, st.HasCity())
	assert.Equal(t, []string{msgNoCity}, st.Errors)
}
