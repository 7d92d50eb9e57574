package state

import (
	"slices"
	"strings"
	"time"
)

// Route is the retrieval strategy chosen for a turn.
type Route string

const (
	RouteNone   Route = ""
	RouteVector Route = "vector"
	RouteWeb    Route = "web"
)

// MaxForecastDays bounds the number of daily records a turn may carry.
const MaxForecastDays = 7

// DailyForecast is one calendar day of weather for the resolved city.
// Temperatures share a single unit (Celsius for the bundled provider).
type DailyForecast struct {
	Date        string  `json:"date" bson:"date"` // YYYY-MM-DD
	TempMin     float64 `json:"temp_min" bson:"tempMin"`
	TempMax     float64 `json:"temp_max" bson:"tempMax"`
	TempAvg     float64 `json:"temp_avg" bson:"tempAvg"`
	Description string  `json:"description" bson:"description"`
}

// Valid reports whether the record has an ISO date and temp_min <= temp_avg <= temp_max.
func (f DailyForecast) Valid() bool {
	if _, err := time.Parse(time.DateOnly, f.Date); err != nil {
		return false
	}
	return f.TempMin <= f.TempAvg && f.TempAvg <= f.TempMax
}

// TurnRecord summarizes one finished turn of a thread.
type TurnRecord struct {
	Query        string    `json:"query" bson:"query"`
	City         string    `json:"city,omitempty" bson:"city,omitempty"`
	DateRange    string    `json:"date_range,omitempty" bson:"dateRange,omitempty"`
	Route        Route     `json:"route,omitempty" bson:"route,omitempty"`
	WeatherCount int       `json:"weather_count" bson:"weatherCount"`
	ImageCount   int       `json:"image_count" bson:"imageCount"`
	At           time.Time `json:"at" bson:"at"`
}

// ConversationState is the record threaded through every stage of a turn and
// persisted per thread between turns. An empty string means "unset" for the
// optional text fields.
type ConversationState struct {
	ThreadID        string          `json:"thread_id" bson:"threadId"`
	UserQuery       string          `json:"user_query" bson:"userQuery"`
	City            string          `json:"city,omitempty" bson:"city,omitempty"`
	PreviousCity    string          `json:"previous_city,omitempty" bson:"previousCity,omitempty"`
	DateRange       string          `json:"date_range,omitempty" bson:"dateRange,omitempty"`
	Route           Route           `json:"route,omitempty" bson:"route,omitempty"`
	CitySummary     string          `json:"city_summary,omitempty" bson:"citySummary,omitempty"`
	WeatherForecast []DailyForecast `json:"weather_forecast" bson:"weatherForecast"`
	ImageURLs       []string        `json:"image_urls" bson:"imageUrls"`
	Errors          []string        `json:"errors" bson:"errors"`
	SkipSummary     bool            `json:"skip_summary" bson:"skipSummary"`
	SkipImages      bool            `json:"skip_images" bson:"skipImages"`
	History         []TurnRecord    `json:"history,omitempty" bson:"history,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at" bson:"updatedAt"`
}

// New returns the empty state of a thread that has never run a turn.
func New(threadID string) *ConversationState {
	return &ConversationState{
		ThreadID:        threadID,
		WeatherForecast: []DailyForecast{},
		ImageURLs:       []string{},
		Errors:          []string{},
	}
}

// BeginTurn installs the query of a new turn and clears the per-turn diagnostics.
func (s *ConversationState) BeginTurn(query string) {
	s.UserQuery = query
	s.Errors = []string{}
	s.Route = RouteNone
}

// HasCity reports whether a city is resolved for the current turn.
func (s *ConversationState) HasCity() bool {
	return strings.TrimSpace(s.City) != ""
}

// AddError appends a non-fatal diagnostic for the current turn.
func (s *ConversationState) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// AddErrorOnce appends msg unless the turn already carries it.
func (s *ConversationState) AddErrorOnce(msg string) {
	if slices.Contains(s.Errors, msg) {
		return
	}
	s.Errors = append(s.Errors, msg)
}

// RecordTurn appends the finished turn to the history, keeping at most maxTurns entries.
func (s *ConversationState) RecordTurn(at time.Time, maxTurns int) {
	s.History = append(s.History, TurnRecord{
		Query:        s.UserQuery,
		City:         s.City,
		DateRange:    s.DateRange,
		Route:        s.Route,
		WeatherCount: len(s.WeatherForecast),
		ImageCount:   len(s.ImageURLs),
		At:           at,
	})
	s.UpdatedAt = at

	if maxTurns <= 0 {
		s.History = nil
		return
	}
	if over := len(s.History) - maxTurns; over > 0 {
		s.History = slices.Clone(s.History[over:])
	}
}

// Clone returns a deep copy, so stores never share slices with a running turn.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	c := *s
	c.WeatherForecast = slices.Clone(s.WeatherForecast)
	c.ImageURLs = slices.Clone(s.ImageURLs)
	c.Errors = slices.Clone(s.Errors)
	c.History = slices.Clone(s.History)
	return &c
}
