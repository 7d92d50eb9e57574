package travelagent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/MuaazSM/multimodal-travel-agent/llm"
	"github.com/MuaazSM/multimodal-travel-agent/prompts"
)

const extractCityTool = "extract_city"

var errNoExtraction = errors.New("model returned no city extraction")

// CityExtraction is the structured reading of a travel query.
type CityExtraction struct {
	CityName            string  `json:"city_name"`
	Confidence          float64 `json:"confidence"`
	DateReference       string  `json:"date_reference,omitempty"`
	OriginalCityMention string  `json:"original_city_mention,omitempty"`
}

type CityExtractor interface {
	Extract(ctx context.Context, query string) (CityExtraction, error)
}

// LLMCityExtractor asks a language model for the city. Clients with native
// tool calling answer through the extract_city tool, others through JSON.
type LLMCityExtractor struct {
	client llm.LLMClient
}

func NewLLMCityExtractor(client llm.LLMClient) *LLMCityExtractor {
	return &LLMCityExtractor{client: client}
}

func extractCityToolSpec() api.Tool {
	return llm.NewToolBuilder(extractCityTool, "Record the destination city mentioned in a travel query").
		StringParam("city_name", "Canonical English city name, e.g. New York for NYC", true).
		NumberParam("confidence", "Confidence between 0 and 1 that a city is clearly mentioned", true).
		StringParam("date_reference", "Any date or time reference in the query, e.g. next week", false).
		StringParam("original_city_mention", "The exact text that mentioned the city", false).
		Build()
}

func (e *LLMCityExtractor) Extract(ctx context.Context, query string) (CityExtraction, error) {
	native := e.client.Capabilities()&llm.NativeToolCalling != 0

	systemPrompt, userPrompt, err := prompts.RenderParseQueryPrompt(query, !native)
	if err != nil {
		return CityExtraction{}, fmt.Errorf("failed to render parse query prompt: %w", err)
	}

	messages := []llm.Message{{Role: "user", Content: userPrompt}}
	opts := []llm.LLMOption{
		llm.WithSystemPrompt(systemPrompt),
		llm.WithTemperature(0),
		llm.WithMaxTokens(256),
	}

	var content strings.Builder
	var found *CityExtraction

	if native {
		err = e.client.GenerateInferenceWithTools(ctx, messages,
			func(chunk string) error {
				content.WriteString(chunk)
				return nil
			},
			func(calls []api.ToolCall) error {
				for _, call := range calls {
					if call.Function.Name == extractCityTool {
						ex := extractionFromArgs(call.Function.Arguments)
						found = &ex
						return nil
					}
				}
				return nil
			},
			append(opts, llm.WithTools([]api.Tool{extractCityToolSpec()}))...,
		)
	} else {
		err = e.client.GenerateInference(ctx, messages,
			func(chunk string) error {
				content.WriteString(chunk)
				return nil
			},
			append(opts, llm.WithJSONMode())...,
		)
	}
	if err != nil {
		return CityExtraction{}, fmt.Errorf("city extraction: %w", err)
	}

	if found == nil {
		ex, err := parseExtractionJSON(content.String())
		if err != nil {
			return CityExtraction{}, err
		}
		found = &ex
	}

	return normalizeExtraction(*found), nil
}

func extractionFromArgs(args api.ToolCallFunctionArguments) CityExtraction {
	ex := CityExtraction{
		CityName:            stringArg(args, "city_name"),
		DateReference:       stringArg(args, "date_reference"),
		OriginalCityMention: stringArg(args, "original_city_mention"),
	}
	switch v := args["confidence"].(type) {
	case float64:
		ex.Confidence = v
	case int:
		ex.Confidence = float64(v)
	case string:
		fmt.Sscanf(v, "%g", &ex.Confidence)
	}
	return ex
}

func stringArg(args api.ToolCallFunctionArguments, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

// parseExtractionJSON reads the first {...} object in the model output.
func parseExtractionJSON(s string) (CityExtraction, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return CityExtraction{}, errNoExtraction
	}

	var ex CityExtraction
	if err := json.Unmarshal([]byte(s[start:end+1]), &ex); err != nil {
		return CityExtraction{}, fmt.Errorf("parse city extraction: %w", err)
	}
	return ex, nil
}

func normalizeExtraction(ex CityExtraction) CityExtraction {
	ex.CityName = strings.TrimSpace(ex.CityName)
	ex.DateReference = strings.TrimSpace(ex.DateReference)
	if strings.EqualFold(ex.DateReference, "null") || strings.EqualFold(ex.DateReference, "none") {
		ex.DateReference = ""
	}
	ex.Confidence = max(0, min(ex.Confidence, 1))
	if ex.CityName == "" {
		ex.Confidence = 0
	}
	return ex
}
