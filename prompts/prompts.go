package prompts

import (
	"bytes"
	"embed"
	"strings"
	"text/template"
)

//go:embed templates/*
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.md"))

// RenderParseQueryPrompt renders the city extraction prompts. jsonMode selects the
// plain JSON answer format used by providers without native tool calling.
func RenderParseQueryPrompt(query string, jsonMode bool) (systemPrompt, userPrompt string, err error) {
	data := struct {
		Query string
		JSON  bool
	}{
		Query: query,
		JSON:  jsonMode,
	}

	systemPrompt, err = render("parse_query_system.md", data)
	if err != nil {
		return "", "", err
	}

	userPrompt, err = render("parse_query_user.md", data)
	if err != nil {
		return "", "", err
	}

	return systemPrompt, userPrompt, nil
}

// RenderVectorSummaryPrompt renders the summarization prompt over knowledge base passages.
func RenderVectorSummaryPrompt(city, context string) (string, error) {
	return render("vector_summary.md", summaryData{City: city, Context: context})
}

// RenderWebSummaryPrompt renders the summarization prompt over numbered web search sources.
func RenderWebSummaryPrompt(city, context string) (string, error) {
	return render("web_summary.md", summaryData{City: city, Context: context})
}

type summaryData struct {
	City    string
	Context string
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
