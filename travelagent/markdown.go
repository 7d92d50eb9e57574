package travelagent

import (
	"strings"
)

// RenderMarkdown formats a turn for chat clients: summary, forecast table, images, then warnings.
func RenderMarkdown(out TravelOutput) string {
	var b strings.Builder

	title := strings.TrimSpace(out.City)
	if title == "" {
		title = "Travel info"
	}
	b.WriteString("## ")
	b.WriteString(title)
	b.WriteString("\n\n")

	if note := out.ContextNote(); note != "" {
		b.WriteString("_")
		b.WriteString(note)
		b.WriteString("_\n\n")
	}

	if summary := strings.TrimSpace(out.CitySummary); summary != "" {
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	b.WriteString("### Weather")
	if out.DateRange != "" {
		b.WriteString(" (")
		b.WriteString(out.DateRange)
		b.WriteString(")")
	}
	b.WriteString("\n\n")
	if len(out.WeatherForecast) == 0 {
		b.WriteString("No forecast available.\n\n")
	} else {
		for _, day := range out.WeatherForecast {
			b.WriteString("- ")
			b.WriteString(day)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if out.WindowWarning != "" {
		b.WriteString("> ")
		b.WriteString(out.WindowWarning)
		b.WriteString("\n\n")
	}

	if len(out.ImageURLs) > 0 {
		b.WriteString("### Images\n\n")
		for _, u := range out.ImageURLs {
			b.WriteString("- ")
			b.WriteString(u)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(out.Errors) > 0 {
		b.WriteString("### Warnings\n\n")
		for _, e := range out.Errors {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			b.WriteString("> **Warning:** ")
			b.WriteString(e)
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
