package llm

import (
	"slices"

	"github.com/ollama/ollama/api"
)

// ToolBuilder assembles the JSON schema of a function tool.
type ToolBuilder struct {
	tool api.Tool
}

func NewToolBuilder(name, description string) *ToolBuilder {
	b := &ToolBuilder{
		tool: api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        name,
				Description: description,
			},
		},
	}

	b.tool.Function.Parameters.Type = "object"
	b.tool.Function.Parameters.Properties = make(map[string]api.ToolProperty, 4)
	return b
}

func (b *ToolBuilder) StringParam(name, desc string, required bool) *ToolBuilder {
	b.setProp(name, api.ToolProperty{
		Type:        api.PropertyType{"string"},
		Description: desc,
	}, required)
	return b
}

func (b *ToolBuilder) NumberParam(name, desc string, required bool) *ToolBuilder {
	b.setProp(name, api.ToolProperty{
		Type:        api.PropertyType{"number"},
		Description: desc,
	}, required)
	return b
}

func (b *ToolBuilder) Build() api.Tool {
	return b.tool
}

func (b *ToolBuilder) setProp(name string, p api.ToolProperty, required bool) {
	b.tool.Function.Parameters.Properties[name] = p
	if required && !slices.Contains(b.tool.Function.Parameters.Required, name) {
		b.tool.Function.Parameters.Required = append(b.tool.Function.Parameters.Required, name)
	}
}
