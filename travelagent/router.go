package travelagent

import (
	"strings"

	"github.com/MuaazSM/multimodal-travel-agent/state"
)

// Label is the routing decision taken after parsing.
type Label string

const (
	LabelVector Label = "vector"
	LabelWeb    Label = "web"
	LabelSkip   Label = "skip"
)

// preIndexedCities are the cities ingested into the vector store.
var preIndexedCities = map[string]struct{}{
	"paris":    {},
	"tokyo":    {},
	"new york": {},
}

// IsPreIndexed reports whether city has content in the vector store.
func IsPreIndexed(city string) bool {
	_, ok := preIndexedCities[strings.ToLower(strings.TrimSpace(city))]
	return ok
}

// Route picks the retrieval strategy. It reads only City and SkipSummary.
func Route(st *state.ConversationState) Label {
	switch {
	case st.SkipSummary:
		return LabelSkip
	case !st.HasCity():
		return LabelWeb
	case IsPreIndexed(st.City):
		return LabelVector
	default:
		return LabelWeb
	}
}

func (l Label) route() state.Route {
	switch l {
	case LabelVector:
		return state.RouteVector
	case LabelWeb:
		return state.RouteWeb
	default:
		return state.RouteNone
	}
}
