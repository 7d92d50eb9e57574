package travelagent

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/MuaazSM/multimodal-travel-agent/metrics"
	"github.com/MuaazSM/multimodal-travel-agent/state"
)

func appendStage(name string) NodeFunc {
	return func(_ context.Context, st *state.ConversationState) {
		st.AddError(name)
	}
}

func TestGraphInvokeFollowsEdges(t *testing.T) {
	g := NewGraph().
		AddNode("a", "first", appendStage("a")).
		AddNode("b", "second", appendStage("b")).
		AddNode("c", "third", appendStage("c")).
		SetEntryPoint("a").
		AddConditionalEdge("a", func(st *state.ConversationState) string {
			if st.City == "skip" {
				return "c"
			}
			return "b"
		}, "b", "c").
		AddEdge("b", "c").
		AddEdge("c", END)

	reporter := &recordingReporter{}
	reg := prometheus.NewRegistry()
	runnable, err := g.Compile(RunOptions{Reporter: reporter, Metrics: metrics.New(reg)})
	require.NoError(t, err)

	st := state.New("t1")
	visited, err := runnable.Invoke(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, visited)
	assert.Equal(t, []string{"a", "b", "c"}, st.Errors)
	assert.Len(t, reporter.events, 6)
	assert.Equal(t, StageStarted, reporter.events[0].Status)
	assert.Equal(t, "first", reporter.events[0].Message)
	assert.Equal(t, StageCompleted, reporter.events[1].Status)
	count, err := testutil.GatherAndCount(reg, "travel_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	st = state.New("t2")
	st.City = "skip"
	visited, err = runnable.Invoke(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, visited)
}

func TestGraphCompileValidation(t *testing.T) {
	noop := func(context.Context, *state.ConversationState) {}

	tests := []struct {
		name  string
		build func() *Graph
		err   error
	}{
		{
			name:  "no entry point",
			build: func() *Graph { return NewGraph().AddNode("a", "", noop).AddEdge("a", END) },
			err:   ErrNoEntryPoint,
		},
		{
			name:  "unknown entry point",
			build: func() *Graph { return NewGraph().AddNode("a", "", noop).AddEdge("a", END).SetEntryPoint("x") },
			err:   ErrUnknownNode,
		},
		{
			name:  "edge to unknown node",
			build: func() *Graph { return NewGraph().AddNode("a", "", noop).AddEdge("a", "x").SetEntryPoint("a") },
			err:   ErrUnknownNode,
		},
		{
			name: "branch target unknown",
			build: func() *Graph {
				return NewGraph().AddNode("a", "", noop).SetEntryPoint("a").
					AddConditionalEdge("a", func(*state.ConversationState) string { return END }, END, "x")
			},
			err: ErrUnknownNode,
		},
		{
			name: "dead end",
			build: func() *Graph {
				return NewGraph().AddNode("a", "", noop).AddNode("b", "", noop).AddEdge("a", "b").SetEntryPoint("a")
			},
			err: ErrNoOutgoing,
		},
		{
			name: "duplicate node",
			build: func() *Graph {
				return NewGraph().AddNode("a", "", noop).AddNode("a", "", noop).AddEdge("a", END).SetEntryPoint("a")
			},
			err: ErrDuplicateNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Compile(RunOptions{})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestGraphBranchOutsideTargets(t *testing.T) {
	runnable, err := NewGraph().
		AddNode("a", "", appendStage("a")).
		SetEntryPoint("a").
		AddConditionalEdge("a", func(*state.ConversationState) string { return "elsewhere" }, END).
		Compile(RunOptions{})
	require.NoError(t, err)

	visited, err := runnable.Invoke(context.Background(), state.New("t1"))
	assert.ErrorIs(t, err, ErrUnknownNode)
	assert.Equal(t, []string{"a"}, visited)
}

func TestGraphMaxSteps(t *testing.T) {
	runnable, err := NewGraph().
		AddNode("loop", "", func(context.Context, *state.ConversationState) {}).
		SetEntryPoint("loop").
		AddEdge("loop", "loop").
		Compile(RunOptions{MaxSteps: 4})
	require.NoError(t, err)

	visited, err := runnable.Invoke(context.Background(), state.New("t1"))
	assert.ErrorIs(t, err, ErrMaxSteps)
	assert.Len(t, visited, 4)
}

func TestGraphStopsOnCancelledContext(t *testing.T) {
	runnable, err := NewGraph().
		AddNode("a", "", appendStage("a")).
		SetEntryPoint("a").
		AddEdge("a", END).
		Compile(RunOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	visited, err := runnable.Invoke(ctx, state.New("t1"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, visited)
}

func TestGraphRecordsStageSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	runnable, err := NewGraph().
		AddNode("resolve", "", func(_ context.Context, st *state.ConversationState) { st.City = "Paris" }).
		AddNode("fail", "", appendStage("upstream down")).
		SetEntryPoint("resolve").
		AddEdge("resolve", "fail").
		AddEdge("fail", END).
		Compile(RunOptions{TracerProvider: tp})
	require.NoError(t, err)

	_, err = runnable.Invoke(context.Background(), state.New("t1"))
	require.NoError(t, err)

	spans := exp.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "stage.resolve", spans[0].Name)
	assert.Equal(t, "stage.fail", spans[1].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String("thread.id", "t1"))
	assert.Contains(t, spans[0].Attributes, attribute.String("city", "Paris"))
	assert.Equal(t, codes.Error, spans[1].Status.Code)
	assert.Equal(t, "upstream down", spans[1].Status.Description)
}
