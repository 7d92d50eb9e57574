package travelagent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MuaazSM/multimodal-travel-agent/metrics"
	"github.com/MuaazSM/multimodal-travel-agent/state"
)

// END is the terminal pseudo-node.
const END = "__end__"

const tracerName = "github.com/MuaazSM/multimodal-travel-agent/travelagent"

// defaultMaxSteps guards against cycles introduced by a bad edge.
const defaultMaxSteps = 32

// NodeFunc is a pipeline stage. Stages never fail; problems are recorded in st.Errors.
type NodeFunc func(ctx context.Context, st *state.ConversationState)

// BranchFunc picks the next node from the state left by a stage.
type BranchFunc func(st *state.ConversationState) string

var (
	ErrNoEntryPoint  = errors.New("graph: entry point is not set")
	ErrUnknownNode   = errors.New("graph: unknown node")
	ErrDuplicateNode = errors.New("graph: duplicate node")
	ErrNoOutgoing    = errors.New("graph: node has no outgoing edge")
	ErrMaxSteps      = errors.New("graph: step limit exceeded")
)

type node struct {
	name        string
	description string
	fn          NodeFunc
}

type branch struct {
	fn      BranchFunc
	targets map[string]struct{}
}

// Graph is a directed flow of named stages over a shared ConversationState.
type Graph struct {
	nodes    map[string]node
	order    []string
	edges    map[string]string
	branches map[string]branch
	entry    string
	errs     []error
}

func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]node),
		edges:    make(map[string]string),
		branches: make(map[string]branch),
	}
}

func (g *Graph) AddNode(name, description string, fn NodeFunc) *Graph {
	if _, ok := g.nodes[name]; ok || name == END {
		g.errs = append(g.errs, fmt.Errorf("%w: %s", ErrDuplicateNode, name))
		return g
	}
	g.nodes[name] = node{name: name, description: description, fn: fn}
	g.order = append(g.order, name)
	return g
}

func (g *Graph) SetEntryPoint(name string) *Graph {
	g.entry = name
	return g
}

func (g *Graph) AddEdge(from, to string) *Graph {
	g.edges[from] = to
	return g
}

// AddConditionalEdge routes from a node to whichever of targets fn names.
func (g *Graph) AddConditionalEdge(from string, fn BranchFunc, targets ...string) *Graph {
	b := branch{fn: fn, targets: make(map[string]struct{}, len(targets))}
	for _, t := range targets {
		b.targets[t] = struct{}{}
	}
	g.branches[from] = b
	return g
}

// RunOptions carries the observers of a compiled graph.
type RunOptions struct {
	Metrics  *metrics.Metrics
	Reporter ProgressReporter
	MaxSteps int
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Compile checks that every edge names a known node and every node can make progress.
func (g *Graph) Compile(opts RunOptions) (*Runnable, error) {
	if len(g.errs) > 0 {
		return nil, errors.Join(g.errs...)
	}
	if g.entry == "" {
		return nil, ErrNoEntryPoint
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("%w: entry %s", ErrUnknownNode, g.entry)
	}

	known := func(name string) bool {
		_, ok := g.nodes[name]
		return ok || name == END
	}

	for _, name := range g.order {
		to, hasEdge := g.edges[name]
		b, hasBranch := g.branches[name]
		if !hasEdge && !hasBranch {
			return nil, fmt.Errorf("%w: %s", ErrNoOutgoing, name)
		}
		if hasEdge && !known(to) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownNode, name, to)
		}
		for t := range b.targets {
			if !known(t) {
				return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownNode, name, t)
			}
		}
	}
	for from := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: edge from %s", ErrUnknownNode, from)
		}
	}
	for from := range g.branches {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: edge from %s", ErrUnknownNode, from)
		}
	}

	if opts.Reporter == nil {
		opts.Reporter = &NoOpProgressReporter{}
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = defaultMaxSteps
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	return &Runnable{
		graph:  g,
		opts:   opts,
		tracer: opts.TracerProvider.Tracer(tracerName),
	}, nil
}

// Runnable executes a compiled graph. It holds no per-turn data and is safe for concurrent use.
type Runnable struct {
	graph  *Graph
	opts   RunOptions
	tracer trace.Tracer
}

// Invoke walks the graph from its entry point until END, returning the visited node names.
func (r *Runnable) Invoke(ctx context.Context, st *state.ConversationState) ([]string, error) {
	visited := make([]string, 0, len(r.graph.order))
	current := r.graph.entry

	for step := 0; current != END; step++ {
		if step >= r.opts.MaxSteps {
			return visited, fmt.Errorf("%w: %d", ErrMaxSteps, r.opts.MaxSteps)
		}
		if err := ctx.Err(); err != nil {
			return visited, err
		}

		n := r.graph.nodes[current]
		r.runNode(ctx, n, st)
		visited = append(visited, n.name)

		next, err := r.next(n.name, st)
		if err != nil {
			return visited, err
		}
		current = next
	}
	return visited, nil
}

func (r *Runnable) runNode(ctx context.Context, n node, st *state.ConversationState) {
	ctx, span := r.tracer.Start(ctx, "stage."+n.name, trace.WithAttributes(
		attribute.String("thread.id", st.ThreadID),
	))
	defer span.End()

	r.report(NewStageStarted(st.ThreadID, n.name, n.description))
	start := time.Now()
	errorsBefore := len(st.Errors)

	n.fn(ctx, st)

	elapsed := time.Since(start)
	r.opts.Metrics.ObserveStage(n.name, elapsed)
	r.report(NewStageCompleted(st.ThreadID, n.name, elapsed))

	span.SetAttributes(
		attribute.String("city", st.City),
		attribute.Int("errors.added", len(st.Errors)-errorsBefore),
	)
	if len(st.Errors) > errorsBefore {
		span.SetStatus(codes.Error, st.Errors[len(st.Errors)-1])
	}
}

func (r *Runnable) next(from string, st *state.ConversationState) (string, error) {
	if b, ok := r.graph.branches[from]; ok {
		to := b.fn(st)
		if _, ok := b.targets[to]; !ok {
			return "", fmt.Errorf("%w: branch %s -> %s", ErrUnknownNode, from, to)
		}
		return to, nil
	}
	return r.graph.edges[from], nil
}

func (r *Runnable) report(ev *ProgressEvent) {
	// progress is best effort
	_ = r.opts.Reporter.Send(ev)
}
