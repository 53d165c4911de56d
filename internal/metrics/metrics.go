// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts tool calls, model turns and agent errors for one
// research run. Counters live in a private Prometheus registry so runs in
// the same process (tests, mostly) never share state.
package metrics

import (
	"fmt"
	"io"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wiki_research"

// Recorder holds the counters for one run.
type Recorder struct {
	registry    *prometheus.Registry
	toolCalls   *prometheus.CounterVec
	toolErrors  *prometheus.CounterVec
	modelTurns  prometheus.Counter
	agentErrors prometheus.Counter
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name.",
		}, []string{"tool"}),
		toolErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_errors_total",
			Help:      "Tool invocations that returned an error payload.",
		}, []string{"tool"}),
		modelTurns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_turns_total",
			Help:      "Assistant messages produced by the agent runtime.",
		}),
		agentErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_errors_total",
			Help:      "Error events emitted by the agent runtime.",
		}),
	}
	r.registry.MustRegister(r.toolCalls, r.toolErrors, r.modelTurns, r.agentErrors)
	return r
}

// Registry exposes the underlying registry, e.g. for a push gateway.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ToolCall counts one invocation of the named tool.
func (r *Recorder) ToolCall(tool string) { r.toolCalls.WithLabelValues(tool).Inc() }

// ToolError counts one failed invocation of the named tool.
func (r *Recorder) ToolError(tool string) { r.toolErrors.WithLabelValues(tool).Inc() }

// ModelTurn counts one assistant message.
func (r *Recorder) ModelTurn() { r.modelTurns.Inc() }

// AgentError counts one runtime error event.
func (r *Recorder) AgentError() { r.agentErrors.Inc() }

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	ToolCalls   map[string]int
	ToolErrors  map[string]int
	ModelTurns  int
	AgentErrors int
}

// TotalToolCalls sums ToolCalls over every tool.
func (s Snapshot) TotalToolCalls() int {
	total := 0
	for _, n := range s.ToolCalls {
		total += n
	}
	return total
}

// Snapshot gathers the registry into plain counts.
func (r *Recorder) Snapshot() (Snapshot, error) {
	snap := Snapshot{
		ToolCalls:  make(map[string]int),
		ToolErrors: make(map[string]int),
	}
	families, err := r.registry.Gather()
	if err != nil {
		return snap, fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			value := int(m.GetCounter().GetValue())
			tool := ""
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "tool" {
					tool = lp.GetValue()
				}
			}
			switch mf.GetName() {
			case namespace + "_tool_calls_total":
				snap.ToolCalls[tool] = value
			case namespace + "_tool_errors_total":
				snap.ToolErrors[tool] = value
			case namespace + "_model_turns_total":
				snap.ModelTurns = value
			case namespace + "_agent_errors_total":
				snap.AgentErrors = value
			}
		}
	}
	return snap, nil
}

// PrintSummary writes the counters in the run summary format.
func (s Snapshot) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "Model turns: %d\n", s.ModelTurns)
	fmt.Fprintf(w, "Tool calls: %d\n", s.TotalToolCalls())

	names := make([]string, 0, len(s.ToolCalls))
	for name := range s.ToolCalls {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if errs := s.ToolErrors[name]; errs > 0 {
			fmt.Fprintf(w, "  %-18s %d (%d errors)\n", name, s.ToolCalls[name], errs)
			continue
		}
		fmt.Fprintf(w, "  %-18s %d\n", name, s.ToolCalls[name])
	}
	if s.AgentErrors > 0 {
		fmt.Fprintf(w, "Agent errors: %d\n", s.AgentErrors)
	}
}
