// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	r := New()
	r.ToolCall("lookup_topic")
	r.ToolCall("lookup_topic")
	r.ToolCall("lookup_section")
	r.ToolError("lookup_section")
	r.ModelTurn()
	r.AgentError()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.toolCalls.WithLabelValues("lookup_topic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.toolCalls.WithLabelValues("lookup_section")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.modelTurns))

	expected := `
# HELP wiki_research_agent_errors_total Error events emitted by the agent runtime.
# TYPE wiki_research_agent_errors_total counter
wiki_research_agent_errors_total 1
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected),
		"wiki_research_agent_errors_total"))
}

func TestSnapshot(t *testing.T) {
	r := New()
	r.ToolCall("lookup_topic")
	r.ToolCall("lookup_section")
	r.ToolCall("lookup_section")
	r.ToolError("lookup_section")
	r.ModelTurn()
	r.ModelTurn()
	r.ModelTurn()

	snap, err := r.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"lookup_topic": 1, "lookup_section": 2}, snap.ToolCalls)
	assert.Equal(t, map[string]int{"lookup_section": 1}, snap.ToolErrors)
	assert.Equal(t, 3, snap.ModelTurns)
	assert.Equal(t, 0, snap.AgentErrors)
	assert.Equal(t, 3, snap.TotalToolCalls())
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ToolCall("lookup_topic")

	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.ToolCalls)
}

func TestPrintSummary(t *testing.T) {
	snap := Snapshot{
		ToolCalls:  map[string]int{"lookup_topic": 2, "lookup_section": 5},
		ToolErrors: map[string]int{"lookup_section": 1},
		ModelTurns: 4,
	}
	var buf bytes.Buffer
	snap.PrintSummary(&buf)

	out := buf.String()
	assert.Contains(t, out, "Model turns: 4\n")
	assert.Contains(t, out, "Tool calls: 7\n")
	assert.Contains(t, out, "lookup_section     5 (1 errors)")
	assert.Less(t, strings.Index(out, "lookup_section"), strings.Index(out, "lookup_topic"))
	assert.NotContains(t, out, "Agent errors")
}
