// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wiki-research/internal/notes"
	"github.com/pdiddy/wiki-research/internal/wikipedia"
	"github.com/pdiddy/wiki-research/pkg/types"
)

const sampleReport = `# Quantum computing

## Executive Summary
Quantum computers use qubits, superposition and entanglement to solve some problems faster than classical machines.

## Introduction
The field began in the 1980s with proposals by Feynman and Deutsch.

## Sources
- https://en.wikipedia.org/wiki/Quantum_computing
`

// scriptedModel replays fixed assistant messages, one per Generate call.
// It records the tools offered on each call, which the agent passes as
// call options.
type scriptedModel struct {
	mu     sync.Mutex
	steps  []*schema.Message
	err    error
	calls  int
	tools  []string
	inputs [][]*schema.Message
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, input)
	if infos := model.GetCommonOptions(nil, opts...).Tools; infos != nil {
		m.recordTools(infos)
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.calls >= len(m.steps) {
		return nil, errors.New("script exhausted")
	}
	msg := m.steps[m.calls]
	m.calls++
	return msg, nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedModel) WithTools(infos []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordTools(infos)
	return m, nil
}

func (m *scriptedModel) recordTools(infos []*schema.ToolInfo) {
	m.tools = m.tools[:0]
	for _, info := range infos {
		m.tools = append(m.tools, info.Name)
	}
}

func toolCall(id, name, args string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
}

// stubLookup counts calls and answers every query with the same article.
type stubLookup struct {
	topics   atomic.Int32
	sections atomic.Int32
}

func (s *stubLookup) LookupTopic(_ context.Context, query string, _ ...wikipedia.LookupOption) (*types.TopicResult, error) {
	s.topics.Add(1)
	return &types.TopicResult{
		Found:    true,
		Query:    query,
		Title:    "Quantum computing",
		Summary:  "Quantum computing is a type of computation.",
		URL:      "https://en.wikipedia.org/wiki/Quantum_computing",
		Sections: []string{"History", "Applications"},
	}, nil
}

func (s *stubLookup) LookupSection(_ context.Context, page, section string) (*types.SectionResult, error) {
	s.sections.Add(1)
	return &types.SectionResult{PageTitle: page, SectionTitle: section, Content: "Cryptography and simulation."}, nil
}

func testConfig(t *testing.T) types.ResearchConfig {
	t.Helper()
	return types.ResearchConfig{
		Chat:       types.ChatConfig{Temperature: 0.7},
		Topic:      "Quantum computing",
		ReportPath: filepath.Join(t.TempDir(), "out", "research_report.md"),
	}
}

func TestRun_WritesReport(t *testing.T) {
	m := &scriptedModel{steps: []*schema.Message{
		toolCall("call_1", "lookup_topic", `{"query":"Quantum computing"}`),
		toolCall("call_2", "lookup_section", `{"page_title":"Quantum computing","section_title":"Applications"}`),
		schema.AssistantMessage(sampleReport, nil),
	}}
	wiki := &stubLookup{}
	cfg := testConfig(t)
	var out bytes.Buffer

	res, err := Run(context.Background(), cfg, &out, WithChatModel(m), WithLookup(wiki), WithRunID("run-1"))
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.ReportPath)
	require.NoError(t, err)
	assert.Equal(t, sampleReport, string(data))
	assert.Equal(t, sampleReport, res.Report)

	assert.Equal(t, []string{"lookup_topic", "lookup_section"}, m.tools)
	assert.Equal(t, int32(1), wiki.topics.Load())
	assert.Equal(t, int32(1), wiki.sections.Load())

	// The tool result reaches the model on the next turn.
	require.Len(t, m.inputs, 3)
	last := m.inputs[1][len(m.inputs[1])-1]
	assert.Equal(t, schema.Tool, last.Role)
	assert.Contains(t, last.Content, `"found":true`)

	assert.Equal(t, map[string]int{"lookup_topic": 1, "lookup_section": 1}, res.Metrics.ToolCalls)
	assert.Equal(t, 3, res.Metrics.ModelTurns)

	manifest, err := LoadManifest(res.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, "run-1", manifest.RunID)
	assert.Equal(t, "Quantum computing", manifest.Topic)
	assert.Equal(t, types.BackendLocal, manifest.Backend)
	assert.Equal(t, "qwen2.5-14b-instruct", manifest.Model)
	assert.False(t, manifest.FromFallback)
	assert.Equal(t, len([]rune(sampleReport)), manifest.ReportChars)
	assert.Equal(t, 2, manifest.ToolCalls["lookup_section"]+manifest.ToolCalls["lookup_topic"])
	assert.Empty(t, manifest.Error)

	assert.Contains(t, out.String(), "-> lookup_topic")
	assert.Contains(t, out.String(), "Report saved to")
}

func TestRun_MissingCredentialMakesNoRequests(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer ts.Close()

	for _, backend := range []types.ChatBackend{types.BackendOpenAI, types.BackendAzure} {
		t.Run(string(backend), func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Chat.Backend = backend
			cfg.Chat.BaseURL = ts.URL

			_, err := Run(context.Background(), cfg, io.Discard, WithHTTPClient(ts.Client()))
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrConfiguration)

			_, statErr := os.Stat(cfg.ReportPath)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
	assert.Zero(t, hits.Load())
}

func TestRun_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chat.Backend = "bedrock"
	_, err := Run(context.Background(), cfg, io.Discard, WithChatModel(&scriptedModel{}))
	assert.ErrorIs(t, err, types.ErrConfiguration)
}

func TestRun_RuntimeError(t *testing.T) {
	m := &scriptedModel{err: errors.New("connection refused")}
	cfg := testConfig(t)

	_, err := Run(context.Background(), cfg, io.Discard, WithChatModel(m), WithLookup(&stubLookup{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRuntimeFailure)

	_, statErr := os.Stat(cfg.ReportPath)
	assert.True(t, os.IsNotExist(statErr))

	manifest, err := LoadManifest(ManifestPath(cfg.ReportPath))
	require.NoError(t, err)
	assert.Contains(t, manifest.Error, "connection refused")
}

func TestRun_EmptyAnswer(t *testing.T) {
	m := &scriptedModel{steps: []*schema.Message{schema.AssistantMessage("", nil)}}
	cfg := testConfig(t)

	_, err := Run(context.Background(), cfg, io.Discard, WithChatModel(m), WithLookup(&stubLookup{}))
	assert.ErrorIs(t, err, types.ErrRuntimeFailure)
}

func TestRun_FallbackToLastMessage(t *testing.T) {
	m := &scriptedModel{steps: []*schema.Message{schema.AssistantMessage("Quantum computers use qubits.", nil)}}
	cfg := testConfig(t)
	var out bytes.Buffer

	res, err := Run(context.Background(), cfg, &out, WithChatModel(m), WithLookup(&stubLookup{}))
	require.NoError(t, err)
	assert.Equal(t, "Quantum computers use qubits.", res.Report)
	assert.True(t, res.Manifest.FromFallback)
	assert.Contains(t, out.String(), "warning: no message looked like a report")
}

func TestRun_NotesTools(t *testing.T) {
	store, err := notes.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	m := &scriptedModel{steps: []*schema.Message{
		toolCall("call_1", "write_file", `{"file_path":"/notes/outline.md","content":"- History\n- Applications"}`),
		schema.AssistantMessage(sampleReport, nil),
	}}
	cfg := testConfig(t)
	cfg.Notes.Enabled = true

	_, err = Run(context.Background(), cfg, io.Discard,
		WithChatModel(m), WithLookup(&stubLookup{}), WithNotesStore(store), WithRunID("run-notes"))
	require.NoError(t, err)

	assert.Equal(t, []string{"lookup_topic", "lookup_section", "ls", "read_file", "write_file", "edit_file", "grep"}, m.tools)

	n, err := store.Read(context.Background(), "run-notes", "/notes/outline.md")
	require.NoError(t, err)
	assert.Equal(t, "- History\n- Applications", n.Content)

	// The instruction mentions the notes tools only when they exist.
	require.NotEmpty(t, m.inputs)
	assert.Equal(t, schema.System, m.inputs[0][0].Role)
	assert.Contains(t, m.inputs[0][0].Content, "write_file")
}

func TestRun_OpenAICompatibleEndpoint(t *testing.T) {
	type chatRequest struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	var (
		mu      sync.Mutex
		auth    string
		request chatRequest
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&request)
		mu.Unlock()

		content, _ := json.Marshal(sampleReport)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"qwen2.5-14b-instruct",
			"choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":10,"completion_tokens":20,"total_tokens":30}}`, content)
	}))
	defer ts.Close()

	cfg := testConfig(t)
	cfg.Chat.BaseURL = ts.URL + "/v1"

	res, err := Run(context.Background(), cfg, io.Discard, WithLookup(&stubLookup{}), WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	assert.Equal(t, sampleReport, res.Report)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer not-needed", auth)
	assert.Equal(t, "qwen2.5-14b-instruct", request.Model)
	assert.InDelta(t, 0.7, request.Temperature, 0.001)
	require.NotEmpty(t, request.Messages)
	assert.Equal(t, "system", request.Messages[0].Role)
	assert.Contains(t, request.Messages[len(request.Messages)-1].Content, "Research 'Quantum computing'")
}
