// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent configures a chat model, registers the research tools with
// the eino ADK runtime, submits one research task and saves the report the
// runtime produces. Planning, tool dispatch and sub-agent execution all
// happen inside the runtime; this package only wires and observes it.
package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/pdiddy/wiki-research/internal/metrics"
	"github.com/pdiddy/wiki-research/internal/notes"
	"github.com/pdiddy/wiki-research/internal/tools"
	"github.com/pdiddy/wiki-research/internal/wikipedia"
	"github.com/pdiddy/wiki-research/pkg/types"
)

const (
	agentName          = "wiki_researcher"
	subAgentName       = "section_researcher"
	previewChars       = 500
	subAgentIterations = 10
)

// Result describes a finished run.
type Result struct {
	RunID        string
	Report       string
	ReportPath   string
	ManifestPath string
	Manifest     *types.RunManifest
	Metrics      metrics.Snapshot
}

// Option customizes a run. Tests use them to replace the network-facing
// pieces.
type Option func(*runner)

// WithChatModel replaces the OpenAI-compatible model built from the config.
func WithChatModel(m model.ToolCallingChatModel) Option {
	return func(r *runner) { r.model = m }
}

// WithLookup replaces the Wikipedia client built from the config.
func WithLookup(l tools.Lookup) Option {
	return func(r *runner) { r.wiki = l }
}

// WithNotesStore supplies an open notes store. The caller keeps ownership.
func WithNotesStore(s *notes.Store) Option {
	return func(r *runner) { r.notes = s }
}

// WithHTTPClient sets the HTTP client of the chat model.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *runner) { r.httpClient = hc }
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) Option {
	return func(r *runner) { r.runID = id }
}

type runner struct {
	cfg        types.ResearchConfig
	w          io.Writer
	model      model.ToolCallingChatModel
	wiki       tools.Lookup
	notes      *notes.Store
	httpClient *http.Client
	runID      string
	rec        *metrics.Recorder
}

// Run executes one research run for cfg and writes the report and its run
// manifest. Progress is written to w.
//
// The configuration is validated before anything touches the network; a
// missing credential yields an error wrapping types.ErrConfiguration. A
// runtime error event, or a run that produces no assistant text, yields an
// error wrapping types.ErrRuntimeFailure. The manifest is written in both
// the success and the runtime failure case.
func Run(ctx context.Context, cfg types.ResearchConfig, w io.Writer, opts ...Option) (*Result, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &runner{cfg: cfg, w: w, rec: metrics.New()}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	return r.run(ctx)
}

func (r *runner) run(ctx context.Context) (*Result, error) {
	cfg := r.cfg
	manifest := &types.RunManifest{
		RunID:      r.runID,
		Topic:      cfg.Topic,
		Backend:    cfg.Chat.Backend,
		Model:      cfg.Chat.Model,
		ReportPath: cfg.ReportPath,
		StartedAt:  time.Now().UTC(),
	}

	if r.model == nil {
		m, err := NewChatModel(ctx, cfg.Chat, r.httpClient)
		if err != nil {
			return nil, err
		}
		r.model = m
	}
	if r.wiki == nil {
		r.wiki = wikipedia.NewClient(cfg.Wikipedia)
	}
	if cfg.Notes.Enabled && r.notes == nil {
		store, err := notes.Open(cfg.Notes.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening notes store: %w", err)
		}
		defer store.Close()
		r.notes = store
	}

	fmt.Fprintf(r.w, "Run %s\n", r.runID)
	fmt.Fprintf(r.w, "Chat endpoint: %s (%s)\n", cfg.Chat.BaseURL, cfg.Chat.Backend)
	fmt.Fprintf(r.w, "Model: %s\n", cfg.Chat.Model)

	root, err := r.buildAgent(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(r.w, "Researching: %s\n\n", cfg.Topic)
	messages, runErr := r.drive(ctx, root)

	snap, err := r.rec.Snapshot()
	if err != nil {
		return nil, err
	}
	manifest.ToolCalls = snap.ToolCalls
	manifest.ModelTurns = snap.ModelTurns

	fail := func(err error) (*Result, error) {
		manifest.FinishedAt = time.Now().UTC()
		manifest.Error = err.Error()
		if werr := WriteManifest(manifest); werr != nil {
			fmt.Fprintf(r.w, "warning: %v\n", werr)
		}
		return nil, err
	}

	if runErr != nil {
		return fail(fmt.Errorf("%w: %w", types.ErrRuntimeFailure, runErr))
	}

	report, fallback := selectReport(messages)
	if strings.TrimSpace(report) == "" {
		return fail(fmt.Errorf("%w: the agent produced no report text", types.ErrRuntimeFailure))
	}
	if fallback {
		fmt.Fprintf(r.w, "\nwarning: no message looked like a report; saving the last message\n")
	}

	if err := writeReport(cfg.ReportPath, report); err != nil {
		return nil, err
	}

	manifest.FinishedAt = time.Now().UTC()
	manifest.ReportChars = len([]rune(report))
	manifest.ReportWords = len(strings.Fields(report))
	manifest.FromFallback = fallback
	if err := WriteManifest(manifest); err != nil {
		return nil, err
	}

	fmt.Fprintf(r.w, "\nReport preview:\n%s\n\n", preview(report, previewChars))
	fmt.Fprintf(r.w, "Report saved to %s (%d characters, %d words)\n",
		cfg.ReportPath, manifest.ReportChars, manifest.ReportWords)
	snap.PrintSummary(r.w)

	return &Result{
		RunID:        r.runID,
		Report:       report,
		ReportPath:   cfg.ReportPath,
		ManifestPath: ManifestPath(cfg.ReportPath),
		Manifest:     manifest,
		Metrics:      snap,
	}, nil
}

// buildAgent registers the tools and, when enabled, the section
// researcher sub-agent.
func (r *runner) buildAgent(ctx context.Context) (adk.Agent, error) {
	deps := &tools.Deps{Wiki: r.wiki, RunID: r.runID, Metrics: r.rec}
	kinds := append([]tools.Kind{}, tools.LookupKinds...)
	if r.notes != nil {
		deps.Notes = r.notes
		kinds = append(kinds, tools.NoteKinds...)
	}
	ts, err := tools.Build(deps, kinds...)
	if err != nil {
		return nil, fmt.Errorf("building tools: %w", err)
	}

	if r.cfg.SubAgent {
		sub, err := r.buildSubAgent(ctx, deps)
		if err != nil {
			return nil, err
		}
		ts = append(ts, adk.NewAgentTool(ctx, sub))
	}

	fmt.Fprintf(r.w, "Tools: %s\n", strings.Join(toolNames(ctx, ts), ", "))

	instruction, err := renderInstruction(r.notes != nil, r.cfg.SubAgent)
	if err != nil {
		return nil, err
	}

	a, err := adk.NewChatModelAgent(ctx, &adk.ChatModelAgentConfig{
		Name:        agentName,
		Description: "Researches a topic on Wikipedia and writes a markdown report.",
		Instruction: instruction,
		Model:       r.model,
		ToolsConfig: adk.ToolsConfig{
			ToolsNodeConfig: compose.ToolsNodeConfig{Tools: ts},
		},
		MaxIterations: r.cfg.MaxIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating agent: %v", types.ErrConfiguration, err)
	}
	return a, nil
}

func (r *runner) buildSubAgent(ctx context.Context, deps *tools.Deps) (adk.Agent, error) {
	ts, err := tools.Build(deps, tools.LookupKinds...)
	if err != nil {
		return nil, fmt.Errorf("building sub-agent tools: %w", err)
	}
	a, err := adk.NewChatModelAgent(ctx, &adk.ChatModelAgentConfig{
		Name:        subAgentName,
		Description: "Reads named Wikipedia sections and returns a concise factual summary. Input: the article and what to look for.",
		Instruction: sectionResearcherInstruction,
		Model:       r.model,
		ToolsConfig: adk.ToolsConfig{
			ToolsNodeConfig: compose.ToolsNodeConfig{Tools: ts},
		},
		MaxIterations: subAgentIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating sub-agent: %v", types.ErrConfiguration, err)
	}
	return a, nil
}

// drive submits the task and drains the event stream on the calling
// goroutine. It returns the text of every assistant message of the main
// agent in order, and the first error event.
func (r *runner) drive(ctx context.Context, a adk.Agent) ([]string, error) {
	task, err := renderTask(r.cfg.Topic)
	if err != nil {
		return nil, err
	}

	rn := adk.NewRunner(ctx, adk.RunnerConfig{Agent: a})
	iter := rn.Query(ctx, task)

	var (
		messages []string
		firstErr error
	)
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		if event.Err != nil {
			r.rec.AgentError()
			if firstErr == nil {
				firstErr = event.Err
			}
			fmt.Fprintf(r.w, "agent error: %v\n", event.Err)
			continue
		}
		if event.Output == nil || event.Output.MessageOutput == nil {
			continue
		}
		msg, err := event.Output.MessageOutput.GetMessage()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if msg == nil || msg.Role != schema.Assistant {
			continue
		}
		if event.AgentName != "" && event.AgentName != agentName {
			fmt.Fprintf(r.w, "  [%s] %s\n", event.AgentName, preview(oneLine(msg.Content), 120))
			continue
		}

		r.rec.ModelTurn()
		r.logTurn(msg)
		if msg.Content != "" {
			messages = append(messages, msg.Content)
		}
	}

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	return messages, firstErr
}

func (r *runner) logTurn(msg *schema.Message) {
	for _, tc := range msg.ToolCalls {
		fmt.Fprintf(r.w, "  -> %s %s\n", tc.Function.Name, preview(oneLine(tc.Function.Arguments), 120))
	}
	if msg.Content != "" && len(msg.ToolCalls) == 0 {
		fmt.Fprintf(r.w, "  assistant: %s\n", preview(oneLine(msg.Content), 120))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// toolNames lists the names the agent will see, for diagnostics.
func toolNames(ctx context.Context, ts []tool.BaseTool) []string {
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		if info, err := t.Info(ctx); err == nil {
			names = append(names, info.Name)
		}
	}
	return names
}
