// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools exposes the Wikipedia lookups and the notes store to the
// agent runtime. The set of tools is a fixed enumeration; each Kind maps
// to a hand-written schema and a handler in the dispatch table.
//
// Tools never return Go errors for lookup or argument failures. Those are
// answered with a JSON payload carrying "found": false and a message so
// the model can rephrase or move on.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/pdiddy/wiki-research/internal/metrics"
	"github.com/pdiddy/wiki-research/internal/notes"
	"github.com/pdiddy/wiki-research/internal/wikipedia"
	"github.com/pdiddy/wiki-research/pkg/types"
)

// Kind enumerates the tools this package can build.
type Kind int

const (
	KindLookupTopic Kind = iota
	KindLookupSection
	KindListNotes
	KindReadNote
	KindWriteNote
	KindEditNote
	KindGrepNotes
)

// LookupKinds are the Wikipedia tools.
var LookupKinds = []Kind{KindLookupTopic, KindLookupSection}

// NoteKinds are the notes filesystem tools.
var NoteKinds = []Kind{KindListNotes, KindReadNote, KindWriteNote, KindEditNote, KindGrepNotes}

// String returns the tool name the model sees.
func (k Kind) String() string {
	if e, ok := table[k]; ok {
		return e.info.Name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Lookup is the subset of *wikipedia.Client the lookup tools use.
type Lookup interface {
	LookupTopic(ctx context.Context, query string, opts ...wikipedia.LookupOption) (*types.TopicResult, error)
	LookupSection(ctx context.Context, pageTitle, sectionTitle string) (*types.SectionResult, error)
}

// NoteStore is the subset of *notes.Store the note tools use.
type NoteStore interface {
	List(ctx context.Context, runID string) ([]notes.Info, error)
	Read(ctx context.Context, runID, path string) (*notes.Note, error)
	Write(ctx context.Context, runID, path, content string) error
	Edit(ctx context.Context, runID, path, oldText, newText string, replaceAll bool) (int, error)
	Grep(ctx context.Context, runID, pattern string) ([]notes.Match, error)
}

// Deps carries what the handlers need. Notes may be nil when only the
// lookup tools are built. Metrics may be nil.
type Deps struct {
	Wiki    Lookup
	Notes   NoteStore
	RunID   string
	Metrics *metrics.Recorder
}

// handler runs one call with already-raw JSON arguments and returns the
// value to serialize as the tool result.
type handler func(ctx context.Context, d *Deps, args string) (any, error)

type entry struct {
	info    *schema.ToolInfo
	handler handler
	notes   bool
}

// Tool is an eino InvokableTool for one Kind.
type Tool struct {
	kind  Kind
	entry entry
	deps  *Deps
}

var _ tool.InvokableTool = (*Tool)(nil)

// New builds the tool for kind.
func New(kind Kind, deps *Deps) (*Tool, error) {
	e, ok := table[kind]
	if !ok {
		return nil, fmt.Errorf("unknown tool kind %d", int(kind))
	}
	if deps == nil {
		return nil, fmt.Errorf("tool %s: no dependencies", e.info.Name)
	}
	if !e.notes && deps.Wiki == nil {
		return nil, fmt.Errorf("tool %s: wikipedia client is required", e.info.Name)
	}
	if e.notes && deps.Notes == nil {
		return nil, fmt.Errorf("tool %s: notes store is required", e.info.Name)
	}
	return &Tool{kind: kind, entry: e, deps: deps}, nil
}

// Build returns the tools for kinds in order, typed for an agent's tool
// list.
func Build(deps *Deps, kinds ...Kind) ([]tool.BaseTool, error) {
	out := make([]tool.BaseTool, 0, len(kinds))
	for _, k := range kinds {
		t, err := New(k, deps)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Kind reports which tool t is.
func (t *Tool) Kind() Kind { return t.kind }

// Info returns the tool schema.
func (t *Tool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return t.entry.info, nil
}

// InvokableRun decodes the arguments, calls the handler and serializes
// the answer. Only a failure to serialize is returned as an error.
func (t *Tool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	name := t.entry.info.Name
	if t.deps.Metrics != nil {
		t.deps.Metrics.ToolCall(name)
	}

	result, err := t.entry.handler(ctx, t.deps, argumentsInJSON)
	if err != nil {
		if t.deps.Metrics != nil {
			t.deps.Metrics.ToolError(name)
		}
		result = failure(err)
	}

	out, err := sonic.MarshalString(result)
	if err != nil {
		return "", fmt.Errorf("encoding %s result: %w", name, err)
	}
	return out, nil
}

// errInvalidArguments marks argument decoding failures.
var errInvalidArguments = errors.New("invalid arguments")

// decode unmarshals tool arguments. An empty string is an empty object.
func decode(args string, v any) error {
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	if err := sonic.UnmarshalString(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

// errorPayload is the JSON answer for any failed call.
type errorPayload struct {
	Found             bool     `json:"found"`
	Error             string   `json:"error"`
	Reason            string   `json:"reason"`
	AvailableSections []string `json:"available_sections,omitempty"`
}

func failure(err error) errorPayload {
	p := errorPayload{Error: err.Error(), Reason: "error"}

	var sectionErr *types.SectionNotFoundError
	switch {
	case errors.As(err, &sectionErr):
		p.Reason = "section_not_found"
		p.Error = fmt.Sprintf("Section %q not found in page %q", sectionErr.SectionTitle, sectionErr.PageTitle)
		p.AvailableSections = sectionErr.Available
	case errors.Is(err, errInvalidArguments), errors.Is(err, types.ErrEmptyQuery):
		p.Reason = "invalid_arguments"
	case errors.Is(err, types.ErrNotFound):
		p.Reason = "not_found"
	case errors.Is(err, types.ErrUnavailable):
		p.Reason = "unavailable"
		p.Error = "Wikipedia is unavailable right now: " + err.Error()
	}
	return p
}
