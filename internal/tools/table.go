// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/pdiddy/wiki-research/internal/notes"
	"github.com/pdiddy/wiki-research/internal/wikipedia"
	"github.com/pdiddy/wiki-research/pkg/types"
)

var table = map[Kind]entry{
	KindLookupTopic: {
		info: &schema.ToolInfo{
			Name: "lookup_topic",
			Desc: "Look up a topic on Wikipedia. Returns the article title, a summary, its URL, " +
				"the section titles and related topics. When no article matches, returns " +
				"found=false with suggested titles to try instead.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     schema.String,
					Desc:     "The topic to look up",
					Required: true,
				},
				"sentences": {
					Type: schema.Integer,
					Desc: "Number of summary sentences to return (default 10)",
				},
			}),
		},
		handler: lookupTopic,
	},
	KindLookupSection: {
		info: &schema.ToolInfo{
			Name: "lookup_section",
			Desc: "Get the text of one section of a Wikipedia article, including its sub-sections. " +
				"Use a section title returned by lookup_topic.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"page_title": {
					Type:     schema.String,
					Desc:     "The title of the Wikipedia article",
					Required: true,
				},
				"section_title": {
					Type:     schema.String,
					Desc:     "The title of the section to retrieve",
					Required: true,
				},
			}),
		},
		handler: lookupSection,
	},
	KindListNotes: {
		info: &schema.ToolInfo{
			Name: "ls",
			Desc: "List the notes saved so far in this research run.",
		},
		handler: listNotes,
		notes:   true,
	},
	KindReadNote: {
		info: &schema.ToolInfo{
			Name: "read_file",
			Desc: "Read a saved note.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"file_path": {Type: schema.String, Desc: "Path of the note, e.g. /notes/history.md", Required: true},
			}),
		},
		handler: readNote,
		notes:   true,
	},
	KindWriteNote: {
		info: &schema.ToolInfo{
			Name: "write_file",
			Desc: "Save a note, replacing any note at the same path.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"file_path": {Type: schema.String, Desc: "Path of the note", Required: true},
				"content":   {Type: schema.String, Desc: "Full content of the note", Required: true},
			}),
		},
		handler: writeNote,
		notes:   true,
	},
	KindEditNote: {
		info: &schema.ToolInfo{
			Name: "edit_file",
			Desc: "Replace text in a saved note. old_string must appear exactly once unless replace_all is true.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"file_path":   {Type: schema.String, Desc: "Path of the note", Required: true},
				"old_string":  {Type: schema.String, Desc: "Exact text to replace", Required: true},
				"new_string":  {Type: schema.String, Desc: "Replacement text", Required: true},
				"replace_all": {Type: schema.Boolean, Desc: "Replace every occurrence"},
			}),
		},
		handler: editNote,
		notes:   true,
	},
	KindGrepNotes: {
		info: &schema.ToolInfo{
			Name: "grep",
			Desc: "Find lines in the saved notes that contain the given text (plain substring, case-insensitive).",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"pattern": {Type: schema.String, Desc: "Text to search for", Required: true},
			}),
		},
		handler: grepNotes,
		notes:   true,
	},
}

type topicArgs struct {
	Query     string `json:"query"`
	Sentences int    `json:"sentences"`
}

func lookupTopic(ctx context.Context, d *Deps, args string) (any, error) {
	var a topicArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	res, err := d.Wiki.LookupTopic(ctx, a.Query, wikipedia.Sentences(a.Sentences))
	if err != nil {
		return nil, err
	}
	return res, nil
}

type sectionArgs struct {
	PageTitle    string `json:"page_title"`
	SectionTitle string `json:"section_title"`
}

type sectionPayload struct {
	Found bool `json:"found"`
	*types.SectionResult
}

func lookupSection(ctx context.Context, d *Deps, args string) (any, error) {
	var a sectionArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	res, err := d.Wiki.LookupSection(ctx, a.PageTitle, a.SectionTitle)
	if err != nil {
		return nil, err
	}
	return sectionPayload{Found: true, SectionResult: res}, nil
}

type listPayload struct {
	Found bool         `json:"found"`
	Notes []notes.Info `json:"notes"`
}

func listNotes(ctx context.Context, d *Deps, _ string) (any, error) {
	infos, err := d.Notes.List(ctx, d.RunID)
	if err != nil {
		return nil, err
	}
	if infos == nil {
		infos = []notes.Info{}
	}
	return listPayload{Found: true, Notes: infos}, nil
}

type pathArgs struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

type notePayload struct {
	Found   bool   `json:"found"`
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"`
}

func readNote(ctx context.Context, d *Deps, args string) (any, error) {
	var a pathArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	n, err := d.Notes.Read(ctx, d.RunID, a.FilePath)
	if err != nil {
		return nil, err
	}
	return notePayload{Found: true, Path: n.Path, Content: n.Content}, nil
}

func writeNote(ctx context.Context, d *Deps, args string) (any, error) {
	var a pathArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if err := d.Notes.Write(ctx, d.RunID, a.FilePath, a.Content); err != nil {
		return nil, err
	}
	return notePayload{Found: true, Path: a.FilePath, Message: fmt.Sprintf("saved %d characters", len(a.Content))}, nil
}

type editArgs struct {
	FilePath   string `json:"file_path"`
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all"`
}

func editNote(ctx context.Context, d *Deps, args string) (any, error) {
	var a editArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	n, err := d.Notes.Edit(ctx, d.RunID, a.FilePath, a.OldString, a.NewString, a.ReplaceAll)
	if err != nil {
		return nil, err
	}
	return notePayload{Found: true, Path: a.FilePath, Message: fmt.Sprintf("replaced %d occurrence(s)", n)}, nil
}

type grepArgs struct {
	Pattern string `json:"pattern"`
}

type grepPayload struct {
	Found   bool          `json:"found"`
	Matches []notes.Match `json:"matches"`
}

func grepNotes(ctx context.Context, d *Deps, args string) (any, error) {
	var a grepArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	matches, err := d.Notes.Grep(ctx, d.RunID, a.Pattern)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []notes.Match{}
	}
	return grepPayload{Found: len(matches) > 0, Matches: matches}, nil
}
