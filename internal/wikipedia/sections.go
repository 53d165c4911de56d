// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikipedia

import (
	"regexp"
	"strings"
)

// headingPattern matches a wiki-format heading line as emitted by
// TextExtracts with exsectionformat=wiki: "== Title ==", "=== Sub ===".
var headingPattern = regexp.MustCompile(`^(={2,6})\s*(.*?)\s*={2,6}\s*$`)

// section is one node of a page's section tree.
type section struct {
	title    string
	level    int // 1 for "==", 2 for "===", ...
	text     string
	children []*section
}

// document is a parsed extract: lead text plus top-level sections.
type document struct {
	lead     string
	sections []*section
}

// parseExtract splits a plain-text extract into lead and section tree.
// Empty-titled headings are ignored and empty sections are pruned.
func parseExtract(extract string) document {
	var doc document
	var stack []*section
	var body []string
	var current *section

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		body = body[:0]
		if current == nil {
			doc.lead = text
			return
		}
		current.text = text
	}

	for _, line := range strings.Split(extract, "\n") {
		m := headingPattern.FindStringSubmatch(line)
		if m == nil || strings.TrimSpace(m[2]) == "" {
			body = append(body, line)
			continue
		}
		flush()

		s := &section{title: m[2], level: len(m[1]) - 1}
		for len(stack) > 0 && stack[len(stack)-1].level >= s.level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			doc.sections = append(doc.sections, s)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, s)
		}
		stack = append(stack, s)
		current = s
	}
	flush()

	doc.sections = prune(doc.sections)
	return doc
}

// prune drops sections with no text of their own and no non-empty
// descendants. Extracts keep headings like "References" whose bodies
// were stripped; those are not readable sections.
func prune(ss []*section) []*section {
	out := ss[:0]
	for _, s := range ss {
		s.children = prune(s.children)
		if s.text != "" || len(s.children) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// titles returns top-level section titles in page order.
func (d document) titles() []string {
	out := make([]string, 0, len(d.sections))
	for _, s := range d.sections {
		out = append(out, s.title)
	}
	return out
}

// allTitles returns every section title in the tree, pre-order.
func (d document) allTitles() []string {
	var out []string
	d.walk(func(s *section) bool {
		out = append(out, s.title)
		return true
	})
	return out
}

// walk visits sections in pre-order until fn returns false.
func (d document) walk(fn func(*section) bool) {
	var visit func([]*section) bool
	visit = func(ss []*section) bool {
		for _, s := range ss {
			if !fn(s) || !visit(s.children) {
				return false
			}
		}
		return true
	}
	visit(d.sections)
}

// find looks up a section by title: an exact match anywhere in the tree
// wins, otherwise the first normalized match.
func (d document) find(title string) *section {
	var exact, loose *section
	want := normalizeTitle(title)
	d.walk(func(s *section) bool {
		if s.title == title {
			exact = s
			return false
		}
		if loose == nil && normalizeTitle(s.title) == want {
			loose = s
		}
		return true
	})
	if exact != nil {
		return exact
	}
	return loose
}

// fullText renders a section's own text followed by its sub-sections,
// each introduced by a markdown heading one level deeper per nesting.
func (s *section) fullText() string {
	var b strings.Builder
	b.WriteString(s.text)
	var render func(children []*section, depth int)
	render = func(children []*section, depth int) {
		for _, c := range children {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(strings.Repeat("#", depth) + " " + c.title)
			if c.text != "" {
				b.WriteString("\n")
				b.WriteString(c.text)
			}
			render(c.children, depth+1)
		}
	}
	render(s.children, 3)
	return strings.TrimSpace(b.String())
}

// normalizeTitle folds case, underscores, runs of whitespace and trailing
// punctuation so "applications_" and "Applications:" both match
// "Applications".
func normalizeTitle(title string) string {
	t := strings.ToLower(strings.ReplaceAll(title, "_", " "))
	t = strings.Join(strings.Fields(t), " ")
	return strings.TrimRight(t, ".:;, ")
}
