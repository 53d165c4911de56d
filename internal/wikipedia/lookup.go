// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikipedia

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/wiki-research/pkg/types"
)

// LookupOption adjusts a single LookupTopic call.
type LookupOption func(*lookupSettings)

type lookupSettings struct {
	sentences int
}

// Sentences overrides the configured summary length for one call.
// Values below one are ignored.
func Sentences(n int) LookupOption {
	return func(s *lookupSettings) {
		if n > 0 {
			s.sentences = n
		}
	}
}

// LookupTopic resolves a free-text topic to an article and returns its
// summary, top-level section titles and related topics.
//
// When no article matches, the closest matches offered by the search API
// are returned with Found unset. A disambiguation page yields its
// candidate articles the same way. ErrNotFound is returned only when
// there is neither a page nor an alternative.
func (c *Client) LookupTopic(ctx context.Context, query string, opts ...LookupOption) (*types.TopicResult, error) {
	settings := lookupSettings{sentences: c.cfg.SummarySentences}
	for _, opt := range opts {
		opt(&settings)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("lookup topic: %w", types.ErrEmptyQuery)
	}

	p, err := c.fetchPage(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("lookup topic %q: %w", query, err)
	}

	if !p.exists() {
		suggestions, err := c.search(ctx, query, c.cfg.MaxSuggestions)
		if err != nil {
			return nil, fmt.Errorf("searching alternatives for %q: %w", query, err)
		}
		if len(suggestions) == 0 {
			return nil, fmt.Errorf("lookup topic %q: %w", query, types.ErrNotFound)
		}
		return &types.TopicResult{
			Query:       query,
			Sections:    []string{},
			Suggestions: suggestions,
		}, nil
	}

	if p.isDisambiguation() {
		return &types.TopicResult{
			Query:          query,
			Title:          p.Title,
			URL:            c.pageURL(p),
			Sections:       []string{},
			Disambiguation: true,
			Suggestions:    linkTitles(p.Links, c.cfg.MaxRelatedTopics),
		}, nil
	}

	doc := parseExtract(p.Extract)
	sections := doc.titles()
	if c.cfg.MaxSections > 0 && len(sections) > c.cfg.MaxSections {
		sections = sections[:c.cfg.MaxSections]
	}

	return &types.TopicResult{
		Found:         true,
		Query:         query,
		Title:         p.Title,
		Summary:       firstSentences(doc.lead, settings.sentences),
		URL:           c.pageURL(p),
		Sections:      sections,
		RelatedTopics: linkTitles(p.Links, c.cfg.MaxRelatedTopics),
	}, nil
}

// LookupSection returns the text of one section of one page. The title
// is matched exactly first, then after case and whitespace folding.
// A missing page yields ErrNotFound; a missing section yields a
// *types.SectionNotFoundError listing the page's sections.
func (c *Client) LookupSection(ctx context.Context, pageTitle, sectionTitle string) (*types.SectionResult, error) {
	pageTitle = strings.TrimSpace(pageTitle)
	sectionTitle = strings.TrimSpace(sectionTitle)
	if pageTitle == "" || sectionTitle == "" {
		return nil, fmt.Errorf("lookup section: page and section titles are required: %w", types.ErrEmptyQuery)
	}

	p, err := c.fetchPage(ctx, pageTitle)
	if err != nil {
		return nil, fmt.Errorf("lookup section %q/%q: %w", pageTitle, sectionTitle, err)
	}
	if !p.exists() {
		return nil, fmt.Errorf("page %q: %w", pageTitle, types.ErrNotFound)
	}

	doc := parseExtract(p.Extract)
	s := doc.find(sectionTitle)
	if s == nil {
		return nil, &types.SectionNotFoundError{
			PageTitle:    p.Title,
			SectionTitle: sectionTitle,
			Available:    doc.allTitles(),
		}
	}

	content, truncated := truncate(s.fullText(), c.cfg.SectionMaxChars)
	return &types.SectionResult{
		PageTitle:    p.Title,
		SectionTitle: s.title,
		Content:      content,
		Truncated:    truncated,
	}, nil
}

func (c *Client) pageURL(p *page) string {
	if p.FullURL != "" {
		return p.FullURL
	}
	return c.articleURL(p.Title)
}

// linkTitles returns up to limit main-namespace link titles in API order.
func linkTitles(links []link, limit int) []string {
	out := make([]string, 0, min(len(links), limit))
	for _, l := range links {
		if l.NS != 0 {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, l.Title)
	}
	return out
}

// firstSentences keeps the first n sentences of text. A sentence ends at
// ". " (or end of text); abbreviations are not special-cased.
func firstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 {
		return text
	}
	end := 0
	for i := 0; i < n; i++ {
		idx := strings.Index(text[end:], ". ")
		if idx < 0 {
			return text
		}
		end += idx + 1
	}
	return strings.TrimSpace(text[:end])
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) (string, bool) {
	if max <= 0 || len(s) <= max {
		return s, false
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
