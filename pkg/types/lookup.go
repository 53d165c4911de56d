// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for wiki-research: the
// run configuration, the lookup results passed to the agent runtime, and
// the error taxonomy.
package types

// TopicResult is the normalized answer to a topic lookup. It is built
// fresh per call and never cached.
type TopicResult struct {
	// Found is true when Query resolved to an article.
	Found bool `json:"found" yaml:"found"`

	// Query echoes the caller's query.
	Query string `json:"query" yaml:"query"`

	// Title is the resolved page title after redirects.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Summary is the lead section truncated to the configured sentence count.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// URL is the canonical article URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Sections lists top-level section titles in page order.
	Sections []string `json:"sections" yaml:"sections"`

	// RelatedTopics lists linked article titles.
	RelatedTopics []string `json:"related_topics" yaml:"related_topics"`

	// Disambiguation is true when Query landed on a disambiguation page.
	// Suggestions then holds the candidate articles.
	Disambiguation bool `json:"disambiguation,omitempty" yaml:"disambiguation,omitempty"`

	// Suggestions lists closest-match titles when Found is false.
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// SectionResult is the text of one named section of one page.
type SectionResult struct {
	PageTitle    string `json:"page_title" yaml:"page_title"`
	SectionTitle string `json:"section_title" yaml:"section_title"`

	// Content is the section body including sub-sections, truncated to the
	// configured character limit.
	Content string `json:"content" yaml:"content"`

	// Truncated reports whether Content was cut.
	Truncated bool `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}
