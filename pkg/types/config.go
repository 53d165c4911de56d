// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "wiki-research/0.1"). Wikimedia rejects anonymous clients.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// WikipediaConfig holds settings for the Wikipedia lookup adapter.
type WikipediaConfig struct {
	HTTPConfig `yaml:",inline"`

	// Language selects the Wikipedia edition (default "en").
	Language string `json:"language" yaml:"language"`

	// SummarySentences caps the lead summary at this many sentences (default 10).
	SummarySentences int `json:"summary_sentences" yaml:"summary_sentences"`

	// MaxSections caps the section title list. Zero lists every top-level section.
	MaxSections int `json:"max_sections" yaml:"max_sections"`

	// MaxRelatedTopics caps the related-topic list (default 10).
	MaxRelatedTopics int `json:"max_related_topics" yaml:"max_related_topics"`

	// MaxSuggestions caps the closest-match list returned for missing pages (default 5).
	MaxSuggestions int `json:"max_suggestions" yaml:"max_suggestions"`

	// SectionMaxChars truncates section content (default 3000).
	SectionMaxChars int `json:"section_max_chars" yaml:"section_max_chars"`

	// MaxRetries is the number of HTTP 429 retries (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ChatBackend identifies which OpenAI-compatible service serves chat completions.
type ChatBackend string

const (
	BackendLocal  ChatBackend = "local"
	BackendOpenAI ChatBackend = "openai"
	BackendAzure  ChatBackend = "azure"
)

// LocalAPIKey is the credential sentinel sent to local servers that ignore it.
const LocalAPIKey = "not-needed"

// Default endpoints per backend. Azure has no default; the endpoint is
// resource specific.
const (
	DefaultLocalURL  = "http://localhost:1234/v1"
	DefaultOpenAIURL = "https://api.openai.com/v1"
)

// ChatConfig describes the chat completion endpoint the agent talks to.
type ChatConfig struct {
	// Backend selects local, openai, or azure.
	Backend ChatBackend `json:"backend" yaml:"backend"`

	// BaseURL is the OpenAI-compatible endpoint (e.g. "http://localhost:1234/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the authentication key. Required for openai and azure.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the model or Azure deployment name.
	Model string `json:"model" yaml:"model"`

	// Temperature is the sampling temperature.
	Temperature float32 `json:"temperature" yaml:"temperature"`

	// APIVersion is the Azure OpenAI API version.
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`

	// Timeout bounds each chat completion request. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// NotesConfig holds settings for the agent's notes filesystem.
type NotesConfig struct {
	// Enabled exposes the notes tools to the agent.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding notes.db.
	Dir string `json:"dir" yaml:"dir"`
}

// ResearchConfig is the complete configuration for one research run. It is
// built once at startup and passed explicitly to every component.
type ResearchConfig struct {
	Chat      ChatConfig      `json:"chat" yaml:"chat"`
	Wikipedia WikipediaConfig `json:"wikipedia" yaml:"wikipedia"`
	Notes     NotesConfig     `json:"notes" yaml:"notes"`

	// Topic is the research subject submitted to the agent.
	Topic string `json:"topic" yaml:"topic"`

	// ReportPath is where the final markdown report is written.
	ReportPath string `json:"report" yaml:"report"`

	// MaxIterations bounds the agent's model/tool loop (default 30).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// SubAgent registers a section-researcher sub-agent as an extra tool.
	SubAgent bool `json:"subagent" yaml:"subagent"`
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *ResearchConfig) ApplyDefaults() {
	if c.Chat.Backend == "" {
		c.Chat.Backend = BackendLocal
	}
	if c.Chat.BaseURL == "" {
		switch c.Chat.Backend {
		case BackendLocal:
			c.Chat.BaseURL = DefaultLocalURL
		case BackendOpenAI:
			c.Chat.BaseURL = DefaultOpenAIURL
		}
	}
	if c.Chat.Backend == BackendLocal && c.Chat.APIKey == "" {
		c.Chat.APIKey = LocalAPIKey
	}
	if c.Chat.Model == "" {
		c.Chat.Model = "qwen2.5-14b-instruct"
	}
	if c.Chat.Backend == BackendAzure && c.Chat.APIVersion == "" {
		c.Chat.APIVersion = "2024-08-01-preview"
	}

	w := &c.Wikipedia
	if w.Timeout <= 0 {
		w.Timeout = 15 * time.Second
	}
	if w.UserAgent == "" {
		w.UserAgent = "wiki-research/0.1"
	}
	if w.Language == "" {
		w.Language = "en"
	}
	if w.SummarySentences <= 0 {
		w.SummarySentences = 10
	}
	if w.MaxRelatedTopics <= 0 {
		w.MaxRelatedTopics = 10
	}
	if w.MaxSuggestions <= 0 {
		w.MaxSuggestions = 5
	}
	if w.SectionMaxChars <= 0 {
		w.SectionMaxChars = 3000
	}
	if w.MaxRetries <= 0 {
		w.MaxRetries = 2
	}

	if c.Notes.Dir == "" {
		c.Notes.Dir = "notes"
	}
	if c.Topic == "" {
		c.Topic = "Quantum computing"
	}
	if c.ReportPath == "" {
		c.ReportPath = "research_report.md"
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 30
	}
}

// Validate checks that the configuration is complete enough to start a run.
// It performs no network access. Failures wrap ErrConfiguration.
func (c *ResearchConfig) Validate() error {
	switch c.Chat.Backend {
	case BackendLocal:
	case BackendOpenAI:
		if strings.TrimSpace(c.Chat.APIKey) == "" {
			return fmt.Errorf("%w: chat.api_key is required for the openai backend (set OPENAI_API_KEY or .secrets/openai-api-key)", ErrConfiguration)
		}
	case BackendAzure:
		if strings.TrimSpace(c.Chat.APIKey) == "" {
			return fmt.Errorf("%w: chat.api_key is required for the azure backend (set AZURE_OPENAI_API_KEY)", ErrConfiguration)
		}
		if strings.TrimSpace(c.Chat.BaseURL) == "" {
			return fmt.Errorf("%w: chat.base_url is required for the azure backend (set AZURE_OPENAI_ENDPOINT)", ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unsupported chat backend %q: use local, openai, or azure", ErrConfiguration, c.Chat.Backend)
	}
	if strings.TrimSpace(c.Chat.BaseURL) == "" {
		return fmt.Errorf("%w: chat.base_url is empty", ErrConfiguration)
	}
	if strings.TrimSpace(c.Chat.Model) == "" {
		return fmt.Errorf("%w: chat.model is empty", ErrConfiguration)
	}
	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		return fmt.Errorf("%w: chat.temperature %.2f out of range [0, 2]", ErrConfiguration, c.Chat.Temperature)
	}
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("%w: topic is empty", ErrConfiguration)
	}
	if strings.TrimSpace(c.ReportPath) == "" {
		return fmt.Errorf("%w: report path is empty", ErrConfiguration)
	}
	return nil
}
