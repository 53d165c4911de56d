// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/wiki-research/internal/secrets"
	"github.com/pdiddy/wiki-research/pkg/types"
)

// backendEnv lists the conventional environment variables each backend
// reads when the WIKI_RESEARCH_* keys, the config file and the flags leave
// a field empty.
var backendEnv = map[types.ChatBackend]struct {
	baseURL, apiKey, model, apiVersion string
}{
	types.BackendLocal:  {baseURL: "LM_STUDIO_URL", model: "LM_STUDIO_MODEL"},
	types.BackendOpenAI: {baseURL: "OPENAI_BASE_URL", apiKey: "OPENAI_API_KEY", model: "OPENAI_MODEL"},
	types.BackendAzure: {
		baseURL:    "AZURE_OPENAI_ENDPOINT",
		apiKey:     "AZURE_OPENAI_API_KEY",
		model:      "AZURE_OPENAI_DEPLOYMENT_NAME",
		apiVersion: "AZURE_OPENAI_API_VERSION",
	},
}

// researchConfig assembles the run configuration from v, falling back to
// the backend's conventional environment variables and then to the
// loaded secrets. Defaults are applied; validation is left to the caller.
func researchConfig(v *viper.Viper, getenv func(string) string, stored map[string]string) types.ResearchConfig {
	cfg := types.ResearchConfig{
		Chat: types.ChatConfig{
			Backend:     types.ChatBackend(v.GetString("chat.backend")),
			BaseURL:     v.GetString("chat.base_url"),
			APIKey:      v.GetString("chat.api_key"),
			Model:       v.GetString("chat.model"),
			Temperature: float32(v.GetFloat64("chat.temperature")),
			APIVersion:  v.GetString("chat.api_version"),
			Timeout:     v.GetDuration("chat.timeout"),
		},
		Wikipedia: wikipediaConfig(v),
		Notes: types.NotesConfig{
			Enabled: v.GetBool("notes.enabled"),
			Dir:     v.GetString("notes.dir"),
		},
		Topic:         v.GetString("topic"),
		ReportPath:    v.GetString("report"),
		MaxIterations: v.GetInt("max_iterations"),
		SubAgent:      v.GetBool("subagent"),
	}
	if cfg.Chat.Backend == "" {
		cfg.Chat.Backend = types.BackendLocal
	}

	if env, ok := backendEnv[cfg.Chat.Backend]; ok {
		fill := func(field *string, name string) {
			if *field == "" && name != "" {
				*field = getenv(name)
			}
		}
		fill(&cfg.Chat.BaseURL, env.baseURL)
		fill(&cfg.Chat.APIKey, env.apiKey)
		fill(&cfg.Chat.Model, env.model)
		fill(&cfg.Chat.APIVersion, env.apiVersion)
	}
	if cfg.Chat.APIKey == "" {
		cfg.Chat.APIKey = secrets.APIKeyFor(stored, cfg.Chat.Backend)
	}

	cfg.ApplyDefaults()
	return cfg
}

func wikipediaConfig(v *viper.Viper) types.WikipediaConfig {
	return types.WikipediaConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   v.GetDuration("wikipedia.timeout"),
			UserAgent: v.GetString("wikipedia.user_agent"),
		},
		Language:         v.GetString("wikipedia.language"),
		SummarySentences: v.GetInt("wikipedia.summary_sentences"),
		MaxSections:      v.GetInt("wikipedia.max_sections"),
		MaxRelatedTopics: v.GetInt("wikipedia.max_related_topics"),
		MaxSuggestions:   v.GetInt("wikipedia.max_suggestions"),
		SectionMaxChars:  v.GetInt("wikipedia.section_max_chars"),
		MaxRetries:       v.GetInt("wikipedia.max_retries"),
	}
}
