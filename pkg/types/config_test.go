// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c ResearchConfig
	c.ApplyDefaults()

	assert.Equal(t, BackendLocal, c.Chat.Backend)
	assert.Equal(t, DefaultLocalURL, c.Chat.BaseURL)
	assert.Equal(t, LocalAPIKey, c.Chat.APIKey)
	assert.Equal(t, "qwen2.5-14b-instruct", c.Chat.Model)
	assert.Empty(t, c.Chat.APIVersion)

	assert.Equal(t, 15*time.Second, c.Wikipedia.Timeout)
	assert.Equal(t, "wiki-research/0.1", c.Wikipedia.UserAgent)
	assert.Equal(t, "en", c.Wikipedia.Language)
	assert.Equal(t, 10, c.Wikipedia.SummarySentences)
	assert.Equal(t, 0, c.Wikipedia.MaxSections)
	assert.Equal(t, 3000, c.Wikipedia.SectionMaxChars)

	assert.Equal(t, "notes", c.Notes.Dir)
	assert.Equal(t, "Quantum computing", c.Topic)
	assert.Equal(t, "research_report.md", c.ReportPath)
	assert.Equal(t, 30, c.MaxIterations)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	c := ResearchConfig{
		Chat:          ChatConfig{Backend: BackendOpenAI, APIKey: "sk-1", Model: "gpt-4o"},
		Wikipedia:     WikipediaConfig{Language: "de", SectionMaxChars: 800},
		Topic:         "Rhein",
		MaxIterations: 5,
	}
	c.ApplyDefaults()

	assert.Equal(t, DefaultOpenAIURL, c.Chat.BaseURL)
	assert.Equal(t, "sk-1", c.Chat.APIKey)
	assert.Equal(t, "gpt-4o", c.Chat.Model)
	assert.Equal(t, "de", c.Wikipedia.Language)
	assert.Equal(t, 800, c.Wikipedia.SectionMaxChars)
	assert.Equal(t, "Rhein", c.Topic)
	assert.Equal(t, 5, c.MaxIterations)
}

func TestApplyDefaults_AzureHasNoEndpoint(t *testing.T) {
	c := ResearchConfig{Chat: ChatConfig{Backend: BackendAzure}}
	c.ApplyDefaults()

	assert.Empty(t, c.Chat.BaseURL)
	assert.Empty(t, c.Chat.APIKey)
	assert.Equal(t, "2024-08-01-preview", c.Chat.APIVersion)
}

func TestValidate(t *testing.T) {
	valid := func() ResearchConfig {
		var c ResearchConfig
		c.ApplyDefaults()
		c.Chat.Temperature = 0.7
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *ResearchConfig)
		wantErr string
	}{
		{name: "local defaults", mutate: func(c *ResearchConfig) {}},
		{
			name:   "openai with key",
			mutate: func(c *ResearchConfig) { c.Chat.Backend = BackendOpenAI; c.Chat.APIKey = "sk-1" },
		},
		{
			name:    "openai without key",
			mutate:  func(c *ResearchConfig) { c.Chat.Backend = BackendOpenAI; c.Chat.APIKey = " " },
			wantErr: "required for the openai backend",
		},
		{
			name:    "azure without endpoint",
			mutate:  func(c *ResearchConfig) { c.Chat.Backend = BackendAzure; c.Chat.APIKey = "az"; c.Chat.BaseURL = "" },
			wantErr: "AZURE_OPENAI_ENDPOINT",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *ResearchConfig) { c.Chat.Backend = "bedrock" },
			wantErr: `unsupported chat backend "bedrock"`,
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *ResearchConfig) { c.Chat.Temperature = 2.5 },
			wantErr: "out of range",
		},
		{
			name:    "blank topic",
			mutate:  func(c *ResearchConfig) { c.Topic = "  " },
			wantErr: "topic is empty",
		},
		{
			name:    "empty model",
			mutate:  func(c *ResearchConfig) { c.Chat.Model = "" },
			wantErr: "chat.model is empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSectionNotFoundError(t *testing.T) {
	err := error(&SectionNotFoundError{
		PageTitle:    "Quantum computing",
		SectionTitle: "Hardware",
		Available:    []string{"History", "Applications"},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "History, Applications")
}
