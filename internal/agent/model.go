// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/pdiddy/wiki-research/pkg/types"
)

// NewChatModel builds the OpenAI-compatible chat model for cfg. It makes
// no network call; the endpoint is first contacted by the agent run.
// hc may be nil.
func NewChatModel(ctx context.Context, cfg types.ChatConfig, hc *http.Client) (model.ToolCallingChatModel, error) {
	temperature := cfg.Temperature
	mc := &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: &temperature,
		Timeout:     cfg.Timeout,
		HTTPClient:  hc,
	}
	if cfg.Backend == types.BackendAzure {
		mc.ByAzure = true
		mc.APIVersion = cfg.APIVersion
	}

	cm, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("%w: creating %s chat model: %v", types.ErrConfiguration, cfg.Backend, err)
	}
	return cm, nil
}
