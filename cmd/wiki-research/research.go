// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wiki-research/internal/agent"
)

var researchCmd = &cobra.Command{
	Use:   "research [topic]",
	Short: "Research a topic and write a markdown report",
	Long: `Research submits one task to the agent: research the topic on Wikipedia
and write a comprehensive report. The agent decides which articles and
sections to read. The final report is written to --report (overwriting any
existing file) together with a run manifest next to it.

Credentials for the openai and azure backends come from --api-key,
WIKI_RESEARCH_CHAT_API_KEY, OPENAI_API_KEY / AZURE_OPENAI_API_KEY, or
.secrets/openai-api-key / .secrets/azure-openai-api-key, in that order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		viper.Set("topic", args[0])
	}
	cfg := researchConfig(viper.GetViper(), os.Getenv, loadedSecrets)

	_, err := agent.Run(cmd.Context(), cfg, os.Stdout)
	return err
}

func init() {
	f := researchCmd.Flags()
	f.String("topic", "Quantum computing", "research topic")
	f.String("report", "research_report.md", "path of the markdown report")
	f.String("backend", "local", "chat backend: local, openai, or azure")
	f.String("base-url", "", "OpenAI-compatible endpoint (default depends on backend)")
	f.String("api-key", "", "chat API key (not needed for local)")
	f.String("model", "", "model or Azure deployment name (default qwen2.5-14b-instruct)")
	f.Float64("temperature", 0.7, "sampling temperature")
	f.Duration("timeout", 0, "per-request chat timeout (0 = none)")
	f.Int("max-iterations", 30, "maximum model turns before the run is abandoned")
	f.Bool("notes", false, "give the agent a notes filesystem backed by SQLite")
	f.String("notes-dir", "notes", "directory holding notes.db")
	f.Bool("subagent", false, "register a section-researcher sub-agent as a tool")

	for key, flag := range map[string]string{
		"topic":            "topic",
		"report":           "report",
		"chat.backend":     "backend",
		"chat.base_url":    "base-url",
		"chat.api_key":     "api-key",
		"chat.model":       "model",
		"chat.temperature": "temperature",
		"chat.timeout":     "timeout",
		"max_iterations":   "max-iterations",
		"notes.enabled":    "notes",
		"notes.dir":        "notes-dir",
		"subagent":         "subagent",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(researchCmd)
}
