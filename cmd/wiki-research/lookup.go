// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wiki-research/internal/wikipedia"
	"github.com/pdiddy/wiki-research/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Run the agent's Wikipedia lookups directly",
	Long: `Lookup calls the same adapter the agent uses, without a model in the loop.
Results are printed as YAML, or JSON with --json.`,
}

// --- topic subcommand ---

var lookupTopicCmd = &cobra.Command{
	Use:   "topic <query>",
	Short: "Resolve a topic to an article summary, sections and related topics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sentences, _ := cmd.Flags().GetInt("sentences")
		client := wikipedia.NewClient(wikipediaConfig(viper.GetViper()))

		res, err := client.LookupTopic(cmd.Context(), strings.Join(args, " "), wikipedia.Sentences(sentences))
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "no article or close match for %q\n", strings.Join(args, " "))
			}
			return err
		}
		return printResult(cmd, os.Stdout, res)
	},
}

// --- section subcommand ---

var lookupSectionCmd = &cobra.Command{
	Use:   "section <page> <section>",
	Short: "Print the text of one section of an article",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := wikipedia.NewClient(wikipediaConfig(viper.GetViper()))

		res, err := client.LookupSection(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printResult(cmd, os.Stdout, res)
	},
}

func printResult(cmd *cobra.Command, w io.Writer, v any) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	lookupCmd.PersistentFlags().Bool("json", false, "output results as JSON")
	lookupCmd.PersistentFlags().String("language", "en", "Wikipedia language edition")
	_ = viper.BindPFlag("wikipedia.language", lookupCmd.PersistentFlags().Lookup("language"))

	lookupTopicCmd.Flags().Int("sentences", 0, "summary sentences (0 = configured default)")

	lookupCmd.AddCommand(lookupTopicCmd)
	lookupCmd.AddCommand(lookupSectionCmd)

	rootCmd.AddCommand(lookupCmd)
}
