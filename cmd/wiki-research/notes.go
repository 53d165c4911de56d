// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wiki-research/internal/notes"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Inspect the notes agents saved during research runs",
	Long: `Notes reads the SQLite notes database written by research --notes. Notes
are grouped by run ID; --run defaults to the most recent run.`,
}

var notesRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List run IDs that have notes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openNotes(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Runs(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range runs {
			fmt.Println(id)
		}
		return nil
	},
}

var notesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the notes of a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openNotes(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err := resolveRun(cmd, store)
		if err != nil {
			return err
		}
		infos, err := store.List(cmd.Context(), runID)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No notes.")
			return nil
		}
		for _, info := range infos {
			fmt.Fprintf(os.Stdout, "%8d  %s  %s\n", info.Size, info.UpdatedAt.Format("2006-01-02 15:04:05"), info.Path)
		}
		return nil
	},
}

var notesCatCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print one note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openNotes(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err := resolveRun(cmd, store)
		if err != nil {
			return err
		}
		n, err := store.Read(cmd.Context(), runID, args[0])
		if err != nil {
			return err
		}
		fmt.Println(n.Content)
		return nil
	},
}

var notesGrepCmd = &cobra.Command{
	Use:   "grep <pattern>",
	Short: "Search the notes of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openNotes(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err := resolveRun(cmd, store)
		if err != nil {
			return err
		}
		matches, err := store.Grep(cmd.Context(), runID, args[0])
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Printf("%s:%d: %s\n", m.Path, m.Line, m.Text)
		}
		return nil
	},
}

var notesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search the notes of a run, best match first",
	Long: `Search runs an FTS5 query (words, "phrases", prefix*, AND/OR/NOT) over
the notes of a run and prints the matching paths ranked by relevance.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openNotes(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err := resolveRun(cmd, store)
		if err != nil {
			return err
		}
		paths, err := store.Search(cmd.Context(), runID, args[0])
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func openNotes(cmd *cobra.Command) (*notes.Store, error) {
	dir, _ := cmd.Flags().GetString("notes-dir")
	return notes.Open(dir)
}

// resolveRun returns --run, or the most recent run in the store.
func resolveRun(cmd *cobra.Command, store *notes.Store) (string, error) {
	if id, _ := cmd.Flags().GetString("run"); id != "" {
		return id, nil
	}
	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("no runs have notes yet: run research --notes first")
	}
	return runs[0], nil
}

func init() {
	notesCmd.PersistentFlags().String("notes-dir", "notes", "directory holding notes.db")
	notesCmd.PersistentFlags().String("run", "", "run ID (default: most recent run)")

	notesCmd.AddCommand(notesRunsCmd)
	notesCmd.AddCommand(notesLsCmd)
	notesCmd.AddCommand(notesCatCmd)
	notesCmd.AddCommand(notesGrepCmd)
	notesCmd.AddCommand(notesSearchCmd)

	rootCmd.AddCommand(notesCmd)
}
