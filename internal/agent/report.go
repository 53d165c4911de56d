// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// reportMarkers are substrings that make an assistant message look like
// the finished report rather than a planning or tool-calling turn.
var reportMarkers = []string{"##", "**Executive Summary**", "Introduction", "Sources"}

// minReportChars is the length a marked message must exceed to count as
// a report.
const minReportChars = 200

// selectReport picks the report among the assistant messages of a run:
// the longest message that carries a report marker and exceeds
// minReportChars, else the last non-empty message. fallback reports
// whether the second rule applied.
func selectReport(messages []string) (report string, fallback bool) {
	best := 0
	for _, m := range messages {
		n := utf8.RuneCountInString(m)
		if n <= minReportChars || !hasMarker(m) {
			continue
		}
		if n > best {
			report, best = m, n
		}
	}
	if report != "" {
		return report, false
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.TrimSpace(messages[i]) != "" {
			return messages[i], true
		}
	}
	return "", true
}

func hasMarker(s string) bool {
	for _, marker := range reportMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// writeReport overwrites path with report, creating parent directories.
func writeReport(path, report string) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// preview returns at most n runes of s, with an ellipsis when cut.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}
