// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunManifest records what a research run did. It is written as YAML next
// to the report.
type RunManifest struct {
	RunID      string      `json:"run_id" yaml:"run_id"`
	Topic      string      `json:"topic" yaml:"topic"`
	Backend    ChatBackend `json:"backend" yaml:"backend"`
	Model      string      `json:"model" yaml:"model"`
	ReportPath string      `json:"report" yaml:"report"`
	StartedAt  time.Time   `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time   `json:"finished_at" yaml:"finished_at"`

	// ReportChars and ReportWords describe the saved report.
	ReportChars int `json:"report_chars" yaml:"report_chars"`
	ReportWords int `json:"report_words" yaml:"report_words"`

	// FromFallback is true when no message looked like a report and the
	// last assistant message was saved instead.
	FromFallback bool `json:"from_fallback" yaml:"from_fallback"`

	// ToolCalls counts invocations per tool name.
	ToolCalls map[string]int `json:"tool_calls" yaml:"tool_calls"`

	// ModelTurns counts assistant messages produced by the runtime.
	ModelTurns int `json:"model_turns" yaml:"model_turns"`

	// Error is set when the run failed after the manifest was started.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
