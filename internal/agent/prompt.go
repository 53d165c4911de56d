// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"bytes"
	"fmt"
	"text/template"
)

// researchInstruction is the system prompt of the main agent. The notes
// paragraph is included only when the notes tools are registered.
var researchInstruction = template.Must(template.New("instruction").Parse(`You are an expert research analyst and writer.

Research the topic with the Wikipedia tools, then write a complete markdown report directly in your final answer.

- Use lookup_topic to find articles. When it returns found=false, try one of the suggested titles or rephrase.
- Use lookup_section to read the sections that matter, using the section titles lookup_topic returned.
- Look up several related topics so the report covers more than one article.
{{- if .Notes}}
- Save intermediate findings with write_file (for example /notes/history.md) and re-read them with read_file, ls and grep before writing the report.
{{- end}}
{{- if .SubAgent}}
- Delegate the reading of long sections to section_researcher and use its summary.
{{- end}}

Write the ENTIRE report in your final response. Do not say that you saved it anywhere.

Report format:

# <Topic>

## Executive Summary
Brief overview of key findings

## Introduction
Background and context

## Main Findings
Detailed information organized by subtopics

## Key Insights
Important takeaways

## Sources
- Wikipedia articles consulted, with URLs
`))

// sectionResearcherInstruction is the system prompt of the optional
// sub-agent.
const sectionResearcherInstruction = `You read Wikipedia sections for a research analyst.

Given a request naming an article and what to look for, call lookup_topic and lookup_section as needed and answer with a concise factual summary of what the sections say. Include the article URL. Do not write a full report.`

// taskTemplate is the user message submitted for a run.
var taskTemplate = template.Must(template.New("task").Parse(
	`Research '{{.Topic}}' using Wikipedia and write me a comprehensive report.`))

type instructionData struct {
	Notes    bool
	SubAgent bool
}

func renderInstruction(notes, subAgent bool) (string, error) {
	var buf bytes.Buffer
	if err := researchInstruction.Execute(&buf, instructionData{Notes: notes, SubAgent: subAgent}); err != nil {
		return "", fmt.Errorf("rendering instruction: %w", err)
	}
	return buf.String(), nil
}

func renderTask(topic string) (string, error) {
	var buf bytes.Buffer
	if err := taskTemplate.Execute(&buf, struct{ Topic string }{topic}); err != nil {
		return "", fmt.Errorf("rendering task: %w", err)
	}
	return buf.String(), nil
}
