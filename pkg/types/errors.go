// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by the lookup adapter, the tool layer and the
// bootstrap. Callers test with errors.Is.
var (
	// ErrEmptyQuery rejects an empty topic, page or section argument.
	ErrEmptyQuery = errors.New("empty query")

	// ErrNotFound means no matching page or section, and no alternative.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable means the upstream service could not be reached or
	// returned an unusable response.
	ErrUnavailable = errors.New("service unavailable")

	// ErrConfiguration means the run cannot start: missing credential,
	// unknown backend, or an unusable endpoint.
	ErrConfiguration = errors.New("configuration error")

	// ErrRuntimeFailure means the agent runtime failed or produced no output.
	ErrRuntimeFailure = errors.New("agent runtime failure")
)

// SectionNotFoundError reports a section title absent from a page's
// section tree. It wraps ErrNotFound.
type SectionNotFoundError struct {
	PageTitle    string
	SectionTitle string

	// Available lists every section title on the page, in page order.
	Available []string
}

func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("section %q not found in page %q (available: %s)",
		e.SectionTitle, e.PageTitle, strings.Join(e.Available, ", "))
}

// Unwrap lets errors.Is(err, ErrNotFound) match.
func (e *SectionNotFoundError) Unwrap() error { return ErrNotFound }
