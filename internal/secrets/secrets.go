// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads chat backend credentials from a directory of
// plain-text files. The filename is the key name and the trimmed file
// contents are the value. Environment variables and flags take precedence;
// these files are the fallback.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/wiki-research/pkg/types"
)

// DefaultDir is where the CLI looks for secret files.
const DefaultDir = ".secrets/"

// Key file names.
const (
	OpenAIKey      = "openai-api-key"
	AzureOpenAIKey = "azure-openai-api-key"
)

// APIKeyFor returns the stored key for backend, or "" when there is none.
// The local backend never reads a secret.
func APIKeyFor(secrets map[string]string, backend types.ChatBackend) string {
	switch backend {
	case types.BackendOpenAI:
		return secrets[OpenAIKey]
	case types.BackendAzure:
		if k := secrets[AzureOpenAIKey]; k != "" {
			return k
		}
		return secrets[OpenAIKey]
	}
	return ""
}

// Names returns the loaded key names in sorted order, for logging which
// secrets were found without printing their values.
func Names(secrets map[string]string) []string {
	names := make([]string, 0, len(secrets))
	for k := range secrets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
