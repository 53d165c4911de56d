// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wiki-research/pkg/types"
)

// ManifestPath returns where the run manifest for reportPath is written.
func ManifestPath(reportPath string) string {
	return reportPath + ".run.yaml"
}

// WriteManifest saves m as YAML at ManifestPath(m.ReportPath).
func WriteManifest(m *types.RunManifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling run manifest: %w", err)
	}
	path := ManifestPath(m.ReportPath)
	if err := ensureParent(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing run manifest %s: %w", path, err)
	}
	return nil
}

// LoadManifest reads a run manifest written by WriteManifest.
func LoadManifest(path string) (*types.RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run manifest: %w", err)
	}
	var m types.RunManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing run manifest %s: %w", path, err)
	}
	return &m, nil
}
