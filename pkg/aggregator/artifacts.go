package aggregator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/campusops/wayfind/pkg/locations"
)

// Artifact file names, one per index collection.
const (
	LocationsArtifact = "locations.json"
	ServicesArtifact  = "services.json"
)

// WriteArtifacts persists the run's two resource collections so build and
// sync can run as separate steps.
func WriteArtifacts(dir string, result *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}
	if err := writeJSON(filepath.Join(dir, LocationsArtifact), result.Locations); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ServicesArtifact), result.Services)
}

// LoadArtifacts reads back a previous run's resource collections.
func LoadArtifacts(dir string) (locs, services []locations.Resource, err error) {
	if err = readJSON(filepath.Join(dir, LocationsArtifact), &locs); err != nil {
		return nil, nil, err
	}
	if err = readJSON(filepath.Join(dir, ServicesArtifact), &services); err != nil {
		return nil, nil, err
	}
	return locs, services, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
