// Where: cli/internal/domain/destination/registry_file.go
// What: Load the .registry destination file.
// Why: Keep push destinations (local dev registry and CI registries) in the repo.
package destination

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/meta"
	"gopkg.in/yaml.v3"
)

// Set is the interpolated content of a .registry file.
type Set struct {
	Local string
	CI    []string
}

// FilePath returns the .registry path inside dir.
func FilePath(dir string) string {
	return filepath.Join(dir, meta.RegistryFilename)
}

// LoadFile reads a .registry file. A missing file yields an empty Set.
func LoadFile(path string, lookup LookupFunc) (Set, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Set{}, false, nil
		}
		return Set{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	set, err := Parse(data, lookup)
	if err != nil {
		return Set{}, true, fmt.Errorf("%s: %w", path, err)
	}
	return set, true, nil
}

// Parse decodes .registry YAML:
//
//	local: localhost:${REGISTRY_PORT:-5001}
//	ci:
//	  - ghcr.io/${GITHUB_REPOSITORY_OWNER}
//	  - url: europe-docker.pkg.dev/proj/images/
//
// "destinations" is accepted when "ci" is absent or empty.
func Parse(data []byte, lookup LookupFunc) (Set, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Set{}, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Set{}, nil
	}
	root := doc.Content[0]
	if root.Kind == 0 || (root.Kind == yaml.ScalarNode && root.Tag == "!!null") {
		return Set{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return Set{}, ErrRegistryNotMapping
	}

	var raw map[string]any
	if err := root.Decode(&raw); err != nil {
		return Set{}, fmt.Errorf("decode .registry: %w", err)
	}

	set := Set{}
	if local, ok := raw["local"]; ok && local != nil {
		value, err := normalizeEntry(local, lookup)
		if err != nil {
			return Set{}, err
		}
		set.Local = value
	}

	ciRaw := raw["ci"]
	if isEmptyValue(ciRaw) {
		ciRaw = raw["destinations"]
	}
	if isEmptyValue(ciRaw) {
		return set, nil
	}
	entries, ok := ciRaw.([]any)
	if !ok {
		return Set{}, ErrCINotList
	}
	for _, entry := range entries {
		value, err := normalizeEntry(entry, lookup)
		if err != nil {
			return Set{}, err
		}
		set.CI = append(set.CI, value)
	}
	return set, nil
}

func normalizeEntry(entry any, lookup LookupFunc) (string, error) {
	switch value := entry.(type) {
	case string:
		return cleanEntry(value, lookup), nil
	case map[string]any:
		if url, ok := value["url"]; ok && url != nil {
			return cleanEntry(fmt.Sprint(url), lookup), nil
		}
	}
	return "", fmt.Errorf("%w: %v", ErrInvalidEntry, entry)
}

func cleanEntry(value string, lookup LookupFunc) string {
	trimmed := strings.TrimRight(strings.TrimSpace(value), "/")
	return strings.TrimRight(Interpolate(trimmed, lookup), "/")
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case string:
		return v == ""
	case map[string]any:
		return len(v) == 0
	case bool:
		return !v
	}
	return false
}
