// Where: cli/internal/domain/buildresult/store.go
// What: Read/write build_result.json.
// Why: Hand the built refs from the push step to later pipeline invocations.
package buildresult

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/octopilot/pipeline-tools/cli/internal/meta"
)

// ResolvePath maps a user-supplied location to the manifest file. An empty value
// means the working directory; a directory gets the default filename appended.
func ResolvePath(location, workDir string) string {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return filepath.Join(workDir, meta.BuildResultFilename)
	}
	if !filepath.IsAbs(trimmed) && workDir != "" {
		trimmed = filepath.Join(workDir, trimmed)
	}
	if info, err := os.Stat(trimmed); err == nil && info.IsDir() {
		return filepath.Join(trimmed, meta.BuildResultFilename)
	}
	return trimmed
}

// Read loads the manifest at path.
func Read(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Manifest{}, fmt.Errorf("%w: %s (run 'push' first)", ErrManifestNotFound, path)
		}
		return Manifest{}, fmt.Errorf("read %s: %w", path, err)
	}
	manifest, err := Decode(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

// Decode parses manifest JSON. Elements may be {"tag": ...} objects or bare strings.
func Decode(data []byte) (Manifest, error) {
	var document any
	if err := json.Unmarshal(data, &document); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}
	root, ok := document.(map[string]any)
	if !ok {
		return Manifest{}, fmt.Errorf("%w: expected a JSON object", ErrManifestInvalid)
	}
	rawBuilds, ok := root["builds"]
	if !ok || rawBuilds == nil {
		return Manifest{}, fmt.Errorf("%w: missing 'builds'", ErrManifestNoBuilds)
	}
	if list, isList := rawBuilds.([]any); isList && len(list) == 0 {
		return Manifest{}, fmt.Errorf("%w: 'builds' is empty", ErrManifestNoBuilds)
	}

	schema, err := loadSchema()
	if err != nil {
		return Manifest{}, fmt.Errorf("load manifest schema: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}

	list := rawBuilds.([]any)
	manifest := Manifest{Builds: make([]Build, 0, len(list))}
	for _, item := range list {
		switch entry := item.(type) {
		case string:
			manifest.Builds = append(manifest.Builds, NewBuild(entry))
		case map[string]any:
			tag, _ := entry["tag"].(string)
			build := NewBuild(tag)
			if name, _ := entry["imageName"].(string); strings.TrimSpace(name) != "" {
				build.ImageName = strings.TrimSpace(name)
			}
			manifest.Builds = append(manifest.Builds, build)
		}
	}
	return manifest, nil
}

// Write replaces the manifest at path atomically.
func Write(path string, manifest Manifest) error {
	if len(manifest.Builds) == 0 {
		return ErrManifestNoBuilds
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode build manifest: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
