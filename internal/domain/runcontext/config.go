// Where: cli/internal/domain/runcontext/config.go
// What: Load per-context run overrides from .github/octopilot.yaml.
// Why: Let repos pin ports, env and volumes for `op run <context>`.
package runcontext

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/meta"
	"sigs.k8s.io/yaml"
)

var ErrConfigNotMapping = errors.New(meta.RunConfigFilename + " must be a YAML object")

// Options are the docker run settings for one context.
type Options struct {
	Ports   []string          `json:"ports,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Volumes []string          `json:"volumes,omitempty"`
}

// Config is the decoded run config.
type Config struct {
	DefaultRepo string             `json:"default_repo,omitempty"`
	Tag         string             `json:"tag,omitempty"`
	Contexts    map[string]Options `json:"contexts,omitempty"`
}

// ConfigPath returns the run config path under repoRoot.
func ConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, filepath.FromSlash(meta.RunConfigFilename))
}

// LoadConfig reads the run config. A missing or empty file yields an empty Config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes run config YAML. Context entries with an unexpected
// shape are skipped; a non-mapping document is an error.
func ParseConfig(data []byte) (Config, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	var raw any
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	if raw == nil {
		return Config{}, nil
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return Config{}, ErrConfigNotMapping
	}

	cfg := Config{}
	if repo, ok := doc["default_repo"].(string); ok {
		cfg.DefaultRepo = strings.TrimRight(strings.TrimSpace(repo), "/")
	}
	if tag, ok := doc["tag"].(string); ok {
		cfg.Tag = strings.TrimSpace(tag)
	}
	contexts, _ := doc["contexts"].(map[string]any)
	for name, entry := range contexts {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if cfg.Contexts == nil {
			cfg.Contexts = map[string]Options{}
		}
		cfg.Contexts[name] = Options{
			Ports:   stringList(fields["ports"]),
			Env:     stringMap(fields["env"]),
			Volumes: stringList(fields["volumes"]),
		}
	}
	return cfg, nil
}

// RepoAndTag returns the configured repo and tag, falling back to fallbackRepo
// and "latest".
func (c Config) RepoAndTag(fallbackRepo string) (string, string) {
	repo := c.DefaultRepo
	if repo == "" {
		repo = fallbackRepo
	}
	tag := c.Tag
	if tag == "" {
		tag = meta.DefaultImageTag
	}
	return repo, tag
}

func stringList(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, scalarString(item))
	}
	return out
}

func stringMap(value any) map[string]string {
	fields, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(fields))
	for key, item := range fields {
		out[key] = scalarString(item)
	}
	return out
}

func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprint(value)
}
