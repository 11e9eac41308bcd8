// Where: cli/internal/infra/skaffold/artifacts.go
// What: Read build artifacts from skaffold.yaml.
// Why: build-push and run reuse skaffold's artifact list without invoking skaffold.
package skaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoogleContainerTools/skaffold/v2/pkg/skaffold/schema/latest"
	"gopkg.in/yaml.v3"
)

var ErrNoArtifacts = errors.New("no build artifacts in skaffold config")

// Builder identifies how an artifact is built.
type Builder string

const (
	BuilderBuildpacks Builder = "buildpacks"
	BuilderDocker     Builder = "docker"
)

// Artifact is the subset of a skaffold artifact the CLI acts on.
type Artifact struct {
	Image      string
	Context    string
	Builder    Builder
	Pack       string
	Dockerfile string
}

// ContextName returns the name used to select the artifact in `op run`.
func (a Artifact) ContextName() string {
	context := filepath.ToSlash(filepath.Clean(a.Context))
	if context == "." || context == "" {
		return a.Image
	}
	return context
}

// LoadArtifacts reads every document of the skaffold file at path.
func LoadArtifacts(path string) ([]Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	artifacts, err := ParseArtifacts(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return artifacts, nil
}

// ParseArtifacts decodes build.artifacts from each YAML document.
func ParseArtifacts(data []byte) ([]Artifact, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	var out []Artifact
	for {
		var cfg latest.SkaffoldConfig
		err := decoder.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse skaffold config: %w", err)
		}
		for _, artifact := range cfg.Pipeline.Build.Artifacts {
			if artifact == nil || strings.TrimSpace(artifact.ImageName) == "" {
				continue
			}
			out = append(out, convert(artifact))
		}
	}
	if len(out) == 0 {
		return nil, ErrNoArtifacts
	}
	return out, nil
}

// FindByContext returns the artifact whose context (or image) is name.
func FindByContext(artifacts []Artifact, name string) (Artifact, bool) {
	wanted := filepath.ToSlash(filepath.Clean(strings.TrimSpace(name)))
	for _, artifact := range artifacts {
		if artifact.ContextName() == wanted || artifact.Image == name {
			return artifact, true
		}
	}
	return Artifact{}, false
}

func convert(artifact *latest.Artifact) Artifact {
	out := Artifact{
		Image:   strings.TrimSpace(artifact.ImageName),
		Context: artifact.Workspace,
		Builder: BuilderDocker,
	}
	if out.Context == "" {
		out.Context = "."
	}
	if bp := artifact.BuildpackArtifact; bp != nil {
		out.Builder = BuilderBuildpacks
		out.Pack = bp.Builder
	}
	if docker := artifact.DockerArtifact; docker != nil {
		out.Dockerfile = docker.DockerfilePath
	}
	if out.Builder == BuilderDocker && out.Dockerfile == "" {
		out.Dockerfile = "Dockerfile"
	}
	return out
}
