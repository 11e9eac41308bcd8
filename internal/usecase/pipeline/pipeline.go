// Where: cli/internal/usecase/pipeline/pipeline.go
// What: Workflow dependencies shared by build, push, build-push and promote.
// Why: Keep subprocess, output and storage seams injectable for tests.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/buildresult"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/artifactstore"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/ui"
)

// ToolRunner runs external tools either buffered or streamed.
type ToolRunner interface {
	runner.CommandRunner
	runner.StreamRunner
}

// ImageCopier copies an image between two refs.
type ImageCopier interface {
	Copy(ctx context.Context, src, dst string) error
}

// ManifestStore uploads and downloads build manifests.
type ManifestStore interface {
	Publish(ctx context.Context, uri, path string) (artifactstore.Location, error)
	Fetch(ctx context.Context, uri, path string) (buildresult.Manifest, error)
}

// Workflow drives the external build tools.
type Workflow struct {
	Runner        ToolRunner
	UserInterface ui.UserInterface
	Copier        ImageCopier
	// Manifests is optional; it is only needed when a manifest URI is given.
	Manifests ManifestStore
	Now       func() time.Time
}

// NewWorkflow wires a Workflow whose copier shares the same runner.
func NewWorkflow(r ToolRunner, user ui.UserInterface) Workflow {
	return Workflow{
		Runner:        r,
		UserInterface: user,
		Copier:        ChainCopier{Runner: r, UserInterface: user},
		Now:           time.Now,
	}
}

func (w Workflow) ui() ui.UserInterface {
	if w.UserInterface == nil {
		return ui.Discard()
	}
	return w.UserInterface
}

func (w Workflow) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, 0o755)
}
