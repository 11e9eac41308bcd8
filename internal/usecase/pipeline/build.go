// Where: cli/internal/usecase/pipeline/build.go
// What: `op build` wrapper around skaffold build.
// Why: Local builds share repo resolution and config flags with push.
package pipeline

import (
	"context"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
)

// BuildRequest configures a local skaffold build.
type BuildRequest struct {
	Dir          string
	SkaffoldFile string
	DefaultRepo  string
	// Flags are extra skaffold flags from config (profile, label, namespace).
	Flags []string
}

// Build runs skaffold build with output streamed to the console.
func (w Workflow) Build(ctx context.Context, req BuildRequest) error {
	if w.Runner == nil {
		return errRunnerNotConfigured
	}
	args := []string{"build"}
	args = appendSkaffoldFile(args, req.SkaffoldFile)
	if repo := trimRepo(req.DefaultRepo); repo != "" {
		args = append(args, "--default-repo", repo)
	}
	args = append(args, req.Flags...)

	w.ui().Step(runner.Describe("skaffold", args...))
	_, err := w.Runner.RunStream(ctx, req.Dir, runner.StreamOptions{}, "skaffold", args...)
	return err
}

func appendSkaffoldFile(args []string, file string) []string {
	if file = strings.TrimSpace(file); file != "" {
		return append(args, "-f", file)
	}
	return args
}

func trimRepo(repo string) string {
	return strings.TrimSuffix(strings.TrimSpace(repo), "/")
}
