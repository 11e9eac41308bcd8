// Where: cli/internal/usecase/runlocal/run.go
// What: `op run`: list skaffold contexts or run one built image with docker.
// Why: Developers run what the pipeline built without writing docker flags.
package runlocal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/runcontext"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/docker"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/interaction"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/skaffold"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/ui"
	"github.com/octopilot/pipeline-tools/cli/internal/meta"
)

const usage = "Usage: op run context list  |  op run <context>"

var (
	ErrUsage          = errors.New(usage)
	ErrUnknownContext = errors.New("unknown context")
	ErrNoContexts     = errors.New("no contexts defined")
)

// Request configures one `op run` invocation.
type Request struct {
	Args      []string
	Dir       string
	Artifacts []skaffold.Artifact
	// RepoRoot holds .github/octopilot.yaml.
	RepoRoot string
	// FallbackRepo is used when the run config has no default_repo.
	FallbackRepo string
}

// Workflow runs built contexts locally.
type Workflow struct {
	Runner        runner.CommandRunner
	Docker        docker.DockerClient
	UserInterface ui.UserInterface
	Prompter      interaction.Prompter
	Interactive   bool
	FindPort      runcontext.PortFinder
}

// Run dispatches on the positional arguments.
func (w Workflow) Run(ctx context.Context, req Request) error {
	switch {
	case len(req.Args) == 0:
		if !w.Interactive || w.Prompter == nil {
			w.ui().Info(usage)
			return nil
		}
		name, err := w.selectContext(req.Artifacts)
		if err != nil {
			return err
		}
		return w.runContext(ctx, req, name)
	case len(req.Args) == 2 && req.Args[0] == "context" && req.Args[1] == "list":
		w.ListContexts(req.Artifacts)
		return nil
	case len(req.Args) == 1:
		return w.runContext(ctx, req, req.Args[0])
	}
	return ErrUsage
}

// ListContexts prints every artifact context.
func (w Workflow) ListContexts(artifacts []skaffold.Artifact) {
	w.ui().Info("Contexts (use: op run <context>):")
	for _, name := range contextNames(artifacts) {
		w.ui().Info("  " + name)
	}
}

func (w Workflow) selectContext(artifacts []skaffold.Artifact) (string, error) {
	names := contextNames(artifacts)
	if len(names) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoContexts, meta.SkaffoldFilename)
	}
	options := make([]interaction.SelectOption, 0, len(names))
	for _, name := range names {
		options = append(options, interaction.SelectOption{Label: name, Value: name})
	}
	return w.Prompter.SelectValue("Context to run", options)
}

func (w Workflow) runContext(ctx context.Context, req Request, name string) error {
	if w.Runner == nil {
		return errors.New("runlocal: command runner is not configured")
	}
	artifact, ok := skaffold.FindByContext(req.Artifacts, name)
	if !ok {
		return fmt.Errorf(`%w: %s. Use "op run context list" to list contexts.`, ErrUnknownContext, name)
	}

	cfg, err := runcontext.LoadConfig(runcontext.ConfigPath(req.RepoRoot))
	if err != nil {
		return err
	}
	fallback := strings.TrimSpace(req.FallbackRepo)
	if fallback == "" {
		fallback = meta.DefaultLocalRepo
	}
	repo, tag := cfg.RepoAndTag(fallback)
	ref := repo + "/" + artifact.Image + ":" + tag

	contextDir := artifact.Context
	if !filepath.IsAbs(contextDir) {
		contextDir = filepath.Join(req.Dir, contextDir)
	}
	opts, err := runcontext.Resolve(cfg, name, contextDir, w.FindPort)
	if err != nil {
		return err
	}

	w.reportMissingImage(ctx, ref)
	args := dockerRunArgs(opts, ref, w.Interactive)
	for _, port := range opts.Ports {
		if host, _, ok := strings.Cut(port, ":"); ok {
			w.ui().Info("Mapped to http://localhost:" + host)
		}
	}
	w.ui().Step(runner.Describe("docker", args...))
	return w.Runner.Run(ctx, req.Dir, "docker", args...)
}

// reportMissingImage notes when docker will have to pull the image first.
func (w Workflow) reportMissingImage(ctx context.Context, ref string) {
	if w.Docker == nil {
		return
	}
	present, err := docker.HasImage(ctx, w.Docker, ref)
	if err != nil || present {
		return
	}
	w.ui().Info(fmt.Sprintf("Image %s is not present locally; docker will pull it.", ref))
}

func (w Workflow) ui() ui.UserInterface {
	if w.UserInterface == nil {
		return ui.Discard()
	}
	return w.UserInterface
}

func dockerRunArgs(opts runcontext.Options, ref string, interactive bool) []string {
	args := []string{"run", "--rm"}
	if interactive {
		args = append(args, "-it")
	}
	for _, port := range opts.Ports {
		args = append(args, "-p", port)
	}
	keys := make([]string, 0, len(opts.Env))
	for key := range opts.Env {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		args = append(args, "-e", key+"="+opts.Env[key])
	}
	for _, volume := range opts.Volumes {
		args = append(args, "-v", volume)
	}
	return append(args, ref)
}

func contextNames(artifacts []skaffold.Artifact) []string {
	names := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		name := artifact.ContextName()
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}
