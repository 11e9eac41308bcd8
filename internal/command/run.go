// Where: cli/internal/command/run.go
// What: run command handler.
// Why: Run a built skaffold context locally with docker.
package command

import (
	"fmt"
	"path/filepath"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/destination"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/docker"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/skaffold"
	"github.com/octopilot/pipeline-tools/cli/internal/usecase/runlocal"
)

type RunCmd struct {
	Args         []string `arg:"" optional:"" help:"\"context list\" or a context name"`
	SkaffoldFile string   `name:"skaffold-file" default:"skaffold.yaml" help:"Skaffold config listing the artifacts"`
}

func runRun(cli CLI, env *session) int {
	cmd := cli.Run
	skaffoldPath := env.path(cmd.SkaffoldFile)
	artifacts, err := skaffold.LoadArtifacts(skaffoldPath)
	if err != nil {
		return env.fail(err)
	}

	root := env.repoRoot()
	set, _, err := destination.LoadFile(destination.FilePath(root), env.cfg.Lookup)
	if err != nil {
		return env.fail(err)
	}

	var client docker.DockerClient
	if c, closer, err := env.dockerClient(); err != nil {
		env.errUI.Warn(fmt.Sprintf("Warning: %v", err))
	} else {
		client = c
		if closer != nil {
			defer closer.Close()
		}
	}

	wf := runlocal.Workflow{
		Runner:        env.deps.Runner,
		Docker:        client,
		UserInterface: env.ui,
		Prompter:      env.deps.Prompter,
		Interactive:   env.interactive(),
		FindPort:      env.deps.FindPort,
	}
	err = wf.Run(env.ctx, runlocal.Request{
		Args:         cmd.Args,
		Dir:          filepath.Dir(skaffoldPath),
		Artifacts:    artifacts,
		RepoRoot:     root,
		FallbackRepo: firstNonEmpty(env.cfg.DefaultRepo(), set.Local),
	})
	if err != nil {
		return env.fail(err)
	}
	return 0
}
