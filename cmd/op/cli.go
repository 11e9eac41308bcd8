// Where: cli/cmd/op/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"context"
	"os"

	"github.com/octopilot/pipeline-tools/cli/internal/command"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/config"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/docker"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/interaction"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
)

var (
	getwd           = os.Getwd
	newDockerClient = docker.NewDockerClient
)

// buildDependencies constructs the runtime dependencies required by the CLI.
// The docker client is created on demand by the commands that need it.
func buildDependencies(ctx context.Context) (command.Dependencies, error) {
	if _, err := getwd(); err != nil {
		return command.Dependencies{}, err
	}

	return command.Dependencies{
		Context:         ctx,
		Out:             os.Stdout,
		ErrOut:          os.Stderr,
		Getwd:           getwd,
		Environ:         os.Environ,
		Runner:          runner.ExecRunner{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr},
		NewDockerClient: newDockerClient,
		Prompter:        interaction.HuhPrompter{},
		Interactive:     interaction.IsInteractive,
		RepoResolver:    config.ResolveRepoRoot,
	}, nil
}
