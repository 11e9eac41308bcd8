// Where: cli/internal/command/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/octopilot/pipeline-tools/cli/internal/domain/release"
	"github.com/octopilot/pipeline-tools/cli/internal/domain/runcontext"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/config"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/docker"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/interaction"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
	"github.com/octopilot/pipeline-tools/cli/internal/usecase/localregistry"
	"github.com/octopilot/pipeline-tools/cli/internal/usecase/pipeline"
)

// ToolRunner is every way the CLI starts external tools.
type ToolRunner interface {
	runner.CommandRunner
	runner.StreamRunner
	runner.InputRunner
}

// Dependencies holds all injected dependencies required for CLI command execution.
// Nil fields fall back to the real implementations.
type Dependencies struct {
	Context         context.Context
	Out             io.Writer
	ErrOut          io.Writer
	Getwd           func() (string, error)
	Environ         func() []string
	Runner          ToolRunner
	NewDockerClient func() (docker.DockerClient, error)
	NewManifests    func(ctx context.Context, cfg config.Config) (pipeline.ManifestStore, error)
	Prompter        interaction.Prompter
	Interactive     func() bool
	RepoResolver    func(string) (string, error)
	ResolveRelease  func(dir string, getenv func(string) string) (release.Release, bool)
	FindPort        runcontext.PortFinder
	RegistryProbe   localregistry.ReadinessProbe
}

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	Config          string             `name:"config" env:"OCTOPILOT_PIPELINE_PROPERTIES" help:"Pipeline properties file (KEY=VALUE)"`
	EnvFile         string             `name:"env-file" help:"Path to .env file"`
	Build           BuildCmd           `cmd:"" help:"Build images with skaffold"`
	Push            PushCmd            `cmd:"" help:"Build and push images with skaffold, then write build_result.json"`
	BuildPush       BuildPushCmd       `cmd:"" name:"build-push" help:"Build skaffold artifacts with pack or docker and publish them"`
	WatchDeployment WatchDeploymentCmd `cmd:"" name:"watch-deployment" help:"Wait until a deployment runs the built image and finishes rolling out"`
	PromoteImage    PromoteImageCmd    `cmd:"" name:"promote-image" help:"Copy the built image between environment registries"`
	StartRegistry   StartRegistryCmd   `cmd:"" name:"start-registry" help:"Start the local TLS registry on localhost:5001"`
	Run             RunCmd             `cmd:"" help:"Run a built skaffold context with docker"`
	Version         VersionCmd         `cmd:"" help:"Show version information"`
}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. It returns the exit code.
func Run(args []string, deps Dependencies) int {
	deps = withDefaults(deps)
	out := deps.Out

	// Handle no arguments: show usage
	if len(args) == 0 {
		return runNoArgs(out)
	}

	cli := CLI{}
	parser, err := kong.New(
		&cli,
		kong.Name(cliName()),
		kong.Description("Thin orchestration layer for the container build, push and deploy pipeline."),
		kong.Writers(out, deps.ErrOut),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return exitWithError(deps.ErrOut, err, false)
	}

	ctx, err := parser.Parse(args)
	// Help was already printed; required flags may still be missing.
	if isHelpRequest(args) {
		return 0
	}
	if err != nil {
		return handleParseError(err, deps)
	}

	env, err := loadEnvironment(cli, deps)
	if err != nil {
		return exitWithError(deps.ErrOut, err, false)
	}

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, env); handled {
		return exitCode
	}

	env.errUI.Warn("unknown command")
	return 1
}

type commandHandler func(CLI, *session) int

func dispatchCommand(command string, cli CLI, env *session) (int, bool) {
	exactHandlers := map[string]commandHandler{
		"build":            runBuild,
		"push":             runPush,
		"build-push":       runBuildPush,
		"watch-deployment": runWatchDeployment,
		"promote-image":    runPromoteImage,
		"start-registry":   runStartRegistry,
		"run":              runRun,
		"version":          runVersion,
	}

	// Positional arguments show up as "run <args>".
	name := command
	if fields := strings.Fields(command); len(fields) > 0 {
		name = fields[0]
	}
	if handler, ok := exactHandlers[name]; ok {
		return handler(cli, env), true
	}

	return 1, false
}

// runNoArgs handles the case when the CLI is invoked without arguments.
func runNoArgs(out io.Writer) int {
	cmd := cliName()
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %s <command> [flags]\n", cmd)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands: build, push, build-push, watch-deployment, promote-image, start-registry, run, version")
	fmt.Fprintf(out, "Try: %s --help\n", cmd)
	return 0
}

// handleParseError provides user-friendly error messages for parse failures.
func handleParseError(err error, deps Dependencies) int {
	msg := err.Error()
	if strings.Contains(msg, "expected string value") || strings.Contains(msg, "must be one of") {
		cmd := cliName()
		errUI := newUI(deps.ErrOut, false)
		switch {
		case strings.Contains(msg, "--destination"):
			errUI.Warn("`--destination` expects local, ci, all or auto on push and pp or prod on promote-image.")
			errUI.Info(fmt.Sprintf("Example: %s push --destination ci --push-all", cmd))
			return 1
		case strings.Contains(msg, "--environment"), strings.Contains(msg, "--source"):
			errUI.Warn("Environments are dev, pp or prod.")
			errUI.Info(fmt.Sprintf("Example: %s promote-image --source dev --destination pp", cmd))
			return 1
		case strings.Contains(msg, "--env-file"):
			errUI.Warn("`--env-file` expects a value. Provide a file path.")
			errUI.Info(fmt.Sprintf("Example: %s --env-file .env.ci push", cmd))
			return 1
		}
	}
	return exitWithError(deps.ErrOut, err, false)
}

func isHelpRequest(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func withDefaults(deps Dependencies) Dependencies {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.ErrOut == nil {
		deps.ErrOut = os.Stderr
	}
	if deps.Getwd == nil {
		deps.Getwd = os.Getwd
	}
	if deps.Environ == nil {
		deps.Environ = os.Environ
	}
	if deps.Runner == nil {
		deps.Runner = runner.ExecRunner{In: os.Stdin, Out: deps.Out, ErrOut: deps.ErrOut}
	}
	if deps.NewDockerClient == nil {
		deps.NewDockerClient = docker.NewDockerClient
	}
	if deps.NewManifests == nil {
		deps.NewManifests = newS3ManifestStore
	}
	if deps.Prompter == nil {
		deps.Prompter = interaction.HuhPrompter{}
	}
	if deps.Interactive == nil {
		deps.Interactive = interaction.IsInteractive
	}
	if deps.RepoResolver == nil {
		deps.RepoResolver = config.ResolveRepoRoot
	}
	if deps.ResolveRelease == nil {
		deps.ResolveRelease = release.Resolve
	}
	if deps.FindPort == nil {
		deps.FindPort = func(start int) (int, error) {
			return runcontext.FindFreePort(start, runcontext.DefaultPortSearch)
		}
	}
	return deps
}
