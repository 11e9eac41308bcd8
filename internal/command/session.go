// Where: cli/internal/command/session.go
// What: Per-invocation state shared by command handlers.
// Why: Load env files and pipeline config once, then hand handlers a ready context.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/octopilot/pipeline-tools/cli/internal/constants"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/artifactstore"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/config"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/docker"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/ui"
	"github.com/octopilot/pipeline-tools/cli/internal/usecase/pipeline"
)

var errDockerNotConfigured = errors.New("docker client is not configured")

// session carries what every handler needs after flags are parsed.
type session struct {
	ctx    context.Context
	deps   Dependencies
	cfg    config.Config
	dir    string
	out    io.Writer
	errOut io.Writer
	ui     ui.UserInterface
	errUI  ui.UserInterface
}

// loadEnvironment applies the env file, then builds the pipeline config from
// the properties file and the process environment.
func loadEnvironment(cli CLI, deps Dependencies) (*session, error) {
	dir, err := deps.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working dir: %w", err)
	}
	errUI := newUI(deps.ErrOut, false)

	applyEnvFile(cli.EnvFile, dir, errUI)

	environ := deps.Environ()
	propertiesPath := strings.TrimSpace(cli.Config)
	if propertiesPath == "" {
		// The env file may have set the properties override.
		propertiesPath = lookupEnviron(environ, constants.EnvPipelineProperties)
	}
	if propertiesPath != "" && !filepath.IsAbs(propertiesPath) {
		propertiesPath = filepath.Join(dir, propertiesPath)
	}
	cfg, err := config.Load(propertiesPath, environ)
	if err != nil {
		return nil, err
	}

	return &session{
		ctx:    deps.Context,
		deps:   deps,
		cfg:    cfg,
		dir:    dir,
		out:    deps.Out,
		errOut: deps.ErrOut,
		ui:     newUI(deps.Out, !cfg.InCI()),
		errUI:  errUI,
	}, nil
}

// applyEnvFile loads --env-file, or .env in dir when present. Values already
// set in the process environment win.
func applyEnvFile(envFile, dir string, errUI ui.UserInterface) {
	if path := strings.TrimSpace(envFile); path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if err := godotenv.Load(path); err != nil {
			errUI.Warn(fmt.Sprintf("Warning: failed to load env file %s: %v", envFile, err))
		}
		return
	}

	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			errUI.Warn(fmt.Sprintf("Warning: failed to stat .env: %v", err))
		}
		return
	}
	if err := godotenv.Load(path); err != nil {
		errUI.Warn(fmt.Sprintf("Warning: failed to load .env: %v", err))
	}
}

func lookupEnviron(environ []string, key string) string {
	value := ""
	for _, entry := range environ {
		if k, v, ok := strings.Cut(entry, "="); ok && k == key {
			value = strings.TrimSpace(v)
		}
	}
	return value
}

// repoRoot returns the git root above the working dir, or the working dir.
func (s *session) repoRoot() string {
	root, err := s.deps.RepoResolver(s.dir)
	if err != nil || root == "" {
		return s.dir
	}
	return root
}

// path resolves a user-supplied path against the working dir.
func (s *session) path(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || filepath.IsAbs(value) {
		return value
	}
	return filepath.Join(s.dir, value)
}

func (s *session) interactive() bool {
	return !s.cfg.InCI() && s.deps.Interactive()
}

// workflow builds the pipeline workflow; the manifest store is attached only
// when an object store URI is used.
func (s *session) workflow(storeURI string) (pipeline.Workflow, error) {
	wf := pipeline.NewWorkflow(s.deps.Runner, s.ui)
	if strings.TrimSpace(storeURI) == "" {
		return wf, nil
	}
	store, err := s.deps.NewManifests(s.ctx, s.cfg)
	if err != nil {
		return pipeline.Workflow{}, err
	}
	wf.Manifests = store
	return wf, nil
}

func (s *session) dockerClient() (docker.DockerClient, io.Closer, error) {
	if s.deps.NewDockerClient == nil {
		return nil, nil, errDockerNotConfigured
	}
	client, err := s.deps.NewDockerClient()
	if err != nil {
		return nil, nil, fmt.Errorf("docker client: %w", err)
	}
	if closer, ok := client.(io.Closer); ok {
		return client, closer, nil
	}
	return client, nil, nil
}

// fail prints err once and returns the exit code to propagate.
func (s *session) fail(err error) int {
	return exitWithError(s.errOut, err, s.cfg.InCI())
}

func newS3ManifestStore(ctx context.Context, cfg config.Config) (pipeline.ManifestStore, error) {
	client, err := artifactstore.NewS3(ctx, artifactstore.S3Options{
		Endpoint:  cfg.Get(constants.EnvS3Endpoint),
		AccessKey: cfg.Get(constants.EnvS3AccessKey),
		SecretKey: cfg.Get(constants.EnvS3SecretKey),
		Region:    cfg.Get(constants.EnvAWSRegion),
	})
	if err != nil {
		return nil, err
	}
	return artifactstore.New(client), nil
}
