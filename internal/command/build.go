// Where: cli/internal/command/build.go
// What: build and push command handlers.
// Why: Map flags and pipeline config onto the skaffold-driven workflows.
package command

import (
	"fmt"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/constants"
	"github.com/octopilot/pipeline-tools/cli/internal/domain/destination"
	"github.com/octopilot/pipeline-tools/cli/internal/meta"
	"github.com/octopilot/pipeline-tools/cli/internal/usecase/pipeline"
)

type (
	BuildCmd struct{}

	PushCmd struct {
		DefaultRepo     string `name:"default-repo" help:"Registry to push to (overrides config and .registry)"`
		Destination     string `name:"destination" enum:"local,ci,all,auto" default:"auto" help:"Which .registry destinations to use (local, ci, all, auto)"`
		RegistryFile    string `name:"registry-file" help:"Path to the .registry file (default: <repo root>/.registry)"`
		PushAll         bool   `name:"push-all" help:"Replicate the pushed images to every other destination"`
		Profile         string `name:"profile" help:"Skaffold profile used for the push (default: SKAFFOLD_PROFILE, then push)"`
		Output          string `name:"output" help:"Directory for build_result.json (default: current dir)"`
		NoFileOutput    bool   `name:"no-file-output" help:"Parse references from skaffold output instead of --file-output"`
		ImagePattern    string `name:"image-pattern" help:"Regexp with named groups image and tag, matched per line of build output"`
		PublishManifest string `name:"publish-manifest" help:"Upload build_result.json to s3://bucket/key"`
	}
)

func runBuild(_ CLI, env *session) int {
	wf, err := env.workflow("")
	if err != nil {
		return env.fail(err)
	}
	err = wf.Build(env.ctx, pipeline.BuildRequest{
		Dir:         env.dir,
		DefaultRepo: env.cfg.DefaultRepo(),
		Flags:       env.cfg.SkaffoldFlags(),
	})
	if err != nil {
		return env.fail(err)
	}
	return 0
}

func runPush(cli CLI, env *session) int {
	cmd := cli.Push
	selector, err := destination.ParseSelector(cmd.Destination)
	if err != nil {
		return env.fail(err)
	}

	registryFile := env.path(cmd.RegistryFile)
	if registryFile == "" {
		registryFile = destination.FilePath(env.repoRoot())
	}
	set, _, err := destination.LoadFile(registryFile, env.cfg.Lookup)
	if err != nil {
		return env.fail(err)
	}

	repo, err := destination.ResolveDefaultRepo(cmd.DefaultRepo, env.cfg.DefaultRepo(), set, selector, env.cfg.InCI())
	if err != nil {
		return env.fail(err)
	}

	var mirrors []string
	if cmd.PushAll {
		mirrors, err = destination.Resolve(set, mirrorSelector(selector), env.cfg.InCI())
		if err != nil {
			return env.fail(err)
		}
	}

	rel, _ := env.deps.ResolveRelease(env.dir, env.cfg.Get)
	if rel.Version != "" {
		env.ui.Info(fmt.Sprintf("Release %s (from %s)", rel.Version, rel.Source))
	}

	profile := strings.TrimSpace(cmd.Profile)
	if profile == "" {
		profile = firstNonEmpty(env.cfg.Get(constants.EnvSkaffoldProfile), meta.DefaultPushProfile)
	}

	wf, err := env.workflow(cmd.PublishManifest)
	if err != nil {
		return env.fail(err)
	}
	result, err := wf.Push(env.ctx, pipeline.PushRequest{
		Dir:          env.dir,
		DefaultRepo:  repo,
		Profile:      profile,
		OutputDir:    cmd.Output,
		FileOutput:   !cmd.NoFileOutput,
		ImagePattern: cmd.ImagePattern,
		Version:      rel.Version,
		AddLatest:    rel.AddLatest,
		Mirrors:      mirrors,
		PublishURI:   cmd.PublishManifest,
	})
	if err != nil {
		return env.fail(err)
	}
	for _, ref := range result.Manifest.Tags() {
		env.ui.Info("  " + ref)
	}
	return 0
}

// mirrorSelector keeps an explicit all; every other selector replicates to CI.
func mirrorSelector(selector destination.Selector) destination.Selector {
	if selector == destination.SelectAll {
		return destination.SelectAll
	}
	return destination.SelectCI
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
