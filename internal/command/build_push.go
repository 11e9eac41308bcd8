// Where: cli/internal/command/build_push.go
// What: build-push command handler.
// Why: Build skaffold artifacts with pack or docker without going through skaffold.
package command

import (
	"path/filepath"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/release"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/skaffold"
	"github.com/octopilot/pipeline-tools/cli/internal/usecase/pipeline"
)

type BuildPushCmd struct {
	Repo         string `name:"repo" env:"SKAFFOLD_DEFAULT_REPO" default:"localhost:5001" help:"Registry to publish to"`
	Tag          string `name:"tag" default:"latest" help:"Image tag; accepts a template ({{ .Version }}, {{ .Commit }}, {{ .Date }})"`
	SkaffoldFile string `name:"skaffold-file" default:"skaffold.yaml" help:"Skaffold config listing the artifacts"`
	Output       string `name:"output" help:"Directory for build_result.json (default: current dir)"`
	Pack         string `name:"pack" env:"PACK_CMD" default:"pack" help:"pack executable"`
}

func runBuildPush(cli CLI, env *session) int {
	cmd := cli.BuildPush
	skaffoldPath := env.path(cmd.SkaffoldFile)
	artifacts, err := skaffold.LoadArtifacts(skaffoldPath)
	if err != nil {
		return env.fail(err)
	}
	projectDir := filepath.Dir(skaffoldPath)

	var data pipeline.TagData
	if rel, ok := env.deps.ResolveRelease(projectDir, env.cfg.Get); ok {
		data.Version = rel.Version
	}
	if commit, err := release.ShortCommit(projectDir); err == nil {
		data.Commit = commit
	}

	outputDir := env.path(cmd.Output)
	if outputDir == "" {
		outputDir = env.dir
	}

	wf, err := env.workflow("")
	if err != nil {
		return env.fail(err)
	}
	result, err := wf.BuildPush(env.ctx, pipeline.BuildPushRequest{
		Dir:       projectDir,
		Repo:      cmd.Repo,
		Tag:       cmd.Tag,
		TagData:   data,
		Artifacts: artifacts,
		OutputDir: outputDir,
		PackCmd:   cmd.Pack,
	})
	if err != nil {
		return env.fail(err)
	}
	for _, ref := range result.Manifest.Tags() {
		env.ui.Info("  " + ref)
	}
	return 0
}
