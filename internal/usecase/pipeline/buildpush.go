// Where: cli/internal/usecase/pipeline/buildpush.go
// What: `op build-push`: build skaffold artifacts with pack or docker and publish them.
// Why: Local loops need a push without a skaffold push profile.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/buildresult"
	"github.com/octopilot/pipeline-tools/cli/internal/domain/imageref"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/skaffold"
	"github.com/octopilot/pipeline-tools/cli/internal/meta"
)

// BuildPushRequest configures a build-push run.
type BuildPushRequest struct {
	Dir       string
	Repo      string
	Tag       string
	TagData   TagData
	Artifacts []skaffold.Artifact
	// OutputDir holds build_result.json; empty means Dir.
	OutputDir string
	PackCmd   string
}

// publishTarget describes where the builder container pushes, which differs
// from the recorded ref when the registry is on the host loopback.
type publishTarget struct {
	repo     string
	insecure string
	rewrite  runner.LineRewriter
}

// BuildPush builds every supported artifact and writes the manifest.
func (w Workflow) BuildPush(ctx context.Context, req BuildPushRequest) (PushResult, error) {
	if w.Runner == nil {
		return PushResult{}, errRunnerNotConfigured
	}
	repo := trimRepo(req.Repo)
	if repo == "" {
		repo = meta.DefaultLocalRepo
	}
	data := req.TagData
	if data.Date.IsZero() {
		data.Date = w.now().UTC()
	}
	tag, err := RenderTag(req.Tag, data)
	if err != nil {
		return PushResult{}, err
	}
	if tag == "" {
		tag = meta.DefaultImageTag
	}

	var buildable []skaffold.Artifact
	for _, artifact := range req.Artifacts {
		if artifact.Builder == skaffold.BuilderBuildpacks || artifact.Builder == skaffold.BuilderDocker {
			buildable = append(buildable, artifact)
		}
	}
	if len(buildable) == 0 {
		return PushResult{}, fmt.Errorf(
			"%w: add buildpacks or docker artifacts to %s",
			ErrNoBuildableArtifacts,
			meta.SkaffoldFilename,
		)
	}

	target := resolvePublishTarget(repo)
	packCmd := strings.TrimSpace(req.PackCmd)
	if packCmd == "" {
		packCmd = "pack"
	}

	manifest := buildresult.Manifest{}
	for _, artifact := range buildable {
		ref := repo + "/" + artifact.Image + ":" + tag
		contextDir := artifact.Context
		if !filepath.IsAbs(contextDir) {
			contextDir = filepath.Join(req.Dir, contextDir)
		}
		switch artifact.Builder {
		case skaffold.BuilderBuildpacks:
			err = w.packBuild(ctx, req.Dir, packCmd, target, artifact, contextDir, tag)
		case skaffold.BuilderDocker:
			err = w.dockerBuild(ctx, req.Dir, artifact, contextDir, ref)
		}
		if err != nil {
			return PushResult{}, fmt.Errorf("build %s: %w", artifact.Image, err)
		}
		manifest.Builds = append(manifest.Builds, buildresult.NewBuild(ref))
	}

	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = req.Dir
	} else if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(req.Dir, outputDir)
	}
	manifestPath := filepath.Join(outputDir, meta.BuildResultFilename)
	if err := buildresult.Write(manifestPath, manifest); err != nil {
		return PushResult{}, err
	}
	w.ui().Success("Wrote " + manifestPath)
	return PushResult{ManifestPath: manifestPath, Manifest: manifest}, nil
}

func (w Workflow) packBuild(
	ctx context.Context,
	dir string,
	packCmd string,
	target publishTarget,
	artifact skaffold.Artifact,
	contextDir string,
	tag string,
) error {
	publishRef := target.repo + "/" + artifact.Image + ":" + tag
	args := []string{"build", publishRef, "--path", contextDir}
	if builder := strings.TrimSpace(artifact.Pack); builder != "" {
		args = append(args, "--builder", builder)
	}
	args = append(args, "--publish")
	if target.insecure != "" {
		args = append(args, "--insecure-registry", target.insecure)
	}
	w.ui().Step(runner.Describe(packCmd, args...))
	_, err := w.Runner.RunStream(ctx, dir, runner.StreamOptions{Rewrite: target.rewrite}, packCmd, args...)
	return err
}

func (w Workflow) dockerBuild(
	ctx context.Context,
	dir string,
	artifact skaffold.Artifact,
	contextDir string,
	ref string,
) error {
	dockerfile := artifact.Dockerfile
	if dockerfile == "" {
		dockerfile = "Dockerfile"
	}
	if !filepath.IsAbs(dockerfile) {
		dockerfile = filepath.Join(contextDir, dockerfile)
	}
	buildArgs := []string{"build", "-t", ref, "-f", dockerfile, contextDir}
	w.ui().Step(runner.Describe("docker", buildArgs...))
	if _, err := w.Runner.RunStream(ctx, dir, runner.StreamOptions{}, "docker", buildArgs...); err != nil {
		return err
	}
	pushArgs := []string{"push", ref}
	w.ui().Step(runner.Describe("docker", pushArgs...))
	_, err := w.Runner.RunStream(ctx, dir, runner.StreamOptions{}, "docker", pushArgs...)
	return err
}

// resolvePublishTarget points loopback registries at the docker host alias so
// the builder container can reach them.
func resolvePublishTarget(repo string) publishTarget {
	host := imageref.Host(repo)
	if !imageref.IsLoopbackHost(host) {
		return publishTarget{repo: repo}
	}
	alias := meta.RegistryHostAlias
	if colon := strings.LastIndex(host, ":"); colon != -1 {
		alias += host[colon:]
	}
	return publishTarget{
		repo:     imageref.ReplaceHost(repo, alias),
		insecure: alias,
		rewrite:  runner.ReplaceHost(alias, host),
	}
}
