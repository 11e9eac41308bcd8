// Where: cli/internal/usecase/pipeline/push.go
// What: `op push`: build and push with skaffold, then record the manifest.
// Why: Later pipeline steps only see what build_result.json records.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/buildresult"
	"github.com/octopilot/pipeline-tools/cli/internal/domain/imageref"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
	"github.com/octopilot/pipeline-tools/cli/internal/meta"
)

// PushRequest configures a push run. DefaultRepo must already be resolved.
type PushRequest struct {
	Dir          string
	SkaffoldFile string
	DefaultRepo  string
	Profile      string
	// OutputDir holds build_result.json; empty means Dir.
	OutputDir    string
	FileOutput   bool
	ImagePattern string
	// Version, when set, is passed as the skaffold tag.
	Version   string
	AddLatest bool
	// Mirrors are replication targets; the primary repo is skipped.
	Mirrors    []string
	PublishURI string
}

// PushResult summarizes a push run.
type PushResult struct {
	ManifestPath string
	Manifest     buildresult.Manifest
	Replicated   []string
	Published    string
}

// Push runs skaffold build --push and writes the manifest.
func (w Workflow) Push(ctx context.Context, req PushRequest) (PushResult, error) {
	if w.Runner == nil {
		return PushResult{}, errRunnerNotConfigured
	}
	repo := trimRepo(req.DefaultRepo)
	if repo == "" {
		return PushResult{}, fmt.Errorf(
			"%w: set --default-repo, SKAFFOLD_DEFAULT_REPO (or equivalent env), or add a .registry file",
			ErrNoPushRegistry,
		)
	}

	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = req.Dir
	} else if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(req.Dir, outputDir)
	}
	if err := ensureDir(outputDir); err != nil {
		return PushResult{}, fmt.Errorf("create output dir: %w", err)
	}
	manifestPath := filepath.Join(outputDir, meta.BuildResultFilename)

	profile := strings.TrimSpace(req.Profile)
	if profile == "" {
		profile = meta.DefaultPushProfile
	}
	args := []string{"build"}
	args = appendSkaffoldFile(args, req.SkaffoldFile)
	if req.FileOutput {
		args = append(args, "--file-output", manifestPath)
	}
	args = append(args, "--default-repo", repo, "--push", "--profile", profile)
	if version := strings.TrimSpace(req.Version); version != "" {
		args = append(args, "--tag", version)
	}

	w.ui().Step(runner.Describe("skaffold", args...))
	manifest, err := w.runPushBuild(ctx, req, repo, manifestPath, args)
	if err != nil {
		return PushResult{}, err
	}
	if err := buildresult.Write(manifestPath, manifest); err != nil {
		return PushResult{}, err
	}
	w.ui().Success("Wrote " + manifestPath)

	result := PushResult{ManifestPath: manifestPath, Manifest: manifest}
	if req.AddLatest && strings.TrimSpace(req.Version) != "" {
		w.tagLatest(ctx, manifest)
	}

	var errs []error
	if len(req.Mirrors) > 0 {
		replicated, err := w.replicate(ctx, repo, manifest, req.Mirrors)
		result.Replicated = replicated
		if err != nil {
			errs = append(errs, err)
		}
	}
	if uri := strings.TrimSpace(req.PublishURI); uri != "" {
		if w.Manifests == nil {
			errs = append(errs, errStoreNotConfigured)
		} else if loc, err := w.Manifests.Publish(ctx, uri, manifestPath); err != nil {
			errs = append(errs, err)
		} else {
			result.Published = loc.String()
			w.ui().Success("Published manifest to " + result.Published)
		}
	}
	return result, errors.Join(errs...)
}

func (w Workflow) runPushBuild(
	ctx context.Context,
	req PushRequest,
	repo string,
	manifestPath string,
	args []string,
) (buildresult.Manifest, error) {
	if req.FileOutput {
		if _, err := w.Runner.RunStream(ctx, req.Dir, runner.StreamOptions{}, "skaffold", args...); err != nil {
			return buildresult.Manifest{}, err
		}
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return buildresult.Manifest{}, fmt.Errorf("read skaffold file output: %w", err)
		}
		return buildresult.NormalizeFileOutput(data, repo)
	}

	result, err := w.Runner.RunStream(ctx, req.Dir, runner.StreamOptions{Capture: true}, "skaffold", args...)
	if err != nil {
		return buildresult.Manifest{}, err
	}
	builds, err := buildresult.ParseOutput(result.Combined(), req.ImagePattern)
	if err != nil {
		return buildresult.Manifest{}, err
	}
	if len(builds) == 0 {
		return buildresult.Manifest{}, fmt.Errorf(
			"%w: use file output (drop --no-file-output) or set --image-pattern",
			buildresult.ErrNoReference,
		)
	}
	return buildresult.Manifest{Builds: builds}, nil
}

// tagLatest adds :latest next to each release tag. Failures only warn.
func (w Workflow) tagLatest(ctx context.Context, manifest buildresult.Manifest) {
	if w.Copier == nil {
		w.ui().Warn("Skipping latest tag: " + errCopierNotConfigured.Error())
		return
	}
	for _, build := range manifest.Builds {
		latest := imageref.Latest(build.Tag)
		if latest == "" || latest == imageref.StripDigest(build.Tag) {
			continue
		}
		if err := w.Copier.Copy(ctx, build.Tag, latest); err != nil {
			w.ui().Warn(fmt.Sprintf("Could not tag %s: %v", latest, err))
			continue
		}
		w.ui().Success("Tagged " + latest)
	}
}

// replicate copies every build under each mirror. It keeps going after a failed
// destination and reports all failures at the end.
func (w Workflow) replicate(
	ctx context.Context,
	primary string,
	manifest buildresult.Manifest,
	mirrors []string,
) ([]string, error) {
	if w.Copier == nil {
		return nil, errCopierNotConfigured
	}
	var copied, failed []string
	for _, mirror := range mirrors {
		mirror = trimRepo(mirror)
		if mirror == "" || mirror == primary {
			continue
		}
		for _, build := range manifest.Builds {
			src := imageref.Qualify(build.Tag, primary)
			dst := mirror + "/" + imageref.TrimRepo(imageref.StripDigest(src), primary)
			w.ui().Step(fmt.Sprintf("Replicating %s -> %s", src, dst))
			if err := w.Copier.Copy(ctx, src, dst); err != nil {
				w.ui().Warn(fmt.Sprintf("Replication to %s failed: %v", mirror, err))
				failed = append(failed, dst)
				continue
			}
			copied = append(copied, dst)
		}
	}
	if len(failed) > 0 {
		return copied, fmt.Errorf("%w: %s", ErrReplicationFailed, strings.Join(failed, ", "))
	}
	return copied, nil
}
