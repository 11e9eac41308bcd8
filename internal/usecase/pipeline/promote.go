// Where: cli/internal/usecase/pipeline/promote.go
// What: `op promote-image`: copy a built image between environment registries.
// Why: Promotion reuses the exact artifact that was built, never a rebuild.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/buildresult"
	"github.com/octopilot/pipeline-tools/cli/internal/domain/imageref"
	"github.com/octopilot/pipeline-tools/cli/internal/meta"
)

// PromoteRequest configures a promotion.
type PromoteRequest struct {
	SourceRepo      string
	DestinationRepo string
	ManifestPath    string
	// ManifestURI, when set, is downloaded to ManifestPath first.
	ManifestURI string
	ImageName   string
}

// PromoteResult reports the refs involved in a promotion.
type PromoteResult struct {
	Source      string
	Destination string
}

// Promote copies <src>/<image:tag> to <dst>/<image:tag>.
func (w Workflow) Promote(ctx context.Context, req PromoteRequest) (PromoteResult, error) {
	if w.Copier == nil {
		return PromoteResult{}, errCopierNotConfigured
	}
	src := trimRepo(req.SourceRepo)
	dst := trimRepo(req.DestinationRepo)
	if src == "" || dst == "" {
		return PromoteResult{}, fmt.Errorf(
			"%w: set env (e.g. GOOGLE_GKE_IMAGE_* or PROMOTE_SOURCE/DESTINATION_REPOSITORY)",
			ErrPromotionRepositories,
		)
	}

	manifest, err := w.LoadManifest(ctx, req.ManifestPath, req.ManifestURI)
	if err != nil {
		return PromoteResult{}, err
	}
	build, err := manifest.SelectOrFirst(req.ImageName)
	if err != nil {
		return PromoteResult{}, err
	}

	result := PromoteResult{
		Source:      imageref.Relocate(build.Tag, src, meta.DefaultImageTag),
		Destination: imageref.Relocate(build.Tag, dst, meta.DefaultImageTag),
	}
	w.ui().Step(fmt.Sprintf("Promoting %s -> %s", result.Source, result.Destination))
	if err := w.Copier.Copy(ctx, result.Source, result.Destination); err != nil {
		return PromoteResult{}, err
	}
	w.ui().Success("Promotion successful.")
	return result, nil
}

// LoadManifest reads the manifest at path, fetching it from uri first when set.
func (w Workflow) LoadManifest(ctx context.Context, path, uri string) (buildresult.Manifest, error) {
	if uri = strings.TrimSpace(uri); uri != "" {
		if w.Manifests == nil {
			return buildresult.Manifest{}, errStoreNotConfigured
		}
		return w.Manifests.Fetch(ctx, uri, path)
	}
	return buildresult.Read(path)
}
