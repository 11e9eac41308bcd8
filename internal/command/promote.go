// Where: cli/internal/command/promote.go
// What: promote-image command handler.
// Why: Copy the built image between environment registries.
package command

import (
	"github.com/octopilot/pipeline-tools/cli/internal/domain/buildresult"
	"github.com/octopilot/pipeline-tools/cli/internal/usecase/pipeline"
)

type PromoteImageCmd struct {
	Source      string `name:"source" required:"" enum:"dev,pp,prod" help:"Source environment (dev, pp, prod)"`
	Destination string `name:"destination" required:"" enum:"pp,prod" help:"Destination environment (pp, prod)"`
	BuildResult string `name:"build-result" help:"build_result.json or its directory (default: current dir)"`
	ImageName   string `name:"image-name" help:"Artifact to promote (default: first entry)"`
	ManifestURI string `name:"manifest-uri" help:"Fetch build_result.json from s3://bucket/key first"`
}

func runPromoteImage(cli CLI, env *session) int {
	cmd := cli.PromoteImage
	source, destination := env.cfg.PromoteRepositories(cmd.Source, cmd.Destination)

	wf, err := env.workflow(cmd.ManifestURI)
	if err != nil {
		return env.fail(err)
	}
	_, err = wf.Promote(env.ctx, pipeline.PromoteRequest{
		SourceRepo:      source,
		DestinationRepo: destination,
		ManifestPath:    buildresult.ResolvePath(cmd.BuildResult, env.dir),
		ManifestURI:     cmd.ManifestURI,
		ImageName:       cmd.ImageName,
	})
	if err != nil {
		return env.fail(err)
	}
	return 0
}
