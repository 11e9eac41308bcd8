// Where: cli/internal/command/watch.go
// What: watch-deployment command handler.
// Why: Resolve the watched ref from the manifest and config, then run the watcher.
package command

import (
	"fmt"
	"time"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/buildresult"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/ui"
	"github.com/octopilot/pipeline-tools/cli/internal/usecase/watch"
)

type WatchDeploymentCmd struct {
	Component   string        `name:"component" required:"" help:"Deployment or HelmRelease name"`
	Environment string        `name:"environment" required:"" enum:"dev,pp,prod" help:"Target environment (dev, pp, prod)"`
	Namespace   string        `name:"namespace" default:"default" help:"Kubernetes namespace"`
	Timeout     time.Duration `name:"timeout" default:"30m" help:"kubectl rollout status timeout"`
	BuildResult string        `name:"build-result" help:"build_result.json or its directory (default: current dir)"`
	ImageName   string        `name:"image-name" help:"Artifact to watch for (default: last entry)"`
	PollTimeout time.Duration `name:"poll-timeout" default:"0s" help:"Stop polling after this long (0 waits forever)"`
	ManifestURI string        `name:"manifest-uri" help:"Fetch build_result.json from s3://bucket/key first"`
}

func runWatchDeployment(cli CLI, env *session) int {
	cmd := cli.WatchDeployment

	wf, err := env.workflow(cmd.ManifestURI)
	if err != nil {
		return env.fail(err)
	}
	manifestPath := buildresult.ResolvePath(cmd.BuildResult, env.dir)
	manifest, err := wf.LoadManifest(env.ctx, manifestPath, cmd.ManifestURI)
	if err != nil {
		return env.fail(fmt.Errorf("reading %s: %w", manifestPath, err))
	}
	build, err := manifest.Select(cmd.ImageName)
	if err != nil {
		return env.fail(err)
	}
	target, err := watch.TargetRef(build.Tag, env.cfg.WatchDestinationRepository(cmd.Environment))
	if err != nil {
		return env.fail(err)
	}

	cluster := watch.Cluster{
		Runner: env.deps.Runner,
		OnNotifyError: func(err error) {
			env.errUI.Info("flux reconcile skipped: " + err.Error())
		},
	}
	spinner := ui.NewSpinner(env.errOut, env.interactive())
	defer spinner.Stop()

	watcher := watch.Watcher{
		Notifier:      cluster,
		Reader:        cluster,
		Rollout:       cluster,
		UserInterface: env.ui,
		Spinner:       spinner,
	}
	result, err := watcher.Watch(env.ctx, watch.Request{
		Workload:       cmd.Component,
		Namespace:      cmd.Namespace,
		TargetRef:      target,
		RolloutTimeout: cmd.Timeout,
		PollTimeout:    cmd.PollTimeout,
	})
	if err != nil {
		return env.fail(err)
	}
	if result.State != watch.StateSucceeded {
		return env.fail(fmt.Errorf("%w: ended in state %s", watch.ErrRolloutFailed, result.State))
	}
	return 0
}
