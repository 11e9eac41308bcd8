// Where: cli/internal/usecase/watch/cluster.go
// What: flux and kubectl backed implementations of the watcher interfaces.
// Why: The watcher only needs three cluster calls, all available from the CLIs.
package watch

import (
	"context"
	"strings"
	"time"

	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
)

// Cluster talks to the cluster through the flux and kubectl binaries.
type Cluster struct {
	Runner runner.CommandRunner
	// OnNotifyError observes reconcile failures; they never stop the watch.
	OnNotifyError func(error)
}

// Notify runs `flux reconcile helmrelease`.
func (c Cluster) Notify(ctx context.Context, workload, namespace string) {
	_, err := c.Runner.RunOutput(ctx, "", "flux", "reconcile", "helmrelease", workload, "-n", namespace)
	if err != nil && c.OnNotifyError != nil {
		c.OnNotifyError(err)
	}
}

// CurrentImage reads the first container image of the deployment.
func (c Cluster) CurrentImage(ctx context.Context, workload, namespace string) (string, error) {
	output, err := c.Runner.RunOutput(
		ctx,
		"",
		"kubectl",
		"-n", namespace,
		"get", "deployment", workload,
		"-o", "jsonpath={.spec.template.spec.containers[0].image}",
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// Status streams `kubectl rollout status` until it exits.
func (c Cluster) Status(ctx context.Context, workload, namespace string, timeout time.Duration) error {
	return c.Runner.Run(
		ctx,
		"",
		"kubectl",
		"-n", namespace,
		"rollout", "status", "deployment/"+workload,
		"--timeout", timeout.String(),
	)
}
