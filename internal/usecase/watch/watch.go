// Where: cli/internal/usecase/watch/watch.go
// What: Wait for a workload to run a target image, then for its rollout.
// Why: Pipelines gate on GitOps convergence before declaring a deploy done.
package watch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/imageref"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/ui"
)

// State is a watcher phase.
type State string

const (
	StateConverging State = "converging"
	StateRollingOut State = "rolling-out"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

const (
	DefaultPollInterval   = 10 * time.Second
	DefaultRolloutTimeout = 30 * time.Minute
)

var (
	ErrRolloutFailed      = errors.New("deployment rollout failed")
	ErrConvergeTimeout    = errors.New("timed out waiting for deployment image")
	ErrMissingDestination = errors.New("destination repository is not configured")
	ErrMissingWorkload    = errors.New("workload name is required")
)

// Notifier asks the GitOps controller to reconcile. It is best effort.
type Notifier interface {
	Notify(ctx context.Context, workload, namespace string)
}

// ImageReader returns the image currently bound to the workload.
type ImageReader interface {
	CurrentImage(ctx context.Context, workload, namespace string) (string, error)
}

// RolloutChecker blocks until the workload rollout finishes or timeout expires.
type RolloutChecker interface {
	Status(ctx context.Context, workload, namespace string, timeout time.Duration) error
}

// Request describes one watch.
type Request struct {
	Workload       string
	Namespace      string
	TargetRef      string
	RolloutTimeout time.Duration
	PollInterval   time.Duration
	// PollTimeout bounds the converging phase; zero waits forever.
	PollTimeout time.Duration
}

// Result reports how a watch ended.
type Result struct {
	State State
	Polls int
}

// Watcher runs the converge-then-rollout loop.
type Watcher struct {
	Notifier      Notifier
	Reader        ImageReader
	Rollout       RolloutChecker
	UserInterface ui.UserInterface
	Spinner       ui.Spinner
	Sleep         func(ctx context.Context, d time.Duration) error
}

// Watch blocks until the rollout of req.TargetRef succeeds or fails.
func (w Watcher) Watch(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Workload) == "" {
		return Result{State: StateFailed}, ErrMissingWorkload
	}
	if req.RolloutTimeout <= 0 {
		req.RolloutTimeout = DefaultRolloutTimeout
	}
	if req.PollInterval <= 0 {
		req.PollInterval = DefaultPollInterval
	}

	w.ui().Info(fmt.Sprintf("Waiting for deployment %s to use image %s ...", req.Workload, req.TargetRef))
	polls, err := w.converge(ctx, req)
	if err != nil {
		return Result{State: StateFailed, Polls: polls}, err
	}

	w.ui().Info(fmt.Sprintf("Image matched. Waiting for rollout (timeout %s) ...", req.RolloutTimeout))
	if err := w.Rollout.Status(ctx, req.Workload, req.Namespace, req.RolloutTimeout); err != nil {
		return Result{State: StateFailed, Polls: polls}, fmt.Errorf("%w: %w", ErrRolloutFailed, err)
	}
	w.ui().Success("Rollout complete.")
	return Result{State: StateSucceeded, Polls: polls}, nil
}

func (w Watcher) converge(ctx context.Context, req Request) (int, error) {
	pollCtx := ctx
	if req.PollTimeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, req.PollTimeout)
		defer cancel()
	}
	if w.Spinner != nil {
		w.Spinner.Describe(fmt.Sprintf("Waiting for %s", req.Workload))
		defer w.Spinner.Stop()
	}

	polls := 0
	for {
		polls++
		if w.Notifier != nil {
			w.Notifier.Notify(pollCtx, req.Workload, req.Namespace)
		}
		current, err := w.Reader.CurrentImage(pollCtx, req.Workload, req.Namespace)
		if err == nil && Matches(current, req.TargetRef) {
			return polls, nil
		}
		if w.Spinner != nil {
			w.Spinner.Tick()
		}
		if err := w.sleep(pollCtx, req.PollInterval); err != nil {
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return polls, fmt.Errorf("%w after %s: %s", ErrConvergeTimeout, req.PollTimeout, req.TargetRef)
			}
			return polls, err
		}
	}
}

func (w Watcher) sleep(ctx context.Context, d time.Duration) error {
	if w.Sleep != nil {
		return w.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (w Watcher) ui() ui.UserInterface {
	if w.UserInterface == nil {
		return ui.Discard()
	}
	return w.UserInterface
}

// Matches reports whether current names target, either in full or by its tag.
func Matches(current, target string) bool {
	current = strings.TrimSpace(current)
	target = strings.TrimSpace(target)
	if current == "" || target == "" {
		return false
	}
	if strings.Contains(current, target) {
		return true
	}
	tag := imageref.Tag(target)
	return tag != "" && strings.Contains(current, tag)
}

// TargetRef returns the ref to watch for a manifest tag deployed from destRepo.
func TargetRef(tag, destRepo string) (string, error) {
	repo := strings.TrimSuffix(strings.TrimSpace(destRepo), "/")
	if repo == "" {
		return "", fmt.Errorf(
			"%w: set GOOGLE_GKE_IMAGE_* or WATCH_DESTINATION_REPOSITORY",
			ErrMissingDestination,
		)
	}
	return imageref.Qualify(strings.TrimSpace(tag), repo), nil
}
