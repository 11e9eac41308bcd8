// Where: cli/internal/usecase/pipeline/copy.go
// What: Registry-to-registry image copy with a docker fallback.
// Why: crane is not installed everywhere; the docker daemon usually is.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/ui"
)

const (
	imageCopyFailedCode = "IMAGE_COPY_FAILED"
	imagePullFailedCode = "IMAGE_PULL_FAILED"
	imageAuthFailedCode = "IMAGE_AUTH_FAILED"
	imageTagFailedCode  = "IMAGE_TAG_FAILED"
	imagePushFailedCode = "IMAGE_PUSH_FAILED"
)

// ChainCopier runs `crane copy` and falls back to docker pull, tag and push.
type ChainCopier struct {
	Runner        runner.CommandRunner
	UserInterface ui.UserInterface
}

// Copy copies src to dst.
func (c ChainCopier) Copy(ctx context.Context, src, dst string) error {
	if c.Runner == nil {
		return errRunnerNotConfigured
	}
	src = strings.TrimSpace(src)
	dst = strings.TrimSpace(dst)

	output, craneErr := c.Runner.RunOutput(ctx, "", "crane", "copy", src, dst)
	if craneErr == nil {
		return nil
	}
	if isAuthFailure(output) {
		return classifyImageCopyError(imageCopyFailedCode, src, output, craneErr)
	}
	if c.UserInterface != nil {
		c.UserInterface.Warn(fmt.Sprintf("crane copy failed for %s; falling back to docker", src))
	}

	if output, err := c.Runner.RunOutput(ctx, "", "docker", "pull", src); err != nil {
		return classifyImageCopyError(imagePullFailedCode, src, output, err)
	}
	if output, err := c.Runner.RunOutput(ctx, "", "docker", "tag", src, dst); err != nil {
		return classifyImageCopyError(imageTagFailedCode, dst, output, err)
	}
	if output, err := c.Runner.RunOutput(ctx, "", "docker", "push", dst); err != nil {
		return classifyImageCopyError(imagePushFailedCode, dst, output, err)
	}
	return nil
}

func isAuthFailure(output []byte) bool {
	message := strings.ToLower(string(output))
	return strings.Contains(message, "unauthorized") ||
		strings.Contains(message, "authentication required") ||
		strings.Contains(message, "denied")
}

func classifyImageCopyError(code, image string, output []byte, err error) error {
	if isAuthFailure(output) {
		code = imageAuthFailedCode
	}
	return fmt.Errorf("%s: image=%s: %w", code, image, err)
}
