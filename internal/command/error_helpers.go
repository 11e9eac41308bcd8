// Where: cli/internal/command/error_helpers.go
// What: Shared CLI error output.
// Why: Print every failure once, in the CI-aware one-line format.
package command

import (
	"io"

	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/ui"
)

// exitWithError prints err and returns the exit code of the failed
// subprocess, or 1 when err did not come from one.
func exitWithError(out io.Writer, err error, githubActions bool) int {
	ui.PrintError(out, err, githubActions)
	return runner.ExitCode(err)
}
