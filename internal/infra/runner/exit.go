// Where: cli/internal/infra/runner/exit.go
// What: Exit code extraction for failed commands.
// Why: The CLI propagates the underlying tool's exit status as its own.
package runner

import (
	"errors"
	"os/exec"
)

// ExitCode returns the process exit status carried by err.
// nil maps to 0 and errors without a process status map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		if code := coded.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
