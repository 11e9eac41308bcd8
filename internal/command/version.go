// Where: cli/internal/command/version.go
// What: version command handler.
// Why: Print the release or build revision.
package command

import (
	"fmt"

	"github.com/octopilot/pipeline-tools/cli/internal/version"
)

type VersionCmd struct{}

func runVersion(_ CLI, env *session) int {
	fmt.Fprintln(env.out, version.GetVersion())
	return 0
}
