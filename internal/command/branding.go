// Where: cli/internal/command/branding.go
// What: CLI naming helpers.
// Why: Keep user-facing command names consistent when the binary is wrapped.
package command

import (
	"os"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/meta"
)

func cliName() string {
	name := strings.TrimSpace(os.Getenv("CLI_CMD"))
	if name == "" {
		name = meta.AppName
	}
	return name
}
