// Where: cli/internal/infra/ui/errors.go
// What: One-line error rendering for terminals and GitHub Actions.
// Why: CI annotations need the ::error :: prefix; terminals get a cross mark.
package ui

import (
	"fmt"
	"io"
	"strings"
)

// FormatError renders err as a single line.
func FormatError(err error, githubActions bool) string {
	if err == nil {
		return ""
	}
	msg := strings.Join(strings.Fields(strings.ReplaceAll(err.Error(), "\n", " ")), " ")
	if githubActions {
		return "::error ::" + msg
	}
	return "✗ " + msg
}

// PrintError writes FormatError(err) to w.
func PrintError(w io.Writer, err error, githubActions bool) {
	if err == nil || w == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err, githubActions))
}
