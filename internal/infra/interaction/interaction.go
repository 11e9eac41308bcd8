// Where: cli/internal/infra/interaction/interaction.go
// What: Interactive primitives for CLI prompts and TTY detection.
// Why: Keep command handlers free of terminal concerns.
package interaction

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// SelectOption represents a single option in a selection menu.
type SelectOption struct {
	Label string
	Value string
}

// Prompter defines confirmation and selection prompts.
type Prompter interface {
	Confirm(title, description string) (bool, error)
	SelectValue(title string, options []SelectOption) (string, error)
}

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return IsTerminal(os.Stdin) && IsTerminal(os.Stdout)
}

// LinePrompter asks plain-text questions; used when a TUI is unavailable.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

// Confirm prints "<title> [y/N]: " and reads the answer.
func (p LinePrompter) Confirm(title, description string) (bool, error) {
	in, out := p.streams()
	if description != "" {
		_, _ = fmt.Fprintln(out, description)
	}
	reader := bufio.NewReader(in)
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", title)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	trimmed := strings.TrimSpace(strings.ToLower(line))
	return trimmed == "y" || trimmed == "yes", nil
}

// SelectValue prints numbered options and reads a choice.
func (p LinePrompter) SelectValue(title string, options []SelectOption) (string, error) {
	if len(options) == 0 {
		return "", nil
	}
	in, out := p.streams()
	_, _ = fmt.Fprintln(out, title)
	for i, opt := range options {
		_, _ = fmt.Fprintf(out, "  %d) %s\n", i+1, opt.Label)
	}
	_, _ = fmt.Fprint(out, "Choice: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read choice: %w", err)
	}
	var index int
	if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &index); err != nil || index < 1 || index > len(options) {
		return "", fmt.Errorf("invalid choice %q", strings.TrimSpace(line))
	}
	return options[index-1].Value, nil
}

func (p LinePrompter) streams() (io.Reader, io.Writer) {
	in, out := p.In, p.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return in, out
}
