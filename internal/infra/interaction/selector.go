// Where: cli/internal/infra/interaction/selector.go
// What: Interactive prompts using the huh library.
// Why: Keyboard-driven confirm/select for trust installation and run contexts.
package interaction

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

var runConfirmPrompt = func(title, description string, confirmed *bool) error {
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(confirmed)
	if description != "" {
		field.Description(description)
	}
	return field.Run()
}

var runSelectPrompt = func(title string, options []huh.Option[string], selected *string) error {
	return huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(selected).
		Run()
}

// HuhPrompter implements the Prompter interface using the huh TUI library.
type HuhPrompter struct{}

func (p HuhPrompter) Confirm(title, description string) (bool, error) {
	var confirmed bool
	if err := runConfirmPrompt(title, description, &confirmed); err != nil {
		return false, fmt.Errorf("prompt confirm: %w", err)
	}
	return confirmed, nil
}

func (p HuhPrompter) SelectValue(title string, options []SelectOption) (string, error) {
	if len(options) == 0 {
		return "", nil
	}

	huhOptions := make([]huh.Option[string], len(options))
	for i, opt := range options {
		huhOptions[i] = huh.NewOption(opt.Label, opt.Value)
	}

	var selected string
	err := runSelectPrompt(title, huhOptions, &selected)
	if err != nil {
		return "", fmt.Errorf("prompt select value: %w", err)
	}
	return selected, nil
}
