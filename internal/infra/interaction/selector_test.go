// Where: cli/internal/infra/interaction/selector_test.go
// What: Tests for the huh-backed prompter.
// Why: Prompt runners are swappable; results and errors must pass through.
package interaction

import (
	"errors"
	"testing"

	"github.com/charmbracelet/huh"
)

func TestHuhPrompterConfirmUsesRunner(t *testing.T) {
	orig := runConfirmPrompt
	t.Cleanup(func() { runConfirmPrompt = orig })

	var gotTitle, gotDescription string
	runConfirmPrompt = func(title, description string, confirmed *bool) error {
		gotTitle = title
		gotDescription = description
		*confirmed = true
		return nil
	}

	ok, err := (HuhPrompter{}).Confirm("Install cert?", "needs sudo")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if !ok {
		t.Fatal("Confirm() = false, want true")
	}
	if gotTitle != "Install cert?" || gotDescription != "needs sudo" {
		t.Fatalf("unexpected prompt: %q / %q", gotTitle, gotDescription)
	}
}

func TestHuhPrompterConfirmWrapsError(t *testing.T) {
	orig := runConfirmPrompt
	t.Cleanup(func() { runConfirmPrompt = orig })
	runConfirmPrompt = func(string, string, *bool) error {
		return errors.New("tty unavailable")
	}

	_, err := (HuhPrompter{}).Confirm("Install cert?", "")
	if err == nil || err.Error() != "prompt confirm: tty unavailable" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHuhPrompterSelectValueUsesRunner(t *testing.T) {
	orig := runSelectPrompt
	t.Cleanup(func() { runSelectPrompt = orig })

	var gotOptions []huh.Option[string]
	runSelectPrompt = func(_ string, options []huh.Option[string], selected *string) error {
		gotOptions = options
		*selected = options[1].Value
		return nil
	}

	got, err := (HuhPrompter{}).SelectValue("Context", []SelectOption{
		{Label: "api (services/api)", Value: "services/api"},
		{Label: "web (.)", Value: "web"},
	})
	if err != nil {
		t.Fatalf("SelectValue() error = %v", err)
	}
	if got != "web" {
		t.Fatalf("SelectValue() = %q, want %q", got, "web")
	}
	if len(gotOptions) != 2 {
		t.Fatalf("options len = %d, want 2", len(gotOptions))
	}
}

func TestHuhPrompterSelectValueEmpty(t *testing.T) {
	got, err := (HuhPrompter{}).SelectValue("Context", nil)
	if err != nil || got != "" {
		t.Fatalf("expected empty selection, got %q (%v)", got, err)
	}
}
