// Where: cli/internal/infra/interaction/interaction_test.go
// What: Tests for terminal detection helpers.
// Why: Keep non-interactive detection and plain prompts deterministic in tests.
package interaction

import (
	"os"
	"strings"
	"testing"
)

func TestIsTerminalNilAndPipe(t *testing.T) {
	if IsTerminal(nil) {
		t.Fatal("IsTerminal(nil) must be false")
	}
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}
	defer func() {
		_ = r.Close()
		_ = w.Close()
	}()
	if IsTerminal(r) {
		t.Fatal("IsTerminal(pipe) must be false")
	}
}

func TestLinePrompterConfirm(t *testing.T) {
	var out strings.Builder
	ok, err := LinePrompter{In: strings.NewReader("YES\n"), Out: &out}.Confirm("Install cert?", "")
	if err != nil || !ok {
		t.Fatalf("expected yes, got %v (%v)", ok, err)
	}
	if !strings.Contains(out.String(), "Install cert? [y/N]: ") {
		t.Fatalf("unexpected prompt: %q", out.String())
	}

	ok, err = LinePrompter{In: strings.NewReader(""), Out: &out}.Confirm("Again?", "")
	if err != nil || ok {
		t.Fatalf("expected default no on EOF, got %v (%v)", ok, err)
	}
}

func TestLinePrompterSelectValue(t *testing.T) {
	var out strings.Builder
	options := []SelectOption{{Label: "api", Value: "services/api"}, {Label: "web", Value: "web"}}

	got, err := LinePrompter{In: strings.NewReader("2\n"), Out: &out}.SelectValue("Context", options)
	if err != nil || got != "web" {
		t.Fatalf("expected web, got %q (%v)", got, err)
	}
	if _, err := (LinePrompter{In: strings.NewReader("9\n"), Out: &out}).SelectValue("Context", options); err == nil {
		t.Fatal("expected out-of-range choice to fail")
	}
}
