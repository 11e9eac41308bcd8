// Where: cli/internal/infra/ui/ui_test.go
// What: Tests for console output helpers.
// Why: Keep CI error annotations and emoji toggling stable.
package ui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	err := fmt.Errorf("push: %w", errors.New("no registry\nconfigured"))

	if got := FormatError(err, true); got != "::error ::push: no registry configured" {
		t.Fatalf("unexpected CI error line: %q", got)
	}
	if got := FormatError(err, false); got != "✗ push: no registry configured" {
		t.Fatalf("unexpected terminal error line: %q", got)
	}
	if got := FormatError(nil, false); got != "" {
		t.Fatalf("expected empty output for nil, got %q", got)
	}
}

func TestConsoleUIWithoutEmoji(t *testing.T) {
	var out bytes.Buffer
	u := NewConsoleUI(&out, false)
	u.Step("skaffold build")
	u.Warn("careful")
	u.Success("done")
	u.Block("📦", "Images", []KeyValue{{Key: "api", Value: "ghcr.io/acme/api:1"}})

	text := out.String()
	for _, want := range []string{"-> skaffold build", "[warn] careful", "[ok] done", "Images", "api:"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
	if strings.Contains(text, "📦") {
		t.Fatalf("expected emoji to be suppressed:\n%s", text)
	}
}

func TestLineSpinnerDedupesDescriptions(t *testing.T) {
	var out bytes.Buffer
	s := NewSpinner(&out, false)
	s.Describe("waiting")
	s.Tick()
	s.Describe("waiting")
	s.Describe("rolling out")
	s.Stop()

	if got := out.String(); got != "waiting\nrolling out\n" {
		t.Fatalf("unexpected spinner output: %q", got)
	}
}
