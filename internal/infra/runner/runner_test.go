// Where: cli/internal/infra/runner/runner_test.go
// What: Tests for command execution runner output routing.
// Why: Ensure ExecRunner honors injected writers and surfaces exit codes.
package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExecRunnerRunUsesInjectedWriters(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer

	runner := ExecRunner{
		Out:    &out,
		ErrOut: &errOut,
	}
	if err := runner.Run(context.Background(), "", "sh", "-c", "printf out; printf err >&2"); err != nil {
		t.Fatalf("run command: %v", err)
	}
	if out.String() != "out" {
		t.Fatalf("unexpected stdout: %q", out.String())
	}
	if errOut.String() != "err" {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
}

func TestExecRunnerRunOutputReturnsCombinedOutputOnFailure(t *testing.T) {
	output, err := ExecRunner{}.RunOutput(t.Context(), "", "sh", "-c", "echo boom; exit 3")
	if err == nil {
		t.Fatalf("expected error")
	}
	if string(output) != "boom\n" {
		t.Fatalf("unexpected output: %q", string(output))
	}
	if code := ExitCode(err); code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
}

func TestExecRunnerRunInputPipesStdin(t *testing.T) {
	output, err := ExecRunner{}.RunInput(t.Context(), "", "payload", "cat")
	if err != nil {
		t.Fatalf("run input: %v", err)
	}
	if string(output) != "payload" {
		t.Fatalf("unexpected output: %q", string(output))
	}
}

type codedError struct{ code int }

func (e codedError) Error() string { return "coded" }
func (e codedError) ExitCode() int { return e.code }

func TestExitCode(t *testing.T) {
	if code := ExitCode(nil); code != 0 {
		t.Fatalf("expected 0 for nil, got %d", code)
	}
	if code := ExitCode(errors.New("plain")); code != 1 {
		t.Fatalf("expected 1 for plain error, got %d", code)
	}
	wrapped := errors.Join(errors.New("context"), codedError{code: 42})
	if code := ExitCode(wrapped); code != 42 {
		t.Fatalf("expected 42 for coded error, got %d", code)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe("crane", "copy", "a", "b"); got != "crane copy a b" {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestExecRunnerRunAttachesInput(t *testing.T) {
	var out bytes.Buffer
	runner := ExecRunner{In: strings.NewReader("typed"), Out: &out, ErrOut: &out}
	if err := runner.Run(t.Context(), "", "cat"); err != nil {
		t.Fatalf("run command: %v", err)
	}
	if out.String() != "typed" {
		t.Fatalf("unexpected stdout: %q", out.String())
	}
}
