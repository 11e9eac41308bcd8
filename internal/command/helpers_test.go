// Where: cli/internal/command/helpers_test.go
// What: Test doubles for command handlers.
// Why: Drive Run end to end without starting real tools.
package command

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/release"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/docker"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
)

type stubRule struct {
	prefix string
	output string
	stream runner.StreamResult
	err    error
}

type stubRunner struct {
	calls []string
	rules []stubRule
}

func (s *stubRunner) on(prefix string, rule stubRule) {
	rule.prefix = prefix
	s.rules = append(s.rules, rule)
}

func (s *stubRunner) record(name string, args []string) stubRule {
	command := runner.Describe(name, args...)
	s.calls = append(s.calls, command)
	for _, rule := range s.rules {
		if strings.HasPrefix(command, rule.prefix) {
			return rule
		}
	}
	return stubRule{}
}

func (s *stubRunner) Run(_ context.Context, _ string, name string, args ...string) error {
	return s.record(name, args).err
}

func (s *stubRunner) RunOutput(_ context.Context, _ string, name string, args ...string) ([]byte, error) {
	rule := s.record(name, args)
	return []byte(rule.output), rule.err
}

func (s *stubRunner) RunQuiet(_ context.Context, _ string, name string, args ...string) error {
	return s.record(name, args).err
}

func (s *stubRunner) RunStream(
	_ context.Context,
	_ string,
	_ runner.StreamOptions,
	name string,
	args ...string,
) (runner.StreamResult, error) {
	rule := s.record(name, args)
	return rule.stream, rule.err
}

func (s *stubRunner) RunInput(_ context.Context, _ string, _ string, name string, args ...string) ([]byte, error) {
	rule := s.record(name, args)
	return []byte(rule.output), rule.err
}

func (s *stubRunner) hasCall(command string) bool {
	for _, call := range s.calls {
		if call == command {
			return true
		}
	}
	return false
}

type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e exitError) ExitCode() int { return e.code }

type testEnv struct {
	dir    string
	out    bytes.Buffer
	errOut bytes.Buffer
	runner *stubRunner
	env    []string
}

func newTestEnv(t *testing.T, env ...string) *testEnv {
	t.Helper()
	return &testEnv{dir: t.TempDir(), runner: &stubRunner{}, env: env}
}

func (e *testEnv) deps(t *testing.T) Dependencies {
	return Dependencies{
		Context:     t.Context(),
		Out:         &e.out,
		ErrOut:      &e.errOut,
		Getwd:       func() (string, error) { return e.dir, nil },
		Environ:     func() []string { return e.env },
		Runner:      e.runner,
		Interactive: func() bool { return false },
		NewDockerClient: func() (docker.DockerClient, error) {
			return nil, fmt.Errorf("docker unavailable in tests")
		},
		RepoResolver: func(dir string) (string, error) { return dir, nil },
		ResolveRelease: func(string, func(string) string) (release.Release, bool) {
			return release.Release{}, false
		},
	}
}

func (e *testEnv) run(t *testing.T, args ...string) int {
	t.Helper()
	return Run(args, e.deps(t))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runnerStream(stdout string) runner.StreamResult {
	return runner.StreamResult{Stdout: stdout}
}
