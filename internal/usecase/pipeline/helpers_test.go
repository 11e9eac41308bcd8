// Where: cli/internal/usecase/pipeline/helpers_test.go
// What: Test doubles for pipeline workflows.
// Why: Assert exact tool invocations without running skaffold, pack or docker.
package pipeline

import (
	"context"
	"os"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/buildresult"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/artifactstore"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/ui"
)

type recordedCall struct {
	dir     string
	command string
	opts    runner.StreamOptions
}

// fakeRule answers every call whose command line starts with prefix.
type fakeRule struct {
	prefix string
	output string
	result runner.StreamResult
	err    error
}

type fakeRunner struct {
	calls    []recordedCall
	rules    []fakeRule
	onStream func(args []string)
}

func (f *fakeRunner) on(prefix string, rule fakeRule) {
	rule.prefix = prefix
	f.rules = append(f.rules, rule)
}

func (f *fakeRunner) match(command string) fakeRule {
	for _, rule := range f.rules {
		if strings.HasPrefix(command, rule.prefix) {
			return rule
		}
	}
	return fakeRule{}
}

func (f *fakeRunner) record(dir, name string, args []string, opts runner.StreamOptions) fakeRule {
	command := runner.Describe(name, args...)
	f.calls = append(f.calls, recordedCall{dir: dir, command: command, opts: opts})
	return f.match(command)
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args ...string) error {
	return f.record(dir, name, args, runner.StreamOptions{}).err
}

func (f *fakeRunner) RunOutput(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	rule := f.record(dir, name, args, runner.StreamOptions{})
	return []byte(rule.output), rule.err
}

func (f *fakeRunner) RunQuiet(_ context.Context, dir, name string, args ...string) error {
	return f.record(dir, name, args, runner.StreamOptions{}).err
}

func (f *fakeRunner) RunStream(
	_ context.Context,
	dir string,
	opts runner.StreamOptions,
	name string,
	args ...string,
) (runner.StreamResult, error) {
	rule := f.record(dir, name, args, opts)
	if f.onStream != nil {
		f.onStream(args)
	}
	return rule.result, rule.err
}

func (f *fakeRunner) commands() []string {
	out := make([]string, 0, len(f.calls))
	for _, call := range f.calls {
		out = append(out, call.command)
	}
	return out
}

func (f *fakeRunner) hasCommand(command string) bool {
	for _, call := range f.calls {
		if call.command == command {
			return true
		}
	}
	return false
}

type testUI struct {
	info    []string
	warn    []string
	success []string
	steps   []string
}

func (u *testUI) Info(msg string) { u.info = append(u.info, msg) }
func (u *testUI) Warn(msg string) { u.warn = append(u.warn, msg) }
func (u *testUI) Success(msg string) { u.success = append(u.success, msg) }
func (u *testUI) Step(msg string) { u.steps = append(u.steps, msg) }
func (u *testUI) Block(_, _ string, _ []ui.KeyValue) {}

type fakeStore struct {
	published []string
	fetched   []string
	fetchData buildresult.Manifest
	err       error
}

func (s *fakeStore) Publish(_ context.Context, uri, path string) (artifactstore.Location, error) {
	if s.err != nil {
		return artifactstore.Location{}, s.err
	}
	if _, err := os.Stat(path); err != nil {
		return artifactstore.Location{}, err
	}
	s.published = append(s.published, uri)
	return artifactstore.ParseURI(uri)
}

func (s *fakeStore) Fetch(_ context.Context, uri, path string) (buildresult.Manifest, error) {
	if s.err != nil {
		return buildresult.Manifest{}, s.err
	}
	s.fetched = append(s.fetched, uri)
	if err := buildresult.Write(path, s.fetchData); err != nil {
		return buildresult.Manifest{}, err
	}
	return s.fetchData, nil
}

type exitError struct{ code int }

func (e exitError) Error() string { return "exit status" }
func (e exitError) ExitCode() int { return e.code }

func newTestWorkflow(r *fakeRunner, user *testUI) Workflow {
	return NewWorkflow(r, user)
}

func argValue(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
