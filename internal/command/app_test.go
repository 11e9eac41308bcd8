// Where: cli/internal/command/app_test.go
// What: Tests for CLI run behavior.
// Why: Ensure command routing, config loading and exit codes remain stable.
package command

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRunNoArgsUsesBrandName(t *testing.T) {
	t.Setenv("CLI_CMD", "acme")

	var buf bytes.Buffer
	if code := runNoArgs(&buf); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(buf.String(), "acme <command> [flags]") {
		t.Fatalf("expected brand name in usage output, got: %q", buf.String())
	}
}

func TestRunVersion(t *testing.T) {
	env := newTestEnv(t)
	if code := env.run(t, "version"); code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, env.errOut.String())
	}
	if strings.TrimSpace(env.out.String()) == "" {
		t.Fatalf("expected version output")
	}
}

func TestRunHelpReturnsZero(t *testing.T) {
	env := newTestEnv(t)
	if code := env.run(t, "watch-deployment", "--help"); code != 0 {
		t.Fatalf("expected exit code 0 for help, got %d", code)
	}
	if !strings.Contains(env.out.String(), "--component") {
		t.Fatalf("expected help output, got %q", env.out.String())
	}
}

func TestRunBuildPassesConfigFlags(t *testing.T) {
	env := newTestEnv(t, "SKAFFOLD_LABEL=team=core", "GITHUB_ACTIONS=")
	writeFile(t, filepath.Join(env.dir, "pipeline.properties"), "SKAFFOLD_DEFAULT_REPO=ghcr.io/acme\nSKAFFOLD_PROFILE=dev\n")

	if code := env.run(t, "--config", "pipeline.properties", "build"); code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, env.errOut.String())
	}
	want := "skaffold build --default-repo ghcr.io/acme --profile dev --label team=core"
	if !env.runner.hasCall(want) {
		t.Fatalf("expected %q, got %v", want, env.runner.calls)
	}
}

func TestRunPropagatesSubprocessExitCode(t *testing.T) {
	env := newTestEnv(t)
	env.runner.on("skaffold build", stubRule{err: exitError{code: 3}})

	if code := env.run(t, "build"); code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
	if !strings.HasPrefix(env.errOut.String(), "✗ ") {
		t.Fatalf("expected one-line error, got %q", env.errOut.String())
	}
}

func TestRunPushWithoutRegistryUsesCIAnnotation(t *testing.T) {
	env := newTestEnv(t, "GITHUB_ACTIONS=true")

	if code := env.run(t, "push"); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	got := env.errOut.String()
	if !strings.HasPrefix(got, "::error ::no push registry") {
		t.Fatalf("expected CI error annotation, got %q", got)
	}
	if len(env.runner.calls) != 0 {
		t.Fatalf("expected no tool calls, got %v", env.runner.calls)
	}
}

func TestRunPushUsesRegistryFileAndReplicates(t *testing.T) {
	env := newTestEnv(t, "GITHUB_ACTIONS=true", "MIRROR=ghcr.io/mirror")
	writeFile(t, filepath.Join(env.dir, ".registry"), "local: localhost:5001\nci:\n  - ghcr.io/acme/\n  - ${MIRROR}\n")
	env.runner.on("skaffold build", stubRule{stream: runnerStream("Built app -> ghcr.io/acme/app:abc123\n")})

	code := env.run(t, "push", "--no-file-output", "--push-all")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, env.errOut.String())
	}
	if !env.runner.hasCall("skaffold build --default-repo ghcr.io/acme --push --profile push") {
		t.Fatalf("unexpected skaffold call: %v", env.runner.calls)
	}
	if !env.runner.hasCall("crane copy ghcr.io/acme/app:abc123 ghcr.io/mirror/app:abc123") {
		t.Fatalf("expected replication to mirror, got %v", env.runner.calls)
	}
	data, err := os.ReadFile(filepath.Join(env.dir, "build_result.json"))
	if err != nil {
		t.Fatalf("expected manifest, got %v", err)
	}
	if !strings.Contains(string(data), "ghcr.io/acme/app:abc123") {
		t.Fatalf("unexpected manifest: %s", data)
	}
}

func TestRunPushRejectsUnknownDestination(t *testing.T) {
	env := newTestEnv(t)
	if code := env.run(t, "push", "--destination", "staging"); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(env.errOut.String(), "local, ci, all or auto") {
		t.Fatalf("expected selector guidance, got %q", env.errOut.String())
	}
}

func TestRunPromoteImageCopiesBetweenEnvironments(t *testing.T) {
	env := newTestEnv(t,
		"GOOGLE_GKE_IMAGE_REPOSITORY=europe-docker.pkg.dev/dev/images",
		"GOOGLE_GKE_IMAGE_PP_REPOSITORY=europe-docker.pkg.dev/pp/images",
	)
	writeFile(t, filepath.Join(env.dir, "build_result.json"), `{"builds":[{"imageName":"api","tag":"europe-docker.pkg.dev/dev/images/api:1.2.0"}]}`)

	if code := env.run(t, "promote-image", "--source", "dev", "--destination", "pp"); code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, env.errOut.String())
	}
	want := "crane copy europe-docker.pkg.dev/dev/images/api:1.2.0 europe-docker.pkg.dev/pp/images/api:1.2.0"
	if !env.runner.hasCall(want) {
		t.Fatalf("expected %q, got %v", want, env.runner.calls)
	}
}

func TestRunWatchDeploymentRequiresDestination(t *testing.T) {
	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.dir, "build_result.json"), `{"builds":[{"tag":"api:1.2.0"}]}`)

	code := env.run(t, "watch-deployment", "--component", "api", "--environment", "pp")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(env.errOut.String(), "destination repository is not configured") {
		t.Fatalf("unexpected error output: %q", env.errOut.String())
	}
	if len(env.runner.calls) != 0 {
		t.Fatalf("expected no cluster calls, got %v", env.runner.calls)
	}
}

func TestRunWatchDeploymentWaitsForRollout(t *testing.T) {
	env := newTestEnv(t, "WATCH_DESTINATION_REPOSITORY=ghcr.io/acme")
	writeFile(t, filepath.Join(env.dir, "build_result.json"), `{"builds":[{"tag":"api:1.2.0"}]}`)
	env.runner.on("kubectl -n apps get deployment api", stubRule{output: "ghcr.io/acme/api:1.2.0"})

	code := env.run(t, "watch-deployment", "--component", "api", "--environment", "dev", "--namespace", "apps", "--timeout", "90s")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, env.errOut.String())
	}
	if !env.runner.hasCall("kubectl -n apps rollout status deployment/api --timeout 1m30s") {
		t.Fatalf("expected rollout status call, got %v", env.runner.calls)
	}
}

func TestRunLoadsEnvFile(t *testing.T) {
	const key = "OP_TEST_ENV_FILE_REPO"
	t.Setenv(key, "unset")
	os.Unsetenv(key)

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.dir, "ci.env"), key+"=ghcr.io/from-env-file\n")
	deps := env.deps(t)
	deps.Environ = os.Environ

	if code := Run([]string{"--env-file", "ci.env", "version"}, deps); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if got := os.Getenv(key); got != "ghcr.io/from-env-file" {
		t.Fatalf("expected env file value, got %q", got)
	}
}

func TestExitWithError(t *testing.T) {
	var buf bytes.Buffer
	code := exitWithError(&buf, errors.New("test error"), false)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if got := buf.String(); got != "✗ test error\n" {
		t.Fatalf("expected cross-marked line, got %q", got)
	}

	buf.Reset()
	if code := exitWithError(&buf, exitError{code: 2}, true); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if got := buf.String(); got != "::error ::exit status 2\n" {
		t.Fatalf("expected annotation, got %q", got)
	}
}

func TestRunPushProfileFallsBackToConfig(t *testing.T) {
	env := newTestEnv(t, "SKAFFOLD_DEFAULT_REPO=ghcr.io/acme", "SKAFFOLD_PROFILE=release")
	env.runner.on("skaffold build", stubRule{stream: runnerStream("Built app -> ghcr.io/acme/app:abc123\n")})

	if code := env.run(t, "push", "--no-file-output"); code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, env.errOut.String())
	}
	if !env.runner.hasCall("skaffold build --default-repo ghcr.io/acme --push --profile release") {
		t.Fatalf("expected configured profile, got %v", env.runner.calls)
	}

	env.runner.calls = nil
	if code := env.run(t, "push", "--no-file-output", "--profile", "hotfix"); code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, env.errOut.String())
	}
	if !env.runner.hasCall("skaffold build --default-repo ghcr.io/acme --push --profile hotfix") {
		t.Fatalf("expected flag profile to win, got %v", env.runner.calls)
	}
}

func TestRunBuildPushWritesManifestToWorkingDir(t *testing.T) {
	env := newTestEnv(t)
	sub := filepath.Join(env.dir, "deploy")
	if err := os.MkdirAll(filepath.Join(sub, "web"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(sub, "skaffold.yaml"), "apiVersion: skaffold/v4beta11\nkind: Config\nbuild:\n  artifacts:\n    - image: web\n      context: web\n      docker:\n        dockerfile: Dockerfile\n")

	code := env.run(t, "build-push", "--skaffold-file", "deploy/skaffold.yaml", "--repo", "ghcr.io/acme", "--tag", "1.0.0")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, env.errOut.String())
	}
	contextDir := filepath.Join(sub, "web")
	if !env.runner.hasCall("docker build -t ghcr.io/acme/web:1.0.0 -f " + filepath.Join(contextDir, "Dockerfile") + " " + contextDir) {
		t.Fatalf("expected context relative to skaffold file, got %v", env.runner.calls)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "build_result.json")); err != nil {
		t.Fatalf("expected manifest in working dir, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(sub, "build_result.json")); err == nil {
		t.Fatalf("manifest must not be written next to the skaffold file")
	}
}

func TestRunWatchDeploymentDefaultsAndReconcileFailure(t *testing.T) {
	env := newTestEnv(t, "WATCH_DESTINATION_REPOSITORY=ghcr.io/acme")
	writeFile(t, filepath.Join(env.dir, "build_result.json"), `{"builds":[{"tag":"api:1.2.0"}]}`)
	env.runner.on("flux reconcile", stubRule{err: errors.New("helmrelease api not found")})
	env.runner.on("kubectl -n default get deployment api", stubRule{output: "ghcr.io/acme/api:1.2.0"})

	code := env.run(t, "watch-deployment", "--component", "api", "--environment", "dev")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, env.errOut.String())
	}
	if !env.runner.hasCall("kubectl -n default rollout status deployment/api --timeout 30m0s") {
		t.Fatalf("expected 30m rollout timeout, got %v", env.runner.calls)
	}
	if !strings.Contains(env.errOut.String(), "flux reconcile skipped: helmrelease api not found") {
		t.Fatalf("expected reconcile failure on stderr, got %q", env.errOut.String())
	}
}

func TestPushFlagHelpMatchesBehavior(t *testing.T) {
	cmd := reflect.TypeOf(PushCmd{})
	pattern, _ := cmd.FieldByName("ImagePattern")
	if help := pattern.Tag.Get("help"); !strings.Contains(help, "named groups image and tag") {
		t.Fatalf("expected image-pattern help to name its groups, got %q", help)
	}
	profile, _ := cmd.FieldByName("Profile")
	if def, ok := profile.Tag.Lookup("default"); ok {
		t.Fatalf("expected no profile default so SKAFFOLD_PROFILE applies, got %q", def)
	}
}
