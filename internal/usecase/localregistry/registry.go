// Where: cli/internal/usecase/localregistry/registry.go
// What: `op start-registry`: (re)start the local TLS registry and trust its cert.
// Why: build-push and run default to localhost:5001, which must speak trusted TLS.
package localregistry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/octopilot/pipeline-tools/cli/internal/infra/docker"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/interaction"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/runner"
	"github.com/octopilot/pipeline-tools/cli/internal/infra/ui"
	"github.com/octopilot/pipeline-tools/cli/internal/meta"
)

const (
	certWaitTimeout  = 15 * time.Second
	certWaitInterval = 500 * time.Millisecond
	probeTimeout     = 10 * time.Second
)

var (
	ErrCertNotReady           = errors.New("registry certificate was not generated in time")
	errDockerNotConfigured    = errors.New("localregistry: docker client is not configured")
	errRunnerNotConfigured    = errors.New("localregistry: command runner is not configured")
	errContainerIDNotReported = errors.New("docker run did not report a container id")
)

// ToolRunner runs docker, sudo and colima.
type ToolRunner interface {
	runner.CommandRunner
	runner.InputRunner
}

// Request configures start-registry.
type Request struct {
	Image        string
	CertsDir     string
	TrustCert    bool
	TrustColima  bool
	UserKeychain bool
}

// Result describes the started registry.
type Result struct {
	ContainerID string
	CertPath    string
	Trusted     bool
}

// Workflow starts the registry container.
type Workflow struct {
	Runner        ToolRunner
	Docker        docker.DockerClient
	UserInterface ui.UserInterface
	Prompter      interaction.Prompter
	Interactive   bool
	GOOS          string
	HomeDir       string
	Probe         ReadinessProbe
	Sleep         func(time.Duration)
}

// Start replaces any running registry and prepares its certificate.
func (w Workflow) Start(ctx context.Context, req Request) (Result, error) {
	if w.Runner == nil {
		return Result{}, errRunnerNotConfigured
	}
	if w.Docker == nil {
		return Result{}, errDockerNotConfigured
	}
	image := strings.TrimSpace(req.Image)
	if image == "" {
		image = meta.RegistryImage
	}
	certsDir := strings.TrimSpace(req.CertsDir)
	if certsDir == "" {
		certsDir = DefaultCertsDir()
	}

	removed, err := docker.RemoveContainersByName(ctx, w.Docker, meta.RegistryContainerName)
	if err != nil {
		return Result{}, err
	}
	if len(removed) > 0 {
		w.ui().Info(fmt.Sprintf("Removed existing %s container", meta.RegistryContainerName))
	}

	args := []string{
		"run", "-d",
		"-p", meta.RegistryPortMapping,
		"-v", meta.RegistryDataVolume,
		"-v", meta.RegistryCertsVolume,
		"--restart", "unless-stopped",
		"--name", meta.RegistryContainerName,
		image,
	}
	w.ui().Step(runner.Describe("docker", args...))
	output, err := w.Runner.RunOutput(ctx, "", "docker", args...)
	if err != nil {
		return Result{}, fmt.Errorf("start registry: %w: %s", err, strings.TrimSpace(string(output)))
	}
	containerID := lastLine(string(output))
	if containerID == "" {
		return Result{}, errContainerIDNotReported
	}

	if err := w.waitForCert(ctx, containerID); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(certsDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create certs dir: %w", err)
	}
	if output, err := w.Runner.RunOutput(
		ctx, "", "docker", "cp", containerID+":"+meta.RegistryCertSource+"/.", certsDir,
	); err != nil {
		return Result{}, fmt.Errorf("copy registry certs: %w: %s", err, strings.TrimSpace(string(output)))
	}
	certPath := filepath.Join(certsDir, certFileName)
	w.ui().Info("Certs copied to " + certsDir)

	if err := w.probe()(ctx, meta.DefaultLocalRepo, certPath, probeTimeout); err != nil {
		w.ui().Warn(fmt.Sprintf("Registry started but is not answering yet: %v", err))
	} else {
		w.ui().Success("Registry ready at https://" + meta.DefaultLocalRepo)
	}

	result := Result{ContainerID: containerID, CertPath: certPath}
	trusted, err := w.trust(ctx, req, certsDir, certPath)
	if err != nil {
		return result, err
	}
	result.Trusted = trusted
	return result, nil
}

func (w Workflow) waitForCert(ctx context.Context, containerID string) error {
	attempts := int(certWaitTimeout / certWaitInterval)
	for attempt := 1; ; attempt++ {
		err := w.Runner.RunQuiet(ctx, "", "docker", "exec", containerID, "test", "-f", registryCertInside)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt >= attempts {
			return fmt.Errorf("%w (%s)", ErrCertNotReady, certWaitTimeout)
		}
		w.sleep(certWaitInterval)
	}
}

func (w Workflow) trust(ctx context.Context, req Request, certsDir, certPath string) (bool, error) {
	trusted := false
	if req.TrustColima {
		if err := w.installColimaTrust(ctx, certPath); err != nil {
			return false, err
		}
		w.ui().Success("Cert installed in Colima. Restart Colima ('colima restart') if pulls still fail.")
		trusted = true
	}

	install := req.TrustCert
	if !install && !req.TrustColima && w.Interactive && w.Prompter != nil {
		confirmed, err := w.Prompter.Confirm(
			"Install cert for system trust? This may ask for your password (sudo).",
			certPath,
		)
		if err != nil {
			return false, err
		}
		install = confirmed
	}
	if !install {
		if !trusted {
			w.ui().Info(
				"To trust the cert later, run: op start-registry --trust-cert. " +
					`Or add "insecure-registries": ["localhost:5001"] to Docker settings.`,
			)
		}
		return trusted, nil
	}

	fingerprint, err := Fingerprint(certPath)
	if err != nil {
		return trusted, err
	}
	if trustRecorded(certsDir, fingerprint) {
		w.ui().Info("Cert already trusted (fingerprint " + fingerprint + ").")
		return true, nil
	}
	if err := w.installSystemTrust(ctx, w.goos(), certPath, req.UserKeychain); err != nil {
		return trusted, fmt.Errorf("install system trust: %w", err)
	}
	if err := recordTrust(certsDir, fingerprint); err != nil {
		return true, err
	}
	w.ui().Success("Cert installed for system trust. You may need to restart Docker for it to take effect.")
	return true, nil
}

func (w Workflow) ui() ui.UserInterface {
	if w.UserInterface == nil {
		return ui.Discard()
	}
	return w.UserInterface
}

func (w Workflow) goos() string {
	if w.GOOS != "" {
		return w.GOOS
	}
	return runtime.GOOS
}

func (w Workflow) probe() ReadinessProbe {
	if w.Probe != nil {
		return w.Probe
	}
	return defaultReadinessProbe
}

func (w Workflow) sleep(d time.Duration) {
	if w.Sleep != nil {
		w.Sleep(d)
		return
	}
	time.Sleep(d)
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
