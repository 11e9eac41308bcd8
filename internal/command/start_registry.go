// Where: cli/internal/command/start_registry.go
// What: start-registry command handler.
// Why: Wire docker, prompts and platform details into the local registry workflow.
package command

import (
	"os"
	"runtime"

	"github.com/octopilot/pipeline-tools/cli/internal/usecase/localregistry"
)

type StartRegistryCmd struct {
	Image        string `name:"image" env:"REGISTRY_TLS_IMAGE" help:"Registry image (default: ghcr.io/octopilot/registry-tls:latest)"`
	CertsDir     string `name:"certs-dir" help:"Where to copy the registry certificate (default: $XDG_CONFIG_HOME/registry-tls/certs)"`
	TrustCert    bool   `name:"trust-cert" help:"Install the certificate into the system trust store"`
	TrustColima  bool   `name:"trust-cert-colima" help:"Install the certificate into the Colima VM's docker trust"`
	UserKeychain bool   `name:"user-keychain" help:"macOS: use the login keychain instead of the System keychain"`
}

func runStartRegistry(cli CLI, env *session) int {
	cmd := cli.StartRegistry
	client, closer, err := env.dockerClient()
	if err != nil {
		return env.fail(err)
	}
	if closer != nil {
		defer closer.Close()
	}

	home, _ := os.UserHomeDir()
	wf := localregistry.Workflow{
		Runner:        env.deps.Runner,
		Docker:        client,
		UserInterface: env.ui,
		Prompter:      env.deps.Prompter,
		Interactive:   env.interactive(),
		GOOS:          runtime.GOOS,
		HomeDir:       home,
		Probe:         env.deps.RegistryProbe,
	}
	_, err = wf.Start(env.ctx, localregistry.Request{
		Image:        cmd.Image,
		CertsDir:     env.path(cmd.CertsDir),
		TrustCert:    cmd.TrustCert,
		TrustColima:  cmd.TrustColima,
		UserKeychain: cmd.UserKeychain,
	})
	if err != nil {
		return env.fail(err)
	}
	return 0
}
