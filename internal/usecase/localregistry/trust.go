// Where: cli/internal/usecase/localregistry/trust.go
// What: Install the registry certificate into host or Colima trust stores.
// Why: Docker and pack refuse the self-signed registry until it is trusted.
package localregistry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const linuxCertDestination = "/usr/local/share/ca-certificates/registry-tls-localhost.crt"

var ErrUnsupportedPlatform = errors.New("system trust is not supported on this platform")

// colimaRegistryHosts are the names the registry is reached by from inside the VM.
var colimaRegistryHosts = []string{"localhost:5001", "host.docker.internal:5001", "registry.local:5001"}

// installSystemTrust adds certPath to the host trust store for goos.
func (w Workflow) installSystemTrust(ctx context.Context, goos, certPath string, userKeychain bool) error {
	switch goos {
	case "darwin":
		if userKeychain {
			keychain := filepath.Join(w.homeDir(), "Library", "Keychains", "login.keychain-db")
			return w.Runner.Run(ctx, "", "security", "add-trusted-cert", "-r", "trustRoot", "-k", keychain, certPath)
		}
		w.ui().Info("Adding certificate to macOS System Keychain (may prompt for sudo)...")
		return w.Runner.Run(
			ctx, "", "sudo", "security", "add-trusted-cert",
			"-d", "-r", "trustRoot", "-k", "/Library/Keychains/System.keychain", certPath,
		)
	case "linux":
		w.ui().Info(fmt.Sprintf("Copying cert to %s (sudo)...", linuxCertDestination))
		if err := w.Runner.Run(ctx, "", "sudo", "cp", certPath, linuxCertDestination); err != nil {
			return err
		}
		return w.Runner.Run(ctx, "", "sudo", "update-ca-certificates")
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
}

// installColimaTrust writes the certificate to /etc/docker/certs.d inside the Colima VM.
func (w Workflow) installColimaTrust(ctx context.Context, certPath string) error {
	if err := w.Runner.RunQuiet(ctx, "", "colima", "status"); err != nil {
		return fmt.Errorf("colima is not running or not installed: %w", err)
	}
	cert, err := os.ReadFile(certPath)
	if err != nil {
		return fmt.Errorf("read certificate: %w", err)
	}
	dirs := make([]string, 0, len(colimaRegistryHosts))
	copies := make([]string, 0, len(colimaRegistryHosts))
	for _, host := range colimaRegistryHosts {
		dir := "/etc/docker/certs.d/" + host
		dirs = append(dirs, dir)
		copies = append(copies, "cp /tmp/registry-ca.crt "+dir+"/ca.crt")
	}
	script := "mkdir -p " + strings.Join(dirs, " ") +
		" && cat > /tmp/registry-ca.crt && " + strings.Join(copies, " && ")

	w.ui().Info("Installing certificate into Colima VM...")
	output, err := w.Runner.RunInput(ctx, "", string(cert), "colima", "ssh", "--", "sudo", "sh", "-c", script)
	if err != nil {
		return fmt.Errorf("install cert in colima: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (w Workflow) homeDir() string {
	if w.HomeDir != "" {
		return w.HomeDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
