// Where: cli/internal/usecase/localregistry/certs.go
// What: Registry certificate location, fingerprint and trust sentinel.
// Why: Trust installs need sudo; the sentinel keeps repeat runs silent.
package localregistry

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/google/renameio/v2"
	"github.com/octopilot/pipeline-tools/cli/internal/meta"
)

const (
	certFileName       = "tls.crt"
	trustSentinelName  = ".system-trust-installed"
	registryCertInside = meta.RegistryCertSource + "/" + certFileName
)

// DefaultCertsDir returns $XDG_CONFIG_HOME/registry-tls/certs.
func DefaultCertsDir() string {
	return filepath.Join(xdg.ConfigHome, meta.RegistryCertDirName, "certs")
}

// Fingerprint returns the SHA-1 of the first certificate in path as
// uppercase hex without separators.
func Fingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read certificate: %w", err)
	}
	der := data
	if block, _ := pem.Decode(data); block != nil {
		der = block.Bytes
	}
	sum := sha1.Sum(der)
	return strings.ToUpper(hex.EncodeToString(sum[:])), nil
}

// trustRecorded reports whether the sentinel in certsDir holds fingerprint.
func trustRecorded(certsDir, fingerprint string) bool {
	data, err := os.ReadFile(filepath.Join(certsDir, trustSentinelName))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == fingerprint
}

func recordTrust(certsDir, fingerprint string) error {
	path := filepath.Join(certsDir, trustSentinelName)
	if err := renameio.WriteFile(path, []byte(fingerprint+"\n"), 0o644); err != nil {
		return fmt.Errorf("write trust sentinel: %w", err)
	}
	return nil
}
