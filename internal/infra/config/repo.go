// Where: cli/internal/infra/config/repo.go
// What: Repository root discovery.
// Why: .registry and the run config live at the repo root, not necessarily in cwd.
package config

import (
	"os"
	"path/filepath"

	"github.com/octopilot/pipeline-tools/cli/internal/meta"
)

// ResolveRepoRoot searches upward from startDir for a directory holding
// .registry or .git. It returns startDir itself when no marker is found.
func ResolveRepoRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	if root, ok := findRepoRoot(dir); ok {
		return root, nil
	}
	return dir, nil
}

// findRepoRoot walks parents of dir until a marker is found.
func findRepoRoot(dir string) (string, bool) {
	markers := []string{
		meta.RegistryFilename,
		".git",
	}

	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
