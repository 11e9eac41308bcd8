// Where: cli/internal/version/version_test.go
// What: Tests for version string resolution.
// Why: Keep release stamps ahead of VCS info and the dirty suffix stable.
package version

import (
	"runtime/debug"
	"testing"
)

func stubBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	prev := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
	t.Cleanup(func() { readBuildInfo = prev })
}

func TestGetVersionPrefersStampedVersion(t *testing.T) {
	prev := Version
	Version = "v1.4.0"
	t.Cleanup(func() { Version = prev })

	if got := GetVersion(); got != "v1.4.0" {
		t.Fatalf("expected stamped version, got %q", got)
	}
}

func TestGetVersionShortensRevisionAndMarksDirty(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
	}}, true)

	if got := GetVersion(); got != "0123456 (dirty)" {
		t.Fatalf("unexpected version: %q", got)
	}
}

func TestGetVersionFallsBackToDev(t *testing.T) {
	stubBuildInfo(t, nil, false)
	if got := GetVersion(); got != "dev" {
		t.Fatalf("expected dev, got %q", got)
	}

	stubBuildInfo(t, &debug.BuildInfo{}, true)
	if got := GetVersion(); got != "dev" {
		t.Fatalf("expected dev without revision, got %q", got)
	}
}
