// Where: cli/internal/domain/destination/registry_file_test.go
// What: Tests for .registry loading.
// Why: Guard accepted shapes and the configuration errors users see.
package destination

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseRegistryFile(t *testing.T) {
	lookup := MapLookup(map[string]string{"OWNER": "octopilot"})
	data := []byte(`
local: " localhost:${REGISTRY_PORT:-5001}/ "
ci:
  - ghcr.io/${OWNER}/
  - url: europe-docker.pkg.dev/proj/images
`)

	set, err := Parse(data, lookup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if set.Local != "localhost:5001" {
		t.Fatalf("unexpected local: %q", set.Local)
	}
	want := []string{"ghcr.io/octopilot", "europe-docker.pkg.dev/proj/images"}
	if !reflect.DeepEqual(set.CI, want) {
		t.Fatalf("expected %v, got %v", want, set.CI)
	}
}

func TestParseFallsBackToDestinations(t *testing.T) {
	set, err := Parse([]byte("ci: []\ndestinations:\n  - ghcr.io/acme\n"), nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(set.CI, []string{"ghcr.io/acme"}) {
		t.Fatalf("expected destinations fallback, got %v", set.CI)
	}
}

func TestParseEmptyDocuments(t *testing.T) {
	for _, doc := range []string{"", "# only a comment\n", "~\n"} {
		set, err := Parse([]byte(doc), nil)
		if err != nil {
			t.Fatalf("parse %q: %v", doc, err)
		}
		if set.Local != "" || len(set.CI) != 0 {
			t.Fatalf("expected empty set for %q, got %+v", doc, set)
		}
	}
}

func TestParseRejectsInvalidShapes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{name: "top-level list", doc: "- ghcr.io/acme\n", want: ErrRegistryNotMapping},
		{name: "ci scalar", doc: "ci: ghcr.io/acme\n", want: ErrCINotList},
		{name: "entry number", doc: "ci:\n  - 5000\n", want: ErrInvalidEntry},
		{name: "entry mapping without url", doc: "local:\n  host: x\n", want: ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFileMissingIsEmpty(t *testing.T) {
	set, found, err := LoadFile(filepath.Join(t.TempDir(), ".registry"), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatalf("expected missing file to report not found")
	}
	if set.Local != "" || set.CI != nil {
		t.Fatalf("expected empty set, got %+v", set)
	}
}

func TestLoadFileWrapsPath(t *testing.T) {
	dir := t.TempDir()
	path := FilePath(dir)
	if err := os.WriteFile(path, []byte("ci: nope\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, found, err := LoadFile(path, nil)
	if !found {
		t.Fatalf("expected file to be found")
	}
	if !errors.Is(err, ErrCINotList) {
		t.Fatalf("expected ErrCINotList, got %v", err)
	}
}
