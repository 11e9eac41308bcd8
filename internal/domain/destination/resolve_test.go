// Where: cli/internal/domain/destination/resolve_test.go
// What: Tests for destination selection.
// Why: Keep auto/all semantics stable across push and run.
package destination

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolveSelectors(t *testing.T) {
	set := Set{Local: "a", CI: []string{"b", "a"}}

	tests := []struct {
		name     string
		selector Selector
		inCI     bool
		want     []string
	}{
		{name: "local", selector: SelectLocal, want: []string{"a"}},
		{name: "ci", selector: SelectCI, want: []string{"b", "a"}},
		{name: "all dedups keeping first", selector: SelectAll, want: []string{"a", "b"}},
		{name: "auto outside ci", selector: SelectAuto, want: []string{"a"}},
		{name: "auto inside ci", selector: SelectAuto, inCI: true, want: []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(set, tt.selector, tt.inCI)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestResolveLocalEmpty(t *testing.T) {
	got, err := Resolve(Set{CI: []string{"b"}}, SelectLocal, false)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no registries, got %v", got)
	}
}

func TestResolveInvalidSelector(t *testing.T) {
	_, err := Resolve(Set{}, Selector("staging"), false)
	if !errors.Is(err, ErrInvalidSelector) {
		t.Fatalf("expected ErrInvalidSelector, got %v", err)
	}
	if _, err := ParseSelector("bogus"); !errors.Is(err, ErrInvalidSelector) {
		t.Fatalf("expected ParseSelector to reject bogus, got %v", err)
	}
	if sel, err := ParseSelector(" CI "); err != nil || sel != SelectCI {
		t.Fatalf("expected ci selector, got %q (%v)", sel, err)
	}
}

func TestResolveDefaultRepoPrecedence(t *testing.T) {
	set := Set{Local: "localhost:5001", CI: []string{"ghcr.io/acme"}}

	if got, _ := ResolveDefaultRepo("flag.io/x/", "cfg.io/y", set, SelectAuto, true); got != "flag.io/x" {
		t.Fatalf("expected flag to win, got %q", got)
	}
	if got, _ := ResolveDefaultRepo("", "cfg.io/y", set, SelectAuto, true); got != "cfg.io/y" {
		t.Fatalf("expected config to win, got %q", got)
	}
	if got, _ := ResolveDefaultRepo("", "", set, SelectAuto, true); got != "ghcr.io/acme" {
		t.Fatalf("expected first ci destination, got %q", got)
	}
	if got, _ := ResolveDefaultRepo("", "", Set{}, SelectLocal, false); got != "" {
		t.Fatalf("expected empty repo, got %q", got)
	}
}
