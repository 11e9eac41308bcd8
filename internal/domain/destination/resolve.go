// Where: cli/internal/domain/destination/resolve.go
// What: Destination selection and default repository precedence.
// Why: Push, run and build-push agree on which registry a build targets.
package destination

import (
	"fmt"
	"strings"
)

// Selector picks entries from a Set.
type Selector string

const (
	SelectLocal Selector = "local"
	SelectCI    Selector = "ci"
	SelectAll   Selector = "all"
	SelectAuto  Selector = "auto"
)

// ParseSelector validates a user-supplied selector; empty means auto.
func ParseSelector(value string) (Selector, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return SelectAuto, nil
	}
	switch Selector(trimmed) {
	case SelectLocal, SelectCI, SelectAll, SelectAuto:
		return Selector(trimmed), nil
	}
	return "", fmt.Errorf("%w: %q (use local|ci|all|auto)", ErrInvalidSelector, value)
}

// Resolve returns the ordered registries for selector. auto means ci inside CI
// and local elsewhere; all keeps the first occurrence of duplicated entries.
func Resolve(set Set, selector Selector, inCI bool) ([]string, error) {
	if selector == SelectAuto {
		if inCI {
			selector = SelectCI
		} else {
			selector = SelectLocal
		}
	}

	switch selector {
	case SelectLocal:
		if set.Local == "" {
			return []string{}, nil
		}
		return []string{set.Local}, nil
	case SelectCI:
		return append([]string{}, set.CI...), nil
	case SelectAll:
		seen := make(map[string]struct{}, len(set.CI)+1)
		out := make([]string, 0, len(set.CI)+1)
		candidates := append([]string{set.Local}, set.CI...)
		for _, url := range candidates {
			if url == "" {
				continue
			}
			if _, dup := seen[url]; dup {
				continue
			}
			seen[url] = struct{}{}
			out = append(out, url)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q (use local|ci|all|auto)", ErrInvalidSelector, string(selector))
}

// First returns the first registry for selector, or "" when none.
func First(set Set, selector Selector, inCI bool) (string, error) {
	registries, err := Resolve(set, selector, inCI)
	if err != nil {
		return "", err
	}
	if len(registries) == 0 {
		return "", nil
	}
	return registries[0], nil
}

// ResolveDefaultRepo picks the repository for a build: the explicit flag, then
// the configured default, then the first destination for selector.
func ResolveDefaultRepo(flag, configured string, set Set, selector Selector, inCI bool) (string, error) {
	if repo := strings.TrimSpace(flag); repo != "" {
		return strings.TrimRight(repo, "/"), nil
	}
	if repo := strings.TrimSpace(configured); repo != "" {
		return strings.TrimRight(repo, "/"), nil
	}
	return First(set, selector, inCI)
}
