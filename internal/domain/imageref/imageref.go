// Where: cli/internal/domain/imageref/imageref.go
// What: Image reference helpers (tag extraction, relocation, latest refs).
// Why: Builders, copiers and the deployment watcher all slice refs the same way.
package imageref

import (
	"strings"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"
)

// Parts is a decomposed image reference.
type Parts struct {
	// Name is the repository without tag or digest, e.g. "localhost:5001/team/app".
	Name   string
	Tag    string
	Digest digest.Digest
}

// Split decomposes ref. Strict parsing is tried first; refs the distribution
// grammar rejects (uppercase, odd hosts) fall back to positional slicing.
func Split(ref string) Parts {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return Parts{}
	}
	if parsed, err := reference.Parse(trimmed); err == nil {
		parts := Parts{}
		if named, ok := parsed.(reference.Named); ok {
			parts.Name = named.Name()
		}
		if tagged, ok := parsed.(reference.Tagged); ok {
			parts.Tag = tagged.Tag()
		}
		if digested, ok := parsed.(reference.Digested); ok {
			parts.Digest = digested.Digest()
		}
		if parts.Name != "" {
			return parts
		}
	}
	return splitLoose(trimmed)
}

func splitLoose(ref string) Parts {
	parts := Parts{}
	rest := ref
	if at := strings.Index(rest, "@"); at != -1 {
		if d, err := digest.Parse(rest[at+1:]); err == nil {
			parts.Digest = d
		}
		rest = rest[:at]
	}
	slash := strings.LastIndex(rest, "/")
	if colon := strings.LastIndex(rest, ":"); colon > slash {
		parts.Tag = rest[colon+1:]
		rest = rest[:colon]
	}
	parts.Name = rest
	return parts
}

// Tag returns the trailing tag of ref with any digest stripped, or "" when untagged.
func Tag(ref string) string {
	return Split(ref).Tag
}

// Name returns the last path segment of the repository, e.g. "app".
func Name(ref string) string {
	name := Split(ref).Name
	if slash := strings.LastIndex(name, "/"); slash != -1 {
		return name[slash+1:]
	}
	return name
}

// WithTag returns ref re-tagged as tag, dropping any digest.
func WithTag(ref, tag string) string {
	parts := Split(ref)
	if parts.Name == "" {
		return ""
	}
	return parts.Name + ":" + tag
}

// Latest returns ref re-tagged as "latest".
func Latest(ref string) string {
	return WithTag(ref, "latest")
}

// Relocate moves the image named by ref under repo, keeping the tag.
// An untagged ref is relocated with fallbackTag.
func Relocate(ref, repo, fallbackTag string) string {
	parts := Split(ref)
	tag := parts.Tag
	if tag == "" {
		tag = fallbackTag
	}
	name := Name(ref)
	repo = strings.TrimSuffix(strings.TrimSpace(repo), "/")
	if repo == "" {
		return name + ":" + tag
	}
	return repo + "/" + name + ":" + tag
}

// Qualify prefixes a bare "image:tag" with repo; refs that already carry a path are kept.
func Qualify(ref, repo string) string {
	if strings.Contains(ref, "/") {
		return ref
	}
	repo = strings.TrimSuffix(strings.TrimSpace(repo), "/")
	if repo == "" {
		return ref
	}
	return repo + "/" + ref
}

// TrimRepo returns the part of ref below repo. When ref does not live under repo,
// the leading registry host is dropped instead.
func TrimRepo(ref, repo string) string {
	repo = strings.TrimSuffix(strings.TrimSpace(repo), "/")
	if repo != "" && strings.HasPrefix(ref, repo+"/") {
		return strings.TrimPrefix(ref, repo+"/")
	}
	if slash := strings.Index(ref, "/"); slash != -1 {
		return ref[slash+1:]
	}
	return ref
}

// Host returns the registry host of a repository or ref, e.g. "localhost:5001".
func Host(ref string) string {
	trimmed := strings.TrimSpace(ref)
	trimmed = strings.TrimPrefix(trimmed, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	if slash := strings.Index(trimmed, "/"); slash != -1 {
		return trimmed[:slash]
	}
	return trimmed
}

// ReplaceHost swaps the registry host portion of ref.
func ReplaceHost(ref, host string) string {
	current := Host(ref)
	if current == "" {
		return ref
	}
	return host + strings.TrimPrefix(strings.TrimSpace(ref), current)
}

// IsLoopbackHost reports whether host (optionally with port) targets the local machine.
func IsLoopbackHost(host string) bool {
	name := host
	if colon := strings.LastIndex(name, ":"); colon != -1 {
		name = name[:colon]
	}
	switch strings.ToLower(name) {
	case "localhost", "127.0.0.1":
		return true
	}
	return false
}

// StripDigest drops a trailing "@sha256:..." while keeping name and tag.
func StripDigest(ref string) string {
	trimmed := strings.TrimSpace(ref)
	if at := strings.Index(trimmed, "@"); at != -1 {
		return trimmed[:at]
	}
	return trimmed
}
