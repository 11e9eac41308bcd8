// Where: cli/internal/domain/release/release.go
// What: Release version resolution from CI refs or git tags.
// Why: Tagged builds publish <version> and latest; other builds keep the builder's tag.
package release

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/octopilot/pipeline-tools/cli/internal/constants"
)

const tagRefPrefix = "refs/tags/"

// Release describes the version a build should be tagged with.
type Release struct {
	Version   string
	AddLatest bool
	Source    string
}

// Resolve returns the release for the checkout in dir. When GITHUB_REF is set
// it is authoritative and git is never consulted.
func Resolve(dir string, getenv func(string) string) (Release, bool) {
	if ref := strings.TrimSpace(getenv(constants.EnvGitHubRef)); ref != "" {
		version, ok := FromGitHubRef(ref)
		if !ok {
			return Release{}, false
		}
		return Release{Version: version, AddLatest: true, Source: constants.EnvGitHubRef}, true
	}

	tags, err := HeadTags(dir)
	if err != nil || len(tags) == 0 {
		return Release{}, false
	}
	version := Canonical(Pick(tags))
	if version == "" {
		return Release{}, false
	}
	return Release{Version: version, AddLatest: true, Source: "git"}, true
}

// FromGitHubRef extracts the version from refs/tags/<tag>.
func FromGitHubRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, tagRefPrefix) {
		return "", false
	}
	version := Canonical(strings.TrimPrefix(ref, tagRefPrefix))
	return version, version != ""
}

// Canonical strips a leading "v" and normalizes strict semver versions.
func Canonical(tag string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(tag), "v")
	if parsed, err := semver.StrictNewVersion(trimmed); err == nil {
		return parsed.String()
	}
	return trimmed
}

// Pick chooses the highest semver tag, or the lexically first tag when none
// parse as semver.
func Pick(tags []string) string {
	var best *semver.Version
	var bestTag string
	for _, tag := range tags {
		parsed, err := semver.NewVersion(tag)
		if err != nil {
			continue
		}
		if best == nil || parsed.GreaterThan(best) {
			best = parsed
			bestTag = tag
		}
	}
	if bestTag != "" {
		return bestTag
	}
	if len(tags) == 0 {
		return ""
	}
	sorted := append([]string{}, tags...)
	sort.Strings(sorted)
	return sorted[0]
}

// HeadTags lists tags (lightweight or annotated) pointing at HEAD.
func HeadTags(dir string) ([]string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return nil, err
	}
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if annotated, err := repo.TagObject(target); err == nil {
			commit, err := annotated.Commit()
			if err != nil {
				return nil
			}
			target = commit.Hash
		} else if !errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil
		}
		if target == head.Hash() {
			tags = append(tags, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk tags: %w", err)
	}
	return tags, nil
}

// ShortCommit returns the abbreviated HEAD commit hash.
func ShortCommit(dir string) (string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	var commit *object.Commit
	if commit, err = repo.CommitObject(head.Hash()); err != nil {
		return "", fmt.Errorf("read HEAD commit: %w", err)
	}
	hash := commit.Hash.String()
	if len(hash) > 7 {
		hash = hash[:7]
	}
	return hash, nil
}

func openRepo(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository at %s: %w", dir, err)
	}
	return repo, nil
}
