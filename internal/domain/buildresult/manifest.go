// Where: cli/internal/domain/buildresult/manifest.go
// What: BuildManifest types and artifact selection.
// Why: Downstream steps (watch, promote, replication) pick refs from one shared record.
package buildresult

import (
	"fmt"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/imageref"
)

// Build is one built artifact. Tag is the fully qualified ref, e.g.
// "ghcr.io/org/app:1.2.3" or "localhost:5001/app:latest@sha256:...".
type Build struct {
	ImageName string `json:"imageName,omitempty"`
	Tag       string `json:"tag"`
}

// Manifest is the ordered list of builds written after a successful build.
type Manifest struct {
	Builds []Build `json:"builds"`
}

// NewBuild creates a Build for ref, deriving the image name from its last path segment.
func NewBuild(ref string) Build {
	ref = strings.TrimSpace(ref)
	return Build{ImageName: imageref.Name(ref), Tag: ref}
}

// Tags returns every tag ref in order.
func (m Manifest) Tags() []string {
	tags := make([]string, 0, len(m.Builds))
	for _, b := range m.Builds {
		tags = append(tags, b.Tag)
	}
	return tags
}

// First returns the first build.
func (m Manifest) First() (Build, error) {
	if len(m.Builds) == 0 {
		return Build{}, ErrManifestNoBuilds
	}
	return m.Builds[0], nil
}

// Last returns the last build; base images come first by convention, so this
// is the application image.
func (m Manifest) Last() (Build, error) {
	if len(m.Builds) == 0 {
		return Build{}, ErrManifestNoBuilds
	}
	return m.Builds[len(m.Builds)-1], nil
}

// ForImage returns the build recorded for imageName. Entries written without an
// image name are matched on the last path segment of the tag ("<name>:...").
func (m Manifest) ForImage(imageName string) (Build, error) {
	name := strings.TrimSpace(imageName)
	for _, b := range m.Builds {
		if b.ImageName == name {
			return b, nil
		}
	}
	for _, b := range m.Builds {
		segment := b.Tag
		if slash := strings.LastIndex(segment, "/"); slash != -1 {
			segment = segment[slash+1:]
		}
		if strings.HasPrefix(segment, name+":") || strings.HasPrefix(segment, name+"@") {
			return b, nil
		}
	}
	names := make([]string, 0, len(m.Builds))
	for _, b := range m.Builds {
		names = append(names, imageref.Name(b.Tag))
	}
	return Build{}, fmt.Errorf("%w: %q (available: %s)", ErrImageNotFound, name, strings.Join(names, ", "))
}

// Select returns the build for imageName when set, otherwise the last build.
func (m Manifest) Select(imageName string) (Build, error) {
	if strings.TrimSpace(imageName) != "" {
		return m.ForImage(imageName)
	}
	return m.Last()
}

// SelectOrFirst returns the build for imageName when set, otherwise the first build.
func (m Manifest) SelectOrFirst(imageName string) (Build, error) {
	if strings.TrimSpace(imageName) != "" {
		return m.ForImage(imageName)
	}
	return m.First()
}
