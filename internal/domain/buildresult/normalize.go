// Where: cli/internal/domain/buildresult/normalize.go
// What: Normalize builder --file-output documents into a Manifest.
// Why: Skaffold's file output differs between versions; downstream steps need one shape.
package buildresult

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeFileOutput converts a builder's structured output into a Manifest.
// Entries whose tag already carries ":" are kept; {imageName, tag} pairs are joined;
// anything else is qualified with defaultRepo. A document without "builds" but with
// a top-level image/tag is treated as a single build.
func NormalizeFileOutput(data []byte, defaultRepo string) (Manifest, error) {
	var document map[string]any
	if err := json.Unmarshal(data, &document); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}
	repo := strings.TrimSuffix(strings.TrimSpace(defaultRepo), "/")

	rawBuilds, _ := document["builds"].([]any)
	if len(rawBuilds) == 0 {
		image, hasImage := document["image"].(string)
		tag, hasTag := document["tag"].(string)
		if !hasImage && !hasTag {
			return Manifest{}, ErrManifestNoBuilds
		}
		return Manifest{Builds: []Build{qualifiedBuild(repo, image, tag)}}, nil
	}

	manifest := Manifest{Builds: make([]Build, 0, len(rawBuilds))}
	for _, item := range rawBuilds {
		switch entry := item.(type) {
		case map[string]any:
			tag := stringField(entry, "tag")
			imageName := stringField(entry, "imageName")
			switch {
			case strings.Contains(tag, ":"):
				build := NewBuild(tag)
				if imageName != "" {
					build.ImageName = nameOf(imageName)
				}
				manifest.Builds = append(manifest.Builds, build)
			case imageName != "" && tag != "":
				build := NewBuild(imageName + ":" + tag)
				build.ImageName = nameOf(imageName)
				manifest.Builds = append(manifest.Builds, build)
			default:
				manifest.Builds = append(manifest.Builds, qualifiedBuild(repo, imageName, tag))
			}
		default:
			manifest.Builds = append(manifest.Builds, NewBuild(fmt.Sprint(entry)))
		}
	}
	return manifest, nil
}

func qualifiedBuild(repo, image, tag string) Build {
	if strings.TrimSpace(image) == "" {
		image = "app"
	}
	if strings.TrimSpace(tag) == "" {
		tag = "latest"
	}
	ref := image + ":" + tag
	if repo != "" {
		ref = repo + "/" + ref
	}
	build := NewBuild(ref)
	build.ImageName = nameOf(image)
	return build
}

func stringField(entry map[string]any, key string) string {
	value, _ := entry[key].(string)
	return strings.TrimSpace(value)
}
