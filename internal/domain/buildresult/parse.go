// Where: cli/internal/domain/buildresult/parse.go
// What: Extract image refs from free-text builder output.
// Why: Fallback when the builder cannot write structured output.
package buildresult

import (
	"fmt"
	"regexp"
	"strings"
)

// fallbackPatterns are scanned in priority order. Each one scans lines from the
// end so the most recent output wins, and stops at the first match.
var fallbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Tagged .+ as (?P<ref>[^\s]+)`),
	regexp.MustCompile(`Built .+ -> (?P<ref>[^\s]+)`),
	regexp.MustCompile(`[a-zA-Z0-9][a-zA-Z0-9._/-]+:[a-zA-Z0-9][a-zA-Z0-9._-]+`),
}

// ParseOutput extracts builds from builder output.
//
// With a non-empty pattern (named groups "image" and "tag"), every matching line
// yields one build, in output order; a non-empty result is returned without
// trying the fallbacks. Otherwise the fallback patterns recover at most one ref.
// An empty result is not an error here; callers decide how to fail.
func ParseOutput(output, pattern string) ([]Build, error) {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")

	if strings.TrimSpace(pattern) != "" {
		builds, err := parseWithPattern(lines, pattern)
		if err != nil {
			return nil, err
		}
		if len(builds) > 0 {
			return builds, nil
		}
	}

	for _, rx := range fallbackPatterns {
		refIndex := rx.SubexpIndex("ref")
		for i := len(lines) - 1; i >= 0; i-- {
			match := rx.FindStringSubmatch(lines[i])
			if match == nil {
				continue
			}
			ref := match[0]
			if refIndex > 0 {
				ref = match[refIndex]
			}
			ref = strings.TrimSpace(ref)
			if strings.ContainsAny(ref, "/:") {
				return []Build{NewBuild(ref)}, nil
			}
		}
	}
	return nil, nil
}

func parseWithPattern(lines []string, pattern string) ([]Build, error) {
	rx, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	imageIndex := rx.SubexpIndex("image")
	tagIndex := rx.SubexpIndex("tag")
	if imageIndex < 0 || tagIndex < 0 {
		return nil, fmt.Errorf("%w: pattern needs named groups 'image' and 'tag'", ErrInvalidPattern)
	}

	var builds []Build
	for _, line := range lines {
		match := rx.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		image := strings.TrimSpace(match[imageIndex])
		tag := strings.TrimSpace(match[tagIndex])
		if image == "" || tag == "" {
			continue
		}
		builds = append(builds, Build{ImageName: nameOf(image), Tag: image + ":" + tag})
	}
	return builds, nil
}

func nameOf(image string) string {
	if slash := strings.LastIndex(image, "/"); slash != -1 {
		return image[slash+1:]
	}
	return image
}
