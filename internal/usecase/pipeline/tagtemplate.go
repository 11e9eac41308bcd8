// Where: cli/internal/usecase/pipeline/tagtemplate.go
// What: Render the build-push --tag value as a template.
// Why: Local tags often embed the release version, commit or date.
package pipeline

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// TagData is exposed to --tag templates.
type TagData struct {
	Version string
	Commit  string
	Date    time.Time
}

// RenderTag expands value with sprig functions. Values without "{{" are returned
// trimmed, so plain tags never fail to parse.
func RenderTag(value string, data TagData) (string, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.Contains(trimmed, "{{") {
		return trimmed, nil
	}
	tmpl, err := template.New("tag").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTagTemplate, err)
	}
	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTagTemplate, err)
	}
	tag := strings.TrimSpace(out.String())
	if tag == "" {
		return "", fmt.Errorf("%w: %q renders to an empty tag", ErrInvalidTagTemplate, value)
	}
	return tag, nil
}
