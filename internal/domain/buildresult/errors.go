// Where: cli/internal/domain/buildresult/errors.go
// What: Sentinel errors for build manifest handling.
// Why: Callers distinguish a missing manifest from an empty one.
package buildresult

import "errors"

var (
	ErrManifestNotFound = errors.New("build manifest not found")
	ErrManifestNoBuilds = errors.New("build manifest has no builds")
	ErrManifestInvalid  = errors.New("build manifest is invalid")
	ErrImageNotFound    = errors.New("image not found in build manifest")
	ErrNoReference      = errors.New("no image reference found in build output")
	ErrInvalidPattern   = errors.New("invalid image pattern")
)
