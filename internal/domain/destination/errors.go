// Where: cli/internal/domain/destination/errors.go
// What: Sentinel errors for registry destination handling.
// Why: Configuration errors are reported once and never retried.
package destination

import "errors"

var (
	ErrRegistryNotMapping = errors.New(".registry must be a YAML mapping")
	ErrCINotList          = errors.New(".registry 'ci' must be a list")
	ErrInvalidEntry       = errors.New("invalid registry entry")
	ErrInvalidSelector    = errors.New("invalid destination selector")
)
