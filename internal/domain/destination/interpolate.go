// Where: cli/internal/domain/destination/interpolate.go
// What: Environment interpolation for registry entries.
// Why: Let one .registry file serve forks and CI owners (${GITHUB_REPOSITORY_OWNER}).
package destination

import (
	"os"
	"regexp"
	"strings"
)

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// interpolationPattern matches ${VAR}, ${VAR:-default}, $VAR and $$.
var interpolationPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}|\$([A-Za-z_][A-Za-z0-9_]*)|\$\$`)

// Interpolate expands variables in value. Unset variables become their default
// or the empty string; interpolation never fails.
func Interpolate(value string, lookup LookupFunc) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	matches := interpolationPattern.FindAllStringSubmatchIndex(value, -1)
	if len(matches) == 0 {
		return value
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(value[last:m[0]])
		last = m[1]

		switch {
		case m[2] >= 0:
			name := value[m[2]:m[3]]
			if resolved, ok := lookup(name); ok {
				b.WriteString(resolved)
			} else if m[4] >= 0 {
				b.WriteString(value[m[4]:m[5]])
			}
		case m[6] >= 0:
			if resolved, ok := lookup(value[m[6]:m[7]]); ok {
				b.WriteString(resolved)
			}
		default:
			b.WriteByte('$')
		}
	}
	b.WriteString(value[last:])
	return b.String()
}

// MapLookup adapts a map to LookupFunc.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}
