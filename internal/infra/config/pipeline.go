// Where: cli/internal/infra/config/pipeline.go
// What: Pipeline configuration from a properties file and the environment.
// Why: Build the key/value view once and thread it to every command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/octopilot/pipeline-tools/cli/internal/constants"
)

// Environment names accepted by watch-deployment and promote-image.
const (
	EnvironmentDev  = "dev"
	EnvironmentPP   = "pp"
	EnvironmentProd = "prod"
)

// Config is the merged key/value configuration. Non-empty environment values
// override the properties file.
type Config struct {
	values map[string]string
	// empty holds variables exported with an empty value.
	empty map[string]struct{}
}

// Load reads the properties file (optional) and overlays environ
// ("KEY=value" entries as returned by os.Environ).
func Load(propertiesPath string, environ []string) (Config, error) {
	values := map[string]string{}

	if path := strings.TrimSpace(propertiesPath); path != "" {
		props, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read properties %s: %w", path, err)
		}
		for key, value := range props {
			values[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	empty := map[string]struct{}{}
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		if value == "" {
			empty[key] = struct{}{}
			continue
		}
		values[key] = value
	}
	return Config{values: values, empty: empty}, nil
}

// FromMap builds a Config from literal values.
func FromMap(values map[string]string) Config {
	copied := make(map[string]string, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return Config{values: copied}
}

// Get returns the value for key or "".
func (c Config) Get(key string) string {
	return c.values[key]
}

// Lookup reports whether key is set. An empty environment value counts as
// set unless the properties file provides one.
func (c Config) Lookup(key string) (string, bool) {
	if value, ok := c.values[key]; ok {
		return value, true
	}
	_, ok := c.empty[key]
	return "", ok
}

// InCI reports whether the process runs inside GitHub Actions.
func (c Config) InCI() bool {
	return strings.EqualFold(c.Get(constants.EnvGitHubActions), "true")
}

// DefaultRepo returns SKAFFOLD_DEFAULT_REPO, then GOOGLE_GKE_IMAGE_REPOSITORY.
func (c Config) DefaultRepo() string {
	return c.first(constants.EnvSkaffoldDefaultRepo, constants.EnvGKEImageRepository)
}

// EnvironmentRepository returns the image repository configured for env.
func (c Config) EnvironmentRepository(env string) string {
	switch strings.TrimSpace(env) {
	case EnvironmentDev:
		return c.Get(constants.EnvGKEImageRepository)
	case EnvironmentPP:
		return c.Get(constants.EnvGKEImagePPRepository)
	case EnvironmentProd:
		return c.Get(constants.EnvGKEImageProdRepository)
	}
	return ""
}

// WatchDestinationRepository returns the repository watched for env,
// falling back to WATCH_DESTINATION_REPOSITORY.
func (c Config) WatchDestinationRepository(env string) string {
	if repo := c.EnvironmentRepository(env); repo != "" {
		return repo
	}
	return c.Get(constants.EnvWatchDestinationRepo)
}

// PromoteRepositories returns the (source, destination) repositories for a
// promotion between two environments.
func (c Config) PromoteRepositories(source, destination string) (string, string) {
	src := c.EnvironmentRepository(source)
	if src == "" {
		src = c.Get(constants.EnvPromoteSourceRepo)
	}
	dst := c.EnvironmentRepository(destination)
	if dst == "" {
		dst = c.Get(constants.EnvPromoteDestinationRepo)
	}
	return src, dst
}

// SkaffoldFlags returns the optional skaffold flags driven by config.
func (c Config) SkaffoldFlags() []string {
	var args []string
	if profile := c.Get(constants.EnvSkaffoldProfile); profile != "" {
		args = append(args, "--profile", profile)
	}
	if label := c.Get(constants.EnvSkaffoldLabel); label != "" {
		args = append(args, "--label", label)
	}
	if namespace := c.Get(constants.EnvSkaffoldNamespace); namespace != "" {
		args = append(args, "--namespace", namespace)
	}
	return args
}

func (c Config) first(keys ...string) string {
	for _, key := range keys {
		if value := c.Get(key); value != "" {
			return value
		}
	}
	return ""
}
