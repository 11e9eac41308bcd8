// Where: cli/internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: Keep file names and well-known defaults in one place.
package meta

const (
	// Project Identity
	AppName = "op"

	// Files exchanged between pipeline steps
	BuildResultFilename = "build_result.json"
	RegistryFilename    = ".registry"
	RunConfigFilename   = ".github/octopilot.yaml"
	SkaffoldFilename    = "skaffold.yaml"

	// Registry defaults
	DefaultLocalRepo   = "localhost:5001"
	DefaultPushProfile = "push"
	DefaultImageTag    = "latest"

	// Local TLS registry
	RegistryContainerName = "registry"
	RegistryImage         = "ghcr.io/octopilot/registry-tls:latest"
	RegistryPortMapping   = "5001:5001"
	RegistryDataVolume    = "registry-data:/var/lib/registry"
	RegistryCertsVolume   = "registry-certs:/etc/envoy/certs"
	RegistryCertSource    = "/etc/envoy/certs"
	RegistryCertDirName   = "registry-tls"
	RegistryHostAlias     = "host.docker.internal"
)
