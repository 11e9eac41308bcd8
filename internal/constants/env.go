// Where: cli/internal/constants/env.go
// What: Environment variable naming constants.
// Why: Centralize environment variable names to avoid typos and inconsistencies.
package constants

const (
	// CI detection and release refs
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitHubRef     = "GITHUB_REF"

	// Properties file override
	EnvPipelineProperties = "OCTOPILOT_PIPELINE_PROPERTIES"

	// Skaffold
	EnvSkaffoldDefaultRepo = "SKAFFOLD_DEFAULT_REPO"
	EnvSkaffoldProfile     = "SKAFFOLD_PROFILE"
	EnvSkaffoldLabel       = "SKAFFOLD_LABEL"
	EnvSkaffoldNamespace   = "SKAFFOLD_NAMESPACE"

	// Environment repositories
	EnvGKEImageRepository     = "GOOGLE_GKE_IMAGE_REPOSITORY"
	EnvGKEImagePPRepository   = "GOOGLE_GKE_IMAGE_PP_REPOSITORY"
	EnvGKEImageProdRepository = "GOOGLE_GKE_IMAGE_PROD_REPOSITORY"
	EnvWatchDestinationRepo   = "WATCH_DESTINATION_REPOSITORY"
	EnvPromoteSourceRepo      = "PROMOTE_SOURCE_REPOSITORY"
	EnvPromoteDestinationRepo = "PROMOTE_DESTINATION_REPOSITORY"

	// Tools
	EnvPackCmd          = "PACK_CMD"
	EnvRegistryTLSImage = "REGISTRY_TLS_IMAGE"

	// Manifest object store
	EnvS3Endpoint  = "OP_S3_ENDPOINT"
	EnvS3AccessKey = "OP_S3_ACCESS_KEY"
	EnvS3SecretKey = "OP_S3_SECRET_KEY"
	EnvAWSRegion   = "AWS_REGION"
)
