// Where: cli/internal/usecase/pipeline/errors.go
// What: Sentinel errors for pipeline steps.
// Why: The command layer maps configuration errors and subprocess failures differently.
package pipeline

import "errors"

var (
	errRunnerNotConfigured = errors.New("pipeline: command runner is not configured")
	errCopierNotConfigured = errors.New("pipeline: image copier is not configured")
	errStoreNotConfigured  = errors.New("pipeline: manifest store is not configured")

	ErrNoPushRegistry        = errors.New("no push registry")
	ErrNoBuildableArtifacts  = errors.New("no buildable artifacts")
	ErrReplicationFailed     = errors.New("replication failed")
	ErrPromotionRepositories = errors.New("promotion repositories are not configured")
	ErrInvalidTagTemplate    = errors.New("invalid tag template")
)
