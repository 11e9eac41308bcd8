// Where: cli/internal/infra/artifactstore/store.go
// What: Publish and fetch build manifests in an object store.
// Why: Let watch/promote jobs on other runners reuse the push job's manifest.
package artifactstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/octopilot/pipeline-tools/cli/internal/domain/buildresult"
)

var (
	ErrInvalidURI     = errors.New("invalid manifest uri (expected s3://bucket/key)")
	ErrClientRequired = errors.New("object store client is required")
)

// ObjectAPI is the object store surface used for manifests.
type ObjectAPI interface {
	PutObject(ctx context.Context, bucket, key string, body []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Location addresses one object.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseURI parses s3://bucket/key.
func ParseURI(uri string) (Location, error) {
	trimmed := strings.TrimSpace(uri)
	rest, ok := strings.CutPrefix(trimmed, "s3://")
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	key = strings.TrimPrefix(key, "/")
	if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return Location{}, fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// Store moves manifests between the local file system and an object store.
type Store struct {
	client ObjectAPI
}

// New returns a Store backed by client.
func New(client ObjectAPI) *Store {
	return &Store{client: client}
}

// Publish uploads the manifest at path after validating it.
func (s *Store) Publish(ctx context.Context, uri, path string) (Location, error) {
	if s == nil || s.client == nil {
		return Location{}, ErrClientRequired
	}
	loc, err := ParseURI(uri)
	if err != nil {
		return Location{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Location{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	if _, err := buildresult.Decode(data); err != nil {
		return Location{}, fmt.Errorf("publish %s: %w", path, err)
	}
	if err := s.client.PutObject(ctx, loc.Bucket, loc.Key, data); err != nil {
		return Location{}, fmt.Errorf("upload %s: %w", loc, err)
	}
	return loc, nil
}

// Fetch downloads the manifest at uri, validates it and writes it to path.
func (s *Store) Fetch(ctx context.Context, uri, path string) (buildresult.Manifest, error) {
	if s == nil || s.client == nil {
		return buildresult.Manifest{}, ErrClientRequired
	}
	loc, err := ParseURI(uri)
	if err != nil {
		return buildresult.Manifest{}, err
	}
	data, err := s.client.GetObject(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return buildresult.Manifest{}, fmt.Errorf("download %s: %w", loc, err)
	}
	manifest, err := buildresult.Decode(data)
	if err != nil {
		return buildresult.Manifest{}, fmt.Errorf("%s: %w", loc, err)
	}
	if err := buildresult.Write(path, manifest); err != nil {
		return buildresult.Manifest{}, err
	}
	return manifest, nil
}
