// Where: cli/internal/infra/docker/docker.go
// What: Docker SDK helpers for named containers and local images.
// Why: start-registry replaces a running registry; run checks for the built image.
package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
)

// DockerClient defines the subset of Docker SDK methods used by this package.
// This interface enables mocking the Docker client in tests.
type DockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
}

// ContainerInfo holds information about a discovered container.
type ContainerInfo struct {
	ID    string
	Name  string
	State string
}

// ListContainersByName returns containers whose name is exactly name.
// The daemon filter matches substrings, so results are re-checked.
func ListContainersByName(ctx context.Context, client DockerClient, name string) ([]ContainerInfo, error) {
	nameFilter := filters.NewArgs()
	nameFilter.Add("name", name)

	containers, err := client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: nameFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, ctr := range containers {
		if !hasName(ctr.Names, name) {
			continue
		}
		result = append(result, ContainerInfo{
			ID:    ctr.ID,
			Name:  name,
			State: ctr.State,
		})
	}
	return result, nil
}

// RemoveContainersByName stops and force-removes every container called name.
// It returns the removed container IDs.
func RemoveContainersByName(ctx context.Context, client DockerClient, name string) ([]string, error) {
	containers, err := ListContainersByName(ctx, client, name)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(containers))
	for _, ctr := range containers {
		if ctr.State == "running" {
			if err := client.ContainerStop(ctx, ctr.ID, container.StopOptions{}); err != nil {
				return removed, fmt.Errorf("stop container %s: %w", ctr.ID, err)
			}
		}
		if err := client.ContainerRemove(ctx, ctr.ID, container.RemoveOptions{Force: true}); err != nil {
			return removed, fmt.Errorf("remove container %s: %w", ctr.ID, err)
		}
		removed = append(removed, ctr.ID)
	}
	return removed, nil
}

// HasImage reports whether ref is present in the local image store.
func HasImage(ctx context.Context, client DockerClient, ref string) (bool, error) {
	referenceFilter := filters.NewArgs()
	referenceFilter.Add("reference", ref)

	images, err := client.ImageList(ctx, image.ListOptions{Filters: referenceFilter})
	if err != nil {
		return false, fmt.Errorf("list images: %w", err)
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == ref {
				return true, nil
			}
		}
	}
	return false, nil
}

func hasName(names []string, name string) bool {
	for _, candidate := range names {
		if strings.TrimPrefix(candidate, "/") == name {
			return true
		}
	}
	return false
}
