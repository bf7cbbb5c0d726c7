// Package minicluster bootstraps small multi-container test clusters on a
// single machine: it resolves container addresses, allocates free host ports,
// tears down leftover containers and polls services until they report ready.
package minicluster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

// containerAPI is the slice of the Docker client the cluster needs. Narrowed
// from client.ContainerAPIClient so tests can swap in a fake.
type containerAPI interface {
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
}

// Cluster issues commands against a local container runtime. It holds a
// single long-lived Docker client; the containers themselves are owned by the
// daemon and only referenced by name here.
type Cluster struct {
	api  containerAPI
	opts options
}

func New(opts ...Option) (*Cluster, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating Docker client: %w", err)
	}

	pingContext, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(pingContext); err != nil {
		return nil, fmt.Errorf("pinging Docker daemon: %w", err)
	}

	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Cluster{
		api:  cli,
		opts: o,
	}, nil
}

// ContainerIP resolves the local-network address of a running container from
// its first network attachment. The address is only reachable on this machine
// and from within other containers. Returns "" without an error when the
// container is absent or has no network.
func (c *Cluster) ContainerIP(ctx context.Context, name string) (string, error) {
	info, err := c.api.ContainerInspect(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("inspecting container %s: %w", name, err)
	}
	if info.NetworkSettings == nil {
		return "", nil
	}
	for _, endpoint := range info.NetworkSettings.Networks {
		if endpoint != nil && endpoint.IPAddress != "" {
			return endpoint.IPAddress, nil
		}
	}
	return "", nil
}

// RemoveContainer force-removes a container by name, with no grace period.
// A container that doesn't exist is not an error: the desired end state is
// already in place.
func (c *Cluster) RemoveContainer(ctx context.Context, name string) error {
	if err := c.api.ContainerRemove(ctx, name, container.RemoveOptions{Force: true}); err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("removing container %s: %w", name, err)
	}
	c.logger().Info("removed container", slog.String("container", name))
	return nil
}

// StopContainer stops a container by name with the configured grace period
// (5 seconds unless overridden). Idempotent on absent containers, like
// RemoveContainer.
func (c *Cluster) StopContainer(ctx context.Context, name string) error {
	timeout := int(c.opts.StopTimeout.Seconds())
	if err := c.api.ContainerStop(ctx, name, container.StopOptions{Timeout: &timeout}); err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("stopping container %s: %w", name, err)
	}
	c.logger().Info("stopped container", slog.String("container", name))
	return nil
}

func (c *Cluster) logger() *slog.Logger {
	if c.opts.Logger != nil {
		return c.opts.Logger
	}
	return slog.Default()
}
