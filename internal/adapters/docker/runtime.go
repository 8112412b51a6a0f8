// Package docker implements C6's sandboxed runtime against a real
// docker daemon: container create/start/wait/inspect/delete, mounts,
// memory limits, and network disablement.
package docker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"

	"github.com/ecoci/ecoci/internal/services/sandbox"
	"github.com/ecoci/ecoci/pkg/mlog"
)

// Runtime implements sandbox.Runtime against the docker daemon
// reachable via the standard DOCKER_HOST / docker context environment.
type Runtime struct {
	cli    *client.Client
	image  string
	logger mlog.Logger
}

func New(image string, logger mlog.Logger) (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}

	if logger == nil {
		logger = &mlog.NoneLogger{}
	}

	return &Runtime{cli: cli, image: image, logger: logger}, nil
}

func toMounts(spec sandbox.SandboxSpec) []mount.Mount {
	mounts := []mount.Mount{
		mountOf(spec.SourceMount),
		mountOf(spec.CargoHome),
		mountOf(spec.RustupHome),
		mountOf(spec.TargetDir),
	}

	out := mounts[:0]

	for _, m := range mounts {
		if m.Source != "" {
			out = append(out, m)
		}
	}

	return out
}

func mountOf(m sandbox.Mount) mount.Mount {
	if m.Host == "" {
		return mount.Mount{}
	}

	return mount.Mount{
		Type:     mount.TypeBind,
		Source:   m.Host,
		Target:   m.Container,
		ReadOnly: m.ReadOnly,
	}
}

// Create builds a container configuration from spec and the task's
// binary/args/env, without starting it.
func (r *Runtime) Create(ctx context.Context, spec sandbox.SandboxSpec, binary string, args, env []string) (sandbox.ContainerHandle, error) {
	cmd := append([]string{binary}, args...)

	fullEnv := append([]string{}, env...)
	fullEnv = append(fullEnv,
		"SOURCE_DIR="+spec.SourceMount.Container,
		"CARGO_HOME="+spec.CargoHome.Container,
		"RUSTUP_HOME="+spec.RustupHome.Container,
	)

	if spec.MapUserID {
		fullEnv = append(fullEnv, "MAP_USER_ID="+strconv.Itoa(currentUID()))
	}

	var resources container.Resources
	if spec.MemoryLimit > 0 {
		resources.Memory = spec.MemoryLimit
	}

	hostConfig := &container.HostConfig{
		Mounts:    toMounts(spec),
		Resources: resources,
	}

	if spec.NetworkingOff {
		hostConfig.NetworkMode = "none"
	}

	containerConfig := &container.Config{
		Image:      r.image,
		Cmd:        cmd,
		Env:        fullEnv,
		WorkingDir: spec.WorkingDir,
		Tty:        false,
	}

	resp, err := r.cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("container create: %w", err)
	}

	return sandbox.ContainerHandle(resp.ID), nil
}

// Start runs the container created by Create.
func (r *Runtime) Start(ctx context.Context, handle sandbox.ContainerHandle) error {
	return r.cli.ContainerStart(ctx, string(handle), container.StartOptions{})
}

// Wait streams logs and blocks for completion, enforcing the absolute
// and no-output timeouts by way of a child context and an idle ticker.
func (r *Runtime) Wait(ctx context.Context, handle sandbox.ContainerHandle, absolute, noOutput sandbox.Timeout, onLine sandbox.LineFunc) (int, []byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, time.Duration(absolute.Duration))
	defer cancel()

	logs, err := r.cli.ContainerLogs(runCtx, string(handle), container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("container logs: %w", err)
	}
	defer logs.Close()

	var (
		buf      []byte
		lastLine = make(chan struct{}, 1)
	)

	go r.streamLines(logs, &buf, onLine, lastLine)

	idle := time.NewTimer(time.Duration(noOutput.Duration))
	defer idle.Stop()

	statusCh, errCh := r.cli.ContainerWait(runCtx, string(handle), container.WaitConditionNotRunning)

	for {
		select {
		case err := <-errCh:
			return 0, buf, fmt.Errorf("container wait: %w", err)
		case status := <-statusCh:
			return int(status.StatusCode), buf, nil
		case <-idle.C:
			_ = r.cli.ContainerKill(context.WithoutCancel(ctx), string(handle), "KILL")
			return 0, buf, fmt.Errorf("no output for %s", noOutput.Duration)
		case <-lastLine:
			if !idle.Stop() {
				<-idle.C
			}

			idle.Reset(time.Duration(noOutput.Duration))
		case <-runCtx.Done():
			_ = r.cli.ContainerKill(context.WithoutCancel(ctx), string(handle), "KILL")
			return 0, buf, fmt.Errorf("timeout after %s: %w", absolute.Duration, runCtx.Err())
		}
	}
}

func (r *Runtime) streamLines(rc io.Reader, buf *[]byte, onLine sandbox.LineFunc, signal chan<- struct{}) {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		*buf = append(*buf, []byte(line+"\n")...)

		if onLine != nil {
			onLine(line)
		}

		select {
		case signal <- struct{}{}:
		default:
		}
	}
}

// Inspect reports whether the container was OOM-killed.
func (r *Runtime) Inspect(ctx context.Context, handle sandbox.ContainerHandle) (sandbox.Inspection, error) {
	info, err := r.cli.ContainerInspect(ctx, string(handle))
	if err != nil {
		return sandbox.Inspection{}, fmt.Errorf("container inspect: %w", err)
	}

	return sandbox.Inspection{
		OOMKilled: info.State.OOMKilled,
		ExitCode:  info.State.ExitCode,
	}, nil
}

// Delete removes the container, guaranteed even when the run path
// already returned an error.
func (r *Runtime) Delete(ctx context.Context, handle sandbox.ContainerHandle) error {
	return r.cli.ContainerRemove(ctx, string(handle), container.RemoveOptions{Force: true})
}
