package sandbox

import "context"

// ContainerHandle identifies a created container.
type ContainerHandle string

// Runtime is the opaque sandbox provider the core treats as an
// external collaborator: create/start/wait/inspect/delete. The docker
// adapter implements this against the real daemon; tests substitute a
// fake.
type Runtime interface {
	Create(ctx context.Context, spec SandboxSpec, binary string, args, env []string) (ContainerHandle, error)
	Start(ctx context.Context, handle ContainerHandle) error
	Wait(ctx context.Context, handle ContainerHandle, absolute, noOutput Timeout, onLine LineFunc) (exitCode int, log []byte, err error)
	Inspect(ctx context.Context, handle ContainerHandle) (Inspection, error)
	Delete(ctx context.Context, handle ContainerHandle) error
}

// Timeout carries one of the two sandbox timeout durations. It has no
// separate "explicitly set" flag: a zero Duration stands for unset.
type Timeout struct {
	Duration int64 // nanoseconds, 0 = use Runtime's own fallback
}

// Inspection is the subset of container state the OOM detector needs.
type Inspection struct {
	OOMKilled bool
	ExitCode  int
}

// runSandboxed delegates to rt, inspecting the container afterward for
// an OOM kill. Deletion is always attempted, even when Wait or Inspect
// returned an error, matching the rule that deletion is guaranteed even on panic
// of the run path".
func (c *Command) runSandboxed(ctx context.Context, rt Runtime) (result RunResult) {
	absolute, noOutput := c.resolvedTimeouts()

	handle, err := rt.Create(ctx, *c.sandbox, c.binary, c.args, c.env)
	if err != nil {
		return RunResult{Err: err}
	}

	defer func() {
		_ = rt.Delete(context.WithoutCancel(ctx), handle)
	}()

	if err := rt.Start(ctx, handle); err != nil {
		return RunResult{Err: err}
	}

	exitCode, log, waitErr := rt.Wait(ctx, handle,
		Timeout{Duration: int64(absolute)}, Timeout{Duration: int64(noOutput)}, c.processLine)

	inspection, inspectErr := rt.Inspect(ctx, handle)
	if inspectErr == nil && inspection.OOMKilled {
		return RunResult{ExitCode: exitCode, Log: log, Err: ErrContainerOOM}
	}

	return RunResult{ExitCode: exitCode, Log: log, Err: waitErr}
}
