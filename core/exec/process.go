package exec

import (
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"sort"
	"time"
)

// processRunner launches one external command as a real OS process.
type processRunner struct {
	spec *CommandSpec
	cmd  *osexec.Cmd

	done chan struct{}
	rc   int
}

func newProcessRunner(spec *CommandSpec) *processRunner {
	return &processRunner{spec: spec, done: make(chan struct{})}
}

// Start spawns the process. pipelinePgid is the process group to join; zero
// means this stage leads a fresh group (first external stage of the
// pipeline).
func (r *processRunner) start(pipelinePgid int) error {
	ctx := r.spec.ctx

	cmd := osexec.Command(r.spec.Argv[0], r.spec.Argv[1:]...)
	cmd.Dir = ctx.Dir
	if ctx.Env != nil {
		cmd.Env = exportEnv(ctx.Env)
	}
	cmd.Stdin = r.stdinReader()
	cmd.Stdout, cmd.Stderr = r.outputWriters()
	if ctx.Interactive {
		configureProcessGroup(cmd, pipelinePgid)
	}

	if err := cmd.Start(); err != nil {
		return r.spawnError(err)
	}
	r.cmd = cmd

	// The child holds its own copies of any pipe ends now; release ours
	// so EOF can propagate through the pipeline.
	for _, c := range r.spec.closeAfterStart {
		_ = c.Close()
	}
	r.spec.closeAfterStart = nil

	go func() {
		defer close(r.done)
		err := cmd.Wait()
		r.rc = waitExitStatus(cmd, err)
	}()
	return nil
}

func (r *processRunner) Start() error { return r.start(0) }

func (r *processRunner) stdinReader() io.Reader {
	if r.spec.stdin.Kind == StreamHandle {
		return r.spec.stdin.Handle
	}
	return r.spec.ctx.stdin()
}

// outputWriters resolves stdout/stderr bindings, including the merge
// markers that alias one stream onto the other's handle.
func (r *processRunner) outputWriters() (io.Writer, io.Writer) {
	spec := r.spec
	ctx := spec.ctx

	var stdout, stderr io.Writer
	switch spec.stdout.Kind {
	case StreamHandle:
		stdout = spec.stdout.Handle
	case StreamMergeStderr:
		// resolved below, after stderr is known
	default:
		stdout = ctx.stdout()
	}
	switch spec.stderr.Kind {
	case StreamHandle:
		stderr = spec.stderr.Handle
	case StreamMergeStdout:
		stderr = stdout
	default:
		stderr = ctx.stderr()
	}
	if spec.stdout.Kind == StreamMergeStderr {
		stdout = stderr
	}
	return stdout, stderr
}

func (r *processRunner) spawnError(err error) error {
	se := &SpawnError{Argv: append([]string(nil), r.spec.Argv...), Err: err}
	if errors.Is(err, osexec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		se.Err = fmt.Errorf("command not found")
		se.Suggestions = r.spec.ctx.suggestions(r.spec.Argv[0])
	} else if errors.Is(err, os.ErrPermission) {
		se.Err = fmt.Errorf("permission denied")
	}
	return se
}

func (r *processRunner) Poll() (int, bool) {
	select {
	case <-r.done:
		return r.rc, true
	default:
		return 0, false
	}
}

func (r *processRunner) Wait(timeout time.Duration) (int, bool) {
	if timeout < 0 {
		<-r.done
		return r.rc, true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-r.done:
		return r.rc, true
	case <-timer.C:
		return 0, false
	}
}

func (r *processRunner) Signal(sig os.Signal) error {
	if r.cmd == nil || r.cmd.Process == nil {
		return errors.New("process not started")
	}
	return r.cmd.Process.Signal(sig)
}

func (r *processRunner) Terminate() error { return r.Signal(terminateSignal) }

func (r *processRunner) Kill() error {
	if r.cmd == nil || r.cmd.Process == nil {
		return errors.New("process not started")
	}
	return r.cmd.Process.Kill()
}

func (r *processRunner) Pid() int {
	if r.cmd == nil || r.cmd.Process == nil {
		return 0
	}
	return r.cmd.Process.Pid
}

// exportEnv detypes the environment for spawn, applying any platform
// overrides, and renders it in the "key=value" form Start expects.
func exportEnv(e interface{ Detype() map[string]string }) []string {
	denv := e.Detype()
	platformEnvOverrides(denv)

	out := make([]string, 0, len(denv))
	for k, v := range denv {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
