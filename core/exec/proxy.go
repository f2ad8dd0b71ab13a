package exec

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/gosh-shell/gosh/core/alias"
)

// proxyRunner executes an in-process callable with redirected stdio views.
// Threadable callables run on a dedicated goroutine so the calling thread
// is never blocked; unthreadable ones (full-screen UIs that must own the
// terminal) run synchronously inside Start.
type proxyRunner struct {
	spec *CommandSpec

	done      chan struct{}
	rc        int
	interrupt chan struct{}
	intOnce   sync.Once
}

func newProxyRunner(spec *CommandSpec) *proxyRunner {
	return &proxyRunner{
		spec:      spec,
		done:      make(chan struct{}),
		interrupt: make(chan struct{}),
	}
}

func (r *proxyRunner) Start() error {
	spec := r.spec
	callable := spec.Alias.Callable

	inv := &alias.Invocation{
		Argv:        r.argv(),
		Stdin:       r.stdin(),
		Stdout:      r.stdout(),
		Stderr:      r.stderr(),
		Shell:       spec.ctx.Shell,
		Interrupted: r.interrupt,
	}

	run := func() {
		defer close(r.done)
		r.rc = callable.Run(inv)
		// The callable owns its pipe ends; closing them here lets
		// downstream stages and capture readers see EOF.
		for _, c := range spec.closeAfterRun {
			_ = c.Close()
		}
		spec.closeAfterRun = nil
		safeClose(spec.stdin.Handle)
		safeClose(spec.stdout.Handle)
		safeClose(spec.stderr.Handle)
	}

	if spec.Threadable {
		go run()
	} else {
		run()
	}
	return nil
}

// argv rebuilds the callable's argument vector, inserting any arguments
// partially applied by alias expansion after the command name.
func (r *proxyRunner) argv() []string {
	spec := r.spec
	applied := spec.Alias.Callable.AppliedArgs()

	out := make([]string, 0, len(spec.Argv)+len(applied))
	out = append(out, spec.Argv[0])
	out = append(out, applied...)
	if len(spec.Argv) > 1 {
		out = append(out, spec.Argv[1:]...)
	}
	return out
}

func (r *proxyRunner) stdin() io.Reader {
	if r.spec.stdin.Kind == StreamHandle {
		return r.spec.stdin.Handle
	}
	return r.spec.ctx.stdin()
}

func (r *proxyRunner) stdout() io.Writer {
	switch r.spec.stdout.Kind {
	case StreamHandle:
		return r.spec.stdout.Handle
	case StreamMergeStderr:
		return r.stderrBase()
	default:
		return r.spec.ctx.stdout()
	}
}

func (r *proxyRunner) stderr() io.Writer {
	switch r.spec.stderr.Kind {
	case StreamHandle:
		return r.spec.stderr.Handle
	case StreamMergeStdout:
		if r.spec.stdout.Kind == StreamHandle {
			return r.spec.stdout.Handle
		}
		return r.spec.ctx.stdout()
	default:
		return r.spec.ctx.stderr()
	}
}

func (r *proxyRunner) stderrBase() io.Writer {
	if r.spec.stderr.Kind == StreamHandle {
		return r.spec.stderr.Handle
	}
	return r.spec.ctx.stderr()
}

func (r *proxyRunner) Poll() (int, bool) {
	select {
	case <-r.done:
		return r.rc, true
	default:
		return 0, false
	}
}

func (r *proxyRunner) Wait(timeout time.Duration) (int, bool) {
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

// Signal converts an interrupt into the host goroutine's interrupt
// mechanism: closing the channel the callable polls.
func (r *proxyRunner) Signal(sig os.Signal) error {
	if sig == os.Interrupt || sig == os.Kill {
		r.intOnce.Do(func() { close(r.interrupt) })
	}
	return nil
}

func (r *proxyRunner) Terminate() error { return r.Signal(os.Interrupt) }
func (r *proxyRunner) Kill() error      { return r.Signal(os.Kill) }
func (r *proxyRunner) Pid() int         { return 0 }
