package alias

import (
	"io"

	"github.com/gosh-shell/gosh/core/env"
	"github.com/gosh-shell/gosh/core/jobs"
)

// Shell is the view of shell state handed to in-process callables.
type Shell interface {
	// Getwd returns the shell's working directory.
	Getwd() string
	// Chdir changes the shell's working directory.
	Chdir(dir string) error
	// Env returns the shell environment.
	Env() env.Env
	// Aliases returns the alias registry.
	Aliases() *Registry
	// Jobs returns the job table.
	Jobs() *jobs.Table
	// Resolve looks the name up in the command path cache.
	Resolve(name string) (string, bool)
	// RequestExit asks the shell loop to terminate with the given code.
	RequestExit(code int)
}

// Invocation carries one callable execution's arguments and stdio views.
type Invocation struct {
	// Argv holds the command name and its arguments.
	Argv []string
	// Stdin, Stdout and Stderr are the callable's redirected streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Shell exposes the shell state the callable runs under.
	Shell Shell
	// Interrupted is closed when the pipeline receives an interrupt
	// signal; long-running callables should poll it.
	Interrupted <-chan struct{}
}

// Args returns the arguments after the command name.
func (inv *Invocation) Args() []string {
	if len(inv.Argv) == 0 {
		return nil
	}
	return inv.Argv[1:]
}

// RunFunc is the normalized calling convention every callable is adapted to
// at definition time.
type RunFunc func(inv *Invocation) int

// Callable is an in-process command.
type Callable struct {
	// Name is the command name the callable is registered under.
	Name string
	// Run executes the callable.
	Run RunFunc

	// unthreadable callables must run synchronously on the calling
	// thread, e.g. full-screen terminal UIs.
	unthreadable bool
	// applied holds arguments accumulated by alias chains ending here.
	applied []string
}

// Threadable reports whether the callable may run on a background thread.
func (c *Callable) Threadable() bool { return !c.unthreadable }

// Unthreadable marks the callable as requiring synchronous execution and
// returns it for chaining at registration time.
func (c *Callable) Unthreadable() *Callable {
	c.unthreadable = true
	return c
}

// AppliedArgs returns arguments partially applied by alias expansion, to be
// inserted after the command name.
func (c *Callable) AppliedArgs() []string { return c.applied }

func (c *Callable) withArgs(args []string) *Callable {
	out := *c
	out.applied = append(append([]string{}, c.applied...), args...)
	return &out
}

// The constructors below form the closed set of supported call signatures.
// Each adapts its function to RunFunc once, at registration time.

// Func registers the full-context signature.
func Func(name string, fn RunFunc) *Callable {
	return &Callable{Name: name, Run: fn}
}

// FuncNoArgs adapts a zero-argument function.
func FuncNoArgs(name string, fn func() int) *Callable {
	return &Callable{Name: name, Run: func(*Invocation) int { return fn() }}
}

// FuncArgs adapts an args-only function.
func FuncArgs(name string, fn func(args []string) int) *Callable {
	return &Callable{Name: name, Run: func(inv *Invocation) int {
		return fn(inv.Args())
	}}
}

// FuncArgsInput adapts an args+stdin function.
func FuncArgsInput(name string, fn func(args []string, stdin io.Reader) int) *Callable {
	return &Callable{Name: name, Run: func(inv *Invocation) int {
		return fn(inv.Args(), inv.Stdin)
	}}
}

// FuncArgsOutput adapts an args+stdin+stdout function.
func FuncArgsOutput(name string, fn func(args []string, stdin io.Reader, stdout io.Writer) int) *Callable {
	return &Callable{Name: name, Run: func(inv *Invocation) int {
		return fn(inv.Args(), inv.Stdin, inv.Stdout)
	}}
}

// FuncArgsStreams adapts an args+stdin+stdout+stderr function.
func FuncArgsStreams(name string, fn func(args []string, stdin io.Reader, stdout, stderr io.Writer) int) *Callable {
	return &Callable{Name: name, Run: func(inv *Invocation) int {
		return fn(inv.Args(), inv.Stdin, inv.Stdout, inv.Stderr)
	}}
}
