package exec

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/gosh-shell/gosh/core/alias"
	"github.com/spf13/afero"
)

// Capture is the policy for retaining a pipeline's final-stage output.
type Capture int

const (
	// CaptureNone streams to the console without retention.
	CaptureNone Capture = iota
	// CaptureStdout captures standard output only.
	CaptureStdout
	// CaptureObject captures stdout, stderr and the return code.
	CaptureObject
	// CaptureHidden retains nothing but still drains the streams so the
	// return code and execution order are unaffected by who reads them.
	CaptureHidden
)

func (c Capture) capturesStdout() bool {
	return c == CaptureStdout || c == CaptureObject
}

// CommandSpec is one command's fully resolved execution descriptor.
type CommandSpec struct {
	// Argv is the command and its arguments. It is rewritten during
	// resolution: redirect stripping, alias substitution and interpreter
	// prefix insertion.
	Argv []string
	// Alias is the resolved alias value, if any.
	Alias alias.Value
	// ExecutablePath is the resolved binary path, empty for callables.
	ExecutablePath string

	Capture        Capture
	Background     bool
	Threadable     bool
	PipelineIndex  int
	LastInPipeline bool

	stdin  Stream
	stdout Stream
	stderr Stream

	// Read ends of capture pipes allocated during last-stage
	// finalization, wrapped into drain readers when the pipeline starts.
	capturedStdout afero.File
	capturedStderr afero.File
	// teeConsole and teeConsoleStderr mark the inherit-with-observation
	// paths: the stream goes to the real console through a pty while
	// being teed into a reader.
	teeConsole       bool
	teeConsoleStderr bool
	// console and consoleErr own the platform plumbing behind the tee
	// paths; resize signals are forwarded to them.
	console    ConsoleChannel
	consoleErr ConsoleChannel

	// closeAfterStart holds parent-side handles released once the stage
	// has launched (pipe ends passed to a child process).
	closeAfterStart []io.Closer
	// closeAfterRun holds handles an in-process stage consumes itself.
	closeAfterRun []io.Closer

	ctx      *Context
	resolved bool
}

// BuildSpec constructs and resolves the spec for a single command.
func BuildSpec(ctx *Context, argv []string, capture Capture) (*CommandSpec, error) {
	spec := &CommandSpec{
		Argv:       append([]string(nil), argv...),
		Capture:    capture,
		Threadable: true,
		ctx:        ctx,
	}
	if err := spec.resolve(); err != nil {
		spec.closeStreams()
		return nil, err
	}
	return spec, nil
}

// Stdin returns the stdin binding.
func (s *CommandSpec) Stdin() Stream { return s.stdin }

// Stdout returns the stdout binding.
func (s *CommandSpec) Stdout() Stream { return s.stdout }

// Stderr returns the stderr binding.
func (s *CommandSpec) Stderr() Stream { return s.stderr }

// resolve runs the resolution state machine. Each step may only read the
// output of the previous one; re-resolving an already resolved spec is a
// no-op.
func (s *CommandSpec) resolve() error {
	if s.resolved {
		return nil
	}
	steps := []func() error{
		s.stripLeadingRedirects,
		s.stripTrailingRedirects,
		s.resolveAlias,
		s.resolveExecutablePath,
		s.resolveAutoCd,
		s.expandAlias,
		s.classifyRunner,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	s.resolved = true
	return nil
}

// stripLeadingRedirects manages leading redirects such as '< input.txt CMD'.
func (s *CommandSpec) stripLeadingRedirects() error {
	for len(s.Argv) >= 3 && s.Argv[0] == "<" {
		handle, err := safeOpen(s.ctx.fs(), s.Argv[1], modeRead)
		if err != nil {
			return err
		}
		if err := s.bindStdin(handleStream(handle)); err != nil {
			return err
		}
		s.Argv = s.Argv[2:]
	}
	return nil
}

// stripTrailingRedirects manages trailing redirects, consuming one or two
// tokens per pass until none remain.
func (s *CommandSpec) stripTrailingRedirects() error {
	for {
		n := len(s.Argv)
		var set streamSet
		var err error
		switch {
		case n >= 3 && isRedirect(s.Argv[n-2]):
			set, err = resolveRedirect(s.ctx.fs(), s.Argv[n-2], s.Argv[n-1])
			s.Argv = s.Argv[:n-2]
		case n >= 2 && isRedirect(s.Argv[n-1]):
			set, err = resolveRedirect(s.ctx.fs(), s.Argv[n-1], "")
			s.Argv = s.Argv[:n-1]
		default:
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.bindSet(set); err != nil {
			return err
		}
	}
}

func (s *CommandSpec) resolveAlias() error {
	if len(s.Argv) == 0 {
		return buildErrorf("empty command")
	}
	if s.ctx.Aliases != nil {
		s.Alias = s.ctx.Aliases.Lookup(s.Argv[0])
	}
	return nil
}

func (s *CommandSpec) resolveExecutablePath() error {
	if s.ctx.Cache == nil {
		return nil
	}
	switch s.Alias.Kind {
	case alias.KindNone:
		s.ExecutablePath, _ = s.ctx.Cache.Resolve(s.Argv[0])
	case alias.KindExpansion:
		if len(s.Alias.Expansion) > 0 {
			s.ExecutablePath, _ = s.ctx.Cache.Resolve(s.Alias.Expansion[0])
		}
	case alias.KindCallable:
		s.ExecutablePath = ""
	}
	return nil
}

// resolveAutoCd rewrites a lone existing-directory argument into a cd.
func (s *CommandSpec) resolveAutoCd() error {
	if !s.ctx.AutoCd || !s.Alias.None() || s.ExecutablePath != "" || len(s.Argv) != 1 {
		return nil
	}
	stat, err := s.ctx.fs().Stat(s.Argv[0])
	if err != nil || !stat.IsDir() {
		return nil
	}
	s.Argv = []string{"cd", s.Argv[0]}
	return s.resolveAlias()
}

// expandAlias rewrites argv through the resolved alias and executable,
// re-running redirect stripping in case the alias itself carried redirects.
func (s *CommandSpec) expandAlias() error {
	switch s.Alias.Kind {
	case alias.KindCallable:
		return nil
	case alias.KindExpansion:
		s.Argv = append(append([]string(nil), s.Alias.Expansion...), s.Argv[1:]...)
		if err := s.stripLeadingRedirects(); err != nil {
			return err
		}
		if err := s.stripTrailingRedirects(); err != nil {
			return err
		}
	}
	if s.ExecutablePath == "" {
		return nil
	}
	argv, err := scriptCommand(s.ctx.fs(), s.ExecutablePath, s.Argv[1:])
	if err != nil {
		return err
	}
	s.Argv = argv
	return nil
}

// classifyRunner decides between the external-process and in-process
// runners. A callable that opted out of threading forces synchronous
// execution and clears the pipeline's threadability.
func (s *CommandSpec) classifyRunner() error {
	if s.Alias.Kind != alias.KindCallable {
		return nil
	}
	s.Threadable = s.Alias.Callable.Threadable()
	return nil
}

// IsProxy reports whether the spec runs as an in-process callable.
func (s *CommandSpec) IsProxy() bool {
	return s.Alias.Kind == alias.KindCallable
}

//
// Stream binding. Each standard stream may be set at most once; a second
// binding attempt is a build-time error.
//

func (s *CommandSpec) bindSet(set streamSet) error {
	if set.stdin.Set() {
		if err := s.bindStdin(set.stdin); err != nil {
			return err
		}
	}
	if set.stdout.Set() {
		if err := s.bindStdout(set.stdout); err != nil {
			return err
		}
	}
	if set.stderr.Set() {
		if err := s.bindStderr(set.stderr); err != nil {
			return err
		}
	}
	return nil
}

func (s *CommandSpec) bindStdin(v Stream) error {
	if s.stdin.Set() {
		safeClose(v.Handle)
		return buildErrorf("multiple inputs for stdin for %q", strings.Join(s.Argv, " "))
	}
	s.stdin = v
	return nil
}

func (s *CommandSpec) bindStdout(v Stream) error {
	if s.stdout.Set() {
		safeClose(v.Handle)
		return buildErrorf("multiple redirections for stdout for %q", strings.Join(s.Argv, " "))
	}
	s.stdout = v
	return nil
}

func (s *CommandSpec) bindStderr(v Stream) error {
	if s.stderr.Set() {
		safeClose(v.Handle)
		return buildErrorf("multiple redirections for stderr for %q", strings.Join(s.Argv, " "))
	}
	s.stderr = v
	return nil
}

// closeStreams releases every handle the spec holds. Used when a build
// fails after some redirect targets were already opened.
func (s *CommandSpec) closeStreams() {
	safeClose(s.stdin.Handle)
	safeClose(s.stdout.Handle)
	safeClose(s.stderr.Handle)
	safeClose(s.capturedStdout)
	safeClose(s.capturedStderr)
	if s.console != nil {
		_ = s.console.Close()
		s.console = nil
	}
	if s.consoleErr != nil {
		_ = s.consoleErr.Close()
		s.consoleErr = nil
	}
}

// scriptCommand rewrites a resolved executable into its final argv,
// prefixing the interpreter for shebang scripts. Binaries run directly.
func scriptCommand(vfs afero.Fs, path string, args []string) ([]string, error) {
	stat, err := vfs.Stat(path)
	if err != nil {
		return nil, err
	}
	if stat.Mode()&0111 == 0 {
		return nil, fmt.Errorf("%s: %w", path, fs.ErrPermission)
	}

	f, err := vfs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 128)
	n, _ := io.ReadFull(f, head)
	head = head[:n]

	out := []string{path}
	if bytes.HasPrefix(head, []byte("#!")) {
		line := head[2:]
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		interp := strings.Fields(string(line))
		if len(interp) > 0 {
			out = append(interp, path)
		}
	}
	return append(out, args...), nil
}
