package exec

import (
	"io"
	"os"
)

// Token is one element of the parsed command sequence: either an argument
// vector or a control token.
type Token struct {
	// Argv is the command and its arguments; nil for control tokens.
	Argv []string
	// Ctl is "|" or "&"; empty for argument vectors.
	Ctl string
}

// Argv builds an argument-vector token.
func Argv(args ...string) Token { return Token{Argv: args} }

// Pipe is the "|" control token.
func Pipe() Token { return Token{Ctl: "|"} }

// Amp is the trailing "&" control token.
func Amp() Token { return Token{Ctl: "&"} }

// CmdsToSpecs converts the token sequence into resolved CommandSpecs with
// their inter-stage pipes created and the last stage's streams finalized.
// All errors here are raised before any process spawns.
func CmdsToSpecs(ctx *Context, cmds []Token, capture Capture) ([]*CommandSpec, error) {
	var specs []*CommandSpec
	var ctls []string

	cleanup := func() {
		for _, s := range specs {
			s.closeStreams()
		}
	}

	for _, tok := range cmds {
		if tok.Ctl != "" {
			ctls = append(ctls, tok.Ctl)
			continue
		}
		argv := tok.Argv
		// A trailing "&" may also arrive inside the final vector.
		if len(argv) > 0 && argv[len(argv)-1] == "&" {
			argv = argv[:len(argv)-1]
			ctls = append(ctls, "&")
		}
		spec, err := BuildSpec(ctx, argv, capture)
		if err != nil {
			cleanup()
			return nil, err
		}
		spec.PipelineIndex = len(specs)
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, buildErrorf("empty pipeline")
	}

	// Wire the control tokens. Pipe ends stay raw files since they must
	// cross process boundaries.
	for i, ctl := range ctls {
		switch {
		case ctl == "|":
			if i+1 >= len(specs) {
				cleanup()
				return nil, buildErrorf("dangling pipe")
			}
			r, w, err := os.Pipe()
			if err != nil {
				cleanup()
				return nil, err
			}
			if err := specs[i].bindStdout(handleStream(w)); err != nil {
				safeClose(r)
				cleanup()
				return nil, err
			}
			if err := specs[i+1].bindStdin(handleStream(r)); err != nil {
				cleanup()
				return nil, err
			}
			specs[i].ownHandle(w)
			specs[i+1].ownHandle(r)
		case ctl == "&" && i == len(ctls)-1:
			specs[len(specs)-1].Background = true
		default:
			cleanup()
			return nil, buildErrorf("unrecognized control token %q", ctl)
		}
	}

	if err := finalizeLastSpec(ctx, specs[len(specs)-1]); err != nil {
		cleanup()
		return nil, err
	}
	return specs, nil
}

// ownHandle records who closes a pipe end on the parent side: after spawn
// for external stages (the child holds its own copy), after the callable
// returns for in-process stages.
func (s *CommandSpec) ownHandle(f io.Closer) {
	if s.IsProxy() {
		s.closeAfterRun = append(s.closeAfterRun, f)
	} else {
		s.closeAfterStart = append(s.closeAfterStart, f)
	}
}

// finalizeLastSpec defaults the final stage's unset streams: earlier
// stages' stdout is already pipe-bound. An explicit redirect always wins
// over the capture mode requested by the caller.
func finalizeLastSpec(ctx *Context, last *CommandSpec) error {
	last.LastInPipeline = true
	captured := last.Capture
	if captured == CaptureNone {
		// Plain streaming: stages inherit the console directly.
		return nil
	}

	// Standard out.
	switch {
	case last.stdout.Set():
		// Explicit redirect suppresses capture.
	case captured.capturesStdout():
		r, w, err := os.Pipe()
		if err != nil {
			return err
		}
		if err := last.bindStdout(handleStream(w)); err != nil {
			safeClose(r)
			return err
		}
		last.capturedStdout = r
		last.ownHandle(w)
	case ctx.Stdout != nil:
		// A console passthrough object is active; stream there.
	default:
		// Inherit the real console through the platform channel, teeing
		// the stream into a reader so output stays observable.
		if err := bindConsoleStdout(ctx, last); err != nil {
			return err
		}
	}

	// Standard error follows the same tree independently.
	switch {
	case last.stderr.Set():
	case captured == CaptureObject || captured == CaptureHidden:
		r, w, err := os.Pipe()
		if err != nil {
			return err
		}
		if err := last.bindStderr(handleStream(w)); err != nil {
			safeClose(r)
			return err
		}
		last.capturedStderr = r
		last.ownHandle(w)
	case ctx.Stderr != nil:
		// A console passthrough object is active; stream there.
	default:
		if err := bindConsoleStderr(last); err != nil {
			return err
		}
	}

	return nil
}

// bindConsoleStdout routes the final stage's stdout through the platform
// console channel, allocating a pty on POSIX so child programs see a
// terminal. Callable aliases cannot run against a pty and use plain pipes.
func bindConsoleStdout(ctx *Context, last *CommandSpec) error {
	var console ConsoleChannel
	if last.IsProxy() {
		console = &pipeConsole{}
	} else {
		console = newConsoleChannel()
	}

	child, observer, err := console.OpenPair()
	if err != nil {
		return err
	}
	if err := last.bindStdout(handleStream(child)); err != nil {
		safeClose(observer)
		_ = console.Close()
		return err
	}
	last.capturedStdout = observer
	last.teeConsole = true
	last.console = console
	last.ownHandle(child)
	return nil
}

// bindConsoleStderr mirrors bindConsoleStdout for the error stream, with
// its own console pair so the two streams stay separable.
func bindConsoleStderr(last *CommandSpec) error {
	var console ConsoleChannel
	if last.IsProxy() {
		console = &pipeConsole{}
	} else {
		console = newConsoleChannel()
	}

	child, observer, err := console.OpenPair()
	if err != nil {
		return err
	}
	if err := last.bindStderr(handleStream(child)); err != nil {
		safeClose(observer)
		_ = console.Close()
		return err
	}
	last.capturedStderr = observer
	last.teeConsoleStderr = true
	last.consoleErr = console
	last.ownHandle(child)
	return nil
}
