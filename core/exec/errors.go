package exec

import (
	"fmt"
	"strings"
)

// BuildError reports a problem assembling a command spec: malformed redirect
// syntax, a stream bound twice, or a redirect target that cannot be opened.
// It is always raised before any process spawns.
type BuildError struct {
	Msg string
	Err error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *BuildError) Unwrap() error { return e.Err }

func buildErrorf(format string, a ...interface{}) *BuildError {
	return &BuildError{Msg: fmt.Sprintf(format, a...)}
}

// NotFoundError reports that a command name resolved to nothing: no alias,
// no callable, no executable on $PATH.
type NotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s: command not found", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf("\nDid you mean one of: %s", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// SpawnError reports a failure launching a resolved command, e.g. permission
// denied or an executable that vanished between resolution and spawn. It
// aborts the remaining unlaunched stages of the pipeline.
type SpawnError struct {
	Argv        []string
	Err         error
	Suggestions []string
}

func (e *SpawnError) Error() string {
	msg := fmt.Sprintf("%s: %v", strings.Join(e.Argv, " "), e.Err)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf("\nDid you mean one of: %s", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError reports a nonzero return code from a captured pipeline whose
// output was consumed in a raise-on-nonzero mode. It carries the pipeline
// handle for inspection.
type ExitError struct {
	Pipeline *CommandPipeline
}

func (e *ExitError) Error() string {
	argv := e.Pipeline.LastArgv()
	return fmt.Sprintf("%s: returned non-zero exit status %d",
		strings.Join(argv, " "), e.Pipeline.Returncode())
}
