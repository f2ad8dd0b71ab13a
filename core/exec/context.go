// Package exec is the pipeline execution engine: it turns a parsed sequence
// of command tokens into running OS-level or in-process commands with their
// standard streams wired together, and exposes a uniform handle for waiting
// on and reading from the result.
package exec

import (
	"io"
	"os"

	"github.com/gosh-shell/gosh/core/alias"
	"github.com/gosh-shell/gosh/core/env"
	"github.com/gosh-shell/gosh/core/jobs"
	"github.com/gosh-shell/gosh/core/lookup"
	"github.com/gosh-shell/gosh/core/suggest"
	"github.com/spf13/afero"
)

// Context carries the shell state the engine needs. The engine never reads
// process-wide globals; it is constructible and testable from a Context
// alone.
type Context struct {
	// Env is the shell environment, detyped and exported on spawn.
	Env env.Env
	// Aliases is the alias registry consulted during spec resolution.
	Aliases *alias.Registry
	// Cache resolves command names to executable paths.
	Cache *lookup.Cache
	// Jobs receives a job record per launched pipeline containing at
	// least one external process. May be nil.
	Jobs *jobs.Table
	// Fs opens redirect target files. Defaults to the OS filesystem.
	Fs afero.Fs
	// Dir is the working directory commands run in.
	Dir string
	// Interactive enables process-group creation and job control.
	Interactive bool
	// AutoCd rewrites a lone directory argument into a cd.
	AutoCd bool
	// Shell is handed to in-process callables. May be nil.
	Shell alias.Shell

	// Stdin, Stdout and Stderr are the console streams inherited by
	// stages with no other binding. They default to the process's own.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// SuggestionLimit caps "did you mean" lists on resolution failure.
	SuggestionLimit int
}

func (c *Context) fs() afero.Fs {
	if c.Fs == nil {
		c.Fs = afero.NewOsFs()
	}
	return c.Fs
}

func (c *Context) stdin() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

func (c *Context) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *Context) stderr() io.Writer {
	if c.Stderr != nil {
		return c.Stderr
	}
	return os.Stderr
}

// suggestions produces a ranked list of similar command names, best effort.
func (c *Context) suggestions(name string) []string {
	return suggest.Commands(name, c.SuggestionLimit, c.Cache, c.Aliases)
}
