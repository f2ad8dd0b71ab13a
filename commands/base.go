// Package commands holds the shell's builtin commands. Each builtin is an
// in-process callable registered under its plain name; builtins always win
// over executables found on $PATH.
package commands

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	getopt "github.com/pborman/getopt/v2"
	"golang.org/x/term"

	"github.com/gosh-shell/gosh/core/alias"
)

// builtins collects every command registered by the init functions in this
// package, keyed by name.
var builtins = make(map[string]*alias.Callable)

func register(c *alias.Callable) {
	if _, ok := builtins[c.Name]; ok {
		panic(fmt.Sprintf("duplicate builtin %q", c.Name))
	}
	builtins[c.Name] = c
}

// RegisterAll installs every builtin into the registry.
func RegisterAll(reg *alias.Registry) {
	for _, c := range builtins {
		reg.DefineCallable(c)
	}
}

// Names returns the sorted names of all builtins.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the builtin registered under name, if any.
func Lookup(name string) (*alias.Callable, bool) {
	c, ok := builtins[name]
	return c, ok
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag
	// isn't added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback.
	NeverBail bool

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was successful call the callback.
func (s *SimpleCommand) Run(inv *alias.Invocation, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(inv.Argv, nil)
	if err != nil && !s.NeverBail {
		fmt.Fprintf(inv.Stderr, "error: %s\n\n", err)

		s.PrintHelp(inv.Stdout)
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(inv.Stdout)
		return 0
	}

	return callback()
}

// RunEachArg runs the callback once per positional argument, reporting any
// errors to stderr. The exit status is nonzero if any argument failed.
func (s *SimpleCommand) RunEachArg(inv *alias.Invocation, callback func(arg string) error) int {
	return s.Run(inv, func() int {
		exitCode := 0
		for _, arg := range s.Flags().Args() {
			if err := callback(arg); err != nil {
				fmt.Fprintf(inv.Stderr, "%s: %v\n", inv.Argv[0], err)
				exitCode = 1
			}
		}
		return exitCode
	})
}

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"
)

var (
	ColorBoldBlue  = color.New(color.FgBlue, color.Bold)
	ColorBoldGreen = color.New(color.FgGreen, color.Bold)
	ColorBoldCyan  = color.New(color.FgCyan, color.Bold)
	ColorBoldRed   = color.New(color.FgRed, color.Bold)
)

type ColorPrinter struct {
	value *string
	inv   *alias.Invocation
}

// Init sets up the flag and invocation used to determine color output.
func (c *ColorPrinter) Init(flags *getopt.Set, inv *alias.Invocation) {
	c.inv = inv
	c.value = flags.EnumLong(
		"color",
		rune(0), // No short flag.
		[]string{colorAlways, colorAuto, colorNever},
		colorAuto,
		"colorize the output (always|auto|never)")
}

func (c *ColorPrinter) ShouldColor() bool {
	switch {
	case *c.value == colorNever:
		return false
	case *c.value == colorAlways:
		return true
	default:
		f, ok := c.inv.Stdout.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	}
}

func (c *ColorPrinter) Sprintf(color *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		return color.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}
