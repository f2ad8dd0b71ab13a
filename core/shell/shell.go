// Package shell is the interactive front end: it reads lines, expands
// variables, and drives the execution engine.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/abiosoft/readline"

	"github.com/gosh-shell/gosh/commands"
	"github.com/gosh-shell/gosh/core/alias"
	"github.com/gosh-shell/gosh/core/config"
	"github.com/gosh-shell/gosh/core/env"
	"github.com/gosh-shell/gosh/core/exec"
	"github.com/gosh-shell/gosh/core/jobs"
	"github.com/gosh-shell/gosh/core/lookup"
	shlex "github.com/anmitsu/go-shlex"
)

const (
	EnvHome     = "HOME"
	EnvPWD      = "PWD"
	EnvOldPWD   = "OLDPWD"
	EnvPath     = "PATH"
	EnvPrompt   = "PS1"
	EnvHostname = "HOSTNAME"
	EnvUser     = "USER"

	DefaultPrompt = `\u@\h:\w\$ `
)

var envRegex = regexp.MustCompile(`(\$\$|\$\?|\$\w+)`)

// Shell owns the interactive session state: environment, aliases, job
// table, command cache and the line editor.
type Shell struct {
	cfg      *config.Configuration
	env      *env.MapEnv
	aliases  *alias.Registry
	cache    *lookup.Cache
	jobs     *jobs.Table
	readline *readline.Instance

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	wd         string
	lastStatus int
	exiting    bool
	exitCode   int
}

// New builds a shell from the configuration, seeding the environment from
// the parent process plus the config's env section.
func New(cfg *config.Configuration, stdin io.Reader, stdout, stderr io.Writer) (*Shell, error) {
	environ := env.NewMapEnvFromEnvList(os.Environ())
	for k, v := range cfg.Env {
		_ = environ.Setenv(k, v)
	}

	s := &Shell{
		cfg:     cfg,
		env:     environ,
		aliases: alias.NewRegistry(),
		jobs:    jobs.NewTable(),
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
	}
	s.cache = lookup.NewCache(environ)

	commands.RegisterAll(s.aliases)
	for name, expansion := range cfg.Aliases {
		words, err := shlex.Split(expansion, true)
		if err != nil {
			return nil, fmt.Errorf("alias %q: %w", name, err)
		}
		s.aliases.Define(name, words...)
	}

	s.initEnv()
	return s, nil
}

// initEnv sets up the environment similar to login + source ~/.bashrc.
func (s *Shell) initEnv() {
	if wd, err := os.Getwd(); err == nil {
		s.wd = wd
	} else if home := s.env.Getenv(EnvHome); home != "" {
		s.wd = home
	} else {
		s.wd = "/"
	}
	_ = s.env.Setenv(EnvPWD, s.wd)

	if s.env.Getenv(EnvPath) == "" {
		_ = s.env.Setenv(EnvPath, "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin")
	}
	if host, err := os.Hostname(); err == nil && s.env.Getenv(EnvHostname) == "" {
		_ = s.env.Setenv(EnvHostname, host)
	}
	if s.cfg.Prompt != "" {
		_ = s.env.Setenv(EnvPrompt, s.cfg.Prompt)
	}
}

//
// alias.Shell implementation.
//

func (s *Shell) Getwd() string { return s.wd }

func (s *Shell) Chdir(dir string) error {
	stat, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !stat.IsDir() {
		return fmt.Errorf("not a directory")
	}
	s.wd = dir
	return nil
}

func (s *Shell) Env() env.Env             { return s.env }
func (s *Shell) Aliases() *alias.Registry { return s.aliases }
func (s *Shell) Jobs() *jobs.Table        { return s.jobs }

func (s *Shell) Resolve(name string) (string, bool) {
	return s.cache.Resolve(name)
}

func (s *Shell) RequestExit(code int) {
	s.exiting = true
	s.exitCode = code
}

// LastStatus returns $? for the most recent pipeline.
func (s *Shell) LastStatus() int { return s.lastStatus }

// Prompt renders the PS1 template.
func (s *Shell) Prompt() string {
	prompt := s.env.Getenv(EnvPrompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	prompt = strings.ReplaceAll(prompt, `\u`, s.env.Getenv(EnvUser))
	prompt = strings.ReplaceAll(prompt, `\h`, s.env.Getenv(EnvHostname))

	pwd := s.wd
	if home := s.env.Getenv(EnvHome); home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if os.Getuid() == 0 {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return prompt
}

// expand substitutes $VAR, $? and $$ in one word.
func (s *Shell) expand(word string) string {
	return envRegex.ReplaceAllStringFunc(word, func(m string) string {
		switch m {
		case "$$":
			return strconv.Itoa(os.Getpid())
		case "$?":
			return strconv.Itoa(s.lastStatus)
		default:
			return s.env.Getenv(strings.TrimPrefix(m, "$"))
		}
	})
}

func (s *Shell) execContext() *exec.Context {
	return &exec.Context{
		Env:             s.env,
		Aliases:         s.aliases,
		Cache:           s.cache,
		Jobs:            s.jobs,
		Dir:             s.wd,
		Interactive:     true,
		AutoCd:          s.cfg.AutoCd,
		Shell:           s,
		Stdin:           s.stdin,
		Stdout:          s.stdout,
		Stderr:          s.stderr,
		SuggestionLimit: s.cfg.SuggestionLimit,
	}
}

// Eval runs one command line to completion and returns its status.
func (s *Shell) Eval(line string) int {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return s.lastStatus
	}

	if name, value, ok := ParseAssignment(line); ok {
		_ = s.env.Setenv(name, s.expand(value))
		return s.lastStatus
	}

	tokens, err := Parse(line, s.expand)
	if err != nil {
		if !errors.Is(err, ErrEmptyLine) {
			fmt.Fprintf(s.stderr, "gosh: %v\n", err)
			s.lastStatus = 2
		}
		return s.lastStatus
	}

	pipeline, err := exec.Run(s.execContext(), tokens, exec.CaptureNone)
	if err != nil {
		fmt.Fprintf(s.stderr, "gosh: %v\n", err)
		s.lastStatus = 127
		return s.lastStatus
	}

	if pipeline.Background() {
		fmt.Fprintf(s.stdout, "[%d] %d\n", s.newestJobID(), pipeline.Pgid())
		s.lastStatus = 0
		return s.lastStatus
	}

	rc := exec.ForegroundWait(pipeline)
	if err := pipeline.Err(); err != nil {
		fmt.Fprintf(s.stderr, "gosh: %v\n", err)
	}
	if !pipeline.Suspended() {
		pipeline.Close()
	}
	s.lastStatus = rc

	if s.cfg.RaiseSubprocError && rc != 0 && pipeline.Err() == nil {
		fmt.Fprintf(s.stderr, "gosh: %s: exit status %d\n", pipeline.String(), rc)
	}
	return s.lastStatus
}

func (s *Shell) newestJobID() int {
	if job, ok := s.jobs.Newest(); ok {
		return job.ID
	}
	return 0
}

// EvalReader runs every line from r, stopping early on exit. Used for rc
// files, scripts and -c strings.
func (s *Shell) EvalReader(r io.Reader) int {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() && !s.exiting {
		s.Eval(scanner.Text())
	}
	if s.exiting {
		return s.exitCode
	}
	return s.lastStatus
}

// sourceRC runs the startup script if one exists.
func (s *Shell) sourceRC() {
	fd, err := s.cfg.OpenRC()
	if err != nil {
		return
	}
	defer fd.Close()
	s.EvalReader(fd)
}

// Run is the interactive loop. It returns the shell's exit code.
func (s *Shell) Run() int {
	s.sourceRC()
	if s.exiting {
		return s.exitCode
	}

	rlCfg := &readline.Config{
		Stdin:           readline.NewCancelableStdin(s.stdin),
		Stdout:          s.stdout,
		Stderr:          s.stderr,
		HistoryFile:     s.cfg.HistoryPath(),
		HistoryLimit:    s.cfg.HistorySize,
		InterruptPrompt: "^C",
	}
	if err := rlCfg.Init(); err != nil {
		fmt.Fprintf(s.stderr, "gosh: %v\n", err)
		return 1
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		fmt.Fprintf(s.stderr, "gosh: %v\n", err)
		return 1
	}
	s.readline = rl
	defer rl.Close()

	for !s.exiting {
		rl.SetPrompt(s.Prompt())
		line, err := rl.Readline()

		switch {
		case err == io.EOF:
			return s.lastStatus // Input closed, quit.

		case err == readline.ErrInterrupt:
			s.lastStatus = 130
			continue

		case err != nil:
			fmt.Fprintf(s.stderr, "gosh: %v\n", err)
			continue
		}

		s.Eval(line)

		// Report finished background jobs between commands.
		s.jobs.Clean(s.stdout)
	}
	return s.exitCode
}
