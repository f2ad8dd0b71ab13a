package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/gosh-shell/gosh/core/alias"
	"github.com/gosh-shell/gosh/core/env"
	"github.com/gosh-shell/gosh/core/jobs"
)

// fakeShell is a minimal in-memory Shell for builtin tests.
type fakeShell struct {
	wd       string
	env      *env.MapEnv
	aliases  *alias.Registry
	jobs     *jobs.Table
	path     map[string]string
	exitCode int
	exited   bool
}

func newFakeShell() *fakeShell {
	return &fakeShell{
		wd:      "/home/tester",
		env:     env.NewMapEnv(),
		aliases: alias.NewRegistry(),
		jobs:    jobs.NewTable(),
		path:    make(map[string]string),
	}
}

func (f *fakeShell) Getwd() string { return f.wd }

func (f *fakeShell) Chdir(dir string) error {
	f.wd = dir
	return nil
}

func (f *fakeShell) Env() env.Env             { return f.env }
func (f *fakeShell) Aliases() *alias.Registry { return f.aliases }
func (f *fakeShell) Jobs() *jobs.Table        { return f.jobs }

func (f *fakeShell) Resolve(name string) (string, bool) {
	p, ok := f.path[name]
	return p, ok
}

func (f *fakeShell) RequestExit(code int) {
	f.exited = true
	f.exitCode = code
}

// invoke runs a builtin against the fake shell and returns its exit code
// with captured stdout and stderr.
func invoke(sh *fakeShell, argv ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	inv := &alias.Invocation{
		Argv:   argv,
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
		Shell:  sh,
	}
	c, ok := builtins[argv[0]]
	if !ok {
		panic("unknown builtin " + argv[0])
	}
	return c.Run(inv), stdout.String(), stderr.String()
}

func TestAllBuiltinsRegistered(t *testing.T) {
	for _, name := range []string{
		"alias", "bg", "cd", "echo", "exit", "false",
		"fg", "jobs", "pwd", "true", "unalias", "which",
	} {
		c, ok := Lookup(name)
		assert.True(t, ok, "builtin %q missing", name)
		assert.NotNil(t, c.Run, "builtin %q has no run func", name)
	}
}

func TestRegisterAll(t *testing.T) {
	reg := alias.NewRegistry()
	RegisterAll(reg)

	for _, name := range Names() {
		v := reg.Lookup(name)
		assert.Equal(t, alias.KindCallable, v.Kind, "builtin %q", name)
	}
}

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Args []string
}

func (gts goldenTestSuite) Run(t *testing.T) {
	t.Helper()

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			_, stdout, stderr := invoke(newFakeShell(), tc.Args...)
			g.Assert(t, tn, []byte(stdout+stderr))
		})
	}
}
