package alias

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LookupMissing(t *testing.T) {
	r := NewRegistry()

	v := r.Lookup("nope")
	assert.True(t, v.None())
}

func TestRegistry_LookupExpansion(t *testing.T) {
	r := NewRegistry()
	r.Define("ll", "ls", "-al")

	v := r.Lookup("ll")
	assert.Equal(t, KindExpansion, v.Kind)
	assert.Equal(t, []string{"ls", "-al"}, v.Expansion)
}

func TestRegistry_LookupRecursive(t *testing.T) {
	r := NewRegistry()
	r.Define("l", "ls", "--color=auto")
	r.Define("ll", "l", "-al")

	v := r.Lookup("ll")
	assert.Equal(t, KindExpansion, v.Kind)
	assert.Equal(t, []string{"ls", "--color=auto", "-al"}, v.Expansion)
}

func TestRegistry_LookupCycle(t *testing.T) {
	// A self-referential alias expands to itself verbatim.
	r := NewRegistry()
	r.Define("ls", "ls", "--color=auto")

	v := r.Lookup("ls")
	assert.Equal(t, KindExpansion, v.Kind)
	assert.Equal(t, []string{"ls", "--color=auto"}, v.Expansion)
}

func TestRegistry_LookupMutualCycle(t *testing.T) {
	r := NewRegistry()
	r.Define("a", "b", "1")
	r.Define("b", "a", "2")

	v := r.Lookup("a")
	assert.Equal(t, KindExpansion, v.Kind)
	assert.Equal(t, []string{"a", "2", "1"}, v.Expansion)
}

func TestRegistry_LookupCallable(t *testing.T) {
	r := NewRegistry()
	r.DefineCallable(FuncArgs("greet", func(args []string) int { return len(args) }))

	v := r.Lookup("greet")
	require.Equal(t, KindCallable, v.Kind)
	assert.Equal(t, "greet", v.Callable.Name)
	assert.True(t, v.Callable.Threadable())
}

func TestRegistry_LookupPartialApplication(t *testing.T) {
	// An expansion chain ending at a callable carries its arguments along.
	r := NewRegistry()
	r.DefineCallable(FuncArgs("ls", func(args []string) int { return 0 }))
	r.Define("ll", "ls", "-al")

	v := r.Lookup("ll")
	require.Equal(t, KindCallable, v.Kind)
	assert.Equal(t, []string{"-al"}, v.Callable.AppliedArgs())

	// The registered callable itself is untouched.
	orig := r.Lookup("ls")
	assert.Empty(t, orig.Callable.AppliedArgs())
}

func TestRegistry_Undefine(t *testing.T) {
	r := NewRegistry()
	r.Define("x", "echo")
	r.Undefine("x")

	assert.True(t, r.Lookup("x").None())
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Define("b", "echo")
	r.Define("a", "echo")

	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestCallable_Unthreadable(t *testing.T) {
	c := FuncNoArgs("pager", func() int { return 0 }).Unthreadable()
	assert.False(t, c.Threadable())
}

func TestCallable_SignatureAdapters(t *testing.T) {
	inv := &Invocation{Argv: []string{"cmd", "a", "b"}}

	gotArgs := FuncArgs("f", func(args []string) int { return len(args) })
	assert.Equal(t, 2, gotArgs.Run(inv))

	gotIn := FuncArgsInput("f", func(args []string, stdin io.Reader) int {
		assert.Nil(t, stdin)
		return len(args)
	})
	assert.Equal(t, 2, gotIn.Run(inv))

	gotFull := Func("f", func(inv *Invocation) int { return len(inv.Argv) })
	assert.Equal(t, 3, gotFull.Run(inv))
}
