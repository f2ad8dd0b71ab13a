package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapEnv(t *testing.T) {
	e := NewMapEnv()
	assert.Nil(t, e.Setenv("FOO", "bar"))

	got, ok := e.LookupEnv("FOO")
	assert.True(t, ok)
	assert.Equal(t, "bar", got)

	assert.Equal(t, "bar", e.Getenv("FOO"))
	assert.Equal(t, "", e.Getenv("MISSING"))

	assert.Nil(t, e.Unsetenv("FOO"))
	_, ok = e.LookupEnv("FOO")
	assert.False(t, ok)
}

func TestMapEnv_Environ(t *testing.T) {
	e := NewMapEnv()
	e.Setenv("B", "2")
	e.Setenv("A", "1")

	assert.Equal(t, []string{"A=1", "B=2"}, e.Environ())
}

func TestMapEnv_ExpandEnv(t *testing.T) {
	e := NewMapEnvFromEnvList([]string{"USER=nobody", "EMPTY="})

	assert.Equal(t, "hi nobody", e.ExpandEnv("hi $USER"))
	assert.Equal(t, "hi ", e.ExpandEnv("hi ${EMPTY}"))
	assert.Equal(t, "hi ", e.ExpandEnv("hi $MISSING"))
}

func TestMapEnv_Detype(t *testing.T) {
	e := NewMapEnv()
	e.Setenv("PATH", "/bin")

	snapshot := e.Detype()
	assert.Equal(t, map[string]string{"PATH": "/bin"}, snapshot)

	// The snapshot is a copy, not a view.
	snapshot["PATH"] = "/sbin"
	assert.Equal(t, "/bin", e.Getenv("PATH"))
}
