// Package env holds the shell's typed environment map.
package env

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Fetcher is the read side of an environment, in the form returned by
// os.Environ.
type Fetcher interface {
	// Environ returns a copy of strings representing the environment, in the
	// form "key=value".
	Environ() []string
}

// Env represents a shell environment.
type Env interface {
	Fetcher

	// Setenv sets the value of the environment variable named by the key.
	Setenv(key, value string) error

	// Unsetenv unsets a single environment variable.
	Unsetenv(key string) error

	// LookupEnv retrieves the value of the environment variable named by the
	// key. If the variable is present in the environment the value (which may
	// be empty) is returned and the boolean is true.
	LookupEnv(key string) (string, bool)

	// Getenv retrieves the value of the environment variable named by the
	// key. It returns the value, which will be empty if the variable is not
	// present.
	Getenv(key string) string

	// ExpandEnv replaces ${var} or $var in the string according to the values
	// of the current environment variables.
	ExpandEnv(s string) string

	// Detype returns a plain string snapshot of the environment suitable for
	// exporting to a spawned process.
	Detype() map[string]string
}

// NewMapEnv creates a new environment backed by a map.
func NewMapEnv() *MapEnv {
	return &MapEnv{}
}

// NewMapEnvFrom creates a new environment with a copy of the variables in the
// original environment.
func NewMapEnvFrom(src Fetcher) *MapEnv {
	return NewMapEnvFromEnvList(src.Environ())
}

func NewMapEnvFromEnvList(environ []string) *MapEnv {
	out := &MapEnv{}

	for _, e := range environ {
		split := strings.SplitN(e, "=", 2)
		key, value := split[0], ""
		if len(split) > 1 {
			value = split[1]
		}
		// Ignore error, it will never be set for MapEnv.
		_ = out.Setenv(key, value)
	}

	return out
}

// MapEnv implements an in-memory Env.
type MapEnv struct {
	rw  sync.RWMutex
	env map[string]string
}

var _ Env = (*MapEnv)(nil)

// Setenv implements Env.Setenv.
func (m *MapEnv) Setenv(key, value string) error {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	m.env[key] = value
	return nil
}

// Unsetenv implements Env.Unsetenv.
func (m *MapEnv) Unsetenv(key string) error {
	m.rw.Lock()
	defer m.rw.Unlock()
	if m.env != nil {
		delete(m.env, key)
	}
	return nil
}

// LookupEnv implements Env.LookupEnv.
func (m *MapEnv) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv implements Env.Getenv.
func (m *MapEnv) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// ExpandEnv implements Env.ExpandEnv.
func (m *MapEnv) ExpandEnv(s string) string {
	return os.Expand(s, m.Getenv)
}

// Environ implements Env.Environ. Keys are sorted so the output is stable.
func (m *MapEnv) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	var env []string
	for k, v := range m.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)

	return env
}

// Detype implements Env.Detype.
func (m *MapEnv) Detype() map[string]string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	out := make(map[string]string, len(m.env))
	for k, v := range m.env {
		out[k] = v
	}
	return out
}
