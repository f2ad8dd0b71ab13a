package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCd(t *testing.T) {
	sh := newFakeShell()
	sh.env.Setenv("HOME", "/home/tester")

	t.Run("to directory", func(t *testing.T) {
		rc, _, stderr := invoke(sh, "cd", "/tmp")
		assert.Equal(t, 0, rc, stderr)
		assert.Equal(t, "/tmp", sh.Getwd())
		assert.Equal(t, "/home/tester", sh.env.Getenv("OLDPWD"))
		assert.Equal(t, "/tmp", sh.env.Getenv("PWD"))
	})

	t.Run("bare cd goes home", func(t *testing.T) {
		rc, _, _ := invoke(sh, "cd")
		assert.Equal(t, 0, rc)
		assert.Equal(t, "/home/tester", sh.Getwd())
	})

	t.Run("dash returns to previous", func(t *testing.T) {
		sh.env.Setenv("OLDPWD", "/var/log")
		rc, stdout, _ := invoke(sh, "cd", "-")
		assert.Equal(t, 0, rc)
		assert.Equal(t, "/var/log\n", stdout)
		assert.Equal(t, "/var/log", sh.Getwd())
	})

	t.Run("relative path joins cwd", func(t *testing.T) {
		sh.wd = "/var"
		rc, _, _ := invoke(sh, "cd", "log")
		assert.Equal(t, 0, rc)
		assert.Equal(t, "/var/log", sh.Getwd())
	})

	t.Run("too many args", func(t *testing.T) {
		rc, _, stderr := invoke(sh, "cd", "a", "b")
		assert.Equal(t, 1, rc)
		assert.Contains(t, stderr, "too many arguments")
	})
}

func TestCdMissingHome(t *testing.T) {
	sh := newFakeShell()
	rc, _, stderr := invoke(sh, "cd")
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr, "HOME not set")
}
