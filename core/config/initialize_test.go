package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	cfg, err := Initialize(tempDir, io.Discard)
	require.NoError(t, err)

	t.Run("OpenHistory", func(t *testing.T) {
		fd, err := cfg.OpenHistory()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenRC", func(t *testing.T) {
		fd, err := cfg.OpenRC()
		assert.Nil(t, err)
		fd.Close()
	})
}

func TestInitializeKeepsExistingConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ConfigurationName)
	require.NoError(t, os.WriteFile(configPath, []byte("prompt: 'custom> '\n"), 0600))

	cfg, err := Initialize(tempDir, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "custom> ", cfg.Prompt)
}
