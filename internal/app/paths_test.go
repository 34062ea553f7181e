package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	p := NewPaths("/media")
	assert.Equal(t, filepath.Join("/media", ".mediascout"), p.Root)
	assert.Equal(t, filepath.Join("/media", ".mediascout", "library.db"), p.DB)
	assert.Equal(t, filepath.Join("/media", ".mediascout", "log"), p.LogDir)
	assert.Equal(t, filepath.Join("/media", ".mediascout", "log", "daemon.log"), p.DaemonLog)
	assert.Equal(t, filepath.Join("/media", ".mediascout", "run"), p.RunDir)
	assert.Equal(t, filepath.Join("/media", ".mediascout", "run", "daemon.pid"), p.PIDFile)
	assert.Equal(t, filepath.Join("/media", ".mediascout", "run", "http.port"), p.PortFile)
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	p := NewPaths(dir)

	// First call creates directories.
	require.NoError(t, p.EnsureDirs())
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		info, err := os.Stat(d)
		require.NoError(t, err, "dir %s should exist", d)
		assert.True(t, info.IsDir())
	}

	// Second call is idempotent.
	require.NoError(t, p.EnsureDirs())
}

func TestCleanEphemeral(t *testing.T) {
	p := NewPaths(t.TempDir())
	require.NoError(t, p.EnsureDirs())
	require.NoError(t, os.WriteFile(p.PIDFile, []byte("42"), 0644))
	require.NoError(t, os.WriteFile(p.PortFile, []byte("19001"), 0644))

	p.CleanEphemeral()

	for _, f := range []string{p.PIDFile, p.PortFile} {
		_, err := os.Stat(f)
		assert.True(t, os.IsNotExist(err), "%s should be removed", f)
	}
	_, err := os.Stat(p.DB)
	assert.True(t, os.IsNotExist(err))
	p.CleanEphemeral()
}
