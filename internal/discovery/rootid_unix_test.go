//go:build unix

package discovery

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatRoot(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()

	first, err := statRoot(a)
	require.NoError(t, err)
	again, err := statRoot(a)
	require.NoError(t, err)
	other, err := statRoot(b)
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, other)

	_, err = statRoot(filepath.Join(a, "missing"))
	assert.Error(t, err)
}
