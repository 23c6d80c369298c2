package browser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockProfile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chrome_profile")

	lock, err := LockProfile(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)

	_, err = LockProfile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in use")

	require.NoError(t, lock.Release())

	again, err := LockProfile(dir)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}
