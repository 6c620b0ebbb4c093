// SPDX-License-Identifier: Apache-2.0

package fsread

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	path := filepath.Join(dir, "run.log")
	require.NoError(t, os.WriteFile(path, []byte("alpha\n"), 0o644))

	text, canonical, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alpha\n", text)
	assert.Equal(t, path, canonical)

	link := filepath.Join(dir, "link.log")
	require.NoError(t, os.Symlink(path, link))
	_, canonical, err = ReadFile(link)
	require.NoError(t, err)
	assert.Equal(t, path, canonical, "symlinks resolve to their target")

	_, _, err = ReadFile(filepath.Join(dir, "missing.log"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMemory(t *testing.T) {
	m := NewMemory(map[string]string{"logs/./run.log": "a", "/abs/x.log": "b"})

	text, canonical, err := m.Read("logs/run.log")
	require.NoError(t, err)
	assert.Equal(t, "a", text)
	assert.Equal(t, "logs/run.log", canonical)

	_, canonical, err = m.Read("/abs/sub/../x.log")
	require.NoError(t, err)
	assert.Equal(t, "/abs/x.log", canonical)

	_, _, err = m.Read("nope.log")
	require.ErrorIs(t, err, os.ErrNotExist)
}
