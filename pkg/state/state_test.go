/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, err)
	assert.False(t, s.BootstrapDone("generate-secret"))
	_, ok := s.ArtifactHash("conf")
	assert.False(t, ok)
}

func TestMarkBootstrapPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.MarkBootstrap("generate-secret", "pass-1", false))
	assert.True(t, s.BootstrapDone("generate-secret"))

	// A fresh load sees the marker.
	s2, err := Load(path)
	require.NoError(t, err)
	assert.True(t, s2.BootstrapDone("generate-secret"))
	assert.False(t, s2.BootstrapDone("init-schema"))
}

func TestRecordArtifactRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordArtifact("app_conf", "/etc/app.conf", "abc123"))

	hash, ok := s.ArtifactHash("app_conf")
	require.True(t, ok)
	assert.Equal(t, "abc123", hash)

	s2, err := Load(path)
	require.NoError(t, err)
	hash, ok = s2.ArtifactHash("app_conf")
	require.True(t, ok)
	assert.Equal(t, "abc123", hash)
}

func TestSaveFailureLeavesMarkerUnset(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(filepath.Join(dir, "state.yaml"))
	require.NoError(t, err)

	// Make the directory read-only so the temp-file create fails.
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err = s.MarkBootstrap("generate-secret", "pass-1", false)
	require.Error(t, err)
	// The in-memory marker must be rolled back so a retry is attempted.
	assert.False(t, s.BootstrapDone("generate-secret"))
}

func TestSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")

	s, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordArtifact("a", "/etc/a", "h1"))

	// No temp leftovers next to the state file.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.yaml", entries[0].Name())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
