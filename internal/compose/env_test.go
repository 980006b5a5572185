// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadEnvFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	original := "# a comment\n\nPORT=8080\nNAME=web\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	lines, err := ReadEnvFile(path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"PORT": "8080", "NAME": "web"}, EnvMap(lines))

	require.NoError(t, WriteEnvFile(path, lines))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, original, string(data))
}

func TestReadEnvFileMissingReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	lines, err := ReadEnvFile(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.Nil(t, lines)
}

func TestSetEnvValueUpdatesExisting(t *testing.T) {
	lines := []EnvLine{{Key: "PORT", Value: "8080"}}
	lines = SetEnvValue(lines, "PORT", "9090")
	require.Equal(t, "9090", EnvMap(lines)["PORT"])
	require.Len(t, lines, 1)
}

func TestSetEnvValueAppendsNew(t *testing.T) {
	lines := []EnvLine{{Key: "PORT", Value: "8080"}}
	lines = SetEnvValue(lines, "NAME", "web")
	require.Equal(t, "web", EnvMap(lines)["NAME"])
	require.Len(t, lines, 2)
}

func TestWriteEnvFileLeavesNoTempArtifacts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, WriteEnvFile(path, []EnvLine{{Key: "A", Value: "1"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ".env", entries[0].Name())
}
