// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadWithDefaultsAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dockside.hjson")
	require.NoError(t, os.WriteFile(path, []byte(`{
  root: `+dir+`
}`), 0o644))

	cfg, err := NewLoader().LoadWithDefaults(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, dir, cfg.Root)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, int64(50*1024), cfg.Cache.ScanHeadBytes)
	require.Equal(t, int64(100*1024), cfg.Cache.ScanTailBytes)
	require.Equal(t, int64(64*1024*1024), cfg.Logs.SoftCapBytes)
	require.Equal(t, "assume", cfg.Logs.Monotonicity)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsMalformedHjson(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dockside.hjson")
	require.NoError(t, os.WriteFile(path, []byte(`{not valid`), 0o644))

	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
}

func TestFindConfigNoneFound(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	_, err = NewLoader().FindConfig()
	require.Error(t, err)
}

func TestValidateAcceptsDefaultedConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Root: dir}
	applyDefaults(cfg)

	err := NewValidator().Validate(cfg)
	require.NoError(t, err)
}

func TestValidateRejectsBadPort(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Root: dir}
	applyDefaults(cfg)
	cfg.Server.Port = 0

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Error(), "server.port")
}

func TestValidateRejectsUnknownMonotonicity(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Root: dir}
	applyDefaults(cfg)
	cfg.Logs.Monotonicity = "bogus"

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "logs.monotonicity")
}

func TestValidateRejectsMissingRoot(t *testing.T) {
	cfg := &Config{Root: filepath.Join(t.TempDir(), "does-not-exist")}
	applyDefaults(cfg)

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "root")
}
