// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logengine

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// sampleLines is a fixture shared across range/search/follow tests.
var sampleLines = []string{
	"11/20/2025, 11:00:00 PM hello",
	"11/20/2025, 11:30:00 PM world",
	"11/21/2025, 12:00:00 AM foo",
	"11/21/2025, 00:30:00 continuation line",
	"11/21/2025, 01:00:00 AM bar",
}

func writeTempLog(t *testing.T, name string, lines []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require := os.WriteFile(path, []byte(content), 0o644)
	if require != nil {
		t.Fatalf("writing temp log: %v", require)
	}
	return path
}

func testClock(t *testing.T) *Clock {
	t.Helper()
	loc, err := time.LoadLocation("UTC")
	if err != nil {
		t.Fatalf("loading UTC: %v", err)
	}
	return NewClock(loc)
}
