// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logengine

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestReadLinesNegativeStartCountsFromEnd covers a negative startLine counting back from the end of the file.
func TestReadLinesNegativeStartCountsFromEnd(t *testing.T) {
	path := writeTempLog(t, "app.log", sampleLines)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines, err := readLines(context.Background(), "app.log", f, -2, 2)
	require.NoError(t, err)
	require.Equal(t, []string{sampleLines[3], sampleLines[4]}, lines)
}

func TestReadLinesFromStart(t *testing.T) {
	path := writeTempLog(t, "app.log", sampleLines)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines, err := readLines(context.Background(), "app.log", f, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []string{sampleLines[0], sampleLines[1]}, lines)
}

func TestReadLinesPastEndReturnsNil(t *testing.T) {
	path := writeTempLog(t, "app.log", sampleLines)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines, err := readLines(context.Background(), "app.log", f, 100, 2)
	require.NoError(t, err)
	require.Nil(t, lines)
}

func TestReadLinesClampsOverrun(t *testing.T) {
	path := writeTempLog(t, "app.log", sampleLines)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines, err := readLines(context.Background(), "app.log", f, 3, 100)
	require.NoError(t, err)
	require.Equal(t, []string{sampleLines[3], sampleLines[4]}, lines)
}

func TestReadLinesNegativeBeyondStartClampsToZero(t *testing.T) {
	path := writeTempLog(t, "app.log", sampleLines)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines, err := readLines(context.Background(), "app.log", f, -100, 2)
	require.NoError(t, err)
	require.Equal(t, []string{sampleLines[0], sampleLines[1]}, lines)
}

func TestReadLinesRejectsNonPositiveNum(t *testing.T) {
	path := writeTempLog(t, "app.log", sampleLines)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = readLines(context.Background(), "app.log", f, 0, 0)
	require.Error(t, err)
	require.Equal(t, KindValidation, KindOf(err))
}
