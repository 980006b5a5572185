// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logengine

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFindOffsetByTimeLowerBound(t *testing.T) {
	clock := testClock(t)
	path := writeTempLog(t, "app.log", sampleLines)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	worldMs, _ := clock.ParseLeadingTimestamp(sampleLines[1])
	offset, err := findOffsetByTime(context.Background(), f, info.Size(), worldMs, LowerBound, 0, clock)
	require.NoError(t, err)
	require.Equal(t, int64(len(sampleLines[0])+1), offset)
}

func TestFindOffsetByTimeNoMatchReturnsSize(t *testing.T) {
	clock := testClock(t)
	path := writeTempLog(t, "app.log", sampleLines)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	farFuture := time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	offset, err := findOffsetByTime(context.Background(), f, info.Size(), farFuture, LowerBound, 0, clock)
	require.NoError(t, err)
	require.Equal(t, info.Size(), offset)
}

// TestFindOffsetByTimeProperty verifies testable property 1: for a
// synthesized file with strictly increasing timestamps and any t,
// findOffsetByTime(ctx, t, lowerBound) returns the offset of the first line
// whose timestamp is >= t, or size if none.
func TestFindOffsetByTimeProperty(t *testing.T) {
	clock := testClock(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var lines []string
	var offsets []int64
	var timestamps []int64
	cursor := int64(0)
	n := 500
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		line := fmt.Sprintf("%d/%d/%d, %d:%02d:%02d %s line %d",
			int(ts.Month()), ts.Day(), ts.Year(), hour12(ts), ts.Minute(), ts.Second(), meridiem(ts), i)
		lines = append(lines, line)
		offsets = append(offsets, cursor)
		timestamps = append(timestamps, ts.UnixMilli())
		cursor += int64(len(line)) + 1
	}

	path := writeTempLog(t, "big.log", lines)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	for _, i := range []int{0, 1, 10, 250, 499} {
		target := timestamps[i]
		offset, err := findOffsetByTime(context.Background(), f, info.Size(), target, LowerBound, 0, clock)
		require.NoError(t, err)
		require.Equal(t, offsets[i], offset, "target at index %d", i)
	}

	// A target between two timestamps lands on the next line.
	between := timestamps[100] + 500
	offset, err := findOffsetByTime(context.Background(), f, info.Size(), between, LowerBound, 0, clock)
	require.NoError(t, err)
	require.Equal(t, offsets[101], offset)

	// A target after the last line returns size.
	offset, err = findOffsetByTime(context.Background(), f, info.Size(), timestamps[n-1]+10000, LowerBound, 0, clock)
	require.NoError(t, err)
	require.Equal(t, info.Size(), offset)
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return h
}

func meridiem(t time.Time) string {
	if t.Hour() >= 12 {
		return "PM"
	}
	return "AM"
}
