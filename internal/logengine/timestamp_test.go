// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLeadingTimestamp(t *testing.T) {
	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)
	clock := NewClock(loc)

	cases := []struct {
		line string
		want string // RFC3339 if parseable
		ok   bool
	}{
		{"11/20/2025, 11:00:00 PM hello", "2025-11-20T23:00:00Z", true},
		{"11/21/2025, 12:00:00 AM foo", "2025-11-21T00:00:00Z", true},
		{"1/2/2025, 1:02:03 AM x", "2025-01-02T01:02:03Z", true},
		{"11/21/2025, 00:30:00 continuation line", "", false},
		{"", "", false},
		{"not a timestamp", "", false},
		{"11/21/2025 12:00:00 AM missing comma", "", false},
	}

	for _, c := range cases {
		ms, ok := clock.ParseLeadingTimestamp(c.line)
		assert.Equal(t, c.ok, ok, c.line)
		if c.ok {
			want, err := time.Parse(time.RFC3339, c.want)
			require.NoError(t, err)
			assert.Equal(t, want.UnixMilli(), ms, c.line)
		}
	}
}

func TestParseLeadingTimestampNoopOnNone(t *testing.T) {
	clock := NewClock(time.UTC)
	ms, ok := clock.ParseLeadingTimestamp("garbage")
	assert.False(t, ok)
	assert.Equal(t, int64(0), ms)
}

func TestParseRequestTime(t *testing.T) {
	clock := NewClock(time.UTC)

	ms1, err := clock.ParseRequestTime("11/20/2025, 11:30:00 PM")
	require.NoError(t, err)

	ms2, err := clock.ParseRequestTime("2025-11-20T23:30:00Z")
	require.NoError(t, err)

	assert.Equal(t, ms1, ms2)

	_, err = clock.ParseRequestTime("not a time")
	assert.Error(t, err)
}
