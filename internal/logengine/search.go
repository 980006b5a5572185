// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logengine

import (
	"context"
	"io"
)

// Mode selects the boundary findOffsetByTime searches for.
type Mode int

const (
	// LowerBound finds the offset of the first line with timestamp >= target.
	LowerBound Mode = iota
	// UpperBound finds the offset of the first line with timestamp > target.
	UpperBound
)

// findOffsetByTime performs a binary search over file bytes and returns
// the offset such that every complete line starting at or after it has
// a timestamp satisfying the mode's predicate against target. It
// returns size if no such line exists. minOffset restricts the search
// to [minOffset, size) and is used to avoid re-scanning a prefix
// already bounded by a prior lower-bound search.
//
// Correctness depends on timestamps being monotonically non-decreasing
// along the file's lines; when that assumption is violated the result is
// a best-effort offset that satisfies the predicate but may miss
// earlier matching lines.
//
// Cancelling ctx aborts the search before its next I/O step; no partial
// offset is returned in that case.
func findOffsetByTime(ctx context.Context, r io.ReaderAt, size int64, target int64, mode Mode, minOffset int64, clock *Clock) (int64, error) {
	lo, hi := minOffset, size
	if lo < 0 {
		lo = 0
	}
	if lo > hi {
		return size, nil
	}

	candidate := int64(-1)

	for lo < hi {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		mid := lo + (hi-lo)/2

		// Headers are read against the real file size so a line that
		// starts before hi is never cut short; a pivot line starting at
		// or beyond hi lies outside the window and counts as no pivot.
		loc, err := locate(ctx, r, size, mid, clock)
		if err != nil {
			return 0, err
		}
		pivotStart := loc.LineStart
		ts := loc.Timestamp
		hasTS := loc.HasTimestamp && pivotStart < hi

		if !hasTS {
			var at int64
			ts, at, hasTS, err = scanForwardForTimestamp(ctx, r, size, pivotStart, hi, clock)
			if err != nil {
				return 0, err
			}
			if hasTS {
				pivotStart = at
			} else {
				// Treat the unresolved tail as "after": shrink hi to mid
				// so we don't loop forever, and don't record a candidate.
				if mid >= hi {
					break
				}
				hi = mid
				continue
			}
		}

		matches := ts >= target
		if mode == UpperBound {
			matches = ts > target
		}

		if matches {
			candidate = pivotStart
			hi = pivotStart
			if hi <= lo {
				break
			}
		} else {
			next := pivotStart + 1
			if next <= mid {
				next = mid + 1
			}
			lo = next
		}
	}

	if candidate >= 0 {
		return candidate, nil
	}
	return size, nil
}
