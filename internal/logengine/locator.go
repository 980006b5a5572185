// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logengine

import (
	"bytes"
	"context"
	"io"
)

// locateWindow is the size of each bounded read used to find the next
// newline around a candidate offset. Sized so a typical timestamped
// line header fits within two reads.
const locateWindow = 256

// scanWindow bounds how far scanForwardForTimestamp is allowed to read
// in one line-by-line pass; it recovers from pivots that land on
// continuation lines and is never a linear fallback for a whole search.
const scanWindow = 64 * 1024

// Location is the result of locating a line boundary: lineStart is the
// offset of the first byte of the line at or after the requested
// position, and Timestamp/HasTimestamp describe that line's leading
// token (or its absence).
type Location struct {
	LineStart    int64
	Timestamp    int64
	HasTimestamp bool
}

// locate finds the start of the line at or after byte offset p and
// parses its leading timestamp. It reads r one locateWindow window at a
// time until it finds the newline ending the line that contains p, then
// reads one more window for the header; the number of reads grows with
// the length of that line and has no fixed bound.
func locate(ctx context.Context, r io.ReaderAt, size int64, p int64, clock *Clock) (Location, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, err
	}
	if p < 0 {
		p = 0
	}
	if p > size {
		p = size
	}
	if p == 0 {
		ts, ok, err := readLineHeader(ctx, r, 0, size, clock)
		if err != nil {
			return Location{}, err
		}
		return Location{LineStart: 0}.withTimestamp(ts, ok), nil
	}

	// Search forward from p for the next newline, one window per read,
	// until a newline or EOF is reached.
	lineStart, err := findNextLineStart(ctx, r, p, size)
	if err != nil {
		return Location{}, err
	}
	ts, ok, err := readLineHeader(ctx, r, lineStart, size, clock)
	if err != nil {
		return Location{}, err
	}
	loc := Location{LineStart: lineStart}
	return loc.withTimestamp(ts, ok), nil
}

func (l Location) withTimestamp(ts int64, ok bool) Location {
	l.Timestamp = ts
	l.HasTimestamp = ok
	return l
}

// findNextLineStart returns the smallest offset q >= p such that q == 0
// or the byte at q-1 is '\n'. If p itself is already such an offset
// (byte before it is '\n', or p == 0), it returns p unchanged.
func findNextLineStart(ctx context.Context, r io.ReaderAt, p, size int64) (int64, error) {
	if p <= 0 {
		return 0, nil
	}
	if p >= size {
		return size, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// Check whether p is already at a line start by looking at the byte
	// immediately before it.
	prev := make([]byte, 1)
	if _, err := r.ReadAt(prev, p-1); err != nil && err != io.EOF {
		return 0, err
	}
	if prev[0] == '\n' {
		return p, nil
	}

	offset := p
	for offset < size {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		end := offset + locateWindow
		if end > size {
			end = size
		}
		buf := make([]byte, end-offset)
		n, err := r.ReadAt(buf, offset)
		if err != nil && err != io.EOF {
			return 0, err
		}
		buf = buf[:n]
		if idx := bytes.IndexByte(buf, '\n'); idx >= 0 {
			return offset + int64(idx) + 1, nil
		}
		offset = end
	}
	return size, nil
}

// readLineHeader reads a small window starting at lineStart and parses
// its leading timestamp.
func readLineHeader(ctx context.Context, r io.ReaderAt, lineStart, size int64, clock *Clock) (int64, bool, error) {
	if lineStart >= size {
		return 0, false, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	end := lineStart + locateWindow
	if end > size {
		end = size
	}
	buf := make([]byte, end-lineStart)
	n, err := r.ReadAt(buf, lineStart)
	if err != nil && err != io.EOF {
		return 0, false, nil
	}
	buf = buf[:n]
	if idx := bytes.IndexByte(buf, '\n'); idx >= 0 {
		buf = buf[:idx]
	}
	ts, ok := clock.ParseLeadingTimestamp(string(buf))
	return ts, ok, nil
}

// scanForwardForTimestamp scans line-by-line from offset `from` up to
// `ceiling` until a timestamped line is found. It is bounded by
// scanWindow regardless of ceiling, and is used only to recover from a
// binary-search pivot that lands on a continuation line.
func scanForwardForTimestamp(ctx context.Context, r io.ReaderAt, size, from, ceiling int64, clock *Clock) (ts int64, at int64, ok bool, err error) {
	if ceiling > size {
		ceiling = size
	}
	limit := from + scanWindow
	if limit > ceiling {
		limit = ceiling
	}

	pos := from
	for pos < limit {
		if err := ctx.Err(); err != nil {
			return 0, 0, false, err
		}
		loc, lerr := locate(ctx, r, size, pos, clock)
		if lerr != nil {
			return 0, 0, false, lerr
		}
		if loc.LineStart >= ceiling {
			return 0, 0, false, nil
		}
		if loc.HasTimestamp {
			return loc.Timestamp, loc.LineStart, true, nil
		}
		next, nerr := findNextLineStart(ctx, r, loc.LineStart+1, size)
		if nerr != nil {
			return 0, 0, false, nerr
		}
		if next <= loc.LineStart {
			break
		}
		pos = next
	}
	return 0, 0, false, nil
}
