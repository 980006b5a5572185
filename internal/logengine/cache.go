// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logengine

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// headerSigBytes is the number of leading file bytes hashed into the
// sidecar's headerSig, used to detect rewrite-in-place.
const headerSigBytes = 64

// endScanChunk is the fixed chunk size scanForEnd walks backward in; the
// total backward distance is bounded by CacheOptions.ScanTailBytes.
const endScanChunk = 10 * 1024

// CacheOptions carries the config-tunable knobs that shape a recompute
// pass: how many leading/trailing bytes to scan, and how hard to work to
// detect a monotonicity violation while scanning.
type CacheOptions struct {
	ScanHeadBytes int64
	ScanTailBytes int64
	Monotonicity  string // "assume" | "validate" | "linear-fallback"
}

func (o CacheOptions) headBytes() int64 {
	if o.ScanHeadBytes > 0 {
		return o.ScanHeadBytes
	}
	return 50 * 1024
}

func (o CacheOptions) tailBytes() int64 {
	if o.ScanTailBytes > 0 {
		return o.ScanTailBytes
	}
	return 100 * 1024
}

// validates reports whether the configured monotonicity mode asks the
// scan to also check for non-decreasing timestamps. "linear-fallback" is
// accepted as a config value but degrades to "validate" with a logged
// warning, since a true linear scan defeats the engine's purpose.
func (o CacheOptions) validates() bool {
	switch o.Monotonicity {
	case "validate":
		return true
	case "linear-fallback":
		log.Printf("logengine: monotonicity=linear-fallback is not implemented as a full linear scan; degrading to validate")
		return true
	default:
		return false
	}
}

// CacheEntry is the persisted time-range metadata for one log file.
type CacheEntry struct {
	Start                 *int64 `json:"start"`
	End                   *int64 `json:"end"`
	Size                  int64  `json:"size"`
	Inode                 uint64 `json:"inode"`
	HeaderSig             string `json:"headerSig"`
	MonotonicityViolation bool   `json:"monotonicityViolation,omitempty"`
}

func sidecarPath(logPath string) string {
	return logPath + ".timecache"
}

// readSidecar loads the persisted cache entry, if any.
func readSidecar(logPath string) (*CacheEntry, bool) {
	data, err := os.ReadFile(sidecarPath(logPath))
	if err != nil {
		return nil, false
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	return &entry, true
}

// writeSidecar persists entry atomically: write to a temp file in the
// same directory, then rename over the sidecar.
func writeSidecar(logPath string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	dir := filepath.Dir(logPath)
	tmp, err := os.CreateTemp(dir, ".timecache-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, sidecarPath(logPath))
}

// TimeRange is the public result of getTimeRange: start/end are nil
// when no timestamp was found in the scanned window.
type TimeRange struct {
	Start *int64
	End   *int64
}

// getTimeRange implements the cache decision table: it either trusts the
// sidecar, partially recomputes (extends `end` only), or fully
// recomputes both ends, then persists the result. Cancelling ctx aborts
// the scan before its next ReadAt and returns no partial result.
func getTimeRange(ctx context.Context, logPath string, isRotated bool, clock *Clock, opts CacheOptions) (TimeRange, error) {
	if err := ctx.Err(); err != nil {
		return TimeRange{}, cancelledErr("getTimeRange", logPath, err)
	}
	info, err := os.Stat(logPath)
	if err != nil {
		return TimeRange{}, ioErr("getTimeRange", logPath, err)
	}
	inode := fileInode(info)
	header, err := readHeaderSig(logPath)
	if err != nil {
		return TimeRange{}, ioErr("getTimeRange", logPath, err)
	}

	cached, hasCache := readSidecar(logPath)

	switch {
	case !hasCache:
		return recomputeAndPersist(ctx, logPath, info.Size(), inode, header, isRotated, clock, opts)

	case isRotated && cached.Start != nil && cached.End != nil:
		return TimeRange{Start: cached.Start, End: cached.End}, nil

	case !isRotated && cached.Inode != inode:
		return recomputeAndPersist(ctx, logPath, info.Size(), inode, header, isRotated, clock, opts)

	case !isRotated && info.Size() < cached.Size:
		return recomputeAndPersist(ctx, logPath, info.Size(), inode, header, isRotated, clock, opts)

	case !isRotated && cached.HeaderSig != header:
		return recomputeAndPersist(ctx, logPath, info.Size(), inode, header, isRotated, clock, opts)

	case !isRotated && info.Size() > cached.Size:
		end, violated, err := scanForEnd(ctx, logPath, info.Size(), clock, opts)
		if err != nil {
			return TimeRange{}, err
		}
		logViolation(logPath, violated)
		entry := &CacheEntry{Start: cached.Start, End: nil, Size: info.Size(), Inode: inode, HeaderSig: header, MonotonicityViolation: cached.MonotonicityViolation || violated}
		if err := writeSidecar(logPath, entry); err != nil {
			return TimeRange{}, ioErr("getTimeRange", logPath, err)
		}
		return TimeRange{Start: cached.Start, End: end}, nil

	default:
		// Active file, identity unchanged, size unchanged: return cache
		// (active files always report a live-recomputed end, which in
		// this branch is simply absent from the cache by construction).
		if isRotated {
			return TimeRange{Start: cached.Start, End: cached.End}, nil
		}
		end, violated, err := scanForEnd(ctx, logPath, info.Size(), clock, opts)
		if err != nil {
			return TimeRange{}, err
		}
		logViolation(logPath, violated)
		return TimeRange{Start: cached.Start, End: end}, nil
	}
}

func logViolation(logPath string, violated bool) {
	if violated {
		log.Printf("logengine: %s: monotonicity violation detected in scanned window", logPath)
	}
}

// recomputeAndPersist rescans both ends of the file. The head and tail
// scans touch disjoint byte ranges, so they run concurrently; cancelling
// ctx stops both.
func recomputeAndPersist(ctx context.Context, logPath string, size int64, inode uint64, header string, isRotated bool, clock *Clock, opts CacheOptions) (TimeRange, error) {
	var start, reportedEnd *int64
	var startViolated, endViolated bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, violated, err := scanForStart(gctx, logPath, size, clock, opts)
		if err != nil {
			return err
		}
		start = v
		startViolated = violated
		return nil
	})
	g.Go(func() error {
		v, violated, err := scanForEnd(gctx, logPath, size, clock, opts)
		if err != nil {
			return err
		}
		reportedEnd = v
		endViolated = violated
		return nil
	})
	if err := g.Wait(); err != nil {
		return TimeRange{}, err
	}
	violated := startViolated || endViolated
	logViolation(logPath, violated)

	// The sidecar only records End for rotated (immutable) files; an
	// active file always reports a freshly scanned end on every call.
	var persistedEnd *int64
	if isRotated {
		persistedEnd = reportedEnd
	}
	entry := &CacheEntry{Start: start, End: persistedEnd, Size: size, Inode: inode, HeaderSig: header, MonotonicityViolation: violated}
	if err := writeSidecar(logPath, entry); err != nil {
		return TimeRange{}, ioErr("getTimeRange", logPath, err)
	}
	return TimeRange{Start: start, End: reportedEnd}, nil
}

// scanForStart scans the first up to opts.ScanHeadBytes for the first
// timestamped line. When opts.Monotonicity asks for validation, it also
// checks that timestamps within the scanned window are non-decreasing.
func scanForStart(ctx context.Context, logPath string, size int64, clock *Clock, opts CacheOptions) (*int64, bool, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return nil, false, ioErr("scanForStart", logPath, err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, false, cancelledErr("scanForStart", logPath, err)
	}

	window := size
	if max := opts.headBytes(); window > max {
		window = max
	}
	buf := make([]byte, window)
	n, err := f.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, false, ioErr("scanForStart", logPath, err)
	}
	buf = buf[:n]

	validate := opts.validates()
	var first *int64
	var violated bool
	var prev int64
	havePrev := false
	for _, line := range splitLinesKeepOffsets(buf) {
		ts, ok := clock.ParseLeadingTimestamp(line)
		if !ok {
			continue
		}
		if first == nil {
			v := ts
			first = &v
			if !validate {
				return first, false, nil
			}
		}
		if havePrev && ts < prev {
			violated = true
		}
		prev, havePrev = ts, true
	}
	return first, violated, nil
}

// scanForEnd scans backward in endScanChunk chunks up to
// opts.ScanTailBytes total, returning the last timestamped line
// encountered. When opts.Monotonicity asks for validation, it also
// checks that timestamps within the winning chunk are non-decreasing.
func scanForEnd(ctx context.Context, logPath string, size int64, clock *Clock, opts CacheOptions) (*int64, bool, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return nil, false, ioErr("scanForEnd", logPath, err)
	}
	defer f.Close()

	validate := opts.validates()
	totalScanned := int64(0)
	maxTotal := opts.tailBytes()
	end := size
	var last *int64

	for totalScanned < maxTotal && end > 0 {
		if err := ctx.Err(); err != nil {
			return nil, false, cancelledErr("scanForEnd", logPath, err)
		}
		chunk := int64(endScanChunk)
		if chunk > end {
			chunk = end
		}
		start := end - chunk
		buf := make([]byte, chunk)
		n, err := f.ReadAt(buf, start)
		if err != nil && err != io.EOF {
			return nil, false, ioErr("scanForEnd", logPath, err)
		}
		buf = buf[:n]

		var violated bool
		var prev int64
		havePrev := false
		for _, line := range splitLinesKeepOffsets(buf) {
			ts, ok := clock.ParseLeadingTimestamp(line)
			if !ok {
				continue
			}
			v := ts
			last = &v
			if validate {
				if havePrev && ts < prev {
					violated = true
				}
				prev, havePrev = ts, true
			}
		}
		if last != nil {
			return last, violated, nil
		}

		end = start
		totalScanned += chunk
	}
	return last, false, nil
}

func splitLinesKeepOffsets(buf []byte) []string {
	var lines []string
	start := 0
	for i, b := range buf {
		if b == '\n' {
			lines = append(lines, string(buf[start:i]))
			start = i + 1
		}
	}
	if start < len(buf) {
		lines = append(lines, string(buf[start:]))
	}
	return lines
}

func readHeaderSig(logPath string) (string, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	buf := make([]byte, headerSigBytes)
	n, err := f.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return "", err
	}
	return hex.EncodeToString(buf[:n]), nil
}
