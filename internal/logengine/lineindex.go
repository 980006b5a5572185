// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logengine

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

// scanCancelCheckInterval bounds how often readLines checks ctx between
// bufio.Scanner reads, so cancellation is noticed promptly without paying
// the Err() check on every line.
const scanCancelCheckInterval = 256

// readLines returns numLines lines starting from startLine (signed; a
// negative value counts from the end of the file). It reads the whole
// file, which is deliberate for the files this engine expects — a
// reverse-chunk optimization for large negative starts is a known,
// accepted limitation. Cancelling ctx aborts the scan and returns no
// partial lines.
func readLines(ctx context.Context, path string, f *os.File, startLine, numLines int) ([]string, error) {
	if numLines <= 0 {
		return nil, validationErr("readLines", path, fmt.Errorf("numLines must be positive"))
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelledErr("readLines", path, err)
	}

	var all []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for i := 0; scanner.Scan(); i++ {
		if i%scanCancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, cancelledErr("readLines", path, err)
			}
		}
		all = append(all, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, ioErr("readLines", path, err)
	}

	total := len(all)
	start := startLine
	if start < 0 {
		start = total + start
		if start < 0 {
			start = 0
		}
	}
	if start >= total {
		return nil, nil
	}
	end := start + numLines
	if end > total {
		end = total
	}
	return all[start:end], nil
}
