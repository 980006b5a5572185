// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeDuration = regexp.MustCompile(`^(\d+)([smhdw])$`)

// ParseTimeArg parses a --since/--until flag value: a relative duration
// ("1h", "30m", "2d" ago), an ISO timestamp, or a bare date, returning
// the RFC 3339 string the search API expects.
func ParseTimeArg(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.RFC3339), nil
		}
	}

	matches := relativeDuration.FindStringSubmatch(s)
	if matches == nil {
		return "", fmt.Errorf("invalid time value %q (use e.g. 1h, 30m, 2024-01-15, or an RFC 3339 timestamp)", s)
	}
	value, _ := strconv.Atoi(matches[1])
	var unit time.Duration
	switch matches[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	case "w":
		unit = 7 * 24 * time.Hour
	}
	return time.Now().Add(-time.Duration(value) * unit).Format(time.RFC3339), nil
}
