// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logs formats and filters raw log lines fetched by docksidectl.
package logs

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OutputFormat selects how FormatLines renders lines.
type OutputFormat int

const (
	FormatPlain OutputFormat = iota
	FormatJSON
	FormatJSONL
)

// ParseOutputFormat parses a -json/-jsonl/-raw flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "plain", "raw":
		return FormatPlain, nil
	case "json":
		return FormatJSON, nil
	case "jsonl":
		return FormatJSONL, nil
	default:
		return FormatPlain, fmt.Errorf("unknown output format %q", s)
	}
}

// FormatLines writes lines to w in the requested format.
func FormatLines(w io.Writer, lines []string, format OutputFormat) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(lines, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatJSONL:
		enc := json.NewEncoder(w)
		for _, line := range lines {
			if err := enc.Encode(map[string]string{"line": line}); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}
}

// Grep reports whether substring appears in line. Empty substring
// matches everything.
func Grep(line, substring string) bool {
	return substring == "" || strings.Contains(line, substring)
}

// FilterLines keeps only lines containing substring, preserving order.
func FilterLines(lines []string, substring string) []string {
	if substring == "" {
		return lines
	}
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		if Grep(line, substring) {
			filtered = append(filtered, line)
		}
	}
	return filtered
}
