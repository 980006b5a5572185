// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package compose

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvLine is one line of a .env file: either a KEY=VALUE pair or a
// preserved comment/blank line (Key == "" in that case).
type EnvLine struct {
	Key     string
	Value   string
	Comment string // the raw line, preserved verbatim for comments/blanks
}

// ReadEnvFile parses a .env file into an ordered slice of lines, so a
// round-trip through WriteEnvFile preserves comments, blank lines, and
// key order.
func ReadEnvFile(path string) ([]EnvLine, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open env file: %w", err)
	}
	defer f.Close()

	var lines []EnvLine
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			lines = append(lines, EnvLine{Comment: raw})
			continue
		}
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			lines = append(lines, EnvLine{Comment: raw})
			continue
		}
		lines = append(lines, EnvLine{Key: strings.TrimSpace(key), Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan env file: %w", err)
	}
	return lines, nil
}

// EnvMap collapses lines to a plain map, last write wins.
func EnvMap(lines []EnvLine) map[string]string {
	m := make(map[string]string)
	for _, l := range lines {
		if l.Key != "" {
			m[l.Key] = l.Value
		}
	}
	return m
}

// SetEnvValue updates key's value in place if present, or appends a new
// KEY=VALUE line otherwise.
func SetEnvValue(lines []EnvLine, key, value string) []EnvLine {
	for i := range lines {
		if lines[i].Key == key {
			lines[i].Value = value
			return lines
		}
	}
	return append(lines, EnvLine{Key: key, Value: value})
}

// WriteEnvFile atomically rewrites path: write to a temp file in the
// same directory, then rename over the original, the same pattern as
// the log engine's cache sidecar persistence.
func WriteEnvFile(path string, lines []EnvLine) error {
	var b strings.Builder
	for _, l := range lines {
		if l.Key == "" {
			b.WriteString(l.Comment)
		} else {
			fmt.Fprintf(&b, "%s=%s", l.Key, l.Value)
		}
		b.WriteByte('\n')
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".env-*")
	if err != nil {
		return fmt.Errorf("create temp env file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp env file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp env file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename env file: %w", err)
	}
	return nil
}
