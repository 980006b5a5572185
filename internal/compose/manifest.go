// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package compose parses a service's docker-compose manifest version
// marker, reads and atomically rewrites its .env file, and enumerates
// the services living under the configured root.
package compose

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ManifestVersion is the parsed `# DCM:<major>.<minor>` magic comment
// found on the first line of a service's docker-compose.yml.
type ManifestVersion struct {
	Major int
	Minor int
}

func (v ManifestVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ParseManifestVersion reads the first line of path and extracts its
// `# DCM:<major>.<minor>` marker. A file with no marker on its first
// line returns the zero ManifestVersion and no error — the marker is
// informational, not mandatory.
func ParseManifestVersion(path string) (ManifestVersion, error) {
	f, err := os.Open(path)
	if err != nil {
		return ManifestVersion{}, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return ManifestVersion{}, nil
	}
	line := strings.TrimSpace(scanner.Text())

	const prefix = "# DCM:"
	if !strings.HasPrefix(line, prefix) {
		return ManifestVersion{}, nil
	}
	rest := strings.TrimPrefix(line, prefix)
	parts := strings.SplitN(rest, ".", 2)
	if len(parts) != 2 {
		return ManifestVersion{}, fmt.Errorf("malformed manifest version marker %q", line)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return ManifestVersion{}, fmt.Errorf("malformed manifest major version %q", line)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return ManifestVersion{}, fmt.Errorf("malformed manifest minor version %q", line)
	}
	return ManifestVersion{Major: major, Minor: minor}, nil
}
