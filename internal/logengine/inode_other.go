// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package logengine

import "os"

// fileInode has no portable equivalent outside POSIX; rotation
// detection on such platforms falls back to size-decrease and
// header-rewrite checks only.
func fileInode(info os.FileInfo) uint64 {
	return 0
}
