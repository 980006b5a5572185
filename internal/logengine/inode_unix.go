// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package logengine

import (
	"os"
	"syscall"
)

// fileInode extracts the inode number from os.FileInfo on POSIX systems,
// used to detect rename+recreate rotation.
func fileInode(info os.FileInfo) uint64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(st.Ino)
	}
	return 0
}
