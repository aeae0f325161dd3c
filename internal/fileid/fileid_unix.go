//go:build !windows

package fileid

import (
	"io/fs"
	"syscall"
)

// sysIDs extracts the (device, inode) pair from a POSIX Stat_t. ok is false
// only when info.Sys() is not a *syscall.Stat_t, as for an fs.FileInfo that
// did not come from a stat of the operating system.
func sysIDs(info fs.FileInfo) (dev, ino uint64, ok bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return uint64(st.Dev), uint64(st.Ino), true
}
