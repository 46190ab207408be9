//go:build linux
// +build linux

package reftar

import (
	"io/fs"
	"syscall"
)

// statInfo is the subset of platform-specific os.FileInfo.Sys() fields the
// Creator needs. Extracting it requires a syscall.Stat_t type assertion,
// which is only meaningful on the platform reflink acceleration targets —
// mirrored after the way disk/disk_unix.go gates BLKRRPART behind a
// build-tag-selected file rather than runtime branching.
type statInfo struct {
	uid, gid   uint64
	accessTime int64
	modifyTime int64
	changeTime int64
}

func getStatInfo(info fs.FileInfo) statInfo {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return statInfo{}
	}
	return statInfo{
		uid:        uint64(st.Uid),
		gid:        uint64(st.Gid),
		accessTime: st.Atim.Sec,
		modifyTime: st.Mtim.Sec,
		changeTime: st.Ctim.Sec,
	}
}
