//go:build !linux
// +build !linux

package reftar

import "io/fs"

// statInfo fields fall back to zero/mtime-derived values outside Linux: uid
// and gid are not materially meaningful to the archive on platforms where
// reflink acceleration never activates anyway (reflink.TryCloneRange is
// always Unsupported there).
type statInfo struct {
	uid, gid   uint64
	accessTime int64
	modifyTime int64
	changeTime int64
}

func getStatInfo(info fs.FileInfo) statInfo {
	mtime := info.ModTime().Unix()
	return statInfo{accessTime: mtime, modifyTime: mtime, changeTime: mtime}
}
