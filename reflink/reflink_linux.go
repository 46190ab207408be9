//go:build linux
// +build linux

package reflink

import (
	"os"

	"golang.org/x/sys/unix"
)

// sameFilesystem compares st_dev, the device id the kernel assigns to the
// filesystem a file lives on, per spec.md §4.2.
func sameFilesystem(a, b *os.File) (bool, error) {
	var stA, stB unix.Stat_t
	if err := unix.Fstat(int(a.Fd()), &stA); err != nil {
		return false, err
	}
	if err := unix.Fstat(int(b.Fd()), &stB); err != nil {
		return false, err
	}
	return stA.Dev == stB.Dev, nil
}

// knownFilesystemMagics maps statfs f_type values to the names spec.md §4.2
// lists explicitly; anything else reports "unknown".
var knownFilesystemMagics = map[int64]string{
	0xEF53:     "ext4",
	0x58465342: "xfs",
	0x9123683E: "btrfs",
	0x6969:     "nfs",
	0x01021994: "tmpfs",
}

func filesystemType(f *os.File) string {
	var st unix.Statfs_t
	if err := unix.Fstatfs(int(f.Fd()), &st); err != nil {
		return "unknown"
	}
	if name, ok := knownFilesystemMagics[int64(st.Type)]; ok {
		return name
	}
	return "unknown"
}

func filesystemID(f *os.File) uint64 {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return 0
	}
	return uint64(st.Dev)
}

// tryCloneRange invokes FICLONERANGE on dest's file descriptor. Errno
// EOPNOTSUPP, ENOTTY, or EINVAL means the filesystem cannot clone ranges —
// mapped to Unsupported so the caller falls back to copying. Any other
// errno is Failed; only a nil error is Cloned.
func tryCloneRange(src *os.File, srcOffset int64, dest *os.File, destOffset int64, length int64) Outcome {
	rng := &unix.FileCloneRange{
		Src_fd:      int64(src.Fd()),
		Src_offset:  uint64(srcOffset),
		Src_length:  uint64(length),
		Dest_offset: uint64(destOffset),
	}
	err := unix.IoctlFileCloneRange(int(dest.Fd()), rng)
	if err == nil {
		return Cloned
	}
	switch err {
	case unix.EOPNOTSUPP, unix.ENOTTY, unix.EINVAL:
		return Unsupported
	default:
		return Failed
	}
}
