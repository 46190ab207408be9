//go:build !linux
// +build !linux

package reflink

import "os"

// sameFilesystem is conservatively false outside Linux: with no clone-range
// syscall to exercise, there is nothing to gain from reporting true.
func sameFilesystem(a, b *os.File) (bool, error) {
	return false, nil
}

// tryCloneRange always reports Unsupported outside Linux, per spec.md §4.2.
func tryCloneRange(src *os.File, srcOffset int64, dest *os.File, destOffset int64, length int64) Outcome {
	return Unsupported
}

func filesystemType(f *os.File) string {
	return "unknown"
}

func filesystemID(f *os.File) uint64 {
	return 0
}
