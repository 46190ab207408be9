// Package reflink provides the copy-on-write acceleration substrate used by
// the extractor: querying whether two files live on the same filesystem and
// requesting that the kernel clone a byte range between them instead of
// copying it. The substrate has two implementations, selected at build
// time — a Linux one backed by the FICLONERANGE ioctl, and a no-op stub for
// every other platform — mirroring the way go-diskfs gates BLKRRPART and
// DKIOCGETBLOCKSIZE behind platform build tags.
package reflink

import "os"

// Outcome reports what happened when TryCloneRange was attempted.
type Outcome int

const (
	// Cloned means the destination range now shares storage with the
	// source range; no bytes were copied.
	Cloned Outcome = iota
	// Unsupported means the platform or filesystem cannot clone ranges.
	// The caller should fall back to a plain copy; this is not an error.
	Unsupported
	// Failed means a clone was attempted and the kernel rejected it for a
	// reason other than lack of support. The cause is not reported. The
	// caller should still fall back to a plain copy.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Cloned:
		return "cloned"
	case Unsupported:
		return "unsupported"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SameFilesystem reports whether a and b reside on the same filesystem, by
// comparing the device id the OS reports for each. Outside Linux it always
// reports false. A false result, or an error from stat-ing either file,
// means callers should not bother attempting a clone.
func SameFilesystem(a, b *os.File) (bool, error) {
	return sameFilesystem(a, b)
}

// TryCloneRange asks the kernel to make the range [destOffset, destOffset+
// length) in dest share storage with [srcOffset, srcOffset+length) in src,
// copy-on-write. The caller must have flushed any buffered writes to dest
// before calling this, since the kernel only sees what has reached the file.
func TryCloneRange(src *os.File, srcOffset int64, dest *os.File, destOffset int64, length int64) Outcome {
	return tryCloneRange(src, srcOffset, dest, destOffset, length)
}

// FilesystemType names the filesystem f resides on, by mapping the magic
// number the kernel reports for it (see spec.md §4.2). Outside Linux, or for
// an unrecognized magic number, it returns "unknown".
func FilesystemType(f *os.File) string {
	return filesystemType(f)
}

// FilesystemID returns the device id of the filesystem f resides on, or 0
// outside Linux or when f cannot be stat-ed.
func FilesystemID(f *os.File) uint64 {
	return filesystemID(f)
}
