package format

import (
	"encoding/binary"
	"io"
)

// archiveHeaderLogicalSize is 6 (magic) + 2 (version) + 4 (block_size).
const archiveHeaderLogicalSize = 6 + 2 + 4

// ArchiveHeader is the first record of every reftar archive: a fixed-size,
// block-aligned header naming the format version and the block size that
// governs padding for every record that follows.
type ArchiveHeader struct {
	Version   uint16
	BlockSize uint32
}

// NewArchiveHeader builds an ArchiveHeader at the current format version.
// blockSize of 0 is replaced with DefaultBlockSize.
func NewArchiveHeader(blockSize uint32) ArchiveHeader {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	return ArchiveHeader{Version: CurrentVersion, BlockSize: blockSize}
}

// Write serializes the header, including its padding to a block boundary.
func (h ArchiveHeader) Write(w io.Writer) error {
	buf := make([]byte, archiveHeaderLogicalSize)
	copy(buf[0:6], ArchiveMagic)
	binary.LittleEndian.PutUint16(buf[6:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.BlockSize)
	if _, err := w.Write(buf); err != nil {
		return err
	}
	return writePadding(w, pad(archiveHeaderLogicalSize, h.BlockSize))
}

// ReadArchiveHeader reads and validates an ArchiveHeader from r, discarding
// its padding.
func ReadArchiveHeader(r io.Reader) (ArchiveHeader, error) {
	buf := make([]byte, archiveHeaderLogicalSize)
	if err := readFull(r, buf, "archive header"); err != nil {
		return ArchiveHeader{}, err
	}
	if string(buf[0:6]) != ArchiveMagic {
		return ArchiveHeader{}, NewMagicError("archive", buf[0:6])
	}
	h := ArchiveHeader{
		Version:   binary.LittleEndian.Uint16(buf[6:8]),
		BlockSize: binary.LittleEndian.Uint32(buf[8:12]),
	}
	if err := skipPadding(r, pad(archiveHeaderLogicalSize, h.BlockSize)); err != nil {
		return ArchiveHeader{}, err
	}
	return h, nil
}
