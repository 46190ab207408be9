package format

import (
	"encoding/binary"
	"io"
)

// extentHeaderLogicalSize is extent_id(8) + length_in_blocks(4) +
// extent_type(1) + source_extent_start(8) + checksum(4).
const extentHeaderLogicalSize = 8 + 4 + 1 + 8 + 4

// ExtentHeader precedes each extent's payload (Data extents only carry one).
// Unlike ArchiveHeader and FileHeader it carries no magic of its own — its
// position is implied by the preceding FileHeader, whose file_size decides
// how many extent records follow it.
type ExtentHeader struct {
	ExtentID          uint64
	LengthInBlocks    uint32
	ExtentType        ExtentType
	SourceExtentStart uint64
	Checksum          uint32
}

// Write serializes the header and pads it out to a block boundary. The pad
// is consumed before any payload follows.
func (h ExtentHeader) Write(w io.Writer, blockSize uint32) error {
	buf := make([]byte, extentHeaderLogicalSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.ExtentID)
	binary.LittleEndian.PutUint32(buf[8:12], h.LengthInBlocks)
	buf[12] = byte(h.ExtentType)
	binary.LittleEndian.PutUint64(buf[13:21], h.SourceExtentStart)
	binary.LittleEndian.PutUint32(buf[21:25], h.Checksum)
	if _, err := w.Write(buf); err != nil {
		return err
	}
	return writePadding(w, pad(extentHeaderLogicalSize, blockSize))
}

// ReadExtentHeader reads an ExtentHeader from r and discards its padding.
func ReadExtentHeader(r io.Reader, blockSize uint32) (ExtentHeader, error) {
	buf := make([]byte, extentHeaderLogicalSize)
	if err := readFull(r, buf, "extent header"); err != nil {
		return ExtentHeader{}, err
	}
	extentType, err := parseExtentType(buf[12])
	if err != nil {
		return ExtentHeader{}, err
	}
	h := ExtentHeader{
		ExtentID:          binary.LittleEndian.Uint64(buf[0:8]),
		LengthInBlocks:    binary.LittleEndian.Uint32(buf[8:12]),
		ExtentType:        extentType,
		SourceExtentStart: binary.LittleEndian.Uint64(buf[13:21]),
		Checksum:          binary.LittleEndian.Uint32(buf[21:25]),
	}
	if err := skipPadding(r, pad(extentHeaderLogicalSize, blockSize)); err != nil {
		return ExtentHeader{}, err
	}
	return h, nil
}

// PayloadSize returns the number of raw bytes that follow a Data extent's
// (already-padded) header: length_in_blocks * block_size.
func (h ExtentHeader) PayloadSize(blockSize uint32) int64 {
	return int64(h.LengthInBlocks) * int64(blockSize)
}
