package format

import "math/big"

// fileSizeWireBytes is the number of low bytes of the logical 128-bit
// file_size field that are actually present on the wire (spec.md §3/§9).
const fileSizeWireBytes = 12

// FileSize carries FileHeader.file_size. The wire format stores only the
// low 96 bits of a conceptual 128-bit unsigned integer; math/big.Int is used
// to hold it because Go has no native 128-bit integer and no third-party
// uint128 type appears anywhere in the retrieval pack (ext4 inode sizes are
// plain uint64).
type FileSize struct {
	v *big.Int
}

// NewFileSize wraps a non-negative uint64 as a FileSize. This covers every
// file any real filesystem can report through os.FileInfo.Size, which is an
// int64.
func NewFileSize(n uint64) FileSize {
	return FileSize{v: new(big.Int).SetUint64(n)}
}

// Int returns the underlying big.Int. Callers must not mutate it.
func (f FileSize) Int() *big.Int {
	if f.v == nil {
		return new(big.Int)
	}
	return f.v
}

// Uint64 returns the value as a uint64, truncating silently if it does not
// fit — callers that need overflow detection should use BitLen instead.
func (f FileSize) Uint64() uint64 {
	return f.Int().Uint64()
}

// BitLen reports how many bits are needed to represent the value.
func (f FileSize) BitLen() int {
	return f.Int().BitLen()
}

// Sign reports the sign of the value, as big.Int.Sign does.
func (f FileSize) Sign() int {
	return f.Int().Sign()
}

// Cmp compares two FileSize values as big.Int.Cmp does.
func (f FileSize) Cmp(other FileSize) int {
	return f.Int().Cmp(other.Int())
}

// toWireBytes renders the low 96 bits as fileSizeWireBytes little-endian
// bytes. It returns a FileSizeOverflowError if the value needs more than 96
// bits.
func (f FileSize) toWireBytes() ([]byte, error) {
	if bits := f.BitLen(); bits > fileSizeWireBytes*8 {
		return nil, &FileSizeOverflowError{Bits: bits}
	}
	be := f.Int().Bytes() // big-endian, no leading zeros
	buf := make([]byte, fileSizeWireBytes)
	for i, b := range be {
		buf[len(be)-1-i] = b
	}
	return buf, nil
}

// fileSizeFromWireBytes parses fileSizeWireBytes little-endian bytes into a
// FileSize.
func fileSizeFromWireBytes(buf []byte) FileSize {
	be := make([]byte, len(buf))
	for i, b := range buf {
		be[len(buf)-1-i] = b
	}
	return FileSize{v: new(big.Int).SetBytes(be)}
}
