package format

import (
	"encoding/binary"
	"io"
)

// sourceFilesystemTypeWidth is the fixed, NUL-padded width of
// FileHeader.SourceFilesystemType on the wire.
const sourceFilesystemTypeWidth = 128

// fileHeaderFixedFieldsSize is every fixed-width field after magic and
// header_size: file_size(12) + file_type(1) + uid/gid/devmajor/devminor/
// atime/mtime/ctime(8 each) + source_filesystem_type(128) +
// source_filesystem_id(8).
const fileHeaderFixedFieldsSize = fileSizeWireBytes + 1 + 8*7 + sourceFilesystemTypeWidth + 8

// FileHeader describes one filesystem entry recorded in the archive: its
// type, ownership, timestamps, path, and — for small regular files — its
// content inline. Large regular files instead carry ExtentRecords
// immediately following the header.
type FileHeader struct {
	FileSize    FileSize
	FileType    FileType
	UID, GID    uint64
	DeviceMajor uint64
	DeviceMinor uint64

	AccessTime   uint64
	ModifyTime   uint64
	CreationTime uint64

	Username  string
	Groupname string
	FilePath  string
	FileName  string
	LinkName  string

	ExtendedPermissions []byte

	SourceFilesystemType string
	SourceFilesystemID   uint64

	// InlineData holds the whole file's content. Present iff
	// FileType == FileTypeRegular and 0 < FileSize < the archive's block
	// size; a file with InlineData carries no ExtentRecords.
	InlineData []byte
}

// headerSize computes the logical (unpadded) size of the header, including
// magic, the header_size field itself, and InlineData — the single value
// both Write and Read use to derive padding.
func (h FileHeader) headerSize() uint32 {
	size := uint32(len(FileHeaderMagic)) + 4 + fileHeaderFixedFieldsSize
	size += 4 + uint32(len(h.Username))
	size += 4 + uint32(len(h.Groupname))
	size += 4 + uint32(len(h.FilePath))
	size += 4 + uint32(len(h.FileName))
	size += 4 + uint32(len(h.LinkName))
	size += 4 + uint32(len(h.ExtendedPermissions))
	size += uint32(len(h.InlineData))
	return size
}

func writeLengthPrefixedString(w io.Writer, s string) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readLengthPrefixedString(r io.Reader, field string) (string, error) {
	var lenBuf [4]byte
	if err := readFull(r, lenBuf[:], field+" length"); err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	buf := make([]byte, n)
	if err := readFull(r, buf, field); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Write serializes the header — including InlineData when present — and
// pads to a block boundary.
func (h FileHeader) Write(w io.Writer, blockSize uint32) error {
	fileSizeBytes, err := h.FileSize.toWireBytes()
	if err != nil {
		return err
	}

	size := h.headerSize()

	if _, err := io.WriteString(w, FileHeaderMagic); err != nil {
		return err
	}
	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], size)
	if _, err := w.Write(u32[:]); err != nil {
		return err
	}
	if _, err := w.Write(fileSizeBytes); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(h.FileType)}); err != nil {
		return err
	}

	var u64 [8]byte
	for _, v := range []uint64{h.UID, h.GID, h.DeviceMajor, h.DeviceMinor, h.AccessTime, h.ModifyTime, h.CreationTime} {
		binary.LittleEndian.PutUint64(u64[:], v)
		if _, err := w.Write(u64[:]); err != nil {
			return err
		}
	}

	for _, s := range []string{h.Username, h.Groupname, h.FilePath, h.FileName, h.LinkName} {
		if err := writeLengthPrefixedString(w, s); err != nil {
			return err
		}
	}

	binary.LittleEndian.PutUint32(u32[:], uint32(len(h.ExtendedPermissions)))
	if _, err := w.Write(u32[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.ExtendedPermissions); err != nil {
		return err
	}

	fsType := make([]byte, sourceFilesystemTypeWidth)
	copy(fsType, h.SourceFilesystemType)
	if _, err := w.Write(fsType); err != nil {
		return err
	}

	binary.LittleEndian.PutUint64(u64[:], h.SourceFilesystemID)
	if _, err := w.Write(u64[:]); err != nil {
		return err
	}

	if len(h.InlineData) > 0 {
		if _, err := w.Write(h.InlineData); err != nil {
			return err
		}
	}

	return writePadding(w, pad(size, blockSize))
}

// ReadFileHeader reads one FileHeader from r. An EOF landing exactly on the
// magic — i.e. before any bytes of this record are consumed — is reported
// as ErrEndOfArchive rather than a TruncatedRecordError; any EOF elsewhere
// in the record is fatal, per spec.md §4.1/§7.
func ReadFileHeader(r io.Reader, blockSize uint32) (FileHeader, error) {
	magic := make([]byte, len(FileHeaderMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		if err == io.EOF {
			return FileHeader{}, ErrEndOfArchive
		}
		return FileHeader{}, TruncatedRecordError{Field: "magic", Cause: err}
	}
	if string(magic) != FileHeaderMagic {
		return FileHeader{}, NewMagicError("file", magic)
	}

	var u32 [4]byte
	if err := readFull(r, u32[:], "header_size"); err != nil {
		return FileHeader{}, err
	}
	headerSize := binary.LittleEndian.Uint32(u32[:])

	fileSizeBuf := make([]byte, fileSizeWireBytes)
	if err := readFull(r, fileSizeBuf, "file_size"); err != nil {
		return FileHeader{}, err
	}
	h := FileHeader{FileSize: fileSizeFromWireBytes(fileSizeBuf)}

	var typeByte [1]byte
	if err := readFull(r, typeByte[:], "file_type"); err != nil {
		return FileHeader{}, err
	}
	ft, err := parseFileType(typeByte[0])
	if err != nil {
		return FileHeader{}, err
	}
	h.FileType = ft

	var u64 [8]byte
	fields := []*uint64{&h.UID, &h.GID, &h.DeviceMajor, &h.DeviceMinor, &h.AccessTime, &h.ModifyTime, &h.CreationTime}
	names := []string{"uid", "gid", "device_major", "device_minor", "access_time", "modify_time", "creation_time"}
	for i, f := range fields {
		if err := readFull(r, u64[:], names[i]); err != nil {
			return FileHeader{}, err
		}
		*f = binary.LittleEndian.Uint64(u64[:])
	}

	if h.Username, err = readLengthPrefixedString(r, "username"); err != nil {
		return FileHeader{}, err
	}
	if h.Groupname, err = readLengthPrefixedString(r, "groupname"); err != nil {
		return FileHeader{}, err
	}
	if h.FilePath, err = readLengthPrefixedString(r, "file_path"); err != nil {
		return FileHeader{}, err
	}
	if h.FileName, err = readLengthPrefixedString(r, "file_name"); err != nil {
		return FileHeader{}, err
	}
	if h.LinkName, err = readLengthPrefixedString(r, "link_name"); err != nil {
		return FileHeader{}, err
	}

	if err := readFull(r, u32[:], "extended_permissions length"); err != nil {
		return FileHeader{}, err
	}
	extPermLen := binary.LittleEndian.Uint32(u32[:])
	if extPermLen > 0 {
		h.ExtendedPermissions = make([]byte, extPermLen)
		if err := readFull(r, h.ExtendedPermissions, "extended_permissions"); err != nil {
			return FileHeader{}, err
		}
	}

	fsType := make([]byte, sourceFilesystemTypeWidth)
	if err := readFull(r, fsType, "source_filesystem_type"); err != nil {
		return FileHeader{}, err
	}
	h.SourceFilesystemType = trimTrailingNuls(fsType)

	if err := readFull(r, u64[:], "source_filesystem_id"); err != nil {
		return FileHeader{}, err
	}
	h.SourceFilesystemID = binary.LittleEndian.Uint64(u64[:])

	if h.FileType == FileTypeRegular && h.FileSize.Sign() > 0 && h.FileSize.BitLen() <= 63 && h.FileSize.Uint64() < uint64(blockSize) {
		h.InlineData = make([]byte, h.FileSize.Uint64())
		if err := readFull(r, h.InlineData, "inline_data"); err != nil {
			return FileHeader{}, err
		}
	}

	if err := skipPadding(r, pad(headerSize, blockSize)); err != nil {
		return FileHeader{}, err
	}

	return h, nil
}

func trimTrailingNuls(b []byte) string {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return string(b[:i])
}
