// Package reftar implements the archive format described by the format and
// reflink packages: a tar-like container with fixed-size block-level
// deduplication and copy-on-write reconstruction on extraction.
package reftar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hardwarebob/reftar/format"
	"github.com/hardwarebob/reftar/reflink"
	"github.com/sirupsen/logrus"
	times "gopkg.in/djherbis/times.v1"
)

// fingerprintEntry is the Creator's record of a previously-seen block,
// keyed by its checksum, per spec.md §4.3's "Creator state" description.
type fingerprintEntry struct {
	extentID uint64
}

// Creator writes a reftar archive, deduplicating file content at block
// granularity as it goes. It is not safe for concurrent use.
type Creator struct {
	w            *bufio.Writer
	blockSize    uint32
	fingerprints map[uint32]fingerprintEntry
	nextExtentID uint64
	log          *logrus.Logger
}

// CreatorOption configures a Creator at construction time.
type CreatorOption func(*creatorConfig)

type creatorConfig struct {
	blockSize uint32
	log       *logrus.Logger
}

// WithBlockSize overrides the archive's block size (default
// format.DefaultBlockSize).
func WithBlockSize(blockSize uint32) CreatorOption {
	return func(c *creatorConfig) { c.blockSize = blockSize }
}

// WithCreatorLogger overrides the logger used for recoverable-failure
// diagnostics (default logrus.StandardLogger()).
func WithCreatorLogger(log *logrus.Logger) CreatorOption {
	return func(c *creatorConfig) { c.log = log }
}

// NewCreator starts a new archive on w, writing the ArchiveHeader
// immediately.
func NewCreator(w io.Writer, opts ...CreatorOption) (*Creator, error) {
	cfg := creatorConfig{blockSize: format.DefaultBlockSize, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Creator{
		w:            bufio.NewWriter(w),
		blockSize:    cfg.blockSize,
		fingerprints: make(map[uint32]fingerprintEntry),
		log:          cfg.log,
	}

	header := format.NewArchiveHeader(cfg.blockSize)
	if err := header.Write(c.w); err != nil {
		return nil, fmt.Errorf("reftar: writing archive header: %w", err)
	}
	return c, nil
}

// AddFile adds sourcePath to the archive under archivePath (the archive-
// relative directory plus name). Regular files below the block size are
// stored inline; larger ones are split into deduplicated extents.
func (c *Creator) AddFile(sourcePath, archivePath string) error {
	info, err := os.Lstat(sourcePath)
	if err != nil {
		return fmt.Errorf("reftar: stat %s: %w", sourcePath, err)
	}

	header, err := c.buildFileHeader(sourcePath, archivePath, info)
	if err != nil {
		return err
	}

	if err := header.Write(c.w, c.blockSize); err != nil {
		return fmt.Errorf("reftar: writing file header for %s: %w", archivePath, err)
	}

	if header.FileType == format.FileTypeRegular && len(header.InlineData) == 0 && header.FileSize.Sign() > 0 {
		if err := c.writeFileExtents(sourcePath, header.FileSize); err != nil {
			return fmt.Errorf("reftar: writing extents for %s: %w", archivePath, err)
		}
	}

	return nil
}

// AddDirectory adds sourcePath and, recursively, every entry beneath it, to
// the archive under archiveBase.
//
// archiveBase is the archive path of sourcePath's parent: the directory's
// own entry is written at filepath.Join(archiveBase, filepath.Base(sourcePath)),
// and every descendant is joined against that result, not against
// archiveBase itself — duplicating a segment there was an original-source
// bug this implementation does not carry forward.
func (c *Creator) AddDirectory(sourcePath, archiveBase string) error {
	info, err := os.Lstat(sourcePath)
	if err != nil {
		return fmt.Errorf("reftar: stat %s: %w", sourcePath, err)
	}

	archivePath := filepath.Join(archiveBase, filepath.Base(sourcePath))
	header, err := c.buildFileHeader(sourcePath, archivePath, info)
	if err != nil {
		return err
	}
	if err := header.Write(c.w, c.blockSize); err != nil {
		return fmt.Errorf("reftar: writing directory header for %s: %w", archivePath, err)
	}

	if !info.IsDir() {
		if header.FileType == format.FileTypeRegular && len(header.InlineData) == 0 && header.FileSize.Sign() > 0 {
			if err := c.writeFileExtents(sourcePath, header.FileSize); err != nil {
				return fmt.Errorf("reftar: writing extents for %s: %w", archivePath, err)
			}
		}
		return nil
	}

	entries, err := os.ReadDir(sourcePath)
	if err != nil {
		return fmt.Errorf("reftar: reading directory %s: %w", sourcePath, err)
	}
	for _, entry := range entries {
		entryPath := filepath.Join(sourcePath, entry.Name())
		if entry.IsDir() {
			if err := c.AddDirectory(entryPath, archivePath); err != nil {
				return err
			}
			continue
		}
		if err := c.AddFile(entryPath, filepath.Join(archivePath, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Creator) buildFileHeader(sourcePath, archivePath string, info os.FileInfo) (format.FileHeader, error) {
	fileType := format.FileTypeRegular
	switch {
	case info.IsDir():
		fileType = format.FileTypeDirectory
	case info.Mode()&os.ModeSymlink != 0:
		fileType = format.FileTypeSymLink
	}

	fileSize := format.NewFileSize(uint64(info.Size()))

	var inlineData []byte
	if fileType == format.FileTypeRegular && info.Size() > 0 && uint64(info.Size()) < uint64(c.blockSize) {
		data, err := os.ReadFile(sourcePath)
		if err != nil {
			return format.FileHeader{}, fmt.Errorf("reftar: reading %s: %w", sourcePath, err)
		}
		inlineData = data
	}

	var linkName string
	if fileType == format.FileTypeSymLink {
		target, err := os.Readlink(sourcePath)
		if err != nil {
			return format.FileHeader{}, fmt.Errorf("reftar: reading link %s: %w", sourcePath, err)
		}
		linkName = target
	}

	st := getStatInfo(info)

	creationTime := st.changeTime
	if ts, err := times.Stat(sourcePath); err == nil {
		if ts.HasBirthTime() {
			creationTime = ts.BirthTime().Unix()
		} else {
			creationTime = ts.ChangeTime().Unix()
		}
	}

	var sourceFSType string
	var sourceFSID uint64
	if fileType == format.FileTypeRegular {
		if f, err := os.Open(sourcePath); err == nil {
			sourceFSType = reflink.FilesystemType(f)
			sourceFSID = reflink.FilesystemID(f)
			f.Close()
		} else {
			c.log.WithError(err).WithField("path", sourcePath).Debug("reftar: open for filesystem metadata failed, zeroing fields")
		}
	}

	return format.FileHeader{
		FileSize:             fileSize,
		FileType:             fileType,
		UID:                  st.uid,
		GID:                  st.gid,
		AccessTime:           uint64(st.accessTime),
		ModifyTime:           uint64(st.modifyTime),
		CreationTime:         uint64(creationTime),
		Username:             lookupUsername(st.uid),
		Groupname:            lookupGroupname(st.gid),
		FilePath:             filepath.Dir(archivePath),
		FileName:             filepath.Base(archivePath),
		LinkName:             linkName,
		SourceFilesystemType: sourceFSType,
		SourceFilesystemID:   sourceFSID,
		InlineData:           inlineData,
	}, nil
}

func (c *Creator) writeFileExtents(sourcePath string, fileSize format.FileSize) error {
	f, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("reftar: opening %s: %w", sourcePath, err)
	}
	defer f.Close()

	size := fileSize.Uint64()
	numBlocks := (size + uint64(c.blockSize) - 1) / uint64(c.blockSize)

	block := make([]byte, c.blockSize)
	for i := uint64(0); i < numBlocks; i++ {
		blockOffset := i * uint64(c.blockSize)
		for j := range block {
			block[j] = 0
		}
		if _, err := io.ReadFull(f, block); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return fmt.Errorf("reftar: reading block at %d of %s: %w", blockOffset, sourcePath, err)
		}

		checksum := format.Checksum(block)

		var extentID uint64
		var extentType format.ExtentType
		if existing, ok := c.fingerprints[checksum]; ok {
			extentID = existing.extentID
			extentType = format.ExtentTypeReference
		} else {
			extentID = c.nextExtentID
			c.nextExtentID++
			extentType = format.ExtentTypeData
		}

		eh := format.ExtentHeader{
			ExtentID:          extentID,
			LengthInBlocks:    1,
			ExtentType:        extentType,
			SourceExtentStart: blockOffset,
			Checksum:          checksum,
		}
		if err := eh.Write(c.w, c.blockSize); err != nil {
			return fmt.Errorf("reftar: writing extent header: %w", err)
		}

		if extentType == format.ExtentTypeData {
			if _, err := c.w.Write(block); err != nil {
				return fmt.Errorf("reftar: writing extent payload: %w", err)
			}
			c.fingerprints[checksum] = fingerprintEntry{extentID: extentID}
		}
	}
	return nil
}

// Finish flushes any buffered output. The Creator must not be used
// afterward.
func (c *Creator) Finish() error {
	return c.w.Flush()
}
