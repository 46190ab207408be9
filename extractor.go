package reftar

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hardwarebob/reftar/format"
	"github.com/hardwarebob/reftar/reflink"
	"github.com/sirupsen/logrus"
)

// fileLocation is where a cached extent's bytes ended up on disk, so a
// later Reference can attempt a reflink from it instead of a copy.
type fileLocation struct {
	path   string
	offset int64
}

// cachedExtent is the Extractor's record of a Data extent's content, keyed
// by extent_id, per spec.md §4.4's "Extractor state" description.
type cachedExtent struct {
	data     []byte
	location *fileLocation
}

// Extractor reads a reftar archive and materializes its files on disk. It
// is not safe for concurrent use.
type Extractor struct {
	r           *bufio.Reader
	blockSize   uint32
	outputDir   string
	extentCache map[uint64]cachedExtent
	log         *logrus.Logger
}

// ExtractorOption configures an Extractor at construction time.
type ExtractorOption func(*extractorConfig)

type extractorConfig struct {
	log *logrus.Logger
}

// WithExtractorLogger overrides the logger used for recoverable-failure
// diagnostics (default logrus.StandardLogger()).
func WithExtractorLogger(log *logrus.Logger) ExtractorOption {
	return func(c *extractorConfig) { c.log = log }
}

// NewExtractor reads the ArchiveHeader from r and prepares to extract files
// into outputDir, which is created if it does not already exist.
func NewExtractor(r io.Reader, outputDir string, opts ...ExtractorOption) (*Extractor, error) {
	cfg := extractorConfig{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	br := bufio.NewReader(r)
	header, err := format.ReadArchiveHeader(br)
	if err != nil {
		return nil, fmt.Errorf("reftar: reading archive header: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("reftar: creating output directory %s: %w", outputDir, err)
	}

	return &Extractor{
		r:           br,
		blockSize:   header.BlockSize,
		outputDir:   outputDir,
		extentCache: make(map[uint64]cachedExtent),
		log:         cfg.log,
	}, nil
}

// ExtractAll extracts every file in the archive.
func (e *Extractor) ExtractAll() error {
	for {
		ok, err := e.ExtractNextFile()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// ExtractNextFile extracts the next file record. It returns (false, nil) at
// the end of the archive.
func (e *Extractor) ExtractNextFile() (bool, error) {
	header, err := format.ReadFileHeader(e.r, e.blockSize)
	if err != nil {
		if err == format.ErrEndOfArchive {
			return false, nil
		}
		return false, fmt.Errorf("reftar: reading file header: %w", err)
	}

	outputPath := filepath.Join(e.outputDir, header.FilePath, header.FileName)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return false, fmt.Errorf("reftar: creating parent directories for %s: %w", outputPath, err)
	}

	switch header.FileType {
	case format.FileTypeDirectory:
		if err := os.MkdirAll(outputPath, 0o755); err != nil {
			return false, fmt.Errorf("reftar: creating directory %s: %w", outputPath, err)
		}
	case format.FileTypeSymLink:
		_ = os.Remove(outputPath)
		if err := os.Symlink(header.LinkName, outputPath); err != nil {
			return false, fmt.Errorf("reftar: creating symlink %s: %w", outputPath, err)
		}
	case format.FileTypeRegular:
		switch {
		case len(header.InlineData) > 0:
			if err := os.WriteFile(outputPath, header.InlineData, 0o644); err != nil {
				return false, fmt.Errorf("reftar: writing %s: %w", outputPath, err)
			}
		case header.FileSize.Sign() > 0:
			if err := e.extractFileWithExtents(outputPath, header.FileSize); err != nil {
				return false, err
			}
		default:
			if err := os.WriteFile(outputPath, nil, 0o644); err != nil {
				return false, fmt.Errorf("reftar: creating empty file %s: %w", outputPath, err)
			}
		}
	default:
		e.log.WithField("type", header.FileType.String()).WithField("path", outputPath).Warn("reftar: skipping unsupported file type")
		return true, nil
	}

	if err := e.setFileMetadata(outputPath, header); err != nil {
		return false, err
	}

	return true, nil
}

func (e *Extractor) extractFileWithExtents(outputPath string, fileSize format.FileSize) error {
	outFile, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("reftar: creating %s: %w", outputPath, err)
	}
	defer outFile.Close()

	size := int64(fileSize.Uint64())
	if err := outFile.Truncate(size); err != nil {
		return fmt.Errorf("reftar: sizing %s: %w", outputPath, err)
	}

	var currentOffset int64
	for currentOffset < size {
		eh, err := format.ReadExtentHeader(e.r, e.blockSize)
		if err != nil {
			return fmt.Errorf("reftar: reading extent header for %s: %w", outputPath, err)
		}

		switch eh.ExtentType {
		case format.ExtentTypeData:
			payloadSize := eh.PayloadSize(e.blockSize)
			data := make([]byte, payloadSize)
			if _, err := io.ReadFull(e.r, data); err != nil {
				return fmt.Errorf("reftar: reading extent %d payload for %s: %w", eh.ExtentID, outputPath, err)
			}

			got := format.Checksum(data)
			if got != eh.Checksum {
				return format.NewChecksumMismatchError(eh.ExtentID, eh.Checksum, got)
			}

			if _, err := outFile.WriteAt(data, currentOffset); err != nil {
				return fmt.Errorf("reftar: writing %s at %d: %w", outputPath, currentOffset, err)
			}

			e.extentCache[eh.ExtentID] = cachedExtent{
				data:     data,
				location: &fileLocation{path: outputPath, offset: currentOffset},
			}

			currentOffset += payloadSize

		case format.ExtentTypeSparse:
			currentOffset += eh.PayloadSize(e.blockSize)

		case format.ExtentTypeReference:
			cached, ok := e.extentCache[eh.ExtentID]
			if !ok {
				return format.NewDanglingReferenceError(eh.ExtentID)
			}

			dataSize := int64(len(cached.data))
			if !e.tryReflinkReference(outFile, cached, currentOffset, dataSize) {
				if _, err := outFile.WriteAt(cached.data, currentOffset); err != nil {
					return fmt.Errorf("reftar: writing %s at %d: %w", outputPath, currentOffset, err)
				}
			}
			currentOffset += dataSize
		}
	}

	// Extent payloads are always whole, block-aligned writes (spec.md §4.1),
	// so the last extent of a file whose size is not a multiple of
	// block_size pushes the file past its declared size. Truncating back
	// to size here is what makes the output byte-identical to the source.
	if err := outFile.Truncate(size); err != nil {
		return fmt.Errorf("reftar: finalizing size of %s: %w", outputPath, err)
	}

	return nil
}

// tryReflinkReference attempts to clone a previously-written extent's range
// into outFile at destOffset. It reports whether the clone succeeded;
// Unsupported and Failed are logged and return false so the caller falls
// back to a plain write, per spec.md §4.4/§7.
func (e *Extractor) tryReflinkReference(outFile *os.File, cached cachedExtent, destOffset, length int64) bool {
	if cached.location == nil {
		return false
	}

	srcFile, err := os.Open(cached.location.path)
	if err != nil {
		return false
	}
	defer srcFile.Close()

	if err := outFile.Sync(); err != nil {
		e.log.WithError(err).WithField("path", outFile.Name()).Warn("reftar: flush before reflink failed, falling back to copy")
		return false
	}

	outcome := reflink.TryCloneRange(srcFile, cached.location.offset, outFile, destOffset, length)
	switch outcome {
	case reflink.Cloned:
		return true
	case reflink.Unsupported:
		e.log.WithField("src", cached.location.path).WithField("dest", outFile.Name()).Debug("reftar: reflink unsupported, falling back to copy")
		return false
	default:
		e.log.WithField("src", cached.location.path).WithField("dest", outFile.Name()).Warn("reftar: reflink failed, falling back to copy")
		return false
	}
}

// setFileMetadata sets a fixed mode (0755 for directories, 0644 otherwise),
// restores access/modify times, and (best-effort) ownership for the file at
// path. Symlinks are left untouched. Timestamp and ownership failures are
// logged, not fatal — a non-root extractor routinely cannot chown.
func (e *Extractor) setFileMetadata(path string, header format.FileHeader) error {
	if header.FileType == format.FileTypeSymLink {
		return nil
	}

	mode := os.FileMode(0o644)
	if header.FileType == format.FileTypeDirectory {
		mode = 0o755
	}
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("reftar: setting mode on %s: %w", path, err)
	}

	atime := time.Unix(int64(header.AccessTime), 0)
	mtime := time.Unix(int64(header.ModifyTime), 0)
	if err := os.Chtimes(path, atime, mtime); err != nil {
		e.log.WithError(err).WithField("path", path).Debug("reftar: restoring timestamps failed")
	}

	if err := os.Chown(path, int(header.UID), int(header.GID)); err != nil {
		e.log.WithError(err).WithField("path", path).Debug("reftar: restoring ownership failed")
	}

	return nil
}

// ListFiles returns the archive-relative path of every file record, without
// extracting any content.
func (e *Extractor) ListFiles() ([]string, error) {
	var paths []string
	for {
		header, err := format.ReadFileHeader(e.r, e.blockSize)
		if err != nil {
			if err == format.ErrEndOfArchive {
				return paths, nil
			}
			return nil, fmt.Errorf("reftar: reading file header: %w", err)
		}

		paths = append(paths, filepath.Join(header.FilePath, header.FileName))

		if header.FileType == format.FileTypeRegular && len(header.InlineData) == 0 && header.FileSize.Sign() > 0 {
			if err := e.skipExtents(header.FileSize); err != nil {
				return nil, err
			}
		}
	}
}

// skipExtents advances past every ExtentRecord belonging to a file of the
// given size without extracting them. Data payloads are skipped by byte
// count; Sparse and Reference extents carry no payload at all, so only the
// logical offset counter advances for them — it is not a seek.
func (e *Extractor) skipExtents(fileSize format.FileSize) error {
	size := int64(fileSize.Uint64())
	var currentOffset int64
	for currentOffset < size {
		eh, err := format.ReadExtentHeader(e.r, e.blockSize)
		if err != nil {
			return fmt.Errorf("reftar: reading extent header: %w", err)
		}

		payloadSize := eh.PayloadSize(e.blockSize)
		if eh.ExtentType == format.ExtentTypeData {
			if _, err := io.CopyN(io.Discard, e.r, payloadSize); err != nil {
				return fmt.Errorf("reftar: skipping extent %d payload: %w", eh.ExtentID, err)
			}
		}
		currentOffset += payloadSize
	}
	return nil
}
