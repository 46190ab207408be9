package reftar

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hardwarebob/reftar/format"
	"github.com/stretchr/testify/require"
)

func TestEmptyArchive(t *testing.T) {
	var buf bytes.Buffer
	c, err := NewCreator(&buf, WithBlockSize(4096))
	require.NoError(t, err)
	require.NoError(t, c.Finish())

	require.Equal(t, 4096, buf.Len())

	header, err := format.ReadArchiveHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, uint32(4096), header.BlockSize)
}

func TestSmallFileInlineRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "hello.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("Hello, world!"), 0o644))

	var archive bytes.Buffer
	c, err := NewCreator(&archive, WithBlockSize(4096))
	require.NoError(t, err)
	require.NoError(t, c.AddFile(srcPath, "hello.txt"))
	require.NoError(t, c.Finish())

	outDir := t.TempDir()
	e, err := NewExtractor(bytes.NewReader(archive.Bytes()), outDir)
	require.NoError(t, err)
	require.NoError(t, e.ExtractAll())

	got, err := os.ReadFile(filepath.Join(outDir, "hello.txt"))
	require.NoError(t, err)
	require.Equal(t, "Hello, world!", string(got))
}

func TestLargeFileDedupesZeroBlocks(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "zeros.bin")
	require.NoError(t, os.WriteFile(srcPath, make([]byte, 8192), 0o644))

	var archive bytes.Buffer
	c, err := NewCreator(&archive, WithBlockSize(4096))
	require.NoError(t, err)
	require.NoError(t, c.AddFile(srcPath, "zeros.bin"))
	require.NoError(t, c.Finish())

	// Archive header, file header, Data extent header plus its one-block
	// payload, and a payload-free Reference extent header: five blocks.
	require.Equal(t, 5*4096, archive.Len())

	outDir := t.TempDir()
	e, err := NewExtractor(bytes.NewReader(archive.Bytes()), outDir)
	require.NoError(t, err)
	require.NoError(t, e.ExtractAll())

	got, err := os.ReadFile(filepath.Join(outDir, "zeros.bin"))
	require.NoError(t, err)
	require.Equal(t, make([]byte, 8192), got)
}

func TestIdenticalFilesShareAnExtent(t *testing.T) {
	srcDir := t.TempDir()
	content := bytes.Repeat([]byte{0x5a}, 4096)
	pathA := filepath.Join(srcDir, "a.bin")
	pathB := filepath.Join(srcDir, "b.bin")
	require.NoError(t, os.WriteFile(pathA, content, 0o644))
	require.NoError(t, os.WriteFile(pathB, content, 0o644))

	var archive bytes.Buffer
	c, err := NewCreator(&archive, WithBlockSize(4096))
	require.NoError(t, err)
	require.NoError(t, c.AddFile(pathA, "a.bin"))
	require.NoError(t, c.AddFile(pathB, "b.bin"))
	require.NoError(t, c.Finish())

	// a.bin: file header, Data extent header and payload; b.bin: file header
	// and a Reference extent header with no payload. Plus the archive header.
	require.Equal(t, 6*4096, archive.Len())

	outDir := t.TempDir()
	e, err := NewExtractor(bytes.NewReader(archive.Bytes()), outDir)
	require.NoError(t, err)
	require.NoError(t, e.ExtractAll())

	gotA, err := os.ReadFile(filepath.Join(outDir, "a.bin"))
	require.NoError(t, err)
	gotB, err := os.ReadFile(filepath.Join(outDir, "b.bin"))
	require.NoError(t, err)
	require.Equal(t, content, gotA)
	require.Equal(t, content, gotB)
}

func TestDirectoryRoundTripDoesNotDuplicatePathSegments(t *testing.T) {
	srcRoot := t.TempDir()
	nested := filepath.Join(srcRoot, "pkg", "sub")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "leaf.txt"), []byte("x"), 0o644))

	var archive bytes.Buffer
	c, err := NewCreator(&archive, WithBlockSize(4096))
	require.NoError(t, err)
	require.NoError(t, c.AddDirectory(filepath.Join(srcRoot, "pkg"), ""))
	require.NoError(t, c.Finish())

	outDir := t.TempDir()
	e, err := NewExtractor(bytes.NewReader(archive.Bytes()), outDir)
	require.NoError(t, err)
	require.NoError(t, e.ExtractAll())

	got, err := os.ReadFile(filepath.Join(outDir, "pkg", "sub", "leaf.txt"))
	require.NoError(t, err)
	require.Equal(t, "x", string(got))
}

func TestChecksumMismatchIsFatal(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := filepath.Join(srcDir, "a.bin")
	require.NoError(t, os.WriteFile(srcPath, bytes.Repeat([]byte{0x11}, 4096), 0o644))

	var archive bytes.Buffer
	c, err := NewCreator(&archive, WithBlockSize(4096))
	require.NoError(t, err)
	require.NoError(t, c.AddFile(srcPath, "a.bin"))
	require.NoError(t, c.Finish())

	corrupted := archive.Bytes()
	// Flip one bit of the last non-zero byte in the archive. That byte lies
	// in the Data extent's payload, so the stored checksum no longer matches
	// the bytes read back.
	flipped := false
	for i := len(corrupted) - 1; i >= 0 && !flipped; i-- {
		if corrupted[i] != 0 {
			corrupted[i] ^= 0x01
			flipped = true
		}
	}
	require.True(t, flipped)

	outDir := t.TempDir()
	e, err := NewExtractor(bytes.NewReader(corrupted), outDir)
	require.NoError(t, err)
	err = e.ExtractAll()
	require.Error(t, err)
}

func TestListFilesSkipsPayloadWithoutExtracting(t *testing.T) {
	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "small.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "big.bin"), make([]byte, 8192), 0o644))

	var archive bytes.Buffer
	c, err := NewCreator(&archive, WithBlockSize(4096))
	require.NoError(t, err)
	require.NoError(t, c.AddFile(filepath.Join(srcDir, "small.txt"), "small.txt"))
	require.NoError(t, c.AddFile(filepath.Join(srcDir, "big.bin"), "big.bin"))
	require.NoError(t, c.Finish())

	e, err := NewExtractor(bytes.NewReader(archive.Bytes()), t.TempDir())
	require.NoError(t, err)
	names, err := e.ListFiles()
	require.NoError(t, err)
	require.Equal(t, []string{"small.txt", "big.bin"}, names)
}
