package format

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-test/deep"
)

func TestArchiveHeaderRoundTrip(t *testing.T) {
	h := NewArchiveHeader(512)

	var buf bytes.Buffer
	if err := h.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := ReadArchiveHeader(&buf)
	if err != nil {
		t.Fatalf("ReadArchiveHeader() error = %v", err)
	}

	if diff := deep.Equal(h, got); diff != nil {
		t.Errorf("round trip mismatch: %v", diff)
	}
	if buf.Len() != 0 {
		t.Errorf("expected all padding consumed, %d bytes left", buf.Len())
	}
}

func TestArchiveHeaderDefaultBlockSize(t *testing.T) {
	h := NewArchiveHeader(0)
	if h.BlockSize != DefaultBlockSize {
		t.Errorf("BlockSize = %d, want %d", h.BlockSize, DefaultBlockSize)
	}
}

func TestArchiveHeaderPadsToBlockBoundary(t *testing.T) {
	h := NewArchiveHeader(64)
	var buf bytes.Buffer
	if err := h.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.Len()%64 != 0 {
		t.Errorf("written length %d is not block-aligned", buf.Len())
	}
}

func TestReadArchiveHeaderBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 12))
	_, err := ReadArchiveHeader(buf)
	var magicErr *MagicError
	if !errors.As(err, &magicErr) {
		t.Fatalf("expected *MagicError, got %v (%T)", err, err)
	}
}
