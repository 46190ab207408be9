package format

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtentHeaderRoundTrip(t *testing.T) {
	cases := []ExtentHeader{
		{ExtentID: 0, LengthInBlocks: 1, ExtentType: ExtentTypeData, SourceExtentStart: 0, Checksum: 0xdeadbeef},
		{ExtentID: 7, LengthInBlocks: 1, ExtentType: ExtentTypeReference, SourceExtentStart: 4096, Checksum: 0},
		{ExtentID: 3, LengthInBlocks: 2, ExtentType: ExtentTypeSparse, SourceExtentStart: 8192, Checksum: 0},
	}

	for _, want := range cases {
		var buf bytes.Buffer
		if err := want.Write(&buf, 4096); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		got, err := ReadExtentHeader(&buf, 4096)
		if err != nil {
			t.Fatalf("ReadExtentHeader() error = %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
		if buf.Len() != 0 {
			t.Errorf("expected all padding consumed, %d bytes left", buf.Len())
		}
	}
}

func TestExtentHeaderPayloadSize(t *testing.T) {
	h := ExtentHeader{LengthInBlocks: 3}
	if got, want := h.PayloadSize(4096), int64(3*4096); got != want {
		t.Errorf("PayloadSize() = %d, want %d", got, want)
	}
}

func TestReadExtentHeaderUnknownType(t *testing.T) {
	buf := make([]byte, extentHeaderLogicalSize)
	buf[12] = 'Z'
	_, err := ReadExtentHeader(bytes.NewReader(buf), 4096)
	if _, ok := err.(*UnknownExtentTypeError); !ok {
		t.Fatalf("expected *UnknownExtentTypeError, got %T: %v", err, err)
	}
}
