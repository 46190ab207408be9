package format

import "testing"

func TestPad(t *testing.T) {
	cases := []struct {
		logicalSize, blockSize, want uint32
	}{
		{0, 4096, 0},
		{1, 4096, 4095},
		{4096, 4096, 0},
		{4097, 4096, 4095},
		{25, 4096, 4071},
	}
	for _, c := range cases {
		if got := pad(c.logicalSize, c.blockSize); got != c.want {
			t.Errorf("pad(%d, %d) = %d, want %d", c.logicalSize, c.blockSize, got, c.want)
		}
	}
}
