package reflink

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{
		Cloned:      "cloned",
		Unsupported: "unsupported",
		Failed:      "failed",
	}
	for outcome, want := range cases {
		if got := outcome.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", outcome, got, want)
		}
	}
}

func TestTryCloneRangeNeverPanicsOnOrdinaryFiles(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src")
	destPath := filepath.Join(dir, "dest")

	if err := os.WriteFile(srcPath, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("writing src: %v", err)
	}
	if err := os.WriteFile(destPath, make([]byte, 10), 0o644); err != nil {
		t.Fatalf("writing dest: %v", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		t.Fatalf("opening src: %v", err)
	}
	defer src.Close()
	dest, err := os.OpenFile(destPath, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("opening dest: %v", err)
	}
	defer dest.Close()

	outcome := TryCloneRange(src, 0, dest, 0, 10)
	if outcome != Cloned && outcome != Unsupported && outcome != Failed {
		t.Errorf("unexpected outcome %v", outcome)
	}
}

func TestSameFilesystemOfTempFiles(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a")
	bPath := filepath.Join(dir, "b")
	if err := os.WriteFile(aPath, []byte("a"), 0o644); err != nil {
		t.Fatalf("writing a: %v", err)
	}
	if err := os.WriteFile(bPath, []byte("b"), 0o644); err != nil {
		t.Fatalf("writing b: %v", err)
	}

	a, err := os.Open(aPath)
	if err != nil {
		t.Fatalf("opening a: %v", err)
	}
	defer a.Close()
	b, err := os.Open(bPath)
	if err != nil {
		t.Fatalf("opening b: %v", err)
	}
	defer b.Close()

	// Two files in the same temp directory are always on the same
	// filesystem; this just exercises that SameFilesystem doesn't error.
	if _, err := SameFilesystem(a, b); err != nil {
		t.Errorf("SameFilesystem() error = %v", err)
	}
}
