package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGoRecoverableRestartsAfterPanic(t *testing.T) {
	t.Parallel()

	runs := 0
	GoRecoverable(3, "flaky", func() {
		runs++
		if runs < 3 {
			panic("boom")
		}
	})
	if runs != 3 {
		t.Fatalf("expected the job to be restarted until it completes, got %d runs", runs)
	}
}

func TestGoRecoverableReturnsOnCleanCompletion(t *testing.T) {
	t.Parallel()

	runs := 0
	GoRecoverable(-1, "calm", func() { runs++ })
	if runs != 1 {
		t.Fatalf("a clean job must run exactly once, got %d", runs)
	}
}

func TestBinaryStampChangesOnRewrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "binary")
	if err := os.WriteFile(path, []byte("v1"), 0o755); err != nil {
		t.Fatal(err)
	}
	before, err := binaryStamp(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// ensure the mtime moves even on coarse filesystem clocks
	time.Sleep(10 * time.Millisecond)
	if err := os.WriteFile(path, []byte("v2 bigger"), 0o755); err != nil {
		t.Fatal(err)
	}
	after, err := binaryStamp(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before == after {
		t.Fatal("rewriting the file must change its stamp")
	}

	if _, err := binaryStamp(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
