package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndReadRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent-browser-foo.pid")

	if err := WriteRecord(path, 4242); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}

	pid, err := ReadRecord(path)
	if err != nil {
		t.Fatalf("ReadRecord failed: %v", err)
	}
	if pid != 4242 {
		t.Fatalf("pid: got %d, want 4242", pid)
	}

	// Decimal text with trailing newline is the wire contract.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != "4242\n" {
		t.Fatalf("record content: got %q", string(data))
	}
}

func TestWriteRecordCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "agent-browser-foo.pid")

	if err := WriteRecord(path, 1); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("record not created: %v", err)
	}
}

func TestReadRecordMissing(t *testing.T) {
	_, err := ReadRecord(filepath.Join(t.TempDir(), "nope.pid"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected os.IsNotExist error, got %v", err)
	}
}

func TestReadRecordInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	if err := os.WriteFile(path, []byte("garbage\n"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := ReadRecord(path); err == nil {
		t.Fatal("expected error for non-numeric record")
	}
}

func TestRemoveRecordIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent-browser-foo.pid")
	if err := WriteRecord(path, 1); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}

	if err := RemoveRecord(path); err != nil {
		t.Fatalf("RemoveRecord failed: %v", err)
	}
	if err := RemoveRecord(path); err != nil {
		t.Fatalf("second RemoveRecord must not fail: %v", err)
	}
}

func TestIsAliveSelf(t *testing.T) {
	if !isAlive(os.Getpid()) {
		t.Fatal("own process must be alive")
	}
}

func TestIsAliveInvalidPID(t *testing.T) {
	if isAlive(0) || isAlive(-1) {
		t.Fatal("non-positive pids must never be alive")
	}
}
