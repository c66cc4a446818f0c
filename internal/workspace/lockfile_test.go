package workspace

import (
	"path/filepath"
	"testing"
)

func TestParseLockfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.lock")
	writeFile(t, path, `
[[package]]
name = "serde"
version = "1.0.188"
checksum = "cf9e0b2a2b5ad0d99b3fdfe3f41e81e1bb3aaef8dc4b4e0c0c8a48a8a3f39d3c"

[[package]]
name = "local-crate"
version = "0.1.0"
`)

	entries, err := ParseLockfile(path)
	if err != nil {
		t.Fatalf("ParseLockfile: %v", err)
	}
	serde, ok := entries["serde"]
	if !ok {
		t.Fatal("expected serde entry")
	}
	if serde.Version != "1.0.188" {
		t.Errorf("expected version 1.0.188, got %q", serde.Version)
	}
	if !serde.Checksum.IsSha256() {
		t.Error("expected serde checksum to parse as a sha256 hash")
	}

	local, ok := entries["local-crate"]
	if !ok {
		t.Fatal("expected local-crate entry")
	}
	if local.Checksum.IsSha256() || local.Checksum.U64() != 0 {
		t.Error("expected a path/git dependency with no checksum to have a zero Hash")
	}
}

func TestParseLockfileMissingFile(t *testing.T) {
	if _, err := ParseLockfile(filepath.Join(t.TempDir(), "Cargo.lock")); err == nil {
		t.Error("expected error for missing lockfile")
	}
}
