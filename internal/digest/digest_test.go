package digest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashFileDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	if err := os.WriteFile(path, []byte("pub fn hello() {}"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	h1, err := hashFile(path)
	if err != nil {
		t.Fatalf("hashFile: %v", err)
	}
	h2, err := hashFile(path)
	if err != nil {
		t.Fatalf("hashFile: %v", err)
	}
	if h1 != h2 {
		t.Error("hashFile should be deterministic for unchanged content")
	}

	if err := os.WriteFile(path, []byte("pub fn hello() { println!(\"hi\"); }"), 0644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	h3, err := hashFile(path)
	if err != nil {
		t.Fatalf("hashFile: %v", err)
	}
	if h1 == h3 {
		t.Error("hashFile should change when content changes")
	}
}

func TestHashDirectorySkipsNonRustFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "lib.rs"), "pub mod foo;")
	mustWrite(t, filepath.Join(dir, "README.md"), "# ignored")

	h1, err := hashDirectory(dir)
	if err != nil {
		t.Fatalf("hashDirectory: %v", err)
	}

	// Changing the non-.rs file must not change the digest.
	mustWrite(t, filepath.Join(dir, "README.md"), "# ignored, but different now")
	h2, err := hashDirectory(dir)
	if err != nil {
		t.Fatalf("hashDirectory: %v", err)
	}
	if h1 != h2 {
		t.Error("hashDirectory should ignore non-.rs files")
	}

	mustWrite(t, filepath.Join(dir, "lib.rs"), "pub mod foo; pub mod bar;")
	h3, err := hashDirectory(dir)
	if err != nil {
		t.Fatalf("hashDirectory: %v", err)
	}
	if h2 == h3 {
		t.Error("hashDirectory should change when a .rs file changes")
	}
}

func TestHashDirectoryMissingIsNotError(t *testing.T) {
	h, err := hashDirectory(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("expected no error for missing src dir, got %v", err)
	}
	if h == 0 {
		t.Error("expected a stable empty-directory hash, not zero by coincidence check")
	}
}

func TestCrateDigestEqual(t *testing.T) {
	d1 := CrateDigest{
		RustcVersionHash: 1,
		Variant: Variant{
			Kind:         VariantWorkspaceMember,
			ManifestHash: 10,
			SourceHash:   20,
			Features:     []string{"a", "b"},
		},
	}
	d2 := d1
	if !d1.Equal(d2) {
		t.Error("identical digests should be equal")
	}

	d3 := d1
	d3.Variant.SourceHash = 21
	if d1.Equal(d3) {
		t.Error("digests differing in source hash should not be equal")
	}

	d4 := d1
	d4.Variant.Features = []string{"a"}
	if d1.Equal(d4) {
		t.Error("digests differing in features should not be equal")
	}

	dep1 := CrateDigest{
		RustcVersionHash: 1,
		Variant: Variant{
			Kind:     VariantDependency,
			Version:  "1.2.3",
			Checksum: U64Hash(42),
		},
	}
	dep2 := dep1
	if !dep1.Equal(dep2) {
		t.Error("identical dependency digests should be equal")
	}
	dep3 := dep1
	dep3.Variant.Version = "1.2.4"
	if dep1.Equal(dep3) {
		t.Error("dependency digests differing in version should not be equal")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
