package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindGitRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, ok := findGitRoot(nested)
	if !ok || found != root {
		t.Errorf("expected git root %q, got %q (ok=%v)", root, found, ok)
	}
}

func TestFindWorkspaceRootPrefersExplicitWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"crates/a\"]\n")
	memberDir := filepath.Join(root, "crates", "a")
	writeFile(t, filepath.Join(memberDir, "Cargo.toml"), "[package]\nname = \"a\"\nversion = \"0.1.0\"\n")

	found, ok := findWorkspaceRoot(memberDir)
	if !ok || found != root {
		t.Errorf("expected workspace root %q, got %q (ok=%v)", root, found, ok)
	}
}

func TestFindWorkspaceRootFallsBackToStandaloneCrate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), "[package]\nname = \"solo\"\nversion = \"0.1.0\"\n")

	found, ok := findWorkspaceRoot(dir)
	if !ok || found != dir {
		t.Errorf("expected standalone crate root %q, got %q (ok=%v)", dir, found, ok)
	}
}

func TestIsSystemDirectory(t *testing.T) {
	if !isSystemDirectory("/usr/lib/foo") {
		t.Error("expected /usr/lib/foo to be flagged as a system directory")
	}
	if isSystemDirectory("/home/me/projects/foo") {
		t.Error("expected a home directory path not to be flagged as system")
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	if got := ExpandTilde("~/projects"); got != filepath.Join(home, "projects") {
		t.Errorf("expected %q, got %q", filepath.Join(home, "projects"), got)
	}
	if got := ExpandTilde("~"); got != home {
		t.Errorf("expected %q, got %q", home, got)
	}
	if got := ExpandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("expected absolute path unchanged, got %q", got)
	}
}
