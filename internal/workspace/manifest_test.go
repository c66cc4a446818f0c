package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestValidateCrateName(t *testing.T) {
	if err := ValidateCrateName("serde_json"); err != nil {
		t.Errorf("expected valid crate name to pass, got %v", err)
	}
	if err := ValidateCrateName("serde-json"); err != nil {
		t.Errorf("expected dashed crate name to pass, got %v", err)
	}
	for _, bad := range []string{"; rm -rf /", "foo bar", "foo$(ls)", ""} {
		if err := ValidateCrateName(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestValidateVersion(t *testing.T) {
	if err := ValidateVersion("1.2.3"); err != nil {
		t.Errorf("expected valid version to pass, got %v", err)
	}
	for _, bad := range []string{"; rm -rf /", "latest", ""} {
		if err := ValidateVersion(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestBuildContextStandaloneCrate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), `
[package]
name = "mycrate"
version = "0.1.0"
description = "a crate"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
log = "0.4"
`)

	ctx, err := BuildContext(context.Background(), dir)
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	if ctx.DefaultCrateName() != "mycrate" {
		t.Errorf("expected default crate mycrate, got %q", ctx.DefaultCrateName())
	}
	meta, ok := ctx.GetCrate("mycrate")
	if !ok || meta.Origin != OriginLocal || meta.Version != "0.1.0" {
		t.Errorf("unexpected local crate metadata: %+v (ok=%v)", meta, ok)
	}
	serde, ok := ctx.GetCrate("serde")
	if !ok || serde.Origin != OriginExternal || serde.Version != "1.0" {
		t.Errorf("unexpected serde metadata: %+v (ok=%v)", serde, ok)
	}
	if len(serde.UsedBy) != 1 || serde.UsedBy[0] != "mycrate" {
		t.Errorf("expected serde used_by [mycrate], got %v", serde.UsedBy)
	}
}

func TestBuildContextWorkspaceMembersAndPathDeps(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), `
[workspace]
members = ["crates/a", "crates/b"]
`)
	writeFile(t, filepath.Join(root, "crates", "a", "Cargo.toml"), `
[package]
name = "crate-a"
version = "0.1.0"

[dependencies]
crate-b = { path = "../b" }
rand = "0.8"
`)
	writeFile(t, filepath.Join(root, "crates", "b", "Cargo.toml"), `
[package]
name = "crate-b"
version = "0.2.0"
`)

	ctx, err := BuildContext(context.Background(), root)
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	if len(ctx.Members) != 2 {
		t.Fatalf("expected 2 members, got %v", ctx.Members)
	}
	if _, ok := ctx.GetCrate("crate-b"); !ok {
		t.Errorf("expected crate-b to be known as a local member")
	}
	// crate-b is a path dependency of crate-a and must not be promoted to
	// an external dependency entry that shadows its local-origin one.
	meta, _ := ctx.GetCrate("crate-b")
	if meta.Origin != OriginLocal {
		t.Errorf("expected crate-b to remain local-origin, got %v", meta.Origin)
	}
	rnd, ok := ctx.GetCrate("rand")
	if !ok || rnd.Origin != OriginExternal {
		t.Errorf("expected rand to be recorded as an external dependency")
	}
}

func TestBuildContextLockfileResolvesVersion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), `
[package]
name = "app"
version = "0.1.0"

[dependencies]
anyhow = "1"
`)
	writeFile(t, filepath.Join(root, "Cargo.lock"), `
[[package]]
name = "anyhow"
version = "1.0.75"
checksum = "a94f23e08c00bc1c2c1e37a7f2fa94f23e08c00bc1c2c1e37a7f2fa94f23e1"
`)

	ctx, err := BuildContext(context.Background(), root)
	if err != nil {
		t.Fatalf("BuildContext: %v", err)
	}
	anyhow, ok := ctx.GetCrate("anyhow")
	if !ok {
		t.Fatal("expected anyhow to be known")
	}
	if anyhow.Version != "1.0.75" {
		t.Errorf("expected lockfile-resolved version 1.0.75, got %q", anyhow.Version)
	}
}
