package workspace

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"rustdocmcp/internal/digest"
	"rustdocmcp/internal/logging"
	"rustdocmcp/internal/rustdoc"
)

// DigestStore is the persistence dependency generate.go needs: loading and
// saving a per-crate digest so regeneration only happens when something the
// digest tracks actually changed. Satisfied by *store.Store.
type DigestStore interface {
	LoadDigest(crateName string) (digest.CrateDigest, bool, error)
	SaveDigest(crateName string, d digest.CrateDigest) error
}

// DocJSONPath is where `cargo rustdoc --output-format json` writes a
// crate's documentation, relative to the workspace root.
func DocJSONPath(root, crateName string) string {
	return filepath.Join(root, "target", "doc", crateName+".json")
}

// computeDigest computes the current digest for a known crate, dispatching
// on its origin. OriginStandard crates are tracked like dependencies with no
// lockfile checksum, since they aren't versioned via Cargo.lock at all.
func computeDigest(ctx context.Context, c *Context, meta CrateMetadata) (digest.CrateDigest, error) {
	switch meta.Origin {
	case OriginLocal:
		dir := meta.Dir
		if dir == "" {
			dir = c.Root
		}
		return digest.ComputeWorkspaceDigest(ctx, dir, nil)
	case OriginExternal, OriginStandard:
		return digest.ComputeDependencyDigest(ctx, meta.Version, meta.Checksum)
	default:
		return digest.CrateDigest{}, fmt.Errorf("unknown crate origin %q for %s", meta.Origin, meta.Name)
	}
}

// GetDocs returns crateName's parsed rustdoc JSON, regenerating it first if
// its digest has changed (or no prior digest/doc file exists). store may be
// nil, in which case every call regenerates; docstate.DocState passes nil
// when it was built without a store (tests, or cmd/rdmcpd after the store
// failed to open).
func GetDocs(ctx context.Context, c *Context, store DigestStore, crateName string) (*rustdoc.CrateIndex, error) {
	meta, ok := c.GetCrate(crateName)
	if !ok {
		return nil, fmt.Errorf("unknown crate %q", crateName)
	}

	current, err := computeDigest(ctx, c, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to compute digest for %s: %w", crateName, err)
	}

	docPath := DocJSONPath(c.Root, crateName)
	if store != nil {
		if saved, ok, err := store.LoadDigest(crateName); err == nil && ok && saved.Equal(current) {
			if idx, loadErr := rustdoc.Load(docPath); loadErr == nil {
				return idx, nil
			}
		}
	}

	if err := GenerateDocs(ctx, c.Root, crateName, meta.Version); err != nil {
		return nil, err
	}
	if store != nil {
		if err := store.SaveDigest(crateName, current); err != nil {
			logging.Get(logging.CategoryCache).Warn("failed to persist digest for %s: %v", crateName, err)
		}
	}

	return rustdoc.Load(docPath)
}

// GenerateDocs shells out to `cargo +nightly rustdoc` to produce a crate's
// rustdoc JSON, validating crateName and version first since both are
// interpolated into the command line.
func GenerateDocs(ctx context.Context, workspaceRoot, crateName, version string) error {
	if err := ValidateCrateName(crateName); err != nil {
		return err
	}

	pkgArg := crateName
	if version != "" {
		if err := ValidateVersion(version); err != nil {
			return err
		}
		pkgArg = fmt.Sprintf("%s@%s", crateName, version)
	}

	timer := logging.StartTimer(logging.CategoryGeneration, "cargo_rustdoc")
	defer timer.Stop()

	cmd := exec.CommandContext(ctx, "cargo", "+nightly", "rustdoc",
		"--package", pkgArg, "--lib", "--",
		"-Z", "unstable-options", "--output-format", "json")
	cmd.Dir = workspaceRoot

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("cargo rustdoc failed for %s: %w\n%s", crateName, err, out)
	}

	logging.Get(logging.CategoryGeneration).Info("generated docs for %s", crateName)
	return nil
}
