package digest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"rustdocmcp/internal/logging"
)

// CrateDigest records what must be checked to decide whether a crate's
// generated documentation is stale.
type CrateDigest struct {
	// RustcVersionHash invalidates every digest on a toolchain change.
	RustcVersionHash uint64 `json:"rustc_version_hash"`
	Variant          Variant `json:"variant"`
}

// Variant is the type-specific half of a CrateDigest: a workspace member
// tracked by source content, or a dependency tracked by its lockfile
// checksum.
type Variant struct {
	Kind VariantKind `json:"kind"`

	// WorkspaceMember fields.
	ManifestHash uint64   `json:"manifest_hash,omitempty"`
	SourceHash   uint64   `json:"source_hash,omitempty"`
	Features     []string `json:"features,omitempty"`

	// Dependency fields.
	Version  string `json:"version,omitempty"`
	Checksum Hash   `json:"checksum,omitempty"`
}

// VariantKind distinguishes the two Variant shapes.
type VariantKind string

const (
	VariantWorkspaceMember VariantKind = "workspace_member"
	VariantDependency      VariantKind = "dependency"
)

// Equal reports whether two digests are identical, meaning the associated
// documentation does not need to be regenerated.
func (d CrateDigest) Equal(other CrateDigest) bool {
	if d.RustcVersionHash != other.RustcVersionHash {
		return false
	}
	if d.Variant.Kind != other.Variant.Kind {
		return false
	}
	switch d.Variant.Kind {
	case VariantWorkspaceMember:
		if d.Variant.ManifestHash != other.Variant.ManifestHash {
			return false
		}
		if d.Variant.SourceHash != other.Variant.SourceHash {
			return false
		}
		return stringSlicesEqual(d.Variant.Features, other.Variant.Features)
	case VariantDependency:
		return d.Variant.Version == other.Variant.Version && d.Variant.Checksum.Equal(other.Variant.Checksum)
	default:
		return false
	}
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ComputeWorkspaceDigest computes a digest for a workspace member crate:
// regeneration triggers on a Cargo.toml change, any .rs file change, a
// feature-set change, or a toolchain upgrade.
func ComputeWorkspaceDigest(ctx context.Context, workspaceRoot string, features []string) (CrateDigest, error) {
	timer := logging.StartTimer(logging.CategoryCache, "compute_workspace_digest")
	defer timer.Stop()

	rustcHash, err := rustcVersionHash(ctx)
	if err != nil {
		return CrateDigest{}, err
	}

	manifestPath := filepath.Join(workspaceRoot, "Cargo.toml")
	manifestHash, err := hashFile(manifestPath)
	if err != nil {
		return CrateDigest{}, err
	}

	srcDir := filepath.Join(workspaceRoot, "src")
	sourceHash, err := hashDirectory(srcDir)
	if err != nil {
		return CrateDigest{}, err
	}

	sorted := append([]string(nil), features...)
	sort.Strings(sorted)

	return CrateDigest{
		RustcVersionHash: rustcHash,
		Variant: Variant{
			Kind:         VariantWorkspaceMember,
			ManifestHash: manifestHash,
			SourceHash:   sourceHash,
			Features:     sorted,
		},
	}, nil
}

// ComputeDependencyDigest computes a digest for an external dependency
// crate: regeneration triggers only on a version change, a checksum
// mismatch (the lockfile entry changed), or a toolchain upgrade.
func ComputeDependencyDigest(ctx context.Context, version string, checksum Hash) (CrateDigest, error) {
	rustcHash, err := rustcVersionHash(ctx)
	if err != nil {
		return CrateDigest{}, err
	}

	return CrateDigest{
		RustcVersionHash: rustcHash,
		Variant: Variant{
			Kind:     VariantDependency,
			Version:  version,
			Checksum: checksum,
		},
	}, nil
}

// rustcVersionHash hashes `rustc -vV`'s output so every digest is
// invalidated together on a toolchain upgrade.
func rustcVersionHash(ctx context.Context) (uint64, error) {
	out, err := exec.CommandContext(ctx, "rustc", "-vV").Output()
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(out), nil
}

// hashFile hashes a single file's contents.
func hashFile(path string) (uint64, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(content), nil
}

// hashDirectory recursively hashes every .rs file under dir in sorted
// relative-path order, so the digest is stable across moves and rebuilds
// but sensitive to any source edit.
func hashDirectory(dir string) (uint64, error) {
	var relPaths []string
	if err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".rs") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		relPaths = append(relPaths, rel)
		return nil
	}); err != nil {
		return 0, err
	}

	sort.Strings(relPaths)

	digest := xxhash.New()
	for _, rel := range relPaths {
		digest.WriteString(rel)
		content, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			continue
		}
		digest.Write(content)
	}
	return digest.Sum64(), nil
}
