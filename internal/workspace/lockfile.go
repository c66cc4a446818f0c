package workspace

import (
	"os"

	"github.com/BurntSushi/toml"
	"rustdocmcp/internal/digest"
)

// lockEntry mirrors one [[package]] table in a Cargo.lock.
type lockEntry struct {
	Name     string `toml:"name"`
	Version  string `toml:"version"`
	Checksum string `toml:"checksum"`
}

type lockfile struct {
	Package []lockEntry `toml:"package"`
}

// LockfileEntry is the resolved version/checksum a Cargo.lock records for a
// dependency. Checksum is absent (zero Hash) for path/git dependencies,
// which Cargo.lock records without one.
type LockfileEntry struct {
	Version  string
	Checksum digest.Hash
}

// ParseLockfile reads a Cargo.lock and returns every locked package, keyed
// by crate name. A crate that appears more than once (multiple resolved
// versions in the dependency graph) keeps whichever entry was read last;
// GetDocs callers care about "the version this workspace actually builds
// with", which for a workspace member's own direct dependency is unambiguous.
func ParseLockfile(path string) (map[string]LockfileEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lf lockfile
	if _, err := toml.Decode(string(raw), &lf); err != nil {
		return nil, err
	}
	out := make(map[string]LockfileEntry, len(lf.Package))
	for _, pkg := range lf.Package {
		entry := LockfileEntry{Version: pkg.Version}
		if pkg.Checksum != "" {
			if h, err := digest.ParseHash(pkg.Checksum); err == nil {
				entry.Checksum = h
			}
		}
		out[pkg.Name] = entry
	}
	return out, nil
}

// CollectLockVersions is a convenience wrapper returning just the resolved
// version string per crate name, for manifest dependency-version resolution.
func CollectLockVersions(path string) (map[string]string, error) {
	entries, err := ParseLockfile(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for name, e := range entries {
		out[name] = e.Version
	}
	return out, nil
}
