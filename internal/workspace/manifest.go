package workspace

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"rustdocmcp/internal/digest"
)

var crateNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
var versionRe = regexp.MustCompile(`^\d+(\.\d+){0,2}`)

// ValidateCrateName rejects anything that isn't a plausible Cargo crate
// name. Required before a crate name is ever interpolated into a shelled-out
// `cargo rustdoc` command (see GenerateDocs): without this, a crate name
// containing shell metacharacters would be a command-injection vector.
func ValidateCrateName(name string) error {
	if !crateNameRe.MatchString(name) {
		return fmt.Errorf("invalid crate name: %q", name)
	}
	return nil
}

// ValidateVersion rejects anything that doesn't start with a plausible
// semver-ish version number, for the same reason as ValidateCrateName.
func ValidateVersion(version string) error {
	if !versionRe.MatchString(version) {
		return fmt.Errorf("invalid version: %q", version)
	}
	return nil
}

type manifestPackage struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
}

type manifestWorkspace struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

type manifest struct {
	Package         *manifestPackage       `toml:"package"`
	Workspace       *manifestWorkspace     `toml:"workspace"`
	Dependencies    map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies map[string]toml.Primitive `toml:"dev-dependencies"`
	BuildDependencies map[string]toml.Primitive `toml:"build-dependencies"`
}

func loadManifest(path string) (*manifest, *toml.MetaData, error) {
	var m manifest
	md, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &m, &md, nil
}

// depSpec is the normalized shape of a [dependencies] entry, whether it was
// written as a bare version string or a table with version/path/features.
type depSpec struct {
	Version string
	Path    string
	IsPath  bool
}

func decodeDep(md *toml.MetaData, prim toml.Primitive) depSpec {
	var asString string
	if err := md.PrimitiveDecode(prim, &asString); err == nil {
		return depSpec{Version: asString}
	}
	var asTable struct {
		Version string `toml:"version"`
		Path    string `toml:"path"`
	}
	if err := md.PrimitiveDecode(prim, &asTable); err == nil {
		return depSpec{Version: asTable.Version, Path: asTable.Path, IsPath: asTable.Path != ""}
	}
	return depSpec{}
}

// extractDependencies lists the names of every [dependencies]/
// [dev-dependencies]/[build-dependencies] entry in a manifest, deduplicated
// and sorted.
func extractDependencies(manifestPath string) ([]string, error) {
	m, _, err := loadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for name := range m.Dependencies {
		set[name] = struct{}{}
	}
	for name := range m.DevDependencies {
		set[name] = struct{}{}
	}
	for name := range m.BuildDependencies {
		set[name] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// expandMembers resolves a [workspace] members/exclude glob list (Cargo
// supports globs like "crates/*") against the filesystem, returning
// directories that actually contain a Cargo.toml.
func expandMembers(root string, patterns, exclude []string) []string {
	excluded := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		excluded[filepath.Clean(filepath.Join(root, e))] = struct{}{}
	}

	var dirs []string
	seen := make(map[string]struct{})
	for _, pat := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pat))
		if err != nil {
			continue
		}
		for _, m := range matches {
			clean := filepath.Clean(m)
			if _, skip := excluded[clean]; skip {
				continue
			}
			if _, err := os.Stat(filepath.Join(clean, "Cargo.toml")); err != nil {
				continue
			}
			if _, dup := seen[clean]; dup {
				continue
			}
			seen[clean] = struct{}{}
			dirs = append(dirs, clean)
		}
	}
	sort.Strings(dirs)
	return dirs
}

func getRustcVersion(ctx context.Context) (string, bool) {
	out, err := exec.CommandContext(ctx, "rustc", "--version").Output()
	if err != nil {
		return "", false
	}
	fields := strings.Fields(string(out))
	if len(fields) < 2 {
		return "", false
	}
	return fields[1], true
}

var stdlibPseudoCrates = []string{"std", "core", "alloc", "proc_macro", "test"}

// BuildContext resolves a Cargo workspace (or standalone crate) rooted at
// root, reading Cargo.toml directly rather than shelling out to `cargo
// metadata`. Dependency versions come from Cargo.lock when present
// (ParseLockfile); without a lockfile, dependencies are recorded with
// their manifest version requirement string rather than a resolved version.
func BuildContext(ctx context.Context, root string) (*Context, error) {
	rootManifestPath := filepath.Join(root, "Cargo.toml")
	rootManifest, rootMeta, err := loadManifest(rootManifestPath)
	if err != nil {
		return nil, err
	}

	var memberDirs []string
	if rootManifest.Workspace != nil {
		memberDirs = expandMembers(root, rootManifest.Workspace.Members, rootManifest.Workspace.Exclude)
	}
	if len(memberDirs) == 0 {
		memberDirs = []string{root}
	}

	type memberInfo struct {
		name string
		dir  string
		pkg  *manifestPackage
		deps map[string]depSpec
		dev  map[string]bool
	}
	var members []memberInfo
	memberNames := make(map[string]struct{})

	for _, dir := range memberDirs {
		var m *manifest
		var md *toml.MetaData
		var derr error
		if dir == root {
			m, md, derr = rootManifest, rootMeta, nil
		} else {
			m, md, derr = loadManifest(filepath.Join(dir, "Cargo.toml"))
		}
		if derr != nil || m.Package == nil {
			continue
		}
		deps := make(map[string]depSpec)
		dev := make(map[string]bool)
		for name, prim := range m.Dependencies {
			deps[name] = decodeDep(md, prim)
		}
		for name, prim := range m.DevDependencies {
			deps[name] = decodeDep(md, prim)
			dev[name] = true
		}
		for name, prim := range m.BuildDependencies {
			if _, exists := deps[name]; !exists {
				deps[name] = decodeDep(md, prim)
			}
		}
		members = append(members, memberInfo{name: m.Package.Name, dir: dir, pkg: m.Package, deps: deps, dev: dev})
		memberNames[m.Package.Name] = struct{}{}
	}

	isMultiMember := len(members) > 1
	lockEntries, _ := ParseLockfile(filepath.Join(root, "Cargo.lock"))

	crateInfo := make(map[string]CrateMetadata)
	memberList := make([]string, 0, len(members))
	var rootCrateName string

	// Step 1: every workspace member, local origin.
	for _, m := range members {
		memberList = append(memberList, m.name)
		crateInfo[m.name] = CrateMetadata{
			Name:        m.name,
			Origin:      OriginLocal,
			Version:     m.pkg.Version,
			Description: m.pkg.Description,
			IsRootCrate: !isMultiMember,
			Dir:         m.dir,
		}
		if rootManifest.Package != nil && m.name == rootManifest.Package.Name {
			rootCrateName = m.name
		}
	}

	// Step 2: accumulate external dependency usage across every member,
	// skipping path deps and intra-workspace deps.
	depUsage := make(map[string][]string)
	depDev := make(map[string]bool)
	depVersionReq := make(map[string]string)
	for _, m := range members {
		for name, spec := range m.deps {
			if spec.IsPath {
				continue
			}
			if _, isMember := memberNames[name]; isMember {
				continue
			}
			depUsage[name] = append(depUsage[name], m.name)
			if m.dev[name] {
				depDev[name] = true
			}
			depVersionReq[name] = spec.Version
		}
	}

	// Step 3: materialize each accumulated dependency.
	for name, usedBy := range depUsage {
		sort.Strings(usedBy)
		version := depVersionReq[name]
		var checksum digest.Hash
		if resolved, ok := lockEntries[name]; ok {
			version = resolved.Version
			checksum = resolved.Checksum
		}
		crateInfo[name] = CrateMetadata{
			Name:     name,
			Origin:   OriginExternal,
			Version:  version,
			DevDep:   depDev[name],
			UsedBy:   usedBy,
			Checksum: checksum,
		}
	}

	// Step 4: standard-library pseudo-crates, omitted entirely if rustc
	// isn't on PATH rather than surfaced as an error.
	if rustcVersion, ok := getRustcVersion(ctx); ok {
		for _, name := range stdlibPseudoCrates {
			crateInfo[name] = CrateMetadata{Name: name, Origin: OriginStandard, Version: rustcVersion}
		}
	}

	sort.Strings(memberList)
	return &Context{Root: root, Members: memberList, CrateInfo: crateInfo, RootCrate: rootCrateName}, nil
}
