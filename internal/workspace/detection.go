package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var unixSystemDirs = []string{
	"/usr", "/etc", "/var", "/opt", "/srv", "/bin", "/sbin",
	"/lib", "/lib64", "/boot", "/dev", "/proc", "/sys", "/run",
}

var windowsSystemMarkers = []string{
	`:\windows`, `:\program files`, `:\program files (x86)`, `:\programdata`, `:\$`,
}

// isSystemDirectory reports whether path looks like an OS-owned directory
// a workspace search should never walk into or stop within.
func isSystemDirectory(path string) bool {
	lower := strings.ToLower(filepath.ToSlash(path))
	for _, d := range unixSystemDirs {
		if lower == d || strings.HasPrefix(lower, d+"/") {
			return true
		}
	}
	for _, m := range windowsSystemMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func isAtSystemRoot(path string) bool {
	return filepath.Dir(path) == path
}

// isBoundaryDirectory reports whether walking upward should stop at path.
func isBoundaryDirectory(path string) bool {
	return isAtSystemRoot(path) || isSystemDirectory(path)
}

// findGitRoot walks upward from start looking for a .git entry (directory
// or file, the latter covering submodules/worktrees), returning the first
// containing directory found.
func findGitRoot(start string) (string, bool) {
	current := start
	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// findCargoTomlWithConstraints walks upward from start for the nearest
// Cargo.toml, bounded by the enclosing git repository if there is one
// (otherwise by a depth limit of 2), and never crossing a system boundary.
func findCargoTomlWithConstraints(start string) (string, bool) {
	gitRoot, hasGit := findGitRoot(start)
	maxDepth := -1
	if !hasGit {
		maxDepth = 2
	}

	current := start
	depth := 0
	for {
		if isBoundaryDirectory(current) {
			return "", false
		}
		if _, err := os.Stat(filepath.Join(current, "Cargo.toml")); err == nil {
			return current, true
		}
		if hasGit && current == gitRoot {
			return "", false
		}
		if !hasGit && maxDepth >= 0 && depth >= maxDepth {
			return "", false
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
		depth++
	}
}

// hasWorkspaceSection reports whether a Cargo.toml declares a [workspace]
// table. Returns (false, false) if the file can't be read or parsed.
func hasWorkspaceSection(cargoTomlPath string) (bool, bool) {
	raw, err := os.ReadFile(cargoTomlPath)
	if err != nil {
		return false, false
	}
	var probe map[string]toml.Primitive
	if _, err := toml.Decode(string(raw), &probe); err != nil {
		return false, false
	}
	_, ok := probe["workspace"]
	return ok, true
}

// findWorkspaceRoot walks upward from start for the nearest Cargo.toml
// that declares [workspace] directly, or else the last valid
// (non-workspace) manifest found before hitting a boundary - i.e. prefers
// an explicit workspace root, but falls back to the topmost standalone
// crate manifest found along the way.
func findWorkspaceRoot(start string) (string, bool) {
	current := start
	lastValid := ""

	for {
		if isBoundaryDirectory(current) {
			break
		}
		manifestPath := filepath.Join(current, "Cargo.toml")
		if _, err := os.Stat(manifestPath); err == nil {
			if isWorkspace, ok := hasWorkspaceSection(manifestPath); ok && isWorkspace {
				return current, true
			}
			lastValid = current
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	if lastValid != "" {
		return lastValid, true
	}
	if _, err := os.Stat(filepath.Join(start, "Cargo.toml")); err == nil {
		return start, true
	}
	return "", false
}

// AutoDetectWorkspace looks for a Cargo workspace starting from the
// current working directory, for use on server startup before any
// explicit set_workspace call.
func AutoDetectWorkspace(ctx context.Context) (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	cargoDir, ok := findCargoTomlWithConstraints(cwd)
	if !ok {
		return "", false
	}
	root, ok := findWorkspaceRoot(filepath.Dir(cargoDir))
	if !ok {
		root, ok = findWorkspaceRoot(cargoDir)
		if !ok {
			return "", false
		}
	}
	canonical, err := filepath.Abs(root)
	if err != nil {
		return root, true
	}
	return canonical, true
}

// ExpandTilde expands a leading "~" or "~/" to the user's home directory.
func ExpandTilde(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return path
}
