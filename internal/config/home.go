package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the per-project wsfix directory holding config.yaml, the run lock
// and the history database.
const DirName = ".wsfix"

// HomeEnv overrides the wsfix home directory.
const HomeEnv = "WSFIX_HOME"

// GetHome returns the wsfix home directory
// Priority order:
//  1. WSFIX_HOME environment variable (if set)
//  2. <project root>/.wsfix, where the project root is the nearest ancestor of the
//     working directory containing .wsfix or .git
//  3. <cwd>/.wsfix (fallback)
//
// The directory is not created; callers that write into it do so.
func GetHome() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return home, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if root, ok := findProjectRoot(cwd); ok {
		return filepath.Join(root, DirName), nil
	}

	return filepath.Join(cwd, DirName), nil
}

// findProjectRoot walks up from start looking for a .wsfix directory or a .git
// entry (directory, or file for worktrees and submodules).
func findProjectRoot(start string) (string, bool) {
	current := start
	for {
		if info, err := os.Stat(filepath.Join(current, DirName)); err == nil && info.IsDir() {
			return current, true
		}
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

// ResolvePath resolves a possibly relative path against the wsfix home.
func ResolvePath(home, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(home, path)
}
