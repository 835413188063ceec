package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Extensions is a list of file extensions to include (e.g., ".go", "md")
	Extensions []string
	// ExcludeDirs is a list of directory names to exclude (e.g., ".git", "node_modules")
	ExcludeDirs []string
	// Ignore holds doublestar patterns for files to skip
	Ignore []string
}

// ScanResult contains the results of a scan
type ScanResult struct {
	// Files contains the paths of all matched files
	Files []string
	// Errors contains any errors encountered during scanning
	Errors []error
}

// matcher holds the compiled form of ScanOptions
type matcher struct {
	extMap     map[string]bool
	excludeMap map[string]bool
	ignore     []string
}

func newMatcher(opts ScanOptions) (*matcher, error) {
	m := &matcher{
		extMap:     make(map[string]bool),
		excludeMap: make(map[string]bool),
		ignore:     opts.Ignore,
	}

	for _, ext := range opts.Extensions {
		// Ensure extensions start with a dot
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m.extMap[strings.ToLower(ext)] = true
	}

	for _, dir := range opts.ExcludeDirs {
		m.excludeMap[dir] = true
	}

	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern: %q", pattern)
		}
	}

	return m, nil
}

// skipDir reports whether a directory below the scan root is pruned
func (m *matcher) skipDir(name string) bool {
	return m.excludeMap[name] || strings.HasPrefix(name, ".")
}

// ignored reports whether rel (slash separated, relative to the scan root)
// matches an ignore pattern, either as a path or by base name
func (m *matcher) ignored(rel string) bool {
	base := filepath.Base(rel)
	for _, pattern := range m.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (m *matcher) hasExtension(name string) bool {
	if len(m.extMap) == 0 {
		return true
	}
	return m.extMap[strings.ToLower(filepath.Ext(name))]
}

// ScanDirectory recursively scans a directory for regular files matching the
// provided options. Returned paths are rooted at dir as given and sorted.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	m, err := newMatcher(opts)
	if err != nil {
		return nil, err
	}
	return m.scan(dir)
}

func (m *matcher) scan(dir string) (*ScanResult, error) {
	// Validate directory exists
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil // Continue walking
		}

		// Skip the root directory itself
		if path == dir {
			return nil
		}

		if d.IsDir() {
			if m.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks, sockets and devices are never rewritten
		if !d.Type().IsRegular() {
			return nil
		}

		if !m.hasExtension(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}
		if m.ignored(filepath.ToSlash(rel)) {
			return nil
		}

		result.Files = append(result.Files, path)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	// Sort files for consistent output
	sort.Strings(result.Files)

	return result, nil
}

// Expand turns command-line path arguments into the ordered list of files to
// process. File arguments keep their position; directory arguments are replaced
// by their sorted scan results. Each file appears once, at its first position.
//
// An argument that cannot be stat'ed stays in the list so the caller's read
// reports it. Walk errors below a directory argument are collected in Errors.
func Expand(args []string, opts ScanOptions) (*ScanResult, error) {
	m, err := newMatcher(opts)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		Files:  make([]string, 0, len(args)),
		Errors: make([]error, 0),
	}
	seen := make(map[string]bool)

	add := func(path string) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		result.Files = append(result.Files, path)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			add(arg)
			continue
		}

		if !info.IsDir() {
			if m.ignored(filepath.ToSlash(filepath.Clean(arg))) {
				continue
			}
			add(arg)
			continue
		}

		scanned, err := m.scan(arg)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.Errors = append(result.Errors, scanned.Errors...)
		for _, f := range scanned.Files {
			add(f)
		}
	}

	return result, nil
}
