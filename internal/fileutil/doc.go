// Package fileutil expands command-line path arguments into the list of files
// a run processes.
//
// File arguments are kept in the order given. Directory arguments are walked
// recursively and replaced by their regular files in sorted order, so output is
// deterministic across runs and platforms.
//
// # Filtering
//
//   - Hidden directories (starting with ".") below an argument are skipped
//   - ExcludeDirs names further directories to skip (e.g., "node_modules")
//   - Extensions restricts directory results, case-insensitively, with or without the dot
//   - Ignore holds doublestar patterns matched against the slash path relative to
//     the argument and against the base name ("**/*.min.js", "*.lock")
//
// # Errors
//
// An invalid ignore pattern is fatal. Everything else is tolerated: a missing
// argument stays in Files so the runner reports it as a read error, and walk
// errors such as an unreadable subdirectory are collected in ScanResult.Errors.
//
//	result, err := fileutil.Expand([]string{"cmd", "README.md"}, fileutil.ScanOptions{
//	    Extensions:  []string{".go", ".md"},
//	    ExcludeDirs: []string{"vendor"},
//	    Ignore:      []string{"**/testdata/**"},
//	})
package fileutil
