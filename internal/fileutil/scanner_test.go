package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree creates files (slash paths) under root with fixed content
func writeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("test content\n"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

func relNames(t *testing.T, root string, paths []string) []string {
	t.Helper()
	names := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatalf("Rel(%s) error = %v", p, err)
		}
		names[i] = filepath.ToSlash(rel)
	}
	return names
}

func equalStrings(a, b []string) bool {
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

func TestScanDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	// tmpDir/
	//   Setup.MD
	//   app.min.js
	//   file1.md
	//   main.go
	//   notes.txt
	//   sub/
	//     nested.go
	//     deep/
	//       deep.md
	//   .hidden/
	//     hidden.md
	//   node_modules/
	//     package.json
	//   testdata/
	//     fixture.go
	writeTree(t, tmpDir, []string{
		"Setup.MD",
		"app.min.js",
		"file1.md",
		"main.go",
		"notes.txt",
		"sub/nested.go",
		"sub/deep/deep.md",
		".hidden/hidden.md",
		"node_modules/package.json",
		"testdata/fixture.go",
	})

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{
			name: "all files, hidden dirs skipped",
			opts: ScanOptions{},
			want: []string{
				"Setup.MD", "app.min.js", "file1.md", "main.go", "node_modules/package.json",
				"notes.txt", "sub/deep/deep.md", "sub/nested.go", "testdata/fixture.go",
			},
		},
		{
			name: "exclude node_modules",
			opts: ScanOptions{ExcludeDirs: []string{"node_modules"}},
			want: []string{
				"Setup.MD", "app.min.js", "file1.md", "main.go",
				"notes.txt", "sub/deep/deep.md", "sub/nested.go", "testdata/fixture.go",
			},
		},
		{
			name: "exclude matches nested directory names",
			opts: ScanOptions{ExcludeDirs: []string{"deep", "node_modules", "testdata"}},
			want: []string{"Setup.MD", "app.min.js", "file1.md", "main.go", "notes.txt", "sub/nested.go"},
		},
		{
			name: "case-insensitive extension filter",
			opts: ScanOptions{Extensions: []string{".md"}},
			want: []string{"Setup.MD", "file1.md", "sub/deep/deep.md"},
		},
		{
			name: "extension without dot prefix",
			opts: ScanOptions{Extensions: []string{"go", "txt"}},
			want: []string{"main.go", "notes.txt", "sub/nested.go", "testdata/fixture.go"},
		},
		{
			name: "ignore by base name",
			opts: ScanOptions{Ignore: []string{"*.min.js", "*.txt"}, ExcludeDirs: []string{"node_modules"}},
			want: []string{"Setup.MD", "file1.md", "main.go", "sub/deep/deep.md", "sub/nested.go", "testdata/fixture.go"},
		},
		{
			name: "ignore by relative path glob",
			opts: ScanOptions{Ignore: []string{"testdata/**", "sub/**/*.md"}, Extensions: []string{".go", ".md"}},
			want: []string{"Setup.MD", "file1.md", "main.go", "sub/nested.go"},
		},
		{
			name: "no matches",
			opts: ScanOptions{Extensions: []string{".rs"}},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanDirectory(tmpDir, tt.opts)
			if err != nil {
				t.Fatalf("ScanDirectory() error = %v", err)
			}
			if len(result.Errors) != 0 {
				t.Errorf("ScanDirectory() errors = %v, want none", result.Errors)
			}

			got := relNames(t, tmpDir, result.Files)
			if !equalStrings(got, tt.want) {
				t.Errorf("ScanDirectory() files = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanDirectory_SortedOutput(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"zebra.md", "apple.md", "mango.md", "banana.md"})

	result, err := ScanDirectory(tmpDir, ScanOptions{})
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}

	want := []string{"apple.md", "banana.md", "mango.md", "zebra.md"}
	if got := relNames(t, tmpDir, result.Files); !equalStrings(got, want) {
		t.Errorf("ScanDirectory() files = %v, want %v", got, want)
	}
}

func TestScanDirectory_SkipsSymlinks(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"real.txt"})
	if err := os.Symlink(filepath.Join(tmpDir, "real.txt"), filepath.Join(tmpDir, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	result, err := ScanDirectory(tmpDir, ScanOptions{})
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	if got := relNames(t, tmpDir, result.Files); !equalStrings(got, []string{"real.txt"}) {
		t.Errorf("ScanDirectory() files = %v, want [real.txt]", got)
	}
}

func TestScanDirectory_Errors(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func() (string, ScanOptions)
		wantErr   string
	}{
		{
			name: "non-existent directory",
			setupFunc: func() (string, ScanOptions) {
				return "/nonexistent/directory/path", ScanOptions{}
			},
			wantErr: "failed to access directory",
		},
		{
			name: "path is a file not directory",
			setupFunc: func() (string, ScanOptions) {
				tmpDir := t.TempDir()
				filePath := filepath.Join(tmpDir, "file.txt")
				if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
					t.Fatalf("failed to create file: %v", err)
				}
				return filePath, ScanOptions{}
			},
			wantErr: "path is not a directory",
		},
		{
			name: "invalid ignore pattern",
			setupFunc: func() (string, ScanOptions) {
				return t.TempDir(), ScanOptions{Ignore: []string{"[unclosed"}}
			},
			wantErr: "invalid ignore pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, opts := tt.setupFunc()
			result, err := ScanDirectory(dir, opts)

			if err == nil {
				t.Fatalf("ScanDirectory() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ScanDirectory() error = %v, want error containing %q", err, tt.wantErr)
			}
			if result != nil {
				t.Errorf("ScanDirectory() expected nil result on error, got %+v", result)
			}
		})
	}
}

func TestExpand_KeepsArgumentOrder(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"b.txt", "a.txt", "dir/y.txt", "dir/x.txt"})

	args := []string{
		filepath.Join(tmpDir, "b.txt"),
		filepath.Join(tmpDir, "dir"),
		filepath.Join(tmpDir, "a.txt"),
	}
	result, err := Expand(args, ScanOptions{})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	want := []string{"b.txt", "dir/x.txt", "dir/y.txt", "a.txt"}
	if got := relNames(t, tmpDir, result.Files); !equalStrings(got, want) {
		t.Errorf("Expand() files = %v, want %v", got, want)
	}
}

func TestExpand_Deduplicates(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"dir/x.txt", "dir/y.txt"})

	x := filepath.Join(tmpDir, "dir", "x.txt")
	args := []string{x, filepath.Join(tmpDir, "dir"), x}
	result, err := Expand(args, ScanOptions{})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	want := []string{"dir/x.txt", "dir/y.txt"}
	if got := relNames(t, tmpDir, result.Files); !equalStrings(got, want) {
		t.Errorf("Expand() files = %v, want %v", got, want)
	}
}

func TestExpand_MissingArgumentIsKept(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"ok.txt"})

	missing := filepath.Join(tmpDir, "missing.txt")
	ok := filepath.Join(tmpDir, "ok.txt")
	result, err := Expand([]string{missing, ok}, ScanOptions{})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	if !equalStrings(result.Files, []string{missing, ok}) {
		t.Errorf("Expand() files = %v, want [%s %s]", result.Files, missing, ok)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Expand() errors = %v, want none", result.Errors)
	}
}

func TestExpand_ExplicitFileBypassesExtensionFilter(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"Makefile", "main.go"})

	makefile := filepath.Join(tmpDir, "Makefile")
	result, err := Expand([]string{makefile, tmpDir}, ScanOptions{Extensions: []string{".go"}})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	want := []string{"Makefile", "main.go"}
	if got := relNames(t, tmpDir, result.Files); !equalStrings(got, want) {
		t.Errorf("Expand() files = %v, want %v", got, want)
	}
}

func TestExpand_IgnoreAppliesToExplicitFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"go.sum", "main.go"})

	args := []string{filepath.Join(tmpDir, "go.sum"), filepath.Join(tmpDir, "main.go")}
	result, err := Expand(args, ScanOptions{Ignore: []string{"go.sum"}})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	if got := relNames(t, tmpDir, result.Files); !equalStrings(got, []string{"main.go"}) {
		t.Errorf("Expand() files = %v, want [main.go]", got)
	}
}

func TestExpand_InvalidIgnorePattern(t *testing.T) {
	if _, err := Expand([]string{"."}, ScanOptions{Ignore: []string{"a[b"}}); err == nil {
		t.Error("Expand() expected error for invalid ignore pattern")
	}
}

func TestExpand_NoArguments(t *testing.T) {
	result, err := Expand(nil, ScanOptions{})
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(result.Files) != 0 || len(result.Errors) != 0 {
		t.Errorf("Expand(nil) = %+v, want empty", result)
	}
}
