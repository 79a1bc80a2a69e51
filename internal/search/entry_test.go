package search

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// readEntry locates the named child of dir via directory enumeration so
// classification sees the same fs.DirEntry the walker would.
func readEntry(t *testing.T, dir, name string) os.DirEntry {
	t.Helper()
	children, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s) error = %v", dir, err)
	}
	for _, child := range children {
		if child.Name() == name {
			return child
		}
	}
	t.Fatalf("entry %q not found in %s", name, dir)
	return nil
}

func TestClassify(t *testing.T) {
	tmpDir := t.TempDir()

	// Fixture tree:
	//   plain.txt        regular file, 0644
	//   tool.sh          regular file, 0755
	//   subdir/          directory (execute bit set, as usual)
	//   link-plain       symlink -> plain.txt
	//   link-tool        symlink -> tool.sh
	//   link-subdir      symlink -> subdir
	if err := os.WriteFile(filepath.Join(tmpDir, "plain.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("create plain.txt: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "tool.sh"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("create tool.sh: %v", err)
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "subdir"), 0o755); err != nil {
		t.Fatalf("create subdir: %v", err)
	}
	links := map[string]string{
		"link-plain":  "plain.txt",
		"link-tool":   "tool.sh",
		"link-subdir": "subdir",
	}
	for link, target := range links {
		if err := os.Symlink(filepath.Join(tmpDir, target), filepath.Join(tmpDir, link)); err != nil {
			t.Fatalf("create symlink %s: %v", link, err)
		}
	}

	tests := []struct {
		name     string
		wantKind EntryKind
	}{
		{"plain.txt", KindRegularFile},
		{"tool.sh", KindExecutable},
		{"subdir", KindDirectory},
		{"link-plain", KindSymlink},
		// Execute bit on the target wins over the symlink distinction.
		{"link-tool", KindExecutable},
		// Execute bit on a directory target means traversable, so the
		// link stays a link.
		{"link-subdir", KindSymlink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := readEntry(t, tmpDir, tt.name)
			path := filepath.Join(tmpDir, tt.name)

			entry, err := Classify(path, d)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if entry.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", entry.Kind, tt.wantKind)
			}
			if entry.Name != tt.name {
				t.Errorf("Name = %q, want %q", entry.Name, tt.name)
			}
			if entry.Path != path {
				t.Errorf("Path = %q, want %q", entry.Path, path)
			}
		})
	}
}

func TestClassifyDirectoryExecuteBitStaysDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "traversable")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}

	entry, err := Classify(dir, readEntry(t, tmpDir, "traversable"))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if entry.Kind != KindDirectory {
		t.Errorf("Kind = %v, want %v", entry.Kind, KindDirectory)
	}
}

func TestClassifyBrokenSymlink(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Symlink(filepath.Join(tmpDir, "gone"), filepath.Join(tmpDir, "dangling")); err != nil {
		t.Fatalf("create symlink: %v", err)
	}

	_, err := Classify(filepath.Join(tmpDir, "dangling"), readEntry(t, tmpDir, "dangling"))
	if err == nil {
		t.Fatal("Classify() error = nil, want ClassifyError")
	}
	var classifyErr *ClassifyError
	if !errors.As(err, &classifyErr) {
		t.Errorf("error type = %T, want *ClassifyError", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    EntryKind
		wantErr bool
	}{
		{"dir", KindDirectory, false},
		{"file", KindRegularFile, false},
		{"link", KindSymlink, false},
		{"exec", KindExecutable, false},
		{"directory", 0, true},
		{"DIR", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseKind(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEntryKindString(t *testing.T) {
	kinds := map[EntryKind]string{
		KindDirectory:   "dir",
		KindRegularFile: "file",
		KindSymlink:     "link",
		KindExecutable:  "exec",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("EntryKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
