package search

import (
	"fmt"
	"io/fs"
	"os"
)

// EntryKind identifies the kind of a classified filesystem entry.
// Classification is total and mutually exclusive: every entry maps to
// exactly one kind.
type EntryKind int

const (
	// KindDirectory is a directory. Checked first: a directory is never
	// reported as executable even though traversable directories carry
	// the execute bit.
	KindDirectory EntryKind = iota

	// KindRegularFile is a regular file without the execute bit.
	KindRegularFile

	// KindSymlink is a symbolic link whose target is not executable.
	KindSymlink

	// KindExecutable is any non-directory with an execute bit set for
	// owner, group, or other. It overrides both KindRegularFile and
	// KindSymlink.
	KindExecutable
)

// String returns the CLI name of the kind (the values accepted by --type).
func (k EntryKind) String() string {
	switch k {
	case KindDirectory:
		return "dir"
	case KindRegularFile:
		return "file"
	case KindSymlink:
		return "link"
	case KindExecutable:
		return "exec"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// ParseKind converts a --type flag value to an EntryKind.
func ParseKind(s string) (EntryKind, error) {
	switch s {
	case "dir":
		return KindDirectory, nil
	case "file":
		return KindRegularFile, nil
	case "link":
		return KindSymlink, nil
	case "exec":
		return KindExecutable, nil
	default:
		return 0, fmt.Errorf("unknown entry type %q, must be one of: dir, file, link, exec", s)
	}
}

// Entry is one classified filesystem object. Entries are values: built
// fresh for every child the walker enumerates and never retained after
// the visitor returns.
type Entry struct {
	// Kind is the classified kind per the precedence rules in Classify.
	Kind EntryKind

	// Name is the base name of the entry.
	Name string

	// Path is the entry's path joined from the walk root. It is not
	// canonicalized; it reads the way the user spelled the start directory.
	Path string
}

// Classify builds an Entry for a single directory child.
//
// Type bits come from the enumeration entry itself (lstat semantics, so a
// symlink to a directory is a symlink and is not descended into).
// Permission bits come from os.Stat, which follows symlinks: the lstat mode
// of a symlink is meaningless for the execute check.
//
// Precedence: directory wins over everything; among non-directories an
// execute bit (owner, group, or other) forces KindExecutable over both
// regular files and symlinks.
func Classify(path string, d fs.DirEntry) (Entry, error) {
	entry := Entry{Name: d.Name(), Path: path}

	if d.IsDir() {
		entry.Kind = KindDirectory
		return entry, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, &ClassifyError{Path: path, Err: err}
	}

	// The execute bit on a directory target means traversable, not
	// executable, so a symlink to a directory stays a symlink.
	switch {
	case !info.IsDir() && info.Mode().Perm()&0o111 != 0:
		entry.Kind = KindExecutable
	case d.Type()&fs.ModeSymlink != 0:
		entry.Kind = KindSymlink
	default:
		entry.Kind = KindRegularFile
	}

	return entry, nil
}
