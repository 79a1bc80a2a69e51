package search

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Visitor is invoked once for every non-pruned entry the walker reaches,
// in pre-order (a directory before any of its descendants). Returning an
// error aborts the walk.
type Visitor func(Entry) error

// Walk recursively enumerates dir and invokes visit for every entry that
// survives exclusion pruning and the depth bound.
//
// Children are reported in filesystem enumeration order, not sorted:
// matches stream out as they are discovered.
//
// exclude entries are canonicalized once up front; each child is then
// canonicalized before visiting and skipped entirely (neither visited nor
// descended into) when it is equal to or nested under any exclusion.
//
// remaining bounds the recursion depth: children of dir are at depth 1,
// and enumeration stops once remaining is exhausted. Callers wanting an
// unbounded walk pass UnboundedDepth.
//
// Any failure — enumerating a directory, classifying a child, resolving a
// canonical path — aborts the whole walk. A partial listing that silently
// omits unreadable subtrees cannot be trusted, so the walker is fail-fast.
func Walk(dir string, exclude []string, remaining int, visit Visitor) error {
	canonExclude := make([]string, 0, len(exclude))
	for _, ex := range exclude {
		canon, err := canonicalPath(ex)
		if err != nil {
			return &WalkError{Path: ex, Op: "resolve exclusion", Err: err}
		}
		canonExclude = append(canonExclude, canon)
	}
	return walk(dir, canonExclude, remaining, visit)
}

// UnboundedDepth disables the depth bound. Decrementing it per level never
// exhausts it on any real tree.
const UnboundedDepth = int(^uint(0) >> 1)

func walk(dir string, exclude []string, remaining int, visit Visitor) error {
	if remaining <= 0 {
		return nil
	}

	children, err := readDirUnsorted(dir)
	if err != nil {
		return &WalkError{Path: dir, Op: "read directory", Err: err}
	}

	for _, child := range children {
		path := filepath.Join(dir, child.Name())

		if len(exclude) > 0 {
			canon, err := canonicalPath(path)
			if err != nil {
				return &WalkError{Path: path, Op: "resolve path", Err: err}
			}
			if excluded(canon, exclude) {
				continue
			}
		}

		entry, err := Classify(path, child)
		if err != nil {
			return err
		}

		if err := visit(entry); err != nil {
			return err
		}

		if entry.Kind == KindDirectory {
			if err := walk(path, exclude, remaining-1, visit); err != nil {
				return err
			}
		}
	}

	return nil
}

// readDirUnsorted enumerates dir in the order the filesystem returns
// entries. os.ReadDir sorts by name, which would hide the natural
// discovery order, so the directory handle is read directly. The handle is
// closed before any recursion happens to keep open-handle count flat on
// deep trees.
func readDirUnsorted(dir string) ([]fs.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadDir(-1)
}

// canonicalPath resolves a path to its absolute, symlink-free form for
// exclusion comparison.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// excluded reports whether canon equals or sits under any exclusion. All
// paths are canonical, so plain lexical containment is sound.
func excluded(canon string, exclude []string) bool {
	for _, ex := range exclude {
		if canon == ex || strings.HasPrefix(canon, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
