package search

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ModeOp discriminates the active matching strategy. The set is closed:
// Matches is an exhaustive switch, not a plugin registry.
type ModeOp int

const (
	// ByName matches entries whose base name equals the target exactly.
	ByName ModeOp = iota

	// ByKind matches entries of exactly one EntryKind.
	ByKind

	// ByNameAndKind is the conjunction of ByName and ByKind.
	ByNameAndKind

	// ByExtension matches entries whose extension (the substring after
	// the last dot in the base name) equals one of the configured
	// extensions. An entry without an extension never matches.
	ByExtension

	// ByRegex matches entries whose full path contains a match of the
	// pattern. Anchoring is the caller's business; an unanchored pattern
	// is a substring-style test.
	ByRegex
)

// Mode is the resolved matching strategy plus its payload. Only the fields
// relevant to Op are populated. A Mode is built once by ResolveMode before
// the walk starts and never mutated.
type Mode struct {
	Op         ModeOp
	Target     string
	Kind       EntryKind
	Extensions map[string]struct{}
	Pattern    *regexp.Regexp
}

// Matches reports whether entry satisfies the active strategy.
func (m Mode) Matches(entry Entry) bool {
	switch m.Op {
	case ByName:
		return entry.Name == m.Target
	case ByKind:
		return entry.Kind == m.Kind
	case ByNameAndKind:
		return entry.Name == m.Target && entry.Kind == m.Kind
	case ByExtension:
		ext, ok := extensionOf(entry.Name)
		if !ok {
			return false
		}
		_, found := m.Extensions[ext]
		return found
	case ByRegex:
		return m.Pattern.MatchString(entry.Path)
	default:
		return false
	}
}

// Describe returns a short human-readable summary of the mode, used in the
// run summary and the history records.
func (m Mode) Describe() string {
	switch m.Op {
	case ByName:
		return fmt.Sprintf("name=%s", m.Target)
	case ByKind:
		return fmt.Sprintf("type=%s", m.Kind)
	case ByNameAndKind:
		return fmt.Sprintf("name=%s type=%s", m.Target, m.Kind)
	case ByExtension:
		exts := make([]string, 0, len(m.Extensions))
		for ext := range m.Extensions {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		return fmt.Sprintf("extension=%s", strings.Join(exts, ","))
	case ByRegex:
		return fmt.Sprintf("regex=%s", m.Pattern.String())
	default:
		return "unknown"
	}
}

// extensionOf extracts the extension after the last dot of a base name.
// Names with no dot, or nothing after the last dot, have no extension.
func extensionOf(name string) (string, bool) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return "", false
	}
	return name[idx+1:], true
}

// ResolveMode determines the single active strategy from the raw CLI
// inputs. Extension and regex take precedence over plain name/kind but are
// mutually exclusive alternates; supplying both is rejected as ambiguous.
// Supplying none of target, kind, extensions, or pattern leaves the mode
// undetermined and is rejected before any traversal starts.
func ResolveMode(target, kindName string, extensions []string, pattern string) (Mode, error) {
	if pattern != "" && len(extensions) > 0 {
		return Mode{}, &ConfigError{Reason: "cannot combine --regex with --extension"}
	}

	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Mode{}, &ConfigError{Reason: fmt.Sprintf("invalid regex %q", pattern), Err: err}
		}
		return Mode{Op: ByRegex, Pattern: re}, nil
	}

	if len(extensions) > 0 {
		exts := make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			exts[strings.TrimPrefix(ext, ".")] = struct{}{}
		}
		return Mode{Op: ByExtension, Extensions: exts}, nil
	}

	var kind EntryKind
	haveKind := kindName != ""
	if haveKind {
		parsed, err := ParseKind(kindName)
		if err != nil {
			return Mode{}, &ConfigError{Reason: "invalid --type", Err: err}
		}
		kind = parsed
	}

	switch {
	case target != "" && haveKind:
		return Mode{Op: ByNameAndKind, Target: target, Kind: kind}, nil
	case target != "":
		return Mode{Op: ByName, Target: target}, nil
	case haveKind:
		return Mode{Op: ByKind, Kind: kind}, nil
	default:
		return Mode{}, &ConfigError{Reason: "nothing to search for: supply a target name, --type, --extension, or --regex"}
	}
}
