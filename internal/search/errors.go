package search

import "fmt"

// ConfigError reports an invalid or ambiguous search configuration. It is
// surfaced before any traversal begins; no partial work is attempted.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid search configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid search configuration: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ClassifyError reports that an entry's type or permission metadata could
// not be read. It aborts the walk rather than being downgraded to a skip,
// since a skipped entry would silently hide results from the user.
type ClassifyError struct {
	Path string
	Err  error
}

func (e *ClassifyError) Error() string {
	return fmt.Sprintf("classify %s: %v", e.Path, e.Err)
}

func (e *ClassifyError) Unwrap() error { return e.Err }

// WalkError reports a traversal failure: a directory that could not be
// enumerated or a path that could not be canonicalized for exclusion
// matching. Any WalkError is fatal to the whole walk; there are no
// partial-results-then-continue semantics.
type WalkError struct {
	Path string
	Op   string
	Err  error
}

func (e *WalkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WalkError) Unwrap() error { return e.Err }
