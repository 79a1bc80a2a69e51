// Package search implements the traversal-and-matching engine: entry
// classification, the recursive walk with exclusion pruning and a depth
// bound, and the dispatch across the fixed set of matching strategies.
package search

import (
	"fmt"
	"os"
	"time"
)

// Config is the immutable description of one search run. It is assembled
// entirely from CLI input before the walk begins and never mutated.
type Config struct {
	// StartDir is the directory the walk starts from.
	StartDir string

	// Exclude lists subtrees to prune. Paths are compared canonically,
	// so relative paths and symlinked spellings all work.
	Exclude []string

	// MaxDepth bounds recursion depth below StartDir. Zero or negative
	// means unbounded.
	MaxDepth int

	// Mode is the resolved matching strategy.
	Mode Mode
}

// Match is one reported hit.
type Match struct {
	Entry Entry
}

// Stats summarizes a completed (or aborted) run.
type Stats struct {
	Visited int
	Matched int
	Elapsed time.Duration
}

// Run walks cfg.StartDir and calls report for every entry the mode
// matches, streaming matches as they are found. The returned Stats are
// valid even when Run fails partway: they count what happened before the
// abort.
func Run(cfg Config, report func(Match) error) (Stats, error) {
	start := time.Now()
	stats := Stats{}

	info, err := os.Stat(cfg.StartDir)
	if err != nil {
		return stats, &ConfigError{Reason: fmt.Sprintf("cannot access start directory %q", cfg.StartDir), Err: err}
	}
	if !info.IsDir() {
		return stats, &ConfigError{Reason: fmt.Sprintf("start path %q is not a directory", cfg.StartDir)}
	}

	depth := cfg.MaxDepth
	if depth <= 0 {
		depth = UnboundedDepth
	}

	err = Walk(cfg.StartDir, cfg.Exclude, depth, func(entry Entry) error {
		stats.Visited++
		if !cfg.Mode.Matches(entry) {
			return nil
		}
		stats.Matched++
		return report(Match{Entry: entry})
	})

	stats.Elapsed = time.Since(start)
	return stats, err
}
