// Package display formats seeker's user-facing output: one line per
// match, streamed as the walk discovers entries.
//
// All functions write through io.Writer for testability. Color is applied
// only when standard output is a terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/seeker/internal/search"
)

// Printer writes match lines to a destination.
type Printer struct {
	writer      io.Writer
	colorOutput bool
}

// NewPrinter creates a Printer for w. Kind coloring is enabled only when
// w is os.Stdout attached to a terminal.
func NewPrinter(w io.Writer) *Printer {
	colorOutput := false
	if w == os.Stdout {
		colorOutput = isatty.IsTerminal(os.Stdout.Fd())
	}
	return &Printer{writer: w, colorOutput: colorOutput}
}

// PrintMatch writes one match line: "Found <name> in <path>". The name is
// colored by entry kind on terminals.
func (p *Printer) PrintMatch(m search.Match) error {
	name := m.Entry.Name
	if p.colorOutput {
		name = kindColor(m.Entry.Kind).Sprint(name)
	}
	_, err := fmt.Fprintf(p.writer, "Found %s in %s\n", name, m.Entry.Path)
	return err
}

// kindColor maps an entry kind to its display color: directories blue,
// executables green, symlinks cyan, regular files plain white.
func kindColor(kind search.EntryKind) *color.Color {
	switch kind {
	case search.KindDirectory:
		return color.New(color.FgBlue, color.Bold)
	case search.KindExecutable:
		return color.New(color.FgGreen)
	case search.KindSymlink:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgWhite)
	}
}

// Summary formats a one-line run summary for the logger.
func Summary(stats search.Stats) string {
	return fmt.Sprintf("%d match(es) in %d entries (%s)",
		stats.Matched, stats.Visited, stats.Elapsed.Round(time.Millisecond))
}
