package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/seeker/internal/filelock"
	"github.com/harrison/seeker/internal/history"
)

// NewHistoryCommand creates the 'seeker history' parent command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded search runs",
		Long: `Commands for viewing and managing the search-run history.

Each completed (or aborted) search is recorded in a local SQLite
database with its mode, start directory, match count, and duration.
Runs started with --no-history are not recorded.`,
		RunE: runHistoryList,
	}

	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 = all)")

	cmd.AddCommand(newHistoryStatsCommand())
	cmd.AddCommand(newHistoryClearCommand())
	cmd.AddCommand(newHistoryExportCommand())

	return cmd
}

// openStore opens the history store at the configured path.
func openStore(cmd *cobra.Command) (*history.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

// runHistoryList lists the most recent runs, newest first.
func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	output := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(output, "No recorded runs")
		return nil
	}

	printRuns(output, runs)
	return nil
}

// printRuns renders runs as aligned rows with a colored status marker.
func printRuns(w io.Writer, runs []history.Run) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	gray := color.New(color.FgHiBlack)

	for _, run := range runs {
		status := green.Sprint("ok")
		if !run.Completed {
			status = red.Sprint("aborted")
		}

		fmt.Fprintf(w, "%s  %-7s %4d match(es)  %-28s in %s (%s)\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			run.MatchCount,
			run.Mode,
			run.StartDir,
			run.Duration.Round(time.Millisecond),
		)
		if run.Error != "" {
			fmt.Fprintf(w, "           %s\n", gray.Sprint(run.Error))
		}
	}
}

// newHistoryStatsCommand creates the 'seeker history stats' command
func newHistoryStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics for recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			output := cmd.OutOrStdout()
			fmt.Fprintf(output, "Total runs:    %d\n", stats.TotalRuns)
			fmt.Fprintf(output, "Total matches: %d\n", stats.TotalMatches)
			fmt.Fprintf(output, "Aborted runs:  %d\n", stats.Aborted)

			if len(stats.RunsPerMode) > 0 {
				fmt.Fprintf(output, "\nRuns per mode:\n")
				for mode, count := range stats.RunsPerMode {
					fmt.Fprintf(output, "  %-28s %d\n", mode, count)
				}
			}
			return nil
		},
	}
}

// newHistoryClearCommand creates the 'seeker history clear' command
func newHistoryClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete recorded runs",
		Long: `Delete recorded runs, either everything (--all) or only runs older
than a retention window (--older-than 30d, --older-than 72h).`,
		Args: cobra.NoArgs,
		RunE: runHistoryClear,
	}

	cmd.Flags().Bool("all", false, "Delete every recorded run")
	cmd.Flags().String("older-than", "", "Delete runs older than this window (e.g. 30d, 72h)")

	return cmd
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	olderThan, _ := cmd.Flags().GetString("older-than")

	if all == (olderThan != "") {
		return fmt.Errorf("specify exactly one of --all or --older-than")
	}

	var cutoff *time.Time
	if olderThan != "" {
		window, err := parseRetention(olderThan)
		if err != nil {
			return err
		}
		t := time.Now().Add(-window)
		cutoff = &t
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.Clear(cmd.Context(), cutoff)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s)\n", deleted)
	return nil
}

// parseRetention parses a retention window: either a Go duration ("72h",
// "90m") or a day count with a "d" suffix ("30d").
func parseRetention(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days < 0 {
			return 0, fmt.Errorf("invalid retention window %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	window, err := time.ParseDuration(s)
	if err != nil || window < 0 {
		return 0, fmt.Errorf("invalid retention window %q", s)
	}
	return window, nil
}

// newHistoryExportCommand creates the 'seeker history export' command
func newHistoryExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded runs as JSON",
		Long: `Write all recorded runs to a JSON file.

The file is written atomically under an advisory lock, so concurrent
exports from multiple seeker processes cannot interleave.`,
		Args: cobra.NoArgs,
		RunE: runHistoryExport,
	}

	cmd.Flags().StringP("output", "o", "seeker-history.json", "Destination file")

	return cmd
}

// exportedRun is the JSON shape of one run.
type exportedRun struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	DurationMS     int64     `json:"duration_ms"`
	StartDir       string    `json:"start_dir"`
	Mode           string    `json:"mode"`
	MatchCount     int       `json:"match_count"`
	EntriesVisited int       `json:"entries_visited"`
	Completed      bool      `json:"completed"`
	Error          string    `json:"error,omitempty"`
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), 0)
	if err != nil {
		return err
	}

	exported := make([]exportedRun, 0, len(runs))
	for _, run := range runs {
		exported = append(exported, exportedRun{
			ID:             run.ID,
			StartedAt:      run.StartedAt,
			DurationMS:     run.Duration.Milliseconds(),
			StartDir:       run.StartDir,
			Mode:           run.Mode,
			MatchCount:     run.MatchCount,
			EntriesVisited: run.EntriesVisited,
			Completed:      run.Completed,
			Error:          run.Error,
		})
	}

	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return fmt.Errorf("encode runs: %w", err)
	}
	data = append(data, '\n')

	if err := filelock.LockAndWrite(output, data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d run(s) to %s\n", len(exported), output)
	return nil
}
