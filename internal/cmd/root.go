package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/seeker/internal/config"
	"github.com/harrison/seeker/internal/display"
	"github.com/harrison/seeker/internal/history"
	"github.com/harrison/seeker/internal/logger"
	"github.com/harrison/seeker/internal/search"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for seeker
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seeker [target]",
		Short: "Recursive filesystem search",
		Long: `Seeker walks a directory tree and reports entries matching a name,
an entry type, an extension, or a regular expression, with optional
subtree exclusion and a recursion depth bound.

Exactly one matching strategy is active per run. A bare target name
matches base names exactly; --type filters by entry kind; the two
combine into a conjunction. --extension and --regex each replace the
name/kind strategy and cannot be combined with each other.

Examples:
  seeker main.go                     # exact name, from the current directory
  seeker --type exec --from ./bin    # all executables under ./bin
  seeker -e go -e md                 # by extension
  seeker -r '\.go$' -a ./vendor      # regex over full paths, pruning vendor
  seeker --type dir --depth 2 build  # directories named build, two levels deep`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runSearch,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.Flags().StringP("from", "f", ".", "Start directory for the walk")
	cmd.Flags().StringP("type", "t", "", "Entry type to match: dir, file, link, or exec")
	cmd.Flags().StringArrayP("avoid", "a", nil, "Subtree to exclude (repeatable)")
	cmd.Flags().StringArrayP("extension", "e", nil, "Extension to match (repeatable)")
	cmd.Flags().IntP("depth", "d", 0, "Maximum recursion depth (0 = unbounded)")
	cmd.Flags().StringP("regex", "r", "", "Regular expression matched against full paths")
	cmd.Flags().Bool("no-history", false, "Do not record this run in the history database")
	cmd.Flags().Bool("quiet", false, "Suppress the run summary line")
	cmd.PersistentFlags().String("config", "", "Path to config file (default: .seeker/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")

	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

// loadConfig loads the layered configuration for any command: explicit
// --config path if given, otherwise .seeker/config.yaml in the working
// directory, with environment and flag overrides on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if cmd.Flags().Changed("log-level") {
		logLevel, _ := cmd.Flags().GetString("log-level")
		cfg.MergeWithFlags(&logLevel, nil, nil, nil)
	}

	return cfg, nil
}

// runSearch implements the root command: resolve the mode, walk the tree,
// stream matches, and record the run.
func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var target string
	if len(args) == 1 {
		target = args[0]
	}
	from, _ := cmd.Flags().GetString("from")
	kindName, _ := cmd.Flags().GetString("type")
	avoid, _ := cmd.Flags().GetStringArray("avoid")
	extensions, _ := cmd.Flags().GetStringArray("extension")
	pattern, _ := cmd.Flags().GetString("regex")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	quiet, _ := cmd.Flags().GetBool("quiet")

	var depthPtr *int
	if cmd.Flags().Changed("depth") {
		depth, _ := cmd.Flags().GetInt("depth")
		depthPtr = &depth
	}
	cfg.MergeWithFlags(nil, depthPtr, &avoid, &noHistory)

	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	mode, err := search.ResolveMode(target, kindName, extensions, pattern)
	if err != nil {
		return err
	}

	searchCfg := search.Config{
		StartDir: from,
		Exclude:  cfg.Exclude,
		MaxDepth: cfg.MaxDepth,
		Mode:     mode,
	}

	log.LogDebug(fmt.Sprintf("searching %s (%s)", from, mode.Describe()))

	printer := display.NewPrinter(cmd.OutOrStdout())
	startedAt := time.Now()
	stats, runErr := search.Run(searchCfg, printer.PrintMatch)

	if cfg.History.Enabled {
		recordRun(cmd.Context(), log, cfg.History.DBPath, history.Run{
			ID:             uuid.New().String(),
			StartedAt:      startedAt,
			Duration:       stats.Elapsed,
			StartDir:       from,
			Mode:           mode.Describe(),
			MatchCount:     stats.Matched,
			EntriesVisited: stats.Visited,
			Completed:      runErr == nil,
			Error:          errorText(runErr),
		})
	}

	if runErr != nil {
		// Matches already streamed stay on stdout; the trailing error
		// tells the user the listing is incomplete.
		return fmt.Errorf("search aborted: %w", runErr)
	}

	if !quiet {
		log.LogInfo(display.Summary(stats))
	}

	return nil
}

// recordRun stores one run in the history database. History is an
// observer: failures are logged at warn level and never fail the search.
func recordRun(ctx context.Context, log *logger.ConsoleLogger, dbPath string, run history.Run) {
	store, err := history.NewStore(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("history disabled for this run: %v", err))
		return
	}
	defer store.Close()

	if err := store.Record(ctx, run); err != nil {
		log.LogWarn(fmt.Sprintf("failed to record run: %v", err))
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
