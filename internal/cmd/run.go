package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/wsfix/internal/config"
	"github.com/harrison/wsfix/internal/filelock"
	"github.com/harrison/wsfix/internal/fileutil"
	"github.com/harrison/wsfix/internal/history"
	"github.com/harrison/wsfix/internal/logger"
	"github.com/harrison/wsfix/internal/models"
	"github.com/harrison/wsfix/internal/report"
	"github.com/harrison/wsfix/internal/runner"
)

// ErrRunFailed is returned when a run finishes with status fail. The summary has
// already been logged, so main only needs to set the exit code.
var ErrRunFailed = errors.New("run failed")

// NewFixCommand creates the fix command
func NewFixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [path]...",
		Short: "Fix whitespace in files",
		Long: `Fix trailing whitespace, line endings, trailing blank lines and the final
newline in the given files and directories (default: the current directory).

Changed files are replaced atomically. Binary files (any NUL byte) are skipped.
Directories are walked recursively, skipping hidden and excluded directories.

Configuration is loaded from .wsfix/config.yaml in the project root if present.
CLI flags override configuration file settings.

Examples:
  wsfix fix                          # Fix everything under the current directory
  wsfix fix src/ README.md           # Fix a directory and a file
  wsfix fix --line-ending crlf win/  # Enforce CRLF
  wsfix fix --concurrency 8 .        # Process 8 files at a time
  wsfix fix --check .                # Same as 'wsfix check .'
  wsfix fix --report report.html .   # Also write an HTML report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhitespace(cmd, args, false)
		},
	}

	cmd.Flags().Bool("check", false, "Report pending changes without writing (same as 'wsfix check')")
	addRunFlags(cmd)

	return cmd
}

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path]...",
		Short: "Check whitespace without modifying files",
		Long: `Check files the way 'wsfix fix' would fix them, without writing anything.

The command fails (exit code 1) when any file needs a change or cannot be read.

Examples:
  wsfix check                        # Check the current directory
  wsfix check --verbose src/         # Show each finding
  wsfix check --line-length 100 .    # Also report lines wider than 100 columns`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhitespace(cmd, args, true)
		},
	}

	addRunFlags(cmd)

	return cmd
}

// addRunFlags registers the flags shared by fix and check
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .wsfix/config.yaml)")
	cmd.Flags().String("line-ending", "", "Line ending to enforce: lf or crlf")
	cmd.Flags().Int("concurrency", 1, "Number of files processed at once (1 = sequential)")
	cmd.Flags().Int("tab-size", 4, "Tab width used by the line-length advisory")
	cmd.Flags().Int("line-length", 0, "Report lines wider than this many columns (0 = off)")
	cmd.Flags().Bool("no-modelines", false, "Ignore vim modelines in files")
	cmd.Flags().StringSlice("exclude-dir", nil, "Directory name to skip (repeatable)")
	cmd.Flags().StringSlice("ext", nil, "Only scan directories for these extensions (repeatable)")
	cmd.Flags().StringSlice("ignore", nil, "Glob of files to skip, e.g. '**/*.min.js' (repeatable)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for run log files")
	cmd.Flags().String("report", "", "Write a report to this path (.md, .html or .yaml)")
	cmd.Flags().Bool("history", false, "Record this run in the history database")
	cmd.Flags().Bool("no-history", false, "Do not record this run (overrides config)")
	cmd.Flags().BoolP("verbose", "v", false, "Show every diagnostic and advisory")
}

// flagsFromCommand builds config.Flags from the flags the user actually set
func flagsFromCommand(cmd *cobra.Command) (config.Flags, error) {
	var f config.Flags
	flags := cmd.Flags()

	if flags.Changed("history") && flags.Changed("no-history") {
		return f, fmt.Errorf("cannot use both --history and --no-history")
	}

	if flags.Changed("line-ending") {
		v, _ := flags.GetString("line-ending")
		f.LineEnding = &v
	}
	if flags.Lookup("check") != nil && flags.Changed("check") {
		v, _ := flags.GetBool("check")
		f.CheckOnly = &v
	}
	if flags.Changed("concurrency") {
		v, _ := flags.GetInt("concurrency")
		f.Concurrency = &v
	}
	if flags.Changed("tab-size") {
		v, _ := flags.GetInt("tab-size")
		f.TabSize = &v
	}
	if flags.Changed("line-length") {
		v, _ := flags.GetInt("line-length")
		f.LineLength = &v
	}
	if flags.Changed("no-modelines") {
		v, _ := flags.GetBool("no-modelines")
		enabled := !v
		f.Modelines = &enabled
	}
	f.ExcludeDirs, _ = flags.GetStringSlice("exclude-dir")
	f.Extensions, _ = flags.GetStringSlice("ext")
	f.Ignore, _ = flags.GetStringSlice("ignore")
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		f.LogLevel = &v
	}
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		f.LogDir = &v
	}
	if flags.Changed("report") {
		v, _ := flags.GetString("report")
		f.Report = &v
	}
	if flags.Changed("history") {
		v, _ := flags.GetBool("history")
		f.History = &v
	} else if flags.Changed("no-history") {
		v := false
		f.History = &v
	}

	return f, nil
}

// loadConfig resolves the wsfix home and loads the config file from --config or the home
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	home, err := config.GetHome()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve wsfix home: %w", err)
	}

	var cfg *config.Config
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromHome(home)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
	}

	return cfg, home, nil
}

// runWhitespace implements fix and check
func runWhitespace(cmd *cobra.Command, args []string, forceCheck bool) error {
	cfg, home, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags, err := flagsFromCommand(cmd)
	if err != nil {
		return err
	}
	if forceCheck {
		checkOnly := true
		flags.CheckOnly = &checkOnly
	}

	// Merge CLI flags with config (flags take precedence)
	cfg.MergeWithFlags(flags)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	console := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)
	console.SetVerbose(verbose)
	log := logger.NewMultiLogger(console)

	if cfg.LogDir != "" {
		fileLogger, err := logger.NewFileLoggerWithLevel(config.ResolvePath(home, cfg.LogDir), cfg.LogLevel)
		if err != nil {
			console.LogWarn(fmt.Sprintf("file logging disabled: %v", err))
		} else {
			defer fileLogger.Close()
			log.Add(fileLogger)
		}
	}

	// Only writers need the run lock; concurrent checks are harmless
	if !cfg.CheckOnly {
		lock, err := filelock.AcquireRunLock(home)
		if err != nil {
			return fmt.Errorf("failed to acquire run lock: %w", err)
		}
		defer lock.Unlock()
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	scan, err := fileutil.Expand(args, fileutil.ScanOptions{
		Extensions:  cfg.Extensions,
		ExcludeDirs: cfg.ExcludeDirs,
		Ignore:      cfg.Ignore,
	})
	if err != nil {
		return fmt.Errorf("failed to expand paths: %w", err)
	}
	for _, scanErr := range scan.Errors {
		log.LogWarn(scanErr.Error())
	}

	log.LogDebug(fmt.Sprintf("processing %d files (line ending %s, concurrency %d, check only %v)",
		len(scan.Files), cfg.Options().LineEnding.Label(), cfg.Concurrency, cfg.CheckOnly))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch := runner.New(cfg.Options(), cfg.Concurrency, log).Run(ctx, scan.Files)

	if cfg.Report != "" {
		writeReport(log, cfg.Report, batch)
	}
	if cfg.History.Enabled {
		recordHistory(ctx, log, config.ResolvePath(home, cfg.History.DBPath), batch)
	}

	if !batch.Passed() {
		return ErrRunFailed
	}
	return nil
}

// writeReport writes the run report. Failures are logged, never fatal.
func writeReport(log logger.Logger, path string, batch *models.BatchResult) {
	if err := report.Write(path, batch); err != nil {
		log.LogWarn(fmt.Sprintf("report not written: %v", err))
		return
	}
	log.LogInfo(fmt.Sprintf("report written to %s", path))
}

// recordHistory stores the run in the history database. Failures are logged, never fatal.
func recordHistory(ctx context.Context, log logger.Logger, dbPath string, batch *models.BatchResult) {
	store, err := history.NewStore(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("history not recorded: %v", err))
		return
	}
	defer store.Close()

	// A cancelled run is still recorded
	run, err := store.Record(context.WithoutCancel(ctx), batch)
	if err != nil {
		log.LogWarn(fmt.Sprintf("history not recorded: %v", err))
		return
	}
	log.LogDebug(fmt.Sprintf("run %s recorded in %s", run.ID, filepath.Base(dbPath)))
}
