package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/wsfix/internal/config"
	"github.com/harrison/wsfix/internal/history"
	"github.com/harrison/wsfix/internal/models"
)

// NewHistoryCommand creates the 'wsfix history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `List recent runs recorded in the history database, most recent first.

With a run ID (or a unique prefix of one), show the files that run changed
or failed on. Runs are recorded when history is enabled in the config file
or with 'wsfix fix --history'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .wsfix/config.yaml)")
	cmd.Flags().IntP("limit", "n", 10, "Number of runs to list (0 = all)")

	return cmd
}

// runHistory executes the history command
func runHistory(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()

	cfg, home, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dbPath := config.ResolvePath(home, cfg.History.DBPath)
	if dbPath == "" {
		return fmt.Errorf("history.db_path is not set")
	}

	// Check if database exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(output, "No runs recorded yet.")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 1 {
		run, err := store.FindRun(ctx, args[0])
		if err != nil {
			return err
		}
		files, err := store.Files(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("get run files: %w", err)
		}
		printRunDetail(output, run, files)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("get recent runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(output, "No runs recorded yet.")
		return nil
	}

	printRuns(output, runs)
	return nil
}

// printRuns prints one line per run
func printRuns(w io.Writer, runs []*history.Run) {
	cyan := color.New(color.FgCyan, color.Bold)

	cyan.Fprintf(w, "%-8s  %-19s  %-5s  %-6s  %7s  %7s  %6s  %s\n",
		"RUN", "STARTED", "MODE", "STATUS", "SCANNED", "CHANGED", "ERRORS", "DURATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%-8s  %-19s  %-5s  %s  %7d  %7d  %6d  %s\n",
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			modeName(run.CheckOnly),
			statusText(run.Status),
			run.FilesScanned,
			run.FilesChanged,
			run.FilesErrored,
			run.Duration.Round(time.Millisecond),
		)
	}
}

// printRunDetail prints a run header followed by its recorded files
func printRunDetail(w io.Writer, run *history.Run, files []*history.FileRecord) {
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "\n=== Run %s ===\n\n", run.ID)
	fmt.Fprintf(w, "  Started:  %s ", run.StartedAt.Local().Format(time.RFC3339))
	gray.Fprintf(w, "(%s ago)\n", time.Since(run.StartedAt).Round(time.Second))
	fmt.Fprintf(w, "  Mode:     %s\n", modeName(run.CheckOnly))
	fmt.Fprintf(w, "  Status:   %s\n", statusText(run.Status))
	fmt.Fprintf(w, "  Duration: %s\n", run.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Files:    %d scanned, %d changed, %d unchanged, %d binary, %d errors\n\n",
		run.FilesScanned, run.FilesChanged, run.FilesUnchanged, run.FilesBinary, run.FilesErrored)

	if len(files) == 0 {
		gray.Fprintln(w, "  (no files changed)")
		return
	}

	for _, f := range files {
		switch f.Status {
		case models.FileError:
			fmt.Fprintf(w, "  %s %s: %s\n", color.New(color.FgRed).Sprint("error  "), f.Path, f.Error)
		default:
			fmt.Fprintf(w, "  %s %s (%s)\n", color.New(color.FgGreen).Sprint("changed"), f.Path, lineCount(f.Lines))
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func lineCount(n int) string {
	if n == 1 {
		return "1 line"
	}
	return fmt.Sprintf("%d lines", n)
}

func modeName(checkOnly bool) string {
	if checkOnly {
		return "check"
	}
	return "fix"
}

// statusText pads before coloring so columns stay aligned
func statusText(status string) string {
	padded := fmt.Sprintf("%-6s", strings.ToUpper(status))
	if status == models.StatusPass {
		return color.New(color.FgGreen).Sprint(padded)
	}
	return color.New(color.FgRed).Sprint(padded)
}
