package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for wsfix
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wsfix",
		Short: "Whitespace checker and fixer",
		Long: `wsfix checks and fixes whitespace in text files: trailing whitespace,
mixed line endings, trailing blank lines and a missing final newline.

Files are rewritten atomically, binary files are left alone, and every
file is reported individually so one bad file never stops a run.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error once
		SilenceErrors: true,
	}

	cmd.AddCommand(NewFixCommand())
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
