package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/harrison/wsfix/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// A failed run has already printed its summary
		if !errors.Is(err, cmd.ErrRunFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
