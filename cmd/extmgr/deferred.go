package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var deferredCmd = &cobra.Command{
	Use:   "deferred",
	Short: "Show setup commands queued for the next host startup",
	Long: `Show the setup commands that lazy mode queued instead of running them.
The host executes the queue on its next startup.`,
	Args: cobra.NoArgs,
	RunE: runDeferred,
}

func init() {
	rootCmd.AddCommand(deferredCmd)
}

func runDeferred(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	entries, err := a.Deferred()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, entries)
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No deferred setup commands.")
		return nil
	}
	for _, e := range entries {
		_, _ = fmt.Fprintf(out, "%s: %s\n", e.Dir, strings.Join(e.Args, " "))
	}
	return nil
}
