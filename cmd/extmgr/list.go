package main

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/extmgr/internal/tui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed plugins",
	Long: `List the plugins recorded in the registry cache.

With --modules the plugins root is rescanned and the load status of every
module found there is shown instead.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listModules bool

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listModules, "modules", false, "rescan the plugins root and show module load status")
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if listModules {
		if err := a.Start(commandContext(cmd)); err != nil {
			return err
		}
		snap := a.Modules()
		if jsonOutput {
			return printJSON(out, snap)
		}
		tui.RenderModules(out, snap)
		return nil
	}

	entries, err := a.Manager().List(commandContext(cmd))
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(out, entries)
	}
	tui.RenderPlugins(out, entries)
	return nil
}
