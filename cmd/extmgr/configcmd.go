package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/extmgr/internal/config"
	"github.com/felixgeelhaar/extmgr/internal/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the configuration keys and their environment variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		keys := config.Keys()
		out := cmd.OutOrStdout()
		if jsonOutput {
			env := make(map[string]string, len(keys))
			for _, k := range keys {
				env[k] = config.EnvName(k)
			}
			return printJSON(out, env)
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.SetOutputMirror(out)
		t.AppendHeader(table.Row{"KEY", "ENVIRONMENT"})
		for _, k := range keys {
			t.AppendRow(table.Row{k, config.EnvName(k)})
		}
		t.Render()
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), tui.DefaultStyles().Success.Render("Configuration is valid."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configKeysCmd, configValidateCmd)
}
