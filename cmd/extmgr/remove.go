package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
	"github.com/felixgeelhaar/extmgr/internal/tui"
)

var removeCmd = &cobra.Command{
	Use:     "remove <name> <url>...",
	Aliases: []string{"uninstall", "rm"},
	Short:   "Remove an installed plugin",
	Long: `Remove a plugin that was installed with git-clone or copy.

Git plugins run their uninstall script before the directory is deleted.
Plugins installed with unzip cannot be removed. When stdin is not a
terminal, --yes is required.

Examples:
  extmgr remove foo https://github.com/user/foo
  extmgr rm widget https://example.com/widget.js --type copy --yes`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRemove,
}

var (
	removeType   string
	removeJSPath string
)

// errNotConfirmed is returned when a removal is declined.
var errNotConfirmed = errors.New("removal not confirmed")

func init() {
	rootCmd.AddCommand(removeCmd)

	removeCmd.Flags().StringVarP(&removeType, "type", "t", string(plugin.InstallGitClone), "install type the plugin was installed with")
	removeCmd.Flags().StringVar(&removeJSPath, "js-path", "", "web extensions sub folder used by a copy install")

	_ = removeCmd.RegisterFlagCompletionFunc("type", completeInstallType)
}

func runRemove(cmd *cobra.Command, args []string) error {
	name, files := args[0], args[1:]
	if err := validateTarget(name, files, removeJSPath); err != nil {
		return err
	}

	if err := confirmRemove(cmd, name, files); err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	res, err := a.Manager().Remove(commandContext(cmd), plugin.RemoveRequest{
		Name:        name,
		Files:       files,
		InstallType: plugin.InstallType(removeType),
		JSPath:      removeJSPath,
	})
	if err != nil {
		return err
	}
	return printChange(cmd.OutOrStdout(), res, "Uninstallation was successful.")
}

func confirmRemove(cmd *cobra.Command, name string, files []string) error {
	if yesFlag {
		return nil
	}
	if !stdinIsTerminal() {
		return fmt.Errorf("refusing to remove %s without confirmation: pass --yes", name)
	}

	opts := tui.NewConfirmOptions(fmt.Sprintf("Remove plugin %q?", name)).
		WithTitle("Remove plugin").
		WithDetails(files...).
		WithLabels("Remove", "Keep")
	res, err := tui.RunConfirm(commandContext(cmd), opts)
	if err != nil {
		return err
	}
	if !res.Confirmed {
		return errNotConfirmed
	}
	return nil
}
