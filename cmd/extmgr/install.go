package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
	"github.com/felixgeelhaar/extmgr/internal/validation"
)

var installCmd = &cobra.Command{
	Use:   "install <name> <url>...",
	Short: "Install a plugin",
	Long: `Install a plugin from one or more source URLs.

Install types:
  git-clone  clone every URL as a git repository and run its setup scripts
  copy       download every URL as a single file (scripts to the plugins
             root, other files to the web extensions directory)
  unzip      download every URL as a zip archive and extract it

Examples:
  extmgr install foo https://github.com/user/foo
  extmgr install widget https://example.com/widget.js --type copy --js-path widgets
  extmgr install pack https://example.com/pack.zip --type unzip`,
	Args: cobra.MinimumNArgs(2),
	RunE: runInstall,
}

var (
	installType        string
	installJSPath      string
	installAuthor      string
	installHomepage    string
	installDescription string
)

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().StringVarP(&installType, "type", "t", string(plugin.InstallGitClone), "install type (git-clone, copy, unzip)")
	installCmd.Flags().StringVar(&installJSPath, "js-path", "", "web extensions sub folder for copy installs")
	installCmd.Flags().StringVar(&installAuthor, "author", "", "plugin author")
	installCmd.Flags().StringVar(&installHomepage, "homepage", "", "plugin project page")
	installCmd.Flags().StringVar(&installDescription, "description", "", "short description")

	_ = installCmd.RegisterFlagCompletionFunc("type", completeInstallType)
}

func runInstall(cmd *cobra.Command, args []string) error {
	name, files := args[0], args[1:]
	if err := validateTarget(name, files, installJSPath); err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	res, err := a.Manager().Install(commandContext(cmd), plugin.Descriptor{
		Name:        name,
		Author:      installAuthor,
		URL:         installHomepage,
		Description: installDescription,
		Files:       files,
		InstallType: plugin.InstallType(installType),
		JSPath:      installJSPath,
	})
	if err != nil {
		return err
	}
	return printChange(cmd.OutOrStdout(), res, "Installation was successful.")
}

// validateTarget checks the command line before anything is wired.
func validateTarget(name string, files []string, jsPath string) error {
	if err := validation.ValidatePluginName(name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if err := validation.ValidateSourceURLs(files); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if err := validation.ValidateRelativePath(jsPath); err != nil {
		return fmt.Errorf("invalid --js-path: %w", err)
	}
	return nil
}

func completeInstallType(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"git-clone\tClone git repositories",
		"copy\tDownload single files",
		"unzip\tExtract zip archives",
	}, cobra.ShellCompDirectiveNoFileComp
}
