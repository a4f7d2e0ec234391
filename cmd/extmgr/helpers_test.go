package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetGlobals restores every flag variable to its default. Commands share
// package level state, so tests in this package do not run in parallel.
func resetGlobals(t *testing.T) {
	t.Helper()

	cfgFile, baseDir, pluginsRoot, logLevel = "", ".", "", ""
	verbose, jsonOutput, yesFlag = false, false, false
	installType, installJSPath, installAuthor, installHomepage, installDescription = "git-clone", "", "", "", ""
	removeType, removeJSPath = "git-clone", ""
	listModules = false
	serveAddr, mcpHTTP = "", ""

	prev := stdinIsTerminal
	t.Cleanup(func() { stdinIsTerminal = prev })
	stdinIsTerminal = func() bool { return false }
}

// executeCommand runs the root command with args and returns what it wrote
// to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetGlobals(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireSubcommand(t *testing.T, name string) {
	t.Helper()

	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return
		}
	}
	require.Failf(t, "missing subcommand", "%s should be registered on the root command", name)
}
