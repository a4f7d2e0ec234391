package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/extmgr/internal/config"
)

func TestRootCmd_Subcommands(t *testing.T) {
	for _, name := range []string{"install", "remove", "list", "deferred", "serve", "mcp", "config", "version"} {
		requireSubcommand(t, name)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	tests := []struct {
		flag     string
		expected string
	}{
		{"config", ""},
		{"base-dir", "."},
		{"plugins-root", ""},
		{"log-level", ""},
		{"verbose", "false"},
		{"json", "false"},
		{"yes", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := rootCmd.PersistentFlags().Lookup(tt.flag)
			require.NotNil(t, f, "flag %s should exist", tt.flag)
			assert.Equal(t, tt.expected, f.DefValue)
		})
	}
}

func TestVersionCmd(t *testing.T) {
	stdout, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "extmgr dev")
	assert.Contains(t, stdout, "commit: none")
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	resetGlobals(t)
	baseDir = t.TempDir()
	pluginsRoot = filepath.Join(baseDir, "nodes")
	verbose = true

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, pluginsRoot, cfg.PluginsRoot)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, filepath.Join(baseDir, "web", "extensions"), cfg.WebExtensionsDir)
}

func TestLoadConfig_File(t *testing.T) {
	resetGlobals(t)
	baseDir = t.TempDir()
	cfgFile = filepath.Join(baseDir, "extmgr.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("interpreter: /usr/bin/python3.12\nlog_level: warn\n"), 0o644))

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/python3.12", cfg.Interpreter)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestFormatError(t *testing.T) {
	resetGlobals(t)

	userErr := &config.UserError{
		Code:       config.ErrCodeConfigNotFound,
		Message:    "config file not found",
		Context:    "extmgr.yaml",
		Suggestion: "Create the file or drop --config.",
		Underlying: errors.New("open extmgr.yaml: no such file or directory"),
	}

	msg := formatError(userErr)
	assert.Contains(t, msg, "config file not found (at extmgr.yaml)")
	assert.Contains(t, msg, "Suggestion: Create the file")
	assert.NotContains(t, msg, "Technical details")

	verbose = true
	assert.Contains(t, formatError(userErr), "Technical details: open extmgr.yaml")

	assert.Equal(t, "boom", formatError(errors.New("boom")))
}

func TestPrintErrorTo(t *testing.T) {
	resetGlobals(t)

	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}
