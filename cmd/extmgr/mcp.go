package main

import (
	"github.com/felixgeelhaar/mcp-go"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/extmgr/internal/adapters/hostloader"
	mcptools "github.com/felixgeelhaar/extmgr/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agent integration",
	Long: `Start a Model Context Protocol (MCP) server for AI agent integration.

Available tools:
  - extmgr_install  Install a plugin (requires confirm=true)
  - extmgr_remove   Remove a plugin (requires confirm=true)
  - extmgr_list     List installed plugins
  - extmgr_modules  Show the last plugins root rescan
  - extmgr_status   Get version and plugin count

Examples:
  extmgr mcp                     # Start stdio MCP server
  extmgr mcp --http :8080        # Start HTTP MCP server`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

var mcpHTTP string

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpHTTP, "http", "", "Start HTTP server on address (e.g., :8080)")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	// Subprocess output must not reach stdout, which carries the protocol.
	cmd.SetOut(cmd.ErrOrStderr())
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	srv := newMCPServer(a.Manager(), a.Modules)

	if mcpHTTP != "" {
		return mcp.ServeHTTP(ctx, srv, mcpHTTP)
	}
	return mcp.ServeStdio(ctx, srv)
}

// newMCPServer builds the MCP server with every extmgr tool registered.
func newMCPServer(m mcptools.Manager, modules func() hostloader.Snapshot) *mcp.Server {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "extmgr",
		Version: version,
	})
	mcptools.RegisterAll(srv, m, modules, mcptools.VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: date,
	})
	return srv
}
