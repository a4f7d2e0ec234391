package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/extmgr/internal/httpapi"
	"github.com/felixgeelhaar/extmgr/internal/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the plugin management HTTP API",
	Long: `Serve the plugin management endpoints over HTTP.

Endpoints (below the configured route prefix):
  GET  /plugins          installed plugins from the registry cache
  POST /plugins/install  install a plugin descriptor
  POST /plugins/remove   remove an installed plugin
  GET  /modules          result of the last plugins root rescan

Examples:
  extmgr serve
  extmgr serve --addr :8188`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	cfg := a.Config()
	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	h := httpapi.NewHandler(cfg.RoutePrefix, a.Manager(),
		httpapi.WithLogger(a.Logger()),
		httpapi.WithModules(func() any { return a.Modules() }),
	)
	a.Logger().Info(ctx, "serving plugin API", ports.F("addr", addr), ports.F("prefix", cfg.RoutePrefix))
	return httpapi.Serve(ctx, addr, h.Router(), a.Logger())
}
