// Package app wires the extension manager: it builds every adapter from the
// configuration and hands them to the plugin manager.
package app

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/felixgeelhaar/extmgr/internal/adapters/archive"
	"github.com/felixgeelhaar/extmgr/internal/adapters/command"
	"github.com/felixgeelhaar/extmgr/internal/adapters/filesystem"
	"github.com/felixgeelhaar/extmgr/internal/adapters/hostloader"
	"github.com/felixgeelhaar/extmgr/internal/adapters/httpfetch"
	"github.com/felixgeelhaar/extmgr/internal/adapters/logging"
	"github.com/felixgeelhaar/extmgr/internal/adapters/registry"
	"github.com/felixgeelhaar/extmgr/internal/config"
	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// App is the assembled extension manager.
type App struct {
	cfg     config.Config
	logger  ports.Logger
	fs      ports.FileSystem
	queue   *plugin.DeferredQueue
	loader  *hostloader.DirectoryLoader
	manager *plugin.Manager
}

type options struct {
	stdout     io.Writer
	stderr     io.Writer
	logger     ports.Logger
	runner     ports.CommandRunner
	fetcher    ports.Fetcher
	fs         ports.FileSystem
	httpClient *http.Client
	onReload   func(hostloader.Snapshot)
}

// Option configures New.
type Option func(*options)

// WithOutput sets where subprocess output and the default logger write.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithLogger replaces the console logger built from the configuration.
func WithLogger(l ports.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRunner replaces the subprocess runner.
func WithRunner(r ports.CommandRunner) Option {
	return func(o *options) {
		o.runner = r
	}
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f ports.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithFileSystem replaces the file system.
func WithFileSystem(fsys ports.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithHTTPClient sets the client used by the default fetcher.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithReloadHook is called with the host loader snapshot after every reload.
func WithReloadHook(fn func(hostloader.Snapshot)) Option {
	return func(o *options) {
		o.onReload = fn
	}
}

// New validates cfg and builds the manager with its transports.
func New(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{stdout: os.Stdout, stderr: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NewConsoleLogger(
			logging.WithOutput(o.stderr),
			logging.WithLevel(cfg.Level()),
			logging.WithJSONFormat(cfg.LogJSON),
		)
	}
	fsys := o.fs
	if fsys == nil {
		fsys = filesystem.NewRealFileSystem()
	}
	runner := o.runner
	if runner == nil {
		runner = command.NewStreamRunner(
			command.WithStdout(o.stdout),
			command.WithStderr(o.stderr),
			command.WithLogger(logger),
		)
	}
	fetcher := o.fetcher
	if fetcher == nil {
		fetchOpts := []httpfetch.Option{
			httpfetch.WithUserAgent(cfg.UserAgent),
			httpfetch.WithTimeout(cfg.HTTPTimeout),
		}
		if o.httpClient != nil {
			fetchOpts = append(fetchOpts, httpfetch.WithHTTPClient(o.httpClient))
		}
		fetcher = httpfetch.NewFetcher(fetchOpts...)
	}

	queue := plugin.NewDeferredQueue(fsys, cfg.DeferredQueueFile)
	setupOpts := []plugin.PostFetchOption{
		plugin.WithInterpreter(cfg.Interpreter),
		plugin.WithSetupLogger(logger),
	}
	if cfg.LazyMode {
		setupOpts = append(setupOpts, plugin.WithLazyMode(cfg.LazyEntrypoint))
	}
	setup := plugin.NewPostFetchInstaller(runner, fsys, queue, setupOpts...)

	deleter := plugin.NewRetryingDeleter(fsys,
		plugin.WithRetries(cfg.DeleteRetries),
		plugin.WithBackoff(cfg.DeleteBackoff),
		plugin.WithDeleterLogger(logger),
	)
	uninstaller := plugin.NewGitUninstaller(cfg.PluginsRoot, cfg.Interpreter, runner, fsys, deleter, logger)

	loaderOpts := []hostloader.Option{hostloader.WithLogger(logger)}
	if o.onReload != nil {
		loaderOpts = append(loaderOpts, hostloader.WithReloadHook(o.onReload))
	}
	loader := hostloader.NewDirectoryLoader(loaderOpts...)

	manager := plugin.NewManager(cfg.PluginsRoot,
		registry.NewJSONRepository(cfg.CacheFile, registry.WithFileSystem(fsys)),
		plugin.WithLogger(logger),
		plugin.WithHostLoader(loader),
		plugin.WithTransport(plugin.InstallGitClone,
			plugin.NewGitTransport(cfg.PluginsRoot, cfg.GitPath, runner, fsys, setup, uninstaller, logger)),
		plugin.WithTransport(plugin.InstallCopy,
			plugin.NewCopyTransport(cfg.PluginsRoot, cfg.WebExtensionsDir, cfg.ScriptExtensions, fetcher, fsys, logger)),
		plugin.WithTransport(plugin.InstallUnzip,
			plugin.NewArchiveTransport(cfg.PluginsRoot, cfg.TempDir, cfg.TempArchiveName, fetcher, archive.NewZipExtractor(), fsys, logger)),
	)

	return &App{
		cfg:     cfg,
		logger:  logger,
		fs:      fsys,
		queue:   queue,
		loader:  loader,
		manager: manager,
	}, nil
}

// Config returns the configuration the app was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the app logger.
func (a *App) Logger() ports.Logger {
	return a.logger
}

// Manager returns the plugin manager.
func (a *App) Manager() *plugin.Manager {
	return a.manager
}

// Modules returns the host loader's most recent snapshot.
func (a *App) Modules() hostloader.Snapshot {
	return a.loader.Snapshot()
}

// Deferred returns the setup commands queued for the host's next startup.
func (a *App) Deferred() ([]plugin.DeferredCommand, error) {
	return a.queue.Entries()
}

// Start performs the initial scan of the plugins root so the loader
// snapshot reflects what is on disk before the first request.
func (a *App) Start(ctx context.Context) error {
	if err := a.fs.MkdirAll(a.cfg.PluginsRoot, 0o755); err != nil {
		return err
	}
	return a.manager.Reload(ctx)
}
