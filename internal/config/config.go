// Package config holds the settings of the extension manager and loads them
// from defaults, an optional config file and EXTMGR_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/extmgr/internal/ports"
)

// Default values.
const (
	DefaultCacheFileName   = "installed_plugins_cache.json"
	DefaultTempArchiveName = "manager-temp.zip"
	DefaultInterpreter     = "python3"
	DefaultGitPath         = "git"
	DefaultDeleteRetries   = 3
	DefaultDeleteBackoff   = 3 * time.Second
	DefaultHTTPTimeout     = 5 * time.Minute
	DefaultRoutePrefix     = "/ComfyUIManager"
	DefaultListenAddr      = "127.0.0.1:8188"
	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"
)

// Config is the full set of manager settings. It is built once at startup
// and passed down; nothing reads it from package state.
type Config struct {
	// PluginsRoot is the directory the host loads plugins from.
	PluginsRoot string
	// WebExtensionsDir receives non-script files of copy installs.
	WebExtensionsDir  string
	CacheFile         string
	DeferredQueueFile string
	TempDir           string
	TempArchiveName   string

	Interpreter    string
	LazyMode       bool
	LazyEntrypoint string
	GitPath        string

	DeleteRetries int
	DeleteBackoff time.Duration

	UserAgent   string
	HTTPTimeout time.Duration

	ScriptExtensions []string

	RoutePrefix string
	ListenAddr  string

	LogLevel string
	LogJSON  bool
}

// Default returns the settings for a manager installed at baseDir.
func Default(baseDir string) Config {
	return Config{
		PluginsRoot:       filepath.Join(baseDir, "custom_nodes"),
		WebExtensionsDir:  filepath.Join(baseDir, "web", "extensions"),
		CacheFile:         filepath.Join(baseDir, DefaultCacheFileName),
		DeferredQueueFile: filepath.Join(baseDir, "startup-scripts", "install-scripts.txt"),
		TempDir:           os.TempDir(),
		TempArchiveName:   DefaultTempArchiveName,
		Interpreter:       DefaultInterpreter,
		GitPath:           DefaultGitPath,
		DeleteRetries:     DefaultDeleteRetries,
		DeleteBackoff:     DefaultDeleteBackoff,
		UserAgent:         DefaultUserAgent,
		HTTPTimeout:       DefaultHTTPTimeout,
		ScriptExtensions:  []string{".py"},
		RoutePrefix:       DefaultRoutePrefix,
		ListenAddr:        DefaultListenAddr,
		LogLevel:          "info",
	}
}

// Validate checks every setting and reports all problems together.
func (c Config) Validate() error {
	var errs ErrorList

	for _, path := range []struct{ field, value string }{
		{"plugins_root", c.PluginsRoot},
		{"web_extensions_dir", c.WebExtensionsDir},
		{"cache_file", c.CacheFile},
	} {
		if strings.TrimSpace(path.value) == "" {
			errs.Add(path.field, "must not be empty", "Set it in the config file or with "+EnvName(path.field)+".")
		}
	}
	if c.TempArchiveName == "" || filepath.Base(c.TempArchiveName) != c.TempArchiveName {
		errs.Add("temp_archive_name", "must be a plain file name", "Use a name such as "+DefaultTempArchiveName+".")
	}
	if c.Interpreter == "" {
		errs.Add("interpreter", "must not be empty", "Point it at the host's Python interpreter.")
	}
	if c.LazyMode && c.DeferredQueueFile == "" {
		errs.Add("deferred_queue_file", "is required when lazy_mode is enabled", "Set a queue file or disable lazy_mode.")
	}
	if c.DeleteRetries < 0 {
		errs.Add("delete_retries", "must not be negative", "")
	}
	if c.DeleteBackoff < 0 {
		errs.Add("delete_backoff", "must not be negative", "")
	}
	if c.HTTPTimeout <= 0 {
		errs.Add("http_timeout", "must be positive", "Use a duration such as 5m.")
	}
	for _, ext := range c.ScriptExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs.Add("script_extensions", "entry "+ext+" must start with a dot", "Write extensions as .py.")
		}
	}
	if c.RoutePrefix != "" && (!strings.HasPrefix(c.RoutePrefix, "/") || strings.HasSuffix(c.RoutePrefix, "/")) {
		errs.Add("route_prefix", "must start with / and not end with /", "Use a prefix such as "+DefaultRoutePrefix+".")
	}
	if _, err := ports.ParseLevel(c.LogLevel); err != nil {
		errs.Add("log_level", err.Error(), "Use debug, info, warn or error.")
	}

	return errs.AsError()
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() ports.Level {
	level, _ := ports.ParseLevel(c.LogLevel)
	return level
}
