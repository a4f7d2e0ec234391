package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const envPrefix = "EXTMGR_"

// setting binds a config key to the Config field it sets. The same table
// serves config files and environment variables.
type setting struct {
	key string
	set func(c *Config, value string) error
}

var settings = []setting{
	{"plugins_root", stringField(func(c *Config) *string { return &c.PluginsRoot })},
	{"web_extensions_dir", stringField(func(c *Config) *string { return &c.WebExtensionsDir })},
	{"cache_file", stringField(func(c *Config) *string { return &c.CacheFile })},
	{"deferred_queue_file", stringField(func(c *Config) *string { return &c.DeferredQueueFile })},
	{"temp_dir", stringField(func(c *Config) *string { return &c.TempDir })},
	{"temp_archive_name", stringField(func(c *Config) *string { return &c.TempArchiveName })},
	{"interpreter", stringField(func(c *Config) *string { return &c.Interpreter })},
	{"lazy_mode", boolField(func(c *Config) *bool { return &c.LazyMode })},
	{"lazy_entrypoint", stringField(func(c *Config) *string { return &c.LazyEntrypoint })},
	{"git_path", stringField(func(c *Config) *string { return &c.GitPath })},
	{"delete_retries", intField(func(c *Config) *int { return &c.DeleteRetries })},
	{"delete_backoff", durationField(func(c *Config) *time.Duration { return &c.DeleteBackoff })},
	{"user_agent", stringField(func(c *Config) *string { return &c.UserAgent })},
	{"http_timeout", durationField(func(c *Config) *time.Duration { return &c.HTTPTimeout })},
	{"script_extensions", listField(func(c *Config) *[]string { return &c.ScriptExtensions })},
	{"route_prefix", stringField(func(c *Config) *string { return &c.RoutePrefix })},
	{"listen_addr", stringField(func(c *Config) *string { return &c.ListenAddr })},
	{"log_level", stringField(func(c *Config) *string { return &c.LogLevel })},
	{"log_json", boolField(func(c *Config) *bool { return &c.LogJSON })},
}

func lookupSetting(key string) (setting, bool) {
	for _, s := range settings {
		if s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

// Keys returns every recognized config key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for _, s := range settings {
		keys = append(keys, s.key)
	}
	sort.Strings(keys)
	return keys
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return envPrefix + strings.ToUpper(key)
}

// Load builds the configuration for a manager installed at baseDir. Defaults
// are overlaid with the file at path, when path is not empty, and then with
// EXTMGR_* variables found in environ. The result is not validated.
func Load(baseDir, path string, environ []string) (Config, error) {
	cfg := Default(baseDir)
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg, environ); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &UserError{
				Code:       ErrCodeConfigNotFound,
				Message:    "configuration file not found",
				Context:    path,
				Suggestion: "Check the --config path or omit it to use the defaults.",
				Underlying: err,
			}
		}
		return fmt.Errorf("read config: %w", err)
	}

	values, err := decodeFile(path, data)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		s, ok := lookupSetting(key)
		if !ok {
			return &UserError{
				Code:       ErrCodeConfigParse,
				Message:    fmt.Sprintf("unknown setting %q", key),
				Context:    path,
				Suggestion: "Known settings: " + strings.Join(Keys(), ", "),
			}
		}
		if err := s.set(cfg, values[key]); err != nil {
			return newParseError(path, fmt.Errorf("%s: %w", key, err))
		}
	}
	return nil
}

// decodeFile flattens a config file into key/value strings. The format is
// chosen by extension.
func decodeFile(path string, data []byte) (map[string]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, newParseError(path, err)
		}
		return flatten(raw), nil
	case ".toml":
		var raw map[string]interface{}
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, newParseError(path, err)
		}
		return flatten(raw), nil
	case ".ini":
		file, err := ini.Load(data)
		if err != nil {
			return nil, newParseError(path, err)
		}
		values := make(map[string]string)
		for _, key := range file.Section(ini.DefaultSection).Keys() {
			values[key.Name()] = key.String()
		}
		return values, nil
	default:
		return nil, &UserError{
			Code:       ErrCodeConfigFormat,
			Message:    fmt.Sprintf("unsupported config format %q", ext),
			Context:    path,
			Suggestion: "Use a .yaml, .yml, .toml or .ini file.",
		}
	}
}

func flatten(raw map[string]interface{}) map[string]string {
	values := make(map[string]string, len(raw))
	for key, v := range raw {
		switch typed := v.(type) {
		case []interface{}:
			items := make([]string, 0, len(typed))
			for _, item := range typed {
				items = append(items, fmt.Sprint(item))
			}
			values[key] = strings.Join(items, ",")
		case nil:
			values[key] = ""
		default:
			values[key] = fmt.Sprint(typed)
		}
	}
	return values
}

func applyEnv(cfg *Config, environ []string) error {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, envPrefix) {
			continue
		}
		s, ok := lookupSetting(strings.ToLower(strings.TrimPrefix(name, envPrefix)))
		if !ok {
			continue
		}
		if err := s.set(cfg, value); err != nil {
			return &UserError{
				Code:       ErrCodeEnvInvalid,
				Message:    fmt.Sprintf("invalid value %q", value),
				Context:    name,
				Suggestion: "Fix or unset the environment variable.",
				Underlying: err,
			}
		}
	}
	return nil
}

func stringField(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = strings.TrimSpace(v)
		return nil
	}
}

func boolField(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func intField(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func durationField(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func listField(field func(*Config) *[]string) func(*Config, string) error {
	return func(c *Config, v string) error {
		var items []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*field(c) = items
		return nil
	}
}
