// Package mcp exposes the extension manager as MCP (Model Context Protocol)
// tools.
package mcp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/extmgr/internal/adapters/hostloader"
	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
)

// Manager is the part of plugin.Manager the tools call.
type Manager interface {
	Install(ctx context.Context, d plugin.Descriptor) (*plugin.Result, error)
	Remove(ctx context.Context, req plugin.RemoveRequest) (*plugin.Result, error)
	List(ctx context.Context) ([]plugin.Entry, error)
	Root() string
}

// VersionInfo contains version metadata for the MCP server.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// InstallInput is the input for the extmgr_install tool.
type InstallInput struct {
	Name        string   `json:"name" jsonschema:"required,description=Plugin name used as the registry key"`
	Author      string   `json:"author,omitempty" jsonschema:"description=Plugin author"`
	URL         string   `json:"url,omitempty" jsonschema:"description=Project page of the plugin"`
	Description string   `json:"description,omitempty" jsonschema:"description=Short description"`
	Files       []string `json:"files" jsonschema:"required,description=Source URLs: git repositories, single files or zip archives"`
	InstallType string   `json:"install_type" jsonschema:"required,description=Transport: git-clone, copy or unzip"`
	JSPath      string   `json:"js_path,omitempty" jsonschema:"description=Sub folder of the web extensions directory for copy installs"`
	Confirm     bool     `json:"confirm" jsonschema:"required,description=Must be true to install (safety confirmation)"`
}

// RemoveInput is the input for the extmgr_remove tool.
type RemoveInput struct {
	Name        string   `json:"name" jsonschema:"required,description=Plugin name as listed by extmgr_list"`
	Files       []string `json:"files" jsonschema:"required,description=Source URLs the plugin was installed from"`
	InstallType string   `json:"install_type" jsonschema:"required,description=Transport the plugin was installed with"`
	JSPath      string   `json:"js_path,omitempty" jsonschema:"description=Sub folder used by a copy install"`
	Confirm     bool     `json:"confirm" jsonschema:"required,description=Must be true to remove (safety confirmation)"`
}

// ChangeOutput is returned by the install and remove tools.
type ChangeOutput struct {
	Applied     bool     `json:"applied"`
	OperationID string   `json:"operation_id,omitempty"`
	Name        string   `json:"name"`
	Paths       []string `json:"paths,omitempty"`
	Phases      []string `json:"phases,omitempty"`
	Message     string   `json:"message"`
}

// ListInput is the input for the extmgr_list tool.
type ListInput struct {
	InstallType string `json:"install_type,omitempty" jsonschema:"description=Only list plugins installed with this transport"`
}

// ListOutput is the output for the extmgr_list tool.
type ListOutput struct {
	Root    string       `json:"root"`
	Count   int          `json:"count"`
	Plugins []PluginInfo `json:"plugins"`
}

// PluginInfo describes one installed plugin.
type PluginInfo struct {
	Name        string   `json:"name"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	InstallType string   `json:"install_type"`
	Files       []string `json:"files"`
	Path        string   `json:"path"`
}

// ModulesInput is the input for the extmgr_modules tool.
type ModulesInput struct {
	FailedOnly bool `json:"failed_only,omitempty" jsonschema:"description=Only report modules that failed to load"`
}

// ModulesOutput is the output for the extmgr_modules tool.
type ModulesOutput struct {
	Root      string       `json:"root"`
	ScannedAt string       `json:"scanned_at,omitempty"`
	Loaded    int          `json:"loaded"`
	Failed    int          `json:"failed"`
	Modules   []ModuleInfo `json:"modules"`
}

// ModuleInfo is one entry of the host's last rescan.
type ModuleInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Loaded   bool   `json:"loaded"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// StatusInput is the input for the extmgr_status tool.
type StatusInput struct{}

// StatusOutput is the output for the extmgr_status tool.
type StatusOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Root      string `json:"root"`
	Installed int    `json:"installed"`
}

// RegisterAll registers all MCP tools with the server. modules may be nil,
// in which case extmgr_modules is not offered.
func RegisterAll(srv *mcp.Server, m Manager, modules func() hostloader.Snapshot, versionInfo VersionInfo) {
	registerInstallTool(srv, m)
	registerRemoveTool(srv, m)
	registerListTool(srv, m)
	registerStatusTool(srv, m, versionInfo)
	if modules != nil {
		registerModulesTool(srv, modules)
	}
}

func registerInstallTool(srv *mcp.Server, m Manager) {
	srv.Tool("extmgr_install").
		Description("Install a plugin from git, a single file URL or a zip archive. REQUIRES confirm=true for safety.").
		Destructive().
		Handler(func(ctx context.Context, in InstallInput) (*ChangeOutput, error) {
			if err := ValidateInstallInput(&in); err != nil {
				return nil, err
			}
			if !in.Confirm {
				return &ChangeOutput{Name: in.Name, Message: "install not applied: set confirm=true to proceed"}, nil
			}

			res, err := m.Install(ctx, plugin.Descriptor{
				Name:        in.Name,
				Author:      in.Author,
				URL:         in.URL,
				Description: in.Description,
				Files:       in.Files,
				InstallType: plugin.InstallType(in.InstallType),
				JSPath:      in.JSPath,
			})
			if err != nil {
				return nil, err
			}
			return changeOutput(res, "Installation was successful."), nil
		})
}

func registerRemoveTool(srv *mcp.Server, m Manager) {
	srv.Tool("extmgr_remove").
		Description("Remove an installed plugin and run its uninstall hook. Plugins installed with unzip cannot be removed. REQUIRES confirm=true for safety.").
		Destructive().
		Handler(func(ctx context.Context, in RemoveInput) (*ChangeOutput, error) {
			if err := ValidateRemoveInput(&in); err != nil {
				return nil, err
			}
			if !in.Confirm {
				return &ChangeOutput{Name: in.Name, Message: "remove not applied: set confirm=true to proceed"}, nil
			}

			res, err := m.Remove(ctx, plugin.RemoveRequest{
				Name:        in.Name,
				Files:       in.Files,
				InstallType: plugin.InstallType(in.InstallType),
				JSPath:      in.JSPath,
			})
			if err != nil {
				return nil, err
			}
			return changeOutput(res, "Uninstallation was successful."), nil
		})
}

func registerListTool(srv *mcp.Server, m Manager) {
	srv.Tool("extmgr_list").
		Description("List installed plugins from the registry cache.").
		ReadOnly().
		Handler(func(ctx context.Context, in ListInput) (*ListOutput, error) {
			entries, err := m.List(ctx)
			if err != nil {
				return nil, err
			}

			out := &ListOutput{Root: m.Root(), Plugins: make([]PluginInfo, 0, len(entries))}
			for _, e := range entries {
				if in.InstallType != "" && string(e.InstallType) != in.InstallType {
					continue
				}
				out.Plugins = append(out.Plugins, PluginInfo{
					Name:        e.Name,
					Author:      e.Author,
					Description: e.Description,
					InstallType: e.InstallType.String(),
					Files:       e.Files,
					Path:        e.Path,
				})
			}
			out.Count = len(out.Plugins)
			return out, nil
		})
}

func registerModulesTool(srv *mcp.Server, modules func() hostloader.Snapshot) {
	srv.Tool("extmgr_modules").
		Description("Show the plugin modules found by the host's last rescan, with load status and timings.").
		ReadOnly().
		Handler(func(_ context.Context, in ModulesInput) (*ModulesOutput, error) {
			snap := modules()
			out := &ModulesOutput{Root: snap.Root, Modules: make([]ModuleInfo, 0, len(snap.Modules))}
			if !snap.ScannedAt.IsZero() {
				out.ScannedAt = snap.ScannedAt.Format(time.RFC3339)
			}
			for _, mod := range snap.Modules {
				if mod.Loaded {
					out.Loaded++
				} else {
					out.Failed++
				}
				if in.FailedOnly && mod.Loaded {
					continue
				}
				out.Modules = append(out.Modules, ModuleInfo{
					Name:     mod.Name,
					Kind:     string(mod.Kind),
					Loaded:   mod.Loaded,
					Error:    mod.Error,
					Duration: mod.Duration.String(),
				})
			}
			return out, nil
		})
}

func registerStatusTool(srv *mcp.Server, m Manager, versionInfo VersionInfo) {
	srv.Tool("extmgr_status").
		Description("Get extension manager status including version info and the number of installed plugins.").
		ReadOnly().
		Handler(func(ctx context.Context, _ StatusInput) (*StatusOutput, error) {
			entries, err := m.List(ctx)
			if err != nil {
				return nil, err
			}
			return &StatusOutput{
				Version:   versionInfo.Version,
				Commit:    versionInfo.Commit,
				BuildDate: versionInfo.BuildDate,
				Root:      m.Root(),
				Installed: len(entries),
			}, nil
		})
}

func changeOutput(res *plugin.Result, message string) *ChangeOutput {
	phases := make([]string, 0, len(res.History))
	for _, p := range res.History {
		phases = append(phases, string(p))
	}
	return &ChangeOutput{
		Applied:     true,
		OperationID: res.OperationID,
		Name:        res.Name,
		Paths:       res.Paths,
		Phases:      phases,
		Message:     message,
	}
}
