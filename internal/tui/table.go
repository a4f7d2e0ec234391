package tui

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/felixgeelhaar/extmgr/internal/adapters/hostloader"
	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
)

// RenderPlugins writes the registry entries as a table.
func RenderPlugins(w io.Writer, entries []plugin.Entry) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"NAME", "TYPE", "AUTHOR", "FILES", "DESCRIPTION"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, WidthMax: 48},
	})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.Name,
			e.InstallType.String(),
			e.Author,
			strings.Join(e.Files, "\n"),
			e.Description,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "total", len(entries)})
	t.Render()
}

// RenderModules writes the outcome of the host's last rescan as a table.
func RenderModules(w io.Writer, snap hostloader.Snapshot) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"MODULE", "KIND", "STATUS", "TIME", "ERROR"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})
	for _, m := range snap.Modules {
		status := "loaded"
		if !m.Loaded {
			status = "failed"
		}
		t.AppendRow(table.Row{m.Name, string(m.Kind), status, m.Duration.String(), m.Error})
	}
	t.Render()
}
