package tui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/extmgr/internal/adapters/hostloader"
	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
)

func TestRenderPlugins(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	RenderPlugins(&buf, []plugin.Entry{
		{Descriptor: plugin.Descriptor{
			Name:        "foo",
			Author:      "alice",
			Files:       []string{"https://github.com/user/foo"},
			InstallType: plugin.InstallGitClone,
			Description: "Foo nodes",
		}},
		{Descriptor: plugin.Descriptor{
			Name:        "widget",
			Files:       []string{"https://example.com/widget.js"},
			InstallType: plugin.InstallCopy,
		}},
	})

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "foo")
	assert.Contains(t, out, "git-clone")
	assert.Contains(t, out, "https://example.com/widget.js")
	assert.Contains(t, out, "TOTAL")
}

func TestRenderModules(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	RenderModules(&buf, hostloader.Snapshot{Modules: []hostloader.Module{
		{Name: "good", Kind: hostloader.KindPackage, Loaded: true, Duration: 2 * time.Millisecond},
		{Name: "broken", Kind: hostloader.KindFile, Error: "boom"},
	}})

	out := buf.String()
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "2ms")
	assert.Contains(t, out, "boom")
}
