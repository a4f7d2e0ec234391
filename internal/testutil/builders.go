package testutil

import (
	"github.com/felixgeelhaar/extmgr/internal/domain/plugin"
)

// DescriptorBuilder builds plugin descriptors for tests.
type DescriptorBuilder struct {
	d plugin.Descriptor
}

// NewDescriptorBuilder starts a git-clone descriptor named name with no
// files.
func NewDescriptorBuilder(name string) *DescriptorBuilder {
	return &DescriptorBuilder{d: plugin.Descriptor{
		Name:        name,
		InstallType: plugin.InstallGitClone,
	}}
}

// WithFiles appends source URLs.
func (b *DescriptorBuilder) WithFiles(urls ...string) *DescriptorBuilder {
	b.d.Files = append(b.d.Files, urls...)
	return b
}

// WithType sets the install type.
func (b *DescriptorBuilder) WithType(t plugin.InstallType) *DescriptorBuilder {
	b.d.InstallType = t
	return b
}

// WithJSPath sets the web extensions sub folder.
func (b *DescriptorBuilder) WithJSPath(p string) *DescriptorBuilder {
	b.d.JSPath = p
	return b
}

// WithAuthor sets the author.
func (b *DescriptorBuilder) WithAuthor(author string) *DescriptorBuilder {
	b.d.Author = author
	return b
}

// WithDescription sets the description.
func (b *DescriptorBuilder) WithDescription(desc string) *DescriptorBuilder {
	b.d.Description = desc
	return b
}

// Build returns the descriptor.
func (b *DescriptorBuilder) Build() plugin.Descriptor {
	d := b.d
	d.Files = append([]string(nil), b.d.Files...)
	return d
}

// RemoveRequest returns the request that removes the built descriptor.
func (b *DescriptorBuilder) RemoveRequest() plugin.RemoveRequest {
	return b.Build().RemoveRequest()
}
