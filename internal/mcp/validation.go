package mcp

import (
	"fmt"

	"github.com/felixgeelhaar/extmgr/internal/validation"
)

// ValidateInstallInput validates InstallInput fields.
func ValidateInstallInput(in *InstallInput) error {
	if err := validation.ValidatePluginName(in.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if err := validation.ValidateSourceURLs(in.Files); err != nil {
		return fmt.Errorf("invalid files: %w", err)
	}
	if err := validation.ValidateRelativePath(in.JSPath); err != nil {
		return fmt.Errorf("invalid js_path: %w", err)
	}
	return nil
}

// ValidateRemoveInput validates RemoveInput fields.
func ValidateRemoveInput(in *RemoveInput) error {
	if err := validation.ValidatePluginName(in.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if err := validation.ValidateSourceURLs(in.Files); err != nil {
		return fmt.Errorf("invalid files: %w", err)
	}
	if err := validation.ValidateRelativePath(in.JSPath); err != nil {
		return fmt.Errorf("invalid js_path: %w", err)
	}
	return nil
}
