package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*
var styles embed.FS

//go:embed templates/*
var templates embed.FS

// EmbeddedLoader loads assets from the embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads a CSS style from embedded assets by name.
// The name should not include the .css extension.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}

	return string(content), nil
}

// LoadTemplateSet loads a template set from embedded assets by name.
func (e *EmbeddedLoader) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	dir := "templates/" + name
	titleBlock, tbErr := templates.ReadFile(dir + "/titleblock.html")
	references, refErr := templates.ReadFile(dir + "/references.html")

	if tbErr != nil && refErr != nil {
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	}
	if tbErr != nil {
		return nil, fmt.Errorf("%w: %q missing titleblock.html", ErrIncompleteTemplateSet, name)
	}
	if refErr != nil {
		return nil, fmt.Errorf("%w: %q missing references.html", ErrIncompleteTemplateSet, name)
	}

	return &TemplateSet{
		Name:       name,
		TitleBlock: string(titleBlock),
		References: string(references),
	}, nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
