package myst2pdf

import (
	"errors"

	"github.com/jhconning/myst2pdf/internal/assets"
)

// Sentinel errors for library operations.
var (
	ErrNilDocument    = errors.New("document cannot be nil")
	ErrEmptyDocument  = errors.New("document has no content")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Export target validation errors.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrMissingOutputPath = errors.New("export target missing output path")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Footer validation errors.
	ErrInvalidFooterPosition = errors.New("invalid footer position")

	// Reference checking errors.
	ErrUnresolvedReferences = errors.New("document has unresolved references")

	// Asset path validation errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// Pool lifecycle errors.
	ErrPoolClosed = errors.New("exporter pool is closed")
)

// Asset loading errors, re-exported so callers can match them without
// importing the internal package.
var (
	ErrStyleNotFound         = assets.ErrStyleNotFound
	ErrTemplateSetNotFound   = assets.ErrTemplateSetNotFound
	ErrIncompleteTemplateSet = assets.ErrIncompleteTemplateSet
)
