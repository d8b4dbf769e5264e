package main

import (
	"errors"
	"os"

	myst2pdf "github.com/jhconning/myst2pdf"
	"github.com/jhconning/myst2pdf/internal/config"
	"github.com/jhconning/myst2pdf/internal/frontmatter"
)

// Exit codes for myst2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Successful export
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, or validation
	ExitIO         = 3 // File not found, permission denied
	ExitBrowser    = 4 // Browser/Chrome errors
	ExitUnresolved = 5 // Unresolved references in strict mode
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Unresolved references in strict mode (exit 5)
	if errors.Is(err, myst2pdf.ErrUnresolvedReferences) {
		return ExitUnresolved
	}

	// Browser errors (exit 4)
	if errors.Is(err, myst2pdf.ErrBrowserConnect) ||
		errors.Is(err, myst2pdf.ErrPageCreate) ||
		errors.Is(err, myst2pdf.ErrPageLoad) ||
		errors.Is(err, myst2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadDocument) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, frontmatter.ErrUnterminatedBlock) ||
		errors.Is(err, frontmatter.ErrBlockParse) ||
		errors.Is(err, myst2pdf.ErrEmptyDocument) ||
		errors.Is(err, myst2pdf.ErrUnsupportedFormat) ||
		errors.Is(err, myst2pdf.ErrMissingOutputPath) ||
		errors.Is(err, myst2pdf.ErrInvalidPageSize) ||
		errors.Is(err, myst2pdf.ErrInvalidOrientation) ||
		errors.Is(err, myst2pdf.ErrInvalidMargin) ||
		errors.Is(err, myst2pdf.ErrInvalidFooterPosition) ||
		errors.Is(err, myst2pdf.ErrStyleNotFound) ||
		errors.Is(err, myst2pdf.ErrTemplateSetNotFound) ||
		errors.Is(err, myst2pdf.ErrIncompleteTemplateSet) ||
		errors.Is(err, myst2pdf.ErrInvalidAssetPath) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) {
		return ExitUsage
	}

	return ExitGeneral
}
