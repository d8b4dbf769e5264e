package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	myst2pdf "github.com/jhconning/myst2pdf"
	"github.com/jhconning/myst2pdf/internal/config"
	"github.com/jhconning/myst2pdf/internal/frontmatter"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unresolved references", myst2pdf.ErrUnresolvedReferences, ExitUnresolved},
		{"wrapped unresolved", fmt.Errorf("2 export(s) failed: %w", myst2pdf.ErrUnresolvedReferences), ExitUnresolved},
		{"browser connect", myst2pdf.ErrBrowserConnect, ExitBrowser},
		{"pdf generation", myst2pdf.ErrPDFGeneration, ExitBrowser},
		{"page load", myst2pdf.ErrPageLoad, ExitBrowser},
		{"file not found", os.ErrNotExist, ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"read document", ErrReadDocument, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"front matter", frontmatter.ErrBlockParse, ExitUsage},
		{"bad page size", myst2pdf.ErrInvalidPageSize, ExitUsage},
		{"bad extension", ErrInvalidExtension, ExitUsage},
		{"bad workers", ErrInvalidWorkerCount, ExitUsage},
		{"style not found", myst2pdf.ErrStyleNotFound, ExitUsage},
		{"unknown", errors.New("something else"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
