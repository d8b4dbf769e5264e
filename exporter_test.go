package myst2pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jhconning/myst2pdf/internal/bibliography"
)

// fakePDFConverter records ToPDF calls instead of driving a browser.
type fakePDFConverter struct {
	calls    int
	lastHTML string
	lastOpts *pdfOptions
	err      error
	closed   bool
}

func (f *fakePDFConverter) ToPDF(ctx context.Context, htmlContent string, opts *pdfOptions) ([]byte, error) {
	f.calls++
	f.lastHTML = htmlContent
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-fake"), nil
}

func (f *fakePDFConverter) Close() error {
	f.closed = true
	return nil
}

// newTestExporter builds an exporter with the browser swapped for a fake.
func newTestExporter(t *testing.T, opts ...Option) (*Exporter, *fakePDFConverter) {
	t.Helper()
	e, err := NewExporter(opts...)
	if err != nil {
		t.Fatalf("NewExporter() error: %v", err)
	}
	fake := &fakePDFConverter{}
	_ = e.pdfConverter.Close()
	e.pdfConverter = fake
	t.Cleanup(func() { _ = e.Close() })
	return e, fake
}

func TestExport(t *testing.T) {
	doc := writeDoc(t, `---
title: Risk Sharing
authors:
  - name: Jonathan Conning
bibliography:
  - refs.bib
---

# Introduction

Villages share risk [@townsend1994].

![income plot](#fig-income)

A ==key result== follows.
`, map[string]string{
		"refs.bib": `@article{townsend1994, author={Townsend, Robert M.}, title={Risk and Insurance in Village India}, journal={Econometrica}, year={1994}}`,
		"figures/fig-income.svg": "<svg/>",
	})

	e, fake := newTestExporter(t)
	res, err := e.Export(context.Background(), Input{Document: doc})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	html := string(res.HTML)
	wants := []string{
		"Risk Sharing",           // title block
		"Jonathan Conning",       // author
		"#ref-townsend1994",      // citation link
		"Townsend 1994",          // citation label
		`id="ref-townsend1994"`,  // references anchor
		"Econometrica",           // formatted reference venue
		"<figure",                // figure markup injected
		"fig-income.svg",         // resolved asset
		"<mark>key result</mark>", // highlight conversion
		"<style>",                // default style injected
	}
	for _, want := range wants {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}

	if string(res.PDF) != "%PDF-fake" {
		t.Errorf("PDF = %q, want fake output", res.PDF)
	}
	if fake.calls != 1 {
		t.Errorf("ToPDF calls = %d, want 1", fake.calls)
	}
}

func TestExportHTMLOnly(t *testing.T) {
	doc := writeDoc(t, "---\ntitle: T\n---\nbody\n", nil)

	e, fake := newTestExporter(t)
	res, err := e.Export(context.Background(), Input{Document: doc, HTMLOnly: true})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if res.PDF != nil {
		t.Error("HTMLOnly export should not produce PDF bytes")
	}
	if fake.calls != 0 {
		t.Errorf("ToPDF calls = %d, want 0", fake.calls)
	}
}

func TestExportPassesPageAndFooter(t *testing.T) {
	doc := writeDoc(t, "---\ntitle: T\n---\nbody\n", nil)

	e, fake := newTestExporter(t)
	page := &PageSettings{Size: "a4", Orientation: "landscape", Margin: 1.0}
	footer := &Footer{ShowPageNumber: true, Position: "center"}

	if _, err := e.Export(context.Background(), Input{Document: doc, Page: page, Footer: footer}); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	if fake.lastOpts == nil || fake.lastOpts.Page != page || fake.lastOpts.Footer != footer {
		t.Errorf("page/footer not forwarded to the PDF converter: %+v", fake.lastOpts)
	}
}

func TestExportValidation(t *testing.T) {
	e, _ := newTestExporter(t)
	ctx := context.Background()

	emptyDoc, err := ParseDocument([]byte(""))
	if err != nil {
		t.Fatal(err)
	}
	validDoc, err := ParseDocument([]byte("# Body\n"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{"nil document", Input{}, ErrNilDocument},
		{"empty document", Input{Document: emptyDoc}, ErrEmptyDocument},
		{
			"bad page size",
			Input{Document: validDoc, Page: &PageSettings{Size: "x", Orientation: "portrait", Margin: 0.5}},
			ErrInvalidPageSize,
		},
		{
			"bad footer position",
			Input{Document: validDoc, Footer: &Footer{Position: "top"}},
			ErrInvalidFooterPosition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Export(ctx, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Export() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExportUserCSSAppended(t *testing.T) {
	doc := writeDoc(t, "---\ntitle: T\n---\nbody\n", nil)

	e, _ := newTestExporter(t)
	res, err := e.Export(context.Background(), Input{
		Document: doc,
		CSS:      "h1 { color: teal }",
		HTMLOnly: true,
	})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !strings.Contains(string(res.HTML), "h1 { color: teal }") {
		t.Error("user CSS should be injected after the style")
	}
}

func TestExportWithInlineStyle(t *testing.T) {
	doc := writeDoc(t, "---\ntitle: T\n---\nbody\n", nil)

	e, _ := newTestExporter(t, WithStyle("body { background: ivory }"))
	res, err := e.Export(context.Background(), Input{Document: doc, HTMLOnly: true})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !strings.Contains(string(res.HTML), "body { background: ivory }") {
		t.Error("inline CSS style should be used verbatim")
	}
}

func TestNewExporterUnknownTemplateSet(t *testing.T) {
	if _, err := NewExporter(WithTemplateSet("no-such-set")); err == nil {
		t.Error("NewExporter() should fail for an unknown default template set")
	}
}

func TestNewExporterUnknownStyle(t *testing.T) {
	if _, err := NewExporter(WithStyle("no-such-style")); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("NewExporter() error = %v, want ErrStyleNotFound", err)
	}
}

func TestExportAll(t *testing.T) {
	doc := writeDoc(t, `---
title: T
exports:
  - format: pdf
    template: plain
    output: exports/paper.pdf
  - format: html
    output: exports/paper.html
---
body
`, nil)

	e, fake := newTestExporter(t)
	results, err := e.ExportAll(context.Background(), doc, Input{})
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	pdf := results[0]
	if pdf.Format != FormatPDF || pdf.Template != "plain" {
		t.Errorf("results[0] = %+v", pdf)
	}
	if pdf.OutputPath != filepath.Join(doc.Dir(), "exports", "paper.pdf") {
		t.Errorf("OutputPath = %q, should resolve against the document dir", pdf.OutputPath)
	}
	if string(pdf.Data) != "%PDF-fake" {
		t.Errorf("pdf Data = %q", pdf.Data)
	}

	htmlRes := results[1]
	if htmlRes.Format != FormatHTML || htmlRes.Template != "paper" {
		t.Errorf("results[1] = %+v (template should fall back to the default)", htmlRes)
	}
	if !strings.Contains(string(htmlRes.Data), "<html") {
		t.Errorf("html Data should be the rendered document")
	}

	if fake.calls != 1 {
		t.Errorf("ToPDF calls = %d, want 1 (html target skips the browser)", fake.calls)
	}
}

func TestExportAllImplicitTarget(t *testing.T) {
	doc := writeDoc(t, "---\ntitle: T\n---\nbody\n", nil)

	e, _ := newTestExporter(t)
	results, err := e.ExportAll(context.Background(), doc, Input{})
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1 implicit target", len(results))
	}
	if results[0].Format != FormatPDF {
		t.Errorf("Format = %q, want pdf", results[0].Format)
	}
	if results[0].OutputPath != filepath.Join(doc.Dir(), "paper.pdf") {
		t.Errorf("OutputPath = %q, want paper.pdf next to the source", results[0].OutputPath)
	}
}

func TestExportAllBadTargets(t *testing.T) {
	e, _ := newTestExporter(t)
	ctx := context.Background()

	docx := writeDoc(t, "---\nexports:\n  - format: docx\n    output: o.docx\n---\nbody\n", nil)
	if _, err := e.ExportAll(ctx, docx, Input{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}

	noOut := writeDoc(t, "---\nexports:\n  - format: pdf\n---\nbody\n", nil)
	if _, err := e.ExportAll(ctx, noOut, Input{}); !errors.Is(err, ErrMissingOutputPath) {
		t.Errorf("error = %v, want ErrMissingOutputPath", err)
	}

	if _, err := e.ExportAll(ctx, nil, Input{}); !errors.Is(err, ErrNilDocument) {
		t.Errorf("error = %v, want ErrNilDocument", err)
	}
}

func TestExportFigureOutsideDocDir(t *testing.T) {
	assetDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(assetDir, "fig-x.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := writeDoc(t, "---\ntitle: T\n---\n![x](#fig-x)\n", nil)

	e, _ := newTestExporter(t, WithFigureDir(assetDir))
	res, err := e.Export(context.Background(), Input{Document: doc, HTMLOnly: true})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !strings.Contains(string(res.HTML), "file://") {
		t.Error("asset outside the document dir should become a file:// URL")
	}
}

func TestFormatReference(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{
			name: "article",
			fields: map[string]string{
				"author": "Townsend, Robert M.", "year": "1994",
				"title": "Risk and Insurance", "journal": "Econometrica",
			},
			want: "Townsend, Robert M. (1994). Risk and Insurance. Econometrica.",
		},
		{
			name: "two authors joined",
			fields: map[string]string{
				"author": "Conning, Jonathan and Morduch, Jonathan", "year": "2011",
				"title": "Microfinance",
			},
			want: "Conning, Jonathan and Morduch, Jonathan (2011). Microfinance.",
		},
		{
			name: "three authors oxford comma",
			fields: map[string]string{
				"author": "A, A and B, B and C, C", "year": "2020", "title": "T",
			},
			want: "A, A, B, B, and C, C (2020). T.",
		},
		{
			name:   "no author",
			fields: map[string]string{"year": "2001", "title": "Anonymous Work"},
			want:   "(2001). Anonymous Work.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := bibliography.Entry{Key: "k", Fields: tt.fields}
			if got := formatReference(entry); got != tt.want {
				t.Errorf("formatReference() = %q, want %q", got, tt.want)
			}
		})
	}
}
