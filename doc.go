// Package myst2pdf renders MyST markdown research documents to PDF and HTML
// using headless Chrome.
//
// # Quick Start
//
// Load a document, create an exporter, render, and close when done:
//
//	doc, err := myst2pdf.LoadDocument("paper.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	exp, err := myst2pdf.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//
//	result, err := exp.Export(ctx, myst2pdf.Input{Document: doc})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("paper.pdf", result.PDF, 0644)
//
// The result contains both the PDF bytes (result.PDF) and the intermediate
// HTML (result.HTML) for debugging. Use Input.HTMLOnly to skip PDF
// generation, or ExportAll to render every target declared in the
// document's front matter.
//
// # Export Pipeline
//
// Rendering follows these stages:
//
//  1. Front matter parsing (title, authors, bibliography, export targets)
//  2. MyST preprocessing (figure directives, citation keys to links)
//  3. Markdown to HTML conversion via Goldmark (GFM, syntax highlighting)
//  4. HTML injection (CSS, title block, references list)
//  5. PDF rendering via headless Chrome (go-rod)
//
// # Reference Checking
//
// Checker resolves a document's references without rendering:
//
//	report, err := (&myst2pdf.Checker{}).Check(doc)
//	for _, p := range report.Problems {
//	    fmt.Println(p)
//	}
//
// It reports citation keys missing from the bibliography, figure targets
// with no asset file, duplicate figure labels, and invalid export targets.
//
// # Configuration
//
// Use functional options to customize the exporter:
//
//	exp, err := myst2pdf.NewExporter(
//	    myst2pdf.WithTimeout(2 * time.Minute),
//	    myst2pdf.WithStyle("plain"),
//	    myst2pdf.WithAssetPath("/path/to/custom/assets"),
//	)
//
// # Parallel Processing
//
// For batch export, use ExporterPool to manage multiple browser instances:
//
//	pool := myst2pdf.NewExporterPool(4)
//	defer pool.Close()
//
//	exp, err := pool.Acquire()
//	defer pool.Release(exp)
//	result, err := exp.Export(ctx, input)
//
// # Custom Assets
//
// Override built-in styles and templates with WithAssetPath. Asset
// directory structure:
//
//	assets/
//	├── styles/
//	│   └── custom.css
//	└── templates/
//	    └── custom/
//	        ├── titleblock.html
//	        └── references.html
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package myst2pdf
