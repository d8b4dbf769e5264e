package myst2pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhconning/myst2pdf/internal/assets"
	"github.com/jhconning/myst2pdf/internal/bibliography"
	"github.com/jhconning/myst2pdf/internal/fileutil"
	"github.com/jhconning/myst2pdf/internal/frontmatter"
	"github.com/jhconning/myst2pdf/internal/myst"
	"github.com/jhconning/myst2pdf/internal/pipeline"
)

// Compile-time interface implementation checks.
// These ensure implementations satisfy their interfaces at compile time,
// catching signature mismatches before runtime.
var (
	_ pipeline.Preprocessor       = (*pipeline.MySTPreprocessor)(nil)
	_ pipeline.HTMLConverter      = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector        = (*pipeline.CSSInjection)(nil)
	_ pipeline.TitleBlockInjector = (*pipeline.TitleBlockInjection)(nil)
	_ pipeline.ReferencesInjector = (*pipeline.ReferencesInjection)(nil)
)

// templateInjectors pairs the two injectors built from one template set.
type templateInjectors struct {
	titleBlock pipeline.TitleBlockInjector
	references pipeline.ReferencesInjector
}

// Exporter renders MyST documents to HTML and PDF.
// Create with NewExporter(), render with Export() or ExportAll(), and
// Close() when done to release the headless browser.
type Exporter struct {
	cfg           exporterConfig
	assetLoader   assets.AssetLoader
	preprocessor  pipeline.Preprocessor
	htmlConverter pipeline.HTMLConverter
	cssInjector   pipeline.CSSInjector
	pdfConverter  pdfConverter

	// injectors caches template-set injectors by set name. The default
	// set is loaded eagerly in NewExporter so configuration errors
	// surface at construction.
	injectors map[string]*templateInjectors
}

// NewExporter creates an Exporter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithStyle,
// WithAssetPath). Returns error if asset loading or template parsing fails.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg: exporterConfig{
			timeout:     defaultTimeout,
			templateSet: assets.DefaultTemplateSetName,
		},
		assetLoader:   assets.NewEmbeddedLoader(),
		preprocessor:  &pipeline.MySTPreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
		cssInjector:   &pipeline.CSSInjection{},
		injectors:     make(map[string]*templateInjectors),
	}

	for _, opt := range opts {
		opt(e)
	}

	// Handle WithAssetPath: custom assets with embedded fallback
	if e.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(e.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		e.assetLoader = resolver
	}

	// Resolve style input (name, path, or CSS content) to CSS content
	if err := e.resolveStyle(); err != nil {
		return nil, err
	}

	// Load the default template set eagerly; per-target sets load lazily.
	if _, err := e.templateInjectorsFor(e.cfg.templateSet); err != nil {
		return nil, fmt.Errorf("loading default template set: %w", err)
	}

	// Create PDF converter if not injected (e.g., by tests)
	if e.pdfConverter == nil {
		e.pdfConverter = newRodConverter(e.cfg.timeout)
	}

	return e, nil
}

// Export runs the full pipeline for one document and returns HTML and PDF.
// The context is used for cancellation and timeout.
// If input.HTMLOnly is true, PDF generation is skipped.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Exporter) Export(ctx context.Context, input Input) (result *ExportResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := e.validateInput(input); err != nil {
		return nil, err
	}
	doc := input.Document

	bib := e.loadBibliography(doc)
	figureDir := e.figureDir(doc)

	// Preprocess: figure directives to placeholder tokens, citations to
	// markdown links.
	pre := e.preprocessor.Preprocess(ctx, string(doc.Body), pipeline.PreprocessOptions{
		FigureSrc: func(target string) (string, bool) {
			return figureSrcFor(doc, figureDir, target)
		},
		CiteLabel: func(key string) (string, bool) {
			entry, ok := bib.Entry(key)
			if !ok {
				return "", false
			}
			return entry.Label(), true
		},
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Convert to HTML
	htmlContent, err := e.htmlConverter.ToHTML(ctx, pre.Markdown)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	// Swap placeholder tokens for real markup. Done after Goldmark to
	// avoid needing html.WithUnsafe().
	htmlContent = pipeline.ReplaceFigurePlaceholders(htmlContent, pre.Figures)
	htmlContent = pipeline.ConvertMarkPlaceholders(htmlContent)

	// Rewrite relative paths to absolute file:// URLs so Chrome can load
	// figure assets from the temp file location.
	if doc.Dir() != "" {
		htmlContent, err = pipeline.RewriteRelativePaths(htmlContent, doc.Dir())
		if err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	// Build combined CSS (exporter style first, user CSS last so it can
	// override)
	cssContent := e.cfg.resolvedStyle
	if input.CSS != "" {
		cssContent += "\n" + input.CSS
	}
	htmlContent = e.cssInjector.InjectCSS(ctx, htmlContent, cssContent)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Load the template set for this target (exporter default when the
	// target declares none).
	setName := input.Template
	if setName == "" {
		setName = e.cfg.templateSet
	}
	inj, err := e.templateInjectorsFor(setName)
	if err != nil {
		return nil, fmt.Errorf("loading template set %q: %w", setName, err)
	}

	// Inject title block from front matter
	htmlContent, err = inj.titleBlock.InjectTitleBlock(ctx, htmlContent, titleBlockData(doc))
	if err != nil {
		return nil, fmt.Errorf("injecting title block: %w", err)
	}

	// Inject references for cited entries, in order of first citation
	htmlContent, err = inj.references.InjectReferences(ctx, htmlContent, referencesData(doc, bib))
	if err != nil {
		return nil, fmt.Errorf("injecting references: %w", err)
	}

	res := &ExportResult{
		HTML: []byte(htmlContent),
	}

	if input.HTMLOnly {
		return res, nil
	}

	pdfBytes, err := e.pdfConverter.ToPDF(ctx, htmlContent, &pdfOptions{
		Page:   input.Page,
		Footer: input.Footer,
	})
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}

	res.PDF = pdfBytes
	return res, nil
}

// ExportAll renders every export target declared in the document's front
// matter. Output paths resolve against the document directory; writing the
// returned data is the caller's responsibility.
//
// base supplies per-run settings shared by all targets (CSS, page, footer);
// its Document, Template, and HTMLOnly fields are set per target and may be
// left zero. A document with no export declarations yields one implicit PDF
// target named after the source file.
func (e *Exporter) ExportAll(ctx context.Context, doc *Document, base Input) ([]TargetResult, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	exports := doc.Meta.Exports
	if len(exports) == 0 {
		exports = implicitExports(doc)
	}

	var results []TargetResult
	for i, exp := range exports {
		format := strings.ToLower(exp.Format)
		if !isSupportedFormat(format) {
			return results, fmt.Errorf("exports[%d]: %w: %q", i, ErrUnsupportedFormat, exp.Format)
		}
		if exp.Output == "" {
			return results, fmt.Errorf("exports[%d]: %w", i, ErrMissingOutputPath)
		}

		input := base
		input.Document = doc
		input.Template = exp.Template
		input.HTMLOnly = format == FormatHTML

		res, err := e.Export(ctx, input)
		if err != nil {
			return results, fmt.Errorf("exports[%d] (%s): %w", i, format, err)
		}

		data := res.PDF
		if format == FormatHTML {
			data = res.HTML
		}

		template := exp.Template
		if template == "" {
			template = e.cfg.templateSet
		}

		results = append(results, TargetResult{
			Format:     format,
			Template:   template,
			OutputPath: resolveDocPath(doc, exp.Output),
			Data:       data,
		})
	}

	return results, nil
}

// Close releases resources (headless Chrome browser).
func (e *Exporter) Close() error {
	if e.pdfConverter != nil {
		return e.pdfConverter.Close()
	}
	return nil
}

// implicitExports builds the default target for documents that declare none:
// a PDF next to the source file.
func implicitExports(doc *Document) []frontmatter.Export {
	name := "document.pdf"
	if doc.Path != "" {
		base := filepath.Base(doc.Path)
		name = strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
	}
	return []frontmatter.Export{{Format: FormatPDF, Output: name}}
}

// templateInjectorsFor returns cached injectors for a template set,
// loading and parsing the set on first use.
func (e *Exporter) templateInjectorsFor(name string) (*templateInjectors, error) {
	if inj, ok := e.injectors[name]; ok {
		return inj, nil
	}

	set, err := e.assetLoader.LoadTemplateSet(name)
	if err != nil {
		return nil, err
	}

	titleBlock, err := pipeline.NewTitleBlockInjection(set.TitleBlock)
	if err != nil {
		return nil, fmt.Errorf("initializing title block injector: %w", err)
	}
	references, err := pipeline.NewReferencesInjection(set.References)
	if err != nil {
		return nil, fmt.Errorf("initializing references injector: %w", err)
	}

	inj := &templateInjectors{titleBlock: titleBlock, references: references}
	e.injectors[name] = inj
	return inj, nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS
// content. Called during NewExporter after options are applied and the asset
// loader is configured.
func (e *Exporter) resolveStyle() error {
	input := e.cfg.styleInput
	if input == "" {
		css, err := e.assetLoader.LoadStyle(assets.DefaultStyleName)
		if err != nil {
			return fmt.Errorf("loading default style: %w", err)
		}
		e.cfg.resolvedStyle = css
		return nil
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		e.cfg.resolvedStyle = string(content)
		return nil
	}

	// CSS content? (contains {)
	if fileutil.IsCSS(input) {
		e.cfg.resolvedStyle = input
		return nil
	}

	// Style name -> use asset loader
	css, err := e.assetLoader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, err)
	}
	e.cfg.resolvedStyle = css
	return nil
}

// validateInput checks that required fields are present and valid.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI users have their input validated earlier at config load time. Both
// paths converge here, ensuring all inputs are validated before processing.
func (e *Exporter) validateInput(input Input) error {
	if input.Document == nil {
		return ErrNilDocument
	}
	if input.Document.Empty() {
		return ErrEmptyDocument
	}
	if err := input.Page.Validate(); err != nil {
		return err
	}
	if err := input.Footer.Validate(); err != nil {
		return err
	}
	return nil
}

// loadBibliography loads the bibliography declared in front matter. Missing
// or unreadable files are skipped: rendering leaves their keys as written,
// and the checker is responsible for reporting them.
func (e *Exporter) loadBibliography(doc *Document) *bibliography.Bibliography {
	bib := bibliography.New()
	for _, path := range doc.Meta.Bibliography {
		loaded, err := bibliography.Load(resolveDocPath(doc, path))
		if err != nil {
			continue
		}
		bib.Merge(loaded)
	}
	return bib
}

// figureDir returns the effective figure asset directory for doc.
func (e *Exporter) figureDir(doc *Document) string {
	if e.cfg.figureDir != "" {
		return e.cfg.figureDir
	}
	if doc.Dir() == "" {
		return ""
	}
	return filepath.Join(doc.Dir(), DefaultFigureDirName)
}

// figureSrcFor maps a directive target to an image src. Assets under the
// document directory stay relative so the path rewriter handles them; assets
// elsewhere become file:// URLs directly.
func figureSrcFor(doc *Document, figureDir, target string) (string, bool) {
	asset, ok := ResolveFigureAsset(figureDir, target)
	if !ok {
		return "", false
	}

	if doc.Dir() != "" {
		if rel, err := filepath.Rel(doc.Dir(), asset); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel), true
		}
	}

	abs, err := filepath.Abs(asset)
	if err != nil {
		return "", false
	}
	return "file://" + filepath.ToSlash(abs), true
}

// titleBlockData builds the title block data from front matter. Returns nil
// when the document has no title-page metadata at all.
func titleBlockData(doc *Document) *pipeline.TitleBlockData {
	meta := doc.Meta
	if meta.Title == "" && meta.Subtitle == "" && len(meta.Authors) == 0 &&
		meta.Date == "" && meta.Abstract == "" {
		return nil
	}

	authors := make([]pipeline.AuthorData, len(meta.Authors))
	for i, a := range meta.Authors {
		authors[i] = pipeline.AuthorData{
			Name:        a.Name,
			Affiliation: a.Affiliation,
			Email:       a.Email,
		}
	}

	return &pipeline.TitleBlockData{
		Title:    meta.Title,
		Subtitle: meta.Subtitle,
		Authors:  authors,
		Date:     meta.Date,
		Abstract: meta.Abstract,
	}
}

// referencesData builds the cited-works list: every resolved key in order of
// first citation. Unresolved keys are omitted; nil is returned when nothing
// resolved so the references section is skipped entirely.
func referencesData(doc *Document, bib *bibliography.Bibliography) *pipeline.ReferencesData {
	cites := myst.ScanCitations(string(doc.Body))
	if len(cites) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var entries []pipeline.ReferenceEntry
	for _, cite := range cites {
		if seen[cite.Key] {
			continue
		}
		seen[cite.Key] = true

		entry, ok := bib.Entry(cite.Key)
		if !ok {
			continue
		}
		entries = append(entries, pipeline.ReferenceEntry{
			Key:  cite.Key,
			Text: formatReference(entry),
		})
	}

	if len(entries) == 0 {
		return nil
	}
	return &pipeline.ReferencesData{Title: "References", Entries: entries}
}

// formatReference renders one entry as "Author (Year). Title. Venue."
// with absent fields skipped.
func formatReference(entry bibliography.Entry) string {
	var parts []string

	author := entry.Fields["author"]
	year := entry.Fields["year"]
	switch {
	case author != "" && year != "":
		parts = append(parts, fmt.Sprintf("%s (%s).", formatAuthors(author), year))
	case author != "":
		parts = append(parts, formatAuthors(author)+".")
	case year != "":
		parts = append(parts, fmt.Sprintf("(%s).", year))
	}

	if title := entry.Title(); title != "" {
		parts = append(parts, title+".")
	}

	if venue := entryVenue(entry); venue != "" {
		parts = append(parts, venue+".")
	}

	if len(parts) == 0 {
		return entry.Key
	}
	return strings.Join(parts, " ")
}

// formatAuthors joins BibTeX "and"-separated authors with commas.
func formatAuthors(author string) string {
	names := strings.Split(author, " and ")
	for i, n := range names {
		names[i] = strings.TrimSpace(n)
	}
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// entryVenue picks the most specific publication venue field present.
func entryVenue(entry bibliography.Entry) string {
	for _, field := range []string{"journal", "booktitle", "publisher", "institution", "school"} {
		if v := entry.Fields[field]; v != "" {
			return v
		}
	}
	return ""
}
