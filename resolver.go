package myst2pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhconning/myst2pdf/internal/assets"
	"github.com/jhconning/myst2pdf/internal/bibliography"
	"github.com/jhconning/myst2pdf/internal/myst"
)

// figureExtensions are the asset extensions tried, in order, when resolving
// a figure target against the figure directory.
var figureExtensions = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp"}

// DefaultFigureDirName is the directory next to the document source where
// figure assets live by default.
const DefaultFigureDirName = "figures"

// Problem kinds reported by the checker.
const (
	ProblemMissingCitation     = "missing-citation"
	ProblemMissingFigure       = "missing-figure"
	ProblemDuplicateLabel      = "duplicate-label"
	ProblemBadExport           = "bad-export"
	ProblemMissingBibliography = "missing-bibliography"
)

// Problem is one unresolved reference or invalid declaration found by Check.
type Problem struct {
	Kind    string // one of the Problem* constants
	Subject string // citation key, figure target, label, or export index
	Line    int    // 1-based body line, 0 when not applicable
	Detail  string // human-readable description
}

// String formats a problem for check output.
func (p Problem) String() string {
	if p.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", p.Line, p.Kind, p.Detail)
	}
	return fmt.Sprintf("%s: %s", p.Kind, p.Detail)
}

// Report is the outcome of checking one document.
type Report struct {
	Problems []Problem

	// Citations and Figures are the scanned references, resolved or not,
	// so callers can print summary counts.
	Citations int
	Figures   int
}

// Clean reports whether every reference resolved.
func (r *Report) Clean() bool {
	return len(r.Problems) == 0
}

// Err returns ErrUnresolvedReferences wrapping the problem count, or nil
// for a clean report. Used by strict mode.
func (r *Report) Err() error {
	if r.Clean() {
		return nil
	}
	return fmt.Errorf("%w: %d problem(s)", ErrUnresolvedReferences, len(r.Problems))
}

// Checker resolves a document's references against its bibliography and
// figure assets without rendering anything.
type Checker struct {
	// FigureDir overrides the figure asset directory. Empty means the
	// "figures" directory next to the document.
	FigureDir string

	// AssetPath is a custom style/template directory, matching the
	// exporter's WithAssetPath. Declared template sets resolve against
	// it with embedded fallback; empty means embedded sets only.
	AssetPath string
}

// Check scans doc for citations, figure directives, and export declarations
// and reports everything that does not resolve. It never fails on content;
// only I/O problems (an unreadable bibliography file) surface as errors, and
// a missing bibliography file is itself reported as a problem, not an error.
func (c *Checker) Check(doc *Document) (*Report, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	loader, err := c.templateLoader()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	body := string(doc.Body)

	bib, bibProblems := c.loadBibliography(doc)
	report.Problems = append(report.Problems, bibProblems...)

	cites := myst.ScanCitations(body)
	report.Citations = len(cites)
	seen := make(map[string]bool)
	for _, cite := range cites {
		if bib.Has(cite.Key) || seen[cite.Key] {
			continue
		}
		seen[cite.Key] = true
		report.Problems = append(report.Problems, Problem{
			Kind:    ProblemMissingCitation,
			Subject: cite.Key,
			Line:    cite.Line,
			Detail:  fmt.Sprintf("citation key %q not found in bibliography", cite.Key),
		})
	}

	figures := myst.ScanFigures(body)
	report.Figures = len(figures)
	report.Problems = append(report.Problems, c.checkFigures(doc, figures)...)
	report.Problems = append(report.Problems, checkExports(doc, loader)...)

	return report, nil
}

// loadBibliography loads the bibliography files declared in front matter,
// resolving relative paths against the document directory. Missing files
// become problems; the remaining files still load.
func (c *Checker) loadBibliography(doc *Document) (*bibliography.Bibliography, []Problem) {
	bib := bibliography.New()
	var problems []Problem

	for _, path := range doc.Meta.Bibliography {
		resolved := resolveDocPath(doc, path)
		loaded, err := bibliography.Load(resolved)
		if err != nil {
			problems = append(problems, Problem{
				Kind:    ProblemMissingBibliography,
				Subject: path,
				Detail:  fmt.Sprintf("bibliography %q: %v", path, err),
			})
			continue
		}
		bib.Merge(loaded)
	}

	return bib, problems
}

// checkFigures verifies each directive's asset exists and labels are unique.
func (c *Checker) checkFigures(doc *Document, figures []myst.FigureDirective) []Problem {
	var problems []Problem
	labels := make(map[string]int)

	for _, fig := range figures {
		if _, ok := ResolveFigureAsset(c.figureDir(doc), fig.Target); !ok {
			problems = append(problems, Problem{
				Kind:    ProblemMissingFigure,
				Subject: fig.Target,
				Line:    fig.Line,
				Detail:  fmt.Sprintf("no asset for figure target %q (tried %s)", fig.Target, strings.Join(figureExtensions, ", ")),
			})
		}

		if fig.Label == "" {
			continue
		}
		if first, dup := labels[fig.Label]; dup {
			problems = append(problems, Problem{
				Kind:    ProblemDuplicateLabel,
				Subject: fig.Label,
				Line:    fig.Line,
				Detail:  fmt.Sprintf("label %q already used on line %d", fig.Label, first),
			})
			continue
		}
		labels[fig.Label] = fig.Line
	}

	return problems
}

// figureDir returns the effective figure asset directory for doc.
func (c *Checker) figureDir(doc *Document) string {
	if c.FigureDir != "" {
		return c.FigureDir
	}
	return filepath.Join(doc.Dir(), DefaultFigureDirName)
}

// templateLoader builds the asset loader used to validate declared
// template sets, mirroring the exporter's WithAssetPath resolution.
func (c *Checker) templateLoader() (assets.AssetLoader, error) {
	if c.AssetPath == "" {
		return assets.NewEmbeddedLoader(), nil
	}
	resolver, err := assets.NewAssetResolver(c.AssetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	return resolver, nil
}

// checkExports validates the declared export targets. A named template
// set must load with the same loader the exporter would use, so a
// check-clean document cannot fail at export time on its export block.
func checkExports(doc *Document, loader assets.AssetLoader) []Problem {
	var problems []Problem
	for i, exp := range doc.Meta.Exports {
		subject := fmt.Sprintf("exports[%d]", i)
		if !isSupportedFormat(exp.Format) {
			problems = append(problems, Problem{
				Kind:    ProblemBadExport,
				Subject: subject,
				Detail:  fmt.Sprintf("%s: unsupported format %q", subject, exp.Format),
			})
		}
		if exp.Output == "" {
			problems = append(problems, Problem{
				Kind:    ProblemBadExport,
				Subject: subject,
				Detail:  fmt.Sprintf("%s: missing output path", subject),
			})
		}
		if exp.Template != "" {
			if _, err := loader.LoadTemplateSet(exp.Template); err != nil {
				problems = append(problems, Problem{
					Kind:    ProblemBadExport,
					Subject: subject,
					Detail:  fmt.Sprintf("%s: template set %q: %v", subject, exp.Template, err),
				})
			}
		}
	}
	return problems
}

// isSupportedFormat reports whether format names a renderable export format.
func isSupportedFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatPDF, FormatHTML:
		return true
	}
	return false
}

// ResolveFigureAsset finds the asset file for a figure target by trying
// each known image extension under dir. Returns the full path and whether
// an asset was found.
func ResolveFigureAsset(dir, target string) (string, bool) {
	if dir == "" {
		return "", false
	}
	for _, ext := range figureExtensions {
		path := filepath.Join(dir, target+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// resolveDocPath resolves a front matter path against the document
// directory. Absolute paths pass through.
func resolveDocPath(doc *Document, path string) string {
	if filepath.IsAbs(path) || doc.Dir() == "" {
		return path
	}
	return filepath.Join(doc.Dir(), path)
}
