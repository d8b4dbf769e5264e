package pipeline

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/jhconning/myst2pdf/internal/myst"
)

// Placeholders use Unicode Private Use Area characters. They pass through
// Goldmark unchanged (no WithUnsafe needed) and are converted to real markup
// after HTML generation.
const (
	MarkStartPlaceholder = "\uE000" // ==highlight== start
	MarkEndPlaceholder   = "\uE001" // ==highlight== end
	FigStartPlaceholder  = "\uE002" // figure token start
	FigEndPlaceholder    = "\uE003" // figure token end
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Highlight syntax ==text==
	highlightPattern = regexp.MustCompile(`==(.*?)==`)

	// Figure token in rendered HTML, optionally wrapped in its own <p>.
	figTokenPattern = regexp.MustCompile(`(?:<p>)?` + FigStartPlaceholder + `(\d+)` + FigEndPlaceholder + `(?:</p>)?`)
)

// PreprocessOptions supplies the lookups the preprocessor needs to rewrite
// references. Nil funcs disable the corresponding rewrite.
type PreprocessOptions struct {
	// FigureSrc maps a directive target ("fig-plotA") to an image path or
	// URL. Returning ok=false renders a missing-asset marker instead.
	FigureSrc func(target string) (string, bool)

	// CiteLabel maps a citation key to its display label. Keys that do not
	// resolve are left as written for the checker to report.
	CiteLabel func(key string) (string, bool)
}

// Preprocessed is the outcome of MyST preprocessing: CommonMark-safe
// markdown plus the figure HTML fragments to re-inject after conversion.
type Preprocessed struct {
	Markdown string
	Figures  []string // indexed by placeholder token
}

// Preprocessor defines the contract for MyST preprocessing.
type Preprocessor interface {
	Preprocess(ctx context.Context, content string, opts PreprocessOptions) Preprocessed
}

// MySTPreprocessor rewrites MyST constructs into CommonMark that Goldmark
// can convert: figure directives become placeholder tokens, citations become
// markdown links, highlights become placeholder pairs.
type MySTPreprocessor struct{}

// Preprocess applies all transformations. Order matters: line endings first
// (directive scanning assumes \n), then figures (offsets refer to the
// normalized text), then citations, then cosmetic fixes.
func (p *MySTPreprocessor) Preprocess(ctx context.Context, content string, opts PreprocessOptions) Preprocessed {
	if ctx.Err() != nil {
		return Preprocessed{Markdown: content}
	}

	content = normalizeLineEndings(content)

	var figures []string
	content, figures = extractFigures(content, opts.FigureSrc)

	if opts.CiteLabel != nil {
		content = myst.RewriteCitations(content, opts.CiteLabel)
	}

	content = convertHighlights(content)
	content = compressBlankLines(content)

	return Preprocessed{Markdown: content, Figures: figures}
}

// extractFigures replaces each figure directive with a placeholder token and
// collects the corresponding HTML fragments.
func extractFigures(content string, figureSrc func(string) (string, bool)) (string, []string) {
	directives := myst.ScanFigures(content)
	if len(directives) == 0 {
		return content, nil
	}

	var out strings.Builder
	var figures []string
	prev := 0

	for _, fig := range directives {
		out.WriteString(content[prev:fig.Start])

		token := FigStartPlaceholder + strconv.Itoa(len(figures)) + FigEndPlaceholder
		figures = append(figures, buildFigureHTML(fig, figureSrc))
		out.WriteString(token)

		prev = fig.End
	}
	out.WriteString(content[prev:])

	return out.String(), figures
}

// buildFigureHTML renders one directive as <figure> markup.
// A directive with remove-output set renders nothing: the figure was only
// meant to appear in interactive output, not the exported document. With
// remove-input set the caption (the directive's source text) is dropped
// but the image itself is kept.
func buildFigureHTML(fig myst.FigureDirective, figureSrc func(string) (string, bool)) string {
	if fig.RemoveOutput {
		return ""
	}

	id := fig.Label
	if id == "" {
		id = fig.Target
	}

	var src string
	ok := false
	if figureSrc != nil {
		src, ok = figureSrc(fig.Target)
	}
	if !ok {
		return fmt.Sprintf(`<figure id=%q><div class="figure-missing">missing figure asset: %s</div></figure>`,
			html.EscapeString(id), html.EscapeString(fig.Target))
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, `<figure id=%q>`, html.EscapeString(id))
	fmt.Fprintf(&buf, `<img src=%q alt=%q />`, src, html.EscapeString(fig.Alt))
	if fig.Caption != "" && !fig.RemoveInput {
		fmt.Fprintf(&buf, `<figcaption>%s</figcaption>`, html.EscapeString(fig.Caption))
	}
	buf.WriteString(`</figure>`)
	return buf.String()
}

// ReplaceFigurePlaceholders swaps figure tokens in converted HTML for their
// markup. Goldmark wraps a token standing alone in a paragraph; the wrapping
// <p> is removed since <figure> is block-level.
func ReplaceFigurePlaceholders(htmlContent string, figures []string) string {
	if len(figures) == 0 {
		return htmlContent
	}
	return figTokenPattern.ReplaceAllStringFunc(htmlContent, func(match string) string {
		m := figTokenPattern.FindStringSubmatch(match)
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 0 || idx >= len(figures) {
			return match
		}
		return figures[idx]
	})
}

// ConvertMarkPlaceholders converts highlight placeholder markers to <mark>
// tags. Called after HTML conversion to finalize the ==highlight== feature
// while keeping Goldmark secure (no WithUnsafe).
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertHighlights transforms ==text== to placeholder markers.
func convertHighlights(content string) string {
	return highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}
