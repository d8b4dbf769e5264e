package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// Sentinel errors for template rendering.
var (
	ErrTitleBlockRender = errors.New("title block template rendering failed")
	ErrReferencesRender = errors.New("references template rendering failed")
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
// CSS content is sanitized to prevent injection attacks.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	if ctx.Err() != nil {
		return htmlContent
	}

	sanitizedCSS := sanitizeCSS(cssContent)
	styleBlock := "<style>" + sanitizedCSS + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	// Try inserting before </head>
	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	// Try inserting after <body>
	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		closeIdx := strings.Index(htmlContent[idx:], ">")
		if closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	// Fallback: prepend
	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// AuthorData is one author line in the title block.
type AuthorData struct {
	Name        string
	Affiliation string
	Email       string
}

// TitleBlockData holds document metadata for the title block template.
type TitleBlockData struct {
	Title    string
	Subtitle string
	Authors  []AuthorData
	Date     string
	Abstract string
}

// TitleBlockInjector defines the contract for title block injection.
type TitleBlockInjector interface {
	InjectTitleBlock(ctx context.Context, htmlContent string, data *TitleBlockData) (string, error)
}

// TitleBlockInjection renders and injects a title block into HTML content.
type TitleBlockInjection struct {
	tmpl *template.Template
}

// NewTitleBlockInjection creates a TitleBlockInjection from template content.
// Returns error if the template cannot be parsed.
func NewTitleBlockInjection(tmplContent string) (*TitleBlockInjection, error) {
	tmpl, err := template.New("titleblock").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing title block template: %w", err)
	}

	return &TitleBlockInjection{tmpl: tmpl}, nil
}

// InjectTitleBlock renders the title block template and injects it after
// <body>. If data is nil, returns htmlContent unchanged.
func (t *TitleBlockInjection) InjectTitleBlock(ctx context.Context, htmlContent string, data *TitleBlockData) (string, error) {
	if data == nil {
		return htmlContent, nil
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTitleBlockRender, err)
	}

	blockHTML := buf.String()
	lowerHTML := strings.ToLower(htmlContent)

	// Try inserting after <body>
	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		closeIdx := strings.Index(htmlContent[idx:], ">")
		if closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + blockHTML + htmlContent[insertPos:], nil
		}
	}

	// Fallback: prepend
	return blockHTML + htmlContent, nil
}

// ReferenceEntry is one rendered entry in the references list.
type ReferenceEntry struct {
	Key  string // citation key, used for the #ref-{key} anchor
	Text string // formatted reference text
}

// ReferencesData holds the cited-works list for the references template.
type ReferencesData struct {
	Title   string
	Entries []ReferenceEntry
}

// ReferencesInjector defines the contract for references injection.
type ReferencesInjector interface {
	InjectReferences(ctx context.Context, htmlContent string, data *ReferencesData) (string, error)
}

// ReferencesInjection renders and injects a references section into HTML.
type ReferencesInjection struct {
	tmpl *template.Template
}

// NewReferencesInjection creates a ReferencesInjection from template content.
// Returns error if the template cannot be parsed.
func NewReferencesInjection(tmplContent string) (*ReferencesInjection, error) {
	tmpl, err := template.New("references").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing references template: %w", err)
	}

	return &ReferencesInjection{tmpl: tmpl}, nil
}

// InjectReferences renders the references template and injects it before
// </body>. If data is nil or has no entries, returns htmlContent unchanged.
func (r *ReferencesInjection) InjectReferences(ctx context.Context, htmlContent string, data *ReferencesData) (string, error) {
	if data == nil || len(data.Entries) == 0 {
		return htmlContent, nil
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrReferencesRender, err)
	}

	refsHTML := buf.String()
	lowerHTML := strings.ToLower(htmlContent)

	// Try inserting before </body>
	if idx := strings.Index(lowerHTML, "</body>"); idx != -1 {
		return htmlContent[:idx] + refsHTML + htmlContent[idx:], nil
	}

	// Fallback: append to end
	return htmlContent + refsHTML, nil
}
