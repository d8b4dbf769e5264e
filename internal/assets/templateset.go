package assets

// TemplateSet holds the HTML templates for one export template.
// A set pairs the title block rendered at the top of the document with the
// references list appended after the body.
type TemplateSet struct {
	Name       string // Identifier (name or directory path)
	TitleBlock string // Title/authors/date/abstract template HTML
	References string // Cited-works list template HTML
}

// DefaultTemplateSetName is the name of the built-in template set used when
// an export target declares no template.
const DefaultTemplateSetName = "paper"

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "paper"
