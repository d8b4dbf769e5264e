package myst2pdf

import (
	"fmt"
	"strings"
	"time"
)

// Export format constants.
const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
// Does not mutate - uses case-insensitive comparison.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// isValidPageSize checks if size is a known page size (case-insensitive).
func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
		return true
	}
	return false
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// Footer configures the PDF footer.
type Footer struct {
	Position       string // "left", "center", "right" (default: "right")
	ShowPageNumber bool
	Date           string
	Text           string
}

// Validate checks that footer settings are valid.
// Returns nil if f is nil (nil means no footer).
func (f *Footer) Validate() error {
	if f == nil {
		return nil
	}
	switch strings.ToLower(f.Position) {
	case "", "left", "center", "right":
		return nil
	default:
		return fmt.Errorf("%w: %q (must be left, center, or right)", ErrInvalidFooterPosition, f.Position)
	}
}

// Input contains export parameters for a single render.
type Input struct {
	Document *Document     // Parsed document (required)
	Template string        // Template set name ("" = exporter default)
	CSS      string        // Extra CSS appended after the style (optional)
	Page     *PageSettings // Page settings (optional, nil = defaults)
	Footer   *Footer       // Footer config (optional)
	HTMLOnly bool          // Skip PDF generation (for html exports and debugging)
}

// ExportResult contains the rendered outputs. HTML is always present;
// PDF is nil when Input.HTMLOnly was set.
type ExportResult struct {
	HTML []byte
	PDF  []byte
}

// TargetResult is the outcome of rendering one declared export target.
type TargetResult struct {
	Format     string // "pdf" or "html"
	Template   string // template set actually used
	OutputPath string // resolved destination path
	Data       []byte // bytes to write at OutputPath
}

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	timeout       time.Duration
	styleInput    string // name, path, or CSS content
	resolvedStyle string // resolved CSS content
	assetPath     string // custom asset directory
	figureDir     string // figure asset directory override
	templateSet   string // default template set name
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the PDF generation timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("myst2pdf: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithStyle sets the CSS style. Accepts a built-in style name ("paper"),
// a path to a CSS file, or raw CSS content.
func WithStyle(style string) Option {
	return func(e *Exporter) {
		e.cfg.styleInput = style
	}
}

// WithAssetPath sets a custom asset directory. Assets found there override
// the embedded built-ins; anything missing falls back to embedded.
func WithAssetPath(path string) Option {
	return func(e *Exporter) {
		e.cfg.assetPath = path
	}
}

// WithFigureDir overrides the figure asset directory. The default is the
// "figures" directory next to the document source.
func WithFigureDir(dir string) Option {
	return func(e *Exporter) {
		e.cfg.figureDir = dir
	}
}

// WithTemplateSet sets the default template set used when an export target
// declares none.
func WithTemplateSet(name string) Option {
	return func(e *Exporter) {
		e.cfg.templateSet = name
	}
}
