// Package myst scans MyST-flavored markdown for the constructs this tool
// resolves: figure-embed directives and citation keys. Scanning produces
// flat records with source positions; it never mutates the body.
package myst

import (
	"regexp"
	"strings"
)

// FigureDirective is a figure-embed instruction from the document body.
// Target identifies the external figure asset ("fig-plotA" for "#fig-plotA");
// Label is the cross-reference anchor; RemoveInput and RemoveOutput are the
// rendering toggles carried on the directive.
type FigureDirective struct {
	Target       string
	Label        string
	Alt          string
	Caption      string
	RemoveInput  bool
	RemoveOutput bool

	Line  int // 1-based line of the directive opener
	Start int // byte offset of the directive in the body
	End   int // byte offset just past the directive
}

// figureFence matches a directive opener: ":::{figure} #fig-x" or the
// backtick-fenced equivalent. The fence may be longer than three characters.
var figureFence = regexp.MustCompile("^(:{3,}|`{3,})\\{figure\\}\\s*(\\S+)\\s*$")

// figureEmbed matches the inline embed shorthand ![alt](#fig-x).
var figureEmbed = regexp.MustCompile(`!\[([^\]]*)\]\(#([A-Za-z0-9_][A-Za-z0-9_-]*)\)`)

// optionLine matches a directive option ":name:" or ":name: value".
var optionLine = regexp.MustCompile(`^:([A-Za-z][A-Za-z0-9-]*):\s*(.*)$`)

// codeFence matches a fenced code block opener, capturing the fence run.
var codeFence = regexp.MustCompile("^(`{3,}|~{3,})")

// ScanFigures returns all figure directives in body, in source order.
// Both fenced directive blocks and the ![alt](#fig-x) embed shorthand are
// recognized. Content inside plain code fences is skipped.
func ScanFigures(body string) []FigureDirective {
	var figures []FigureDirective

	lines := strings.Split(body, "\n")
	offsets := lineOffsets(lines)
	var openFence string

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		// Inside a code fence only the matching closer matters; a literal
		// directive or fence line in code content must not be scanned.
		if openFence != "" {
			if isClosingFence(line, openFence) {
				openFence = ""
			}
			continue
		}

		if m := figureFence.FindStringSubmatch(line); m != nil {
			fig, next := scanDirectiveBlock(lines, offsets, i, m, len(body))
			figures = append(figures, fig)
			i = next
			continue
		}

		if m := codeFence.FindStringSubmatch(line); m != nil {
			openFence = m[1]
			continue
		}

		for _, m := range figureEmbed.FindAllStringSubmatchIndex(line, -1) {
			figures = append(figures, FigureDirective{
				Target: line[m[4]:m[5]],
				Alt:    line[m[2]:m[3]],
				Line:   i + 1,
				Start:  offsets[i] + m[0],
				End:    offsets[i] + m[1],
			})
		}
	}

	return figures
}

// scanDirectiveBlock parses one fenced figure directive starting at line i.
// Returns the directive and the index of its closing fence line (or the last
// line if the fence is never closed).
func scanDirectiveBlock(lines []string, offsets []int, i int, opener []string, bodyLen int) (FigureDirective, int) {
	fence := opener[1]
	fig := FigureDirective{
		Target: strings.TrimPrefix(opener[2], "#"),
		Line:   i + 1,
		Start:  offsets[i],
	}

	var captionLines []string
	inOptions := true
	last := len(lines) - 1

	for j := i + 1; j < len(lines); j++ {
		inner := lines[j]
		if isClosingFence(inner, fence) {
			fig.End = offsets[j] + len(inner)
			fig.Caption = strings.TrimSpace(strings.Join(captionLines, "\n"))
			return fig, j
		}
		if inOptions {
			if om := optionLine.FindStringSubmatch(strings.TrimSpace(inner)); om != nil {
				applyOption(&fig, om[1], om[2])
				continue
			}
			inOptions = false
		}
		captionLines = append(captionLines, inner)
	}

	// Unterminated directive: consume to end of body.
	fig.End = bodyLen
	fig.Caption = strings.TrimSpace(strings.Join(captionLines, "\n"))
	return fig, last
}

// lineOffsets returns the byte offset of each line in the joined text.
func lineOffsets(lines []string) []int {
	offsets := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		offsets[i] = offset
		offset += len(line) + 1
	}
	return offsets
}

// isClosingFence reports whether line closes a directive opened with fence.
// The closer must use the same character and be at least as long.
func isClosingFence(line, fence string) bool {
	trimmed := strings.TrimRight(line, " \t")
	if len(trimmed) < len(fence) {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != fence[0] {
			return false
		}
	}
	return true
}

// applyOption sets a directive option by name. Unknown options are ignored;
// documents carry options aimed at other renderers (width, align).
func applyOption(fig *FigureDirective, name, value string) {
	switch name {
	case "label", "name":
		fig.Label = value
	case "alt":
		fig.Alt = value
	case "remove-input":
		fig.RemoveInput = parseFlag(value)
	case "remove-output":
		fig.RemoveOutput = parseFlag(value)
	}
}

// parseFlag interprets a directive boolean. A bare option (no value)
// means true, matching MyST semantics.
func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "true", "yes", "1":
		return true
	default:
		return false
	}
}
