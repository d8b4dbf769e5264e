// Package frontmatter splits MyST documents into their YAML front matter
// block and markdown body, and decodes the block into typed metadata.
//
// The raw block bytes are preserved exactly as read so a loaded document can
// be re-serialized byte-for-byte. Parsing never mutates the source.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jhconning/myst2pdf/internal/yamlutil"
)

// Sentinel errors for front matter operations.
var (
	ErrUnterminatedBlock = errors.New("front matter block not terminated")
	ErrBlockParse        = errors.New("failed to parse front matter")
)

// delimiter marks the start and end of a front matter block.
var delimiter = []byte("---")

// Meta holds the typed front matter fields this tool consumes.
// Unknown fields are tolerated: documents legitimately carry metadata
// (keywords, license, numbering options) aimed at other tools.
type Meta struct {
	Title        string     `yaml:"title"`
	Subtitle     string     `yaml:"subtitle"`
	Date         string     `yaml:"date"`
	Abstract     string     `yaml:"abstract"`
	Authors      []Author   `yaml:"authors"`
	Bibliography StringList `yaml:"bibliography"`
	Exports      []Export   `yaml:"exports"`
}

// Author identifies a document author. In MyST sources an author may be a
// bare string or a mapping with name/affiliation/email.
type Author struct {
	Name        string `yaml:"name"`
	Affiliation string `yaml:"affiliation"`
	Email       string `yaml:"email"`
}

// UnmarshalYAML accepts either a scalar author name or a full mapping.
func (a *Author) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err == nil {
		a.Name = name
		return nil
	}

	type plain Author
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*a = Author(p)
	return nil
}

// Export declares one (format, template, output-path) target for the
// renderer. Format and template validity is checked by the resolver, not
// here; parsing stays total so check reports can list every problem.
type Export struct {
	Format   string `yaml:"format"`
	Template string `yaml:"template"`
	Output   string `yaml:"output"`
}

// StringList accepts either a scalar string or a sequence of strings.
// MyST front matter allows `bibliography: references.bib` and the list form
// interchangeably.
type StringList []string

// UnmarshalYAML implements scalar-or-sequence decoding.
func (s *StringList) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = StringList{single}
		return nil
	}

	var many []string
	if err := unmarshal(&many); err != nil {
		return err
	}
	*s = StringList(many)
	return nil
}

// Split separates src into the raw front matter block (including delimiter
// lines and their trailing newlines) and the body. If src has no front
// matter, block is nil and body is src unchanged.
//
// A front matter block must start on the first line. Returns
// ErrUnterminatedBlock if the opening delimiter is never closed.
func Split(src []byte) (block, body []byte, err error) {
	if !isDelimiterLine(firstLine(src)) {
		return nil, src, nil
	}

	// Scan past the opening delimiter line
	offset := lineLength(src)
	rest := src[offset:]

	for len(rest) > 0 {
		line := firstLine(rest)
		n := lineLength(rest)
		if isDelimiterLine(line) {
			end := offset + n
			return src[:end], src[end:], nil
		}
		offset += n
		rest = src[offset:]
	}

	return nil, nil, ErrUnterminatedBlock
}

// Parse splits src and decodes the front matter block into Meta.
// The returned block preserves the exact source bytes for round-tripping.
func Parse(src []byte) (meta Meta, block, body []byte, err error) {
	block, body, err = Split(src)
	if err != nil {
		return Meta{}, nil, nil, err
	}
	if len(block) == 0 {
		return Meta{}, nil, body, nil
	}

	yamlBytes := stripDelimiters(block)
	if len(bytes.TrimSpace(yamlBytes)) == 0 {
		return Meta{}, block, body, nil
	}

	if err := yamlutil.Unmarshal(yamlBytes, &meta); err != nil {
		return Meta{}, nil, nil, fmt.Errorf("%w: %v", ErrBlockParse, err)
	}
	return meta, block, body, nil
}

// stripDelimiters removes the opening and closing delimiter lines from a
// raw block, leaving only the YAML payload. The closing delimiter is always
// the final line of the block, so this cuts the first and last lines rather
// than searching for "---", which could also appear inside a YAML value.
func stripDelimiters(block []byte) []byte {
	payload := block[lineLength(block):]

	trimmed := bytes.TrimRight(payload, "\r\n")
	idx := bytes.LastIndexByte(trimmed, '\n')
	if idx < 0 {
		return nil // payload is only the closing delimiter line
	}
	return payload[:idx+1]
}

// isDelimiterLine reports whether a line is exactly "---" ignoring
// trailing whitespace and line endings.
func isDelimiterLine(line []byte) bool {
	trimmed := bytes.TrimRight(line, " \t\r\n")
	return bytes.Equal(trimmed, delimiter)
}

// firstLine returns the first line of b without its line ending.
func firstLine(b []byte) []byte {
	if idx := bytes.IndexByte(b, '\n'); idx >= 0 {
		return b[:idx]
	}
	return b
}

// lineLength returns the length of the first line of b including its
// line ending, or len(b) for a final unterminated line.
func lineLength(b []byte) int {
	if idx := bytes.IndexByte(b, '\n'); idx >= 0 {
		return idx + 1
	}
	return len(b)
}
