package myst2pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jhconning/myst2pdf/internal/frontmatter"
)

// Document is a loaded MyST markdown document: typed front matter metadata,
// the markdown body, and the raw front matter block preserved verbatim so
// Serialize can reproduce the source byte-for-byte.
type Document struct {
	Meta frontmatter.Meta
	Body []byte

	// Path is the source file location, or "" for in-memory documents.
	// Relative figure and bibliography paths resolve against its directory.
	Path string

	rawBlock []byte
}

// ParseDocument parses an in-memory MyST document. A document without front
// matter is valid: Meta is zero and Body is src unchanged.
func ParseDocument(src []byte) (*Document, error) {
	meta, block, body, err := frontmatter.Parse(src)
	if err != nil {
		return nil, err
	}
	return &Document{Meta: meta, Body: body, rawBlock: block}, nil
}

// LoadDocument reads and parses a MyST document from disk.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Serialize reassembles the document source. For a document that was loaded
// and not modified, the output is byte-identical to the input: the raw front
// matter block is emitted verbatim, not re-marshaled.
func (d *Document) Serialize() []byte {
	out := make([]byte, 0, len(d.rawBlock)+len(d.Body))
	out = append(out, d.rawBlock...)
	out = append(out, d.Body...)
	return out
}

// Dir returns the directory containing the document source, or "" for
// in-memory documents.
func (d *Document) Dir() string {
	if d.Path == "" {
		return ""
	}
	return filepath.Dir(d.Path)
}

// Empty reports whether the document has no renderable content.
func (d *Document) Empty() bool {
	return len(d.rawBlock) == 0 && len(d.Body) == 0
}
