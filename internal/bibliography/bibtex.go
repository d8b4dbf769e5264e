// Package bibliography parses BibTeX files far enough to answer the two
// questions the exporter asks: does a citation key exist, and what short
// label should stand in for it in rendered output.
//
// This is deliberately not a full BibTeX implementation. Crossrefs, string
// macros, and LaTeX markup in values are outside what a citation existence
// check needs; values are stored with braces stripped and whitespace
// collapsed, which is enough for author-year labels and reference lists.
package bibliography

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Sentinel errors for bibliography operations.
var (
	ErrFileNotFound = errors.New("bibliography file not found")
	ErrSyntax       = errors.New("bibliography syntax error")
)

// Entry is a single BibTeX entry.
type Entry struct {
	Key    string
	Type   string            // "article", "book", ... (lowercased)
	Fields map[string]string // field names lowercased, values cleaned
}

// Label returns a short author-year label for rendered citations,
// e.g. "Conning & Morduch 2011". Falls back to the entry key when the
// author or year field is missing.
func (e Entry) Label() string {
	author := e.Fields["author"]
	year := e.Fields["year"]
	if author == "" {
		return e.Key
	}

	names := strings.Split(author, " and ")
	var name string
	switch len(names) {
	case 1:
		name = surname(names[0])
	case 2:
		name = surname(names[0]) + " & " + surname(names[1])
	default:
		name = surname(names[0]) + " et al."
	}

	if year == "" {
		return name
	}
	return name + " " + year
}

// Title returns the entry title, or "" if absent.
func (e Entry) Title() string {
	return e.Fields["title"]
}

// Bibliography is an ordered set of entries keyed by citation key.
type Bibliography struct {
	entries map[string]Entry
	order   []string
}

// New returns an empty bibliography.
func New() *Bibliography {
	return &Bibliography{entries: make(map[string]Entry)}
}

// Load reads and parses one or more .bib files into a single bibliography.
// Later files never shadow earlier keys; the first definition wins, which
// matches how reference managers merge shared bibliographies.
func Load(paths ...string) (*Bibliography, error) {
	bib := New()
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- path from document front matter
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, fmt.Errorf("reading bibliography %s: %w", path, err)
		}
		if err := bib.parse(data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return bib, nil
}

// Parse parses BibTeX source into a bibliography.
func Parse(data []byte) (*Bibliography, error) {
	bib := New()
	if err := bib.parse(data); err != nil {
		return nil, err
	}
	return bib, nil
}

// Has reports whether a citation key exists.
func (b *Bibliography) Has(key string) bool {
	_, ok := b.entries[key]
	return ok
}

// Entry returns the entry for a key.
func (b *Bibliography) Entry(key string) (Entry, bool) {
	e, ok := b.entries[key]
	return e, ok
}

// Keys returns all keys in file order.
func (b *Bibliography) Keys() []string {
	keys := make([]string, len(b.order))
	copy(keys, b.order)
	return keys
}

// Len returns the number of entries.
func (b *Bibliography) Len() int {
	return len(b.order)
}

// Merge adds other's entries to b. Existing keys keep their first
// definition, matching Load's multi-file behavior.
func (b *Bibliography) Merge(other *Bibliography) {
	if other == nil {
		return
	}
	for _, key := range other.order {
		b.add(other.entries[key])
	}
}

// add inserts an entry unless the key is already present.
func (b *Bibliography) add(e Entry) {
	if _, exists := b.entries[e.Key]; exists {
		return
	}
	b.entries[e.Key] = e
	b.order = append(b.order, e.Key)
}

// entryStart matches "@type{key," at the beginning of an entry.
var entryStart = regexp.MustCompile(`@([A-Za-z]+)\s*\{\s*([^,\s{}]+)\s*,`)

// parse scans data for entries and adds them to the bibliography.
func (b *Bibliography) parse(data []byte) error {
	src := string(data)
	for {
		loc := entryStart.FindStringSubmatchIndex(src)
		if loc == nil {
			return nil
		}

		entryType := strings.ToLower(src[loc[2]:loc[3]])
		key := src[loc[4]:loc[5]]

		// Body starts after the key's comma; find the matching close brace
		// for the brace that opened the entry.
		bodyStart := loc[1]
		body, end, err := scanBalanced(src, bodyStart)
		if err != nil {
			return fmt.Errorf("%w: entry %q: %v", ErrSyntax, key, err)
		}

		switch entryType {
		case "comment", "preamble", "string":
			// Not citable entries; skip.
		default:
			b.add(Entry{
				Key:    key,
				Type:   entryType,
				Fields: parseFields(body),
			})
		}

		src = src[end:]
	}
}

// scanBalanced returns the text from start up to the brace closing the
// entry, tracking nested braces. The entry's opening brace sits before
// start, so depth begins at 1.
func scanBalanced(src string, start int) (body string, end int, err error) {
	depth := 1
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[start:i], i + 1, nil
			}
		}
	}
	return "", 0, errors.New("unbalanced braces")
}

// fieldStart matches "name =" at a field boundary.
var fieldStart = regexp.MustCompile(`(?s)\s*([A-Za-z][A-Za-z0-9_-]*)\s*=\s*`)

// parseFields extracts name/value pairs from an entry body.
// Values may be brace-delimited, quote-delimited, or bare (numbers, macros).
func parseFields(body string) map[string]string {
	fields := make(map[string]string)
	rest := body

	for {
		loc := fieldStart.FindStringSubmatchIndex(rest)
		if loc == nil || loc[0] != 0 {
			return fields
		}
		name := strings.ToLower(rest[loc[2]:loc[3]])
		rest = rest[loc[1]:]

		value, remaining := scanFieldValue(rest)
		fields[name] = cleanValue(value)
		rest = remaining

		// Skip the separating comma, if any.
		rest = strings.TrimLeft(rest, " \t\r\n")
		if strings.HasPrefix(rest, ",") {
			rest = rest[1:]
		} else if rest != "" {
			return fields
		}
	}
}

// scanFieldValue consumes one field value and returns it with the remainder.
func scanFieldValue(s string) (value, rest string) {
	if s == "" {
		return "", ""
	}

	switch s[0] {
	case '{':
		depth := 0
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[1:i], s[i+1:]
				}
			}
		}
		return s[1:], ""
	case '"':
		for i := 1; i < len(s); i++ {
			if s[i] == '"' && s[i-1] != '\\' {
				return s[1:i], s[i+1:]
			}
		}
		return s[1:], ""
	default:
		// Bare value: runs until comma or end of body.
		if idx := strings.IndexByte(s, ','); idx >= 0 {
			return s[:idx], s[idx:]
		}
		return s, ""
	}
}

// cleanValue strips protective braces and collapses whitespace.
func cleanValue(v string) string {
	v = strings.Map(func(r rune) rune {
		if r == '{' || r == '}' {
			return -1
		}
		return r
	}, v)
	return strings.Join(strings.Fields(v), " ")
}

// surname extracts a surname from a single author name in either
// "Surname, First" or "First Surname" form.
func surname(name string) string {
	name = strings.TrimSpace(name)
	if idx := strings.IndexByte(name, ','); idx >= 0 {
		return strings.TrimSpace(name[:idx])
	}
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return name
	}
	return parts[len(parts)-1]
}
