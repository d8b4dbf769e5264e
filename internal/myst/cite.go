package myst

import (
	"regexp"
	"strings"
)

// Citation is a single citation key occurrence in the document body.
type Citation struct {
	Key  string
	Line int // 1-based
}

// Citation key charset follows pandoc: a key starts with a letter, digit,
// or underscore and may contain internal punctuation, but never ends on it.
const keyPattern = `[A-Za-z0-9_][A-Za-z0-9_:.#+-]*[A-Za-z0-9_]|[A-Za-z0-9_]`

var (
	// Bracketed group: [@key] or [@key1; @key2, p. 33]
	bracketedCite = regexp.MustCompile(`\[([^\[\]]*@[^\[\]]+)\]`)

	// Key inside a bracketed group.
	groupKey = regexp.MustCompile(`@(` + keyPattern + `)`)

	// Bare in-text citation: @key not preceded by a word character,
	// so email addresses (name@host) are not matched.
	bareCite = regexp.MustCompile(`(^|[^\w\x60[])@(` + keyPattern + `)`)

	// Sphinx-style cite role: {cite}` + "`key`" + `
	citeRole = regexp.MustCompile("\\{cite[pt]?\\}`([^`]+)`")

	// Inline code span; citations inside code are not citations.
	codeSpan = regexp.MustCompile("`[^`]*`")
)

// ScanCitations returns all citation keys in body, in source order.
// Duplicate keys are returned once per occurrence; content inside fenced
// code blocks and inline code spans is skipped.
func ScanCitations(body string) []Citation {
	var cites []Citation

	var openFence string
	for i, line := range strings.Split(body, "\n") {
		if openFence != "" {
			if isClosingFence(line, openFence) {
				openFence = ""
			}
			continue
		}
		if m := codeFence.FindStringSubmatch(line); m != nil {
			openFence = m[1]
			continue
		}

		// Cite roles carry backticks, so extract them before blanking
		// code spans.
		for _, m := range citeRole.FindAllStringSubmatch(line, -1) {
			for _, key := range splitKeys(m[1]) {
				cites = append(cites, Citation{Key: key, Line: i + 1})
			}
		}
		scrubbed := citeRole.ReplaceAllString(line, "")
		scrubbed = codeSpan.ReplaceAllString(scrubbed, "")

		for _, m := range bracketedCite.FindAllStringSubmatch(scrubbed, -1) {
			for _, km := range groupKey.FindAllStringSubmatch(m[1], -1) {
				cites = append(cites, Citation{Key: km[1], Line: i + 1})
			}
		}
		withoutGroups := bracketedCite.ReplaceAllString(scrubbed, "")

		for _, m := range bareCite.FindAllStringSubmatch(withoutGroups, -1) {
			cites = append(cites, Citation{Key: m[2], Line: i + 1})
		}
	}

	return cites
}

// splitKeys splits a cite-role payload ("key1,key2") into keys.
func splitKeys(payload string) []string {
	var keys []string
	for _, part := range strings.Split(payload, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// RewriteCitations replaces citation syntax with markdown links to the
// reference list. lookup maps a key to its display label; keys it does not
// resolve are left untouched for the checker to report.
//
//	[@conning2011]         -> ([Conning & Morduch 2011](#ref-conning2011))
//	@conning2011           -> [Conning & Morduch 2011](#ref-conning2011)
//	{cite}`conning2011`    -> ([Conning & Morduch 2011](#ref-conning2011))
//
// The output is plain CommonMark, so the HTML converter needs no raw-HTML
// pass-through for citations.
func RewriteCitations(body string, lookup func(key string) (string, bool)) string {
	var out []string

	var openFence string
	for _, line := range strings.Split(body, "\n") {
		if openFence != "" {
			if isClosingFence(line, openFence) {
				openFence = ""
			}
			out = append(out, line)
			continue
		}
		if m := codeFence.FindStringSubmatch(line); m != nil {
			openFence = m[1]
			out = append(out, line)
			continue
		}
		out = append(out, rewriteLine(line, lookup))
	}

	return strings.Join(out, "\n")
}

// rewriteLine applies all three citation forms to a single line.
func rewriteLine(line string, lookup func(string) (string, bool)) string {
	line = citeRole.ReplaceAllStringFunc(line, func(match string) string {
		payload := citeRole.FindStringSubmatch(match)[1]
		links := keysToLinks(splitKeys(payload), lookup)
		if links == "" {
			return match
		}
		return "(" + links + ")"
	})

	line = bracketedCite.ReplaceAllStringFunc(line, func(match string) string {
		group := bracketedCite.FindStringSubmatch(match)[1]
		var keys []string
		for _, km := range groupKey.FindAllStringSubmatch(group, -1) {
			keys = append(keys, km[1])
		}
		links := keysToLinks(keys, lookup)
		if links == "" {
			return match
		}
		return "(" + links + ")"
	})

	line = bareCite.ReplaceAllStringFunc(line, func(match string) string {
		m := bareCite.FindStringSubmatch(match)
		label, ok := lookup(m[2])
		if !ok {
			return match
		}
		return m[1] + "[" + label + "](#ref-" + m[2] + ")"
	})

	return line
}

// keysToLinks renders a key group as "; "-joined markdown links.
// Returns "" when no key in the group resolves, leaving the group as-is.
func keysToLinks(keys []string, lookup func(string) (string, bool)) string {
	var links []string
	for _, key := range keys {
		label, ok := lookup(key)
		if !ok {
			return ""
		}
		links = append(links, "["+label+"](#ref-"+key+")")
	}
	return strings.Join(links, "; ")
}
