package frontmatter

import (
	"bytes"
	"errors"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantBlock string
		wantBody  string
		wantErr   error
	}{
		{
			name:      "basic front matter",
			src:       "---\ntitle: Hello\n---\n\n# Body\n",
			wantBlock: "---\ntitle: Hello\n---\n",
			wantBody:  "\n# Body\n",
		},
		{
			name:      "no front matter",
			src:       "# Just markdown\n",
			wantBlock: "",
			wantBody:  "# Just markdown\n",
		},
		{
			name:      "delimiter not on first line",
			src:       "\n---\ntitle: Hello\n---\n",
			wantBlock: "",
			wantBody:  "\n---\ntitle: Hello\n---\n",
		},
		{
			name:    "unterminated block",
			src:     "---\ntitle: Hello\n",
			wantErr: ErrUnterminatedBlock,
		},
		{
			name:      "empty block",
			src:       "---\n---\nbody\n",
			wantBlock: "---\n---\n",
			wantBody:  "body\n",
		},
		{
			name:      "delimiter with trailing whitespace",
			src:       "---  \ntitle: Hello\n---\t\nbody\n",
			wantBlock: "---  \ntitle: Hello\n---\t\n",
			wantBody:  "body\n",
		},
		{
			name:      "triple dash inside value is not a delimiter",
			src:       "---\ntitle: a --- b\ndate: 2024\n---\nbody\n",
			wantBlock: "---\ntitle: a --- b\ndate: 2024\n---\n",
			wantBody:  "body\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, body, err := Split([]byte(tt.src))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Split() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if string(block) != tt.wantBlock {
				t.Errorf("block = %q, want %q", block, tt.wantBlock)
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestSplitRoundTrip(t *testing.T) {
	srcs := []string{
		"---\ntitle: Hello\nexports:\n  - format: pdf\n    output: out.pdf\n---\n\n# Body\n\nText @key here.\n",
		"# No front matter\n",
		"---\n---\nbody without metadata\n",
		"---\ntitle: CRLF\n---\r\nbody\r\n",
	}

	for _, src := range srcs {
		block, body, err := Split([]byte(src))
		if err != nil {
			t.Fatalf("Split(%q) error: %v", src, err)
		}
		joined := append(append([]byte{}, block...), body...)
		if !bytes.Equal(joined, []byte(src)) {
			t.Errorf("block+body = %q, want original %q", joined, src)
		}
	}
}

func TestParse(t *testing.T) {
	src := []byte(`---
title: Risk Sharing in Village Economies
subtitle: A Structural Approach
date: 2024-03-01
abstract: >
  We study informal insurance.
authors:
  - name: Jonathan Conning
    affiliation: Hunter College
    email: jc@example.edu
  - Maria Ruiz
bibliography:
  - references.bib
exports:
  - format: pdf
    template: paper
    output: exports/paper.pdf
  - format: html
    output: exports/paper.html
keywords: [insurance, networks]
---

# Introduction
`)

	meta, block, body, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if meta.Title != "Risk Sharing in Village Economies" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.Subtitle != "A Structural Approach" {
		t.Errorf("Subtitle = %q", meta.Subtitle)
	}
	if len(meta.Authors) != 2 {
		t.Fatalf("len(Authors) = %d, want 2", len(meta.Authors))
	}
	if meta.Authors[0].Affiliation != "Hunter College" {
		t.Errorf("Authors[0].Affiliation = %q", meta.Authors[0].Affiliation)
	}
	if meta.Authors[1].Name != "Maria Ruiz" {
		t.Errorf("Authors[1].Name = %q (scalar author form)", meta.Authors[1].Name)
	}
	if len(meta.Bibliography) != 1 || meta.Bibliography[0] != "references.bib" {
		t.Errorf("Bibliography = %v", meta.Bibliography)
	}
	if len(meta.Exports) != 2 {
		t.Fatalf("len(Exports) = %d, want 2", len(meta.Exports))
	}
	if meta.Exports[0].Format != "pdf" || meta.Exports[0].Template != "paper" {
		t.Errorf("Exports[0] = %+v", meta.Exports[0])
	}
	if meta.Exports[1].Output != "exports/paper.html" {
		t.Errorf("Exports[1].Output = %q", meta.Exports[1].Output)
	}

	// Unknown fields (keywords) must not fail parsing
	if len(block) == 0 || len(body) == 0 {
		t.Errorf("block/body should be non-empty")
	}
}

func TestParseScalarBibliography(t *testing.T) {
	src := []byte("---\nbibliography: refs.bib\n---\nbody\n")
	meta, _, _, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(meta.Bibliography) != 1 || meta.Bibliography[0] != "refs.bib" {
		t.Errorf("Bibliography = %v, want [refs.bib]", meta.Bibliography)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	src := []byte("---\ntitle: [unclosed\n---\nbody\n")
	_, _, _, err := Parse(src)
	if !errors.Is(err, ErrBlockParse) {
		t.Errorf("Parse() error = %v, want ErrBlockParse", err)
	}
}

func TestParseNoFrontMatter(t *testing.T) {
	src := []byte("# Heading\n\nText.\n")
	meta, block, body, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if meta.Title != "" || len(meta.Exports) != 0 {
		t.Errorf("meta should be zero, got %+v", meta)
	}
	if block != nil {
		t.Errorf("block = %q, want nil", block)
	}
	if string(body) != string(src) {
		t.Errorf("body = %q, want original source", body)
	}
}
