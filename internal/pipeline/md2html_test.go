package pipeline

import (
	"context"
	"strings"
	"testing"
)

func TestGoldmarkConverterToHTML(t *testing.T) {
	c := NewGoldmarkConverter()

	tests := []struct {
		name     string
		markdown string
		contains []string
	}{
		{
			name:     "heading with auto id",
			markdown: "# Results Overview\n",
			contains: []string{`<h1 id="results-overview">Results Overview</h1>`},
		},
		{
			name:     "gfm table",
			markdown: "| a | b |\n|---|---|\n| 1 | 2 |\n",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "footnote",
			markdown: "Claim.[^1]\n\n[^1]: Evidence.\n",
			contains: []string{"footnote"},
		},
		{
			name:     "link to anchor",
			markdown: "[Townsend 1994](#ref-townsend1994)\n",
			contains: []string{`<a href="#ref-townsend1994">Townsend 1994</a>`},
		},
		{
			name:     "fenced code highlighted with classes",
			markdown: "```go\nfmt.Println(\"hi\")\n```\n",
			contains: []string{`class="chroma"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ToHTML(context.Background(), tt.markdown)
			if err != nil {
				t.Fatalf("ToHTML() error: %v", err)
			}
			if !strings.HasPrefix(got, "<!DOCTYPE html>") {
				t.Errorf("output should be a full document, got prefix %q", got[:20])
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestGoldmarkConverterRawHTMLEscaped(t *testing.T) {
	c := NewGoldmarkConverter()

	got, err := c.ToHTML(context.Background(), `<script>alert("x")</script>`)
	if err != nil {
		t.Fatalf("ToHTML() error: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Error("raw HTML should not pass through unescaped")
	}
}

func TestGoldmarkConverterPlaceholdersSurvive(t *testing.T) {
	c := NewGoldmarkConverter()

	markdown := MarkStartPlaceholder + "hot" + MarkEndPlaceholder + "\n\n" +
		FigStartPlaceholder + "0" + FigEndPlaceholder + "\n"
	got, err := c.ToHTML(context.Background(), markdown)
	if err != nil {
		t.Fatalf("ToHTML() error: %v", err)
	}
	for _, tok := range []string{MarkStartPlaceholder, MarkEndPlaceholder, FigStartPlaceholder, FigEndPlaceholder} {
		if !strings.Contains(got, tok) {
			t.Errorf("placeholder %U should survive conversion", []rune(tok)[0])
		}
	}
}

func TestGoldmarkConverterCanceledContext(t *testing.T) {
	c := NewGoldmarkConverter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.ToHTML(ctx, "# Title"); err == nil {
		t.Error("ToHTML() with canceled context should return error")
	}
}
