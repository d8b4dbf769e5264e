package myst

import "testing"

func TestScanFigures(t *testing.T) {
	body := `# Results

:::{figure} #fig-growth
:label: fig-growth
:alt: GDP growth by decade
:remove-input:

GDP growth by decade, 1960-2020.
:::

Some text with an inline embed ![network graph](#fig-network) here.

` + "```" + `
![not a figure](#fig-inside-code)
` + "```" + `
`

	figures := ScanFigures(body)
	if len(figures) != 2 {
		t.Fatalf("len(figures) = %d, want 2", len(figures))
	}

	fenced := figures[0]
	if fenced.Target != "fig-growth" {
		t.Errorf("Target = %q, want fig-growth", fenced.Target)
	}
	if fenced.Label != "fig-growth" {
		t.Errorf("Label = %q", fenced.Label)
	}
	if fenced.Alt != "GDP growth by decade" {
		t.Errorf("Alt = %q", fenced.Alt)
	}
	if !fenced.RemoveInput {
		t.Error("RemoveInput should be true for bare :remove-input:")
	}
	if fenced.RemoveOutput {
		t.Error("RemoveOutput should be false")
	}
	if fenced.Caption != "GDP growth by decade, 1960-2020." {
		t.Errorf("Caption = %q", fenced.Caption)
	}
	if fenced.Line != 3 {
		t.Errorf("Line = %d, want 3", fenced.Line)
	}
	if got := body[fenced.Start:fenced.End]; got[:len(":::{figure}")] != ":::{figure}" {
		t.Errorf("Start/End slice = %q, should begin at the opener", got)
	}

	embed := figures[1]
	if embed.Target != "fig-network" {
		t.Errorf("embed Target = %q, want fig-network", embed.Target)
	}
	if embed.Alt != "network graph" {
		t.Errorf("embed Alt = %q", embed.Alt)
	}
	if got := body[embed.Start:embed.End]; got != "![network graph](#fig-network)" {
		t.Errorf("embed Start/End slice = %q", got)
	}
}

func TestScanFiguresBacktickFence(t *testing.T) {
	body := "```{figure} #fig-map\n:name: fig-map\nA map.\n```\n"
	figures := ScanFigures(body)
	if len(figures) != 1 {
		t.Fatalf("len(figures) = %d, want 1", len(figures))
	}
	if figures[0].Target != "fig-map" || figures[0].Label != "fig-map" {
		t.Errorf("figure = %+v", figures[0])
	}
	if figures[0].Caption != "A map." {
		t.Errorf("Caption = %q", figures[0].Caption)
	}
}

func TestScanFiguresLongerFence(t *testing.T) {
	body := "::::{figure} #fig-a\n:label: a\n::::\n"
	figures := ScanFigures(body)
	if len(figures) != 1 {
		t.Fatalf("len(figures) = %d, want 1", len(figures))
	}
	if figures[0].Label != "a" {
		t.Errorf("Label = %q, want a", figures[0].Label)
	}
}

func TestScanFiguresUnterminated(t *testing.T) {
	body := ":::{figure} #fig-x\n:label: x\ncaption text"
	figures := ScanFigures(body)
	if len(figures) != 1 {
		t.Fatalf("len(figures) = %d, want 1", len(figures))
	}
	if figures[0].End != len(body) {
		t.Errorf("End = %d, want %d (consume to end of body)", figures[0].End, len(body))
	}
	if figures[0].Caption != "caption text" {
		t.Errorf("Caption = %q", figures[0].Caption)
	}
}

func TestScanFiguresOptionValues(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantRemove bool
	}{
		{"bare option", "", true},
		{"true", " true", true},
		{"yes", " yes", true},
		{"one", " 1", true},
		{"false", " false", false},
		{"no", " no", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := ":::{figure} #fig-x\n:remove-output:" + tt.value + "\n:::\n"
			figures := ScanFigures(body)
			if len(figures) != 1 {
				t.Fatalf("len(figures) = %d, want 1", len(figures))
			}
			if figures[0].RemoveOutput != tt.wantRemove {
				t.Errorf("RemoveOutput = %v, want %v", figures[0].RemoveOutput, tt.wantRemove)
			}
		})
	}
}

func TestScanFiguresUnknownOptionsIgnored(t *testing.T) {
	body := ":::{figure} #fig-x\n:width: 80%\n:align: center\n:label: x\nCaption.\n:::\n"
	figures := ScanFigures(body)
	if len(figures) != 1 {
		t.Fatalf("len(figures) = %d, want 1", len(figures))
	}
	if figures[0].Label != "x" {
		t.Errorf("Label = %q, want x", figures[0].Label)
	}
	if figures[0].Caption != "Caption." {
		t.Errorf("Caption = %q, want Caption.", figures[0].Caption)
	}
}

func TestScanFiguresLiteralFenceInCode(t *testing.T) {
	body := "```\n```{figure} #fig-literal\n![in code](#fig-in-code)\n```\n![real](#fig-real)\n"
	figures := ScanFigures(body)
	if len(figures) != 1 {
		t.Fatalf("len(figures) = %d, want 1: %+v", len(figures), figures)
	}
	if figures[0].Target != "fig-real" {
		t.Errorf("Target = %q, want fig-real", figures[0].Target)
	}
}

func TestScanFiguresShortFenceDoesNotCloseLongFence(t *testing.T) {
	body := "````\n```\n![in code](#fig-in-code)\n````\n![real](#fig-real)\n"
	figures := ScanFigures(body)
	if len(figures) != 1 {
		t.Fatalf("len(figures) = %d, want 1: %+v", len(figures), figures)
	}
	if figures[0].Target != "fig-real" {
		t.Errorf("Target = %q, want fig-real", figures[0].Target)
	}
}

func TestScanFiguresEmpty(t *testing.T) {
	if figures := ScanFigures("just text, no figures"); figures != nil {
		t.Errorf("figures = %v, want nil", figures)
	}
}
