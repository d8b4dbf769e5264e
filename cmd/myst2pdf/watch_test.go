package main

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestAffectedDocuments(t *testing.T) {
	docA := filepath.Join("docs", "a.md")
	docB := filepath.Join("docs", "b.md")
	docC := filepath.Join("other", "c.md")
	byDir := map[string][]string{
		"docs":  {docA, docB},
		"other": {docC},
	}

	tests := []struct {
		name    string
		changed string
		want    []string
	}{
		{
			name:    "markdown input re-exports itself",
			changed: docA,
			want:    []string{docA},
		},
		{
			name:    "markdown outside the batch is ignored",
			changed: filepath.Join("docs", "scratch.md"),
			want:    nil,
		},
		{
			name:    "figure change re-exports every document in its directory",
			changed: filepath.Join("docs", "figures.bib"),
			want:    []string{docA, docB},
		},
		{
			name:    "change in unwatched directory affects nothing",
			changed: filepath.Join("elsewhere", "x.png"),
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := affectedDocuments(tt.changed, byDir)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("affectedDocuments(%q) = %v, want %v", tt.changed, got, tt.want)
			}
		})
	}
}
