package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTempFile(t *testing.T) {
	path, cleanup, err := WriteTempFile("<html></html>", "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error: %v", err)
	}
	defer cleanup()

	if !strings.HasSuffix(path, ".html") {
		t.Errorf("path = %q, want .html suffix", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	if string(content) != "<html></html>" {
		t.Errorf("content = %q", content)
	}

	cleanup()
	if FileExists(path) {
		t.Error("cleanup should remove the file")
	}
}

func TestWriteTempFileBadExtension(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		wantErr error
	}{
		{"empty", "", ErrExtensionEmpty},
		{"slash", "a/b", ErrExtensionPathTraversal},
		{"backslash", `a\b`, ErrExtensionPathTraversal},
		{"null byte", "a\x00b", ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := WriteTempFile("x", tt.ext)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("WriteTempFile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("FileExists(file) = false, want true")
	}
	if FileExists(dir) {
		t.Error("FileExists(dir) = true, want false for directories")
	}
	if FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists(missing) = true, want false")
	}
}

func TestIsFilePath(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"paper", false},
		{"./custom.css", true},
		{"/absolute/path.css", true},
		{`C:\styles\paper.css`, true},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsFilePath(tt.in); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"http://example.com/a.css", true},
		{"https://example.com/a.css", true},
		{"ftp://example.com", false},
		{"paper", false},
	}

	for _, tt := range tests {
		if got := IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsCSS(t *testing.T) {
	if !IsCSS("body { margin: 0 }") {
		t.Error("IsCSS(inline rule) = false, want true")
	}
	if IsCSS("paper") {
		t.Error("IsCSS(name) = true, want false")
	}
}
