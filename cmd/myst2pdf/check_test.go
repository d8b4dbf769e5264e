package main

import (
	"errors"
	"strings"
	"testing"

	myst2pdf "github.com/jhconning/myst2pdf"
)

func TestRunCheckClean(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDoc(t, dir, "a.md", "---\ntitle: A\n---\nNo references.\n")

	env, stdout, _ := testEnv()
	flags := &checkFlags{}

	if err := runCheck([]string{path}, flags, env); err != nil {
		t.Fatalf("runCheck() error: %v", err)
	}
	if !strings.Contains(stdout.String(), "ok") {
		t.Errorf("stdout = %q, want ok line", stdout.String())
	}
}

func TestRunCheckProblemsNonStrict(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDoc(t, dir, "a.md", "---\ntitle: A\n---\nCites @nowhere2020.\n")

	env, stdout, stderr := testEnv()
	flags := &checkFlags{}

	if err := runCheck([]string{path}, flags, env); err != nil {
		t.Fatalf("non-strict check should not fail: %v", err)
	}
	if !strings.Contains(stderr.String(), "missing-citation") {
		t.Errorf("stderr = %q, want missing-citation problem", stderr.String())
	}
	if !strings.Contains(stdout.String(), "1 problem(s)") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunCheckStrict(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDoc(t, dir, "a.md", "---\ntitle: A\n---\nCites @nowhere2020.\n")

	env, _, _ := testEnv()
	flags := &checkFlags{strict: true}

	err := runCheck([]string{path}, flags, env)
	if !errors.Is(err, myst2pdf.ErrUnresolvedReferences) {
		t.Errorf("runCheck() error = %v, want ErrUnresolvedReferences", err)
	}
	if exitCodeFor(err) != ExitUnresolved {
		t.Errorf("exit code = %d, want ExitUnresolved", exitCodeFor(err))
	}
}

func TestRunCheckNoInput(t *testing.T) {
	env, _, _ := testEnv()
	if err := runCheck(nil, &checkFlags{}, env); !errors.Is(err, ErrNoInput) {
		t.Errorf("runCheck() error = %v, want ErrNoInput", err)
	}
}

func TestRunCheckDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTestDoc(t, dir, "a.md", "---\ntitle: A\n---\nclean\n")
	writeTestDoc(t, dir, "sub/b.md", "---\ntitle: B\n---\n@missing cite\n")

	env, stdout, _ := testEnv()
	flags := &checkFlags{strict: true}

	err := runCheck([]string{dir}, flags, env)
	if !errors.Is(err, myst2pdf.ErrUnresolvedReferences) {
		t.Errorf("runCheck() error = %v, want ErrUnresolvedReferences", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "a.md: ok") {
		t.Errorf("clean document should still report ok:\n%s", out)
	}
}
