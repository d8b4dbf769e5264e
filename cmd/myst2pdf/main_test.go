package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jhconning/myst2pdf/internal/config"
)

func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	env := &Environment{
		Now:    time.Now,
		Stdout: stdout,
		Stderr: stderr,
		Config: config.DefaultConfig(),
	}
	return env, stdout, stderr
}

func TestRunNoArgs(t *testing.T) {
	env, _, stderr := testEnv()
	if code := run(nil, env); code != ExitUsage {
		t.Errorf("run() = %d, want ExitUsage", code)
	}
	if !strings.Contains(stderr.String(), "export") {
		t.Error("usage should list the export command")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	env, _, stderr := testEnv()
	if code := run([]string{"frobnicate"}, env); code != ExitUsage {
		t.Errorf("run() = %d, want ExitUsage", code)
	}
	if !strings.Contains(stderr.String(), "Unknown command: frobnicate") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunVersion(t *testing.T) {
	env, stdout, _ := testEnv()
	if code := run([]string{"version"}, env); code != ExitSuccess {
		t.Errorf("run() = %d, want ExitSuccess", code)
	}
	if !strings.Contains(stdout.String(), "myst2pdf") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunHelp(t *testing.T) {
	env, _, _ := testEnv()
	for _, args := range [][]string{{"help"}, {"--help"}, {"-h"}, {"help", "export"}} {
		if code := run(args, env); code != ExitSuccess {
			t.Errorf("run(%v) = %d, want ExitSuccess", args, code)
		}
	}
}

func TestRunExportNoInput(t *testing.T) {
	env, _, stderr := testEnv()
	code := run([]string{"export"}, env)
	if code != ExitIO {
		t.Errorf("run(export) = %d, want ExitIO for missing input", code)
	}
	if !strings.Contains(stderr.String(), "no input") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunExportBadWorkers(t *testing.T) {
	env, _, _ := testEnv()
	if code := run([]string{"export", "--workers", "99", "doc.md"}, env); code != ExitUsage {
		t.Errorf("run() = %d, want ExitUsage for worker count over the cap", code)
	}
}

func TestRunExportBadFlag(t *testing.T) {
	env, _, _ := testEnv()
	if code := run([]string{"export", "--no-such-flag"}, env); code != ExitUsage {
		t.Errorf("run() = %d, want ExitUsage", code)
	}
}

func TestParseExportFlags(t *testing.T) {
	flags, positional, err := parseExportFlags([]string{
		"--output", "out",
		"--workers", "3",
		"--timeout", "45s",
		"--page-size", "a4",
		"--footer-page-number",
		"--strict",
		"--html",
		"docs/paper.md",
	})
	if err != nil {
		t.Fatalf("parseExportFlags() error: %v", err)
	}

	if flags.output != "out" || flags.workers != 3 || flags.timeout != "45s" {
		t.Errorf("flags = %+v", flags)
	}
	if flags.page.size != "a4" {
		t.Errorf("page.size = %q", flags.page.size)
	}
	if !flags.footer.pageNumber || !flags.strict || !flags.outputMode.html {
		t.Errorf("bool flags not set: %+v", flags)
	}
	if len(positional) != 1 || positional[0] != "docs/paper.md" {
		t.Errorf("positional = %v", positional)
	}
}

func TestParseCheckFlags(t *testing.T) {
	flags, positional, err := parseCheckFlags([]string{"--strict", "--figure-dir", "figs", "doc.md"})
	if err != nil {
		t.Fatalf("parseCheckFlags() error: %v", err)
	}
	if !flags.strict || flags.figureDir != "figs" {
		t.Errorf("flags = %+v", flags)
	}
	if len(positional) != 1 || positional[0] != "doc.md" {
		t.Errorf("positional = %v", positional)
	}
}
