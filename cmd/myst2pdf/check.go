package main

import (
	"fmt"

	myst2pdf "github.com/jhconning/myst2pdf"
	"github.com/jhconning/myst2pdf/internal/config"
)

// runCheck resolves references for each input document and prints a report.
// With --strict, any unresolved reference makes the command fail.
func runCheck(positionalArgs []string, flags *checkFlags, env *Environment) error {
	// Load configuration (same precedence as export)
	envCfg := loadEnvConfig()
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	cfg := config.DefaultConfig()
	configName := flags.common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	applyEnvConfig(envCfg, cfg)

	figureDir := flags.figureDir
	if figureDir == "" {
		figureDir = cfg.Figures.Dir
	}
	strict := flags.strict || cfg.Check.Strict

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}

	files, _, err := discoverInputs(inputPath)
	if err != nil {
		return fmt.Errorf("discovering inputs: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found in %s", inputPath)
	}

	checker := &myst2pdf.Checker{
		FigureDir: figureDir,
		AssetPath: cfg.Assets.BasePath,
	}

	totalProblems := 0
	var firstErr error
	for _, path := range files {
		doc, err := myst2pdf.LoadDocument(path)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %v", ErrReadDocument, err)
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", path, err)
			continue
		}

		report, err := checker.Check(doc)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", path, err)
			continue
		}

		totalProblems += len(report.Problems)
		printReport(path, report, flags.common.quiet, flags.common.verbose, env)
	}

	if firstErr != nil {
		return firstErr
	}
	if strict && totalProblems > 0 {
		return fmt.Errorf("%w: %d problem(s)", myst2pdf.ErrUnresolvedReferences, totalProblems)
	}
	return nil
}

// printReport writes one document's check report.
func printReport(path string, report *myst2pdf.Report, quiet, verbose bool, env *Environment) {
	for _, p := range report.Problems {
		fmt.Fprintf(env.Stderr, "%s: %s\n", path, p)
	}

	if quiet {
		return
	}

	if report.Clean() {
		if verbose {
			fmt.Fprintf(env.Stdout, "%s: ok (%d citations, %d figures)\n", path, report.Citations, report.Figures)
		} else {
			fmt.Fprintf(env.Stdout, "%s: ok\n", path)
		}
		return
	}
	fmt.Fprintf(env.Stdout, "%s: %d problem(s)\n", path, len(report.Problems))
}
