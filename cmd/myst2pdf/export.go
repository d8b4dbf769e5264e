package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	myst2pdf "github.com/jhconning/myst2pdf"
	"github.com/jhconning/myst2pdf/internal/config"
	"github.com/jhconning/myst2pdf/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadDocument       = errors.New("failed to read document")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ExportOutcome holds the outcome of exporting a single document.
type ExportOutcome struct {
	InputPath string
	Outputs   []string
	Problems  []myst2pdf.Problem
	Err       error
	Duration  time.Duration
}

// exportParams groups parameters shared across the batch.
type exportParams struct {
	page      *myst2pdf.PageSettings
	footer    *myst2pdf.Footer
	figureDir string
	assetPath string
	outputDir string
	inputBase string // batch root for preserving relative structure
	strict    bool
	html      bool
	htmlOnly  bool
}

// runExport orchestrates the export process.
func runExport(ctx context.Context, positionalArgs []string, flags *exportFlags, env *Environment) error {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	// Environment variables: lowest-priority overrides
	envCfg := loadEnvConfig()
	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	// Load configuration: flag > MYST2PDF_CONFIG > defaults
	cfg := config.DefaultConfig()
	configName := flags.common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		loaded, err := config.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(nil))
			}
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	env.Config = cfg

	// Resolve input path
	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}

	// Discover documents to export
	files, inputBase, err := discoverInputs(inputPath)
	if err != nil {
		return fmt.Errorf("discovering inputs: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found in %s", inputPath)
	}

	// Build shared settings
	pageData, err := buildPageSettings(flags, cfg)
	if err != nil {
		return err
	}
	footerData, err := buildFooterData(flags, cfg)
	if err != nil {
		return err
	}

	params := &exportParams{
		page:      pageData,
		footer:    footerData,
		figureDir: cfg.Figures.Dir,
		assetPath: cfg.Assets.BasePath,
		outputDir: resolveOutputDir(flags.output, cfg),
		inputBase: inputBase,
		strict:    flags.strict || cfg.Check.Strict,
		html:      flags.outputMode.html,
		htmlOnly:  flags.outputMode.htmlOnly,
	}

	// Create exporter pool with resolved size and shared options
	timeout, err := resolveTimeout(flags.timeout, envCfg.Timeout)
	if err != nil {
		return err
	}
	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	poolSize := myst2pdf.ResolvePoolSize(workers)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", poolSize)
	}

	pool := newExporterPool(poolSize, exporterOptions(cfg, timeout)...)
	defer pool.Close()

	if flags.watch {
		return watchAndExport(ctx, pool, files, params, flags, env)
	}

	// Export documents
	outcomes := exportBatch(ctx, pool, files, params)

	// Print results
	failedCount := printOutcomes(outcomes, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return batchError(outcomes, failedCount)
	}

	return nil
}

// batchError summarizes a failed batch. Unresolved-reference failures keep
// their sentinel so the exit code distinguishes strict failures.
func batchError(outcomes []ExportOutcome, failedCount int) error {
	for _, o := range outcomes {
		if o.Err != nil && errors.Is(o.Err, myst2pdf.ErrUnresolvedReferences) {
			return fmt.Errorf("%d export(s) failed: %w", failedCount, myst2pdf.ErrUnresolvedReferences)
		}
	}
	for _, o := range outcomes {
		if o.Err != nil && errors.Is(o.Err, myst2pdf.ErrBrowserConnect) {
			return fmt.Errorf("%d export(s) failed: %w%s", failedCount, myst2pdf.ErrBrowserConnect, hints.ForBrowserConnect())
		}
	}
	return fmt.Errorf("%d export(s) failed", failedCount)
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *exportFlags, cfg *config.Config) {
	if flags.assets.style != "" {
		cfg.Style.Name = flags.assets.style
	}
	if flags.assets.template != "" {
		cfg.Style.Template = flags.assets.template
	}
	if flags.assets.assetPath != "" {
		cfg.Assets.BasePath = flags.assets.assetPath
	}
	if flags.figureDir != "" {
		cfg.Figures.Dir = flags.figureDir
	}

	// Page flags
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin > 0 {
		cfg.Page.Margin = flags.page.margin
	}

	// Footer flags
	if flags.footer.position != "" {
		cfg.Footer.Position = flags.footer.position
		cfg.Footer.Enabled = true
	}
	if flags.footer.text != "" {
		cfg.Footer.Text = flags.footer.text
		cfg.Footer.Enabled = true
	}
	if flags.footer.date != "" {
		cfg.Footer.Date = flags.footer.date
		cfg.Footer.Enabled = true
	}
	if flags.footer.pageNumber {
		cfg.Footer.ShowPageNumber = true
		cfg.Footer.Enabled = true
	}
	if flags.footer.disabled {
		cfg.Footer.Enabled = false
	}
}

// exporterOptions builds myst2pdf options from config.
func exporterOptions(cfg *config.Config, timeout time.Duration) []myst2pdf.Option {
	var opts []myst2pdf.Option
	if timeout > 0 {
		opts = append(opts, myst2pdf.WithTimeout(timeout))
	}
	if cfg.Style.Name != "" {
		opts = append(opts, myst2pdf.WithStyle(cfg.Style.Name))
	}
	if cfg.Style.Template != "" {
		opts = append(opts, myst2pdf.WithTemplateSet(cfg.Style.Template))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, myst2pdf.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Figures.Dir != "" {
		opts = append(opts, myst2pdf.WithFigureDir(cfg.Figures.Dir))
	}
	return opts
}

// resolveTimeout parses the timeout flag, falling back to the env value.
func resolveTimeout(flagValue string, envValue time.Duration) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil || d <= 0 {
			return 0, fmt.Errorf("invalid timeout %q (use formats like 30s, 2m)%s", flagValue, hints.ForTimeout())
		}
		return d, nil
	}
	return envValue, nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// discoverInputs finds all markdown documents for an input that may be a
// file, a directory, or a doublestar glob like "docs/**/*.md".
// Returns the matched paths and the base directory for preserving relative
// structure under --output.
func discoverInputs(inputPath string) ([]string, string, error) {
	if isGlobPattern(inputPath) {
		matches, err := doublestar.FilepathGlob(inputPath)
		if err != nil {
			return nil, "", fmt.Errorf("invalid glob %q: %w", inputPath, err)
		}
		var files []string
		for _, m := range matches {
			if isMarkdownFile(m) {
				files = append(files, m)
			}
		}
		return files, globBase(inputPath), nil
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, "", err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, "", err
		}
		return []string{inputPath}, filepath.Dir(inputPath), nil
	}

	var files []string
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isMarkdownFile(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, inputPath, err
}

// isGlobPattern returns true if the path contains glob metacharacters.
func isGlobPattern(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// globBase returns the fixed directory prefix of a glob pattern.
func globBase(pattern string) string {
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	if base == "." {
		return ""
	}
	return filepath.FromSlash(base)
}

// isMarkdownFile returns true for .md and .markdown files.
func isMarkdownFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".md" || ext == ".markdown"
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	if !isMarkdownFile(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > myst2pdf.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, myst2pdf.MaxPoolSize)
	}
	return nil
}

// buildPageSettings creates myst2pdf.PageSettings from config (flags were
// already merged). Returns nil when nothing is configured (library defaults).
func buildPageSettings(flags *exportFlags, cfg *config.Config) (*myst2pdf.PageSettings, error) {
	if cfg.Page.Size == "" && cfg.Page.Orientation == "" && cfg.Page.Margin == 0 {
		return nil, nil
	}

	ps := &myst2pdf.PageSettings{
		Size:        cfg.Page.Size,
		Orientation: cfg.Page.Orientation,
		Margin:      cfg.Page.Margin,
	}

	// Apply defaults
	if ps.Size == "" {
		ps.Size = myst2pdf.PageSizeLetter
	}
	if ps.Orientation == "" {
		ps.Orientation = myst2pdf.OrientationPortrait
	}
	if ps.Margin == 0 {
		ps.Margin = myst2pdf.DefaultMargin
	}

	if err := ps.Validate(); err != nil {
		return nil, err
	}

	return ps, nil
}

// buildFooterData creates myst2pdf.Footer from config (flags were already
// merged). Returns nil when the footer is disabled.
func buildFooterData(flags *exportFlags, cfg *config.Config) (*myst2pdf.Footer, error) {
	if !cfg.Footer.Enabled {
		return nil, nil
	}

	f := &myst2pdf.Footer{
		Position:       cfg.Footer.Position,
		ShowPageNumber: cfg.Footer.ShowPageNumber,
		Date:           cfg.Footer.Date,
		Text:           cfg.Footer.Text,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// exportBatch processes documents concurrently using the exporter pool.
func exportBatch(ctx context.Context, pool Pool, files []string, params *exportParams) []ExportOutcome {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	outcomes := make([]ExportOutcome, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			exp, err := pool.Acquire()
			if err != nil {
				for idx := range jobs {
					outcomes[idx] = ExportOutcome{InputPath: files[idx], Err: err}
				}
				return
			}
			defer pool.Release(exp)

			for idx := range jobs {
				if ctx.Err() != nil {
					outcomes[idx] = ExportOutcome{InputPath: files[idx], Err: ctx.Err()}
					continue
				}
				outcomes[idx] = exportDocument(ctx, exp, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return outcomes
}

// exportDocument loads, checks, renders, and writes one document.
func exportDocument(ctx context.Context, exp Exporter, inputPath string, params *exportParams) ExportOutcome {
	start := time.Now()
	outcome := ExportOutcome{InputPath: inputPath}

	doc, err := myst2pdf.LoadDocument(inputPath)
	if err != nil {
		outcome.Err = fmt.Errorf("%w: %v", ErrReadDocument, err)
		outcome.Duration = time.Since(start)
		return outcome
	}

	// Reference check: always run so problems are reported; in strict mode
	// unresolved references abort the export.
	checker := &myst2pdf.Checker{
		FigureDir: params.figureDir,
		AssetPath: params.assetPath,
	}
	report, err := checker.Check(doc)
	if err != nil {
		outcome.Err = err
		outcome.Duration = time.Since(start)
		return outcome
	}
	outcome.Problems = report.Problems
	if params.strict && !report.Clean() {
		outcome.Err = report.Err()
		outcome.Duration = time.Since(start)
		return outcome
	}

	base := myst2pdf.Input{Page: params.page, Footer: params.footer}

	if params.htmlOnly {
		outcome.Outputs, outcome.Err = exportHTMLOnly(ctx, exp, doc, base, params)
		outcome.Duration = time.Since(start)
		return outcome
	}

	results, err := exp.ExportAll(ctx, doc, base)
	if err != nil {
		outcome.Err = err
		outcome.Duration = time.Since(start)
		return outcome
	}

	for _, res := range results {
		outPath := rebaseOutputPath(res.OutputPath, doc.Path, params)
		if err := writeOutput(outPath, res.Data); err != nil {
			outcome.Err = err
			outcome.Duration = time.Since(start)
			return outcome
		}
		outcome.Outputs = append(outcome.Outputs, outPath)

		// --html: also keep the intermediate HTML next to PDF targets
		if params.html && res.Format == myst2pdf.FormatPDF {
			htmlRes, err := exp.Export(ctx, myst2pdf.Input{
				Document: doc,
				Template: res.Template,
				Page:     params.page,
				Footer:   params.footer,
				HTMLOnly: true,
			})
			if err != nil {
				outcome.Err = err
				outcome.Duration = time.Since(start)
				return outcome
			}
			htmlPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".html"
			if err := writeOutput(htmlPath, htmlRes.HTML); err != nil {
				outcome.Err = err
				outcome.Duration = time.Since(start)
				return outcome
			}
			outcome.Outputs = append(outcome.Outputs, htmlPath)
		}
	}

	outcome.Duration = time.Since(start)
	return outcome
}

// exportHTMLOnly renders a single HTML file per document, skipping the
// declared targets entirely.
func exportHTMLOnly(ctx context.Context, exp Exporter, doc *myst2pdf.Document, base myst2pdf.Input, params *exportParams) ([]string, error) {
	input := base
	input.Document = doc
	input.HTMLOnly = true

	res, err := exp.Export(ctx, input)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path)) + ".html"
	outPath := rebaseOutputPath(filepath.Join(doc.Dir(), name), doc.Path, params)
	if err := writeOutput(outPath, res.HTML); err != nil {
		return nil, err
	}
	return []string{outPath}, nil
}

// rebaseOutputPath moves a resolved target path under --output when set,
// preserving the document's directory structure relative to the batch root.
func rebaseOutputPath(target, docPath string, params *exportParams) string {
	if params.outputDir == "" {
		return target
	}

	// Explicit file path: single-target override
	ext := filepath.Ext(params.outputDir)
	if ext == ".pdf" || ext == ".html" {
		return params.outputDir
	}

	if params.inputBase != "" {
		if rel, err := filepath.Rel(params.inputBase, docPath); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.Join(params.outputDir, filepath.Dir(rel), filepath.Base(target))
		}
	}
	return filepath.Join(params.outputDir, filepath.Base(target))
}

// writeOutput creates parent directories and writes one output file.
func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return fmt.Errorf("creating output directory: %w%s", err, hints.ForOutputDirectory())
	}
	// #nosec G306 -- exported documents are meant to be readable
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}

// printOutcomes writes per-document results and returns the failure count.
func printOutcomes(outcomes []ExportOutcome, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int

	for _, o := range outcomes {
		// Non-fatal reference problems are warnings
		if o.Err == nil && len(o.Problems) > 0 && !quiet {
			for _, p := range o.Problems {
				fmt.Fprintf(env.Stderr, "warning: %s: %s\n", o.InputPath, p)
			}
		}

		if o.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", o.InputPath, o.Err)
			for _, p := range o.Problems {
				fmt.Fprintf(env.Stderr, "  %s\n", p)
			}
			continue
		}

		succeeded++
		if quiet {
			continue
		}

		for _, out := range o.Outputs {
			if verbose {
				fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", o.InputPath, out, o.Duration.Round(time.Millisecond))
			} else {
				fmt.Fprintf(env.Stdout, "Created %s\n", out)
			}
		}
	}

	if !quiet && len(outcomes) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
