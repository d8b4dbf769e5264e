package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jhconning/myst2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // MYST2PDF_CONFIG: config file path
	Style      string        // MYST2PDF_STYLE: CSS style name or path
	Timeout    time.Duration // MYST2PDF_TIMEOUT: PDF generation timeout

	// Tier 2 - I/O
	InputDir  string // MYST2PDF_INPUT_DIR: default input directory
	OutputDir string // MYST2PDF_OUTPUT_DIR: default output directory
	FigureDir string // MYST2PDF_FIGURE_DIR: figure asset directory

	// Tier 3 - Extended
	Template string // MYST2PDF_TEMPLATE: default template set
	PageSize string // MYST2PDF_PAGE_SIZE: a4, letter, legal
	Strict   bool   // MYST2PDF_STRICT: fail on unresolved references
	Workers  int    // MYST2PDF_WORKERS: parallel workers
}

// knownEnvVars lists valid MYST2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"MYST2PDF_CONFIG":  true,
	"MYST2PDF_STYLE":   true,
	"MYST2PDF_TIMEOUT": true,
	// Tier 2 - I/O
	"MYST2PDF_INPUT_DIR":  true,
	"MYST2PDF_OUTPUT_DIR": true,
	"MYST2PDF_FIGURE_DIR": true,
	// Tier 3 - Extended
	"MYST2PDF_TEMPLATE":  true,
	"MYST2PDF_PAGE_SIZE": true,
	"MYST2PDF_STRICT":    true,
	"MYST2PDF_WORKERS":   true,
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized MYST2PDF_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		// Tier 1
		ConfigPath: os.Getenv("MYST2PDF_CONFIG"),
		Style:      os.Getenv("MYST2PDF_STYLE"),
		// Tier 2
		InputDir:  os.Getenv("MYST2PDF_INPUT_DIR"),
		OutputDir: os.Getenv("MYST2PDF_OUTPUT_DIR"),
		FigureDir: os.Getenv("MYST2PDF_FIGURE_DIR"),
		// Tier 3
		Template: os.Getenv("MYST2PDF_TEMPLATE"),
		PageSize: os.Getenv("MYST2PDF_PAGE_SIZE"),
	}

	// Parse duration for timeout
	if timeout := os.Getenv("MYST2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	// Parse bool for strict
	if strict := os.Getenv("MYST2PDF_STRICT"); strict != "" {
		if b, err := strconv.ParseBool(strict); err == nil {
			cfg.Strict = b
		}
	}

	// Parse int for workers
	if workers := os.Getenv("MYST2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MYST2PDF_* variables.
// Helps catch typos like MYST2PDF_STYL instead of MYST2PDF_STYLE.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "MYST2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty/zero.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1 - Style (timeout handled separately in resolveTimeout)
	if env.Style != "" && cfg.Style.Name == "" {
		cfg.Style.Name = env.Style
	}

	// Tier 2 - I/O
	if env.InputDir != "" && cfg.Input.DefaultDir == "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.FigureDir != "" && cfg.Figures.Dir == "" {
		cfg.Figures.Dir = env.FigureDir
	}

	// Tier 3 - Extended
	if env.Template != "" && cfg.Style.Template == "" {
		cfg.Style.Template = env.Template
	}
	if env.PageSize != "" && cfg.Page.Size == "" {
		cfg.Page.Size = env.PageSize
	}
	if env.Strict && !cfg.Check.Strict {
		cfg.Check.Strict = true
	}
}
