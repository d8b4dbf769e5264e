package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], DefaultEnv()))
}

// run dispatches to a subcommand and returns the process exit code.
func run(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[0] {
	case "export":
		return runExportCmd(args[1:], env)
	case "check":
		return runCheckCmd(args[1:], env)
	case "version":
		fmt.Fprintf(env.Stdout, "myst2pdf %s\n", Version)
		return ExitSuccess
	case "help", "--help", "-h":
		runHelp(args[1:], env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// runExportCmd parses flags and runs the export command.
func runExportCmd(args []string, env *Environment) int {
	flags, positional, err := parseExportFlags(args)
	if err != nil {
		return ExitUsage
	}

	configureMaxProcs(flags.common.verbose, env)

	// Interrupt and termination cancel in-flight exports so browser
	// instances shut down instead of being orphaned. SIGTERM is a no-op
	// signal on Windows; the constant still compiles there.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runExport(ctx, positional, flags, env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runCheckCmd parses flags and runs the check command.
func runCheckCmd(args []string, env *Environment) int {
	flags, positional, err := parseCheckFlags(args)
	if err != nil {
		return ExitUsage
	}

	if err := runCheck(positional, flags, env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// configureMaxProcs aligns GOMAXPROCS with container CPU limits.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func configureMaxProcs(verbose bool, env *Environment) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(env.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}
}
