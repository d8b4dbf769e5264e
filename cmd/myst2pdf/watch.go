package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces editor save bursts (write + chmod + rename) into
// a single re-export.
const debounceWindow = 250 * time.Millisecond

// watchAndExport runs an initial export, then re-exports changed documents
// until the context is canceled. Watches the directories containing the
// inputs; figure and bibliography edits next to a document also trigger its
// re-export since they live in watched directories.
func watchAndExport(ctx context.Context, pool Pool, files []string, params *exportParams, flags *exportFlags, env *Environment) error {
	// Initial full export
	outcomes := exportBatch(ctx, pool, files, params)
	printOutcomes(outcomes, flags.common.quiet, flags.common.verbose, env)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	byDir := make(map[string][]string)
	for _, f := range files {
		dir := filepath.Dir(f)
		byDir[dir] = append(byDir[dir], f)
		if !watched[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watching %s: %w", dir, err)
			}
			watched[dir] = true
		}
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "Watching %d director(ies), ctrl-c to stop\n", len(watched))
	}

	// Debounce timer: pending paths accumulate until the window expires.
	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			for _, doc := range affectedDocuments(event.Name, byDir) {
				pending[doc] = true
			}
			if len(pending) > 0 {
				if timer == nil {
					timer = time.NewTimer(debounceWindow)
					timerC = timer.C
				} else {
					timer.Reset(debounceWindow)
				}
			}

		case <-timerC:
			changed := make([]string, 0, len(pending))
			for doc := range pending {
				changed = append(changed, doc)
			}
			pending = make(map[string]bool)
			timer = nil
			timerC = nil

			outcomes := exportBatch(ctx, pool, changed, params)
			printOutcomes(outcomes, flags.common.quiet, flags.common.verbose, env)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(env.Stderr, "watch error: %v\n", err)
		}
	}
}

// affectedDocuments maps a changed path to the documents to re-export.
// A changed markdown input re-exports itself; any other change (figure
// asset, bibliography) re-exports every document in that directory.
func affectedDocuments(changed string, byDir map[string][]string) []string {
	if isMarkdownFile(changed) {
		for _, docs := range byDir {
			for _, doc := range docs {
				if doc == changed {
					return []string{changed}
				}
			}
		}
		return nil // a markdown file outside the batch
	}

	dir := filepath.Dir(changed)
	return byDir[dir]
}
