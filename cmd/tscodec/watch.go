package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/tscodec/tscodec/internal/watcher"
	"go.uber.org/zap"
)

const watchDebounce = 300 * time.Millisecond

var watchExtensions = []string{".ts", ".tsx", ".mts", ".cts"}

// runWatch runs an initial build and then rebuilds whenever a TypeScript
// source under the configured include roots changes. Builds run from
// scratch; the transform cache keeps unchanged files cheap.
func runWatch(args []string) int {
	opts, _ := parseBuildFlags("watch", args)
	log := newLogger(opts.verbose)
	defer log.Sync()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not get working directory: %v\n", err)
		return 1
	}
	cfg, _, err := loadConfig(cwd, opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if code := buildOnce(opts, log); code != 0 {
		fmt.Fprintln(os.Stderr, "initial build failed; watching for changes")
	}

	dirs := watchRoots(cwd, cfg.Transform.Include)
	log.Info("watching for changes", zap.Strings("dirs", dirs))

	rebuilding := make(chan struct{}, 1)
	w := watcher.New(dirs, watchExtensions, watchDebounce, func(events []watcher.Event) {
		// Drop bursts that arrive while a rebuild is already queued.
		select {
		case rebuilding <- struct{}{}:
		default:
			return
		}
		defer func() { <-rebuilding }()

		log.Info("source changed", zap.Int("events", len(events)), zap.String("first", events[0].Path))
		start := time.Now()
		if code := buildOnce(opts, log); code != 0 {
			fmt.Fprintln(os.Stderr, "rebuild failed; watching for changes")
		} else {
			fmt.Fprintf(os.Stderr, "rebuilt in %s\n", time.Since(start).Round(time.Millisecond))
		}
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		w.Stop()
	}()

	if err := w.Watch(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// watchRoots derives the directories to poll from the include patterns: the
// literal path prefix before the first glob metacharacter.
func watchRoots(cwd string, includes []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, pattern := range includes {
		root := globRoot(pattern)
		if !filepath.IsAbs(root) {
			root = filepath.Join(cwd, root)
		}
		if !seen[root] {
			seen[root] = true
			dirs = append(dirs, root)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{cwd}
	}
	return dirs
}

func globRoot(pattern string) string {
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	var literal []string
	for _, part := range parts {
		if strings.ContainsAny(part, "*?[") {
			break
		}
		literal = append(literal, part)
	}
	// The last literal segment may be a file name; only keep directories.
	if len(literal) == len(parts) && len(literal) > 0 {
		literal = literal[:len(literal)-1]
	}
	if len(literal) == 0 {
		return "."
	}
	return strings.Join(literal, "/")
}
