package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asheshgoplani/ferndeck/internal/config"
	"github.com/asheshgoplani/ferndeck/internal/outline"
	"github.com/asheshgoplani/ferndeck/internal/watch"
)

// handleReplay builds the tree from a snapshot file and prints its outline,
// optionally rebuilding whenever the file changes.
func handleReplay(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print the outline as JSON")
	watchFile := fs.Bool("watch", false, "Rebuild and print again whenever the snapshot changes")
	width := fs.Int("width", cfg.Outline.TitleWidth, "Maximum title width in text output")

	fs.Usage = func() {
		fmt.Println("Usage: ferndeck replay [options] <snapshot.yaml>")
		fmt.Println()
		fmt.Println("Build the window/tab tree from a browser snapshot and print it.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  ferndeck replay state.yaml")
		fmt.Println("  ferndeck replay --json state.yaml")
		fmt.Println("  ferndeck replay --watch state.yaml")
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected exactly one snapshot file")
		fs.Usage()
		return 1
	}
	path := fs.Arg(0)

	render := func() error {
		out, res, err := buildOutline(cfg, path)
		reportProblems(os.Stderr, res)
		if err != nil {
			return err
		}
		if *asJSON {
			return writeJSON(os.Stdout, out)
		}
		return outline.WriteText(os.Stdout, out, *width)
	}

	if err := render(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !*watchFile {
			return 1
		}
	}
	if !*watchFile {
		return 0
	}

	if err := watchAndReplay(cfg, path, render); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func watchAndReplay(cfg *config.Config, path string, render func() error) error {
	w, err := watch.New(path, func() {
		fmt.Println()
		if err := render(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	},
		watch.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond),
		watch.WithMaxPerSecond(cfg.Watch.MaxReloadsPerSec),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(os.Stderr, "Watching %s. Press Ctrl+C to stop.\n", w.Path())

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer stop()
		return w.Run(ctx)
	})
	eg.Go(func() error {
		<-ctx.Done()
		return w.Close()
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
