package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/asheshgoplani/ferndeck/internal/config"
	"github.com/asheshgoplani/ferndeck/internal/outline"
)

// handleFind replays a snapshot and fuzzy-matches a query against titles.
func handleFind(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("find", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print matches as JSON")
	limit := fs.Int("limit", 10, "Maximum number of matches")

	fs.Usage = func() {
		fmt.Println("Usage: ferndeck find [options] <snapshot.yaml> <query>")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		return 1
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return 1
	}

	out, res, err := buildOutline(cfg, fs.Arg(0))
	reportProblems(os.Stderr, res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	matches := outline.Find(out, strings.Join(fs.Args()[1:], " "))
	if *limit > 0 && len(matches) > *limit {
		matches = matches[:*limit]
	}
	if *asJSON {
		if err := writeJSON(os.Stdout, matches); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}
	if len(matches) == 0 {
		fmt.Println("No matches.")
		return 0
	}
	for _, m := range matches {
		location := ""
		if m.Item.Tab != nil {
			location = m.Item.Tab.URL
		}
		fmt.Printf("%-36s  %-6s  %s  %s\n", m.Item.NodeID, m.Item.Type, m.Item.Title, location)
	}
	return 0
}
