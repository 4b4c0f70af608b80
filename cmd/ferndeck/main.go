package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/asheshgoplani/ferndeck/internal/config"
	"github.com/asheshgoplani/ferndeck/internal/logging"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	configPath, verbose, args := parseGlobalFlags(argv)
	if len(args) == 0 {
		printUsage()
		return 1
	}

	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	closer := setupLogging(cfg, verbose)
	defer closer.Close()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "replay":
		return handleReplay(cfg, rest)
	case "find":
		return handleFind(cfg, rest)
	case "config":
		return handleConfig(cfg, configPath, rest)
	case "version", "--version":
		fmt.Printf("ferndeck %s\n", Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		printUsage()
		return 1
	}
	return 0
}

// parseGlobalFlags pulls -c/--config and -v/--verbose off the front of args.
func parseGlobalFlags(args []string) (configPath string, verbose bool, rest []string) {
	for len(args) > 0 {
		arg := args[0]
		switch {
		case arg == "-v" || arg == "--verbose":
			verbose = true
			args = args[1:]
		case (arg == "-c" || arg == "--config") && len(args) > 1:
			configPath = args[1]
			args = args[2:]
		case strings.HasPrefix(arg, "--config="):
			configPath = strings.TrimPrefix(arg, "--config=")
			args = args[1:]
		default:
			return configPath, verbose, args
		}
	}
	return configPath, verbose, args
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogging routes component logs to stderr when verbose, otherwise to
// the rotating log file. Logging failures never stop the command.
func setupLogging(cfg *config.Config, verbose bool) io.Closer {
	if verbose {
		logging.SetOutput(os.Stderr)
		return nopCloser{}
	}
	if cfg.Log.File == "" {
		return nopCloser{}
	}
	w, err := logging.OpenFile(logging.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		return nopCloser{}
	}
	logging.SetOutput(w)
	return w
}

func printUsage() {
	fmt.Println("ferndeck - keep a window/tab tree in step with browser state")
	fmt.Println()
	fmt.Println("Usage: ferndeck [-c config.toml] [-v] <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  replay <snapshot.yaml>        Build the tree from a snapshot and print it")
	fmt.Println("  find <snapshot.yaml> <query>  Fuzzy-find windows and tabs by title")
	fmt.Println("  config [show|init|path]       Inspect or create the config file")
	fmt.Println("  version                       Print the version")
}
