package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/asheshgoplani/ferndeck/internal/config"
)

func handleConfig(cfg *config.Config, path string, args []string) int {
	action := "show"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "show":
		if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	case "path":
		fmt.Println(path)
	case "init":
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists\n", path)
			return 1
		}
		if err := config.Save(path, config.Defaults()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Wrote %s\n", path)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown config action %q (want show, init or path)\n", action)
		return 1
	}
	return 0
}
