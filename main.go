package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/holonet/internal/cli"
	"github.com/mrlokans/holonet/internal/config"
	"github.com/mrlokans/holonet/internal/entrypoint"
	"github.com/mrlokans/holonet/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every one-shot CLI command.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	cfg := config.NewConfig()
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "sync":
		cmd = cli.NewSyncCommand()
	case "list":
		cmd = cli.NewListCommand()
	case "status":
		cmd = cli.NewStatusCommand()
	case "favourite":
		cmd = cli.NewFavouriteCommand()
	case "version":
		fmt.Printf("holonet %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve      Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  sync       Refresh a list and append further pages\n")
	fmt.Fprintf(os.Stderr, "  list       Show a window of a cached list\n")
	fmt.Fprintf(os.Stderr, "  status     Show cache state of every list\n")
	fmt.Fprintf(os.Stderr, "  favourite  Set or clear the favourite flag of an item\n")
	fmt.Fprintf(os.Stderr, "  version    Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
