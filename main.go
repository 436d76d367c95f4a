package main

import (
	"fmt"
	"os"

	"github.com/masonr9/CSC400Project-sub000/internal/cli"
	"github.com/masonr9/CSC400Project-sub000/internal/config"
	"github.com/masonr9/CSC400Project-sub000/internal/entrypoint"
)

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// subcommand is the shape shared by the maintenance commands under
// internal/cli.
type subcommand interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// Bare invocation serves; everything else dispatches below.
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		entrypoint.Run(config.NewConfig(), Version)
		return
	}

	name, args := os.Args[1], os.Args[2:]

	var cmd subcommand
	switch name {
	case "create-admin":
		cmd = cli.NewCreateAdminCommand()
	case "seed-demo":
		cmd = cli.NewSeedDemoCommand()
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
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  serve         Start the HTTP server (default if no command given)")
	fmt.Fprintln(os.Stderr, "  create-admin  Create an administrator account")
	fmt.Fprintln(os.Stderr, "  seed-demo     Load a small demo catalog into the database")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
