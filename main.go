package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/pocketbook-sync/internal/config"
	"github.com/mrlokans/pocketbook-sync/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	command := "sync"
	if len(os.Args) >= 2 {
		command = os.Args[1]
	}

	switch command {
	case "sync":
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		err := entrypoint.RunOnce(ctx, config.NewConfig(), os.Stdout)
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "check":
		if err := entrypoint.Check(context.Background(), config.NewConfig(), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "serve":
		entrypoint.Run(config.NewConfig(), Version)

	case "version":
		fmt.Printf("pocketbook-sync %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [command]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  sync     Push all Pocketbook highlights to Readwise once (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  serve    Run scheduled syncs with an HTTP status API\n")
	fmt.Fprintf(os.Stderr, "  check    Verify Pocketbook and Readwise credentials\n")
	fmt.Fprintf(os.Stderr, "  version  Print version information\n")
	fmt.Fprintf(os.Stderr, "\nConfiguration is read from the environment: POCKETBOOK_LOGIN_PROVIDER,\n")
	fmt.Fprintf(os.Stderr, "POCKETBOOK_LOGIN_DATA and READWISE_TOKEN are required.\n")
}
