package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kindredlab/kintree/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The flag value is only known after parsing, so the level switch
	// happens in the pre-run hook.
	root.PersistentPreRun = func(*cobra.Command, []string) {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
	}

	return root.ExecuteContext(ctx)
}
