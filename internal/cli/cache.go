package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache command with its subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local result cache",
		Long: `Manage the local result cache.

Graphs and layouts are cached under the XDG cache directory
(~/.cache/kintree/ by default) keyed by content hashes, so reruns with
unchanged data skip traversal and layout.`,
	}

	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

// cachePathCommand prints the cache directory.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("resolve cache directory: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cacheClearCommand removes all cached entries.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached graphs and layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("resolve cache directory: %w", err)
			}
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cache cleared")
			printFile(dir)
			return nil
		},
	}
}
