package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlens/pkg/cache"
)

// cacheCommand groups the subcommands that inspect the local file cache.
// A Redis cache configured with --redis-addr is managed by its server.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local diagram cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached diagram, artifact and git source",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return clearCache() },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print where cached diagrams are stored",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("resolve cache directory: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), dir)
				return err
			},
		},
	)
	return cmd
}

func clearCache() error {
	dir, err := cacheDir()
	if err != nil {
		return fmt.Errorf("resolve cache directory: %w", err)
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		printInfo("Cache is empty")
		return nil
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := fc.Clear()
	if err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	printSuccess("Removed %d cache entries", n)
	printDetail("%s", dir)
	return nil
}
