package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache command with path and clear subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered-artifact cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cachePath()
			if err != nil {
				return err
			}
			printFile(dir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all cached artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear()
		},
	})

	return cmd
}

// cachePath resolves the file-cache directory from config or XDG defaults.
func (c *CLI) cachePath() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// runCacheClear removes cache entry files under the cache directory.
// Entries live in 2-character hash subdirectories; anything else in the
// directory is left alone.
func (c *CLI) runCacheClear() error {
	dir, err := c.cachePath()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}
	if err != nil {
		return err
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || len(entry.Name()) != 2 {
			continue
		}
		sub := filepath.Join(dir, entry.Name())
		files, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		removed += len(files)
		if err := os.RemoveAll(sub); err != nil {
			return err
		}
	}

	if removed == 0 {
		printInfo("Cache is empty")
		return nil
	}
	printSuccess("Removed %d cache entries from %s", removed, dir)
	return nil
}
