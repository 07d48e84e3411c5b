package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove entries from a cache directory",
	Long: `Remove cached entries from the backing tier.

By default every entry is removed. With --expired only entries whose TTL
has lapsed are removed, which reclaims space without discarding artifacts
that are still live.`,
	RunE: runClear,
}

var clearExpired bool

func init() {
	clearCmd.Flags().BoolVar(&clearExpired, "expired", false, "only remove expired entries")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Dir); os.IsNotExist(err) {
		return fmt.Errorf("cache directory %q does not exist", cfg.Dir)
	}

	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	var removed int
	for _, entry := range entries {
		if entry.IsDir() || blobCodec(entry.Name()) == nil {
			continue
		}
		path := filepath.Join(cfg.Dir, entry.Name())

		if clearExpired {
			e, err := readBlobFile(path)
			if err != nil {
				if verbose {
					fmt.Fprintf(os.Stderr, "  skipping %s: %v\n", entry.Name(), err)
				}
				continue
			}
			if !e.Expired() {
				continue
			}
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
		removed++
	}

	if clearExpired {
		fmt.Printf("Cleared %d expired entries.\n", removed)
	} else {
		fmt.Printf("Cleared %d entries.\n", removed)
	}
	return nil
}
