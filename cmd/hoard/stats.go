package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about a cache directory",
	Long: `Display statistics about the backing tier of a cache directory:
- Number of cached entries
- Total size on disk
- Expired entries still awaiting lazy cleanup
- Age of the oldest entry`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	var (
		blobCount  int
		totalSize  int64
		expired    int
		unreadable int
		oldest     time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(cfg.Dir, entry.Name())
		if blobCodec(entry.Name()) == nil {
			continue
		}
		blobCount++

		if info, err := entry.Info(); err == nil {
			totalSize += info.Size()
		}

		e, err := readBlobFile(path)
		if err != nil {
			if verbose {
				fmt.Fprintf(os.Stderr, "  skipping %s: %v\n", entry.Name(), err)
			}
			unreadable++
			continue
		}
		if e.Expired() {
			expired++
		}
		if oldest.IsZero() || e.Timestamp.Before(oldest) {
			oldest = e.Timestamp
		}
	}

	if blobCount == 0 {
		fmt.Println("No cache entries found.")
		return nil
	}

	fmt.Printf("Cache directory: %s\n", cfg.Dir)
	fmt.Printf("Entries:         %d\n", blobCount)
	fmt.Printf("Total size:      %s\n", humanize.IBytes(uint64(totalSize)))
	fmt.Printf("Expired:         %d\n", expired)
	if unreadable > 0 {
		fmt.Printf("Unreadable:      %d\n", unreadable)
	}
	if !oldest.IsZero() {
		fmt.Printf("Oldest entry:    %s\n", humanize.Time(oldest))
	}

	return nil
}
