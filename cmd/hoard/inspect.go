package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/captionart/hoard/internal/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect KEY",
	Short: "Inspect a single cached entry",
	Long: `Look up one entry in the backing tier by its cache key and print its
metadata and payload.

Keys are hashed on disk, so the raw key must be given exactly as the
application wrote it.

Examples:
  # Inspect a cached caption
  hoard inspect "caption:asset-42"

  # Print only the payload, for piping into jq
  hoard inspect "image:asset-42" --data-only`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var inspectDataOnly bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectDataOnly, "data-only", false, "print only the cached payload")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	key := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Dir); os.IsNotExist(err) {
		return fmt.Errorf("cache directory %q does not exist", cfg.Dir)
	}

	path, info, err := findBlob(cfg.Dir, key)
	if err != nil {
		return err
	}

	e, err := readBlobFile(path)
	if err != nil {
		return fmt.Errorf("reading entry: %w", err)
	}

	if inspectDataOnly {
		fmt.Println(string(e.Data))
		return nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, e.Data, "", "  "); err != nil {
		// Not valid JSON after all; show it raw.
		pretty.Write(e.Data)
	}

	fmt.Printf("Key:     %s\n", key)
	fmt.Printf("File:    %s\n", filepath.Base(path))
	fmt.Printf("Size:    %s on disk, %s payload\n",
		humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(len(e.Data))))
	fmt.Printf("Created: %s (%s)\n", e.Timestamp.Format("2006-01-02 15:04:05"), humanize.Time(e.Timestamp))
	if e.TTL > 0 {
		fmt.Printf("TTL:     %s\n", e.TTL)
		fmt.Printf("Expired: %v\n", e.Expired())
	} else {
		fmt.Printf("TTL:     never expires\n")
	}
	fmt.Printf("Hits:    %d\n", e.Hits)
	fmt.Printf("Data:\n%s\n", pretty.String())

	return nil
}

// findBlob locates the blob file for a key, trying each codec extension.
func findBlob(dir, key string) (string, os.FileInfo, error) {
	base := store.HashKey(key) + store.Ext
	for _, name := range []string{base, base + ".gz", base + ".zst"} {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, info, nil
		}
	}
	return "", nil, fmt.Errorf("no entry for key %q", key)
}
