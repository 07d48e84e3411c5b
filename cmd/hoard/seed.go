package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed FILE",
	Short: "Load entries into a cache directory from a seed file",
	Long: `Read a JSONL seed file and write each record into the backing tier.

Each line is one record:
  {"key":"caption:asset-42","value":{"text":"..."},"ttl":"1h"}

The ttl field is optional; records without one use --ttl, or the
configured default when --ttl is not given. Files ending in .zst are
decompressed on the fly.

Examples:
  # Seed a cache directory from a dump
  hoard seed artifacts.jsonl --dir ./hoard-cache

  # Seed from a compressed dump with a fixed TTL
  hoard seed artifacts.jsonl.zst --ttl 24h`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

var seedTTL time.Duration

func init() {
	seedCmd.Flags().DurationVar(&seedTTL, "ttl", 0, "TTL for records without one (0 = configured default)")
	rootCmd.AddCommand(seedCmd)
}

// seedRecord is one line of a seed file.
type seedRecord struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
	TTL   string          `json:"ttl"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	seedFile := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Seeding is pointless unless entries land on the backing tier.
	cfg.WriteThrough = true

	cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	defer cache.Close()

	// Open seed file.
	var reader io.Reader
	file, err := os.Open(seedFile)
	if err != nil {
		return fmt.Errorf("opening seed file: %w", err)
	}
	defer file.Close()

	// Handle zstd compression.
	if strings.HasSuffix(seedFile, ".zst") {
		decoder, err := zstd.NewReader(file)
		if err != nil {
			return fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer decoder.Close()
		reader = decoder
	} else {
		reader = file
	}

	// Setup context with cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, stopping...")
		cancel()
	}()

	fmt.Printf("Seeding cache\n")
	fmt.Printf("  Source: %s\n", seedFile)
	fmt.Printf("  Target: %s\n", cfg.Dir)
	fmt.Println()

	start := time.Now()
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024) // 64MB max line, images are big.

	var loaded, skipped int64
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec seedRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.Key == "" || len(rec.Value) == 0 {
			skipped++
			if verbose {
				fmt.Fprintf(os.Stderr, "  skipping record %d: %v\n", loaded+skipped, err)
			}
			continue
		}

		ttl := seedTTL
		if rec.TTL != "" {
			parsed, err := time.ParseDuration(rec.TTL)
			if err != nil {
				skipped++
				if verbose {
					fmt.Fprintf(os.Stderr, "  skipping %s: bad ttl %q\n", rec.Key, rec.TTL)
				}
				continue
			}
			ttl = parsed
		}

		cache.Set(ctx, rec.Key, rec.Value, ttl)

		loaded++
		if loaded%10000 == 0 {
			fmt.Printf("  [Seed] %d records loaded\n", loaded)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	fmt.Printf("\nSeeded %d entries in %s", loaded, time.Since(start).Round(time.Millisecond))
	if skipped > 0 {
		fmt.Printf(" (%d skipped)", skipped)
	}
	fmt.Println(".")
	return nil
}
