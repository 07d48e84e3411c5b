package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/captionart/hoard"
	"github.com/captionart/hoard/config"
	"github.com/captionart/hoard/internal/codec"
	"github.com/captionart/hoard/internal/codec/gzipcodec"
	"github.com/captionart/hoard/internal/codec/noopcodec"
	"github.com/captionart/hoard/internal/codec/zstdcodec"
	"github.com/captionart/hoard/internal/store"
)

var (
	// Global flags.
	cacheDir   string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "hoard",
	Short: "Manage and inspect artifact cache directories",
	Long: `Hoard is a CLI tool for managing the two-tier artifact cache used by
the caption and image generation pipeline.

It operates on the backing tier directly, so it can report on and clean
up cache directories without going through a running service.

Examples:
  # Show statistics for a cache directory
  hoard stats --dir ./hoard-cache

  # Drop only expired entries
  hoard clear --dir ./hoard-cache --expired

  # Inspect a single cached artifact
  hoard inspect "caption:asset-42"

  # Compare eviction policies on a synthetic workload
  hoard bench --workload zipf --policies creation,lru`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cacheDir, "dir", "d", "", "cache directory (overrides config file)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// loadConfig resolves the effective configuration: the config file when
// given, defaults otherwise, with the --dir flag taking precedence over
// both.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cacheDir != "" {
		cfg.Dir = cacheDir
	}
	return cfg, nil
}

// newLogger builds the CLI logger: a development logger with --verbose,
// silent otherwise.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openCache builds a cache from the effective configuration.
func openCache(cfg *config.Config) (*hoard.Cache, error) {
	opts, err := cfg.Options(newLogger())
	if err != nil {
		return nil, err
	}
	return hoard.New(opts...)
}

// blobCodec returns the codec matching a blob file name, or nil when the
// name is not a blob at all.
func blobCodec(name string) codec.Codec {
	switch {
	case strings.HasSuffix(name, store.Ext):
		return noopcodec.New()
	case strings.HasSuffix(name, store.Ext+".gz"):
		return gzipcodec.New()
	case strings.HasSuffix(name, store.Ext+".zst"):
		return zstdcodec.New()
	default:
		return nil
	}
}

// readBlobFile reads and decodes one serialized entry from the backing
// tier, decompressing by file extension.
func readBlobFile(path string) (*hoard.Entry, error) {
	c := blobCodec(path)
	if c == nil {
		return nil, fmt.Errorf("%s: not a cache blob", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	reader, err := c.Reader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompressing entry: %w", err)
	}

	var e hoard.Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decoding entry: %w", err)
	}
	if len(e.Data) == 0 {
		return nil, fmt.Errorf("decoding entry: no data field")
	}
	return &e, nil
}
