// Package main provides the hoard CLI tool for managing and inspecting
// artifact cache directories.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
