// Package main provides gridctl, a one-shot command line view of grid capacity.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/narvanalabs/grid-explorer/internal/capacity"
	"github.com/narvanalabs/grid-explorer/internal/registry"
	"github.com/narvanalabs/grid-explorer/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "gridctl",
	Short:        "inspect grid capacity from the registry",
	Long:         "Pulls the node and farm registry once and prints aggregate statistics or filtered node listings as JSON",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("registry", "https://explorer.grid.tf/explorer", "Registry base URL")
	rootCmd.PersistentFlags().Int("page-size", registry.DefaultPageSize, "Records requested per registry page")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Timeout for the whole registry pull")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log registry activity to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadStore builds a store from the persistent flags and pulls the registry once.
func loadStore(cmd *cobra.Command) (*capacity.Store, error) {
	baseURL, _ := cmd.Flags().GetString("registry")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := logger.ParseLevel("warn")
	if verbose {
		level = logger.ParseLevel("debug")
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), level, false)

	client := registry.NewClient(baseURL, timeout, pageSize)
	store := capacity.NewStore(
		capacity.WithFetcher(client),
		capacity.WithLogger(log.Logger),
		capacity.WithRefreshTimeout(timeout),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if _, err := store.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("pulling registry %s: %w", baseURL, err)
	}
	return store, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
