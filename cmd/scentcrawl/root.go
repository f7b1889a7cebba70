// Package main provides the entry point for the scentcrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for scentcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scentcrawl",
		Short: "Polite crawler for the Fragrantica fragrance catalog",
		Long: `scentcrawl collects fragrance records (brand, name, rating, votes,
audience, category) from www.fragrantica.com into CSV files.

The crawler paces itself deliberately: jittered delays between
requests, identity rotation over a proxy pool, and long cooldown
breaks after bursts of saved records. Runs are resumable; pages whose
records are already stored are never fetched again.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewEnrichCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
