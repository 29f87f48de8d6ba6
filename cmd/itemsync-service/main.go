package main

import (
	"os"

	"github.com/spf13/cobra"
)

var skipInitialLoad bool

var rootCmd = &cobra.Command{
	Use:   "itemsync-service",
	Short: "Relay local item changes to the remote mirror, the cache and live clients",
	Long: `
	Serves the items CRUD API and runs the change relay: every change in the
	local items table is copied to the remote table, refreshes the cached
	inventory snapshot and is pushed to websocket clients.
`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), skipInitialLoad)
	},
}

var initialLoadCmd = &cobra.Command{
	Use:   "initial-load",
	Short: "Copy every local item to an empty remote table, then exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initialLoad(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().BoolVar(&skipInitialLoad, "skip-initial-load", false, "do not seed the remote table on startup")
	rootCmd.AddCommand(initialLoadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
