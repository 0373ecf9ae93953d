// Package cli implements the worklogctl command-line interface.
// It operates directly on the SQLite store, bypassing the HTTP layer.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/worklog-engine/store/sqlite"
	"github.com/warp/worklog-engine/worklog"
)

var (
	dbPath  string
	ownerID string
)

var rootCmd = &cobra.Command{
	Use:   "worklogctl",
	Short: "Record and report personal overtime worklogs",
	Long: `worklogctl manages a personal overtime worklog database:
record sessions, list them, and export monthly CSV reports.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "worklog.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&ownerID, "owner", "local", "Owner id the records belong to")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
}

// openStore opens the database and returns the owner-scoped view.
func openStore() (*sqlite.Store, worklog.Store, error) {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return store, store.Owner(ownerID), nil
}
