package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dropForce bool

// dropCmd deletes the goalie database and its ledger.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the goalie database and ingest ledger",
	Long: `Permanently delete the SQLite goalie database, its WAL files and the ingest
ledger. All stored events will be lost. Re-run ingest afterwards to rebuild.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	targets := []string{cfg.DBPath, cfg.DBPath + "-wal", cfg.DBPath + "-shm", cfg.Ledger()}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s and %s\n", cfg.DBPath, cfg.Ledger())
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	removed := 0
	for _, path := range targets {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("remove %s: %w", path, err)
		}
		removed++
		fmt.Fprintf(os.Stdout, "Deleted: %s\n", path)
	}
	if removed == 0 {
		fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
	}
	return nil
}
