package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/model"
	"github.com/pable/go-goalie-metrics/internal/report"
)

var goaliesMissing bool

var goaliesCmd = &cobra.Command{
	Use:   "goalies [filter]",
	Short: "List stored goalies, optionally filtered by id or name",
	Args:  cobra.ArbitraryArgs,
	RunE:  runGoalies,
}

func init() {
	goaliesCmd.Flags().BoolVar(&goaliesMissing, "missing-hand", false, "only goalies whose catching hand is unknown")
}

func runGoalies(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var players []model.Player
	if goaliesMissing {
		players, err = db.PlayersMissingHandedness()
	} else {
		players, err = db.ListPlayers(strings.Join(args, " "))
	}
	if err != nil {
		return fmt.Errorf("list goalies: %w", err)
	}
	if len(players) == 0 {
		fmt.Fprintln(os.Stdout, "No goalies found. Run 'goaliemetrics ingest <corpus-dir>' to add some.")
		return nil
	}
	report.PrintGoalieTable(os.Stdout, players)

	total, shots, err := db.Counts()
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}
	fmt.Fprintf(os.Stdout, "%d of %d goalies, %d events stored\n", len(players), total, shots)
	return nil
}
