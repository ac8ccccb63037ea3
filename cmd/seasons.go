package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/report"
)

var seasonsCmd = &cobra.Command{
	Use:   "seasons <goalie-id>",
	Short: "List the seasons a goalie has events for",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeasons,
}

func runSeasons(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := db.GetPlayer(args[0])
	if err != nil {
		return fmt.Errorf("get goalie: %w", err)
	}
	if p == nil {
		return fmt.Errorf("unknown goalie %q", args[0])
	}
	seasons, err := db.Seasons(p.PlayerID)
	if err != nil {
		return fmt.Errorf("query seasons: %w", err)
	}
	if len(seasons) == 0 {
		fmt.Fprintf(os.Stdout, "No events stored for %s.\n", p.FullName())
		return nil
	}
	fmt.Fprintf(os.Stdout, "\n%s (%s)\n\n", p.FullName(), p.PlayerID)
	report.PrintSeasonTable(os.Stdout, seasons)
	return nil
}
