package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/report"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <goalie-id> <season>",
	Short: "Export a goalie's shot coordinates as CSV",
	Long: `Write one CSV row per stored event for a goalie and season, with the
coordinates and the left/right and glove/stick classification, for plotting.

Columns:
  event_type,season,game_id,game_type,goalie_id,event_id,period,period_type,
  period_time,date_time,x,y,side,label

x and y are empty for games recorded before coordinate tracking; side and label
are empty for those and for missed shots.

Example:
  goaliemetrics export 8471679 20202021 --out price-2021.csv`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(_ *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	p, season, err := goalieSeason(db, args[0], args[1])
	if err != nil {
		return err
	}
	events, err := db.QueryEvents(p.PlayerID, season)
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := report.WriteShotsCSV(w, events, p.ShootsCatches); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d events to %s\n", len(events), exportOut)
	}
	return nil
}
