package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/aggregator"
	"github.com/pable/go-goalie-metrics/internal/model"
	"github.com/pable/go-goalie-metrics/internal/report"
)

var sidesCmd = &cobra.Command{
	Use:   "sides <goalie-id> <season>",
	Short: "Glove-side vs stick-side save percentage for a goalie and season",
	Long: `Classify every shot, blocked shot and goal with coordinates into the left or
right side of the net, map the sides to glove and stick using the goalie's
catching hand, and report the save percentage of each side and the weaker one.

Missed shots and events without coordinates are counted but never classified.`,
	Args: cobra.ExactArgs(2),
	RunE: runSides,
}

func runSides(cmd *cobra.Command, args []string) error {
	season, err := model.ParseSeason(args[1])
	if err != nil {
		return err
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := aggregator.AnalyzeSides(db, args[0], season)
	if errors.Is(err, aggregator.ErrNoData) {
		fmt.Fprintf(os.Stdout, "No events for goalie %s in %s.\n", args[0], model.FormatSeason(season))
		return nil
	}
	if err != nil {
		return err
	}
	report.PrintSideAnalysis(os.Stdout, a)
	return nil
}
