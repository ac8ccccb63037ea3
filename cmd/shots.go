package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/model"
	"github.com/pable/go-goalie-metrics/internal/report"
	"github.com/pable/go-goalie-metrics/internal/storage"
)

var shotsCmd = &cobra.Command{
	Use:   "shots <goalie-id> <season>",
	Short: "List a goalie's shot events for one season",
	Long: `List every stored shot, goal, blocked and missed shot against a goalie for
one season, with its coordinates and side classification.

The season may be written 20202021, 2020-2021 or "2020 - 2021".`,
	Args: cobra.ExactArgs(2),
	RunE: runShots,
}

func runShots(cmd *cobra.Command, args []string) error {
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
	if len(events) == 0 {
		fmt.Fprintf(os.Stdout, "No events for %s in %s.\n", p.FullName(), model.FormatSeason(season))
		return nil
	}
	fmt.Fprintf(os.Stdout, "\n%s (%s)  |  Season %s  |  %d events\n\n",
		p.FullName(), p.PlayerID, model.FormatSeason(season), len(events))
	report.PrintShotTable(os.Stdout, events, p.ShootsCatches)
	return nil
}

// goalieSeason resolves a goalie id and season argument pair.
func goalieSeason(db *storage.DB, id, seasonArg string) (*model.Player, string, error) {
	season, err := model.ParseSeason(seasonArg)
	if err != nil {
		return nil, "", err
	}
	p, err := db.GetPlayer(id)
	if err != nil {
		return nil, "", fmt.Errorf("get goalie: %w", err)
	}
	if p == nil {
		return nil, "", fmt.Errorf("unknown goalie %q", id)
	}
	return p, season, nil
}
