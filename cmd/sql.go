package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/report"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the goalie database",
	Long: `Run an arbitrary SQL query against the goalie database and print results as a table.

Schema overview:
  players(player_id TEXT PK, first_name, last_name, shoots_catches 'L'|'R'|NULL)
  shots(id, event_type, season, game_id, game_type, goalie_id -> players,
    event_id, period, period_type, period_time, date_time,
    x_coordinate REAL NULL, y_coordinate REAL NULL)
  ingested_files(file PK, run_id, ingested_at, players_added, events_added)

Note: ids are stored as TEXT. Use quotes: WHERE goalie_id = '8471679'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}
	report.PrintRows(os.Stdout, cols, rows)
	return nil
}
