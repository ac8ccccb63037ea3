package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/aggregator"
	"github.com/pable/go-goalie-metrics/internal/model"
	"github.com/pable/go-goalie-metrics/internal/report"
	"github.com/pable/go-goalie-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cGreeting.Println("goaliemetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("goalies")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "find":
			shellFind(db, strings.Join(args, " "))
		case "seasons":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: seasons <goalie-id>")
				continue
			}
			shellSeasons(db, args[0])
		case "sides", "shots":
			if len(args) < 2 {
				cError.Fprintf(os.Stderr, "usage: %s <goalie-id> <season>\n", cmd)
				continue
			}
			season := strings.Join(args[1:], " ")
			if cmd == "sides" {
				shellSides(db, args[0], season)
			} else {
				shellShots(db, args[0], season)
			}
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"find [text]", "search goalies by id or name"},
		{"seasons <goalie-id>", "seasons with stored events"},
		{"sides <goalie-id> <season>", "glove/stick save percentages"},
		{"shots <goalie-id> <season>", "every event with its side"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-30s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellFind(db *storage.DB, filter string) {
	players, err := db.ListPlayers(filter)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(players) == 0 {
		cMuted.Println("No matching goalies.")
		return
	}
	report.PrintGoalieTable(os.Stdout, players)
}

func shellSeasons(db *storage.DB, id string) {
	seasons, err := db.Seasons(id)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(seasons) == 0 {
		cMuted.Printf("No events for %s.\n", id)
		return
	}
	report.PrintSeasonTable(os.Stdout, seasons)
}

func shellSides(db *storage.DB, id, seasonArg string) {
	season, err := model.ParseSeason(seasonArg)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	a, err := aggregator.AnalyzeSides(db, id, season)
	var unknown *aggregator.UnknownGoalieError
	switch {
	case errors.As(err, &unknown):
		cWarn.Fprintf(os.Stderr, "no goalie with id %s, try 'find'\n", unknown.GoalieID)
	case errors.Is(err, aggregator.ErrNoData):
		cMuted.Printf("No events for %s in %s.\n", id, model.FormatSeason(season))
	case err != nil:
		cError.Fprintf(os.Stderr, "error: %v\n", err)
	default:
		report.PrintSideAnalysis(os.Stdout, a)
	}
}

func shellShots(db *storage.DB, id, seasonArg string) {
	p, season, err := goalieSeason(db, id, seasonArg)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	events, err := db.QueryEvents(p.PlayerID, season)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(events) == 0 {
		cMuted.Printf("No events for %s in %s.\n", p.FullName(), model.FormatSeason(season))
		return
	}
	report.PrintShotTable(os.Stdout, events, p.ShootsCatches)
}
