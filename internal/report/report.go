package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-goalie-metrics/internal/aggregator"
	"github.com/pable/go-goalie-metrics/internal/correction"
	"github.com/pable/go-goalie-metrics/internal/ingest"
	"github.com/pable/go-goalie-metrics/internal/model"
	"github.com/pable/go-goalie-metrics/internal/storage"
)

// na is shown wherever a value is not applicable.
const na = "—"

func orNA(s string) string {
	if s == "" {
		return na
	}
	return s
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// SavePct formats a side's save percentage, or "—" when no shots were classified.
func SavePct(r model.SideRecord) string {
	pct, ok := r.SavePercentage()
	if !ok {
		return na
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// PrintIngestReport prints the run summary and any per-document failures.
func PrintIngestReport(w io.Writer, r *ingest.Report) {
	fmt.Fprintf(w, "\nRun %s  |  processed %d  |  skipped %d  |  failed %d  |  players +%d  |  events +%d  |  %s\n\n",
		r.RunID, r.FilesProcessed(), r.FilesSkipped(), r.FilesFailed(),
		r.PlayersAdded, r.EventsAdded, r.Duration.Round(time.Millisecond))
	if len(r.Failed) == 0 {
		return
	}
	table := newTable(w)
	table.Header("FILE", "ERROR")
	for _, f := range r.Failed {
		table.Append(f.File, f.Err.Error())
	}
	table.Render()
}

// PrintGoalieTable prints stored goalies.
func PrintGoalieTable(w io.Writer, players []model.Player) {
	table := newTable(w)
	table.Header("ID", "NAME", "CATCHES")
	for _, p := range players {
		hand := p.ShootsCatches.String()
		if hand == "" {
			hand = "?"
		}
		table.Append(p.PlayerID, p.FullName(), hand)
	}
	table.Render()
}

// PrintSeasonTable prints the seasons a goalie has events for.
func PrintSeasonTable(w io.Writer, seasons []storage.SeasonCount) {
	table := newTable(w)
	table.Header("SEASON", "EVENTS")
	for _, s := range seasons {
		table.Append(model.FormatSeason(s.Season), strconv.Itoa(s.Events))
	}
	table.Render()
}

// PrintShotTable prints one row per event with its side classification.
// Events without coordinates show "—" for position and side.
func PrintShotTable(w io.Writer, events []model.ShotEvent, hand model.Handedness) {
	table := newTable(w)
	table.Header("GAME", "EVENT", "PER", "TIME", "TYPE", "X", "Y", "SIDE", "LABEL")
	for _, e := range events {
		x, y, side, label := na, na, na, na
		if e.Coord != nil && e.Type != model.EventMissedShot {
			s := aggregator.ClassifySide(*e.Coord)
			l, _ := aggregator.AnatomicalFor(s, hand)
			side, label = s.String(), l.String()
		}
		if e.Coord != nil {
			x = strconv.FormatFloat(e.Coord.X, 'f', -1, 64)
			y = strconv.FormatFloat(e.Coord.Y, 'f', -1, 64)
		}
		table.Append(
			e.GameID,
			strconv.Itoa(e.EventID),
			orNA(formatPeriod(e.Period)),
			e.PeriodTime,
			e.Type.String(),
			x, y, side, label,
		)
	}
	table.Render()
}

// PrintSideAnalysis prints the glove/stick breakdown for one goalie and season.
func PrintSideAnalysis(w io.Writer, a *model.SideAnalysis) {
	name := a.Name
	if name == "" {
		name = a.GoalieID
	}
	fmt.Fprintf(w, "\n%s (%s)  |  Season %s  |  Catches: %s\n\n",
		name, a.GoalieID, model.FormatSeason(a.Season), handLabel(a))

	table := newTable(w)
	table.Header(" ", "SIDE", "LABEL", "SHOTS", "GOALS", "SV%")
	for _, r := range []model.SideRecord{a.Left, a.Right} {
		marker := " "
		if r.Side == a.Weaker {
			marker = "!"
		}
		table.Append(marker, r.Side.String(), r.Label.String(),
			strconv.Itoa(r.Shots), strconv.Itoa(r.Goals), SavePct(r))
	}
	table.Render()

	if label, ok := a.WeakerLabel(); ok {
		fmt.Fprintf(w, "Weaker side: %s (%s)\n", a.Weaker, label)
	} else {
		fmt.Fprintln(w, "Weaker side: undetermined")
	}
	fmt.Fprintf(w, "Events: %d total, %d without coordinates, %d missed shots\n",
		a.Total, a.Unclassified, a.Missed)
	if a.HandednessAssumed {
		fmt.Fprintln(w, "Note: handedness unknown; glove/stick labels assume a right-catching goalie.")
	}
}

func handLabel(a *model.SideAnalysis) string {
	switch a.Handedness {
	case model.HandLeft:
		return "left"
	case model.HandRight:
		return "right"
	default:
		return "unknown"
	}
}

// PrintCorrectionReport prints the outcome of a handedness correction batch.
func PrintCorrectionReport(w io.Writer, r *correction.Report) {
	fmt.Fprintf(w, "\nCorrected %d  |  absent %d  |  failed %d\n\n", len(r.Corrected), len(r.Absent), len(r.Failed))
	if len(r.Corrected)+len(r.Absent)+len(r.Failed) == 0 {
		return
	}
	table := newTable(w)
	table.Header("PLAYER", "OUTCOME", "DETAIL")
	for _, id := range r.Corrected {
		table.Append(id, "corrected", "")
	}
	for _, id := range r.Absent {
		table.Append(id, "absent", "")
	}
	for _, f := range r.Failed {
		table.Append(f.PlayerID, "failed", f.Err.Error())
	}
	table.Render()
}

// PrintRows prints an arbitrary result set.
func PrintRows(w io.Writer, cols []string, rows [][]string) {
	table := newTable(w)
	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)
	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}
