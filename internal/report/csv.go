package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pable/go-goalie-metrics/internal/aggregator"
	"github.com/pable/go-goalie-metrics/internal/model"
)

// ShotCSVHeader is the column order written by WriteShotsCSV.
var ShotCSVHeader = []string{
	"event_type", "season", "game_id", "game_type", "goalie_id", "event_id",
	"period", "period_type", "period_time", "date_time", "x", "y", "side", "label",
}

// WriteShotsCSV writes one row per event for scatter plotting. x, y, side and
// label are empty for events without coordinates; side and label are also
// empty for missed shots, which are never classified.
func WriteShotsCSV(w io.Writer, events []model.ShotEvent, hand model.Handedness) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ShotCSVHeader); err != nil {
		return err
	}
	for _, e := range events {
		var x, y, side, label string
		if e.Coord != nil {
			x = strconv.FormatFloat(e.Coord.X, 'f', -1, 64)
			y = strconv.FormatFloat(e.Coord.Y, 'f', -1, 64)
			if e.Type != model.EventMissedShot {
				s := aggregator.ClassifySide(*e.Coord)
				l, _ := aggregator.AnatomicalFor(s, hand)
				side, label = s.String(), l.String()
			}
		}
		if err := cw.Write([]string{
			e.Type.String(), e.Season, e.GameID, e.GameType, e.GoalieID,
			strconv.Itoa(e.EventID), formatPeriod(e.Period), e.PeriodType,
			e.PeriodTime, e.DateTime, x, y, side, label,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatPeriod renders a period number, or "" when the feed omitted it.
func formatPeriod(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
