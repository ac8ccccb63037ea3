package aggregator

import (
	"errors"
	"fmt"

	"github.com/pable/go-goalie-metrics/internal/model"
)

// ErrNoData is returned when a goalie has no stored events for the season.
var ErrNoData = errors.New("no events for goalie and season")

// UnknownGoalieError is returned when the goalie id has no player record.
type UnknownGoalieError struct {
	GoalieID string
}

func (e *UnknownGoalieError) Error() string {
	return fmt.Sprintf("unknown goalie %q", e.GoalieID)
}

// EventSource is the read side of the event store.
type EventSource interface {
	GetPlayer(playerID string) (*model.Player, error)
	QueryEvents(goalieID, season string) ([]model.ShotEvent, error)
}

// AnalyzeSides fetches a goalie's events for one season and summarizes them by side.
func AnalyzeSides(src EventSource, goalieID, season string) (*model.SideAnalysis, error) {
	player, err := src.GetPlayer(goalieID)
	if err != nil {
		return nil, fmt.Errorf("get goalie %s: %w", goalieID, err)
	}
	if player == nil {
		return nil, &UnknownGoalieError{GoalieID: goalieID}
	}

	events, err := src.QueryEvents(goalieID, season)
	if err != nil {
		return nil, fmt.Errorf("query events %s/%s: %w", goalieID, season, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("goalie %s season %s: %w", goalieID, season, ErrNoData)
	}
	return Summarize(*player, season, events)
}

// Summarize classifies events by side and computes per-side save percentages.
// It is pure; events are assumed to belong to player and season.
func Summarize(player model.Player, season string, events []model.ShotEvent) (*model.SideAnalysis, error) {
	switch player.ShootsCatches {
	case model.HandLeft, model.HandRight, model.HandUnknown:
	default:
		return nil, fmt.Errorf("goalie %s: unhandled handedness %d", player.PlayerID, player.ShootsCatches)
	}

	leftLabel, assumed := AnatomicalFor(model.SideLeft, player.ShootsCatches)
	rightLabel, _ := AnatomicalFor(model.SideRight, player.ShootsCatches)

	a := &model.SideAnalysis{
		GoalieID:          player.PlayerID,
		Name:              player.FullName(),
		Season:            season,
		Handedness:        player.ShootsCatches,
		HandednessAssumed: assumed,
		Left:              model.SideRecord{Side: model.SideLeft, Label: leftLabel},
		Right:             model.SideRecord{Side: model.SideRight, Label: rightLabel},
		Total:             len(events),
	}

	for _, e := range events {
		switch e.Type {
		case model.EventShot, model.EventBlockedShot, model.EventGoal:
			if e.Coord == nil {
				a.Unclassified++
				continue
			}
			rec := &a.Left
			if ClassifySide(*e.Coord) == model.SideRight {
				rec = &a.Right
			}
			rec.Shots++
			if e.Type == model.EventGoal {
				rec.Goals++
			}
		case model.EventMissedShot:
			a.Missed++
		default:
			return nil, fmt.Errorf("game %s event %d: unhandled event type %v", e.GameID, e.EventID, e.Type)
		}
	}

	a.Weaker = WeakerSide(a.Left, a.Right)
	return a, nil
}

// ClassifySide maps a coordinate to the left or right side of the goal.
// Quadrants 1 and 3 are left, 2 and 4 are right; a zero axis value counts as
// non-negative.
func ClassifySide(p model.Point) model.Side {
	if (p.X >= 0 && p.Y >= 0) || (p.X < 0 && p.Y < 0) {
		return model.SideLeft
	}
	return model.SideRight
}

// AnatomicalFor maps a geometric side to glove or stick. Left-catching
// goalies have the glove on the left; every other handedness, including
// unknown, gets the right-catching mapping and assumed is true for unknown.
func AnatomicalFor(side model.Side, hand model.Handedness) (label model.Anatomical, assumed bool) {
	var gloveSide model.Side
	switch hand {
	case model.HandLeft:
		gloveSide = model.SideLeft
	case model.HandRight:
		gloveSide = model.SideRight
	default:
		gloveSide = model.SideRight
		assumed = true
	}

	switch side {
	case gloveSide:
		return model.Glove, assumed
	case model.SideLeft, model.SideRight:
		return model.Stick, assumed
	default:
		return model.AnatomicalNone, assumed
	}
}

// WeakerSide returns the side with the strictly lower defined save
// percentage, or SideNone when either side is undefined or they are equal.
func WeakerSide(left, right model.SideRecord) model.Side {
	lp, lok := left.SavePercentage()
	rp, rok := right.SavePercentage()
	if !lok || !rok {
		return model.SideNone
	}
	switch {
	case lp < rp:
		return model.SideLeft
	case rp < lp:
		return model.SideRight
	default:
		return model.SideNone
	}
}
