package model

import (
	"fmt"
	"strings"
)

// Handedness records which hand holds the catching glove.
type Handedness int

const (
	HandUnknown Handedness = 0
	HandLeft    Handedness = 1
	HandRight   Handedness = 2
)

// ParseHandedness maps the feed's shootsCatches value. Anything other than
// "L" or "R" is unknown.
func ParseHandedness(s string) Handedness {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return HandLeft
	case "R":
		return HandRight
	default:
		return HandUnknown
	}
}

// String returns "L", "R" or "" for unknown.
func (h Handedness) String() string {
	switch h {
	case HandLeft:
		return "L"
	case HandRight:
		return "R"
	default:
		return ""
	}
}

// EventType is the closed set of play results kept by the pipeline.
type EventType int

const (
	EventUnknown     EventType = 0
	EventShot        EventType = 1
	EventGoal        EventType = 2
	EventBlockedShot EventType = 3
	EventMissedShot  EventType = 4
)

// ParseEventType maps a play result string ("Shot", "Goal", "Blocked Shot",
// "Missed Shot") to an EventType. ok is false for every other play result.
func ParseEventType(s string) (EventType, bool) {
	switch s {
	case "Shot":
		return EventShot, true
	case "Goal":
		return EventGoal, true
	case "Blocked Shot":
		return EventBlockedShot, true
	case "Missed Shot":
		return EventMissedShot, true
	default:
		return EventUnknown, false
	}
}

func (e EventType) String() string {
	switch e {
	case EventShot:
		return "Shot"
	case EventGoal:
		return "Goal"
	case EventBlockedShot:
		return "Blocked Shot"
	case EventMissedShot:
		return "Missed Shot"
	default:
		return "?"
	}
}

// ---- Stored records ----

// Player is a goaltender from a game roster.
type Player struct {
	PlayerID      string
	FirstName     string
	LastName      string
	ShootsCatches Handedness
}

// FullName joins first and last name, skipping empty parts.
func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Point is an on-ice coordinate in feet from center ice.
type Point struct{ X, Y float64 }

// ShotEvent is one shot-type play attributed to a goalie.
type ShotEvent struct {
	Type       EventType
	Season     string
	GameID     string
	GameType   string
	GoalieID   string
	EventID    int
	Period     *int // nil when the feed omits about.period
	PeriodType string
	PeriodTime string
	DateTime   string
	Coord      *Point // nil when the game predates coordinate tracking
}

// ---- Parsed games ----

// Game is one decoded source document.
type Game struct {
	GameID   string
	Season   string
	GameType string
	Goalies  []Player // roster entries whose primary position is Goalie, in roster key order
	Plays    []Play
}

// Play is a shot-type play with its participant ids.
type Play struct {
	Type         EventType
	EventID      int
	Period       *int
	PeriodType   string
	PeriodTime   string
	DateTime     string
	Coord        *Point
	Participants []string
}

// Event builds the ShotEvent for goalieID on this play.
func (g *Game) Event(p Play, goalieID string) ShotEvent {
	return ShotEvent{
		Type:       p.Type,
		Season:     g.Season,
		GameID:     g.GameID,
		GameType:   g.GameType,
		GoalieID:   goalieID,
		EventID:    p.EventID,
		Period:     p.Period,
		PeriodType: p.PeriodType,
		PeriodTime: p.PeriodTime,
		DateTime:   p.DateTime,
		Coord:      p.Coord,
	}
}

// FormatSeason renders "20202021" as "2020 - 2021". Other values are returned as-is.
func FormatSeason(season string) string {
	if len(season) != 8 {
		return season
	}
	return fmt.Sprintf("%s - %s", season[:4], season[4:])
}

// ParseSeason accepts "20202021", "2020-2021" or "2020 - 2021" and returns the
// 8-digit form.
func ParseSeason(s string) (string, error) {
	compact := strings.NewReplacer(" ", "", "-", "").Replace(s)
	if len(compact) != 8 {
		return "", fmt.Errorf("invalid season %q: want YYYYYYYY", s)
	}
	for _, r := range compact {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid season %q: want YYYYYYYY", s)
		}
	}
	return compact, nil
}
