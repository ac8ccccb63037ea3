package parser

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-goalie-metrics/internal/model"
)

// goaliePosition is the primaryPosition.type value for goaltenders.
const goaliePosition = "Goalie"

// Extensions lists the document suffixes the parser can open.
var Extensions = []string{".json", ".json.gz", ".json.bz2", ".json.zst"}

// HasDocumentExt reports whether name ends with one of Extensions.
func HasDocumentExt(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ---- Feed shape. Pointer fields are optional; nil means absent. ----

type feed struct {
	GameData *struct {
		Game    *feedGame                 `json:"game"`
		Players map[string]feedRosterItem `json:"players"`
	} `json:"gameData"`
	LiveData *struct {
		Plays *struct {
			AllPlays []feedPlay `json:"allPlays"`
		} `json:"plays"`
	} `json:"liveData"`
}

type feedGame struct {
	PK     *json.Number `json:"pk"`
	Season *flexString  `json:"season"`
	Type   *string      `json:"type"`
}

type feedRosterItem struct {
	ID              *json.Number `json:"id"`
	FirstName       *string      `json:"firstName"`
	LastName        *string      `json:"lastName"`
	ShootsCatches   *string      `json:"shootsCatches"`
	PrimaryPosition *struct {
		Type *string `json:"type"`
	} `json:"primaryPosition"`
}

type feedPlay struct {
	Result *struct {
		Event *string `json:"event"`
	} `json:"result"`
	About *struct {
		EventIdx   *int    `json:"eventIdx"`
		EventID    *int    `json:"eventId"`
		Period     *int    `json:"period"`
		PeriodType *string `json:"periodType"`
		PeriodTime *string `json:"periodTime"`
		DateTime   *string `json:"dateTime"`
	} `json:"about"`
	Coordinates *struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	} `json:"coordinates"`
	Players []struct {
		Player *struct {
			ID *json.Number `json:"id"`
		} `json:"player"`
		PlayerType string `json:"playerType"`
	} `json:"players"`
}

// flexString accepts a JSON string or number. Some older feeds encode
// season as a number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// ParseFile opens the document at path, decompressing by suffix, and decodes it.
func ParseFile(path string) (*model.Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case strings.HasSuffix(lower, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	case strings.HasSuffix(lower, ".bz2"):
		src = bzip2.NewReader(f)
	}
	return Parse(src)
}

// Parse decodes one game document and validates the fields the pipeline relies on.
func Parse(r io.Reader) (*model.Game, error) {
	var doc feed
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	if doc.GameData == nil || doc.GameData.Game == nil {
		return nil, errors.New("missing gameData.game")
	}
	g := doc.GameData.Game
	if g.PK == nil || g.PK.String() == "" {
		return nil, errors.New("missing gameData.game.pk")
	}
	if g.Season == nil || *g.Season == "" {
		return nil, errors.New("missing gameData.game.season")
	}
	season, err := model.ParseSeason(string(*g.Season))
	if err != nil {
		return nil, fmt.Errorf("gameData.game.season: %w", err)
	}
	if doc.LiveData == nil {
		return nil, errors.New("missing liveData")
	}

	game := &model.Game{
		GameID: g.PK.String(),
		Season: season,
	}
	if g.Type != nil {
		game.GameType = *g.Type
	}

	goalies, err := rosterGoalies(doc.GameData.Players)
	if err != nil {
		return nil, err
	}
	game.Goalies = goalies

	if doc.LiveData.Plays == nil {
		return game, nil
	}
	for i, fp := range doc.LiveData.Plays.AllPlays {
		if fp.Result == nil || fp.Result.Event == nil {
			continue
		}
		et, ok := model.ParseEventType(*fp.Result.Event)
		if !ok {
			continue
		}
		game.Plays = append(game.Plays, buildPlay(i, et, fp))
	}
	return game, nil
}

// rosterGoalies returns goalie entries in sorted roster-key order so repeated
// parses of the same document produce the same sequence.
func rosterGoalies(players map[string]feedRosterItem) ([]model.Player, error) {
	keys := make([]string, 0, len(players))
	for k := range players {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []model.Player
	for _, k := range keys {
		p := players[k]
		if p.PrimaryPosition == nil || p.PrimaryPosition.Type == nil || *p.PrimaryPosition.Type != goaliePosition {
			continue
		}
		if p.ID == nil || p.ID.String() == "" {
			return nil, fmt.Errorf("roster entry %s: missing id", k)
		}
		gp := model.Player{PlayerID: p.ID.String()}
		if p.FirstName != nil {
			gp.FirstName = *p.FirstName
		}
		if p.LastName != nil {
			gp.LastName = *p.LastName
		}
		if p.ShootsCatches != nil {
			gp.ShootsCatches = model.ParseHandedness(*p.ShootsCatches)
		}
		out = append(out, gp)
	}
	return out, nil
}

// buildPlay keeps every shot-type play. Fields missing from about stay zero
// or nil; the event id falls back to eventId, then to the play's index.
func buildPlay(idx int, et model.EventType, fp feedPlay) model.Play {
	p := model.Play{
		Type:    et,
		EventID: idx,
	}
	if a := fp.About; a != nil {
		switch {
		case a.EventIdx != nil:
			p.EventID = *a.EventIdx
		case a.EventID != nil:
			p.EventID = *a.EventID
		}
		p.Period = a.Period
		if a.PeriodType != nil {
			p.PeriodType = *a.PeriodType
		}
		if a.PeriodTime != nil {
			p.PeriodTime = *a.PeriodTime
		}
		if a.DateTime != nil {
			p.DateTime = *a.DateTime
		}
	}
	// Untracked-era games carry an empty coordinates object; keep the point
	// only when both axes are present.
	if c := fp.Coordinates; c != nil && c.X != nil && c.Y != nil {
		p.Coord = &model.Point{X: *c.X, Y: *c.Y}
	}
	for _, pl := range fp.Players {
		if pl.Player == nil || pl.Player.ID == nil {
			continue
		}
		p.Participants = append(p.Participants, pl.Player.ID.String())
	}
	return p
}
