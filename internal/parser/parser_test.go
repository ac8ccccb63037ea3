package parser

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/pable/go-goalie-metrics/internal/model"
)

const sampleGame = `{
  "gamePk": 2020020001,
  "gameData": {
    "game": {"pk": 2020020001, "season": "20202021", "type": "R"},
    "players": {
      "ID8471679": {"id": 8471679, "firstName": "Carey", "lastName": "Price",
                    "primaryPosition": {"type": "Goalie"}, "shootsCatches": "L"},
      "ID8478402": {"id": 8478402, "firstName": "Connor", "lastName": "McDavid",
                    "primaryPosition": {"type": "Forward"}, "shootsCatches": "L"},
      "ID8475883": {"id": 8475883, "firstName": "Frederik", "lastName": "Andersen",
                    "primaryPosition": {"type": "Goalie"}}
    }
  },
  "liveData": {
    "plays": {
      "allPlays": [
        {"result": {"event": "Faceoff"},
         "about": {"eventIdx": 0, "period": 1, "periodType": "REGULAR", "periodTime": "00:00"}},
        {"result": {"event": "Shot"},
         "about": {"eventIdx": 1, "period": 1, "periodType": "REGULAR", "periodTime": "00:54", "dateTime": "2021-01-13T23:08:58Z"},
         "coordinates": {"x": -80.0, "y": 0},
         "players": [{"player": {"id": 8478402}, "playerType": "Shooter"},
                     {"player": {"id": 8471679}, "playerType": "Goalie"}]},
        {"result": {"event": "Missed Shot"},
         "about": {"eventIdx": 2, "period": 2, "periodType": "REGULAR", "periodTime": "03:10"},
         "coordinates": {"x": 12.5},
         "players": [{"player": {"id": 8478402}, "playerType": "Shooter"}]},
        {"result": {"event": "Goal"},
         "about": {"eventIdx": 3, "period": 3, "periodType": "REGULAR", "periodTime": "10:01"},
         "coordinates": {},
         "players": [{"player": {"id": 8478402}, "playerType": "Scorer"},
                     {"player": {"id": 8475883}, "playerType": "Goalie"}]}
      ]
    }
  }
}`

func TestParseSample(t *testing.T) {
	g, err := Parse(strings.NewReader(sampleGame))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.GameID != "2020020001" || g.Season != "20202021" || g.GameType != "R" {
		t.Errorf("game context mismatch: %+v", g)
	}

	if len(g.Goalies) != 2 {
		t.Fatalf("expected 2 goalies, got %d", len(g.Goalies))
	}
	// Sorted by roster key: ID8471679 before ID8475883.
	if g.Goalies[0].PlayerID != "8471679" || g.Goalies[0].ShootsCatches != model.HandLeft {
		t.Errorf("first goalie: %+v", g.Goalies[0])
	}
	if g.Goalies[1].ShootsCatches != model.HandUnknown {
		t.Errorf("missing shootsCatches should be unknown, got %v", g.Goalies[1].ShootsCatches)
	}

	// Faceoff is dropped; three shot-type plays remain.
	if len(g.Plays) != 3 {
		t.Fatalf("expected 3 plays, got %d", len(g.Plays))
	}
	shot := g.Plays[0]
	if shot.Type != model.EventShot || shot.Coord == nil || shot.Coord.X != -80 || shot.Coord.Y != 0 {
		t.Errorf("shot play mismatch: %+v", shot)
	}
	if len(shot.Participants) != 2 || shot.Participants[1] != "8471679" {
		t.Errorf("participants: %v", shot.Participants)
	}
	if shot.DateTime != "2021-01-13T23:08:58Z" {
		t.Errorf("dateTime: %q", shot.DateTime)
	}
}

func TestParseCoordinatesBothOrNeither(t *testing.T) {
	g, err := Parse(strings.NewReader(sampleGame))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	// Missed shot has only x: both must be absent.
	if g.Plays[1].Coord != nil {
		t.Errorf("single-axis coordinates should be absent, got %+v", g.Plays[1].Coord)
	}
	// Empty coordinates object on the goal.
	if g.Plays[2].Coord != nil {
		t.Errorf("empty coordinates should be absent, got %+v", g.Plays[2].Coord)
	}
}

func TestParseNumericSeason(t *testing.T) {
	doc := `{"gameData":{"game":{"pk":1,"season":20002001,"type":"P"},"players":{}},"liveData":{}}`
	g, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Season != "20002001" {
		t.Errorf("season: %q", g.Season)
	}
	if len(g.Plays) != 0 {
		t.Errorf("expected no plays, got %d", len(g.Plays))
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"not json":         `{"gameData":`,
		"no game":          `{"gameData":{"players":{}},"liveData":{}}`,
		"no pk":            `{"gameData":{"game":{"season":"20202021"}},"liveData":{}}`,
		"no season":        `{"gameData":{"game":{"pk":1}},"liveData":{}}`,
		"short season":     `{"gameData":{"game":{"pk":1,"season":"2020"}},"liveData":{}}`,
		"abbreviated span": `{"gameData":{"game":{"pk":1,"season":"2020-21"}},"liveData":{}}`,
		"non-digit season": `{"gameData":{"game":{"pk":1,"season":"2020202x"}},"liveData":{}}`,
		"no liveData":      `{"gameData":{"game":{"pk":1,"season":"20202021"}}}`,
		"goalie w/o id":    `{"gameData":{"game":{"pk":1,"season":"20202021"},"players":{"ID1":{"primaryPosition":{"type":"Goalie"}}}},"liveData":{}}`,
	}
	for name, doc := range cases {
		if _, err := Parse(strings.NewReader(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseSeasonNormalised(t *testing.T) {
	doc := `{"gameData":{"game":{"pk":1,"season":"2020-2021"}},"liveData":{}}`
	g, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Season != "20202021" {
		t.Errorf("season: %q", g.Season)
	}
}

func TestParseIncompleteAboutKeepsPlay(t *testing.T) {
	doc := `{
	  "gameData": {"game": {"pk": 1, "season": "20202021"}},
	  "liveData": {"plays": {"allPlays": [
	    {"result": {"event": "Shot"},
	     "about": {"eventIdx": 0, "period": 1, "periodTime": "00:30"},
	     "coordinates": {"x": 10, "y": 10},
	     "players": [{"player": {"id": 8471679}, "playerType": "Goalie"}]},
	    {"result": {"event": "Shot"},
	     "about": {"eventIdx": 1},
	     "coordinates": {"x": -10, "y": 10},
	     "players": [{"player": {"id": 8471679}, "playerType": "Goalie"}]},
	    {"result": {"event": "Goal"},
	     "players": [{"player": {"id": 8471679}, "playerType": "Goalie"}]}
	  ]}}
	}`
	g, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(g.Plays) != 3 {
		t.Fatalf("expected all 3 shot-type plays, got %d", len(g.Plays))
	}
	if g.Plays[0].Period == nil || *g.Plays[0].Period != 1 {
		t.Errorf("first play period: %v", g.Plays[0].Period)
	}
	if g.Plays[1].Period != nil {
		t.Errorf("missing period should stay nil, got %d", *g.Plays[1].Period)
	}
	if g.Plays[1].EventID != 1 || g.Plays[1].Coord == nil {
		t.Errorf("play without period: %+v", g.Plays[1])
	}
	noAbout := g.Plays[2]
	if noAbout.Period != nil || noAbout.PeriodTime != "" || noAbout.EventID != 2 {
		t.Errorf("play without about: %+v", noAbout)
	}
	if len(noAbout.Participants) != 1 || noAbout.Participants[0] != "8471679" {
		t.Errorf("play without about lost participants: %v", noAbout.Participants)
	}
}

func TestParseEventIDFallback(t *testing.T) {
	doc := `{
	  "gameData": {"game": {"pk": 1, "season": "20202021"}},
	  "liveData": {"plays": {"allPlays": [
	    {"result": {"event": "Shot"}, "about": {"eventId": 57, "period": 2}},
	    {"result": {"event": "Shot"}, "about": {"eventIdx": 8, "eventId": 99, "period": 2}},
	    {"result": {"event": "Shot"}, "about": {"period": 2}}
	  ]}}
	}`
	g, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []int{57, 8, 2}
	for i, w := range want {
		if g.Plays[i].EventID != w {
			t.Errorf("play %d event id = %d, want %d", i, g.Plays[i].EventID, w)
		}
	}
}

func TestParseFileCompressed(t *testing.T) {
	dir := t.TempDir()

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	gw.Write([]byte(sampleGame))
	gw.Close()
	gzPath := filepath.Join(dir, "game.json.gz")
	if err := os.WriteFile(gzPath, gzBuf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	zstPath := filepath.Join(dir, "game.json.zst")
	if err := os.WriteFile(zstPath, enc.EncodeAll([]byte(sampleGame), nil), 0o644); err != nil {
		t.Fatal(err)
	}
	enc.Close()

	for _, p := range []string{gzPath, zstPath} {
		g, err := ParseFile(p)
		if err != nil {
			t.Fatalf("ParseFile(%s): %v", filepath.Base(p), err)
		}
		if len(g.Plays) != 3 {
			t.Errorf("%s: expected 3 plays, got %d", filepath.Base(p), len(g.Plays))
		}
	}
}

func TestHasDocumentExt(t *testing.T) {
	for name, want := range map[string]bool{
		"2020020001.json":     true,
		"2020020001.JSON.GZ":  true,
		"2020020001.json.zst": true,
		"2020020001.json.bz2": true,
		"notes.txt":           false,
		"game.gz":             false,
	} {
		if got := HasDocumentExt(name); got != want {
			t.Errorf("HasDocumentExt(%q) = %v, want %v", name, got, want)
		}
	}
}
