package storage

import (
	"path/filepath"
	"testing"

	"github.com/pable/go-goalie-metrics/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var price = model.Player{PlayerID: "8471679", FirstName: "Carey", LastName: "Price", ShootsCatches: model.HandLeft}

func intPtr(n int) *int { return &n }

func shot(goalie string, typ model.EventType, eventID int, coord *model.Point) model.ShotEvent {
	return model.ShotEvent{
		Type: typ, Season: "20202021", GameID: "2020020001", GameType: "R",
		GoalieID: goalie, EventID: eventID, Period: intPtr(1), PeriodType: "REGULAR",
		PeriodTime: "01:00", Coord: coord,
	}
}

func TestUpsertPlayerIfAbsentFirstWins(t *testing.T) {
	db := openMemDB(t)

	added, err := db.UpsertPlayerIfAbsent(price)
	if err != nil {
		t.Fatalf("UpsertPlayerIfAbsent: %v", err)
	}
	if !added {
		t.Error("expected first insert to add a row")
	}

	later := price
	later.FirstName = "Someone"
	later.ShootsCatches = model.HandRight
	added, err = db.UpsertPlayerIfAbsent(later)
	if err != nil {
		t.Fatalf("second UpsertPlayerIfAbsent: %v", err)
	}
	if added {
		t.Error("expected second insert to be a no-op")
	}

	got, err := db.GetPlayer(price.PlayerID)
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if got == nil || got.FirstName != "Carey" || got.ShootsCatches != model.HandLeft {
		t.Errorf("first occurrence should win, got %+v", got)
	}
}

func TestGetPlayerAbsent(t *testing.T) {
	db := openMemDB(t)
	p, err := db.GetPlayer("nope")
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil, got %+v", p)
	}
}

func TestUnknownHandednessStoredAsNull(t *testing.T) {
	db := openMemDB(t)
	db.UpsertPlayerIfAbsent(model.Player{PlayerID: "1", LastName: "Unknown"})

	missing, err := db.PlayersMissingHandedness()
	if err != nil {
		t.Fatalf("PlayersMissingHandedness: %v", err)
	}
	if len(missing) != 1 || missing[0].PlayerID != "1" {
		t.Fatalf("expected player 1 missing handedness, got %+v", missing)
	}

	_, rows, err := db.QueryRaw(`SELECT COUNT(*) FROM players WHERE shoots_catches IS NULL AND first_name IS NULL`)
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if rows[0][0] != "1" {
		t.Errorf("expected NULL columns for absent fields, got %v", rows)
	}
}

func TestSetHandedness(t *testing.T) {
	db := openMemDB(t)
	db.UpsertPlayerIfAbsent(model.Player{PlayerID: "1"})

	if err := db.SetHandedness("1", model.HandRight); err != nil {
		t.Fatalf("SetHandedness: %v", err)
	}
	p, _ := db.GetPlayer("1")
	if p.ShootsCatches != model.HandRight {
		t.Errorf("expected R, got %q", p.ShootsCatches)
	}
	if err := db.SetHandedness("missing", model.HandLeft); err == nil {
		t.Error("expected error for unknown player")
	}
	if err := db.SetHandedness("1", model.HandUnknown); err == nil {
		t.Error("expected error when clearing handedness")
	}
}

func TestAppendAndQueryEvents(t *testing.T) {
	db := openMemDB(t)
	db.UpsertPlayerIfAbsent(price)

	untimed := shot(price.PlayerID, model.EventMissedShot, 9, nil)
	untimed.Period = nil
	events := []model.ShotEvent{
		shot(price.PlayerID, model.EventGoal, 7, &model.Point{X: 0, Y: 0}),
		shot(price.PlayerID, model.EventShot, 3, &model.Point{X: -80, Y: 12.5}),
		untimed,
	}
	if err := db.AppendEvents(events); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	got, err := db.QueryEvents(price.PlayerID, "20202021")
	if err != nil {
		t.Fatalf("QueryEvents: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	// Ordered by event id.
	if got[0].EventID != 3 || got[0].Type != model.EventShot {
		t.Errorf("first event: %+v", got[0])
	}
	// Zero is a real coordinate, not "untracked".
	if got[1].Coord == nil || got[1].Coord.X != 0 || got[1].Coord.Y != 0 {
		t.Errorf("origin coordinate lost: %+v", got[1].Coord)
	}
	if got[2].Coord != nil {
		t.Errorf("absent coordinate should stay absent, got %+v", got[2].Coord)
	}
	if got[2].DateTime != "" {
		t.Errorf("absent dateTime should read back empty, got %q", got[2].DateTime)
	}
	if got[0].Period == nil || *got[0].Period != 1 {
		t.Errorf("period lost: %v", got[0].Period)
	}
	if got[2].Period != nil {
		t.Errorf("absent period should read back nil, got %d", *got[2].Period)
	}

	other, err := db.QueryEvents(price.PlayerID, "20192020")
	if err != nil {
		t.Fatalf("QueryEvents other season: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no events for other season, got %d", len(other))
	}
}

func TestAppendEventsUnknownGoalieRejected(t *testing.T) {
	db := openMemDB(t)
	err := db.AppendEvents([]model.ShotEvent{shot("ghost", model.EventShot, 1, nil)})
	if err == nil {
		t.Fatal("expected foreign key failure for unknown goalie")
	}
	_, shots, _ := db.Counts()
	if shots != 0 {
		t.Errorf("expected no shots after failed append, got %d", shots)
	}
}

func TestCommitDocumentAtomic(t *testing.T) {
	db := openMemDB(t)

	res, err := db.CommitDocument("a.json", "run-1",
		[]model.Player{price},
		[]model.ShotEvent{shot(price.PlayerID, model.EventShot, 1, nil)})
	if err != nil {
		t.Fatalf("CommitDocument: %v", err)
	}
	if res.PlayersAdded != 1 || res.EventsAdded != 1 {
		t.Errorf("unexpected result %+v", res)
	}

	// Second document references a goalie with no player row: the whole
	// commit must roll back, including its ledger row and its new player.
	newcomer := model.Player{PlayerID: "42"}
	_, err = db.CommitDocument("b.json", "run-1",
		[]model.Player{newcomer},
		[]model.ShotEvent{shot("ghost", model.EventGoal, 2, nil)})
	if err == nil {
		t.Fatal("expected commit failure")
	}

	files, err := db.IngestedFiles()
	if err != nil {
		t.Fatalf("IngestedFiles: %v", err)
	}
	if len(files) != 1 || files[0] != "a.json" {
		t.Errorf("ledger should only hold a.json, got %v", files)
	}
	if p, _ := db.GetPlayer("42"); p != nil {
		t.Error("player from failed commit should not persist")
	}
	players, shots, _ := db.Counts()
	if players != 1 || shots != 1 {
		t.Errorf("expected 1 player / 1 shot, got %d / %d", players, shots)
	}

	// Same file twice is rejected by the ledger primary key.
	if _, err := db.CommitDocument("a.json", "run-2", nil, nil); err == nil {
		t.Error("expected duplicate ledger row to fail")
	}
}

func TestListPlayersFilter(t *testing.T) {
	db := openMemDB(t)
	db.UpsertPlayerIfAbsent(price)
	db.UpsertPlayerIfAbsent(model.Player{PlayerID: "8475883", FirstName: "Frederik", LastName: "Andersen"})
	db.UpsertPlayerIfAbsent(model.Player{PlayerID: "8470000", FirstName: "Under_score", LastName: "Zed"})

	all, err := db.ListPlayers("")
	if err != nil {
		t.Fatalf("ListPlayers: %v", err)
	}
	if len(all) != 3 || all[0].LastName != "Andersen" {
		t.Errorf("expected 3 players ordered by last name, got %+v", all)
	}

	got, _ := db.ListPlayers("carey pr")
	if len(got) != 1 || got[0].PlayerID != price.PlayerID {
		t.Errorf("full-name filter: %+v", got)
	}
	got, _ = db.ListPlayers("_")
	if len(got) != 1 || got[0].LastName != "Zed" {
		t.Errorf("underscore should match literally: %+v", got)
	}
	// Injection-shaped input is just a literal pattern.
	got, err = db.ListPlayers("' OR 1=1 --")
	if err != nil {
		t.Fatalf("ListPlayers injection: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no match, got %+v", got)
	}
}

func TestSeasons(t *testing.T) {
	db := openMemDB(t)
	db.UpsertPlayerIfAbsent(price)
	old := shot(price.PlayerID, model.EventShot, 1, nil)
	old.Season = "20182019"
	db.AppendEvents([]model.ShotEvent{old, shot(price.PlayerID, model.EventShot, 2, nil), shot(price.PlayerID, model.EventGoal, 3, nil)})

	seasons, err := db.Seasons(price.PlayerID)
	if err != nil {
		t.Fatalf("Seasons: %v", err)
	}
	if len(seasons) != 2 || seasons[0].Season != "20202021" || seasons[0].Events != 2 {
		t.Errorf("unexpected seasons %+v", seasons)
	}
}

func TestOpenFileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goalies.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	db.UpsertPlayerIfAbsent(price)
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	p, err := db.GetPlayer(price.PlayerID)
	if err != nil || p == nil {
		t.Fatalf("expected player after reopen, got %v %v", p, err)
	}
}
