package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pable/go-goalie-metrics/internal/model"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Prepare(query string) (*sql.Stmt, error)
}

const insertPlayerSQL = `
	INSERT INTO players(player_id, first_name, last_name, shoots_catches)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(player_id) DO NOTHING`

const insertShotSQL = `
	INSERT INTO shots(
		event_type, season, game_id, game_type, goalie_id, event_id,
		period, period_type, period_time, date_time, x_coordinate, y_coordinate
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`

// UpsertPlayerIfAbsent inserts p unless a player with the same id exists.
// It reports whether a row was added; existing rows are never modified.
func (db *DB) UpsertPlayerIfAbsent(p model.Player) (bool, error) {
	return insertPlayer(db.conn, p)
}

func insertPlayer(ex execer, p model.Player) (bool, error) {
	res, err := ex.Exec(insertPlayerSQL,
		p.PlayerID, nullString(p.FirstName), nullString(p.LastName), nullString(p.ShootsCatches.String()))
	if err != nil {
		return false, fmt.Errorf("insert player %s: %w", p.PlayerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendEvents bulk-inserts shot events in a transaction.
func (db *DB) AppendEvents(events []model.ShotEvent) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertShots(tx, events); err != nil {
		return err
	}
	return tx.Commit()
}

func insertShots(ex execer, events []model.ShotEvent) error {
	if len(events) == 0 {
		return nil
	}
	stmt, err := ex.Prepare(insertShotSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if e.GoalieID == "" {
			return fmt.Errorf("insert shot game=%s event=%d: empty goalie id", e.GameID, e.EventID)
		}
		var x, y sql.NullFloat64
		if e.Coord != nil {
			x = sql.NullFloat64{Float64: e.Coord.X, Valid: true}
			y = sql.NullFloat64{Float64: e.Coord.Y, Valid: true}
		}
		var period sql.NullInt64
		if e.Period != nil {
			period = sql.NullInt64{Int64: int64(*e.Period), Valid: true}
		}
		_, err = stmt.Exec(
			e.Type.String(), e.Season, e.GameID, nullString(e.GameType), e.GoalieID, e.EventID,
			period, nullString(e.PeriodType), nullString(e.PeriodTime), nullString(e.DateTime),
			x, y,
		)
		if err != nil {
			return fmt.Errorf("insert shot game=%s event=%d goalie=%s: %w", e.GameID, e.EventID, e.GoalieID, err)
		}
	}
	return nil
}

// CommitResult reports what a CommitDocument call wrote.
type CommitResult struct {
	PlayersAdded int
	EventsAdded  int
}

// CommitDocument writes one document's players and events and records file in
// the ingested_files ledger, all in one transaction. Either everything is
// committed or nothing is.
func (db *DB) CommitDocument(file, runID string, players []model.Player, events []model.ShotEvent) (CommitResult, error) {
	var res CommitResult
	tx, err := db.conn.Begin()
	if err != nil {
		return res, err
	}
	defer tx.Rollback()

	for _, p := range players {
		added, err := insertPlayer(tx, p)
		if err != nil {
			return CommitResult{}, err
		}
		if added {
			res.PlayersAdded++
		}
	}
	if err := insertShots(tx, events); err != nil {
		return CommitResult{}, err
	}
	res.EventsAdded = len(events)

	if _, err := tx.Exec(`
		INSERT INTO ingested_files(file, run_id, ingested_at, players_added, events_added)
		VALUES (?, ?, ?, ?, ?)`,
		file, runID, time.Now().UTC().UnixMilli(), res.PlayersAdded, res.EventsAdded,
	); err != nil {
		return CommitResult{}, fmt.Errorf("record ingested file %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		return CommitResult{}, err
	}
	return res, nil
}

// IngestedFiles returns every file recorded by CommitDocument, sorted.
func (db *DB) IngestedFiles() ([]string, error) {
	rows, err := db.conn.Query(`SELECT file FROM ingested_files ORDER BY file`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetPlayer returns the player with the given id, or nil if none exists.
func (db *DB) GetPlayer(playerID string) (*model.Player, error) {
	var p model.Player
	var first, last, hand sql.NullString
	err := db.conn.QueryRow(`
		SELECT player_id, first_name, last_name, shoots_catches
		FROM players WHERE player_id = ?`, playerID).
		Scan(&p.PlayerID, &first, &last, &hand)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.FirstName, p.LastName = first.String, last.String
	p.ShootsCatches = model.ParseHandedness(hand.String)
	return &p, nil
}

// ListPlayers returns players ordered by last then first name. A non-empty
// filter matches id, first or last name as a case-insensitive substring.
func (db *DB) ListPlayers(filter string) ([]model.Player, error) {
	query := `SELECT player_id, first_name, last_name, shoots_catches FROM players`
	var args []any
	if filter != "" {
		query += ` WHERE player_id LIKE ? ESCAPE '\' OR first_name LIKE ? ESCAPE '\' OR last_name LIKE ? ESCAPE '\'
			OR (first_name || ' ' || last_name) LIKE ? ESCAPE '\'`
		pat := "%" + escapeLike(filter) + "%"
		args = []any{pat, pat, pat, pat}
	}
	query += ` ORDER BY last_name, first_name, player_id`
	return db.scanPlayers(query, args...)
}

// PlayersMissingHandedness returns players whose shoots_catches is unknown.
func (db *DB) PlayersMissingHandedness() ([]model.Player, error) {
	return db.scanPlayers(`
		SELECT player_id, first_name, last_name, shoots_catches
		FROM players WHERE shoots_catches IS NULL ORDER BY player_id`)
}

func (db *DB) scanPlayers(query string, args ...any) ([]model.Player, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Player
	for rows.Next() {
		var p model.Player
		var first, last, hand sql.NullString
		if err := rows.Scan(&p.PlayerID, &first, &last, &hand); err != nil {
			return nil, err
		}
		p.FirstName, p.LastName = first.String, last.String
		p.ShootsCatches = model.ParseHandedness(hand.String)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetHandedness overwrites a player's shoots_catches. It is the only update
// path for player rows.
func (db *DB) SetHandedness(playerID string, h model.Handedness) error {
	if h == model.HandUnknown {
		return fmt.Errorf("set handedness %s: refusing to clear", playerID)
	}
	res, err := db.conn.Exec(`UPDATE players SET shoots_catches = ? WHERE player_id = ?`, h.String(), playerID)
	if err != nil {
		return fmt.Errorf("set handedness %s: %w", playerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("set handedness %s: no such player", playerID)
	}
	return nil
}

// QueryEvents returns a goalie's events for one season in game/play order.
func (db *DB) QueryEvents(goalieID, season string) ([]model.ShotEvent, error) {
	rows, err := db.conn.Query(`
		SELECT event_type, season, game_id, game_type, goalie_id, event_id,
		       period, period_type, period_time, date_time, x_coordinate, y_coordinate
		FROM shots WHERE goalie_id = ? AND season = ?
		ORDER BY game_id, event_id, id`, goalieID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ShotEvent
	for rows.Next() {
		var e model.ShotEvent
		var typ string
		var gameType, periodType, periodTime, dateTime sql.NullString
		var period sql.NullInt64
		var x, y sql.NullFloat64
		if err := rows.Scan(&typ, &e.Season, &e.GameID, &gameType, &e.GoalieID, &e.EventID,
			&period, &periodType, &periodTime, &dateTime, &x, &y); err != nil {
			return nil, err
		}
		// Unrecognised stored types stay EventUnknown so the analytics
		// classifier can reject them.
		e.Type, _ = model.ParseEventType(typ)
		e.GameType, e.PeriodType = gameType.String, periodType.String
		e.PeriodTime, e.DateTime = periodTime.String, dateTime.String
		if period.Valid {
			n := int(period.Int64)
			e.Period = &n
		}
		if x.Valid && y.Valid {
			e.Coord = &model.Point{X: x.Float64, Y: y.Float64}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SeasonCount is the number of stored events for one season.
type SeasonCount struct {
	Season string
	Events int
}

// Seasons lists the seasons a goalie has events for, newest first.
func (db *DB) Seasons(goalieID string) ([]SeasonCount, error) {
	rows, err := db.conn.Query(`
		SELECT season, COUNT(*) FROM shots WHERE goalie_id = ?
		GROUP BY season ORDER BY season DESC`, goalieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SeasonCount
	for rows.Next() {
		var s SeasonCount
		if err := rows.Scan(&s.Season, &s.Events); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Counts returns the number of stored players and shots.
func (db *DB) Counts() (players, shots int, err error) {
	err = db.conn.QueryRow(`SELECT (SELECT COUNT(*) FROM players), (SELECT COUNT(*) FROM shots)`).
		Scan(&players, &shots)
	return players, shots, err
}

// QueryRaw runs an operator-supplied query and returns column names and
// stringified rows. NULL renders as an empty string.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch t := v.(type) {
			case nil:
				row[i] = ""
			case []byte:
				row[i] = string(t)
			default:
				row[i] = fmt.Sprint(t)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// nullString maps "" to SQL NULL so absent source fields are never stored as
// placeholder values.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	r := []rune{}
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return string(r)
}
