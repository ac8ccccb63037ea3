// Package ingest turns a corpus directory of per-game documents into player
// and shot rows in the event store.
//
// A run has four phases: enumerate the corpus, parse pending documents in
// parallel, merge every goalie roster into one lookup, then commit each
// document in its own transaction in sorted order. Each commit records the
// document in the ingested_files table, and the JSON ledger file is rewritten
// from the store at the end, so re-running over the same corpus is a no-op.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-goalie-metrics/internal/metrics"
	"github.com/pable/go-goalie-metrics/internal/model"
	"github.com/pable/go-goalie-metrics/internal/parser"
	"github.com/pable/go-goalie-metrics/internal/storage"
)

// Store is the part of the event store the pipeline writes through.
type Store interface {
	ListPlayers(filter string) ([]model.Player, error)
	IngestedFiles() ([]string, error)
	CommitDocument(file, runID string, players []model.Player, events []model.ShotEvent) (storage.CommitResult, error)
}

// Pipeline ingests one corpus. Build a fresh one per run with New.
type Pipeline struct {
	Store   Store
	Ledger  *Ledger
	Workers int
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	RunID   string
}

// New returns a Pipeline with a fresh run id. workers <= 0 means one per CPU.
func New(store Store, ledger *Ledger, workers int, logger *slog.Logger) *Pipeline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Store:   store,
		Ledger:  ledger,
		Workers: workers,
		Logger:  logger,
		RunID:   uuid.NewString(),
	}
}

type parsed struct {
	file string
	game *model.Game
	err  error
}

// Run ingests every pending document under corpusDir. Per-document failures
// are collected in the report; the returned error is reserved for failures
// that stop the whole run (enumeration, ledger I/O, cancellation).
func (p *Pipeline) Run(ctx context.Context, corpusDir string) (*Report, error) {
	start := time.Now()
	rep := &Report{RunID: p.RunID}
	log := p.Logger.With("run_id", p.RunID)

	files, err := Enumerate(corpusDir)
	if err != nil {
		return nil, err
	}
	stored, err := p.Store.IngestedFiles()
	if err != nil {
		return nil, fmt.Errorf("read ingested files: %w", err)
	}
	p.Ledger.Merge(stored)

	var pending []string
	for _, f := range files {
		if p.Ledger.Contains(f) {
			rep.Skipped = append(rep.Skipped, f)
			p.Metrics.IngestFile(metrics.OutcomeSkipped)
			continue
		}
		pending = append(pending, f)
	}
	log.Info("ingest started", "corpus", corpusDir, "documents", len(files), "pending", len(pending), "workers", p.Workers)

	results := p.parseAll(ctx, corpusDir, pending)

	roster, err := p.mergeRoster(results)
	if err != nil {
		return nil, err
	}

	var runErr error
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if r.err != nil {
			perr := &ParseError{File: r.file, Err: r.err}
			log.Warn("document skipped", "file", r.file, "err", r.err)
			rep.fail(r.file, perr)
			p.Metrics.IngestFile(metrics.OutcomeFailed)
			continue
		}

		players, events := extract(r.game, roster)
		res, err := p.Store.CommitDocument(r.file, p.RunID, players, events)
		if err != nil {
			cerr := &CommitError{File: r.file, Err: err}
			log.Error("document commit failed", "file", r.file, "err", err)
			rep.fail(r.file, cerr)
			p.Metrics.IngestFile(metrics.OutcomeFailed)
			continue
		}
		p.Ledger.Add(r.file)
		rep.Processed = append(rep.Processed, r.file)
		rep.PlayersAdded += res.PlayersAdded
		rep.EventsAdded += res.EventsAdded
		p.Metrics.IngestFile(metrics.OutcomeProcessed)
		p.Metrics.IngestCommitted(res.PlayersAdded, res.EventsAdded)
		log.Debug("document committed", "file", r.file, "players", res.PlayersAdded, "events", res.EventsAdded)
	}

	if err := p.Ledger.Save(); err != nil {
		log.Error("ledger save failed", "path", p.Ledger.Path(), "err", err)
		if runErr == nil {
			runErr = err
		}
	}

	rep.Duration = time.Since(start)
	p.Metrics.IngestRun(rep.Duration)
	log.Info("ingest finished", "processed", rep.FilesProcessed(), "skipped", rep.FilesSkipped(),
		"failed", rep.FilesFailed(), "players", rep.PlayersAdded, "events", rep.EventsAdded,
		"took", rep.Duration.Round(time.Millisecond))
	return rep, runErr
}

// parseAll parses files with at most p.Workers goroutines. Each worker writes
// only its own slot, so results stay in input order.
func (p *Pipeline) parseAll(ctx context.Context, corpusDir string, files []string) []parsed {
	results := make([]parsed, len(files))
	var g errgroup.Group
	g.SetLimit(p.Workers)
	for i, f := range files {
		results[i].file = f
		if ctx.Err() != nil {
			results[i].err = ctx.Err()
			continue
		}
		g.Go(func() error {
			game, err := parser.ParseFile(filepath.Join(corpusDir, filepath.FromSlash(f)))
			results[i].game, results[i].err = game, err
			return nil
		})
	}
	g.Wait()
	return results
}

// mergeRoster builds the goalie lookup: stored players first, then each
// parsed document's roster in document order. The first record seen for an
// id wins.
func (p *Pipeline) mergeRoster(results []parsed) (map[string]model.Player, error) {
	stored, err := p.Store.ListPlayers("")
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	roster := make(map[string]model.Player, len(stored))
	for _, pl := range stored {
		roster[pl.PlayerID] = pl
	}
	for _, r := range results {
		if r.game == nil {
			continue
		}
		for _, g := range r.game.Goalies {
			if _, ok := roster[g.PlayerID]; !ok {
				roster[g.PlayerID] = g
			}
		}
	}
	return roster, nil
}

// extract returns the players to upsert and the events to append for one
// game. Every participant of a shot-type play that is a known goalie yields
// one event attributed to that goalie's id; other participants are dropped.
// The player list covers the game's own roster plus any goalie its events
// reference, using the merged roster's record.
func extract(g *model.Game, roster map[string]model.Player) ([]model.Player, []model.ShotEvent) {
	var players []model.Player
	seen := make(map[string]bool)
	addPlayer := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		players = append(players, roster[id])
	}
	for _, gl := range g.Goalies {
		addPlayer(gl.PlayerID)
	}

	var events []model.ShotEvent
	for _, play := range g.Plays {
		attributed := make(map[string]bool, 1)
		for _, id := range play.Participants {
			if _, ok := roster[id]; !ok || attributed[id] {
				continue
			}
			attributed[id] = true
			addPlayer(id)
			events = append(events, g.Event(play, id))
		}
	}
	return players, events
}

// Enumerate lists the documents under corpusDir as sorted slash-separated
// relative paths. Hidden files and directories are ignored.
func Enumerate(corpusDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(corpusDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := strings.HasPrefix(d.Name(), ".") && path != corpusDir
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !d.Type().IsRegular() || !parser.HasDocumentExt(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(corpusDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate corpus %s: %w", corpusDir, err)
	}
	sort.Strings(files)
	return files, nil
}
