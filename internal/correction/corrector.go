package correction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pable/go-goalie-metrics/internal/metrics"
	"github.com/pable/go-goalie-metrics/internal/model"
)

// Store is the part of the event store the corrector reads and updates.
type Store interface {
	PlayersMissingHandedness() ([]model.Player, error)
	SetHandedness(playerID string, h model.Handedness) error
}

// Failure is a player the batch could not correct.
type Failure struct {
	PlayerID string
	Err      error
}

// Report lists the outcome for every player visited.
type Report struct {
	Corrected []string
	Absent    []string
	Failed    []Failure
}

// Summary returns a one-line summary of the batch.
func (r *Report) Summary() string {
	return fmt.Sprintf("corrected=%d absent=%d failed=%d", len(r.Corrected), len(r.Absent), len(r.Failed))
}

// Corrector looks up every player with unknown handedness and records the
// answers it gets. Players the service cannot answer for stay unknown.
type Corrector struct {
	Store   Store
	Lookup  Lookuper
	Retries int           // extra attempts after a transient failure
	Timeout time.Duration // per attempt; 0 means no deadline
	Backoff time.Duration // wait before retry n is n*Backoff
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Run corrects all players missing handedness. A single player's failure is
// recorded in the report and never stops the batch; the returned error is
// for listing failures and cancellation only.
func (c *Corrector) Run(ctx context.Context) (*Report, error) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}

	players, err := c.Store.PlayersMissingHandedness()
	if err != nil {
		return nil, fmt.Errorf("list players missing handedness: %w", err)
	}
	log.Info("correction started", "players", len(players))

	rep := &Report{}
	for _, p := range players {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		res := c.lookup(ctx, log, p.PlayerID)
		switch res.Outcome {
		case OutcomeFound:
			if err := c.Store.SetHandedness(p.PlayerID, res.Hand); err != nil {
				log.Error("handedness update failed", "player", p.PlayerID, "err", err)
				rep.Failed = append(rep.Failed, Failure{PlayerID: p.PlayerID, Err: err})
				c.Metrics.Correction(metrics.OutcomeFailed)
				continue
			}
			log.Info("handedness corrected", "player", p.PlayerID, "name", p.FullName(), "hand", res.Hand.String())
			rep.Corrected = append(rep.Corrected, p.PlayerID)
			c.Metrics.Correction(metrics.OutcomeCorrected)
		case OutcomeAbsent:
			log.Warn("handedness not available", "player", p.PlayerID, "name", p.FullName())
			rep.Absent = append(rep.Absent, p.PlayerID)
			c.Metrics.Correction(metrics.OutcomeAbsent)
		default:
			log.Error("handedness lookup failed", "player", p.PlayerID, "transient", res.Transient, "err", res.Err)
			rep.Failed = append(rep.Failed, Failure{PlayerID: p.PlayerID, Err: res.Err})
			c.Metrics.Correction(metrics.OutcomeFailed)
		}
	}

	log.Info("correction finished", "corrected", len(rep.Corrected), "absent", len(rep.Absent), "failed", len(rep.Failed))
	return rep, nil
}

// lookup calls the service, retrying transient failures.
func (c *Corrector) lookup(ctx context.Context, log *slog.Logger, playerID string) Result {
	var res Result
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			c.Metrics.LookupRetry()
			log.Debug("retrying lookup", "player", playerID, "attempt", attempt, "err", res.Err)
			select {
			case <-ctx.Done():
				return Result{Outcome: OutcomeFailed, Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * c.Backoff):
			}
		}

		res = c.attempt(ctx, playerID)
		if res.Outcome != OutcomeFailed || !res.Transient {
			return res
		}
	}
	return res
}

func (c *Corrector) attempt(ctx context.Context, playerID string) Result {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return c.Lookup.LookupHandedness(ctx, playerID)
}
