// Package sim runs whole rounds: it builds the machine, drives it to
// completion and derives the validation report and summary from the frozen
// timeline.
package sim

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/phil-holland/spike-round-sim/internal/armory"
	"github.com/phil-holland/spike-round-sim/internal/config"
	"github.com/phil-holland/spike-round-sim/internal/driver"
	"github.com/phil-holland/spike-round-sim/internal/lineup"
	"github.com/phil-holland/spike-round-sim/internal/round"
	"github.com/phil-holland/spike-round-sim/internal/summary"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
	"github.com/phil-holland/spike-round-sim/internal/validate"
	"golang.org/x/sync/errgroup"
)

// Result is a single simulated round
type Result struct {
	ID         uuid.UUID
	Seed       uint64
	Initial    []round.PlayerState
	Roster     []summary.PlayerInfo
	Events     []timeline.Event
	Stats      driver.Stats
	Summary    summary.Summary
	Validation validate.Result
}

// Simulator runs rounds from a fixed configuration and lineup
type Simulator struct {
	cfg     config.Config
	catalog armory.Catalog
	lineup  lineup.Lineup
	checks  validate.Config
	logger  *slog.Logger
}

// New returns a simulator. A nil logger discards everything.
func New(cfg config.Config, catalog armory.Catalog, l lineup.Lineup, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Simulator{
		cfg:     cfg,
		catalog: catalog,
		lineup:  l,
		checks:  validate.NewConfig(cfg, catalog.Weapons),
		logger:  logger,
	}
}

// RoundID derives a round's ID from its seed, so a replayed round keeps it
func RoundID(seed uint64) (uuid.UUID, error) {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return uuid.NewRandomFromReader(rand.NewChaCha8(key))
}

// Round simulates a single round from a seed
func (s *Simulator) Round(ctx context.Context, seed uint64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	id, err := RoundID(seed)
	if err != nil {
		return Result{}, fmt.Errorf("round id: %w", err)
	}
	logger := s.logger.With("round", id.String(), "seed", seed)

	m, err := round.New(s.cfg.Timing, s.lineup.Players)
	if err != nil {
		return Result{}, fmt.Errorf("round %s: %w", id, err)
	}
	d := driver.New(m, driver.NewSource(seed), s.catalog, s.cfg.Driver,
		driver.WithLogger(logger), driver.WithSkills(s.lineup.Skills))
	stats := d.Run()

	res := Result{
		ID:      id,
		Seed:    seed,
		Initial: s.lineup.Players,
		Roster:  s.lineup.Roster(),
		Events:  m.Timeline(),
		Stats:   stats,
	}

	// both passes only read the frozen timeline
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Validation = validate.Timeline(res.Events, res.Initial, s.checks)
		return nil
	})
	g.Go(func() error {
		sum, err := summary.Derive(res.Events, res.Roster)
		if err != nil {
			return fmt.Errorf("round %s: %w", id, err)
		}
		res.Summary = sum
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if !res.Validation.Valid() {
		logger.Warn("timeline failed validation", "errors", len(res.Validation.Errors))
	}
	logger.Debug("round simulated", "winner", res.Summary.Winner,
		"condition", res.Summary.Condition, "events", len(res.Events))
	return res, nil
}

// Batch simulates n rounds with seeds seed, seed+1, ... using at most workers
// goroutines. Results are in seed order whatever the worker count. done, if
// set, is called once per finished round and may be called concurrently.
func (s *Simulator) Batch(ctx context.Context, seed uint64, n int, workers int, done func(Result)) ([]Result, error) {
	if n < 0 {
		return nil, fmt.Errorf("round count must not be negative, got %d", n)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		g.Go(func() error {
			res, err := s.Round(ctx, seed+uint64(i))
			if err != nil {
				return err
			}
			results[i] = res
			if done != nil {
				done(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
