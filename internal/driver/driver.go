// Package driver turns elapsed round time into proposed actions. It holds no
// invariants of its own: every effect goes through a round.Machine mutator,
// and a rejected proposal is logged and skipped. All randomness comes from a
// single injected Source, so a round replays exactly from its seed and
// starting state.
package driver

import (
	"log/slog"
	"math/rand/v2"

	"github.com/phil-holland/spike-round-sim/internal/armory"
	"github.com/phil-holland/spike-round-sim/internal/config"
	"github.com/phil-holland/spike-round-sim/internal/round"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// Source is the random stream the driver draws every decision from.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// NewSource returns a deterministic source for a round seed
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Stats describes how a run went
type Stats struct {
	Iterations int `json:"iterations"`
	Rejections int `json:"rejections"`
	// Forced is set if the iteration limit was hit and the round was ended by
	// running out the clock
	Forced bool `json:"forced"`
}

// Driver steps a single round to completion
type Driver struct {
	m       *round.Machine
	src     Source
	catalog armory.Catalog
	cfg     config.Driver
	logger  *slog.Logger

	skills    map[timeline.PlayerID]float64
	charges   map[timeline.PlayerID]*round.Charges
	damagedBy map[timeline.PlayerID][]timeline.PlayerID
	stats     Stats
}

// Option configures a Driver
type Option func(*Driver)

// WithLogger sets the logger rejections and round progress are written to
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSkills sets the per-player weights encounter participants and duel
// winners are drawn by. Players without a weight count as 1.
func WithSkills(skills map[timeline.PlayerID]float64) Option {
	return func(d *Driver) {
		for id, s := range skills {
			d.skills[id] = s
		}
	}
}

// New creates a driver for a freshly created round. The ability charge ledger
// starts from the players' charges at that point.
func New(m *round.Machine, src Source, catalog armory.Catalog, cfg config.Driver, opts ...Option) *Driver {
	d := &Driver{
		m:         m,
		src:       src,
		catalog:   catalog,
		cfg:       cfg,
		logger:    slog.New(slog.DiscardHandler),
		skills:    make(map[timeline.PlayerID]float64),
		charges:   make(map[timeline.PlayerID]*round.Charges),
		damagedBy: make(map[timeline.PlayerID][]timeline.PlayerID),
	}
	for _, p := range m.Players() {
		c := p.Charges
		d.charges[p.ID] = &c
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run steps the round until it ends. If the iteration limit is reached first
// the clock is run out, which always ends the round.
func (d *Driver) Run() Stats {
	for d.stats.Iterations < d.cfg.MaxIterations && !d.m.Ended() {
		d.stats.Iterations++
		d.step()
	}
	if !d.m.Ended() {
		d.logger.Warn("iteration limit reached, running out the clock",
			"iterations", d.stats.Iterations, "now", d.m.Now())
		d.stats.Forced = true
		d.try(d.m.AdvanceTime(d.m.TimeRemaining()))
	}
	if end, ok := d.m.End(); ok {
		d.logger.Debug("round finished",
			"winner", end.Winner, "condition", end.Condition, "at", end.Timestamp,
			"iterations", d.stats.Iterations, "rejections", d.stats.Rejections)
	}
	return d.stats
}

// step runs a single tick: objective progress, an optional encounter, ability
// use, then the clock
func (d *Driver) step() {
	d.objectives()
	if d.m.Ended() {
		return
	}
	if d.chance(d.cfg.EncounterRate) {
		d.encounter()
		if d.m.Ended() {
			return
		}
	}
	d.abilities()
	if d.m.Ended() {
		return
	}
	d.try(d.m.AdvanceTime(d.cfg.Tick))
}

// try reports whether a mutator call was accepted, logging it otherwise
func (d *Driver) try(err error) bool {
	if err == nil {
		return true
	}
	d.stats.Rejections++
	if r, ok := round.AsRejected(err); ok {
		d.logger.Debug("action rejected", "action", r.Action, "violations", r.Violations, "now", d.m.Now())
	} else {
		d.logger.Error("action failed", "error", err, "now", d.m.Now())
	}
	return false
}

func (d *Driver) chance(p float64) bool {
	return d.src.Float64() < p
}

func (d *Driver) skill(id timeline.PlayerID) float64 {
	if s, ok := d.skills[id]; ok && s > 0 {
		return s
	}
	return 1
}

// pick draws a player weighted by skill. It returns false for an empty slice.
func (d *Driver) pick(ids []timeline.PlayerID) (timeline.PlayerID, bool) {
	if len(ids) == 0 {
		return "", false
	}
	total := 0.0
	for _, id := range ids {
		total += d.skill(id)
	}
	r := d.src.Float64() * total
	for _, id := range ids {
		r -= d.skill(id)
		if r < 0 {
			return id, true
		}
	}
	return ids[len(ids)-1], true
}

func (d *Driver) player(id timeline.PlayerID) round.PlayerState {
	p, _ := d.m.Player(id)
	return p
}
