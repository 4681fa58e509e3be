// Package round implements the round state machine: the only component that
// mutates player and spike state. Every mutation is gated by precondition
// checks and, once accepted, recorded on the round timeline.
package round

import (
	"errors"
	"fmt"

	"github.com/phil-holland/spike-round-sim/internal/config"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

var (
	// ErrMissingSide is returned when a round is created without players on
	// both sides
	ErrMissingSide = errors.New("both sides need at least one player")
	// ErrDuplicatePlayer is returned when two players share an ID
	ErrDuplicatePlayer = errors.New("duplicate player id")
	// ErrInvalidPlayer is returned when a starting player state breaks an invariant
	ErrInvalidPlayer = errors.New("invalid starting player state")
	// ErrSpikeHolder is returned when the spike does not start with exactly
	// zero or one attacker
	ErrSpikeHolder = errors.New("spike must start with at most one attacker")
)

// SpawnLocation is where the spike lies if no attacker starts with it
const SpawnLocation = "attacker_spawn"

// Machine holds the live state of a single round. It is not safe for
// concurrent use: a round is driven by exactly one caller.
type Machine struct {
	timing  config.Timing
	order   []timeline.PlayerID
	players map[timeline.PlayerID]*PlayerState
	spike   Spike
	now     int64
	log     timeline.Log
	end     *timeline.RoundEnd
	kills   []timeline.Kill
}

// New creates a round from the starting player states produced by the buy
// phase. The input slice is copied.
func New(timing config.Timing, players []PlayerState) (*Machine, error) {
	m := &Machine{
		timing:  timing,
		players: make(map[timeline.PlayerID]*PlayerState, len(players)),
	}

	sides := make(map[timeline.Side]int)
	for _, p := range players {
		if _, ok := m.players[p.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		if err := checkStartingState(p); err != nil {
			return nil, err
		}
		p.lastHit = -1
		m.players[p.ID] = &p
		m.order = append(m.order, p.ID)
		sides[p.Side]++
	}
	if sides[timeline.SideAttacker] == 0 || sides[timeline.SideDefender] == 0 {
		return nil, ErrMissingSide
	}

	spike, err := InitialSpike(players)
	if err != nil {
		return nil, err
	}
	m.spike = spike
	return m, nil
}

func checkStartingState(p PlayerState) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidPlayer)
	case p.Side != timeline.SideAttacker && p.Side != timeline.SideDefender:
		return fmt.Errorf("%w: %s has side %q", ErrInvalidPlayer, p.ID, p.Side)
	case !p.Alive || p.Health <= 0:
		return fmt.Errorf("%w: %s starts dead", ErrInvalidPlayer, p.ID)
	case p.Health > p.MaxHealth:
		return fmt.Errorf("%w: %s has health %d above max %d", ErrInvalidPlayer, p.ID, p.Health, p.MaxHealth)
	case p.Shield < 0 || p.Shield > p.MaxShield || p.ShieldReserve < 0:
		return fmt.Errorf("%w: %s has shield %d/%d reserve %d", ErrInvalidPlayer, p.ID, p.Shield, p.MaxShield, p.ShieldReserve)
	}
	return nil
}

// InitialSpike returns the spike state implied by the starting players:
// carried by the single attacker flagged HasSpike, or dropped in spawn
func InitialSpike(players []PlayerState) (Spike, error) {
	var holder timeline.PlayerID
	for _, p := range players {
		if !p.HasSpike {
			continue
		}
		if p.Side != timeline.SideAttacker || holder != "" {
			return Spike{}, ErrSpikeHolder
		}
		holder = p.ID
	}
	if holder == "" {
		return Spike{Phase: SpikeDropped, Location: SpawnLocation}, nil
	}
	return Spike{Phase: SpikeCarried, Holder: holder}, nil
}

// Now returns the current round time in milliseconds
func (m *Machine) Now() int64 { return m.now }

// Timing returns the clock configuration the round runs with
func (m *Machine) Timing() config.Timing { return m.timing }

// Ended returns true once the round end event has been recorded
func (m *Machine) Ended() bool { return m.end != nil }

// End returns the terminal event once the round is over
func (m *Machine) End() (timeline.RoundEnd, bool) {
	if m.end == nil {
		return timeline.RoundEnd{}, false
	}
	return *m.end, true
}

// Player returns a copy of a single player's state
func (m *Machine) Player(id timeline.PlayerID) (PlayerState, bool) {
	p, ok := m.players[id]
	if !ok {
		return PlayerState{}, false
	}
	return *p, true
}

// Players returns copies of every player's state in roster order
func (m *Machine) Players() []PlayerState {
	out := make([]PlayerState, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.players[id])
	}
	return out
}

// Alive returns the living players of a side in roster order
func (m *Machine) Alive(side timeline.Side) []timeline.PlayerID {
	out := make([]timeline.PlayerID, 0, len(m.order))
	for _, id := range m.order {
		p := m.players[id]
		if p.Side == side && p.Alive {
			out = append(out, id)
		}
	}
	return out
}

// Spike returns the current objective state
func (m *Machine) Spike() Spike { return m.spike }

// Timeline returns a copy of every event recorded so far
func (m *Machine) Timeline() []timeline.Event { return m.log.Events() }

// Kills returns every kill recorded so far
func (m *Machine) Kills() []timeline.Kill {
	out := make([]timeline.Kill, len(m.kills))
	copy(out, m.kills)
	return out
}

// Deadline returns the time at which the running clock expires: the post-plant
// clock once the spike is down, the round clock before that
func (m *Machine) Deadline() int64 {
	if m.spike.Phase.Armed() {
		return m.spike.PlantedAt + m.timing.PostPlantDuration
	}
	return m.timing.RoundDuration
}

// TimeRemaining returns the milliseconds left on the running clock.
// Advancing time by this amount always ends the round.
func (m *Machine) TimeRemaining() int64 {
	return max(m.Deadline()-m.now, 0)
}

// PlantElapsed returns how long the current plant has been running
func (m *Machine) PlantElapsed() int64 {
	if m.spike.Phase != SpikePlanting {
		return 0
	}
	return m.now - m.spike.ActionStart
}

// DefuseRemaining returns how much defuse time is still needed: the rest of
// the running defuse, or the full requirement of the next one
func (m *Machine) DefuseRemaining() int64 {
	switch m.spike.Phase {
	case SpikeDefusing:
		return max(m.defuseRequired()-(m.now-m.spike.ActionStart), 0)
	case SpikePlanted:
		return m.defuseRequired()
	}
	return 0
}

func (m *Machine) defuseRequired() int64 {
	if m.spike.Checkpoint {
		return m.timing.DefuseDuration - m.timing.HalfDefuse()
	}
	return m.timing.DefuseDuration
}

// AdvanceTime moves the round clock forward. Reaching the end of the round
// clock before a plant ends the round for the defenders; reaching the end of
// the post-plant clock detonates the spike, killing every living defender.
func (m *Machine) AdvanceTime(delta int64) error {
	g := guard{action: "advance_time"}
	m.requireActive(&g)
	g.require(delta >= 0, RuleInvalidInput, "negative delta %d", delta)
	if g.failed() {
		return g.err()
	}

	deadline := m.Deadline()
	if delta < deadline-m.now {
		m.now += delta
		return nil
	}

	m.now = deadline
	if m.spike.Phase.Armed() {
		m.detonate()
		return nil
	}
	if m.spike.Phase == SpikePlanting {
		m.interruptPlant(timeline.ReasonCancelled)
	}
	m.endRound(timeline.SideDefender, timeline.WinTimeExpired)
	return nil
}

func (m *Machine) detonate() {
	if m.spike.Phase == SpikeDefusing {
		m.interruptDefuse(timeline.ReasonKilled)
	}
	var killed []timeline.PlayerID
	for _, id := range m.Alive(timeline.SideDefender) {
		m.players[id].die()
		killed = append(killed, id)
	}
	m.record(m.now, timeline.SpikeDetonation{Site: m.spike.Site, Killed: killed})
	m.spike.Phase = SpikeDetonated
	m.endRound(timeline.SideAttacker, timeline.WinSpikeDetonated)
}

// checkElimination ends the round if a side has nobody left. Attackers being
// wiped out only decides the round while the spike is not planted.
func (m *Machine) checkElimination() {
	if len(m.Alive(timeline.SideDefender)) == 0 {
		m.endRound(timeline.SideAttacker, timeline.WinElimination)
		return
	}
	if len(m.Alive(timeline.SideAttacker)) == 0 && !m.spike.Phase.Armed() {
		m.endRound(timeline.SideDefender, timeline.WinElimination)
	}
}

func (m *Machine) endRound(winner timeline.Side, condition timeline.WinCondition) {
	e := m.record(m.now, timeline.RoundEnd{
		Winner:         winner,
		Condition:      condition,
		AttackersAlive: m.Alive(timeline.SideAttacker),
		DefendersAlive: m.Alive(timeline.SideDefender),
	})
	end := e.(timeline.RoundEnd)
	m.end = &end
}

// record appends an accepted event. Every mutator checks round_active before
// getting here, so the log can never be frozen at this point.
func (m *Machine) record(ts int64, e timeline.Event) timeline.Event {
	stamped, err := m.log.Append(ts, e)
	if err != nil {
		panic(fmt.Sprintf("round: %v", err))
	}
	return stamped
}

func (m *Machine) requireActive(g *guard) {
	g.require(m.end == nil, RuleRoundActive, "round already ended")
}

// requireTime checks a timestamp lies on the running clock: not before the
// current time and not past the deadline that AdvanceTime would act on
func (m *Machine) requireTime(g *guard, ts int64) {
	g.require(ts >= m.now, RuleChronology, "timestamp %d precedes round time %d", ts, m.now)
	m.requireBeforeDeadline(g, ts)
}

func (m *Machine) requireBeforeDeadline(g *guard, ts int64) {
	deadline := m.Deadline()
	g.require(ts < deadline, RuleChronology, "timestamp %d is past the clock deadline %d", ts, deadline)
}

// lookup fetches a player for a guard, flagging unknown or dead players under
// the given rule
func (m *Machine) lookup(g *guard, id timeline.PlayerID, rule Rule, role string) *PlayerState {
	p, ok := m.players[id]
	if !ok {
		g.require(false, RuleUnknownPlayer, "%s %q is not in this round", role, id)
		return nil
	}
	g.require(p.Alive, rule, "%s %s is dead", role, id)
	return p
}

func (m *Machine) requireSide(g *guard, p *PlayerState, side timeline.Side) {
	if p == nil {
		return
	}
	g.require(p.Side == side, RuleSide, "%s is on the %s side, need %s", p.ID, p.Side, side)
}

func (m *Machine) requireSpike(g *guard, phase SpikePhase) {
	g.require(m.spike.Phase == phase, RuleSpikeState, "spike is %s, need %s", m.spike.Phase, phase)
}

func (m *Machine) advanceTo(ts int64) {
	m.now = max(m.now, ts)
}
