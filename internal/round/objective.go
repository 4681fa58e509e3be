package round

import (
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// StartPlant begins planting at a site. The planter must be a living
// attacker carrying the spike.
func (m *Machine) StartPlant(player timeline.PlayerID, site timeline.Site, ts int64) error {
	g := guard{action: "start_plant"}
	m.requireActive(&g)
	m.requireTime(&g, ts)
	p := m.lookup(&g, player, RuleActorAlive, "planter")
	m.requireSide(&g, p, timeline.SideAttacker)
	m.requireSpike(&g, SpikeCarried)
	g.require(m.spike.Holder == player, RuleSpikeHolder, "%s is not carrying the spike", player)
	g.require(site == timeline.SiteA || site == timeline.SiteB, RuleInvalidInput, "unknown site %q", site)
	if g.failed() {
		return g.err()
	}

	m.advanceTo(ts)
	m.spike.Phase = SpikePlanting
	m.spike.Site = site
	m.spike.ActionStart = ts
	m.record(ts, timeline.PlantStart{Player: player, Site: site})
	return nil
}

// InterruptPlant stops a running plant. Progress is carried on the event for
// narrative use only; the spike goes back to the planter's hands.
func (m *Machine) InterruptPlant(player timeline.PlayerID, reason timeline.InterruptReason, progress float64, ts int64) error {
	g := guard{action: "interrupt_plant"}
	m.requireActive(&g)
	m.requireTime(&g, ts)
	m.lookup(&g, player, RuleActorAlive, "planter")
	m.requireSpike(&g, SpikePlanting)
	g.require(m.spike.Holder == player, RuleSpikeHolder, "%s is not planting", player)
	requireReason(&g, reason)
	g.require(progress >= 0 && progress <= 1, RuleInvalidInput, "progress %v outside [0,1]", progress)
	if g.failed() {
		return g.err()
	}

	m.advanceTo(ts)
	m.recordPlantInterrupt(reason, progress)
	return nil
}

// CompletePlant finishes a plant once the plant duration has elapsed. The
// post-plant clock starts at ts.
func (m *Machine) CompletePlant(player timeline.PlayerID, ts int64) error {
	g := guard{action: "complete_plant"}
	m.requireActive(&g)
	m.requireTime(&g, ts)
	p := m.lookup(&g, player, RuleActorAlive, "planter")
	m.requireSide(&g, p, timeline.SideAttacker)
	m.requireSpike(&g, SpikePlanting)
	g.require(m.spike.Holder == player, RuleSpikeHolder, "%s is not planting", player)
	if m.spike.Phase == SpikePlanting {
		elapsed := ts - m.spike.ActionStart
		g.require(elapsed >= m.timing.PlantDuration, RuleDuration, "plant ran %dms of %dms", elapsed, m.timing.PlantDuration)
	}
	if g.failed() {
		return g.err()
	}

	m.advanceTo(ts)
	site := m.spike.Site
	p.HasSpike = false
	m.spike = Spike{Phase: SpikePlanted, Site: site, Planter: player, PlantedAt: ts}
	m.record(ts, timeline.PlantComplete{Player: player, Site: site})
	return nil
}

// StartDefuse begins defusing a planted spike. The defuser must be a living
// defender.
func (m *Machine) StartDefuse(player timeline.PlayerID, ts int64) error {
	g := guard{action: "start_defuse"}
	m.requireActive(&g)
	m.requireTime(&g, ts)
	p := m.lookup(&g, player, RuleActorAlive, "defuser")
	m.requireSide(&g, p, timeline.SideDefender)
	m.requireSpike(&g, SpikePlanted)
	if g.failed() {
		return g.err()
	}

	m.advanceTo(ts)
	m.spike.Phase = SpikeDefusing
	m.spike.Defuser = player
	m.spike.ActionStart = ts
	m.record(ts, timeline.DefuseStart{Player: player})
	return nil
}

// InterruptDefuse stops a running defuse. A defuse that got past the
// halfway mark keeps its checkpoint.
func (m *Machine) InterruptDefuse(player timeline.PlayerID, reason timeline.InterruptReason, progress float64, ts int64) error {
	g := guard{action: "interrupt_defuse"}
	m.requireActive(&g)
	m.requireTime(&g, ts)
	m.lookup(&g, player, RuleActorAlive, "defuser")
	m.requireSpike(&g, SpikeDefusing)
	g.require(m.spike.Defuser == player, RuleSpikeHolder, "%s is not defusing", player)
	requireReason(&g, reason)
	g.require(progress >= 0 && progress <= 1, RuleInvalidInput, "progress %v outside [0,1]", progress)
	if g.failed() {
		return g.err()
	}

	m.advanceTo(ts)
	m.recordDefuseInterrupt(reason, progress)
	return nil
}

// CompleteDefuse finishes a defuse once the remaining defuse time has
// elapsed. The round ends for the defenders.
func (m *Machine) CompleteDefuse(player timeline.PlayerID, ts int64) error {
	g := guard{action: "complete_defuse"}
	m.requireActive(&g)
	m.requireTime(&g, ts)
	p := m.lookup(&g, player, RuleActorAlive, "defuser")
	m.requireSide(&g, p, timeline.SideDefender)
	m.requireSpike(&g, SpikeDefusing)
	g.require(m.spike.Defuser == player, RuleSpikeHolder, "%s is not defusing", player)
	if m.spike.Phase == SpikeDefusing {
		elapsed := ts - m.spike.ActionStart
		required := m.defuseRequired()
		g.require(elapsed >= required, RuleDuration, "defuse ran %dms of %dms", elapsed, required)
	}
	if g.failed() {
		return g.err()
	}

	m.advanceTo(ts)
	m.spike.Phase = SpikeDefused
	m.record(ts, timeline.DefuseComplete{Player: player})
	m.endRound(timeline.SideDefender, timeline.WinSpikeDefused)
	return nil
}

// PickupSpike hands a dropped spike to a living attacker
func (m *Machine) PickupSpike(player timeline.PlayerID, ts int64) error {
	g := guard{action: "pickup_spike"}
	m.requireActive(&g)
	m.requireTime(&g, ts)
	p := m.lookup(&g, player, RuleActorAlive, "player")
	m.requireSide(&g, p, timeline.SideAttacker)
	m.requireSpike(&g, SpikeDropped)
	if g.failed() {
		return g.err()
	}

	m.advanceTo(ts)
	location := m.spike.Location
	p.HasSpike = true
	m.spike = Spike{Phase: SpikeCarried, Holder: player}
	m.record(ts, timeline.SpikePickup{Player: player, Location: location})
	return nil
}

// DropSpike lets the carrier put the spike down deliberately
func (m *Machine) DropSpike(player timeline.PlayerID, location string, ts int64) error {
	g := guard{action: "drop_spike"}
	m.requireActive(&g)
	m.requireTime(&g, ts)
	m.lookup(&g, player, RuleActorAlive, "player")
	m.requireSpike(&g, SpikeCarried)
	g.require(m.spike.Holder == player, RuleSpikeHolder, "%s is not carrying the spike", player)
	g.require(location != "", RuleInvalidInput, "drop needs a location")
	if g.failed() {
		return g.err()
	}

	m.advanceTo(ts)
	m.dropSpike(timeline.DropManual, location)
	return nil
}

func requireReason(g *guard, reason timeline.InterruptReason) {
	switch reason {
	case timeline.ReasonKilled, timeline.ReasonCancelled, timeline.ReasonMoved:
		return
	}
	g.require(false, RuleInvalidInput, "unknown interrupt reason %q", reason)
}

// interruptPlant stops the running plant at the current time, deriving the
// progress from the elapsed plant time
func (m *Machine) interruptPlant(reason timeline.InterruptReason) {
	m.recordPlantInterrupt(reason, fraction(m.now-m.spike.ActionStart, m.timing.PlantDuration))
}

func (m *Machine) recordPlantInterrupt(reason timeline.InterruptReason, progress float64) {
	holder, site := m.spike.Holder, m.spike.Site
	m.spike = Spike{Phase: SpikeCarried, Holder: holder}
	m.record(m.now, timeline.PlantInterrupt{Player: holder, Site: site, Reason: reason, Progress: progress})
}

// interruptDefuse stops the running defuse at the current time
func (m *Machine) interruptDefuse(reason timeline.InterruptReason) {
	m.recordDefuseInterrupt(reason, fraction(m.defuseDone(), m.timing.DefuseDuration))
}

// defuseDone returns the defuse time banked so far, including a checkpoint
func (m *Machine) defuseDone() int64 {
	done := m.now - m.spike.ActionStart
	if m.spike.Checkpoint {
		done += m.timing.HalfDefuse()
	}
	return done
}

func (m *Machine) recordDefuseInterrupt(reason timeline.InterruptReason, progress float64) {
	done := m.defuseDone()
	defuser := m.spike.Defuser
	m.spike.Phase = SpikePlanted
	m.spike.Defuser = ""
	m.spike.ActionStart = 0
	m.spike.Checkpoint = done >= m.timing.HalfDefuse()
	m.record(m.now, timeline.DefuseInterrupt{Player: defuser, Reason: reason, Progress: progress})
}

func (m *Machine) dropSpike(reason timeline.DropReason, location string) {
	holder := m.spike.Holder
	m.players[holder].HasSpike = false
	m.spike = Spike{Phase: SpikeDropped, Location: location}
	m.record(m.now, timeline.SpikeDrop{Player: holder, Location: location, Reason: reason})
}

func fraction(done, total int64) float64 {
	if total <= 0 {
		return 1
	}
	return min(max(float64(done)/float64(total), 0), 1)
}
