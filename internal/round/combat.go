package round

import (
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// DamageInput describes a single damage instance. Weapon damage lists the
// hits that landed; ability damage names the ability and leaves Hits empty.
// Raw is the damage before shields are taken into account.
type DamageInput struct {
	Attacker  timeline.PlayerID
	Victim    timeline.PlayerID
	Weapon    string
	Ability   string
	Distance  float64
	Hits      []timeline.Hit
	Raw       int
	Timestamp int64
}

// ApplyDamage removes shield then health from the victim. The shield absorbs
// first and any overflow bleeds into health; neither goes below zero. A
// victim left on zero health is still alive until KillPlayer is called.
func (m *Machine) ApplyDamage(in DamageInput) error {
	g := guard{action: "apply_damage"}
	m.requireActive(&g)
	m.requireTime(&g, in.Timestamp)
	attacker := m.lookup(&g, in.Attacker, RuleActorAlive, "attacker")
	victim := m.lookup(&g, in.Victim, RuleTargetAlive, "victim")
	g.require(in.Attacker != in.Victim, RuleInvalidInput, "%s cannot damage themselves", in.Attacker)
	if attacker != nil && victim != nil {
		g.require(attacker.Side != victim.Side, RuleSide, "%s and %s are teammates", in.Attacker, in.Victim)
	}
	g.require(in.Raw > 0, RuleInvalidInput, "raw damage must be positive, got %d", in.Raw)
	g.require(in.Weapon != "" || in.Ability != "", RuleInvalidInput, "damage needs a weapon or an ability")
	g.require(in.Weapon == "" || len(in.Hits) > 0, RuleInvalidInput, "weapon damage needs at least one hit")
	g.require(in.Distance >= 0, RuleInvalidInput, "negative distance %v", in.Distance)
	if g.failed() {
		return g.err()
	}

	victim.regenerate(in.Timestamp, m.timing.ShieldRegenDelay)
	shieldBefore, healthBefore := victim.Shield, victim.Health
	shieldDamage, healthDamage := victim.absorb(in.Raw)
	victim.lastHit = in.Timestamp
	victim.DamageTaken += shieldDamage + healthDamage
	attacker.DamageDealt += shieldDamage + healthDamage

	m.advanceTo(in.Timestamp)
	m.record(in.Timestamp, timeline.Damage{
		Attacker:     in.Attacker,
		Victim:       in.Victim,
		Weapon:       in.Weapon,
		Ability:      in.Ability,
		Distance:     in.Distance,
		Hits:         append([]timeline.Hit(nil), in.Hits...),
		Raw:          in.Raw,
		ShieldBefore: shieldBefore,
		HealthBefore: healthBefore,
		ShieldDamage: shieldDamage,
		HealthDamage: healthDamage,
		ShieldAfter:  victim.Shield,
		HealthAfter:  victim.Health,
	})
	return nil
}

// KillInput describes an elimination. Location is an abstract token naming
// where it happened; it is where the spike drops if the victim carried it.
type KillInput struct {
	Killer    timeline.PlayerID
	Victim    timeline.PlayerID
	Weapon    string
	Headshot  bool
	Assisters []timeline.PlayerID
	Location  string
	Timestamp int64
}

// KillPlayer eliminates the victim. A plant or defuse the victim was running
// is interrupted and a carried spike is dropped before the kill is recorded.
// A trade kill may carry a timestamp as early as the kill it avenges, as long
// as it lies within the trade window.
func (m *Machine) KillPlayer(in KillInput) error {
	g := guard{action: "kill_player"}
	m.requireActive(&g)
	killer := m.lookup(&g, in.Killer, RuleActorAlive, "killer")
	victim := m.lookup(&g, in.Victim, RuleTargetAlive, "victim")
	g.require(in.Killer != in.Victim, RuleInvalidInput, "%s cannot kill themselves", in.Killer)
	g.require(in.Weapon != "", RuleInvalidInput, "kill needs a weapon or ability")

	var avenged timeline.Kill
	var isTrade bool
	if killer != nil && victim != nil {
		g.require(killer.Side != victim.Side, RuleSide, "%s and %s are teammates", in.Killer, in.Victim)
		avenged, isTrade = m.tradeFor(killer, victim, in.Timestamp)
	}
	if in.Timestamp < m.now {
		g.require(isTrade, RuleChronology, "timestamp %d precedes round time %d", in.Timestamp, m.now)
	}
	m.requireBeforeDeadline(&g, in.Timestamp)
	for _, a := range in.Assisters {
		p, ok := m.players[a]
		g.require(ok, RuleUnknownPlayer, "assister %q is not in this round", a)
		if ok && killer != nil {
			g.require(p.Side == killer.Side && a != in.Killer, RuleInvalidInput, "%s cannot assist %s", a, in.Killer)
		}
	}
	if g.failed() {
		return g.err()
	}

	// side effects share the kill's timestamp, or the current time when the
	// kill is a trade recorded slightly in the past
	m.advanceTo(in.Timestamp)
	if m.spike.Phase == SpikePlanting && m.spike.Holder == in.Victim {
		m.interruptPlant(timeline.ReasonKilled)
	}
	if m.spike.Phase == SpikeDefusing && m.spike.Defuser == in.Victim {
		m.interruptDefuse(timeline.ReasonKilled)
	}
	if m.spike.Phase == SpikeCarried && m.spike.Holder == in.Victim {
		location := in.Location
		if location == "" {
			location = "unknown"
		}
		m.dropSpike(timeline.DropKilled, location)
	}

	victim.die()
	killer.Kills++
	kill := timeline.Kill{
		Killer:    in.Killer,
		Victim:    in.Victim,
		Weapon:    in.Weapon,
		Headshot:  in.Headshot,
		Assisters: append([]timeline.PlayerID(nil), in.Assisters...),
	}
	if isTrade {
		kill.TradeOf = avenged.ID
	}
	recorded := m.record(in.Timestamp, kill).(timeline.Kill)
	m.kills = append(m.kills, recorded)

	m.checkElimination()
	return nil
}

// tradeFor finds the most recent kill the victim made on one of the killer's
// teammates within the trade window before ts. Backdated trades leave m.kills
// out of timestamp order, so every kill is scanned.
func (m *Machine) tradeFor(killer, victim *PlayerState, ts int64) (timeline.Kill, bool) {
	var found timeline.Kill
	var ok bool
	for _, k := range m.kills {
		if k.Killer != victim.ID || ts < k.Timestamp || ts-k.Timestamp > m.timing.TradeWindow {
			continue
		}
		if m.players[k.Victim].Side != killer.Side {
			continue
		}
		if !ok || k.Timestamp >= found.Timestamp {
			found, ok = k, true
		}
	}
	return found, ok
}

// HealInput describes a heal from an ability
type HealInput struct {
	Healer    timeline.PlayerID
	Target    timeline.PlayerID
	Ability   string
	Amount    int
	Timestamp int64
}

// ApplyHeal restores health to a living teammate (or the healer), clamped to
// the target's maximum. The recorded amount is what was actually restored.
func (m *Machine) ApplyHeal(in HealInput) error {
	g := guard{action: "apply_heal"}
	m.requireActive(&g)
	m.requireTime(&g, in.Timestamp)
	healer := m.lookup(&g, in.Healer, RuleActorAlive, "healer")
	target := m.lookup(&g, in.Target, RuleTargetAlive, "target")
	if healer != nil && target != nil {
		g.require(healer.Side == target.Side, RuleSide, "%s cannot heal opponent %s", in.Healer, in.Target)
	}
	g.require(in.Amount > 0, RuleInvalidInput, "heal amount must be positive, got %d", in.Amount)
	g.require(in.Ability != "", RuleInvalidInput, "heal needs an ability")
	if g.failed() {
		return g.err()
	}

	restored := min(in.Amount, target.MaxHealth-target.Health)
	target.Health += restored
	m.advanceTo(in.Timestamp)
	m.record(in.Timestamp, timeline.Heal{
		Healer:      in.Healer,
		Target:      in.Target,
		Ability:     in.Ability,
		Amount:      restored,
		HealthAfter: target.Health,
	})
	return nil
}

// AbilityInput describes an ability activation
type AbilityInput struct {
	Player    timeline.PlayerID
	Ability   string
	Slot      timeline.AbilitySlot
	Targets   []timeline.PlayerID
	Timestamp int64
}

// RecordAbilityUse annotates the timeline with an ability activation. No
// charges are deducted here: the caller owns charge bookkeeping.
func (m *Machine) RecordAbilityUse(in AbilityInput) error {
	g := guard{action: "record_ability_use"}
	m.requireActive(&g)
	m.requireTime(&g, in.Timestamp)
	m.lookup(&g, in.Player, RuleActorAlive, "player")
	g.require(in.Ability != "", RuleInvalidInput, "ability id is empty")
	if g.failed() {
		return g.err()
	}

	m.advanceTo(in.Timestamp)
	m.record(in.Timestamp, timeline.AbilityUse{
		Player:  in.Player,
		Ability: in.Ability,
		Slot:    in.Slot,
		Targets: append([]timeline.PlayerID(nil), in.Targets...),
	})
	return nil
}
