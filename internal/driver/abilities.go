package driver

import (
	"github.com/phil-holland/spike-round-sim/internal/armory"
	"github.com/phil-holland/spike-round-sim/internal/round"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

var slots = []timeline.AbilitySlot{timeline.SlotAbility1, timeline.SlotAbility2, timeline.SlotSignature}

// abilities gives every living player a small flat chance to use an ability
// they still hold charges for
func (d *Driver) abilities() {
	for _, p := range d.m.Players() {
		if d.m.Ended() {
			return
		}
		if !p.Alive || !d.chance(d.cfg.AbilityRate) {
			continue
		}
		d.useAbility(p)
	}
}

func (d *Driver) useAbility(p round.PlayerState) {
	agent, err := d.catalog.Agents.Lookup(p.Agent)
	if err != nil {
		return
	}
	ledger := d.charges[p.ID]
	var ready []armory.Ability
	for _, slot := range slots {
		if ledger.Get(slot) == 0 {
			continue
		}
		if ab, ok := agent.Ability(slot); ok {
			ready = append(ready, ab)
		}
	}
	if len(ready) == 0 {
		return
	}
	ab := ready[d.src.IntN(len(ready))]

	var target timeline.PlayerID
	switch ab.Effect {
	case armory.EffectHeal:
		var ok bool
		if target, ok = d.mostInjured(p.Side); !ok {
			// nobody to heal, keep the charge
			return
		}
	case armory.EffectDamage, armory.EffectFlash:
		var ok bool
		if target, ok = d.pick(d.m.Alive(p.Side.Opponent())); !ok {
			return
		}
	}

	now := d.m.Now()
	in := round.AbilityInput{Player: p.ID, Ability: ab.ID, Slot: ab.Slot, Timestamp: now}
	if target != "" {
		in.Targets = []timeline.PlayerID{target}
	}
	if !d.try(d.m.RecordAbilityUse(in)) {
		return
	}
	ledger.Spend(ab.Slot)

	switch ab.Effect {
	case armory.EffectHeal:
		d.try(d.m.ApplyHeal(round.HealInput{Healer: p.ID, Target: target, Ability: ab.ID, Amount: ab.Amount, Timestamp: now}))
	case armory.EffectDamage:
		if ab.Amount <= 0 {
			return
		}
		if !d.try(d.m.ApplyDamage(round.DamageInput{Attacker: p.ID, Victim: target, Ability: ab.ID, Raw: ab.Amount, Timestamp: now})) {
			return
		}
		d.damagedBy[target] = appendUnique(d.damagedBy[target], p.ID)
		if d.player(target).Health == 0 {
			d.kill(p.ID, target, ab.ID, false, "", now)
		}
	}
}

// mostInjured returns the living player of a side furthest below full health
func (d *Driver) mostInjured(side timeline.Side) (timeline.PlayerID, bool) {
	var best timeline.PlayerID
	missing := 0
	for _, id := range d.m.Alive(side) {
		p := d.player(id)
		if gap := p.MaxHealth - p.Health; gap > missing {
			best, missing = id, gap
		}
	}
	return best, missing > 0
}
