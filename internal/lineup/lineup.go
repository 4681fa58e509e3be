// Package lineup provides a fixed 5v5 starting state. It stands in for the
// buy phase, which is not part of this module.
package lineup

import (
	"fmt"

	"github.com/phil-holland/spike-round-sim/internal/armory"
	"github.com/phil-holland/spike-round-sim/internal/round"
	"github.com/phil-holland/spike-round-sim/internal/summary"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// Lineup holds the starting players of a round and the skill weight the
// driver picks encounter participants by
type Lineup struct {
	Players []round.PlayerState
	Skills  map[timeline.PlayerID]float64
}

// Roster returns the summary metadata of every player
func (l Lineup) Roster() []summary.PlayerInfo {
	out := make([]summary.PlayerInfo, 0, len(l.Players))
	for _, p := range l.Players {
		out = append(out, summary.PlayerInfo{ID: p.ID, Name: p.Name, Side: p.Side, Agent: p.Agent})
	}
	return out
}

type slot struct {
	id      string
	name    string
	agent   string
	primary string
	shield  round.ShieldType
	skill   float64
}

var attackers = []slot{
	{"a1", "Vantage", "jett", armory.Vandal, round.ShieldHeavy, 1.2},
	{"a2", "Kestrel", "raze", armory.Phantom, round.ShieldHeavy, 1.1},
	{"a3", "Morrow", "sova", armory.Vandal, round.ShieldHeavy, 1.0},
	{"a4", "Tarn", "omen", armory.Spectre, round.ShieldLight, 0.9},
	{"a5", "Quill", "skye", armory.Phantom, round.ShieldRegen, 0.95},
}

var defenders = []slot{
	{"d1", "Halberd", "killjoy", armory.Operator, round.ShieldHeavy, 1.15},
	{"d2", "Ember", "sage", armory.Phantom, round.ShieldHeavy, 1.0},
	{"d3", "Lumen", "omen", armory.Vandal, round.ShieldHeavy, 1.05},
	{"d4", "Sable", "raze", armory.Spectre, round.ShieldLight, 0.9},
	{"d5", "Wren", "jett", armory.Sheriff, round.ShieldRegen, 1.0},
}

// startingCredits is what every player has before buying
const startingCredits = 9000

// Standard returns the reference lineup: a full buy on both sides with the
// spike on the first attacker
func Standard(catalog armory.Catalog) (Lineup, error) {
	l := Lineup{Skills: make(map[timeline.PlayerID]float64)}
	for i, s := range attackers {
		p, err := build(catalog, s, timeline.SideAttacker)
		if err != nil {
			return Lineup{}, err
		}
		p.HasSpike = i == 0
		l.Players = append(l.Players, p)
		l.Skills[p.ID] = s.skill
	}
	for _, s := range defenders {
		p, err := build(catalog, s, timeline.SideDefender)
		if err != nil {
			return Lineup{}, err
		}
		l.Players = append(l.Players, p)
		l.Skills[p.ID] = s.skill
	}
	return l, nil
}

func build(catalog armory.Catalog, s slot, side timeline.Side) (round.PlayerState, error) {
	agent, err := catalog.Agents.Lookup(s.agent)
	if err != nil {
		return round.PlayerState{}, fmt.Errorf("lineup %s: %w", s.id, err)
	}
	primary, err := catalog.Weapons.Lookup(s.primary)
	if err != nil {
		return round.PlayerState{}, fmt.Errorf("lineup %s: %w", s.id, err)
	}

	p := round.NewPlayer(timeline.PlayerID(s.id), side, agent.ID, s.shield)
	p.Name = s.name
	p.Primary = primary.ID
	p.Secondary = armory.Classic

	spent := primary.Cost + s.shield.Cost()
	for _, ab := range agent.Abilities {
		switch ab.Slot {
		case timeline.SlotAbility1:
			p.Charges.Ability1 = ab.Charges
		case timeline.SlotAbility2:
			p.Charges.Ability2 = ab.Charges
		case timeline.SlotSignature:
			p.Charges.Signature = ab.Charges
			continue
		}
		spent += ab.Cost * ab.Charges
	}
	p.CreditsSpent = spent
	p.Credits = max(startingCredits-spent, 0)
	return p, nil
}
