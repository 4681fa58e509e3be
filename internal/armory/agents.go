package armory

import (
	"fmt"

	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// Effect categorises what an ability does. Only heal amounts and raw damage
// are simulated; every other effect is a timeline annotation.
type Effect string

const (
	EffectUtility Effect = "utility"
	EffectFlash   Effect = "flash"
	EffectSmoke   Effect = "smoke"
	EffectDamage  Effect = "damage"
	EffectHeal    Effect = "heal"
)

// Ability describes a single agent ability
type Ability struct {
	ID      string               `json:"id"`
	Slot    timeline.AbilitySlot `json:"slot"`
	Cost    int                  `json:"cost"`
	Charges int                  `json:"charges"`
	Effect  Effect               `json:"effect"`
	// Amount is the heal or raw damage the ability applies, if any
	Amount int `json:"amount,omitempty"`
}

// Agent describes a playable character and its ability kit
type Agent struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Abilities []Ability `json:"abilities"`
}

// Ability returns the ability bound to the given slot
func (a Agent) Ability(slot timeline.AbilitySlot) (Ability, bool) {
	for _, ab := range a.Abilities {
		if ab.Slot == slot {
			return ab, true
		}
	}
	return Ability{}, false
}

// Agents is a lookup table keyed by agent ID
type Agents map[string]Agent

// Lookup returns the agent with the given ID
func (as Agents) Lookup(id string) (Agent, error) {
	a, ok := as[id]
	if !ok {
		return Agent{}, fmt.Errorf("unknown agent %q", id)
	}
	return a, nil
}

// FindAbility returns the ability with the given ID from any agent's kit
func (as Agents) FindAbility(id string) (Ability, bool) {
	for _, a := range as {
		for _, ab := range a.Abilities {
			if ab.ID == id {
				return ab, true
			}
		}
	}
	return Ability{}, false
}

// Catalog bundles the static tables together
type Catalog struct {
	Weapons Weapons
	Agents  Agents
}

// DefaultCatalog returns the reference weapon and agent tables
func DefaultCatalog() Catalog {
	return Catalog{Weapons: DefaultWeapons(), Agents: DefaultAgents()}
}

// DefaultAgents returns the reference agent table
func DefaultAgents() Agents {
	return Agents{
		"jett": {ID: "jett", Role: "duelist", Abilities: []Ability{
			{ID: "cloudburst", Slot: timeline.SlotAbility1, Cost: 200, Charges: 2, Effect: EffectSmoke},
			{ID: "updraft", Slot: timeline.SlotAbility2, Cost: 150, Charges: 1, Effect: EffectUtility},
			{ID: "tailwind", Slot: timeline.SlotSignature, Charges: 1, Effect: EffectUtility},
		}},
		"raze": {ID: "raze", Role: "duelist", Abilities: []Ability{
			{ID: "boom_bot", Slot: timeline.SlotAbility1, Cost: 300, Charges: 1, Effect: EffectDamage, Amount: 65},
			{ID: "blast_pack", Slot: timeline.SlotAbility2, Cost: 200, Charges: 2, Effect: EffectDamage, Amount: 50},
			{ID: "paint_shells", Slot: timeline.SlotSignature, Charges: 1, Effect: EffectDamage, Amount: 55},
		}},
		"sova": {ID: "sova", Role: "initiator", Abilities: []Ability{
			{ID: "owl_drone", Slot: timeline.SlotAbility1, Cost: 400, Charges: 1, Effect: EffectUtility},
			{ID: "shock_bolt", Slot: timeline.SlotAbility2, Cost: 150, Charges: 2, Effect: EffectDamage, Amount: 45},
			{ID: "recon_bolt", Slot: timeline.SlotSignature, Charges: 1, Effect: EffectUtility},
		}},
		"skye": {ID: "skye", Role: "initiator", Abilities: []Ability{
			{ID: "regrowth", Slot: timeline.SlotAbility1, Cost: 200, Charges: 1, Effect: EffectHeal, Amount: 60},
			{ID: "trailblazer", Slot: timeline.SlotAbility2, Cost: 250, Charges: 1, Effect: EffectUtility},
			{ID: "guiding_light", Slot: timeline.SlotSignature, Charges: 2, Effect: EffectFlash},
		}},
		"omen": {ID: "omen", Role: "controller", Abilities: []Ability{
			{ID: "shrouded_step", Slot: timeline.SlotAbility1, Cost: 100, Charges: 2, Effect: EffectUtility},
			{ID: "paranoia", Slot: timeline.SlotAbility2, Cost: 300, Charges: 1, Effect: EffectFlash},
			{ID: "dark_cover", Slot: timeline.SlotSignature, Charges: 2, Effect: EffectSmoke},
		}},
		"sage": {ID: "sage", Role: "sentinel", Abilities: []Ability{
			{ID: "barrier_orb", Slot: timeline.SlotAbility1, Cost: 400, Charges: 1, Effect: EffectUtility},
			{ID: "slow_orb", Slot: timeline.SlotAbility2, Cost: 200, Charges: 2, Effect: EffectUtility},
			{ID: "healing_orb", Slot: timeline.SlotSignature, Charges: 1, Effect: EffectHeal, Amount: 60},
		}},
		"killjoy": {ID: "killjoy", Role: "sentinel", Abilities: []Ability{
			{ID: "alarmbot", Slot: timeline.SlotAbility1, Cost: 200, Charges: 1, Effect: EffectUtility},
			{ID: "nanoswarm", Slot: timeline.SlotAbility2, Cost: 200, Charges: 2, Effect: EffectDamage, Amount: 45},
			{ID: "turret", Slot: timeline.SlotSignature, Charges: 1, Effect: EffectUtility},
		}},
	}
}
