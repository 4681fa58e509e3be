package timeline

// PlayerID identifies a single competitor within a round
type PlayerID string

// Side denotes which half of the round a team is playing
type Side string

const (
	// SideAttacker is the side carrying and planting the spike
	SideAttacker Side = "attacker"
	// SideDefender is the side defending the sites
	SideDefender Side = "defender"
)

// Opponent returns the opposing side
func (s Side) Opponent() Side {
	if s == SideAttacker {
		return SideDefender
	}
	return SideAttacker
}

// Site is one of the two plantable sites
type Site string

const (
	SiteA Site = "A"
	SiteB Site = "B"
)

// HitLocation denotes the body region a single bullet landed on
type HitLocation string

const (
	HitHead HitLocation = "head"
	HitBody HitLocation = "body"
	HitLeg  HitLocation = "leg"
)

// InterruptReason explains why a plant or defuse stopped before completion
type InterruptReason string

const (
	ReasonKilled    InterruptReason = "killed"
	ReasonCancelled InterruptReason = "cancelled"
	ReasonMoved     InterruptReason = "moved"
)

// DropReason explains why the spike left a player's hands
type DropReason string

const (
	DropKilled DropReason = "killed"
	DropManual DropReason = "manual"
)

// WinCondition denotes how a round was decided
type WinCondition string

const (
	WinElimination    WinCondition = "elimination"
	WinSpikeDetonated WinCondition = "spike_detonated"
	WinSpikeDefused   WinCondition = "spike_defused"
	WinTimeExpired    WinCondition = "time_expired"
)

// AbilitySlot identifies which of a player's ability slots was used
type AbilitySlot string

const (
	SlotAbility1  AbilitySlot = "ability1"
	SlotAbility2  AbilitySlot = "ability2"
	SlotSignature AbilitySlot = "signature"
)

// Kind is the discriminator of a timeline event
type Kind string

const (
	KindDamage          Kind = "damage"
	KindKill            Kind = "kill"
	KindPlantStart      Kind = "plant_start"
	KindPlantInterrupt  Kind = "plant_interrupt"
	KindPlantComplete   Kind = "plant_complete"
	KindDefuseStart     Kind = "defuse_start"
	KindDefuseInterrupt Kind = "defuse_interrupt"
	KindDefuseComplete  Kind = "defuse_complete"
	KindSpikeDrop       Kind = "spike_drop"
	KindSpikePickup     Kind = "spike_pickup"
	KindSpikeDetonation Kind = "spike_detonation"
	KindAbilityUse      Kind = "ability_use"
	KindHeal            Kind = "heal"
	KindRoundEnd        Kind = "round_end"
)
