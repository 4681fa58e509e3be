package round

import "github.com/phil-holland/spike-round-sim/internal/timeline"

// ShieldType denotes the armour a player bought for the round
type ShieldType string

const (
	ShieldNone  ShieldType = "none"
	ShieldLight ShieldType = "light"
	ShieldHeavy ShieldType = "heavy"
	// ShieldRegen refills from a reserve pool once the wearer stops taking
	// damage for a while
	ShieldRegen ShieldType = "regen"
)

// Capacity returns the shield health and regeneration reserve of a shield type
func (t ShieldType) Capacity() (shield int, reserve int) {
	switch t {
	case ShieldLight:
		return 25, 0
	case ShieldHeavy:
		return 50, 0
	case ShieldRegen:
		return 25, 50
	}
	return 0, 0
}

// Cost returns the credits a shield type is bought for
func (t ShieldType) Cost() int {
	switch t {
	case ShieldLight:
		return 400
	case ShieldHeavy:
		return 1000
	case ShieldRegen:
		return 650
	}
	return 0
}

// DefaultMaxHealth is the health every player starts a round with
const DefaultMaxHealth = 100

// Charges holds the remaining uses of each ability slot
type Charges struct {
	Ability1  int `json:"ability1"`
	Ability2  int `json:"ability2"`
	Signature int `json:"signature"`
}

// Get returns the charges left in a slot
func (c Charges) Get(slot timeline.AbilitySlot) int {
	switch slot {
	case timeline.SlotAbility1:
		return c.Ability1
	case timeline.SlotAbility2:
		return c.Ability2
	case timeline.SlotSignature:
		return c.Signature
	}
	return 0
}

// Spend removes one charge from a slot, returning false if it was empty
func (c *Charges) Spend(slot timeline.AbilitySlot) bool {
	var n *int
	switch slot {
	case timeline.SlotAbility1:
		n = &c.Ability1
	case timeline.SlotAbility2:
		n = &c.Ability2
	case timeline.SlotSignature:
		n = &c.Signature
	default:
		return false
	}
	if *n <= 0 {
		return false
	}
	*n--
	return true
}

// PlayerState holds everything the state machine tracks for one competitor.
// Only the machine mutates it; callers receive copies.
type PlayerState struct {
	ID    timeline.PlayerID `json:"id"`
	Name  string            `json:"name"`
	Side  timeline.Side     `json:"side"`
	Agent string            `json:"agent"`

	Alive         bool       `json:"alive"`
	Health        int        `json:"health"`
	MaxHealth     int        `json:"maxHealth"`
	ShieldType    ShieldType `json:"shieldType"`
	Shield        int        `json:"shield"`
	MaxShield     int        `json:"maxShield"`
	ShieldReserve int        `json:"shieldReserve"`

	Primary      string  `json:"primary,omitempty"`
	Secondary    string  `json:"secondary"`
	Credits      int     `json:"credits"`
	CreditsSpent int     `json:"creditsSpent"`
	Charges      Charges `json:"charges"`
	HasSpike     bool    `json:"hasSpike"`

	Kills       int `json:"kills"`
	DamageDealt int `json:"damageDealt"`
	DamageTaken int `json:"damageTaken"`

	// lastHit is the timestamp of the last damage taken, -1 if none
	lastHit int64
}

// NewPlayer returns a living player with full health and the given shield
func NewPlayer(id timeline.PlayerID, side timeline.Side, agent string, shield ShieldType) PlayerState {
	s, reserve := shield.Capacity()
	return PlayerState{
		ID:            id,
		Name:          string(id),
		Side:          side,
		Agent:         agent,
		Alive:         true,
		Health:        DefaultMaxHealth,
		MaxHealth:     DefaultMaxHealth,
		ShieldType:    shield,
		Shield:        s,
		MaxShield:     s,
		ShieldReserve: reserve,
		lastHit:       -1,
	}
}

// Weapon returns the gun the player is holding: the primary if one was
// bought, otherwise the sidearm
func (p PlayerState) Weapon() string {
	if p.Primary != "" {
		return p.Primary
	}
	return p.Secondary
}

// absorb applies raw damage to shield first and health second, returning the
// amount each one lost. Neither value goes below zero.
func (p *PlayerState) absorb(raw int) (shieldDamage int, healthDamage int) {
	shieldDamage = min(p.Shield, raw)
	healthDamage = min(p.Health, raw-shieldDamage)
	p.Shield -= shieldDamage
	p.Health -= healthDamage
	return shieldDamage, healthDamage
}

// regenerate refills a regenerating shield from its reserve if the player
// has not been hit for at least delay milliseconds
func (p *PlayerState) regenerate(now int64, delay int64) {
	if p.ShieldType != ShieldRegen || p.ShieldReserve == 0 || p.Shield >= p.MaxShield {
		return
	}
	if p.lastHit >= 0 && now-p.lastHit < delay {
		return
	}
	refill := min(p.MaxShield-p.Shield, p.ShieldReserve)
	p.Shield += refill
	p.ShieldReserve -= refill
}

func (p *PlayerState) die() {
	p.Alive = false
	p.Health = 0
	p.Shield = 0
	p.HasSpike = false
}
