// Package timeline holds the closed vocabulary of round events and the
// append-only log they are recorded in. The log is the only durable record of
// a round: every statistic shown to a user is derived by replaying it.
package timeline

// Header holds data common to every timeline event
type Header struct {
	ID        int   `json:"id"`
	Timestamp int64 `json:"timestamp"`
}

// Head returns the event header
func (h Header) Head() Header { return h }

// Event is a single immutable timeline record. The set of implementations is
// closed to this package, so a type switch over the types below is exhaustive.
type Event interface {
	Head() Header
	Kind() Kind
	stamp(h Header) Event
}

// Hit holds a single bullet impact
type Hit struct {
	Location HitLocation `json:"location"`
}

// Damage records health and shield being removed from a player
type Damage struct {
	Header
	Attacker     PlayerID `json:"attacker"`
	Victim       PlayerID `json:"victim"`
	Weapon       string   `json:"weapon,omitempty"`
	Ability      string   `json:"ability,omitempty"`
	Distance     float64  `json:"distance"`
	Hits         []Hit    `json:"hits,omitempty"`
	Raw          int      `json:"raw"`
	ShieldBefore int      `json:"shieldBefore"`
	HealthBefore int      `json:"healthBefore"`
	ShieldDamage int      `json:"shieldDamage"`
	HealthDamage int      `json:"healthDamage"`
	ShieldAfter  int      `json:"shieldAfter"`
	HealthAfter  int      `json:"healthAfter"`
}

// Kill records a player being eliminated by another player
type Kill struct {
	Header
	Killer    PlayerID   `json:"killer"`
	Victim    PlayerID   `json:"victim"`
	Weapon    string     `json:"weapon"`
	Headshot  bool       `json:"headshot"`
	Assisters []PlayerID `json:"assisters,omitempty"`
	// TradeOf is the ID of the kill this one avenges, 0 if it is not a trade
	TradeOf int `json:"tradeOf,omitempty"`
}

type PlantStart struct {
	Header
	Player PlayerID `json:"player"`
	Site   Site     `json:"site"`
}

type PlantInterrupt struct {
	Header
	Player   PlayerID        `json:"player"`
	Site     Site            `json:"site"`
	Reason   InterruptReason `json:"reason"`
	Progress float64         `json:"progress"`
}

type PlantComplete struct {
	Header
	Player PlayerID `json:"player"`
	Site   Site     `json:"site"`
}

type DefuseStart struct {
	Header
	Player PlayerID `json:"player"`
}

type DefuseInterrupt struct {
	Header
	Player   PlayerID        `json:"player"`
	Reason   InterruptReason `json:"reason"`
	Progress float64         `json:"progress"`
}

type DefuseComplete struct {
	Header
	Player PlayerID `json:"player"`
}

// SpikeDrop records the spike leaving its carrier, either on death or by choice
type SpikeDrop struct {
	Header
	Player   PlayerID   `json:"player"`
	Location string     `json:"location"`
	Reason   DropReason `json:"reason"`
}

type SpikePickup struct {
	Header
	Player   PlayerID `json:"player"`
	Location string   `json:"location"`
}

// SpikeDetonation records the post-plant timer running out. Every defender
// still alive at that moment is listed in Killed.
type SpikeDetonation struct {
	Header
	Site   Site       `json:"site"`
	Killed []PlayerID `json:"killed,omitempty"`
}

// AbilityUse is a pure annotation: charge bookkeeping happens before it is
// recorded
type AbilityUse struct {
	Header
	Player  PlayerID    `json:"player"`
	Ability string      `json:"ability"`
	Slot    AbilitySlot `json:"slot"`
	Targets []PlayerID  `json:"targets,omitempty"`
}

type Heal struct {
	Header
	Healer      PlayerID `json:"healer"`
	Target      PlayerID `json:"target"`
	Ability     string   `json:"ability"`
	Amount      int      `json:"amount"`
	HealthAfter int      `json:"healthAfter"`
}

// RoundEnd is the terminal event of every round
type RoundEnd struct {
	Header
	Winner         Side         `json:"winner"`
	Condition      WinCondition `json:"condition"`
	AttackersAlive []PlayerID   `json:"attackersAlive"`
	DefendersAlive []PlayerID   `json:"defendersAlive"`
}

// Survivors returns every surviving player from both sides
func (e RoundEnd) Survivors() []PlayerID {
	out := make([]PlayerID, 0, len(e.AttackersAlive)+len(e.DefendersAlive))
	out = append(out, e.AttackersAlive...)
	return append(out, e.DefendersAlive...)
}

// Survived returns true if the player is listed among the survivors
func (e RoundEnd) Survived(id PlayerID) bool {
	for _, s := range e.Survivors() {
		if s == id {
			return true
		}
	}
	return false
}

func (Damage) Kind() Kind          { return KindDamage }
func (Kill) Kind() Kind            { return KindKill }
func (PlantStart) Kind() Kind      { return KindPlantStart }
func (PlantInterrupt) Kind() Kind  { return KindPlantInterrupt }
func (PlantComplete) Kind() Kind   { return KindPlantComplete }
func (DefuseStart) Kind() Kind     { return KindDefuseStart }
func (DefuseInterrupt) Kind() Kind { return KindDefuseInterrupt }
func (DefuseComplete) Kind() Kind  { return KindDefuseComplete }
func (SpikeDrop) Kind() Kind       { return KindSpikeDrop }
func (SpikePickup) Kind() Kind     { return KindSpikePickup }
func (SpikeDetonation) Kind() Kind { return KindSpikeDetonation }
func (AbilityUse) Kind() Kind      { return KindAbilityUse }
func (Heal) Kind() Kind            { return KindHeal }
func (RoundEnd) Kind() Kind        { return KindRoundEnd }

func (e Damage) stamp(h Header) Event          { e.Header = h; return e }
func (e Kill) stamp(h Header) Event            { e.Header = h; return e }
func (e PlantStart) stamp(h Header) Event      { e.Header = h; return e }
func (e PlantInterrupt) stamp(h Header) Event  { e.Header = h; return e }
func (e PlantComplete) stamp(h Header) Event   { e.Header = h; return e }
func (e DefuseStart) stamp(h Header) Event     { e.Header = h; return e }
func (e DefuseInterrupt) stamp(h Header) Event { e.Header = h; return e }
func (e DefuseComplete) stamp(h Header) Event  { e.Header = h; return e }
func (e SpikeDrop) stamp(h Header) Event       { e.Header = h; return e }
func (e SpikePickup) stamp(h Header) Event     { e.Header = h; return e }
func (e SpikeDetonation) stamp(h Header) Event { e.Header = h; return e }
func (e AbilityUse) stamp(h Header) Event      { e.Header = h; return e }
func (e Heal) stamp(h Header) Event            { e.Header = h; return e }
func (e RoundEnd) stamp(h Header) Event        { e.Header = h; return e }

// Participants returns every player an event names as an actor or a target.
// Spike detonation casualties are not participants: they are the result of
// the event, not inputs to it.
func Participants(e Event) []PlayerID {
	switch ev := e.(type) {
	case Damage:
		return []PlayerID{ev.Attacker, ev.Victim}
	case Kill:
		// assisters may have died since they dealt their damage
		return []PlayerID{ev.Killer, ev.Victim}
	case PlantStart:
		return []PlayerID{ev.Player}
	case PlantInterrupt:
		return []PlayerID{ev.Player}
	case PlantComplete:
		return []PlayerID{ev.Player}
	case DefuseStart:
		return []PlayerID{ev.Player}
	case DefuseInterrupt:
		return []PlayerID{ev.Player}
	case DefuseComplete:
		return []PlayerID{ev.Player}
	case SpikeDrop:
		return []PlayerID{ev.Player}
	case SpikePickup:
		return []PlayerID{ev.Player}
	case AbilityUse:
		// targets are informational and never gate the event
		return []PlayerID{ev.Player}
	case Heal:
		return []PlayerID{ev.Healer, ev.Target}
	}
	return nil
}
