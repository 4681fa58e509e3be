// Package legacy flattens a round timeline into the per-round records the
// older display code reads. The flat form is lossy: it keeps damage, kills
// and the objective outcome, and drops everything else.
package legacy

import "github.com/phil-holland/spike-round-sim/internal/timeline"

// Damage is a single flattened damage record
type Damage struct {
	Time     int64  `json:"time"`
	Attacker string `json:"attacker"`
	Victim   string `json:"victim"`
	Weapon   string `json:"weapon"`
	Amount   int    `json:"amount"`
	Headshot bool   `json:"headshot"`
}

// Kill is a single flattened kill record
type Kill struct {
	Time     int64    `json:"time"`
	Killer   string   `json:"killer"`
	Victim   string   `json:"victim"`
	Weapon   string   `json:"weapon"`
	Headshot bool     `json:"headshot"`
	Assists  []string `json:"assists"`
	Trade    bool     `json:"trade"`
}

// Plant holds the successful plant of a round
type Plant struct {
	Time   int64  `json:"time"`
	Player string `json:"player"`
	Site   string `json:"site"`
}

// Defuse holds the successful defuse of a round
type Defuse struct {
	Time   int64  `json:"time"`
	Player string `json:"player"`
}

// Round is the legacy per-round record
type Round struct {
	Winner       string   `json:"winner"`
	WinCondition string   `json:"winCondition"`
	Duration     int64    `json:"duration"`
	Damages      []Damage `json:"damages"`
	Kills        []Kill   `json:"kills"`
	Plant        *Plant   `json:"plant"`
	Defuse       *Defuse  `json:"defuse"`
	Detonated    bool     `json:"detonated"`
	Survivors    []string `json:"survivors"`
}

// Flatten converts a timeline into a legacy round record. Ability damage is
// reported with the ability in the weapon field.
func Flatten(events []timeline.Event) Round {
	r := Round{
		Damages:   make([]Damage, 0),
		Kills:     make([]Kill, 0),
		Survivors: make([]string, 0),
	}
	for _, e := range events {
		switch ev := e.(type) {
		case timeline.Damage:
			weapon := ev.Weapon
			if weapon == "" {
				weapon = ev.Ability
			}
			headshot := false
			for _, h := range ev.Hits {
				if h.Location == timeline.HitHead {
					headshot = true
				}
			}
			r.Damages = append(r.Damages, Damage{
				Time:     ev.Timestamp,
				Attacker: string(ev.Attacker),
				Victim:   string(ev.Victim),
				Weapon:   weapon,
				Amount:   ev.ShieldDamage + ev.HealthDamage,
				Headshot: headshot,
			})
		case timeline.Kill:
			assists := make([]string, 0, len(ev.Assisters))
			for _, a := range ev.Assisters {
				assists = append(assists, string(a))
			}
			r.Kills = append(r.Kills, Kill{
				Time:     ev.Timestamp,
				Killer:   string(ev.Killer),
				Victim:   string(ev.Victim),
				Weapon:   ev.Weapon,
				Headshot: ev.Headshot,
				Assists:  assists,
				Trade:    ev.TradeOf != 0,
			})
		case timeline.PlantComplete:
			r.Plant = &Plant{Time: ev.Timestamp, Player: string(ev.Player), Site: string(ev.Site)}
		case timeline.DefuseComplete:
			r.Defuse = &Defuse{Time: ev.Timestamp, Player: string(ev.Player)}
		case timeline.SpikeDetonation:
			r.Detonated = true
		case timeline.RoundEnd:
			r.Winner = string(ev.Winner)
			r.WinCondition = string(ev.Condition)
			r.Duration = ev.Timestamp
			for _, id := range ev.Survivors() {
				r.Survivors = append(r.Survivors, string(id))
			}
		}
	}
	return r
}
