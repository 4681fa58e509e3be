// Package summary derives round statistics from a timeline. Nothing here
// simulates: every field is a count, sum or pattern found by scanning the
// recorded events, so the same timeline always yields the same summary.
package summary

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// ErrNoRoundEnd is returned for a timeline without a terminal round end event
var ErrNoRoundEnd = errors.New("timeline has no round end event")

// Derive computes the summary of a finished round. The roster lists every
// player in the round with their side; stats are returned in roster order.
func Derive(events []timeline.Event, roster []PlayerInfo) (Summary, error) {
	end, ok := timeline.FindRoundEnd(events)
	if !ok {
		return Summary{}, ErrNoRoundEnd
	}

	stats := make(map[timeline.PlayerID]*PlayerStats, len(roster))
	order := make([]timeline.PlayerID, 0, len(roster))
	for _, p := range roster {
		if _, ok := stats[p.ID]; ok {
			return Summary{}, fmt.Errorf("duplicate roster entry %s", p.ID)
		}
		stats[p.ID] = &PlayerStats{PlayerInfo: p}
		order = append(order, p.ID)
	}
	get := func(id timeline.PlayerID) *PlayerStats {
		if s, ok := stats[id]; ok {
			return s
		}
		// players missing from the roster still get counted, with no metadata
		s := &PlayerStats{PlayerInfo: PlayerInfo{ID: id, Name: string(id)}}
		stats[id] = s
		order = append(order, id)
		return s
	}

	s := Summary{
		Winner:    end.Winner,
		Condition: end.Condition,
		Duration:  end.Timestamp,
	}

	for _, e := range events {
		switch ev := e.(type) {
		case timeline.Damage:
			dealt := ev.ShieldDamage + ev.HealthDamage
			s.Totals.Damage += dealt
			get(ev.Attacker).DamageDealt += dealt
			get(ev.Victim).DamageTaken += dealt
		case timeline.Kill:
			s.Totals.Kills++
			killer, victim := get(ev.Killer), get(ev.Victim)
			killer.Kills++
			victim.Deaths++
			if ev.Headshot {
				s.Totals.Headshots++
				killer.Headshots++
			}
			if ev.TradeOf != 0 {
				s.Totals.TradeKills++
				killer.TradeKills++
			}
			for _, a := range ev.Assisters {
				get(a).Assists++
			}
			if s.FirstBlood == nil || ev.Timestamp < s.FirstBlood.Timestamp {
				s.FirstBlood = &FirstBlood{
					EventID:   ev.ID,
					Timestamp: ev.Timestamp,
					Killer:    ev.Killer,
					Victim:    ev.Victim,
					Weapon:    ev.Weapon,
					Headshot:  ev.Headshot,
					Side:      killer.Side,
				}
			}
		case timeline.PlantStart:
			s.Spike.PlantAttempts++
		case timeline.PlantComplete:
			s.Spike.Planted = true
			s.Spike.Site = ev.Site
			s.Spike.Planter = ev.Player
			s.Spike.PlantTime = ev.Timestamp
		case timeline.DefuseStart:
			s.Spike.DefuseAttempts++
		case timeline.DefuseComplete:
			s.Spike.Defused = true
			s.Spike.Defuser = ev.Player
			s.Spike.DefuseTime = ev.Timestamp
		case timeline.SpikeDrop:
			s.Spike.Drops++
		case timeline.SpikeDetonation:
			s.Spike.Detonated = true
			for _, id := range ev.Killed {
				get(id).Deaths++
			}
		case timeline.AbilityUse:
			s.Totals.AbilityUses++
			get(ev.Player).AbilitiesUsed++
		case timeline.Heal:
			s.Totals.Heals++
			s.Totals.HealAmount += ev.Amount
			get(ev.Healer).HealingDone += ev.Amount
		}
	}

	if s.FirstBlood != nil {
		get(s.FirstBlood.Killer).FirstKill = true
		get(s.FirstBlood.Victim).FirstDeath = true
	}
	for _, id := range end.Survivors() {
		get(id).Survived = true
	}

	s.Clutch = DetectClutch(events, roster)

	s.Players = make([]PlayerStats, 0, len(order))
	for _, id := range order {
		s.Players = append(s.Players, *stats[id])
	}
	return s, nil
}

// DetectClutch replays the deaths of the round in timestamp order against the
// roster and returns the first point at which one side has exactly one player
// left against two or more opponents. It returns nil if that never happens.
func DetectClutch(events []timeline.Event, roster []PlayerInfo) *Clutch {
	side := make(map[timeline.PlayerID]timeline.Side, len(roster))
	alive := make(map[timeline.PlayerID]bool, len(roster))
	count := make(map[timeline.Side]int)
	for _, p := range roster {
		if _, ok := side[p.ID]; ok {
			continue
		}
		side[p.ID] = p.Side
		alive[p.ID] = true
		count[p.Side]++
	}
	die := func(id timeline.PlayerID) {
		if alive[id] {
			alive[id] = false
			count[side[id]]--
		}
	}

	var c *Clutch
	check := func(ts int64) {
		if c != nil {
			return
		}
		for _, s := range []timeline.Side{timeline.SideAttacker, timeline.SideDefender} {
			opponents := count[s.Opponent()]
			if count[s] != 1 || opponents < 2 {
				continue
			}
			for _, p := range roster {
				if p.Side == s && alive[p.ID] {
					c = &Clutch{
						Player:    p.ID,
						Side:      s,
						Situation: fmt.Sprintf("1v%d", opponents),
						Opponents: opponents,
						Start:     ts,
					}
					return
				}
			}
		}
	}

	check(0)
	for _, e := range deaths(events) {
		switch ev := e.(type) {
		case timeline.Kill:
			if c != nil && ev.Killer == c.Player && ev.Timestamp >= c.Start {
				c.Kills++
			}
			die(ev.Victim)
			check(ev.Timestamp)
		case timeline.SpikeDetonation:
			for _, id := range ev.Killed {
				die(id)
			}
			check(ev.Timestamp)
		}
	}
	if c == nil {
		return nil
	}
	end, _ := timeline.FindRoundEnd(events)
	c.Survived = end.Survived(c.Player)
	c.Won = end.Winner == c.Side
	return c
}

// deaths returns the kills and detonations of a timeline ordered by timestamp.
// A backdated trade kill is recorded after events stamped later than it.
func deaths(events []timeline.Event) []timeline.Event {
	var out []timeline.Event
	for _, e := range events {
		switch e.(type) {
		case timeline.Kill, timeline.SpikeDetonation:
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b timeline.Event) int {
		if c := cmp.Compare(a.Head().Timestamp, b.Head().Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Head().ID, b.Head().ID)
	})
	return out
}
