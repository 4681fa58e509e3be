package driver

import (
	"github.com/phil-holland/spike-round-sim/internal/round"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// locations are the abstract map tokens an encounter can happen at
var locations = []string{"a_main", "a_site", "mid", "b_main", "b_site", "defender_spawn"}

const (
	minDistance = 5
	maxDistance = 50
)

// encounter pits one living attacker against one living defender and, if
// the duel ends in a kill, may give the victim's team a chance to trade
func (d *Driver) encounter() {
	attacker, ok := d.pick(d.m.Alive(timeline.SideAttacker))
	if !ok {
		return
	}
	defender, ok := d.pick(d.m.Alive(timeline.SideDefender))
	if !ok {
		return
	}

	location := locations[d.src.IntN(len(locations))]
	if spike := d.m.Spike(); spike.Phase.Armed() || spike.Phase == round.SpikePlanting {
		location = siteLocation[spike.Site]
	}

	killer, victim, ok := d.duel(attacker, defender, location, d.m.Now())
	if !ok || d.m.Ended() || !d.chance(d.cfg.TradeRate) {
		return
	}
	side := d.player(victim).Side
	avenger, ok := d.pick(d.m.Alive(side))
	if !ok {
		return
	}
	delay := int64(d.src.IntN(int(max(d.m.Timing().TradeWindow, 1))))
	d.duel(avenger, killer, location, d.m.Now()+delay)
}

// duel runs up to MaxExchanges exchanges of fire between two players. Each
// exchange goes to one shooter, with the odds set by the skill ratio. It
// returns the kill that ended the duel, if there was one.
func (d *Driver) duel(a, b timeline.PlayerID, location string, start int64) (killer, victim timeline.PlayerID, ok bool) {
	d.standDown(a)
	d.standDown(b)

	ts := max(start, d.m.Now())
	odds := d.skill(a) / (d.skill(a) + d.skill(b))
	for range d.cfg.MaxExchanges {
		if d.m.Ended() || ts >= d.m.Deadline() {
			return "", "", false
		}
		shooter, target := a, b
		if !d.chance(odds) {
			shooter, target = b, a
		}
		dead, gap := d.shoot(shooter, target, location, ts)
		if dead {
			return shooter, target, true
		}
		ts += gap
	}
	return "", "", false
}

// shoot fires one burst. It returns whether the target died and how long
// the burst took.
func (d *Driver) shoot(shooter, target timeline.PlayerID, location string, ts int64) (bool, int64) {
	w, err := d.catalog.Weapons.Lookup(d.player(shooter).Weapon())
	if err != nil {
		d.logger.Error("shooter has no usable weapon", "player", shooter, "error", err)
		return false, 500
	}

	// zero hits is a missed burst
	n := d.src.IntN(4)
	gap := int64(float64(max(n, 1)) * 1000 / w.FireRate)
	if n == 0 {
		return false, gap
	}
	distance := minDistance + d.src.Float64()*(maxDistance-minDistance)
	hits := make([]timeline.Hit, n)
	for i := range hits {
		hits[i] = timeline.Hit{Location: d.hitLocation()}
	}

	accepted := d.try(d.m.ApplyDamage(round.DamageInput{
		Attacker:  shooter,
		Victim:    target,
		Weapon:    w.ID,
		Distance:  distance,
		Hits:      hits,
		Raw:       w.Expected(distance, hits),
		Timestamp: ts,
	}))
	if !accepted {
		return false, gap
	}
	d.damagedBy[target] = appendUnique(d.damagedBy[target], shooter)
	if d.player(target).Health > 0 {
		return false, gap
	}
	headshot := hits[len(hits)-1].Location == timeline.HitHead
	return d.kill(shooter, target, w.ID, headshot, location, ts), gap
}

// kill finishes a player left on zero health. Teammates of the killer who
// damaged the victim earlier get the assist.
func (d *Driver) kill(killer, victim timeline.PlayerID, weapon string, headshot bool, location string, ts int64) bool {
	side := d.player(killer).Side
	var assisters []timeline.PlayerID
	for _, id := range d.damagedBy[victim] {
		if id != killer && d.player(id).Side == side {
			assisters = append(assisters, id)
		}
	}
	return d.try(d.m.KillPlayer(round.KillInput{
		Killer:    killer,
		Victim:    victim,
		Weapon:    weapon,
		Headshot:  headshot,
		Assisters: assisters,
		Location:  location,
		Timestamp: ts,
	}))
}

func (d *Driver) hitLocation() timeline.HitLocation {
	r := d.src.Float64()
	switch {
	case r < d.cfg.HeadshotRate:
		return timeline.HitHead
	case r < d.cfg.HeadshotRate+d.cfg.LegshotRate:
		return timeline.HitLeg
	}
	return timeline.HitBody
}

func appendUnique(ids []timeline.PlayerID, id timeline.PlayerID) []timeline.PlayerID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
