package driver

import (
	"github.com/phil-holland/spike-round-sim/internal/round"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// siteLocation is where a player planting or defusing at a site stands
var siteLocation = map[timeline.Site]string{
	timeline.SiteA: "a_site",
	timeline.SiteB: "b_site",
}

// objectives finishes plants and defuses that are due and proposes new ones
func (d *Driver) objectives() {
	spike := d.m.Spike()
	now := d.m.Now()
	timing := d.m.Timing()

	switch spike.Phase {
	case round.SpikePlanting:
		if d.m.PlantElapsed() >= timing.PlantDuration {
			d.try(d.m.CompletePlant(spike.Holder, now))
		}
	case round.SpikeDefusing:
		if d.m.DefuseRemaining() == 0 {
			d.try(d.m.CompleteDefuse(spike.Defuser, now))
		}
	case round.SpikeDropped:
		if d.chance(d.cfg.PickupRate) {
			if id, ok := d.pick(d.m.Alive(timeline.SideAttacker)); ok {
				d.try(d.m.PickupSpike(id, now))
			}
		}
	case round.SpikeCarried:
		d.proposePlant(spike, now)
	case round.SpikePlanted:
		d.proposeDefuse(now)
	}
}

// proposePlant starts a plant with a probability that grows with elapsed
// round time and the attackers' numeric advantage. Otherwise the carrier
// occasionally drops the spike for a teammate.
func (d *Driver) proposePlant(spike round.Spike, now int64) {
	timing := d.m.Timing()
	elapsed := float64(now) / float64(timing.RoundDuration)
	p := (d.cfg.PlantBaseRate + d.cfg.PlantTimeWeight*elapsed) * d.advantage()
	if d.chance(p) {
		site := timeline.SiteA
		if d.src.IntN(2) == 1 {
			site = timeline.SiteB
		}
		d.try(d.m.StartPlant(spike.Holder, site, now))
		return
	}
	if len(d.m.Alive(timeline.SideAttacker)) > 1 && d.chance(d.cfg.DropRate) {
		d.try(d.m.DropSpike(spike.Holder, locations[d.src.IntN(len(locations))], now))
	}
}

// proposeDefuse starts a defuse with a probability that grows as the
// post-plant clock runs down. With no attackers left the defuse is certain.
func (d *Driver) proposeDefuse(now int64) {
	defenders := d.m.Alive(timeline.SideDefender)
	if len(defenders) == 0 {
		return
	}
	p := 1.0
	if len(d.m.Alive(timeline.SideAttacker)) > 0 {
		post := float64(d.m.Timing().PostPlantDuration)
		urgency := 1 - float64(d.m.TimeRemaining())/post
		p = d.cfg.DefuseBaseRate + (1-d.cfg.DefuseBaseRate)*urgency*urgency
	}
	if d.chance(p) {
		id, _ := d.pick(defenders)
		d.try(d.m.StartDefuse(id, now))
	}
}

// advantage returns the attackers' alive ratio, bounded to [0.5, 2]
func (d *Driver) advantage() float64 {
	att := len(d.m.Alive(timeline.SideAttacker))
	def := len(d.m.Alive(timeline.SideDefender))
	if def == 0 {
		return 2
	}
	return min(max(float64(att)/float64(def), 0.5), 2)
}

// standDown stops a plant or defuse the player is running so they can fight
func (d *Driver) standDown(id timeline.PlayerID) {
	spike := d.m.Spike()
	timing := d.m.Timing()
	now := d.m.Now()
	switch {
	case spike.Phase == round.SpikePlanting && spike.Holder == id:
		progress := float64(d.m.PlantElapsed()) / float64(max(timing.PlantDuration, 1))
		d.try(d.m.InterruptPlant(id, timeline.ReasonMoved, min(progress, 1), now))
	case spike.Phase == round.SpikeDefusing && spike.Defuser == id:
		done := timing.DefuseDuration - d.m.DefuseRemaining()
		progress := float64(done) / float64(max(timing.DefuseDuration, 1))
		d.try(d.m.InterruptDefuse(id, timeline.ReasonMoved, min(max(progress, 0), 1), now))
	}
}
