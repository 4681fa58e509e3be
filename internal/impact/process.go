package impact

import (
	"errors"
	"sort"

	"github.com/phil-holland/spike-round-sim/internal/armory"
	"github.com/phil-holland/spike-round-sim/internal/round"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// ErrNoRoundEnd is returned when a timeline never records a round end, so
// there is no winner to label its states with
var ErrNoRoundEnd = errors.New("timeline has no round end")

// tradeDamageWindow is how long after damaging a player an attacker counts
// as traded when that player's teammates hit them back, in milliseconds
const tradeDamageWindow int64 = 2000

type replayed struct {
	side   timeline.Side
	health int
	value  int
	alive  bool
}

type flash struct {
	by timeline.PlayerID
	at int64
}

type replay struct {
	catalog   armory.Catalog
	players   map[timeline.PlayerID]*replayed
	order     []timeline.PlayerID
	plantedAt int64
	defused   bool

	// map from player id -> the last flash that blinded them
	lastFlashed map[timeline.PlayerID]flash

	// map from player1 id -> (map of player2 ids to the last time player 1
	// damaged player 2)
	lastDamage map[timeline.PlayerID]map[timeline.PlayerID]int64
}

// States replays a round timeline into the game states the outcome model
// reads: one for the round start and one straight after every event
func States(events []timeline.Event, initial []round.PlayerState, catalog armory.Catalog) ([]State, error) {
	end, ok := timeline.FindRoundEnd(events)
	if !ok {
		return nil, ErrNoRoundEnd
	}
	var winner uint
	if end.Winner == timeline.SideAttacker {
		winner = 1
	}

	r := &replay{
		catalog:     catalog,
		players:     make(map[timeline.PlayerID]*replayed, len(initial)),
		plantedAt:   -1,
		lastFlashed: make(map[timeline.PlayerID]flash),
		lastDamage:  make(map[timeline.PlayerID]map[timeline.PlayerID]int64),
	}
	for _, p := range initial {
		r.players[p.ID] = &replayed{
			side:   p.Side,
			health: p.Health,
			value:  r.equipmentValue(p),
			alive:  p.Alive,
		}
		r.order = append(r.order, p.ID)
	}

	states := make([]State, 0, len(events)+1)
	states = append(states, State{
		EventID:     -1,
		Type:        StateRoundStart,
		GameState:   r.gameState(0),
		Tags:        []Tag{},
		RoundWinner: winner,
	})
	for _, e := range events {
		h := e.Head()
		tags := r.apply(e)
		states = append(states, State{
			EventID:     h.ID,
			Timestamp:   h.Timestamp,
			Type:        string(e.Kind()),
			GameState:   r.gameState(h.Timestamp),
			Tags:        tags,
			RoundWinner: winner,
		})
	}
	return states, nil
}

func (r *replay) equipmentValue(p round.PlayerState) int {
	value := p.ShieldType.Cost()
	for _, id := range []string{p.Primary, p.Secondary} {
		if id == "" {
			continue
		}
		if w, err := r.catalog.Weapons.Lookup(id); err == nil {
			value += w.Cost
		}
	}
	return value
}

// apply updates the replayed state with a single event and returns the tags
// crediting players for the change it causes
func (r *replay) apply(e timeline.Event) []Tag {
	switch ev := e.(type) {
	case timeline.Damage:
		return r.damage(ev)
	case timeline.Heal:
		if p, ok := r.players[ev.Target]; ok {
			p.health = ev.HealthAfter
		}
	case timeline.Kill:
		r.die(ev.Victim)
	case timeline.AbilityUse:
		if ab, ok := r.catalog.Agents.FindAbility(ev.Ability); ok && ab.Effect == armory.EffectFlash {
			for _, t := range ev.Targets {
				r.lastFlashed[t] = flash{by: ev.Player, at: ev.Timestamp}
			}
		}
	case timeline.PlantComplete:
		r.plantedAt = ev.Timestamp
	case timeline.DefuseComplete:
		r.defused = true
		tags := []Tag{}
		for _, id := range r.order {
			p := r.players[id]
			if !p.alive {
				continue
			}
			action := ActionDefusedOn
			if p.side == timeline.SideDefender {
				action = ActionDefuse
			}
			tags = append(tags, Tag{Action: action, Player: id})
		}
		return tags
	case timeline.SpikeDetonation:
		for _, id := range ev.Killed {
			r.die(id)
		}
	}
	return r.aliveTags()
}

func (r *replay) damage(ev timeline.Damage) []Tag {
	tags := []Tag{}

	// player damaging
	if ev.Attacker != "" {
		tags = append(tags, Tag{Action: ActionDamage, Player: ev.Attacker})
	}

	if f, ok := r.lastFlashed[ev.Victim]; ok && ev.Timestamp-f.at <= flashWindow {
		tags = append(tags, Tag{Action: ActionFlashAssist, Player: f.by})
	}

	// register any valid trade damage
	var traded []timeline.PlayerID
	for id, t := range r.lastDamage[ev.Victim] {
		// don't tag trade damage from the same person who's attacking
		if id == ev.Attacker {
			continue
		}
		if ev.Timestamp-t <= tradeDamageWindow {
			traded = append(traded, id)
		}
	}
	sort.Slice(traded, func(i, j int) bool { return traded[i] < traded[j] })
	for _, id := range traded {
		tags = append(tags, Tag{Action: ActionTradeDamage, Player: id})
	}

	tags = append(tags, Tag{Action: ActionHurt, Player: ev.Victim})

	// only register players on opposing teams
	attacker, aok := r.players[ev.Attacker]
	victim, vok := r.players[ev.Victim]
	if aok && vok && attacker.side != victim.side {
		if _, ok := r.lastDamage[ev.Attacker]; !ok {
			r.lastDamage[ev.Attacker] = make(map[timeline.PlayerID]int64)
		}
		r.lastDamage[ev.Attacker][ev.Victim] = ev.Timestamp
	}

	if vok {
		victim.health = ev.HealthAfter
		if victim.health <= 0 {
			victim.alive = false
		}
	}
	return tags
}

func (r *replay) die(id timeline.PlayerID) {
	if p, ok := r.players[id]; ok {
		p.alive = false
		p.health = 0
	}
}

func (r *replay) aliveTags() []Tag {
	tags := []Tag{}
	for _, id := range r.order {
		if r.players[id].alive {
			tags = append(tags, Tag{Action: ActionAlive, Player: id})
		}
	}
	return tags
}

func (r *replay) gameState(ts int64) GameState {
	var state GameState

	var healthAtk, healthDef, valueAtk, valueDef int
	for _, id := range r.order {
		p := r.players[id]
		if !p.alive {
			continue
		}
		if p.side == timeline.SideAttacker {
			state.AliveAttackers++
			healthAtk += p.health
			valueAtk += p.value
		} else {
			state.AliveDefenders++
			healthDef += p.health
			valueDef += p.value
		}
	}
	if state.AliveAttackers > 0 {
		state.MeanHealthAttackers = float64(healthAtk) / float64(state.AliveAttackers)
		state.MeanValueAttackers = float64(valueAtk) / float64(state.AliveAttackers)
	}
	if state.AliveDefenders > 0 {
		state.MeanHealthDefenders = float64(healthDef) / float64(state.AliveDefenders)
		state.MeanValueDefenders = float64(valueDef) / float64(state.AliveDefenders)
	}

	if r.plantedAt >= 0 {
		// spike has been planted
		state.RoundTime = float64(ts-r.plantedAt) / 1000
		state.SpikePlanted = true
		state.SpikeDefused = r.defused
	} else {
		state.RoundTime = float64(ts) / 1000
	}
	return state
}
