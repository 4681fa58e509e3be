// Package validate audits a finished round timeline. It replays the events
// from the declared starting state and reports every rule the sequence
// breaks. It never modifies the timeline and is safe for concurrent use.
package validate

import (
	"fmt"

	"github.com/phil-holland/spike-round-sim/internal/armory"
	"github.com/phil-holland/spike-round-sim/internal/config"
	"github.com/phil-holland/spike-round-sim/internal/round"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// Rule names a timeline integrity check
type Rule string

const (
	RuleDeadActor        Rule = "dead_actor"
	RuleSpikeTransitions Rule = "spike_transitions"
	RuleDefuseTiming     Rule = "defuse_timing"
	RuleChronology       Rule = "chronology"
	RuleTradeWindow      Rule = "trade_window"
	RuleHealthShield     Rule = "health_shield"
	RuleRoundEnd         Rule = "round_end"
	RuleDamageRange      Rule = "damage_range"
	RuleUnknownPlayer    Rule = "unknown_player"
)

// Severity separates findings that make a timeline untrustworthy from those
// that only look suspicious
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is a single rule violation. EventID and Timestamp are zero for
// findings about the timeline as a whole.
type Finding struct {
	EventID   int      `json:"eventId"`
	Timestamp int64    `json:"timestamp"`
	Rule      Rule     `json:"rule"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] event %d @%dms %s: %s", f.Severity, f.EventID, f.Timestamp, f.Rule, f.Message)
}

// Result holds every finding of a validation run
type Result struct {
	Errors   []Finding `json:"errors"`
	Warnings []Finding `json:"warnings"`
}

// Valid returns true if the timeline produced no hard errors
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Has returns true if any finding, error or warning, names the rule
func (r Result) Has(rule Rule) bool {
	for _, f := range r.Errors {
		if f.Rule == rule {
			return true
		}
	}
	for _, f := range r.Warnings {
		if f.Rule == rule {
			return true
		}
	}
	return false
}

// Config holds what the validator needs to know about the round rules
type Config struct {
	Timing config.Timing
	// DamageTolerance is the fraction raw weapon damage may stray from the
	// band table before a warning is raised
	DamageTolerance float64
	// DefuseWarnFraction is the share of the post-plant clock at its end in
	// which a completed defuse is flagged as cutting it close
	DefuseWarnFraction float64
	Weapons            armory.Weapons
}

// NewConfig builds a validator configuration from the shared round config
func NewConfig(cfg config.Config, weapons armory.Weapons) Config {
	return Config{
		Timing:             cfg.Timing,
		DamageTolerance:    cfg.Validation.DamageTolerance,
		DefuseWarnFraction: cfg.Validation.DefuseWarnFraction,
		Weapons:            weapons,
	}
}

// vitals is the replayed health and shield of one player
type vitals struct {
	side      timeline.Side
	alive     bool
	health    int
	maxHealth int
	shield    int
	maxShield int
	reserve   int
}

// auditor carries the replay state of a single validation run
type auditor struct {
	cfg     Config
	players map[timeline.PlayerID]*vitals
	order   []timeline.PlayerID
	spike   round.SpikePhase
	// plantedAt is the timestamp of the plant complete event, -1 before it
	plantedAt int64
	lastSeen  int64
	kills     map[int]timeline.Kill
	ends      int
	result    Result
}

// Timeline validates a finished event sequence against the starting player
// states it was produced from
func Timeline(events []timeline.Event, initial []round.PlayerState, cfg Config) Result {
	a := &auditor{
		cfg:       cfg,
		players:   make(map[timeline.PlayerID]*vitals, len(initial)),
		plantedAt: -1,
		kills:     make(map[int]timeline.Kill),
	}
	for _, p := range initial {
		a.players[p.ID] = &vitals{
			side:      p.Side,
			alive:     p.Alive,
			health:    p.Health,
			maxHealth: p.MaxHealth,
			shield:    p.Shield,
			maxShield: p.MaxShield,
			reserve:   p.ShieldReserve,
		}
		a.order = append(a.order, p.ID)
	}
	if spike, err := round.InitialSpike(initial); err == nil {
		a.spike = spike.Phase
	} else {
		a.spike = round.SpikeDropped
		a.errorf(nil, RuleSpikeTransitions, "starting state: %v", err)
	}

	for _, e := range events {
		if a.ends > 0 {
			a.errorf(e, RuleRoundEnd, "%s recorded after the round ended", e.Kind())
		}
		a.checkPlayers(e)
		a.checkDeadActors(e)
		a.checkChronology(e)
		a.checkSpike(e)
		a.apply(e)
	}
	if a.ends != 1 {
		a.errorf(nil, RuleRoundEnd, "timeline has %d round end events, expected exactly 1", a.ends)
	}
	return a.result
}

func (a *auditor) errorf(e timeline.Event, rule Rule, format string, args ...any) {
	a.result.Errors = append(a.result.Errors, finding(e, rule, SeverityError, fmt.Sprintf(format, args...)))
}

func (a *auditor) warnf(e timeline.Event, rule Rule, format string, args ...any) {
	a.result.Warnings = append(a.result.Warnings, finding(e, rule, SeverityWarning, fmt.Sprintf(format, args...)))
}

func finding(e timeline.Event, rule Rule, severity Severity, msg string) Finding {
	f := Finding{Rule: rule, Severity: severity, Message: msg}
	if e != nil {
		f.EventID = e.Head().ID
		f.Timestamp = e.Head().Timestamp
	}
	return f
}

// references returns every player ID an event mentions, participant or not
func references(e timeline.Event) []timeline.PlayerID {
	ids := timeline.Participants(e)
	switch ev := e.(type) {
	case timeline.Kill:
		ids = append(ids, ev.Assisters...)
	case timeline.AbilityUse:
		ids = append(ids, ev.Targets...)
	case timeline.SpikeDetonation:
		ids = append(ids, ev.Killed...)
	case timeline.RoundEnd:
		ids = append(ids, ev.Survivors()...)
	}
	return ids
}

func (a *auditor) checkPlayers(e timeline.Event) {
	for _, id := range references(e) {
		if _, ok := a.players[id]; !ok {
			a.errorf(e, RuleUnknownPlayer, "%s names %q, who is not in the round", e.Kind(), id)
		}
	}
}

func (a *auditor) checkDeadActors(e timeline.Event) {
	for _, id := range timeline.Participants(e) {
		if p, ok := a.players[id]; ok && !p.alive {
			a.errorf(e, RuleDeadActor, "%s involves dead player %s", e.Kind(), id)
		}
	}
	if det, ok := e.(timeline.SpikeDetonation); ok {
		for _, id := range det.Killed {
			if p, ok := a.players[id]; ok && !p.alive {
				a.errorf(e, RuleDeadActor, "detonation kills %s, who is already dead", id)
			}
		}
	}
}

// checkChronology requires non-decreasing timestamps. A trade kill may be
// stamped before the last seen time if its victim made the avenged kill on one
// of its killer's teammates; stamping it outside the trade window after that
// kill is only a warning.
func (a *auditor) checkChronology(e timeline.Event) {
	ts := e.Head().Timestamp
	if ts >= a.lastSeen {
		a.lastSeen = ts
		return
	}
	k, ok := e.(timeline.Kill)
	if !ok || k.TradeOf == 0 {
		a.errorf(e, RuleChronology, "timestamp %d precedes %d", ts, a.lastSeen)
		return
	}
	avenged, ok := a.kills[k.TradeOf]
	if !ok || !a.avenges(k, avenged) {
		a.errorf(e, RuleChronology, "timestamp %d precedes %d and kill %d is not a trade of kill %d",
			ts, a.lastSeen, k.ID, k.TradeOf)
		return
	}
	switch {
	case ts < avenged.Timestamp:
		a.warnf(e, RuleTradeWindow, "trade at %d precedes the kill it avenges at %d", ts, avenged.Timestamp)
	case ts-avenged.Timestamp > a.cfg.Timing.TradeWindow:
		a.warnf(e, RuleTradeWindow, "trade at %d is %dms after the avenged kill, window is %dms",
			ts, ts-avenged.Timestamp, a.cfg.Timing.TradeWindow)
	}
}

// avenges reports whether k kills the player who made the avenged kill, on
// behalf of a teammate of that kill's victim
func (a *auditor) avenges(k, avenged timeline.Kill) bool {
	if avenged.Killer != k.Victim {
		return false
	}
	killer, ok := a.players[k.Killer]
	if !ok {
		return false
	}
	victim, ok := a.players[avenged.Victim]
	return ok && killer.side == victim.side
}

func (a *auditor) checkSpike(e timeline.Event) {
	if !round.IsSpikeEvent(e.Kind()) {
		return
	}
	to, ok := round.Transition(a.spike, e.Kind())
	if !ok {
		a.errorf(e, RuleSpikeTransitions, "%s is not a legal move from %s", e.Kind(), a.spike)
		return
	}
	a.spike = to
}

// apply folds an event into the replay state, checking the values it implies
func (a *auditor) apply(e timeline.Event) {
	switch ev := e.(type) {
	case timeline.Damage:
		a.checkDamageRange(ev)
		a.applyDamage(ev)
	case timeline.Heal:
		a.applyHeal(ev)
	case timeline.Kill:
		a.kills[ev.ID] = ev
		a.kill(ev.Victim)
	case timeline.PlantComplete:
		a.plantedAt = ev.Timestamp
	case timeline.DefuseComplete:
		a.checkDefuseTiming(ev)
	case timeline.SpikeDetonation:
		for _, id := range ev.Killed {
			a.kill(id)
		}
	case timeline.RoundEnd:
		a.ends++
		a.checkSurvivors(ev)
	}
}

func (a *auditor) kill(id timeline.PlayerID) {
	if p, ok := a.players[id]; ok {
		p.alive = false
		p.health = 0
		p.shield = 0
	}
}

func (a *auditor) applyDamage(ev timeline.Damage) {
	p, ok := a.players[ev.Victim]
	if !ok {
		return
	}
	switch {
	case ev.ShieldDamage < 0 || ev.HealthDamage < 0:
		a.errorf(ev, RuleHealthShield, "negative damage %d/%d", ev.ShieldDamage, ev.HealthDamage)
	case ev.ShieldAfter < 0 || ev.HealthAfter < 0:
		a.errorf(ev, RuleHealthShield, "%s left on negative shield/health %d/%d", ev.Victim, ev.ShieldAfter, ev.HealthAfter)
	case ev.ShieldBefore-ev.ShieldDamage != ev.ShieldAfter || ev.HealthBefore-ev.HealthDamage != ev.HealthAfter:
		a.errorf(ev, RuleHealthShield, "shield %d-%d=%d and health %d-%d=%d do not add up",
			ev.ShieldBefore, ev.ShieldDamage, ev.ShieldAfter, ev.HealthBefore, ev.HealthDamage, ev.HealthAfter)
	case ev.ShieldDamage+ev.HealthDamage != min(ev.Raw, ev.ShieldBefore+ev.HealthBefore):
		a.errorf(ev, RuleHealthShield, "applied %d damage from %d raw on %d shield and health",
			ev.ShieldDamage+ev.HealthDamage, ev.Raw, ev.ShieldBefore+ev.HealthBefore)
	case ev.HealthBefore != p.health:
		a.errorf(ev, RuleHealthShield, "%s health before is %d, replay has %d", ev.Victim, ev.HealthBefore, p.health)
	case ev.ShieldBefore > p.maxShield || ev.ShieldBefore > p.shield+p.reserve:
		a.errorf(ev, RuleHealthShield, "%s shield before is %d, replay allows at most %d",
			ev.Victim, ev.ShieldBefore, min(p.maxShield, p.shield+p.reserve))
	}

	if ev.ShieldBefore > p.shield {
		p.reserve = max(p.reserve-(ev.ShieldBefore-p.shield), 0)
	}
	p.shield = ev.ShieldAfter
	p.health = ev.HealthAfter
}

func (a *auditor) applyHeal(ev timeline.Heal) {
	p, ok := a.players[ev.Target]
	if !ok {
		return
	}
	switch {
	case ev.Amount < 0:
		a.errorf(ev, RuleHealthShield, "negative heal %d", ev.Amount)
	case ev.HealthAfter > p.maxHealth:
		a.errorf(ev, RuleHealthShield, "%s healed to %d above max %d", ev.Target, ev.HealthAfter, p.maxHealth)
	case p.health+ev.Amount != ev.HealthAfter:
		a.errorf(ev, RuleHealthShield, "heal %d+%d=%d does not add up", p.health, ev.Amount, ev.HealthAfter)
	}
	p.health = ev.HealthAfter
}

// checkDamageRange compares raw weapon damage with the band table. Ability
// damage has no band table and is not checked.
func (a *auditor) checkDamageRange(ev timeline.Damage) {
	if ev.Weapon == "" || a.cfg.Weapons == nil {
		return
	}
	w, err := a.cfg.Weapons.Lookup(ev.Weapon)
	if err != nil {
		a.warnf(ev, RuleDamageRange, "%v", err)
		return
	}
	expected := w.Expected(ev.Distance, ev.Hits)
	if diff := abs(ev.Raw - expected); float64(diff) > a.cfg.DamageTolerance*float64(expected) {
		a.warnf(ev, RuleDamageRange, "%s dealt %d raw at %.1f, table says %d", ev.Weapon, ev.Raw, ev.Distance, expected)
	}
}

func (a *auditor) checkDefuseTiming(ev timeline.DefuseComplete) {
	if a.plantedAt < 0 {
		// already reported as an illegal spike transition
		return
	}
	elapsed := ev.Timestamp - a.plantedAt
	limit := a.cfg.Timing.PostPlantDuration
	switch {
	case elapsed > limit:
		a.errorf(ev, RuleDefuseTiming, "defused %dms after plant, post-plant clock is %dms", elapsed, limit)
	case float64(limit-elapsed) <= a.cfg.DefuseWarnFraction*float64(limit):
		a.warnf(ev, RuleDefuseTiming, "defused with %dms of %dms left", limit-elapsed, limit)
	}
}

// checkSurvivors compares the survivor lists with the replayed life states
func (a *auditor) checkSurvivors(ev timeline.RoundEnd) {
	listed := make(map[timeline.PlayerID]bool)
	for _, id := range ev.Survivors() {
		listed[id] = true
		if p, ok := a.players[id]; ok && !p.alive {
			a.errorf(ev, RuleRoundEnd, "dead player %s listed as a survivor", id)
		}
	}
	for _, id := range a.order {
		if a.players[id].alive && !listed[id] {
			a.errorf(ev, RuleRoundEnd, "living player %s missing from the survivors", id)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
