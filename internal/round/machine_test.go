package round

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

func TestNewRosterErrors(t *testing.T) {
	dup := fiveVsFive()
	dup[1].ID = dup[0].ID

	oneSide := fiveVsFive()[:5]

	twoHolders := fiveVsFive()
	twoHolders[1].HasSpike = true

	defenderHolder := fiveVsFive()
	defenderHolder[0].HasSpike = false
	defenderHolder[5].HasSpike = true

	dead := fiveVsFive()
	dead[3].Alive = false

	tests := []struct {
		name    string
		players []PlayerState
		err     error
	}{
		{"duplicate", dup, ErrDuplicatePlayer},
		{"one side", oneSide, ErrMissingSide},
		{"two holders", twoHolders, ErrSpikeHolder},
		{"defender holder", defenderHolder, ErrSpikeHolder},
		{"dead", dead, ErrInvalidPlayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(testTiming(), tt.players)
			if !errors.Is(err, tt.err) {
				t.Errorf("Got err = %v, expected %v", err, tt.err)
			}
		})
	}
}

func TestNewWithoutHolderDropsSpikeInSpawn(t *testing.T) {
	players := fiveVsFive()
	players[0].HasSpike = false
	m := newMachine(t, players)
	if s := m.Spike(); s.Phase != SpikeDropped || s.Location != SpawnLocation {
		t.Errorf("Got spike %+v, expected dropped at %s", s, SpawnLocation)
	}
	mustOK(t, m.PickupSpike("a3", 1000))
	if p, _ := m.Player("a3"); !p.HasSpike {
		t.Error("expected a3 to hold the spike after pickup")
	}
}

func TestDamageShieldAbsorbsFirst(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, m.ApplyDamage(DamageInput{
		Attacker: "a1", Victim: "d1", Weapon: "vandal", Distance: 10,
		Hits: []timeline.Hit{{Location: timeline.HitBody}, {Location: timeline.HitBody}}, Raw: 80, Timestamp: 1000,
	}))

	d, _ := m.Player("d1")
	if d.Shield != 0 || d.Health != 70 {
		t.Errorf("Got shield/health %d/%d, expected 0/70", d.Shield, d.Health)
	}
	e := m.Timeline()[0].(timeline.Damage)
	if e.ShieldDamage != 50 || e.HealthDamage != 30 {
		t.Errorf("Got shield/health damage %d/%d, expected 50/30", e.ShieldDamage, e.HealthDamage)
	}
	if e.ShieldAfter != d.Shield || e.HealthAfter != d.Health {
		t.Errorf("event after values %d/%d do not match live state %d/%d", e.ShieldAfter, e.HealthAfter, d.Shield, d.Health)
	}
	a, _ := m.Player("a1")
	if a.DamageDealt != 80 || d.DamageTaken != 80 {
		t.Errorf("Got dealt/taken %d/%d, expected 80/80", a.DamageDealt, d.DamageTaken)
	}
}

func TestDamageClampsAtZero(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, m.ApplyDamage(DamageInput{
		Attacker: "a1", Victim: "d1", Weapon: "operator",
		Hits: []timeline.Hit{{Location: timeline.HitHead}}, Raw: 255, Timestamp: 1000,
	}))
	d, _ := m.Player("d1")
	if d.Shield != 0 || d.Health != 0 {
		t.Errorf("Got shield/health %d/%d, expected 0/0", d.Shield, d.Health)
	}
	if !d.Alive {
		t.Error("damage alone should not kill")
	}
	e := m.Timeline()[0].(timeline.Damage)
	if e.ShieldDamage+e.HealthDamage != 150 {
		t.Errorf("Got applied damage %d, expected 150", e.ShieldDamage+e.HealthDamage)
	}
}

func TestRegenShieldRefills(t *testing.T) {
	players := fiveVsFive()
	s, reserve := ShieldRegen.Capacity()
	players[5].ShieldType, players[5].Shield, players[5].MaxShield, players[5].ShieldReserve = ShieldRegen, s, s, reserve
	m := newMachine(t, players)

	hit := func(ts int64) {
		mustOK(t, m.ApplyDamage(DamageInput{
			Attacker: "a1", Victim: "d1", Weapon: "classic",
			Hits: []timeline.Hit{{Location: timeline.HitLeg}}, Raw: 20, Timestamp: ts,
		}))
	}
	hit(1000)
	hit(2000) // inside the regen delay
	d, _ := m.Player("d1")
	if d.Shield != 0 || d.Health != 85 {
		t.Fatalf("Got shield/health %d/%d, expected 0/85", d.Shield, d.Health)
	}

	hit(2000 + m.Timing().ShieldRegenDelay)
	d, _ = m.Player("d1")
	if d.Shield != 5 || d.ShieldReserve != 25 || d.Health != 85 {
		t.Errorf("Got shield/reserve/health %d/%d/%d, expected 5/25/85", d.Shield, d.ShieldReserve, d.Health)
	}
	last := m.Timeline()[2].(timeline.Damage)
	if last.ShieldBefore != 25 {
		t.Errorf("Got ShieldBefore = %d, expected the refilled 25", last.ShieldBefore)
	}
}

func TestRejectionsListEveryRule(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, kill(m, "a1", "d1", 5000))

	err := m.ApplyDamage(DamageInput{Attacker: "d1", Victim: "a2", Weapon: "phantom", Raw: 30, Timestamp: 100})
	r, ok := AsRejected(err)
	if !ok {
		t.Fatalf("expected rejection, got %v", err)
	}
	for _, rule := range []Rule{RuleActorAlive, RuleChronology, RuleInvalidInput} {
		if !r.Has(rule) {
			t.Errorf("Got %v, expected rule %s to be listed", r, rule)
		}
	}
	if m.Now() != 5000 || len(m.Timeline()) != 1 {
		t.Errorf("rejected call changed state: now %d, %d events", m.Now(), len(m.Timeline()))
	}
}

func TestDeadPlayersAreInert(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, kill(m, "d1", "a2", 1000))

	mustReject(t, kill(m, "a2", "d1", 2000), RuleActorAlive)
	mustReject(t, kill(m, "d2", "a2", 2000), RuleTargetAlive)
	mustReject(t, m.ApplyHeal(HealInput{Healer: "a3", Target: "a2", Ability: "regrowth", Amount: 30, Timestamp: 2000}), RuleTargetAlive)
	mustReject(t, m.RecordAbilityUse(AbilityInput{Player: "a2", Ability: "updraft", Slot: timeline.SlotAbility1, Timestamp: 2000}), RuleActorAlive)
	mustReject(t, m.PickupSpike("a2", 2000), RuleActorAlive)
}

func TestUnknownPlayer(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustReject(t, kill(m, "x9", "d1", 1000), RuleUnknownPlayer)
}

func TestTeamDamageRejected(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	err := m.ApplyDamage(DamageInput{Attacker: "a1", Victim: "a2", Weapon: "vandal",
		Hits: []timeline.Hit{{Location: timeline.HitBody}}, Raw: 40, Timestamp: 10})
	mustReject(t, err, RuleSide)
}

func TestKillCarrierDropsSpike(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, kill(m, "d1", "a1", 3000))

	got := kinds(m.Timeline())
	want := []timeline.Kind{timeline.KindSpikeDrop, timeline.KindKill}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Got kinds %v, expected %v", got, want)
	}
	drop := m.Timeline()[0].(timeline.SpikeDrop)
	if drop.Player != "a1" || drop.Location != "mid" || drop.Reason != timeline.DropKilled {
		t.Errorf("Got drop %+v, expected a1 killed at mid", drop)
	}
	if s := m.Spike(); s.Phase != SpikeDropped || s.Location != "mid" {
		t.Errorf("Got spike %+v, expected dropped at mid", s)
	}
	mustOK(t, m.PickupSpike("a2", 4000))
	pickup := m.Timeline()[2].(timeline.SpikePickup)
	if pickup.Location != "mid" {
		t.Errorf("Got pickup location %q, expected mid", pickup.Location)
	}
}

func TestKillPlanterInterruptsThenDrops(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, m.StartPlant("a1", timeline.SiteB, 20000))
	mustOK(t, kill(m, "d1", "a1", 22000))

	got := kinds(m.Timeline())
	want := []timeline.Kind{timeline.KindPlantStart, timeline.KindPlantInterrupt, timeline.KindSpikeDrop, timeline.KindKill}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Got kinds %v, expected %v", got, want)
	}
	in := m.Timeline()[1].(timeline.PlantInterrupt)
	if in.Reason != timeline.ReasonKilled || in.Progress != 0.5 || in.Site != timeline.SiteB {
		t.Errorf("Got interrupt %+v, expected killed at 0.5 on B", in)
	}
}

func TestPlantRules(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustReject(t, m.StartPlant("a2", timeline.SiteA, 1000), RuleSpikeHolder)
	mustReject(t, m.StartPlant("a1", "C", 1000), RuleInvalidInput)
	mustReject(t, m.CompletePlant("a1", 1000), RuleSpikeState)

	mustOK(t, m.StartPlant("a1", timeline.SiteA, 1000))
	mustReject(t, m.CompletePlant("a1", 4999), RuleDuration)
	mustOK(t, m.InterruptPlant("a1", timeline.ReasonMoved, 0.25, 2000))
	if s := m.Spike(); s.Phase != SpikeCarried || s.Holder != "a1" {
		t.Errorf("Got spike %+v, expected carried by a1", s)
	}

	mustOK(t, m.StartPlant("a1", timeline.SiteA, 3000))
	mustOK(t, m.CompletePlant("a1", 7000))
	if p, _ := m.Player("a1"); p.HasSpike {
		t.Error("planter still has the spike")
	}
	if m.Deadline() != 7000+m.Timing().PostPlantDuration {
		t.Errorf("Got deadline %d, expected the post-plant clock", m.Deadline())
	}
	mustReject(t, m.StartDefuse("a2", 8000), RuleSide)
}

func TestDefuseCheckpoint(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	plant(t, m, "a1", timeline.SiteA, 10000)

	mustOK(t, m.StartDefuse("d1", 12000))
	mustOK(t, m.InterruptDefuse("d1", timeline.ReasonCancelled, 0.6, 16000))
	if !m.Spike().Checkpoint {
		t.Fatal("expected checkpoint after 4000ms of a 7000ms defuse")
	}
	if m.DefuseRemaining() != 3500 {
		t.Errorf("Got DefuseRemaining() = %d, expected 3500", m.DefuseRemaining())
	}

	mustOK(t, m.StartDefuse("d2", 17000))
	mustReject(t, m.CompleteDefuse("d2", 20000), RuleDuration)
	mustOK(t, m.CompleteDefuse("d2", 20500))

	end, ok := m.End()
	if !ok || end.Winner != timeline.SideDefender || end.Condition != timeline.WinSpikeDefused {
		t.Errorf("Got end %+v, expected defenders by spike_defused", end)
	}
}

func TestShortInterruptLosesCheckpoint(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	plant(t, m, "a1", timeline.SiteA, 10000)
	mustOK(t, m.StartDefuse("d1", 11000))
	mustOK(t, kill(m, "a2", "d1", 13000))

	if m.Spike().Checkpoint {
		t.Error("2000ms of defuse should not earn a checkpoint")
	}
	in := m.Timeline()[3].(timeline.DefuseInterrupt)
	if in.Reason != timeline.ReasonKilled || in.Player != "d1" {
		t.Errorf("Got interrupt %+v, expected d1 killed", in)
	}
}

func TestTimeExpiry(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, m.StartPlant("a1", timeline.SiteA, 98000))
	mustOK(t, m.AdvanceTime(10000))

	end, ok := m.End()
	if !ok || end.Winner != timeline.SideDefender || end.Condition != timeline.WinTimeExpired {
		t.Fatalf("Got end %+v, expected defenders by time_expired", end)
	}
	if end.Timestamp != m.Timing().RoundDuration {
		t.Errorf("Got end timestamp %d, expected %d", end.Timestamp, m.Timing().RoundDuration)
	}
	got := kinds(m.Timeline())
	want := []timeline.Kind{timeline.KindPlantStart, timeline.KindPlantInterrupt, timeline.KindRoundEnd}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Got kinds %v, expected %v", got, want)
	}
	if len(end.AttackersAlive) != 5 || len(end.DefendersAlive) != 5 {
		t.Errorf("Got survivors %v/%v, expected everyone", end.AttackersAlive, end.DefendersAlive)
	}
}

func TestTimestampPastDeadlineRejected(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustReject(t, kill(m, "a1", "d1", m.Timing().RoundDuration), RuleChronology)
}

func TestAllMutatorsRejectAfterEnd(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, m.AdvanceTime(m.TimeRemaining()))
	if !m.Ended() {
		t.Fatal("expected round to end")
	}
	n := len(m.Timeline())

	calls := map[string]error{
		"damage":  m.ApplyDamage(DamageInput{Attacker: "a1", Victim: "d1", Ability: "blade_storm", Raw: 50, Timestamp: 100000}),
		"kill":    kill(m, "a1", "d1", 100000),
		"plant":   m.StartPlant("a1", timeline.SiteA, 100000),
		"defuse":  m.StartDefuse("d1", 100000),
		"pickup":  m.PickupSpike("a1", 100000),
		"drop":    m.DropSpike("a1", "mid", 100000),
		"heal":    m.ApplyHeal(HealInput{Healer: "d1", Target: "d1", Ability: "healing_orb", Amount: 10, Timestamp: 100000}),
		"ability": m.RecordAbilityUse(AbilityInput{Player: "d1", Ability: "barrier_orb", Slot: timeline.SlotAbility2, Timestamp: 100000}),
		"advance": m.AdvanceTime(10),
	}
	for name, err := range calls {
		r, ok := AsRejected(err)
		if !ok || !r.Has(RuleRoundActive) {
			t.Errorf("%s: Got err = %v, expected round_active rejection", name, err)
		}
	}
	if len(m.Timeline()) != n {
		t.Errorf("Got %d events after end, expected %d", len(m.Timeline()), n)
	}
}

func TestHealClampsToMax(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, m.ApplyDamage(DamageInput{Attacker: "a1", Victim: "d1", Weapon: "operator",
		Hits: []timeline.Hit{{Location: timeline.HitBody}}, Raw: 80, Timestamp: 1000}))
	mustOK(t, m.ApplyHeal(HealInput{Healer: "d2", Target: "d1", Ability: "healing_orb", Amount: 60, Timestamp: 2000}))

	h := m.Timeline()[1].(timeline.Heal)
	if h.Amount != 30 || h.HealthAfter != 100 {
		t.Errorf("Got heal %d to %d, expected 30 to 100", h.Amount, h.HealthAfter)
	}
	mustReject(t, m.ApplyHeal(HealInput{Healer: "a1", Target: "d1", Ability: "regrowth", Amount: 10, Timestamp: 3000}), RuleSide)
}

func TestTradeKillMayBeBackdated(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, kill(m, "d1", "a2", 10000))
	mustOK(t, m.RecordAbilityUse(AbilityInput{Player: "a3", Ability: "updraft", Slot: timeline.SlotAbility1, Timestamp: 11000}))

	// a3 avenges a2 with a kill stamped before the ability use
	mustOK(t, kill(m, "a3", "d1", 10500))
	k := m.Kills()[1]
	if k.TradeOf != m.Kills()[0].ID {
		t.Errorf("Got TradeOf = %d, expected %d", k.TradeOf, m.Kills()[0].ID)
	}
	if k.Timestamp != 10500 || m.Now() != 11000 {
		t.Errorf("Got kill at %d with clock %d, expected 10500 and 11000", k.Timestamp, m.Now())
	}

	// a non-trade cannot go back in time
	mustReject(t, kill(m, "a4", "d2", 10800), RuleChronology)
	// nor can a trade stamped before the kill it avenges
	mustOK(t, kill(m, "d3", "a5", 12000))
	mustReject(t, kill(m, "a4", "d3", 11900), RuleChronology)
}

func TestTradeFoundBehindBackdatedKill(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, kill(m, "a1", "d1", 1000))
	mustOK(t, kill(m, "a3", "d2", 3500))
	mustOK(t, kill(m, "d3", "a1", 2000))
	mustOK(t, kill(m, "d4", "a3", 5500))

	kills := m.Kills()
	if kills[2].TradeOf != kills[0].ID {
		t.Errorf("Got backdated kill TradeOf = %d, expected %d", kills[2].TradeOf, kills[0].ID)
	}
	if kills[3].TradeOf != kills[1].ID {
		t.Errorf("Got TradeOf = %d, expected %d", kills[3].TradeOf, kills[1].ID)
	}
}

func TestAdvanceTimeHugeDeltaEndsRound(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustOK(t, m.AdvanceTime(1000))
	mustOK(t, m.AdvanceTime(math.MaxInt64))

	if m.Now() != m.Timing().RoundDuration {
		t.Errorf("Got clock %d, expected %d", m.Now(), m.Timing().RoundDuration)
	}
	end, ok := m.End()
	if !ok || end.Condition != timeline.WinTimeExpired {
		t.Errorf("Got end %+v, expected time_expired", end)
	}
}

func TestManualDrop(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	mustReject(t, m.DropSpike("a2", "mid", 100), RuleSpikeHolder)
	mustOK(t, m.DropSpike("a1", "b_main", 100))
	drop := m.Timeline()[0].(timeline.SpikeDrop)
	if drop.Reason != timeline.DropManual {
		t.Errorf("Got reason %s, expected manual", drop.Reason)
	}
	mustReject(t, m.PickupSpike("d1", 200), RuleSide)
}

func TestAttackersWipedAfterPlantDoesNotEnd(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	plant(t, m, "a1", timeline.SiteA, 10000)
	for i, id := range []timeline.PlayerID{"a1", "a2", "a3", "a4", "a5"} {
		mustOK(t, kill(m, "d1", id, int64(11000+i*100)))
	}
	if m.Ended() {
		t.Fatal("round ended by elimination with the spike planted")
	}
	mustOK(t, m.AdvanceTime(m.TimeRemaining()))
	end, _ := m.End()
	if end.Condition != timeline.WinSpikeDetonated {
		t.Errorf("Got condition %s, expected spike_detonated", end.Condition)
	}
}

func TestDefuseClutchScenario(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	plant(t, m, "a1", timeline.SiteA, 40000)

	mustOK(t, kill(m, "a2", "d1", 41000))
	mustOK(t, kill(m, "d2", "a4", 43000))
	mustOK(t, kill(m, "a3", "d2", 45000))
	mustOK(t, kill(m, "d3", "a5", 48000))
	mustOK(t, kill(m, "a2", "d3", 50000))
	mustOK(t, kill(m, "d4", "a1", 52000))
	mustOK(t, kill(m, "a3", "d4", 55000))

	if got := m.Alive(timeline.SideDefender); !reflect.DeepEqual(got, []timeline.PlayerID{"d5"}) {
		t.Fatalf("Got defenders alive %v, expected [d5]", got)
	}
	mustOK(t, m.StartDefuse("d5", 63000))
	mustOK(t, m.CompleteDefuse("d5", 70000))

	end, ok := m.End()
	if !ok || end.Winner != timeline.SideDefender || end.Condition != timeline.WinSpikeDefused {
		t.Fatalf("Got end %+v, expected defenders by spike_defused", end)
	}
	if !end.Survived("d5") {
		t.Error("expected d5 among survivors")
	}
	if _, ok := m.Timeline()[len(m.Timeline())-1].(timeline.RoundEnd); !ok {
		t.Error("round end is not the last event")
	}
}

func TestDetonationScenario(t *testing.T) {
	m := newMachine(t, fiveVsFive())
	plant(t, m, "a1", timeline.SiteB, 10000)

	mustOK(t, m.AdvanceTime(20000))
	mustOK(t, m.AdvanceTime(19000))
	if m.Ended() {
		t.Fatal("round ended before the post-plant clock ran out")
	}
	mustOK(t, m.StartDefuse("d1", 50000))
	mustOK(t, m.AdvanceTime(6000))

	events := m.Timeline()
	det, ok := events[len(events)-2].(timeline.SpikeDetonation)
	if !ok {
		t.Fatalf("Got kinds %v, expected detonation before round end", kinds(events))
	}
	if det.Timestamp != 55000 || len(det.Killed) != 5 || det.Site != timeline.SiteB {
		t.Errorf("Got detonation %+v, expected 5 killed on B at 55000", det)
	}
	if _, ok := events[len(events)-3].(timeline.DefuseInterrupt); !ok {
		t.Error("expected the running defuse to be interrupted before detonation")
	}

	end, _ := m.End()
	if end.Winner != timeline.SideAttacker || end.Condition != timeline.WinSpikeDetonated || end.Timestamp != 55000 {
		t.Errorf("Got end %+v, expected attackers by spike_detonated at 55000", end)
	}
	if len(m.Alive(timeline.SideDefender)) != 0 {
		t.Error("defenders survived detonation")
	}
	for _, p := range m.Players() {
		if !p.Alive && (p.Health != 0 || p.Shield != 0) {
			t.Errorf("dead %s has health/shield %d/%d", p.ID, p.Health, p.Shield)
		}
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		from SpikePhase
		kind timeline.Kind
		to   SpikePhase
		ok   bool
	}{
		{SpikeCarried, timeline.KindPlantStart, SpikePlanting, true},
		{SpikePlanting, timeline.KindPlantComplete, SpikePlanted, true},
		{SpikePlanted, timeline.KindDefuseStart, SpikeDefusing, true},
		{SpikeDefusing, timeline.KindDefuseInterrupt, SpikePlanted, true},
		{SpikePlanted, timeline.KindSpikeDetonation, SpikeDetonated, true},
		{SpikePlanting, timeline.KindDefuseComplete, "", false},
		{SpikeCarried, timeline.KindPlantComplete, "", false},
		{SpikeDefused, timeline.KindSpikeDetonation, "", false},
		{SpikeDropped, timeline.KindSpikeDrop, "", false},
	}
	for _, tt := range tests {
		to, ok := Transition(tt.from, tt.kind)
		if to != tt.to || ok != tt.ok {
			t.Errorf("Got Transition(%s, %s) = %s, %v, expected %s, %v", tt.from, tt.kind, to, ok, tt.to, tt.ok)
		}
	}
	if IsSpikeEvent(timeline.KindKill) || !IsSpikeEvent(timeline.KindSpikePickup) {
		t.Error("IsSpikeEvent misclassifies kinds")
	}
}
