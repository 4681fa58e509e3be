package round

import (
	"fmt"
	"testing"

	"github.com/phil-holland/spike-round-sim/internal/config"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

func testTiming() config.Timing {
	return config.Default().Timing
}

// fiveVsFive builds attackers a1..a5 and defenders d1..d5 on heavy shields,
// with a1 carrying the spike
func fiveVsFive() []PlayerState {
	var out []PlayerState
	for i := 1; i <= 5; i++ {
		a := NewPlayer(timeline.PlayerID(fmt.Sprintf("a%d", i)), timeline.SideAttacker, "jett", ShieldHeavy)
		a.Secondary = "classic"
		a.Primary = "vandal"
		a.HasSpike = i == 1
		out = append(out, a)
	}
	for i := 1; i <= 5; i++ {
		d := NewPlayer(timeline.PlayerID(fmt.Sprintf("d%d", i)), timeline.SideDefender, "sage", ShieldHeavy)
		d.Secondary = "classic"
		d.Primary = "phantom"
		out = append(out, d)
	}
	return out
}

func newMachine(t *testing.T, players []PlayerState) *Machine {
	t.Helper()
	m, err := New(testTiming(), players)
	if err != nil {
		t.Fatalf("new round: %v", err)
	}
	return m
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

func mustReject(t *testing.T, err error, rule Rule) {
	t.Helper()
	r, ok := AsRejected(err)
	if !ok {
		t.Fatalf("Got err = %v, expected a rejection with rule %s", err, rule)
	}
	if !r.Has(rule) {
		t.Errorf("Got rejection %v, expected rule %s", r, rule)
	}
}

func kill(m *Machine, killer, victim timeline.PlayerID, ts int64) error {
	return m.KillPlayer(KillInput{Killer: killer, Victim: victim, Weapon: "vandal", Location: "mid", Timestamp: ts})
}

func plant(t *testing.T, m *Machine, player timeline.PlayerID, site timeline.Site, completeAt int64) {
	t.Helper()
	mustOK(t, m.StartPlant(player, site, completeAt-m.Timing().PlantDuration))
	mustOK(t, m.CompletePlant(player, completeAt))
}

func kinds(events []timeline.Event) []timeline.Kind {
	out := make([]timeline.Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind()
	}
	return out
}
