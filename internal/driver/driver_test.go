package driver

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/phil-holland/spike-round-sim/internal/armory"
	"github.com/phil-holland/spike-round-sim/internal/config"
	"github.com/phil-holland/spike-round-sim/internal/lineup"
	"github.com/phil-holland/spike-round-sim/internal/round"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
	"github.com/phil-holland/spike-round-sim/internal/validate"
)

// fixedSource returns the same values forever
type fixedSource struct {
	f float64
	n int
}

func (s fixedSource) Float64() float64 { return s.f }
func (s fixedSource) IntN(n int) int   { return min(s.n, n-1) }

// fataler is satisfied by both *testing.T and *rapid.T
type fataler interface {
	Fatal(args ...any)
}

type fixture struct {
	cfg     config.Config
	catalog armory.Catalog
	lineup  lineup.Lineup
}

func newFixture(t fataler) fixture {
	catalog := armory.DefaultCatalog()
	l, err := lineup.Standard(catalog)
	if err != nil {
		t.Fatal(err)
	}
	return fixture{cfg: config.Default(), catalog: catalog, lineup: l}
}

func (f fixture) run(t fataler, src Source, opts ...Option) (*round.Machine, Stats) {
	m, err := round.New(f.cfg.Timing, f.lineup.Players)
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]Option{WithSkills(f.lineup.Skills)}, opts...)
	stats := New(m, src, f.catalog, f.cfg.Driver, opts...).Run()
	return m, stats
}

func TestQuietRoundRunsOutTheClock(t *testing.T) {
	f := newFixture(t)
	m, stats := f.run(t, fixedSource{f: 0.999})

	end, ok := m.End()
	if !ok || end.Condition != timeline.WinTimeExpired || end.Winner != timeline.SideDefender {
		t.Fatalf("Got end %+v, expected defenders by time_expired", end)
	}
	if stats.Iterations != 200 || stats.Forced {
		t.Errorf("Got %+v, expected 200 unforced iterations", stats)
	}
	if len(m.Timeline()) != 1 {
		t.Errorf("Got %d events, expected only the round end", len(m.Timeline()))
	}
}

func TestIterationLimitForcesEnd(t *testing.T) {
	f := newFixture(t)
	f.cfg.Driver.MaxIterations = 3

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m, stats := f.run(t, NewSource(7), WithLogger(logger))

	if !m.Ended() || !stats.Forced || stats.Iterations != 3 {
		t.Errorf("Got ended %v stats %+v, expected a forced end after 3 iterations", m.Ended(), stats)
	}
	if !strings.Contains(buf.String(), "iteration limit reached") {
		t.Errorf("Got log %q, expected the forced end to be logged", buf.String())
	}
}

func TestPickIsWeightedBySkill(t *testing.T) {
	d := &Driver{
		src:    fixedSource{f: 0.5},
		skills: map[timeline.PlayerID]float64{"x": 1, "y": 3},
	}
	if id, _ := d.pick([]timeline.PlayerID{"x", "y"}); id != "y" {
		t.Errorf("Got %s, expected y to cover the middle of the range", id)
	}
	d.src = fixedSource{f: 0.2}
	if id, _ := d.pick([]timeline.PlayerID{"x", "y"}); id != "x" {
		t.Errorf("Got %s, expected x", id)
	}
	if _, ok := d.pick(nil); ok {
		t.Error("expected no pick from an empty slice")
	}
}

func TestEmptyLedgerBlocksAbilities(t *testing.T) {
	f := newFixture(t)
	for i := range f.lineup.Players {
		f.lineup.Players[i].Charges = round.Charges{}
	}
	f.cfg.Driver.AbilityRate = 1
	m, _ := f.run(t, NewSource(3))
	for _, e := range m.Timeline() {
		if e.Kind() == timeline.KindAbilityUse {
			t.Fatalf("Got %+v, expected no ability use without charges", e)
		}
	}
}

func TestSameSeedSameRound(t *testing.T) {
	f := newFixture(t)
	first, _ := f.run(t, NewSource(42))
	second, _ := f.run(t, NewSource(42))
	if !reflect.DeepEqual(first.Timeline(), second.Timeline()) {
		t.Error("the same seed produced different timelines")
	}
}

func TestGeneratedRoundsAreValid(t *testing.T) {
	f := newFixture(t)
	vcfg := validate.NewConfig(f.cfg, f.catalog.Weapons)

	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		g := f
		g.cfg.Driver.EncounterRate = rapid.Float64Range(0.02, 0.6).Draw(t, "encounter")
		g.cfg.Driver.AbilityRate = rapid.Float64Range(0, 0.2).Draw(t, "ability")
		g.cfg.Driver.TradeRate = rapid.Float64Range(0, 1).Draw(t, "trade")
		g.cfg.Driver.DropRate = rapid.Float64Range(0, 0.05).Draw(t, "drop")

		m, _ := g.run(t, NewSource(seed))
		events := m.Timeline()

		res := validate.Timeline(events, g.lineup.Players, vcfg)
		if !res.Valid() {
			t.Fatalf("seed %d produced an invalid timeline: %v", seed, res.Errors)
		}

		ends := 0
		for _, e := range events {
			if e.Kind() == timeline.KindRoundEnd {
				ends++
			}
			if dmg, ok := e.(timeline.Damage); ok {
				if dmg.ShieldAfter < 0 || dmg.HealthAfter < 0 {
					t.Fatalf("damage %d left negative values %d/%d", dmg.ID, dmg.ShieldAfter, dmg.HealthAfter)
				}
			}
		}
		if ends != 1 || events[len(events)-1].Kind() != timeline.KindRoundEnd {
			t.Fatalf("Got %d round ends, last event %s", ends, events[len(events)-1].Kind())
		}

		// no player ever uses more charges than they started with
		used := make(map[timeline.PlayerID]int)
		for _, e := range events {
			if ab, ok := e.(timeline.AbilityUse); ok {
				used[ab.Player]++
			}
		}
		for _, p := range g.lineup.Players {
			start := p.Charges.Ability1 + p.Charges.Ability2 + p.Charges.Signature
			if used[p.ID] > start {
				t.Fatalf("%s used %d abilities with %d charges", p.ID, used[p.ID], start)
			}
		}

		again, _ := g.run(t, NewSource(seed))
		if !reflect.DeepEqual(events, again.Timeline()) {
			t.Fatalf("seed %d is not deterministic", seed)
		}
	})
}
