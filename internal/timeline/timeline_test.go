package timeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestLogAssignsSequentialIDs(t *testing.T) {
	var l Log
	for i := 0; i < 3; i++ {
		e, err := l.Append(int64(i*100), AbilityUse{Player: "a1", Ability: "flash", Slot: SlotAbility1})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if e.Head().ID != i+1 {
			t.Errorf("Got ID %d for append %d, expected %d", e.Head().ID, i, i+1)
		}
		if e.Head().Timestamp != int64(i*100) {
			t.Errorf("Got timestamp %d, expected %d", e.Head().Timestamp, i*100)
		}
	}
	if l.Len() != 3 {
		t.Errorf("Got Len() = %d, expected 3", l.Len())
	}
}

func TestLogFreezesOnRoundEnd(t *testing.T) {
	var l Log
	if _, err := l.Append(10, RoundEnd{Winner: SideDefender, Condition: WinTimeExpired}); err != nil {
		t.Fatalf("append round end: %v", err)
	}
	if !l.Frozen() {
		t.Fatal("expected log to be frozen after round end")
	}
	_, err := l.Append(20, Heal{Healer: "d1", Target: "d2"})
	if !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
	if l.Len() != 1 {
		t.Errorf("Got Len() = %d after rejected append, expected 1", l.Len())
	}
}

func TestEventsReturnsCopy(t *testing.T) {
	var l Log
	l.Append(0, PlantStart{Player: "a1", Site: SiteA})
	events := l.Events()
	events[0] = nil
	if l.Last() == nil {
		t.Fatal("mutating the returned slice reached into the log")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	var l Log
	l.Append(100, Damage{Attacker: "a1", Victim: "d1", Weapon: "vandal", Distance: 12,
		Hits: []Hit{{Location: HitHead}}, Raw: 160, ShieldBefore: 50, HealthBefore: 100,
		ShieldDamage: 50, HealthDamage: 100})
	l.Append(100, Kill{Killer: "a1", Victim: "d1", Weapon: "vandal", Headshot: true})
	l.Append(900, SpikeDetonation{Site: SiteB, Killed: []PlayerID{"d2"}})
	l.Append(900, RoundEnd{Winner: SideAttacker, Condition: WinSpikeDetonated,
		AttackersAlive: []PlayerID{"a1"}, DefendersAlive: []PlayerID{}})

	raw, err := Marshal(l.Events())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"kind":"spike_detonation"`) {
		t.Errorf("expected kind discriminator in output, got %s", raw)
	}

	decoded, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded, l.Events()) {
		t.Errorf("Got decoded timeline %+v, expected %+v", decoded, l.Events())
	}
}

func TestUnmarshalRejectsUnknownKind(t *testing.T) {
	_, err := Unmarshal([]byte(`[{"kind":"teleport","event":{}}]`))
	if err == nil || !strings.Contains(err.Error(), "unknown event kind") {
		t.Fatalf("expected unknown kind error, got %v", err)
	}
}

func TestRoundEndSurvivors(t *testing.T) {
	end := RoundEnd{AttackersAlive: []PlayerID{"a2", "a3"}, DefendersAlive: []PlayerID{"d5"}}
	if !end.Survived("d5") || !end.Survived("a3") {
		t.Errorf("expected d5 and a3 to be survivors of %+v", end)
	}
	if end.Survived("d1") {
		t.Errorf("did not expect d1 to be a survivor")
	}
}
