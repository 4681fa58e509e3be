package sim

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/phil-holland/spike-round-sim/internal/armory"
	"github.com/phil-holland/spike-round-sim/internal/config"
	"github.com/phil-holland/spike-round-sim/internal/lineup"
	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

func simulator(t *testing.T) *Simulator {
	t.Helper()
	catalog := armory.DefaultCatalog()
	l, err := lineup.Standard(catalog)
	if err != nil {
		t.Fatal(err)
	}
	return New(config.Default(), catalog, l, nil)
}

func encoded(t *testing.T, r Result) []byte {
	t.Helper()
	raw, err := timeline.Marshal(r.Events)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestRound(t *testing.T) {
	res, err := simulator(t).Round(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Validation.Valid() {
		t.Errorf("Got validation errors %v, expected none", res.Validation.Errors)
	}
	end, ok := timeline.FindRoundEnd(res.Events)
	if !ok {
		t.Fatalf("Got no round end in %d events", len(res.Events))
	}
	if res.Summary.Winner != end.Winner || res.Summary.Condition != end.Condition {
		t.Errorf("Got summary %s/%s, expected %s/%s", res.Summary.Winner, res.Summary.Condition,
			end.Winner, end.Condition)
	}
	if len(res.Roster) != 10 || len(res.Summary.Players) != 10 {
		t.Errorf("Got %d roster entries and %d player stats, expected 10 of each",
			len(res.Roster), len(res.Summary.Players))
	}
}

func TestRoundReplaysFromSeed(t *testing.T) {
	s := simulator(t)
	first, err := s.Round(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Round(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("Got IDs %s and %s for the same seed, expected them equal", first.ID, second.ID)
	}
	if !bytes.Equal(encoded(t, first), encoded(t, second)) {
		t.Errorf("Got different timelines for the same seed")
	}

	other, err := s.Round(context.Background(), 8)
	if err != nil {
		t.Fatal(err)
	}
	if other.ID == first.ID {
		t.Errorf("Got the same ID %s for seeds 7 and 8", other.ID)
	}
}

func TestRoundID(t *testing.T) {
	id, err := RoundID(1)
	if err != nil {
		t.Fatal(err)
	}
	if id.Version() != 4 {
		t.Errorf("Got UUID version %d, expected 4", id.Version())
	}
}

func TestBatchIgnoresWorkerCount(t *testing.T) {
	s := simulator(t)

	var calls atomic.Int32
	serial, err := s.Batch(context.Background(), 100, 6, 1, func(Result) { calls.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 6 {
		t.Errorf("Got %d progress calls, expected 6", calls.Load())
	}

	parallel, err := s.Batch(context.Background(), 100, 6, 4, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := range serial {
		if serial[i].Seed != 100+uint64(i) {
			t.Errorf("Got seed %d at index %d, expected %d", serial[i].Seed, i, 100+i)
		}
		if serial[i].ID != parallel[i].ID {
			t.Errorf("Got IDs %s and %s at index %d, expected them equal", serial[i].ID, parallel[i].ID, i)
		}
		if !bytes.Equal(encoded(t, serial[i]), encoded(t, parallel[i])) {
			t.Errorf("Got different timelines at index %d", i)
		}
	}
}

func TestBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := simulator(t).Batch(ctx, 0, 3, 2, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Got error %v, expected %v", err, context.Canceled)
	}
}

func TestBatchNegative(t *testing.T) {
	if _, err := simulator(t).Batch(context.Background(), 0, -1, 1, nil); err == nil {
		t.Errorf("Got no error for a negative round count, expected one")
	}
}
