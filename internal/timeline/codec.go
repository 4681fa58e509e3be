package timeline

import (
	"encoding/json"
	"fmt"
)

// envelope is the wire form of a single event: the discriminator next to the
// variant payload
type envelope struct {
	Kind  Kind            `json:"kind"`
	Event json.RawMessage `json:"event"`
}

// Marshal encodes a timeline as a JSON array of kind-tagged events
func Marshal(events []Event) ([]byte, error) {
	out := make([]envelope, 0, len(events))
	for _, e := range events {
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal event %d: %w", e.Head().ID, err)
		}
		out = append(out, envelope{Kind: e.Kind(), Event: raw})
	}
	return json.Marshal(out)
}

// Unmarshal decodes a timeline previously encoded with Marshal
func Unmarshal(data []byte) ([]Event, error) {
	var envs []envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("unmarshal timeline: %w", err)
	}
	events := make([]Event, 0, len(envs))
	for idx, env := range envs {
		e, err := decode(env)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", idx, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func decode(env envelope) (Event, error) {
	switch env.Kind {
	case KindDamage:
		return decodeAs[Damage](env.Event)
	case KindKill:
		return decodeAs[Kill](env.Event)
	case KindPlantStart:
		return decodeAs[PlantStart](env.Event)
	case KindPlantInterrupt:
		return decodeAs[PlantInterrupt](env.Event)
	case KindPlantComplete:
		return decodeAs[PlantComplete](env.Event)
	case KindDefuseStart:
		return decodeAs[DefuseStart](env.Event)
	case KindDefuseInterrupt:
		return decodeAs[DefuseInterrupt](env.Event)
	case KindDefuseComplete:
		return decodeAs[DefuseComplete](env.Event)
	case KindSpikeDrop:
		return decodeAs[SpikeDrop](env.Event)
	case KindSpikePickup:
		return decodeAs[SpikePickup](env.Event)
	case KindSpikeDetonation:
		return decodeAs[SpikeDetonation](env.Event)
	case KindAbilityUse:
		return decodeAs[AbilityUse](env.Event)
	case KindHeal:
		return decodeAs[Heal](env.Event)
	case KindRoundEnd:
		return decodeAs[RoundEnd](env.Event)
	}
	return nil, fmt.Errorf("unknown event kind %q", env.Kind)
}

func decodeAs[T Event](raw json.RawMessage) (Event, error) {
	var e T
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Kind(), err)
	}
	return e, nil
}
