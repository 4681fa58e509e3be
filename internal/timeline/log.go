package timeline

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned when appending to a log that has already recorded its
// round end event
var ErrFrozen = errors.New("timeline is frozen")

// Log is an append-only sequence of events. IDs are assigned on append,
// starting at 1. Once a RoundEnd has been appended the log is frozen.
type Log struct {
	events []Event
	frozen bool
}

// Append stamps the event with the next ID and the given timestamp and
// records it, returning the stamped event
func (l *Log) Append(timestamp int64, e Event) (Event, error) {
	if l.frozen {
		return nil, fmt.Errorf("append %s: %w", e.Kind(), ErrFrozen)
	}
	stamped := e.stamp(Header{ID: len(l.events) + 1, Timestamp: timestamp})
	l.events = append(l.events, stamped)
	if stamped.Kind() == KindRoundEnd {
		l.frozen = true
	}
	return stamped, nil
}

// Len returns the number of recorded events
func (l *Log) Len() int { return len(l.events) }

// Frozen returns true once the round end event has been recorded
func (l *Log) Frozen() bool { return l.frozen }

// Events returns a copy of the recorded event sequence
func (l *Log) Events() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Last returns the most recently appended event, or nil for an empty log
func (l *Log) Last() Event {
	if len(l.events) == 0 {
		return nil
	}
	return l.events[len(l.events)-1]
}

// FindRoundEnd returns the first round end event in a sequence
func FindRoundEnd(events []Event) (RoundEnd, bool) {
	for _, e := range events {
		if end, ok := e.(RoundEnd); ok {
			return end, true
		}
	}
	return RoundEnd{}, false
}

// Stamp returns a copy of the event carrying the given header. It exists for
// tests and tooling that build timelines by hand; the state machine always
// goes through a Log.
func Stamp(e Event, id int, timestamp int64) Event {
	return e.stamp(Header{ID: id, Timestamp: timestamp})
}
