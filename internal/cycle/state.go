package cycle

import (
	"errors"
	"fmt"
)

// State identifies one node of the cycle.
type State int

const (
	// StateIdle scrolls the last weather line.
	StateIdle State = iota
	// StateGather fetches the weather once per visit.
	StateGather
	// StateClock shows the last resolved time.
	StateClock
	// StateNtc resolves the current time once per visit.
	StateNtc
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateGather:
		return "Gather"
	case StateClock:
		return "Clock"
	case StateNtc:
		return "Ntc"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Kind names a request that a timer (or an operator) can raise.
type Kind string

const (
	KindGather Kind = "gather"
	KindClock  Kind = "clock"
)

// Event is the predicate of a transition.
type Event int

const (
	// EventTimeToGather consumes the gather time-to trigger.
	EventTimeToGather Event = iota
	// EventTimeToClock consumes the clock time-to trigger.
	EventTimeToClock
	// EventGathered fires once the fetch of the current visit has completed.
	EventGathered
	// EventAlways fires unconditionally.
	EventAlways
)

func (e Event) String() string {
	switch e {
	case EventTimeToGather:
		return "time_to_gather"
	case EventTimeToClock:
		return "time_to_clock"
	case EventGathered:
		return "gathered"
	case EventAlways:
		return "always"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// kind returns the latch feeding the event, if any.
func (e Event) kind() (Kind, bool) {
	switch e {
	case EventTimeToGather:
		return KindGather, true
	case EventTimeToClock:
		return KindClock, true
	default:
		return "", false
	}
}

// Transition is one row of the transition table.
type Transition struct {
	From  State
	Event Event
	To    State
}

// Topology selects a fixed transition table.
type Topology string

const (
	// TopologyFull cycles Idle -> Clock -> Gather -> Ntc -> Idle.
	TopologyFull Topology = "full"
	// TopologyWeather cycles Idle -> Gather -> Idle.
	TopologyWeather Topology = "weather"
)

var ErrUnknownTopology = errors.New("unknown cycle topology")

// Rows are evaluated in order; the first true predicate for the current state
// wins.
var tables = map[Topology][]Transition{
	TopologyFull: {
		{From: StateIdle, Event: EventTimeToClock, To: StateClock},
		{From: StateClock, Event: EventTimeToGather, To: StateGather},
		{From: StateGather, Event: EventGathered, To: StateNtc},
		{From: StateNtc, Event: EventAlways, To: StateIdle},
	},
	TopologyWeather: {
		{From: StateIdle, Event: EventTimeToGather, To: StateGather},
		{From: StateGather, Event: EventGathered, To: StateIdle},
	},
}

// Table returns a copy of the transition table of t.
func Table(t Topology) ([]Transition, error) {
	table, ok := tables[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopology, t)
	}
	return append([]Transition(nil), table...), nil
}

// watched returns, per state, the latches feeding its outgoing transitions.
func watched(table []Transition) map[State][]Kind {
	w := make(map[State][]Kind)
	for _, tr := range table {
		if k, ok := tr.Event.kind(); ok {
			w[tr.From] = append(w[tr.From], k)
		}
	}
	return w
}
