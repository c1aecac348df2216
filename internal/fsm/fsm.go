// Package fsm defines the monitoring engine run-state transition table.
package fsm

import "fmt"

type State string

type Event string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

const (
	EventStart  Event = "start"
	EventStop   Event = "stop"
	EventToggle Event = "toggle"
)

// Transition applies one event to the current state and returns the next.
// Stop is accepted from any state so shutdown paths stay idempotent.
func Transition(current State, event Event) (State, error) {
	if event == EventStop {
		return StateStopped, nil
	}

	switch current {
	case StateStopped:
		switch event {
		case EventStart, EventToggle:
			return StateRunning, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRunning:
		switch event {
		case EventToggle:
			return StateStopped, nil
		case EventStart:
			return StateRunning, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
