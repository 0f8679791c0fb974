// Package fsm models the dictation controller's recording state machine.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateError     State = "error"
)

const (
	EventStart Event = "start"
	EventStop  Event = "stop"
	EventFail  Event = "fail"
	EventReset Event = "reset"
)

// transitions lists the legal moves per state. EventFail is handled before
// the table lookup: any state may fail into StateError.
var transitions = map[State]map[Event]State{
	StateIdle:      {EventStart: StateRecording},
	StateRecording: {EventStop: StateIdle},
	StateError:     {EventReset: StateIdle},
}

func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}

	events, ok := transitions[current]
	if !ok {
		return current, fmt.Errorf("unknown state %q", current)
	}
	next, ok := events[event]
	if !ok {
		return current, fmt.Errorf("invalid transition: %s --(%s)--> ?", current, event)
	}
	return next, nil
}
