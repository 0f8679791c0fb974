package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionMatrix(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		want    State
		wantErr string
	}{
		{name: "idle starts recording", state: StateIdle, event: EventStart, want: StateRecording},
		{name: "recording stops to idle", state: StateRecording, event: EventStop, want: StateIdle},
		{name: "error resets to idle", state: StateError, event: EventReset, want: StateIdle},
		{name: "idle rejects stop", state: StateIdle, event: EventStop, want: StateIdle, wantErr: "invalid transition"},
		{name: "idle rejects reset", state: StateIdle, event: EventReset, want: StateIdle, wantErr: "invalid transition"},
		{name: "recording rejects start", state: StateRecording, event: EventStart, want: StateRecording, wantErr: "invalid transition"},
		{name: "recording rejects reset", state: StateRecording, event: EventReset, want: StateRecording, wantErr: "invalid transition"},
		{name: "error rejects start", state: StateError, event: EventStart, want: StateError, wantErr: "invalid transition"},
		{name: "error rejects stop", state: StateError, event: EventStop, want: StateError, wantErr: "invalid transition"},
		{name: "unknown state", state: State("mystery"), event: EventStart, want: State("mystery"), wantErr: "unknown state"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Transition(tc.state, tc.event)
			require.Equal(t, tc.want, next)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransitionFailFromAnyState(t *testing.T) {
	for _, state := range []State{StateIdle, StateRecording, StateError} {
		next, err := Transition(state, EventFail)
		require.NoError(t, err)
		require.Equal(t, StateError, next)
	}
}
