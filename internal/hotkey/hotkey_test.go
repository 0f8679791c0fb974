package hotkey

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotyigit/sobottaai/internal/fsm"
	"github.com/dotyigit/sobottaai/internal/notify"
	"github.com/dotyigit/sobottaai/internal/record"
)

type fakeRecorder struct {
	starts   int
	stops    int
	startErr error
	stopErr  error
}

func (r *fakeRecorder) Start() error {
	r.starts++
	return r.startErr
}

func (r *fakeRecorder) Stop() (record.StopResult, error) {
	r.stops++
	if r.stopErr != nil {
		return record.StopResult{}, r.stopErr
	}
	return record.StopResult{SessionID: "s", DurationMS: 100, SampleCount: 1600}, nil
}

type recordingSink struct {
	notify.NoopSink
	errors []string
	resets int
}

func (s *recordingSink) RecordingError(message string) { s.errors = append(s.errors, message) }
func (s *recordingSink) RecordingReset()               { s.resets++ }

type fakeRegistrar struct {
	registerErr  error
	registered   []Binding
	unregistered []Binding
}

func (r *fakeRegistrar) Register(b Binding) error {
	if r.registerErr != nil {
		return r.registerErr
	}
	r.registered = append(r.registered, b)
	return nil
}

func (r *fakeRegistrar) Unregister(b Binding) error {
	r.unregistered = append(r.unregistered, b)
	return nil
}

func newController(t *testing.T, rec Recorder, sink notify.Sink, mode Mode) *Controller {
	t.Helper()
	binding, err := ParseBinding("SUPER+R")
	require.NoError(t, err)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewController(rec, sink, mode, binding, logger)
}

func TestParseBinding(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    string
		wantErr bool
	}{
		{name: "plain key", spec: "F12", want: "F12"},
		{name: "modifier and key", spec: "SUPER+R", want: "SUPER+R"},
		{name: "case normalized", spec: "super+shift+r", want: "SUPER+SHIFT+R"},
		{name: "whitespace trimmed", spec: " ctrl + d ", want: "CTRL+D"},
		{name: "empty", spec: "", wantErr: true},
		{name: "trailing plus", spec: "SUPER+", wantErr: true},
		{name: "only modifiers", spec: "SUPER+SHIFT", wantErr: true},
		{name: "unknown modifier", spec: "HYPER+R", wantErr: true},
		{name: "duplicate modifier", spec: "SUPER+SUPER+R", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			binding, err := ParseBinding(tc.spec)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidBinding)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, binding.String())
		})
	}
}

func TestPushToTalkHoldAndRelease(t *testing.T) {
	rec := &fakeRecorder{}
	c := newController(t, rec, nil, ModePushToTalk)

	c.KeyDown()
	require.Equal(t, fsm.StateRecording, c.State())
	require.Equal(t, 1, rec.starts)

	c.KeyUp()
	require.Equal(t, fsm.StateIdle, c.State())
	require.Equal(t, 1, rec.stops)
}

func TestPushToTalkRepeatedKeyDownStartsOnce(t *testing.T) {
	rec := &fakeRecorder{}
	c := newController(t, rec, nil, ModePushToTalk)

	// Key repeat delivers extra downs while held.
	c.KeyDown()
	c.KeyDown()
	c.KeyDown()
	require.Equal(t, 1, rec.starts)
	require.Equal(t, fsm.StateRecording, c.State())
}

func TestPushToTalkKeyUpWhileIdleIsNoop(t *testing.T) {
	rec := &fakeRecorder{}
	c := newController(t, rec, nil, ModePushToTalk)

	c.KeyUp()
	require.Equal(t, fsm.StateIdle, c.State())
	require.Zero(t, rec.stops)
}

func TestToggleAlternatesOnKeyDown(t *testing.T) {
	rec := &fakeRecorder{}
	c := newController(t, rec, nil, ModeToggle)

	c.KeyDown()
	require.Equal(t, fsm.StateRecording, c.State())
	c.KeyDown()
	require.Equal(t, fsm.StateIdle, c.State())

	require.Equal(t, 1, rec.starts)
	require.Equal(t, 1, rec.stops)
}

func TestToggleIgnoresKeyUp(t *testing.T) {
	rec := &fakeRecorder{}
	c := newController(t, rec, nil, ModeToggle)

	c.KeyDown()
	c.KeyUp()
	require.Equal(t, fsm.StateRecording, c.State())
	require.Zero(t, rec.stops)
}

func TestModeChangeAppliesToNextEvent(t *testing.T) {
	rec := &fakeRecorder{}
	c := newController(t, rec, nil, ModePushToTalk)

	c.KeyDown()
	require.NoError(t, c.SetMode(ModeToggle))

	// In toggle mode the release no longer stops the recording.
	c.KeyUp()
	require.Equal(t, fsm.StateRecording, c.State())

	c.KeyDown()
	require.Equal(t, fsm.StateIdle, c.State())
}

func TestSetModeRejectsUnknown(t *testing.T) {
	c := newController(t, &fakeRecorder{}, nil, ModePushToTalk)
	require.Error(t, c.SetMode(Mode("hold-to-whisper")))
	require.Equal(t, ModePushToTalk, c.Mode())
}

func TestFailedStartLeavesIdle(t *testing.T) {
	rec := &fakeRecorder{startErr: errors.New("device gone")}
	sink := &recordingSink{}
	c := newController(t, rec, sink, ModePushToTalk)

	c.KeyDown()
	require.Equal(t, fsm.StateIdle, c.State())
	require.Len(t, sink.errors, 1)

	// Next press can retry.
	c.KeyDown()
	require.Equal(t, 2, rec.starts)
}

func TestFailedStopEmitsReset(t *testing.T) {
	rec := &fakeRecorder{stopErr: record.ErrNoAudioCaptured}
	sink := &recordingSink{}
	c := newController(t, rec, sink, ModePushToTalk)

	c.KeyDown()
	c.KeyUp()
	require.Equal(t, fsm.StateIdle, c.State())
	require.Equal(t, 1, sink.resets)
}

func TestRebindValidatesBeforeReplacing(t *testing.T) {
	c := newController(t, &fakeRecorder{}, nil, ModePushToTalk)

	require.ErrorIs(t, c.Rebind("NOTAMOD+X"), ErrInvalidBinding)
	require.Equal(t, "SUPER+R", c.Binding().String())

	require.NoError(t, c.Rebind("ctrl+alt+d"))
	require.Equal(t, "CTRL+ALT+D", c.Binding().String())
}

func TestRebindKeepsOldBindingWhenRegistrationFails(t *testing.T) {
	c := newController(t, &fakeRecorder{}, nil, ModePushToTalk)
	registrar := &fakeRegistrar{registerErr: errors.New("grab rejected")}
	c.SetRegistrar(registrar)

	require.ErrorIs(t, c.Rebind("SUPER+T"), ErrInvalidBinding)
	require.Equal(t, "SUPER+R", c.Binding().String())
	require.Empty(t, registrar.unregistered)
}

func TestRebindUnregistersOldBinding(t *testing.T) {
	c := newController(t, &fakeRecorder{}, nil, ModePushToTalk)
	registrar := &fakeRegistrar{}
	c.SetRegistrar(registrar)

	require.NoError(t, c.Rebind("SUPER+T"))
	require.Len(t, registrar.registered, 1)
	require.Equal(t, "SUPER+T", registrar.registered[0].String())
	require.Len(t, registrar.unregistered, 1)
	require.Equal(t, "SUPER+R", registrar.unregistered[0].String())
}
