package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDesktopSinkShowThreadsReplaceID(t *testing.T) {
	t.Parallel()

	var calls [][]string
	sink := NewDesktopSink("sobotta", nil)
	sink.call = func(_ context.Context, args ...string) (string, error) {
		calls = append(calls, args)
		return fmt.Sprintf("u %d", len(calls)+10), nil
	}

	require.NoError(t, sink.show(context.Background(), "Recording", 0))
	require.NoError(t, sink.show(context.Background(), "Captured 1.2s", 1500))

	require.Len(t, calls, 2)
	require.Contains(t, calls[0], "Notify")
	require.Contains(t, calls[0], "sobotta")
	require.Contains(t, calls[0], "Recording")
	// First call replaces nothing; second replaces the server-assigned ID.
	require.Contains(t, calls[0], "0")
	require.Contains(t, calls[1], "11")
	require.Contains(t, calls[1], "Captured 1.2s")
}

func TestDesktopSinkHideClosesActiveNotification(t *testing.T) {
	t.Parallel()

	var calls [][]string
	sink := NewDesktopSink("sobotta", nil)
	sink.call = func(_ context.Context, args ...string) (string, error) {
		calls = append(calls, args)
		return "u 7", nil
	}

	require.NoError(t, sink.show(context.Background(), "Recording", 0))
	require.NoError(t, sink.hide(context.Background()))

	require.Len(t, calls, 2)
	require.Contains(t, calls[1], "CloseNotification")
	require.Contains(t, calls[1], "7")

	// Without an active notification hide is a no-op.
	require.NoError(t, sink.hide(context.Background()))
	require.Len(t, calls, 2)
}

func TestDesktopSinkShowRejectsMalformedReply(t *testing.T) {
	t.Parallel()

	sink := NewDesktopSink("sobotta", nil)
	sink.call = func(context.Context, ...string) (string, error) {
		return "not a reply", nil
	}

	err := sink.show(context.Background(), "Recording", 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected reply")
}

type countingSink struct {
	NoopSink
	started int
	stopped int
	errors  int
}

func (c *countingSink) RecordingStarted()          { c.started++ }
func (c *countingSink) RecordingStopped(StopEvent) { c.stopped++ }
func (c *countingSink) RecordingError(string)      { c.errors++ }

func TestFanoutForwardsToAllSinks(t *testing.T) {
	t.Parallel()

	first := &countingSink{}
	second := &countingSink{}
	fan := Fanout{first, second}

	fan.RecordingStarted()
	fan.RecordingStopped(StopEvent{SessionID: "s1"})
	fan.RecordingError("boom")
	fan.AudioLevel(0.5)
	fan.RecordingReset()

	for _, sink := range []*countingSink{first, second} {
		require.Equal(t, 1, sink.started)
		require.Equal(t, 1, sink.stopped)
		require.Equal(t, 1, sink.errors)
	}
}
