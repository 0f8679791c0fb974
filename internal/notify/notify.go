// Package notify defines the fire-and-forget event sink through which the
// recording pipeline informs external collaborators (UI shell, tray) about
// session lifecycle and audio levels.
package notify

import "log/slog"

// StopEvent carries the outcome of a finished recording.
type StopEvent struct {
	SessionID   string `json:"session_id"`
	DurationMS  int64  `json:"duration_ms"`
	SampleCount int    `json:"sample_count"`
}

// Sink receives pipeline events. Implementations must not block; every
// method is fire-and-forget from the pipeline's point of view.
type Sink interface {
	RecordingStarted()
	RecordingStopped(StopEvent)
	AudioLevel(value float64)
	RecordingError(message string)
	// RecordingReset tells UI-facing state to reconcile to idle after a
	// failure path, so indicators cannot desync from the backend.
	RecordingReset()
}

// NoopSink discards all events. Used when no collaborator is wired.
type NoopSink struct{}

func (NoopSink) RecordingStarted()          {}
func (NoopSink) RecordingStopped(StopEvent) {}
func (NoopSink) AudioLevel(float64)         {}
func (NoopSink) RecordingError(string)      {}
func (NoopSink) RecordingReset()            {}

// Fanout forwards every event to each member sink in order.
type Fanout []Sink

func (f Fanout) RecordingStarted() {
	for _, s := range f {
		s.RecordingStarted()
	}
}

func (f Fanout) RecordingStopped(event StopEvent) {
	for _, s := range f {
		s.RecordingStopped(event)
	}
}

func (f Fanout) AudioLevel(value float64) {
	for _, s := range f {
		s.AudioLevel(value)
	}
}

func (f Fanout) RecordingError(message string) {
	for _, s := range f {
		s.RecordingError(message)
	}
}

func (f Fanout) RecordingReset() {
	for _, s := range f {
		s.RecordingReset()
	}
}

// LogSink writes events to the structured log. Audio levels are emitted at
// debug so the JSONL log is not flooded at meter rate.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s LogSink) RecordingStarted() {
	s.logger().Info("recording started")
}

func (s LogSink) RecordingStopped(event StopEvent) {
	s.logger().Info("recording stopped",
		"session_id", event.SessionID,
		"duration_ms", event.DurationMS,
		"sample_count", event.SampleCount,
	)
}

func (s LogSink) AudioLevel(value float64) {
	s.logger().Debug("audio level", "value", value)
}

func (s LogSink) RecordingError(message string) {
	s.logger().Warn("recording error", "message", message)
}

func (s LogSink) RecordingReset() {
	s.logger().Info("recording state reset")
}
