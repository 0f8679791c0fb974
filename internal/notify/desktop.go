package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const desktopDispatchTimeout = 400 * time.Millisecond

// DesktopSink mirrors recording state to freedesktop notifications over
// DBus. Each event replaces the previous notification so at most one
// sobotta bubble is visible. Dispatch happens on a goroutine so pipeline
// callers never block on the notification server.
type DesktopSink struct {
	AppName string
	Logger  *slog.Logger

	// call overrides busctl invocation in tests.
	call func(ctx context.Context, args ...string) (string, error)

	mu sync.Mutex
	id uint32
}

// NewDesktopSink builds a sink that talks to the session notification
// server via busctl.
func NewDesktopSink(appName string, logger *slog.Logger) *DesktopSink {
	return &DesktopSink{AppName: appName, Logger: logger, call: busctl}
}

func (s *DesktopSink) RecordingStarted() {
	s.dispatch(func(ctx context.Context) error {
		return s.show(ctx, "Recording", 0)
	})
}

func (s *DesktopSink) RecordingStopped(event StopEvent) {
	seconds := float64(event.DurationMS) / 1000
	s.dispatch(func(ctx context.Context) error {
		return s.show(ctx, fmt.Sprintf("Captured %.1fs", seconds), 1500)
	})
}

func (s *DesktopSink) AudioLevel(float64) {}

func (s *DesktopSink) RecordingError(message string) {
	if message == "" {
		message = "Recording failed"
	}
	s.dispatch(func(ctx context.Context) error {
		return s.show(ctx, message, 2500)
	})
}

func (s *DesktopSink) RecordingReset() {
	s.dispatch(s.hide)
}

// show sends a notification, replacing the previous one when present.
// A timeout of 0 keeps the bubble up until replaced or dismissed.
func (s *DesktopSink) show(ctx context.Context, summary string, timeoutMS int) error {
	s.mu.Lock()
	replaceID := s.id
	s.mu.Unlock()

	out, err := s.call(ctx,
		"--user", "call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		"Notify",
		"susssasa{sv}i",
		s.AppName,
		strconv.FormatUint(uint64(replaceID), 10),
		"",
		summary,
		"",
		"0", // actions array length
		"0", // hints map length
		strconv.Itoa(timeoutMS),
	)
	if err != nil {
		return fmt.Errorf("desktop notify: %w", err)
	}

	// busctl replies with the typed return value, e.g. "u 42".
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) < 2 || fields[0] != "u" {
		return fmt.Errorf("desktop notify: unexpected reply %q", strings.TrimSpace(out))
	}
	value, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return fmt.Errorf("desktop notify: parse id %q: %w", fields[1], err)
	}

	s.mu.Lock()
	s.id = uint32(value)
	s.mu.Unlock()
	return nil
}

// hide closes the active notification when one is up.
func (s *DesktopSink) hide(ctx context.Context) error {
	s.mu.Lock()
	id := s.id
	s.id = 0
	s.mu.Unlock()

	if id == 0 {
		return nil
	}
	_, err := s.call(ctx,
		"--user", "call",
		"org.freedesktop.Notifications",
		"/org/freedesktop/Notifications",
		"org.freedesktop.Notifications",
		"CloseNotification",
		"u",
		strconv.FormatUint(uint64(id), 10),
	)
	if err != nil {
		return fmt.Errorf("desktop dismiss: %w", err)
	}
	return nil
}

func (s *DesktopSink) dispatch(fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), desktopDispatchTimeout)
		defer cancel()
		if err := fn(ctx); err != nil && s.Logger != nil {
			s.Logger.Debug("desktop notification dispatch failed", "error", err.Error())
		}
	}()
}

func busctl(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "busctl", args...).CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return "", err
		}
		return "", fmt.Errorf("%w (%s)", err, trimmed)
	}
	return string(out), nil
}
