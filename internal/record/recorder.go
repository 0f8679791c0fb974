// Package record owns the dictation recording lifecycle: one capture
// session at a time, preprocessing on stop, and handoff to the session
// store.
package record

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dotyigit/sobottaai/internal/audio"
	"github.com/dotyigit/sobottaai/internal/dsp"
	"github.com/dotyigit/sobottaai/internal/notify"
	"github.com/dotyigit/sobottaai/internal/store"
	"github.com/dotyigit/sobottaai/internal/wav"
)

var (
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
	ErrNoAudioCaptured  = errors.New("no audio captured")
)

// stopGrace bounds how long Stop waits for the capture goroutine to
// acknowledge the stop signal before taking the buffer anyway.
const stopGrace = 50 * time.Millisecond

// StopResult describes one finished recording.
type StopResult struct {
	SessionID   string
	DurationMS  int64
	SampleCount int
}

// Options tunes recorder behavior beyond the capture device itself.
type Options struct {
	// Meter enables periodic audio-level events while recording.
	Meter         bool
	MeterInterval time.Duration
	MeterWindow   int

	// ArtifactDir, when set, receives a float32 WAV per stopped session.
	ArtifactDir string
}

// Recorder coordinates the capture session, level meter, preprocessing, and
// session store. At most one recording is active at a time.
type Recorder struct {
	logger   *slog.Logger
	opener   audio.Opener
	sessions *store.Store
	sink     notify.Sink
	opts     Options

	mu      sync.Mutex
	buf     *audio.Buffer
	capture *audio.Session
	meter   *audio.Meter
}

func New(opener audio.Opener, sessions *store.Store, sink notify.Sink, opts Options, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = notify.NoopSink{}
	}
	return &Recorder{
		logger:   logger,
		opener:   opener,
		sessions: sessions,
		sink:     sink,
		opts:     opts,
	}
}

// Recording reports whether a capture session is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capture != nil
}

// Start opens the input device and begins streaming samples into a fresh
// buffer. It blocks until the device has reported its true format.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capture != nil {
		return ErrAlreadyRecording
	}

	buf := audio.NewBuffer(0, 0)
	capture, err := audio.Start(r.opener, buf)
	if err != nil {
		r.sink.RecordingError(err.Error())
		return fmt.Errorf("start capture: %w", err)
	}

	r.buf = buf
	r.capture = capture
	if r.opts.Meter {
		r.meter = audio.StartMeter(buf, r.opts.MeterInterval, r.opts.MeterWindow, r.sink.AudioLevel)
	}

	rate, channels := buf.Format()
	r.logger.Info("recording started", "sample_rate", rate, "channels", channels)
	r.sink.RecordingStarted()
	return nil
}

// Stop ends the active capture session, preprocesses whatever was captured,
// and stores it under a new session id.
func (r *Recorder) Stop() (StopResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capture == nil {
		return StopResult{}, ErrNotRecording
	}

	r.capture.Stop(stopGrace)
	if r.meter != nil {
		r.meter.Stop()
		r.meter = nil
	}

	buf := r.buf
	r.capture = nil
	r.buf = nil

	rate, channels := buf.Format()
	raw := buf.Take()
	if len(raw) == 0 {
		r.sink.RecordingError("no audio captured")
		return StopResult{}, ErrNoAudioCaptured
	}

	result, err := r.finish(raw, channels, rate)
	if err != nil {
		return StopResult{}, err
	}
	r.logger.Info("recording stopped",
		"session_id", result.SessionID,
		"duration_ms", result.DurationMS,
		"raw_samples", len(raw),
		"samples", result.SampleCount)
	return result, nil
}

// Import runs the preprocessing chain on a WAV file instead of live capture.
// Channel count and sample rate come from the file header.
func (r *Recorder) Import(path string) (StopResult, error) {
	samples, rate, channels, err := wav.ReadFile(path)
	if err != nil {
		return StopResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(samples) == 0 {
		return StopResult{}, fmt.Errorf("%w: %s", ErrNoAudioCaptured, path)
	}

	result, err := r.finish(samples, channels, rate)
	if err != nil {
		return StopResult{}, err
	}
	r.logger.Info("audio imported",
		"path", path, "session_id", result.SessionID, "duration_ms", result.DurationMS)
	return result, nil
}

// finish preprocesses raw samples, stores them under a new session id, and
// emits the stopped notification.
func (r *Recorder) finish(raw []float32, channels int, rate int) (StopResult, error) {
	processed := dsp.Preprocess(raw, channels, rate)

	sessionID := uuid.NewString()
	r.sessions.Put(sessionID, processed)

	result := StopResult{
		SessionID:   sessionID,
		DurationMS:  int64(len(processed)) * 1000 / dsp.TargetRate,
		SampleCount: len(processed),
	}

	if r.opts.ArtifactDir != "" {
		if err := r.saveArtifact(sessionID, processed); err != nil {
			// Artifact persistence is best-effort; the session itself is
			// already stored.
			r.logger.Warn("audio artifact write failed", "session_id", sessionID, "error", err)
		}
	}

	r.sink.RecordingStopped(notify.StopEvent{
		SessionID:   result.SessionID,
		DurationMS:  result.DurationMS,
		SampleCount: result.SampleCount,
	})
	return result, nil
}

func (r *Recorder) saveArtifact(sessionID string, samples []float32) error {
	if err := os.MkdirAll(r.opts.ArtifactDir, 0o700); err != nil {
		return err
	}
	path := filepath.Join(r.opts.ArtifactDir, sessionID+".wav")
	return wav.WriteFile(path, samples, dsp.TargetRate)
}
