// Package stt maps model identifiers to runnable speech-to-text engines,
// caching loaded instances and serializing local inference.
package stt

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyAudio indicates a session resolved to zero samples.
	ErrEmptyAudio = errors.New("stt: session has no audio data")
	// ErrModelNotDownloaded indicates required model files are missing.
	ErrModelNotDownloaded = errors.New("stt: model not downloaded")
	// ErrEngineLoad indicates engine construction failed.
	ErrEngineLoad = errors.New("stt: engine load failed")
	// ErrEngineUnavailable indicates the native backend was not compiled in.
	ErrEngineUnavailable = errors.New("stt: native engine backend unavailable")
	// ErrInference indicates the engine's transcription call failed.
	ErrInference = errors.New("stt: inference failed")
)

// RemoteAPIError carries a remote engine's non-success HTTP outcome.
type RemoteAPIError struct {
	Status  int
	Message string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("remote api error: status %d: %s", e.Status, e.Message)
}

// Options are per-request transcription hints.
type Options struct {
	// Language is a code such as "en", or "auto"/"" for detection.
	Language string
	// Vocabulary is an ordered list of bias terms.
	Vocabulary []string
}

// Segment is one timed slice of a transcript.
type Segment struct {
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

// Result is the uniform transcription output of every engine kind.
type Result struct {
	Text       string    `json:"text"`
	Language   string    `json:"language,omitempty"`
	Segments   []Segment `json:"segments"`
	DurationMS int64     `json:"duration_ms"`
}

// Engine is a concrete speech-to-text backend. Audio is always mono float32
// at 16kHz. Implementations are not required to tolerate concurrent calls;
// the manager serializes local engines.
type Engine interface {
	Name() string
	Transcribe(audio []float32, opts Options) (Result, error)
}
