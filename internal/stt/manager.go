package stt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dotyigit/sobottaai/internal/catalog"
	"github.com/dotyigit/sobottaai/internal/dsp"
	"github.com/dotyigit/sobottaai/internal/store"
)

// silenceRMS is the energy floor below which a session is treated as silence
// and transcription is skipped entirely. Whisper-family models hallucinate
// phrases on near-silent input.
const silenceRMS = 0.01

// factory constructs an engine for one model kind. modelDir is empty for
// remote kinds.
type factory func(model catalog.ModelInfo, modelDir string) (Engine, error)

// RemoteConfig configures one remote HTTP engine.
type RemoteConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Manager caches loaded engines by model id and dispatches transcription
// requests against the session store. Local inference calls are serialized
// process-wide: the underlying libraries are not proven safe for concurrent
// calls and concurrent runs would contend for CPU/GPU unpredictably.
type Manager struct {
	logger   *slog.Logger
	catalog  *catalog.Catalog
	sessions *store.Store

	factories map[catalog.Kind]factory

	mu      sync.Mutex
	engines map[string]Engine

	inferMu sync.Mutex
}

// NewManager wires the dispatcher to a catalog, session store, and remote
// engine credentials.
func NewManager(cat *catalog.Catalog, sessions *store.Store, remotes map[catalog.Kind]RemoteConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	factories := map[catalog.Kind]factory{
		catalog.KindWhisper: func(model catalog.ModelInfo, modelDir string) (Engine, error) {
			return newWhisperEngine(model, modelDir)
		},
		catalog.KindTransducer: func(model catalog.ModelInfo, modelDir string) (Engine, error) {
			return newTransducerEngine(model, modelDir)
		},
	}
	for kind, cfg := range remotes {
		remoteCfg := cfg
		factories[kind] = func(model catalog.ModelInfo, _ string) (Engine, error) {
			return newRemoteEngine(string(model.Kind), remoteCfg), nil
		}
	}

	return &Manager{
		logger:    logger,
		catalog:   cat,
		sessions:  sessions,
		factories: factories,
		engines:   make(map[string]Engine),
	}
}

// GetOrLoad returns the cached engine for a model, constructing and caching
// it on first use. Local models must have all required files on disk.
func (m *Manager) GetOrLoad(modelID string) (Engine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if engine, ok := m.engines[modelID]; ok {
		return engine, nil
	}

	model, err := m.catalog.Lookup(modelID)
	if err != nil {
		return nil, err
	}
	if !m.catalog.IsDownloaded(model) {
		return nil, fmt.Errorf("%w: %q", ErrModelNotDownloaded, modelID)
	}

	construct, ok := m.factories[model.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: no backend for kind %q", ErrEngineLoad, model.Kind)
	}

	modelDir := ""
	if model.Kind.Local() {
		modelDir = m.catalog.ResolvePath(modelID)
	}

	engine, err := construct(model, modelDir)
	if err != nil {
		return nil, fmt.Errorf("%w: model %q: %v", ErrEngineLoad, modelID, err)
	}

	m.engines[modelID] = engine
	m.logger.Info("stt engine cached", "model_id", modelID, "engine", engine.Name())
	return engine, nil
}

// Evict drops a cached engine so the next request reloads from disk, or
// fails if the files are gone. Used after model deletion.
func (m *Manager) Evict(modelID string) {
	m.mu.Lock()
	delete(m.engines, modelID)
	m.mu.Unlock()
}

// Transcribe resolves a session's preprocessed audio and runs it through the
// engine for modelID. Near-silent audio short-circuits to an empty result
// without touching any engine. The stored session is freed on success.
func (m *Manager) Transcribe(sessionID string, modelID string, opts Options) (Result, error) {
	audio, err := m.sessions.Get(sessionID)
	if err != nil {
		return Result{}, err
	}
	if len(audio) == 0 {
		return Result{}, fmt.Errorf("%w: session %q", ErrEmptyAudio, sessionID)
	}

	rms := dsp.RMSEnergy(audio)
	if rms < silenceRMS {
		m.logger.Info("audio below silence threshold; skipping transcription",
			"session_id", sessionID, "rms", rms, "samples", len(audio))
		m.sessions.Delete(sessionID)
		return Result{Segments: []Segment{}}, nil
	}

	model, err := m.catalog.Lookup(modelID)
	if err != nil {
		return Result{}, err
	}
	engine, err := m.GetOrLoad(modelID)
	if err != nil {
		return Result{}, err
	}

	m.logger.Info("transcription start",
		"session_id", sessionID, "model_id", modelID, "samples", len(audio))

	var result Result
	if model.Kind.Local() {
		result, err = m.runLocal(engine, audio, opts)
	} else {
		result, err = engine.Transcribe(audio, opts)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: engine %s: %v", ErrInference, engine.Name(), err)
	}

	m.sessions.Delete(sessionID)
	return result, nil
}

// runLocal executes a blocking local inference call on a worker goroutine
// while holding the global inference mutex. At most one local inference runs
// at a time, regardless of model.
func (m *Manager) runLocal(engine Engine, audio []float32, opts Options) (Result, error) {
	type outcome struct {
		result Result
		err    error
	}

	ch := make(chan outcome, 1)
	go func() {
		m.inferMu.Lock()
		defer m.inferMu.Unlock()
		result, err := engine.Transcribe(audio, opts)
		ch <- outcome{result: result, err: err}
	}()

	out := <-ch
	return out.result, out.err
}
