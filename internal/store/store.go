// Package store holds finalized, preprocessed recordings keyed by session id
// until transcription consumes them.
package store

import (
	"errors"
	"sync"
)

// ErrSessionNotFound indicates the session id is absent from the store.
var ErrSessionNotFound = errors.New("store: session not found")

// Store is a thread-safe map of session id to mono 16kHz sample sets.
type Store struct {
	mu       sync.Mutex
	sessions map[string][]float32
}

// New creates an empty session store.
func New() *Store {
	return &Store{sessions: make(map[string][]float32)}
}

// Put registers preprocessed samples under a session id, replacing any
// previous entry.
func (s *Store) Put(sessionID string, samples []float32) {
	s.mu.Lock()
	s.sessions[sessionID] = samples
	s.mu.Unlock()
}

// Get returns a copy of a session's samples without consuming the entry, so
// repeated reads observe identical audio.
func (s *Store) Get(sessionID string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	samples, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := make([]float32, len(samples))
	copy(out, samples)
	return out, nil
}

// Take removes and returns a session's samples, freeing the stored audio
// once transcription has pulled it.
func (s *Store) Take(sessionID string) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	samples, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return samples, nil
}

// Delete drops a session if present.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Len reports the number of pending sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
