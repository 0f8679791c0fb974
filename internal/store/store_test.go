package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetTake(t *testing.T) {
	s := New()

	_, err := s.Get("missing")
	require.ErrorIs(t, err, ErrSessionNotFound)

	s.Put("a", []float32{0.1, 0.2})
	require.Equal(t, 1, s.Len())

	first, err := s.Get("a")
	require.NoError(t, err)
	second, err := s.Get("a")
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Get returns a copy; mutating it must not affect the stored audio.
	first[0] = 9
	third, err := s.Get("a")
	require.NoError(t, err)
	require.Equal(t, float32(0.1), third[0])

	taken, err := s.Take("a")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2}, taken)
	require.Equal(t, 0, s.Len())

	_, err = s.Take("a")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPutReplacesAndDelete(t *testing.T) {
	s := New()
	s.Put("a", []float32{1})
	s.Put("a", []float32{2})

	got, err := s.Get("a")
	require.NoError(t, err)
	require.Equal(t, []float32{2}, got)

	s.Delete("a")
	s.Delete("a")
	require.Equal(t, 0, s.Len())
}
