// Package audio owns microphone capture: the shared sample buffer, the
// device-thread capture session, the level meter, and the PulseAudio backend.
package audio

import "sync"

// Buffer accumulates raw capture samples shared between the device callback
// (sole writer) and readers such as the level meter and the session
// finalizer. Rate and channel count start at zero and are filled in once the
// device reports its actual configuration.
type Buffer struct {
	mu         sync.Mutex
	samples    []float32
	sampleRate int
	channels   int
}

// NewBuffer creates an empty buffer with the given capture metadata.
func NewBuffer(sampleRate int, channels int) *Buffer {
	return &Buffer{sampleRate: sampleRate, channels: channels}
}

// Append adds a chunk of samples. Called from the device callback; the lock
// is held only for the copy.
func (b *Buffer) Append(chunk []float32) {
	if len(chunk) == 0 {
		return
	}
	b.mu.Lock()
	b.samples = append(b.samples, chunk...)
	b.mu.Unlock()
}

// Clear drops all accumulated samples.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.samples = nil
	b.mu.Unlock()
}

// Take swaps out the full contents, leaving an empty buffer behind.
func (b *Buffer) Take() []float32 {
	b.mu.Lock()
	out := b.samples
	b.samples = nil
	b.mu.Unlock()
	return out
}

// Window returns a copy of at most the last n samples, for metering.
func (b *Buffer) Window(n int) []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= 0 || len(b.samples) == 0 {
		return nil
	}
	start := len(b.samples) - n
	if start < 0 {
		start = 0
	}
	out := make([]float32, len(b.samples)-start)
	copy(out, b.samples[start:])
	return out
}

// Len reports the number of accumulated samples.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.samples)
}

// SetFormat records the device-reported sample rate and channel count.
func (b *Buffer) SetFormat(sampleRate int, channels int) {
	b.mu.Lock()
	b.sampleRate = sampleRate
	b.channels = channels
	b.mu.Unlock()
}

// Format returns the capture sample rate and channel count.
func (b *Buffer) Format() (sampleRate int, channels int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sampleRate, b.channels
}
