package audio

import (
	"sync"
	"time"

	"github.com/dotyigit/sobottaai/internal/dsp"
)

const (
	// DefaultMeterInterval is how often the level meter samples the buffer.
	DefaultMeterInterval = 50 * time.Millisecond
	// DefaultMeterWindow bounds the trailing window read per tick.
	DefaultMeterWindow = 4096
)

// Meter periodically reads a trailing window of the shared buffer and emits
// its RMS as a coarse loudness value for UI feedback. It never mutates the
// buffer and stopping the recorder never waits on it.
type Meter struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartMeter begins metering buf on its own goroutine. emit is invoked once
// per tick with the current window RMS.
func StartMeter(buf *Buffer, interval time.Duration, window int, emit func(float64)) *Meter {
	if interval <= 0 {
		interval = DefaultMeterInterval
	}
	if window <= 0 {
		window = DefaultMeterWindow
	}

	m := &Meter{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				emit(dsp.RMSEnergy(buf.Window(window)))
			}
		}
	}()

	return m
}

// Stop signals the meter goroutine. It does not wait: a late final tick is
// harmless and the recorder's stop path must never block on metering.
func (m *Meter) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Done is closed once the meter goroutine has exited.
func (m *Meter) Done() <-chan struct{} {
	return m.done
}
