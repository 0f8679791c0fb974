package audio

import (
	"errors"
	"runtime"
	"sync"
	"time"
)

var (
	// ErrDeviceUnavailable indicates no usable input device could be opened.
	ErrDeviceUnavailable = errors.New("audio: input device unavailable")
	// ErrUnsupportedFormat indicates the device or configuration asked for a
	// sample encoding the capture path does not accept.
	ErrUnsupportedFormat = errors.New("audio: unsupported sample format")
)

// StreamInfo is the device-reported capture configuration.
type StreamInfo struct {
	SampleRate int
	Channels   int
}

// Stream is a live input stream. It must be closed on the goroutine that
// opened it.
type Stream interface {
	Info() StreamInfo
	Close() error
}

// Opener acquires an input stream on the calling goroutine, delivering
// decoded float32 sample chunks to onSamples until the stream is closed.
type Opener interface {
	Open(onSamples func([]float32)) (Stream, error)
}

// Session owns one recording's device lifecycle. The stream handle is not
// transferable between threads, so open, capture, and teardown all run on a
// single dedicated OS thread; Start only returns once that thread has the
// device open and its true format is known.
type Session struct {
	buf      *Buffer
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type initResult struct {
	info StreamInfo
	err  error
}

// Start spawns the capture thread and blocks on its initialization
// handshake. On success the buffer carries the device-reported format and is
// the same storage the capture thread appends into.
func Start(opener Opener, buf *Buffer) (*Session, error) {
	s := &Session{
		buf:  buf,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	initCh := make(chan initResult, 1)
	go s.run(opener, initCh)

	res := <-initCh
	if res.err != nil {
		return nil, res.err
	}
	buf.SetFormat(res.info.SampleRate, res.info.Channels)
	return s, nil
}

// run is the capture thread body: open the device, report the handshake,
// block until stopped, then drop the stream.
func (s *Session) run(opener Opener, initCh chan<- initResult) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(s.done)

	stream, err := opener.Open(s.buf.Append)
	if err != nil {
		initCh <- initResult{err: err}
		return
	}

	initCh <- initResult{info: stream.Info()}

	<-s.stop
	_ = stream.Close()
}

// Stop signals the capture thread and waits for it to acknowledge that the
// stream has been dropped, so every sample appended before the signal is
// visible to a subsequent Take. The wait is bounded by grace in case the
// device teardown wedges.
func (s *Session) Stop(grace time.Duration) {
	s.stopOnce.Do(func() { close(s.stop) })
	select {
	case <-s.done:
	case <-time.After(grace):
	}
}

// Done is closed once the capture thread has released the device.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
