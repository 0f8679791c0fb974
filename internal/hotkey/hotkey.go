// Package hotkey maps physical key events onto the recording lifecycle. The
// OS-level key grab lives outside the daemon (the compositor keybind invokes
// the CLI); this package owns the mode logic, the state machine, and binding
// management.
package hotkey

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dotyigit/sobottaai/internal/fsm"
	"github.com/dotyigit/sobottaai/internal/notify"
	"github.com/dotyigit/sobottaai/internal/record"
)

// Mode selects which key transitions drive recording.
type Mode string

const (
	// ModePushToTalk records while the key is held.
	ModePushToTalk Mode = "push-to-talk"
	// ModeToggle starts on one press and stops on the next; key-up is
	// ignored.
	ModeToggle Mode = "toggle"
)

// ParseMode validates a mode name from config or IPC.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePushToTalk, ModeToggle:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown hotkey mode %q", s)
	}
}

// Recorder is the lifecycle surface the controller drives.
type Recorder interface {
	Start() error
	Stop() (record.StopResult, error)
}

// Registrar registers bindings with whatever grabs keys system-wide. A nil
// registrar means registration is managed externally and only the parsed
// binding is tracked.
type Registrar interface {
	Register(Binding) error
	Unregister(Binding) error
}

// Controller is the hotkey state machine. Mode is shared mutable state read
// at event time, so a mode change applies to the very next key event.
type Controller struct {
	logger    *slog.Logger
	recorder  Recorder
	sink      notify.Sink
	registrar Registrar

	mu      sync.Mutex
	mode    Mode
	state   fsm.State
	binding Binding
}

func NewController(recorder Recorder, sink notify.Sink, mode Mode, binding Binding, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = notify.NoopSink{}
	}
	return &Controller{
		logger:   logger,
		recorder: recorder,
		sink:     sink,
		mode:     mode,
		state:    fsm.StateIdle,
		binding:  binding,
	}
}

// SetRegistrar wires an OS-level key grabber. Optional.
func (c *Controller) SetRegistrar(r Registrar) {
	c.mu.Lock()
	c.registrar = r
	c.mu.Unlock()
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Controller) SetMode(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	c.logger.Info("hotkey mode changed", "mode", string(mode))
	return nil
}

func (c *Controller) State() fsm.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Binding() Binding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.binding
}

// Rebind parses and validates a new binding spec before touching the old
// registration, so an invalid spec never leaves the hotkey unbound.
func (c *Controller) Rebind(spec string) error {
	binding, err := ParseBinding(spec)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registrar != nil {
		if err := c.registrar.Register(binding); err != nil {
			return fmt.Errorf("%w: register %s: %v", ErrInvalidBinding, binding, err)
		}
		if err := c.registrar.Unregister(c.binding); err != nil {
			c.logger.Warn("old binding unregister failed", "binding", c.binding.String(), "error", err)
		}
	}

	old := c.binding
	c.binding = binding
	c.logger.Info("hotkey rebound", "old", old.String(), "new", binding.String())
	return nil
}

// KeyDown handles a physical key press according to the current mode.
func (c *Controller) KeyDown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case ModeToggle:
		if c.state == fsm.StateRecording {
			c.stopLocked()
			return
		}
		c.startLocked()
	default: // push-to-talk
		if c.state == fsm.StateIdle {
			c.startLocked()
		}
	}
}

// KeyUp handles a physical key release. Only meaningful in push-to-talk
// mode; a release while idle is a no-op.
func (c *Controller) KeyUp() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModePushToTalk {
		return
	}
	if c.state != fsm.StateRecording {
		return
	}
	c.stopLocked()
}

// startLocked attempts to begin recording. A failed start leaves the state
// machine in Idle so the next key event can retry.
func (c *Controller) startLocked() {
	if err := c.recorder.Start(); err != nil {
		c.logger.Error("hotkey start failed", "error", err)
		c.sink.RecordingError(err.Error())
		c.state = fsm.StateIdle
		return
	}
	next, err := fsm.Transition(c.state, fsm.EventStart)
	if err != nil {
		c.logger.Error("hotkey state transition failed", "state", string(c.state), "error", err)
		return
	}
	c.state = next
}

// stopLocked ends the recording. Even on failure the state returns to Idle
// and a reset event fires so indicator UI cannot stay stuck on "recording".
func (c *Controller) stopLocked() {
	result, err := c.recorder.Stop()
	if err != nil {
		c.logger.Error("hotkey stop failed", "error", err)
		c.sink.RecordingReset()
		c.state = fsm.StateIdle
		return
	}
	next, terr := fsm.Transition(c.state, fsm.EventStop)
	if terr != nil {
		c.logger.Error("hotkey state transition failed", "state", string(c.state), "error", terr)
		c.state = fsm.StateIdle
		return
	}
	c.state = next
	c.logger.Info("hotkey stop completed", "session_id", result.SessionID, "duration_ms", result.DurationMS)
}
