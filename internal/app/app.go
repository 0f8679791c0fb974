// Package app wires configuration, audio, engines, and IPC into the sobotta
// process entrypoints.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/dotyigit/sobottaai/internal/audio"
	"github.com/dotyigit/sobottaai/internal/catalog"
	"github.com/dotyigit/sobottaai/internal/cli"
	"github.com/dotyigit/sobottaai/internal/config"
	"github.com/dotyigit/sobottaai/internal/doctor"
	"github.com/dotyigit/sobottaai/internal/ipc"
	"github.com/dotyigit/sobottaai/internal/logging"
	"github.com/dotyigit/sobottaai/internal/version"
)

const forwardTimeout = 5 * time.Second

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("sobotta"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("sobotta"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDaemon:
		return r.commandDaemon(ctx, cfgLoaded, logger)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandModels:
		return r.commandModels(cfgLoaded.Config)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	default:
		return r.forward(ctx, buildRequest(parsed))
	}
}

// buildRequest maps parsed CLI arguments onto the daemon wire request.
func buildRequest(parsed cli.Parsed) ipc.Request {
	req := ipc.Request{Command: string(parsed.Command)}
	switch parsed.Command {
	case cli.CommandSetMode:
		req.Mode = parsed.Args[0]
	case cli.CommandRebind:
		req.Binding = parsed.Args[0]
	case cli.CommandImport:
		req.Path = parsed.Args[0]
	case cli.CommandTranscribe:
		req.SessionID = parsed.Args[0]
		if len(parsed.Args) > 1 {
			req.ModelID = parsed.Args[1]
		}
	case cli.CommandEvict:
		req.ModelID = parsed.Args[0]
	}
	return req
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | rate=%d | channels=%d | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.SampleRate,
			device.Channels,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandModels(cfg config.Config) int {
	modelsDir, err := resolveModelsDir(cfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	cat, err := catalog.New(modelsDir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	for _, model := range cat.List() {
		state := "remote"
		if model.Kind.Local() {
			state = "not downloaded"
			if cat.IsDownloaded(model) {
				state = "downloaded"
			}
		}
		defaultMark := " "
		if model.ID == cfg.STT.Model {
			defaultMark = "*"
		}
		fmt.Fprintf(r.Stdout, "%s %-24s kind=%-12s %s\n", defaultMark, model.ID, model.Kind, state)
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: "status"})
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

// forward sends a request to the running daemon and renders the response.
func (r Runner) forward(ctx context.Context, req ipc.Request) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, req)
	if !handled {
		fmt.Fprintln(r.Stderr, "error: no sobotta daemon running (start one with `sobotta daemon`)")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	r.render(resp)
	return 0
}

// render prints whichever payload the daemon returned.
func (r Runner) render(resp ipc.Response) {
	switch {
	case resp.Transcript != nil:
		text := strings.TrimSpace(resp.Transcript.Text)
		if text == "" {
			fmt.Fprintln(r.Stdout, "(no speech detected)")
			return
		}
		fmt.Fprintln(r.Stdout, text)
	case resp.Stop != nil:
		fmt.Fprintf(r.Stdout, "session=%s duration_ms=%d samples=%d\n",
			resp.Stop.SessionID, resp.Stop.DurationMS, resp.Stop.SampleCount)
	case resp.Message != "":
		fmt.Fprintln(r.Stdout, resp.Message)
	}
}

func (r Runner) commandDaemon(ctx context.Context, cfgLoaded config.Loaded, logger *slog.Logger) int {
	warnings, err := config.Validate(cfgLoaded.Config)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: invalid config: %v\n", err)
		logger.Error("config validation failed", "error", err.Error())
		return 1
	}
	for _, w := range warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: sobotta daemon already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	daemon, err := newDaemon(cfgLoaded.Config, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("daemon setup failed", "error", err.Error())
		return 1
	}

	logger.Info("daemon listening", "socket", socketPath)
	if err := daemon.Run(ctx, listener); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("daemon stopped with error", "error", err.Error())
		return 1
	}

	logger.Info("daemon shut down")
	return 0
}

func tryForward(ctx context.Context, socketPath string, req ipc.Request) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, forwardTimeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) || isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
