// Package doctor runs runtime readiness diagnostics for config, audio,
// models, and the daemon socket.
package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dotyigit/sobottaai/internal/audio"
	"github.com/dotyigit/sobottaai/internal/catalog"
	"github.com/dotyigit/sobottaai/internal/config"
	"github.com/dotyigit/sobottaai/internal/ipc"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, checkConfig(cfg))
	checks = append(checks, checkAudioSelection(ctx, cfg.Config))
	checks = append(checks, checkModel(cfg.Config))
	checks = append(checks, checkDaemonSocket(ctx))

	return Report{Checks: checks}
}

// checkConfig reports validation failures against the loaded file.
func checkConfig(cfg config.Loaded) Check {
	warnings, err := config.Validate(cfg.Config)
	if err != nil {
		return Check{Name: "config", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		message = fmt.Sprintf("%q not found; running on defaults", cfg.Path)
	}
	if len(warnings) > 0 {
		message = fmt.Sprintf("%s (%d warning(s))", message, len(warnings))
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkAudioSelection runs live device selection to surface fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	device, err := audio.SelectInput(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	return Check{
		Name:    "audio.device",
		Pass:    true,
		Message: fmt.Sprintf("selected %q (%d Hz, %d ch)", device.ID, device.SampleRate, device.Channels),
	}
}

// checkModel verifies the configured default model resolves and, for local
// kinds, that its files are on disk.
func checkModel(cfg config.Config) Check {
	modelsDir := cfg.Models.Dir
	if strings.TrimSpace(modelsDir) == "" {
		resolved, err := config.DefaultModelsDir()
		if err != nil {
			return Check{Name: "stt.model", Pass: false, Message: err.Error()}
		}
		modelsDir = resolved
	}

	cat, err := catalog.New(modelsDir)
	if err != nil {
		return Check{Name: "stt.model", Pass: false, Message: fmt.Sprintf("load catalog: %v", err)}
	}

	model, err := cat.Lookup(cfg.STT.Model)
	if err != nil {
		return Check{Name: "stt.model", Pass: false, Message: err.Error()}
	}
	if !model.Kind.Local() {
		key := cfg.Remote.OpenAI.APIKey
		if model.Kind == catalog.KindCloudGroq {
			key = cfg.Remote.Groq.APIKey
		}
		if key == "" {
			return Check{Name: "stt.model", Pass: false, Message: fmt.Sprintf("%q is a cloud model but its api_key is unset", model.ID)}
		}
		return Check{Name: "stt.model", Pass: true, Message: fmt.Sprintf("%q ready (cloud)", model.ID)}
	}
	if !cat.IsDownloaded(model) {
		return Check{Name: "stt.model", Pass: false, Message: fmt.Sprintf("%q missing files under %s", model.ID, cat.ResolvePath(model.ID))}
	}
	return Check{Name: "stt.model", Pass: true, Message: fmt.Sprintf("%q downloaded at %s", model.ID, cat.ResolvePath(model.ID))}
}

// checkDaemonSocket reports whether a live daemon is reachable.
func checkDaemonSocket(ctx context.Context) Check {
	path, err := ipc.RuntimeSocketPath()
	if err != nil {
		return Check{Name: "daemon.socket", Pass: false, Message: err.Error()}
	}

	if _, statErr := os.Stat(path); statErr != nil {
		return Check{Name: "daemon.socket", Pass: true, Message: fmt.Sprintf("no daemon running (%s absent)", path)}
	}

	alive, probeErr := ipc.Probe(ctx, path, 200*time.Millisecond)
	if probeErr != nil {
		return Check{Name: "daemon.socket", Pass: false, Message: fmt.Sprintf("probe %s: %v", path, probeErr)}
	}
	if alive {
		return Check{Name: "daemon.socket", Pass: true, Message: fmt.Sprintf("daemon responding at %s", path)}
	}
	return Check{Name: "daemon.socket", Pass: false, Message: fmt.Sprintf("stale socket at %s", path)}
}
