package doctor

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dotyigit/sobottaai/internal/config"
	"github.com/dotyigit/sobottaai/internal/ipc"
)

func TestReportString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "config", Pass: true, Message: "loaded"},
		{Name: "stt.model", Pass: false, Message: "missing files"},
	}}

	out := report.String()
	require.Contains(t, out, "[OK] config: loaded")
	require.Contains(t, out, "[FAIL] stt.model: missing files")
	require.False(t, report.OK())
}

func TestCheckConfigValidationFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Hotkey.Mode = "bogus"

	check := checkConfig(config.Loaded{Path: "/tmp/config.yaml", Config: cfg, Exists: true})
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "hotkey.mode")
}

func TestCheckConfigDefaultsReportMissingFile(t *testing.T) {
	check := checkConfig(config.Loaded{Path: "/tmp/config.yaml", Config: config.Default(), Exists: false})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "running on defaults")
}

func TestCheckModelUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.STT.Model = "no-such-model"
	cfg.Models.Dir = t.TempDir()

	check := checkModel(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "no-such-model")
}

func TestCheckModelNotDownloaded(t *testing.T) {
	cfg := config.Default()
	cfg.Models.Dir = t.TempDir()

	check := checkModel(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "missing files")
}

func TestCheckModelDownloaded(t *testing.T) {
	dir := t.TempDir()
	modelDir := filepath.Join(dir, "whisper-base")
	require.NoError(t, os.MkdirAll(modelDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "ggml-base.bin"), []byte("x"), 0o600))

	cfg := config.Default()
	cfg.Models.Dir = dir

	check := checkModel(cfg)
	require.True(t, check.Pass)
}

func TestCheckModelCloudNeedsKey(t *testing.T) {
	cfg := config.Default()
	cfg.STT.Model = "cloud-groq"
	cfg.Models.Dir = t.TempDir()

	check := checkModel(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "api_key")

	cfg.Remote.Groq.APIKey = "gsk-test"
	check = checkModel(cfg)
	require.True(t, check.Pass)
}

func TestCheckDaemonSocketStates(t *testing.T) {
	runtimeDir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)

	// No socket file: fine, daemon just is not running.
	check := checkDaemonSocket(context.Background())
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "no daemon running")

	// Responsive socket: daemon alive.
	socketPath := filepath.Join(runtimeDir, "sobotta.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- ipc.Serve(ctx, listener, ipc.HandlerFunc(func(context.Context, ipc.Request) ipc.Response {
			return ipc.Response{OK: true, State: "idle"}
		}))
	}()

	require.Eventually(t, func() bool {
		return checkDaemonSocket(context.Background()).Pass
	}, time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-serveDone)

	// Dead socket file left behind: stale.
	require.NoError(t, os.WriteFile(socketPath, nil, 0o600))
	check = checkDaemonSocket(context.Background())
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "stale socket")
}
