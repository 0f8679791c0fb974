package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotyigit/sobottaai/internal/cli"
	"github.com/dotyigit/sobottaai/internal/ipc"
	"github.com/dotyigit/sobottaai/internal/version"
)

func TestExecuteHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := Execute(context.Background(), nil, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "Usage:")
	require.Contains(t, stdout.String(), "daemon")
}

func TestExecuteVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := Execute(context.Background(), []string{"--version"}, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), version.Version)
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := Execute(context.Background(), []string{"shout"}, &stdout, &stderr)
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "unknown command")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestExecuteStatusWithoutDaemon(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"status"}, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "idle")
}

func TestExecuteForwardWithoutDaemonFails(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), []string{"key-down"}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "no sobotta daemon running")
}

func TestBuildRequestMapsArguments(t *testing.T) {
	tests := []struct {
		name   string
		parsed cli.Parsed
		want   ipc.Request
	}{
		{
			name:   "set-mode",
			parsed: cli.Parsed{Command: cli.CommandSetMode, Args: []string{"toggle"}},
			want:   ipc.Request{Command: "set-mode", Mode: "toggle"},
		},
		{
			name:   "rebind",
			parsed: cli.Parsed{Command: cli.CommandRebind, Args: []string{"SUPER+T"}},
			want:   ipc.Request{Command: "rebind", Binding: "SUPER+T"},
		},
		{
			name:   "import",
			parsed: cli.Parsed{Command: cli.CommandImport, Args: []string{"/tmp/a.wav"}},
			want:   ipc.Request{Command: "import", Path: "/tmp/a.wav"},
		},
		{
			name:   "transcribe session only",
			parsed: cli.Parsed{Command: cli.CommandTranscribe, Args: []string{"sid"}},
			want:   ipc.Request{Command: "transcribe", SessionID: "sid"},
		},
		{
			name:   "transcribe with model",
			parsed: cli.Parsed{Command: cli.CommandTranscribe, Args: []string{"sid", "whisper-base"}},
			want:   ipc.Request{Command: "transcribe", SessionID: "sid", ModelID: "whisper-base"},
		},
		{
			name:   "evict",
			parsed: cli.Parsed{Command: cli.CommandEvict, Args: []string{"whisper-base"}},
			want:   ipc.Request{Command: "evict", ModelID: "whisper-base"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, buildRequest(tc.parsed))
		})
	}
}
