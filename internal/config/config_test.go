package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathExplicitWins(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	path, err := ResolvePath("/tmp/custom.yaml")
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.yaml", path)
}

func TestResolvePathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	path, err := ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, "/xdg/sobotta/config.yaml", path)
}

func TestResolvePathHomeFallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/tester")

	path, err := ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, "/home/tester/.config/sobotta/config.yaml", path)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
audio:
  input: "alsa_input.usb-mic"
  format: s16
stt:
  model: parakeet-tdt-0.6b-v2
hotkey:
  mode: toggle
remote:
  groq:
    api_key: gsk-test
vocab:
  global: [dev]
  sets:
    dev: [Kubernetes, PostgreSQL]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)

	cfg := loaded.Config
	require.Equal(t, "alsa_input.usb-mic", cfg.Audio.Input)
	require.Equal(t, "s16", cfg.Audio.Format)
	require.Equal(t, "parakeet-tdt-0.6b-v2", cfg.STT.Model)
	require.Equal(t, "toggle", cfg.Hotkey.Mode)
	require.Equal(t, "gsk-test", cfg.Remote.Groq.APIKey)

	// Untouched keys keep their defaults.
	require.Equal(t, "auto", cfg.STT.Language)
	require.Equal(t, "SUPER+R", cfg.Hotkey.Binding)
	require.Equal(t, "https://api.groq.com/openai/v1/audio/transcriptions", cfg.Remote.Groq.Endpoint)
	require.True(t, cfg.Meter.Enable)
	require.Equal(t, []string{"wl-copy"}, cfg.Output.Clipboard)
	require.Equal(t, "sobotta", cfg.Notify.AppName)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audio: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audoi:\n  input: default\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
}

func TestValidateDefaultsPass(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	// Only the unset api_key warnings.
	require.Len(t, warnings, 2)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "empty input", mutate: func(c *Config) { c.Audio.Input = " " }, want: "audio.input"},
		{name: "bad format", mutate: func(c *Config) { c.Audio.Format = "u8" }, want: "audio.format"},
		{name: "empty model", mutate: func(c *Config) { c.STT.Model = "" }, want: "stt.model"},
		{name: "empty language", mutate: func(c *Config) { c.STT.Language = "" }, want: "stt.language"},
		{name: "bad mode", mutate: func(c *Config) { c.Hotkey.Mode = "hold" }, want: "hotkey.mode"},
		{name: "empty binding", mutate: func(c *Config) { c.Hotkey.Binding = "" }, want: "hotkey.binding"},
		{name: "meter interval", mutate: func(c *Config) { c.Meter.IntervalMS = 0 }, want: "meter.interval_ms"},
		{name: "meter window", mutate: func(c *Config) { c.Meter.Window = -1 }, want: "meter.window"},
		{name: "empty endpoint", mutate: func(c *Config) { c.Remote.OpenAI.Endpoint = "" }, want: "endpoint"},
		{name: "negative timeout", mutate: func(c *Config) { c.Remote.Groq.TimeoutMS = -1 }, want: "timeout_ms"},
		{name: "zero max terms", mutate: func(c *Config) { c.Vocab.MaxTerms = 0 }, want: "vocab.max_terms"},
		{name: "output without clipboard", mutate: func(c *Config) {
			c.Output.Enable = true
			c.Output.Clipboard = nil
		}, want: "output.clipboard"},
		{name: "notify without app name", mutate: func(c *Config) {
			c.Notify.Desktop = true
			c.Notify.AppName = " "
		}, want: "notify.app_name"},
		{name: "unknown vocab set", mutate: func(c *Config) { c.Vocab.Global = []string{"nope"} }, want: "unknown set"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBuildVocabularyOrderAndDedupe(t *testing.T) {
	cfg := Default()
	cfg.Vocab.Global = []string{"infra", "langs"}
	cfg.Vocab.Sets = map[string][]string{
		"infra": {"Kubernetes", "PostgreSQL", " "},
		"langs": {"Go", "Kubernetes"},
	}

	terms, warnings, err := BuildVocabulary(cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"Kubernetes", "PostgreSQL", "Go"}, terms)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "Kubernetes")
}

func TestBuildVocabularyCapEnforced(t *testing.T) {
	cfg := Default()
	cfg.Vocab.MaxTerms = 1
	cfg.Vocab.Global = []string{"s"}
	cfg.Vocab.Sets = map[string][]string{"s": {"a", "b"}}

	_, _, err := BuildVocabulary(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max_terms")
}

func TestBuildVocabularyEmptyWhenNoGlobalSets(t *testing.T) {
	terms, warnings, err := BuildVocabulary(Default())
	require.NoError(t, err)
	require.Nil(t, terms)
	require.Nil(t, warnings)
}
