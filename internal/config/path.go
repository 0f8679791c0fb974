package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath applies CLI/XDG/home fallback rules for config.yaml location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "sobotta", "config.yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", "sobotta", "config.yaml"), nil
}

// DefaultModelsDir resolves where downloaded model files live when
// models.dir is unset.
func DefaultModelsDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "sobotta", "models"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for models dir fallback")
	}

	return filepath.Join(home, ".local", "share", "sobotta", "models"), nil
}

// DefaultArtifactsDir resolves where session WAV artifacts land when
// artifacts.dir is unset.
func DefaultArtifactsDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "sobotta", "audio"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for artifacts dir fallback")
	}

	return filepath.Join(home, ".local", "state", "sobotta", "audio"), nil
}
