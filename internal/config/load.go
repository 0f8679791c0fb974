package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Loaded captures resolved config path, parsed values, and non-fatal
// warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, and strictly parses the runtime configuration.
// Values absent from the file keep their defaults; unknown keys are
// rejected so a typo cannot silently fall back to a default.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	content, err := os.ReadFile(resolvedPath)
	if errors.Is(err, os.ErrNotExist) {
		missing := Warning{Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath)}
		return Loaded{Path: resolvedPath, Config: Default(), Warnings: []Warning{missing}}, nil
	}
	if err != nil {
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	cfg, err := parse(content)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	return Loaded{Path: resolvedPath, Config: cfg, Exists: true}, nil
}

func parse(content []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file keeps all defaults.
			return cfg, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
