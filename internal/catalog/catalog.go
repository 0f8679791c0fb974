// Package catalog describes the known speech-to-text models and resolves
// their on-disk state. Model download itself is handled elsewhere; this
// package only answers what exists and where it lives.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Kind identifies which engine family runs a model.
type Kind string

const (
	// KindWhisper is the local encoder-decoder engine family.
	KindWhisper Kind = "whisper"
	// KindTransducer is the local streaming-transducer engine family.
	KindTransducer Kind = "transducer"
	// KindCloudOpenAI is the OpenAI-style remote HTTP engine.
	KindCloudOpenAI Kind = "cloud-openai"
	// KindCloudGroq is the Groq-style remote HTTP engine.
	KindCloudGroq Kind = "cloud-groq"
)

// Local reports whether the kind loads model files on this machine.
func (k Kind) Local() bool {
	return k == KindWhisper || k == KindTransducer
}

// ModelInfo is one immutable catalog entry.
type ModelInfo struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Kind         Kind     `yaml:"kind"`
	SizeBytes    int64    `yaml:"size_bytes"`
	DownloadURLs []string `yaml:"download_urls"`
	Files        []string `yaml:"files"`
	Languages    string   `yaml:"languages"`
	Description  string   `yaml:"description"`
}

// ErrUnknownModel indicates the model id is absent from the catalog.
var ErrUnknownModel = errors.New("catalog: unknown model")

//go:embed manifest.yaml
var embeddedManifest []byte

type manifest struct {
	Models []ModelInfo `yaml:"models"`
}

// Catalog resolves model metadata and downloaded state against a models
// directory.
type Catalog struct {
	modelsDir string
	models    []ModelInfo
	byID      map[string]ModelInfo
}

// New loads the embedded manifest rooted at modelsDir.
func New(modelsDir string) (*Catalog, error) {
	return fromManifest(embeddedManifest, modelsDir)
}

// Open loads a manifest file from disk instead of the embedded one, for
// deployments that maintain their own model list.
func Open(manifestPath string, modelsDir string) (*Catalog, error) {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest %q: %w", manifestPath, err)
	}
	return fromManifest(raw, modelsDir)
}

func fromManifest(raw []byte, modelsDir string) (*Catalog, error) {
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model manifest: %w", err)
	}
	if len(m.Models) == 0 {
		return nil, errors.New("model manifest lists no models")
	}

	byID := make(map[string]ModelInfo, len(m.Models))
	for _, model := range m.Models {
		if model.ID == "" {
			return nil, errors.New("model manifest entry missing id")
		}
		if _, dup := byID[model.ID]; dup {
			return nil, fmt.Errorf("model manifest has duplicate id %q", model.ID)
		}
		if model.Kind.Local() && len(model.Files) == 0 {
			return nil, fmt.Errorf("local model %q lists no files", model.ID)
		}
		byID[model.ID] = model
	}

	return &Catalog{modelsDir: modelsDir, models: m.Models, byID: byID}, nil
}

// List returns all catalog entries in manifest order.
func (c *Catalog) List() []ModelInfo {
	out := make([]ModelInfo, len(c.models))
	copy(out, c.models)
	return out
}

// Lookup resolves a model id.
func (c *Catalog) Lookup(modelID string) (ModelInfo, error) {
	model, ok := c.byID[modelID]
	if !ok {
		return ModelInfo{}, fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}
	return model, nil
}

// IsDownloaded reports whether every required file for the model exists on
// disk. Remote kinds have no files and always count as present.
func (c *Catalog) IsDownloaded(model ModelInfo) bool {
	if !model.Kind.Local() {
		return true
	}
	dir := c.ResolvePath(model.ID)
	for _, file := range model.Files {
		if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
			return false
		}
	}
	return true
}

// ResolvePath returns the directory holding a model's files.
func (c *Catalog) ResolvePath(modelID string) string {
	return filepath.Join(c.modelsDir, modelID)
}
