//go:build !whispercpp

package stt

import (
	"fmt"

	"github.com/dotyigit/sobottaai/internal/catalog"
)

// newWhisperEngine reports the backend missing when the binary was built
// without the whispercpp tag.
func newWhisperEngine(model catalog.ModelInfo, modelDir string) (Engine, error) {
	return nil, fmt.Errorf("%w: whisper backend not compiled in (build with -tags whispercpp)", ErrEngineUnavailable)
}
