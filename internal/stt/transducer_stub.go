//go:build !sherpaonnx

package stt

import (
	"fmt"

	"github.com/dotyigit/sobottaai/internal/catalog"
)

// newTransducerEngine reports the backend missing when the binary was built
// without the sherpaonnx tag.
func newTransducerEngine(model catalog.ModelInfo, modelDir string) (Engine, error) {
	return nil, fmt.Errorf("%w: transducer backend not compiled in (build with -tags sherpaonnx)", ErrEngineUnavailable)
}
