//go:build sherpaonnx

package stt

/*
#cgo CFLAGS: -I${SRCDIR}/../../third_party/sherpa-onnx/include
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/sherpa-onnx/lib -Wl,-rpath,${SRCDIR}/../../third_party/sherpa-onnx/lib -lsherpa-onnx-c-api -lonnxruntime -lstdc++ -lm

#include "stdlib.h"
#include "sherpa-onnx/c-api/c-api.h"
*/
import "C"

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unsafe"

	"github.com/dotyigit/sobottaai/internal/catalog"
	"github.com/dotyigit/sobottaai/internal/dsp"
)

// transducerEngine runs a NeMo transducer model (encoder/decoder/joiner ONNX
// triplet) through the sherpa-onnx offline recognizer. Callers must serialize
// Transcribe.
type transducerEngine struct {
	name       string
	recognizer *C.SherpaOnnxOfflineRecognizer
}

func newTransducerEngine(model catalog.ModelInfo, modelDir string) (Engine, error) {
	if len(model.Files) < 4 {
		return nil, fmt.Errorf("%w: model %s needs encoder, decoder, joiner, and tokens files", ErrEngineLoad, model.ID)
	}

	encoder := C.CString(filepath.Join(modelDir, model.Files[0]))
	decoder := C.CString(filepath.Join(modelDir, model.Files[1]))
	joiner := C.CString(filepath.Join(modelDir, model.Files[2]))
	tokens := C.CString(filepath.Join(modelDir, model.Files[3]))
	modelType := C.CString("nemo_transducer")
	provider := C.CString("cpu")
	decoding := C.CString("greedy_search")
	defer func() {
		C.free(unsafe.Pointer(encoder))
		C.free(unsafe.Pointer(decoder))
		C.free(unsafe.Pointer(joiner))
		C.free(unsafe.Pointer(tokens))
		C.free(unsafe.Pointer(modelType))
		C.free(unsafe.Pointer(provider))
		C.free(unsafe.Pointer(decoding))
	}()

	threads := runtime.NumCPU()
	if threads > 8 {
		threads = 8
	}

	var config C.SherpaOnnxOfflineRecognizerConfig
	config.feat_config.sample_rate = C.int(dsp.TargetRate)
	config.feat_config.feature_dim = 80
	config.model_config.transducer.encoder = encoder
	config.model_config.transducer.decoder = decoder
	config.model_config.transducer.joiner = joiner
	config.model_config.tokens = tokens
	config.model_config.num_threads = C.int(threads)
	config.model_config.provider = provider
	config.model_config.model_type = modelType
	config.decoding_method = decoding

	recognizer := C.SherpaOnnxCreateOfflineRecognizer(&config)
	if recognizer == nil {
		return nil, fmt.Errorf("%w: sherpa-onnx recognizer init failed for %s", ErrEngineLoad, model.ID)
	}
	return &transducerEngine{name: model.ID, recognizer: recognizer}, nil
}

func (e *transducerEngine) Name() string {
	return e.name
}

func (e *transducerEngine) Transcribe(audio []float32, opts Options) (Result, error) {
	if len(audio) == 0 {
		return Result{}, ErrEmptyAudio
	}
	start := time.Now()

	stream := C.SherpaOnnxCreateOfflineStream(e.recognizer)
	if stream == nil {
		return Result{}, fmt.Errorf("sherpa-onnx stream creation failed")
	}
	defer C.SherpaOnnxDestroyOfflineStream(stream)

	C.SherpaOnnxAcceptWaveformOffline(stream, C.int(dsp.TargetRate), (*C.float)(unsafe.Pointer(&audio[0])), C.int(len(audio)))
	C.SherpaOnnxDecodeOfflineStream(e.recognizer, stream)

	raw := C.SherpaOnnxGetOfflineStreamResult(stream)
	defer C.SherpaOnnxDestroyOfflineRecognizerResult(raw)

	text := strings.TrimSpace(C.GoString(raw.text))
	audioMS := int64(len(audio)) * 1000 / dsp.TargetRate

	// The transducer decodes the whole utterance at once, so the result is
	// one segment spanning the full clip.
	segments := []Segment{}
	if text != "" {
		segments = append(segments, Segment{StartMS: 0, EndMS: audioMS, Text: text})
	}

	return Result{
		Text:       text,
		Language:   "en",
		Segments:   segments,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}
