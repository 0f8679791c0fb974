//go:build whispercpp

package stt

/*
#cgo CFLAGS: -I${SRCDIR}/../../third_party/whisper.cpp -I${SRCDIR}/../../third_party/whisper.cpp/include -I${SRCDIR}/../../third_party/whisper.cpp/ggml/include
#cgo CXXFLAGS: -std=c++17 -I${SRCDIR}/../../third_party/whisper.cpp -I${SRCDIR}/../../third_party/whisper.cpp/include -I${SRCDIR}/../../third_party/whisper.cpp/ggml/include
#cgo LDFLAGS: -L${SRCDIR}/../../third_party/whisper.cpp/build -L${SRCDIR}/../../third_party/whisper.cpp/build/src -Wl,-rpath,${SRCDIR}/../../third_party/whisper.cpp/build/src -lwhisper -lstdc++ -lm

#include "stdlib.h"
#include "include/whisper.h"
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
)

// whisperEngine runs a ggml whisper model through whisper.cpp. Callers must
// serialize Transcribe; the context is not safe for concurrent inference.
type whisperEngine struct {
	name string
	ctx  *C.struct_whisper_context
}

func newWhisperEngine(model catalog.ModelInfo, modelDir string) (Engine, error) {
	if len(model.Files) == 0 {
		return nil, fmt.Errorf("%w: model %s lists no files", ErrEngineLoad, model.ID)
	}
	path := filepath.Join(modelDir, model.Files[0])

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	cParams := C.whisper_context_default_params()

	ctx := C.whisper_init_from_file_with_params(cPath, cParams)
	if ctx == nil {
		return nil, fmt.Errorf("%w: whisper context init failed for %s", ErrEngineLoad, path)
	}
	return &whisperEngine{name: model.ID, ctx: ctx}, nil
}

func (e *whisperEngine) Name() string {
	return e.name
}

func (e *whisperEngine) Transcribe(audio []float32, opts Options) (Result, error) {
	if len(audio) == 0 {
		return Result{}, ErrEmptyAudio
	}
	start := time.Now()

	params := C.whisper_full_default_params(C.WHISPER_SAMPLING_GREEDY)
	params.print_progress = C.bool(false)
	params.print_realtime = C.bool(false)
	params.print_timestamps = C.bool(false)
	params.translate = C.bool(false)
	params.no_context = C.bool(true)

	threads := runtime.NumCPU()
	if threads > 8 {
		threads = 8
	}
	params.n_threads = C.int(threads)

	lang := strings.TrimSpace(opts.Language)
	if lang == "" {
		lang = "auto"
	}
	cLang := C.CString(lang)
	defer C.free(unsafe.Pointer(cLang))
	params.language = cLang

	var cPrompt *C.char
	if len(opts.Vocabulary) > 0 {
		cPrompt = C.CString(strings.Join(opts.Vocabulary, ", "))
		defer C.free(unsafe.Pointer(cPrompt))
		params.initial_prompt = cPrompt
	}

	cSamples := (*C.float)(unsafe.Pointer(&audio[0]))
	if ret := C.whisper_full(e.ctx, params, cSamples, C.int(len(audio))); ret != 0 {
		return Result{}, fmt.Errorf("whisper_full failed with code %d", int(ret))
	}

	count := int(C.whisper_full_n_segments(e.ctx))
	segments := make([]Segment, 0, count)
	var text strings.Builder
	for i := 0; i < count; i++ {
		seg := strings.TrimSpace(C.GoString(C.whisper_full_get_segment_text(e.ctx, C.int(i))))
		if seg == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(seg)
		segments = append(segments, Segment{
			// whisper.cpp reports timestamps in centiseconds.
			StartMS: int64(C.whisper_full_get_segment_t0(e.ctx, C.int(i))) * 10,
			EndMS:   int64(C.whisper_full_get_segment_t1(e.ctx, C.int(i))) * 10,
			Text:    seg,
		})
	}

	detected := lang
	if lang == "auto" {
		detected = C.GoString(C.whisper_lang_str(C.whisper_full_lang_id(e.ctx)))
	}

	return Result{
		Text:       text.String(),
		Language:   detected,
		Segments:   segments,
		DurationMS: time.Since(start).Milliseconds(),
	}, nil
}
