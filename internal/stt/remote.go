package stt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/dotyigit/sobottaai/internal/dsp"
	"github.com/dotyigit/sobottaai/internal/wav"
)

const defaultRemoteTimeout = 60 * time.Second

// remoteEngine uploads audio as a WAV byte stream to an OpenAI-compatible
// transcription endpoint. Groq exposes the same API shape, so both remote
// kinds share this implementation.
type remoteEngine struct {
	name   string
	cfg    RemoteConfig
	client *http.Client
}

func newRemoteEngine(name string, cfg RemoteConfig) *remoteEngine {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &remoteEngine{
		name:   name,
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (e *remoteEngine) Name() string {
	return e.name
}

// remoteResponse is the verbose_json payload shape shared by OpenAI and Groq.
type remoteResponse struct {
	Text     string  `json:"text"`
	Language *string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (e *remoteEngine) Transcribe(audio []float32, opts Options) (Result, error) {
	start := time.Now()

	wavBytes, err := wav.EncodeBytes(audio, dsp.TargetRate)
	if err != nil {
		return Result{}, fmt.Errorf("encode wav: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return Result{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wavBytes); err != nil {
		return Result{}, fmt.Errorf("write form file: %w", err)
	}

	_ = writer.WriteField("model", e.cfg.Model)
	_ = writer.WriteField("response_format", "verbose_json")
	if lang := strings.TrimSpace(opts.Language); lang != "" && lang != "auto" {
		_ = writer.WriteField("language", lang)
	}
	if len(opts.Vocabulary) > 0 {
		_ = writer.WriteField("prompt", strings.Join(opts.Vocabulary, ", "))
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.cfg.Endpoint, body)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("post %s: %w", e.cfg.Endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &RemoteAPIError{
			Status:  resp.StatusCode,
			Message: strings.TrimSpace(string(respBody)),
		}
	}

	var payload remoteResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	segments := make([]Segment, 0, len(payload.Segments))
	for _, s := range payload.Segments {
		segments = append(segments, Segment{
			StartMS: int64(s.Start * 1000),
			EndMS:   int64(s.End * 1000),
			Text:    s.Text,
		})
	}

	result := Result{
		Text:       payload.Text,
		Segments:   segments,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if payload.Language != nil {
		result.Language = *payload.Language
	}
	return result, nil
}
