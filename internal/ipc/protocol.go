package ipc

// Request is one daemon command. Only the fields relevant to the command are
// set.
type Request struct {
	Command   string `json:"command"`
	Path      string `json:"path,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	ModelID   string `json:"model_id,omitempty"`
	Language  string `json:"language,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Binding   string `json:"binding,omitempty"`
}

// StopPayload reports one finished recording session.
type StopPayload struct {
	SessionID   string `json:"session_id"`
	DurationMS  int64  `json:"duration_ms"`
	SampleCount int    `json:"sample_count"`
}

// SegmentPayload is one timed transcript span.
type SegmentPayload struct {
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

// TranscriptPayload is the full transcription result for one session.
type TranscriptPayload struct {
	Text       string           `json:"text"`
	Language   string           `json:"language,omitempty"`
	Segments   []SegmentPayload `json:"segments"`
	DurationMS int64            `json:"duration_ms"`
}

type Response struct {
	OK         bool               `json:"ok"`
	State      string             `json:"state,omitempty"`
	Message    string             `json:"message,omitempty"`
	Error      string             `json:"error,omitempty"`
	Stop       *StopPayload       `json:"stop,omitempty"`
	Transcript *TranscriptPayload `json:"transcript,omitempty"`
}
