// Package config resolves, parses, validates, and defaults sobotta
// configuration.
package config

// Config is the fully materialized runtime configuration used by sobotta.
type Config struct {
	Audio     AudioConfig     `yaml:"audio"`
	STT       STTConfig       `yaml:"stt"`
	Remote    RemoteConfig    `yaml:"remote"`
	Hotkey    HotkeyConfig    `yaml:"hotkey"`
	Meter     MeterConfig     `yaml:"meter"`
	Vocab     VocabConfig     `yaml:"vocab"`
	Output    OutputConfig    `yaml:"output"`
	Notify    NotifyConfig    `yaml:"notify"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Models    ModelsConfig    `yaml:"models"`
}

// AudioConfig controls input-source selection and the requested sample
// encoding.
type AudioConfig struct {
	Input    string `yaml:"input"`
	Fallback string `yaml:"fallback"`
	Format   string `yaml:"format"`
}

// STTConfig selects the default model and language hint.
type STTConfig struct {
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

// RemoteProviderConfig holds credentials and endpoint for one cloud STT
// provider.
type RemoteProviderConfig struct {
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// RemoteConfig groups the supported cloud providers.
type RemoteConfig struct {
	OpenAI RemoteProviderConfig `yaml:"openai"`
	Groq   RemoteProviderConfig `yaml:"groq"`
}

// HotkeyConfig controls the dictation key behavior.
type HotkeyConfig struct {
	Mode    string `yaml:"mode"`
	Binding string `yaml:"binding"`
}

// MeterConfig controls audio-level event emission while recording.
type MeterConfig struct {
	Enable     bool `yaml:"enable"`
	IntervalMS int  `yaml:"interval_ms"`
	Window     int  `yaml:"window"`
}

// VocabConfig controls which named term sets bias transcription.
type VocabConfig struct {
	Global   []string            `yaml:"global"`
	Sets     map[string][]string `yaml:"sets"`
	MaxTerms int                 `yaml:"max_terms"`
}

// OutputConfig controls transcript side effects after transcription.
// Clipboard and Paste are argv vectors; transcript text is written to the
// clipboard command's stdin.
type OutputConfig struct {
	Enable              bool     `yaml:"enable"`
	Clipboard           []string `yaml:"clipboard"`
	Paste               []string `yaml:"paste"`
	CapitalizeSentences bool     `yaml:"capitalize_sentences"`
	TrailingSpace       bool     `yaml:"trailing_space"`
}

// NotifyConfig controls desktop notification mirroring of recording state.
type NotifyConfig struct {
	Desktop bool   `yaml:"desktop"`
	AppName string `yaml:"app_name"`
}

// ArtifactsConfig controls optional per-session WAV persistence.
type ArtifactsConfig struct {
	SaveAudio bool   `yaml:"save_audio"`
	Dir       string `yaml:"dir"`
}

// ModelsConfig locates downloaded local model files.
type ModelsConfig struct {
	Dir string `yaml:"dir"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Message string
}
