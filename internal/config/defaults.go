package config

// Default returns the canonical runtime configuration used when no file is
// present.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
			Format:   "f32",
		},
		STT: STTConfig{
			Model:    "whisper-base",
			Language: "auto",
		},
		Remote: RemoteConfig{
			OpenAI: RemoteProviderConfig{
				Endpoint:  "https://api.openai.com/v1/audio/transcriptions",
				Model:     "whisper-1",
				TimeoutMS: 60000,
			},
			Groq: RemoteProviderConfig{
				Endpoint:  "https://api.groq.com/openai/v1/audio/transcriptions",
				Model:     "whisper-large-v3",
				TimeoutMS: 60000,
			},
		},
		Hotkey: HotkeyConfig{
			Mode:    "push-to-talk",
			Binding: "SUPER+R",
		},
		Meter: MeterConfig{
			Enable:     true,
			IntervalMS: 50,
			Window:     4096,
		},
		Vocab: VocabConfig{
			Global:   nil,
			Sets:     map[string][]string{},
			MaxTerms: 256,
		},
		Output: OutputConfig{
			Clipboard:           []string{"wl-copy"},
			CapitalizeSentences: true,
		},
		Notify: NotifyConfig{
			AppName: "sobotta",
		},
		Artifacts: ArtifactsConfig{},
		Models:    ModelsConfig{},
	}
}
