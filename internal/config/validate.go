package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Audio.Input) == "" {
		return nil, fmt.Errorf("audio.input must not be empty")
	}
	format := strings.ToLower(strings.TrimSpace(cfg.Audio.Format))
	if format != "f32" && format != "s16" {
		return nil, fmt.Errorf("audio.format must be one of: f32, s16")
	}
	if strings.TrimSpace(cfg.STT.Model) == "" {
		return nil, fmt.Errorf("stt.model must not be empty")
	}
	if strings.TrimSpace(cfg.STT.Language) == "" {
		return nil, fmt.Errorf("stt.language must not be empty (use \"auto\" for detection)")
	}

	mode := strings.TrimSpace(cfg.Hotkey.Mode)
	if mode != "push-to-talk" && mode != "toggle" {
		return nil, fmt.Errorf("hotkey.mode must be one of: push-to-talk, toggle")
	}
	if strings.TrimSpace(cfg.Hotkey.Binding) == "" {
		return nil, fmt.Errorf("hotkey.binding must not be empty")
	}

	if cfg.Meter.Enable {
		if cfg.Meter.IntervalMS <= 0 {
			return nil, fmt.Errorf("meter.interval_ms must be > 0")
		}
		if cfg.Meter.Window <= 0 {
			return nil, fmt.Errorf("meter.window must be > 0")
		}
	}

	for name, provider := range map[string]RemoteProviderConfig{
		"remote.openai": cfg.Remote.OpenAI,
		"remote.groq":   cfg.Remote.Groq,
	} {
		if strings.TrimSpace(provider.Endpoint) == "" {
			return nil, fmt.Errorf("%s.endpoint must not be empty", name)
		}
		if provider.TimeoutMS < 0 {
			return nil, fmt.Errorf("%s.timeout_ms must be >= 0", name)
		}
		if provider.APIKey == "" {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("%s.api_key is unset; that provider's models will fail", name)})
		}
	}

	if cfg.Output.Enable && len(cfg.Output.Clipboard) == 0 {
		return nil, fmt.Errorf("output.clipboard must not be empty when output.enable is set")
	}
	if cfg.Notify.Desktop && strings.TrimSpace(cfg.Notify.AppName) == "" {
		return nil, fmt.Errorf("notify.app_name must not be empty when notify.desktop is set")
	}

	if cfg.Vocab.MaxTerms <= 0 {
		return nil, fmt.Errorf("vocab.max_terms must be > 0")
	}

	_, vocabWarnings, err := BuildVocabulary(cfg)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, vocabWarnings...)

	return warnings, nil
}

// BuildVocabulary merges enabled vocab sets into a deterministic ordered
// term list passed to engines as a bias prompt.
func BuildVocabulary(cfg Config) ([]string, []Warning, error) {
	if len(cfg.Vocab.Global) == 0 {
		return nil, nil, nil
	}

	warnings := make([]Warning, 0)
	seen := make(map[string]string)
	terms := make([]string, 0)

	for _, name := range cfg.Vocab.Global {
		set, ok := cfg.Vocab.Sets[name]
		if !ok {
			return nil, nil, fmt.Errorf("vocab.global references unknown set %q", name)
		}
		for _, term := range set {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			if from, exists := seen[term]; exists {
				if from != name {
					warnings = append(warnings, Warning{Message: fmt.Sprintf("term %q present in %q and %q; keeping first", term, from, name)})
				}
				continue
			}
			seen[term] = name
			terms = append(terms, term)
		}
	}

	if len(terms) > cfg.Vocab.MaxTerms {
		return nil, nil, fmt.Errorf("vocabulary term count %d exceeds vocab.max_terms=%d", len(terms), cfg.Vocab.MaxTerms)
	}

	return terms, warnings, nil
}
