package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidBinding = errors.New("invalid hotkey binding")

// validModifiers are the modifier names accepted in a binding spec.
var validModifiers = map[string]bool{
	"SUPER": true,
	"CTRL":  true,
	"ALT":   true,
	"SHIFT": true,
}

// Binding is a parsed hotkey spec such as "SUPER+SHIFT+R": zero or more
// modifiers followed by exactly one key.
type Binding struct {
	Modifiers []string
	Key       string
}

// ParseBinding validates and normalizes a "+"-separated binding spec.
// Modifier names are case-insensitive and may not repeat; the final token is
// the key.
func ParseBinding(spec string) (Binding, error) {
	tokens := strings.Split(spec, "+")
	var parts []string
	for _, token := range tokens {
		token = strings.ToUpper(strings.TrimSpace(token))
		if token == "" {
			return Binding{}, fmt.Errorf("%w: empty token in %q", ErrInvalidBinding, spec)
		}
		parts = append(parts, token)
	}
	if len(parts) == 0 {
		return Binding{}, fmt.Errorf("%w: empty spec", ErrInvalidBinding)
	}

	key := parts[len(parts)-1]
	modifiers := parts[:len(parts)-1]

	if validModifiers[key] {
		return Binding{}, fmt.Errorf("%w: %q has no key, only modifiers", ErrInvalidBinding, spec)
	}
	seen := map[string]bool{}
	for _, mod := range modifiers {
		if !validModifiers[mod] {
			return Binding{}, fmt.Errorf("%w: unknown modifier %q in %q", ErrInvalidBinding, mod, spec)
		}
		if seen[mod] {
			return Binding{}, fmt.Errorf("%w: duplicate modifier %q in %q", ErrInvalidBinding, mod, spec)
		}
		seen[mod] = true
	}

	return Binding{Modifiers: modifiers, Key: key}, nil
}

func (b Binding) String() string {
	if len(b.Modifiers) == 0 {
		return b.Key
	}
	return strings.Join(b.Modifiers, "+") + "+" + b.Key
}
