// Package transcript normalizes recognized speech before it is returned to
// clients or committed to output targets.
package transcript

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Options controls transcript normalization behavior.
type Options struct {
	CapitalizeSentences bool
	TrailingSpace       bool
}

// Assemble joins recognized segments into one transcript, collapsing
// whitespace and applying the configured normalization.
func Assemble(segments []string, opts Options) string {
	joined := strings.Join(segments, " ")
	normalized := strings.Join(strings.Fields(joined), " ")
	if normalized == "" {
		return ""
	}

	if opts.CapitalizeSentences {
		normalized = capitalizeSentences(normalized)
		normalized = capitalizePronounI(normalized)
	}

	if opts.TrailingSpace {
		return normalized + " "
	}
	return normalized
}

// nonTerminalAbbreviations are tokens whose trailing period does not end a
// sentence in typical dictated text.
var nonTerminalAbbreviations = map[string]struct{}{
	"dr": {}, "mr": {}, "mrs": {}, "ms": {}, "prof": {},
	"sr": {}, "jr": {},
	"e.g": {}, "i.e": {}, "etc": {}, "vs": {}, "cf": {},
	"fig": {}, "eq": {}, "sec": {}, "ch": {},
	"min": {}, "hr": {}, "oz": {}, "lb": {},
}

func capitalizeSentences(text string) string {
	runes := []rune(text)

	var out strings.Builder
	out.Grow(len(text))

	capitalizeNext := true
	for i, r := range runes {
		if capitalizeNext && unicode.IsLetter(r) {
			r = unicode.ToUpper(r)
			capitalizeNext = false
		}

		out.WriteRune(r)

		switch r {
		case '!', '?':
			capitalizeNext = true
		case '.':
			if isSentenceEndPeriod(runes, i) {
				capitalizeNext = true
			}
		}
	}

	return out.String()
}

// isSentenceEndPeriod reports whether the period at idx terminates a
// sentence. Decimal points, embedded periods (initialisms, domains) and
// known abbreviations do not.
func isSentenceEndPeriod(runes []rune, idx int) bool {
	if idx > 0 && idx+1 < len(runes) &&
		unicode.IsDigit(runes[idx-1]) && unicode.IsDigit(runes[idx+1]) {
		return false
	}
	if idx+1 < len(runes) {
		next := runes[idx+1]
		if unicode.IsLetter(next) || unicode.IsDigit(next) || next == '.' {
			return false
		}
	}

	token := strings.ToLower(tokenBeforePeriod(runes, idx))
	if token == "" {
		return true
	}
	if _, ok := nonTerminalAbbreviations[token]; ok {
		return false
	}
	if looksLikeInitialism(token) {
		return false
	}
	return true
}

// tokenBeforePeriod walks back over letters and interior periods to recover
// the word the period is attached to, without its trailing dots.
func tokenBeforePeriod(runes []rune, idx int) string {
	start := idx - 1
	for start >= 0 {
		if r := runes[start]; unicode.IsLetter(r) || r == '.' {
			start--
			continue
		}
		break
	}
	return strings.Trim(string(runes[start+1:idx]), ".")
}

// looksLikeInitialism matches dotted single-letter sequences like "u.s".
func looksLikeInitialism(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		if utf8.RuneCountInString(part) != 1 {
			return false
		}
		r, _ := utf8.DecodeRuneInString(part)
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

var (
	pronounIContraction = regexp.MustCompile(`\bi('(?:m|d|ll|ve|re|s))\b`)
	pronounIWord        = regexp.MustCompile(`\bi\b`)
)

// capitalizePronounI uppercases the standalone pronoun "i" and its
// contractions, leaving embedded tokens like "i.e." untouched.
func capitalizePronounI(text string) string {
	text = pronounIContraction.ReplaceAllString(text, "I$1")

	matches := pronounIWord.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var out strings.Builder
	out.Grow(len(text))

	last := 0
	for _, match := range matches {
		start, end := match[0], match[1]
		out.WriteString(text[last:start])
		if partOfDottedToken(text, start, end) {
			out.WriteString(text[start:end])
		} else {
			out.WriteString("I")
		}
		last = end
	}
	out.WriteString(text[last:])
	return out.String()
}

// partOfDottedToken reports whether the match at [start,end) sits inside an
// initialism such as "i.e." rather than standing alone.
func partOfDottedToken(text string, start int, end int) bool {
	if end+1 < len(text) && text[end] == '.' {
		next, _ := utf8.DecodeRuneInString(text[end+1:])
		if unicode.IsLetter(next) {
			return true
		}
	}
	if start > 1 && text[start-1] == '.' {
		prev, _ := utf8.DecodeLastRuneInString(text[:start-1])
		if unicode.IsLetter(prev) {
			return true
		}
	}
	return false
}
