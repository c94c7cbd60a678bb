package tokenize

import (
	"unicode"

	"github.com/japaniel/lexiplan/pkg/config"
)

// IsHan reports whether r is a CJK ideograph.
func IsHan(r rune) bool { return unicode.Is(unicode.Han, r) }

// IsKana reports whether r is Hiragana, Katakana or the prolonged sound mark.
func IsKana(r rune) bool {
	return unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || r == 'ー'
}

func containsFunc(s string, f func(rune) bool) bool {
	for _, r := range s {
		if f(r) {
			return true
		}
	}
	return false
}

// HasTarget reports whether s holds at least one character of the language.
func HasTarget(lang config.Language, s string) bool {
	if lang == config.Chinese {
		return containsFunc(s, IsHan)
	}
	return containsFunc(s, func(r rune) bool { return IsHan(r) || IsKana(r) })
}

// ToHiragana converts Katakana to Hiragana.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 0x30A1 && r <= 0x30F6 {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}
