// Package kana converts between hiragana and katakana.
//
// The two syllabaries occupy parallel Unicode blocks: every convertible
// hiragana code point in U+3041..U+3096 has its katakana twin exactly 0x60
// higher (U+30A1..U+30F6). Characters outside those ranges, including the
// katakana-only ヷ..ヺ and the prolonged sound mark ー, pass through unchanged.
package kana

import "strings"

const (
	hiraganaFirst = 'ぁ' // U+3041
	hiraganaLast  = 'ゖ' // U+3096
	katakanaFirst = 'ァ' // U+30A1
	katakanaLast  = 'ヶ' // U+30F6

	offset = katakanaFirst - hiraganaFirst
)

// ToKatakana converts every hiragana rune in s to katakana.
func ToKatakana(s string) string {
	if !strings.ContainsFunc(s, isHiragana) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isHiragana(r) {
			return r + offset
		}
		return r
	}, s)
}

// ToHiragana converts every katakana rune in s to hiragana.
func ToHiragana(s string) string {
	if !strings.ContainsFunc(s, isKatakana) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isKatakana(r) {
			return r - offset
		}
		return r
	}, s)
}

func isHiragana(r rune) bool {
	return r >= hiraganaFirst && r <= hiraganaLast
}

func isKatakana(r rune) bool {
	return r >= katakanaFirst && r <= katakanaLast
}
