package renamify

import (
	"strings"
	"unicode/utf8"
)

// minTokenRunes is the minimum rune count for an OCR token to be kept.
const minTokenRunes = 3

// maxPromptTokens is the maximum number of OCR tokens fed to the model.
const maxPromptTokens = 5

// ocrStopWords are common English words stripped from OCR token lists before
// they are used as prompt context or fallback naming material.
var ocrStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "day": true,
	"get": true, "has": true, "him": true, "his": true, "how": true,
	"man": true, "new": true, "now": true, "old": true, "see": true,
	"two": true, "way": true, "who": true, "did": true, "its": true,
	"let": true, "put": true, "say": true, "she": true, "too": true,
	"use": true,
}

// FilterTokens keeps up to maxPromptTokens meaningful tokens: lowercased,
// punctuation-trimmed, stop words and short words removed, order preserved.
func FilterTokens(tokens []string) []string {
	var meaningful []string
	seen := map[string]bool{}
	for _, t := range tokens {
		t = strings.ToLower(strings.Trim(t, ".,;:!?\"'()[]{}"))
		if t == "" || ocrStopWords[t] || seen[t] {
			continue
		}
		if utf8.RuneCountInString(t) < minTokenRunes {
			continue
		}
		meaningful = append(meaningful, t)
		seen[t] = true
		if len(meaningful) == maxPromptTokens {
			break
		}
	}
	return meaningful
}

// FormatTokensForPrompt renders filtered tokens for inclusion in the model
// prompt. Returns "None" when nothing survives filtering, so the prompt
// template never interpolates an empty string.
func FormatTokensForPrompt(tokens []string) string {
	filtered := FilterTokens(tokens)
	if len(filtered) == 0 {
		return "None"
	}
	return strings.Join(filtered, ", ")
}
