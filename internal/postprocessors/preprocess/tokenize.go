package preprocess

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// clitics are split off the end of a word as separate tokens.
var clitics = []string{"n't", "'s", "'re", "'ve", "'ll", "'d", "'m"}

// Tokenize splits text on word boundaries in the manner of Treebank
// tokenisers: whitespace separates fields, leading and trailing punctuation
// become their own tokens, and contractions are split ("don't" -> "do", "n't").
// Punctuation inside a field (hyphens, dots) stays attached.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, splitField(f)...)
	}
	return tokens
}

func splitField(f string) []string {
	var lead, trail []string

	for f != "" {
		r, size := utf8.DecodeRuneInString(f)
		if isWordRune(r) {
			break
		}
		lead = append(lead, f[:size])
		f = f[size:]
	}
	for f != "" {
		r, size := utf8.DecodeLastRuneInString(f)
		if isWordRune(r) {
			break
		}
		trail = append(trail, f[len(f)-size:])
		f = f[:len(f)-size]
	}

	out := lead
	out = append(out, splitClitic(f)...)
	for i := len(trail) - 1; i >= 0; i-- {
		out = append(out, trail[i])
	}
	return out
}

func splitClitic(word string) []string {
	if word == "" {
		return nil
	}
	for _, c := range clitics {
		for _, form := range []string{c, strings.Replace(c, "'", "’", 1)} {
			if len(word) <= len(form) {
				continue
			}
			cut := len(word) - len(form)
			if strings.EqualFold(word[cut:], form) {
				return []string{word[:cut], word[cut:]}
			}
		}
	}
	return []string{word}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
