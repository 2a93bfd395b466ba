// Package preprocess normalises document text before it is embedded.
//
// The pipeline is: word tokenisation, lowercasing, removal of non-alphabetic
// tokens, English stop word removal, lemmatisation, and joining with single
// spaces. It runs on documents at index build time only; queries are
// embedded as typed.
package preprocess

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"

	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// Ensure Preprocessor implements the interface.
var _ driven.TextPreprocessor = (*Preprocessor)(nil)

// Lemmatizer maps a lowercase word to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

// Preprocessor implements the document normalisation pipeline.
// It holds no mutable state and is safe for concurrent use.
type Preprocessor struct {
	lemmatizer Lemmatizer
	stopWords  map[string]struct{}
}

// Option configures the preprocessor.
type Option func(*Preprocessor)

// WithLemmatizer replaces the dictionary lemmatizer.
func WithLemmatizer(l Lemmatizer) Option {
	return func(p *Preprocessor) {
		if l != nil {
			p.lemmatizer = l
		}
	}
}

// WithStopWords replaces the English stop word list.
func WithStopWords(words []string) Option {
	return func(p *Preprocessor) {
		p.stopWords = toSet(words)
	}
}

// New creates a preprocessor. Unless WithLemmatizer is given, the English
// golem dictionary is loaded, which takes a moment and some memory.
func New(opts ...Option) (*Preprocessor, error) {
	p := &Preprocessor{
		stopWords: toSet(EnglishStopWords()),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.lemmatizer == nil {
		lem, err := golem.New(en.New())
		if err != nil {
			return nil, fmt.Errorf("preprocess: load english lemmatizer: %w", err)
		}
		p.lemmatizer = lem
	}

	return p, nil
}

// Name returns the processor name.
func (p *Preprocessor) Name() string {
	return "preprocess"
}

// Preprocess returns the normalised form of text.
func (p *Preprocessor) Preprocess(text string) string {
	tokens := Tokenize(text)
	kept := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		word := strings.ToLower(tok)
		if !isAlpha(word) {
			continue
		}
		if _, stop := p.stopWords[word]; stop {
			continue
		}
		if lemma := p.lemmatizer.Lemma(word); lemma != "" {
			word = strings.ToLower(lemma)
		}
		kept = append(kept, word)
	}

	return strings.Join(kept, " ")
}

// isAlpha reports whether s is non-empty and made only of letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
